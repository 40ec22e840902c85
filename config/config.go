// Package config 存放程序的配置信息，各文件在 init 中注册
package config

// Initialize 触发加载 config 包的所有 init 函数
func Initialize() {}
