package config

import "zuhaoku/pkg/config"

func init() {
	config.Add("jwt", func() map[string]interface{} {
		return map[string]interface{}{
			// 签名密钥，只支持 HS256
			"secret": config.Env("JWT_SECRET", ""),

			// 过期时间，单位是分钟
			"expire_time": config.Env("JWT_EXPIRE_TIME", 120),
		}
	})
}
