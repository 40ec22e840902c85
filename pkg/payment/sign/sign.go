// Package sign 整理和解析网关密钥，配置中的密钥格式五花八门，交给 SDK 之前先统一成标准 PEM
package sign

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"regexp"
	"strings"

	"zuhaoku/pkg/errs"
)

const (
	LabelPKCS1Private = "RSA PRIVATE KEY"
	LabelPKCS8Private = "PRIVATE KEY"
	LabelPKIXPublic   = "PUBLIC KEY"
	LabelPKCS1Public  = "RSA PUBLIC KEY"

	lineWidth = 64
)

var pemBlock = regexp.MustCompile(`(?s)-----BEGIN ([A-Z0-9 ]+)-----(.*?)-----END ([A-Z0-9 ]+)-----`)

// NormalizePrivateKey 将配置中的私钥整理为标准 PEM 格式。
// 支持转义换行、混合换行符、单行 base64 以及 PKCS#1 / PKCS#8 两种包装，重复调用结果不变
func NormalizePrivateKey(raw string) (string, error) {
	label, body, err := split(raw)
	if err != nil {
		return "", err
	}
	if label == "" {
		label = LabelPKCS8Private
		if der, _ := base64.StdEncoding.DecodeString(body); der != nil {
			if _, err := x509.ParsePKCS1PrivateKey(der); err == nil {
				label = LabelPKCS1Private
			}
		}
	}
	if label != LabelPKCS1Private && label != LabelPKCS8Private {
		return "", errs.Configuration("KEY_MALFORMED", "私钥类型不支持", nil)
	}
	return encode(label, body), nil
}

// NormalizePublicKey 将网关公钥整理为标准 PEM 格式，裸 base64 默认按 PUBLIC KEY 包装
func NormalizePublicKey(raw string) (string, error) {
	label, body, err := split(raw)
	if err != nil {
		return "", err
	}
	if label == "" {
		label = LabelPKIXPublic
		if der, _ := base64.StdEncoding.DecodeString(body); der != nil {
			if _, err := x509.ParsePKIXPublicKey(der); err != nil {
				if _, err := x509.ParsePKCS1PublicKey(der); err == nil {
					label = LabelPKCS1Public
				}
			}
		}
	}
	if label != LabelPKIXPublic && label != LabelPKCS1Public {
		return "", errs.Configuration("KEY_MALFORMED", "公钥类型不支持", nil)
	}
	return encode(label, body), nil
}

// KeyBody 去掉 PEM 头尾和换行，返回 base64 主体
func KeyBody(raw string) (string, error) {
	_, body, err := split(raw)
	return body, err
}

// ParsePrivateKey 解析 RSA 私钥
func ParsePrivateKey(raw string) (*rsa.PrivateKey, error) {
	normalized, err := NormalizePrivateKey(raw)
	if err != nil {
		return nil, err
	}
	label, body, _ := split(normalized)
	der, _ := base64.StdEncoding.DecodeString(body)

	if label == LabelPKCS1Private {
		key, err := x509.ParsePKCS1PrivateKey(der)
		if err != nil {
			return nil, errs.Configuration("KEY_MALFORMED", "私钥解析失败", err)
		}
		return key, nil
	}

	parsed, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, errs.Configuration("KEY_MALFORMED", "私钥解析失败", err)
	}
	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, errs.Configuration("KEY_MALFORMED", "私钥不是 RSA 密钥", nil)
	}
	return key, nil
}

// ParsePublicKey 解析 RSA 公钥
func ParsePublicKey(raw string) (*rsa.PublicKey, error) {
	normalized, err := NormalizePublicKey(raw)
	if err != nil {
		return nil, err
	}
	label, body, _ := split(normalized)
	der, _ := base64.StdEncoding.DecodeString(body)

	if label == LabelPKCS1Public {
		key, err := x509.ParsePKCS1PublicKey(der)
		if err != nil {
			return nil, errs.Configuration("KEY_MALFORMED", "公钥解析失败", err)
		}
		return key, nil
	}

	parsed, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, errs.Configuration("KEY_MALFORMED", "公钥解析失败", err)
	}
	key, ok := parsed.(*rsa.PublicKey)
	if !ok {
		return nil, errs.Configuration("KEY_MALFORMED", "公钥不是 RSA 密钥", nil)
	}
	return key, nil
}

// split 拆出 PEM 标签和去掉空白的 base64 主体，没有 PEM 头尾时标签为空
func split(raw string) (label, body string, err error) {
	s := strings.ReplaceAll(raw, `\r`, "\r")
	s = strings.ReplaceAll(s, `\n`, "\n")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.TrimSpace(s)
	if s == "" {
		return "", "", errs.Configuration("KEY_MISSING", "密钥未配置", nil)
	}

	if m := pemBlock.FindStringSubmatch(s); m != nil {
		if m[1] != m[3] {
			return "", "", errs.Configuration("KEY_MALFORMED", "密钥头尾标记不一致", nil)
		}
		label, s = m[1], m[2]
	} else if strings.Contains(s, "-----") {
		return "", "", errs.Configuration("KEY_MALFORMED", "密钥缺少头尾标记", nil)
	}

	body = strings.Join(strings.Fields(s), "")
	if _, err := base64.StdEncoding.DecodeString(body); err != nil {
		return "", "", errs.Configuration("KEY_MALFORMED", "密钥不是合法的 base64", err)
	}
	return label, body, nil
}

// encode 按 64 列折行并加上 PEM 头尾
func encode(label, body string) string {
	var sb strings.Builder
	sb.WriteString("-----BEGIN " + label + "-----\n")
	for len(body) > lineWidth {
		sb.WriteString(body[:lineWidth])
		sb.WriteByte('\n')
		body = body[lineWidth:]
	}
	if body != "" {
		sb.WriteString(body)
		sb.WriteByte('\n')
	}
	sb.WriteString("-----END " + label + "-----")
	return sb.String()
}
