// Package vault 账号凭据加解密，XChaCha20-Poly1305，密钥由 APP_KEY 经 HKDF 派生
package vault

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"

	"zuhaoku/pkg/errs"
)

var (
	hkdfSalt = []byte("zuhaoku-vault")
	hkdfInfo = []byte("account-credentials")
)

// Vault 对称加密器，可并发使用
type Vault struct {
	aead cipher.AEAD
}

// New 从应用密钥派生加密密钥
func New(appKey string) (*Vault, error) {
	if appKey == "" {
		return nil, errs.Configuration("APP_KEY_MISSING", "APP_KEY 未配置", nil)
	}

	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(appKey), hkdfSalt, hkdfInfo), key); err != nil {
		return nil, errs.Configuration("APP_KEY_INVALID", "派生凭据密钥失败", err)
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, errs.Configuration("APP_KEY_INVALID", "初始化凭据加密失败", err)
	}
	return &Vault{aead: aead}, nil
}

// Seal 加密，返回 base64 编码的密文和随机数
func (v *Vault) Seal(plain []byte) (ciphertext, nonce string, err error) {
	n := make([]byte, v.aead.NonceSize())
	if _, err := rand.Read(n); err != nil {
		return "", "", errs.Wrap(errs.KindInternal, "CREDENTIAL_SEAL_FAILED", "加密账号凭据失败", err)
	}
	sealed := v.aead.Seal(nil, n, plain, nil)
	return base64.StdEncoding.EncodeToString(sealed), base64.StdEncoding.EncodeToString(n), nil
}

// Open 解密
func (v *Vault) Open(ciphertext, nonce string) ([]byte, error) {
	sealed, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return nil, errs.Wrap(errs.KindInternal, "CREDENTIAL_CORRUPTED", "账号凭据格式错误", err)
	}
	n, err := base64.StdEncoding.DecodeString(nonce)
	if err != nil || len(n) != v.aead.NonceSize() {
		return nil, errs.Wrap(errs.KindInternal, "CREDENTIAL_CORRUPTED", "账号凭据格式错误", err)
	}

	plain, err := v.aead.Open(nil, n, sealed, nil)
	if err != nil {
		return nil, errs.Wrap(errs.KindInternal, "CREDENTIAL_CORRUPTED", "账号凭据解密失败", err)
	}
	return plain, nil
}
