package payment

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// Status 支付状态，只允许 pending -> success 或 pending -> failed
type Status string

const (
	StatusPending Status = "pending" // 待支付
	StatusSuccess Status = "success" // 已支付
	StatusFailed  Status = "failed"  // 支付失败
)

// JSON 网关回调原文快照
type JSON map[string]interface{}

// Value 实现 driver.Valuer 接口
func (j JSON) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(j)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan 实现 sql.Scanner 接口，不同驱动可能返回 []byte 或 string
func (j *JSON) Scan(value interface{}) error {
	var data []byte
	switch v := value.(type) {
	case nil:
		*j = make(JSON)
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("invalid scan source")
	}
	if len(data) == 0 {
		*j = make(JSON)
		return nil
	}
	return json.Unmarshal(data, j)
}

// IsSuccess 检查支付是否成功
func (p *Payment) IsSuccess() bool {
	return p.Status == StatusSuccess
}

// IsPending 检查是否待支付
func (p *Payment) IsPending() bool {
	return p.Status == StatusPending
}
