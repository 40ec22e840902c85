package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindAndCodeSurviveWrapping(t *testing.T) {
	base := InvalidState("ORDER_NOT_PAYING", "订单不在待支付状态")
	wrapped := fmt.Errorf("cancel order 7: %w", base)

	assert.Equal(t, KindInvalidState, KindOf(wrapped))
	assert.Equal(t, "ORDER_NOT_PAYING", CodeOf(wrapped))
	assert.True(t, errors.Is(wrapped, InvalidState("ORDER_NOT_PAYING", "")))
	assert.False(t, errors.Is(wrapped, InvalidState("ORDER_NOT_LEASING", "")))
}

func TestUnknownErrorsAreInternal(t *testing.T) {
	err := errors.New("connection reset")

	assert.Equal(t, KindInternal, KindOf(err))
	assert.Equal(t, "INTERNAL_ERROR", CodeOf(err))
	assert.False(t, IsRetryable(err))
}

func TestOnlyGatewayErrorsAreRetryable(t *testing.T) {
	cause := errors.New("i/o timeout")
	gw := Gateway("GATEWAY_UNAVAILABLE", "支付网关暂不可用", cause)

	assert.True(t, IsRetryable(gw))
	assert.ErrorIs(t, gw, cause)
	assert.False(t, IsRetryable(Validation("BAD_INPUT", "参数错误")))
	assert.False(t, IsRetryable(Configuration("ALIPAY_KEY_INVALID", "支付宝密钥无效", cause)))
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		KindValidation:    http.StatusBadRequest,
		KindSignature:     http.StatusBadRequest,
		KindUnauthorized:  http.StatusUnauthorized,
		KindForbidden:     http.StatusForbidden,
		KindNotFound:      http.StatusNotFound,
		KindInvalidState:  http.StatusConflict,
		KindConfiguration: http.StatusServiceUnavailable,
		KindGateway:       http.StatusServiceUnavailable,
		KindInternal:      http.StatusInternalServerError,
	}
	for kind, status := range cases {
		assert.Equal(t, status, HTTPStatus(kind), kind)
	}
}
