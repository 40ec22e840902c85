package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONScanAcceptsBytesAndString(t *testing.T) {
	var fromBytes, fromString, fromNil JSON

	require.NoError(t, fromBytes.Scan([]byte(`{"trade_status":"TRADE_SUCCESS"}`)))
	require.NoError(t, fromString.Scan(`{"trade_status":"TRADE_SUCCESS"}`))
	require.NoError(t, fromNil.Scan(nil))

	assert.Equal(t, "TRADE_SUCCESS", fromBytes["trade_status"])
	assert.Equal(t, fromBytes, fromString)
	assert.Empty(t, fromNil)
	assert.Error(t, fromNil.Scan(42))
}

func TestJSONValue(t *testing.T) {
	v, err := JSON{}.Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = JSON{"trade_no": "2024"}.Value()
	require.NoError(t, err)
	assert.Equal(t, `{"trade_no":"2024"}`, v)
}
