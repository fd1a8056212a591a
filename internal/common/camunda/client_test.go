package camunda

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"partyplnr/internal/common/config"
	apperrors "partyplnr/internal/common/errors"
)

func testClient() *Client {
	return &Client{config: &ClientConfig{
		RetryConfig: &RetryConfig{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond},
	}}
}

func TestClientConfigFrom(t *testing.T) {
	cfg := ClientConfigFrom(config.CamundaConfig{
		BrokerAddress:  "localhost:26500",
		Plaintext:      true,
		Timeout:        5000,
		RequestTimeout: 2000,
	})
	assert.Equal(t, "localhost:26500", cfg.GatewayAddress)
	assert.True(t, cfg.UsePlaintextConnection)
	assert.Equal(t, 5*time.Second, cfg.ConnectionTimeout)
	assert.Equal(t, 2*time.Second, cfg.RequestTimeout)
	assert.Same(t, DefaultRetryConfig, cfg.RetryConfig)
}

func TestExecuteWithRetry_RetriesTransientErrors(t *testing.T) {
	c := testClient()
	attempts := 0

	result, err := c.ExecuteWithRetry(context.Background(), func(context.Context) (interface{}, error) {
		attempts++
		if attempts < 3 {
			return nil, errors.New("rpc error: code = Unavailable desc = connection refused")
		}
		return "ok", nil
	}, "topology")

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 3, attempts)
}

func TestExecuteWithRetry_StopsOnPermanentError(t *testing.T) {
	c := testClient()
	attempts := 0

	_, err := c.ExecuteWithRetry(context.Background(), func(context.Context) (interface{}, error) {
		attempts++
		return nil, errors.New("permission denied")
	}, "deploy")

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
	assert.Equal(t, apperrors.ErrCodeAuthenticationError, apperrors.CodeOf(err))
}

func TestMapZeebeError(t *testing.T) {
	c := testClient()

	tests := []struct {
		msg  string
		code apperrors.ErrorCode
	}{
		{"connection reset by peer", apperrors.ErrCodeExternalServiceError},
		{"context deadline exceeded", apperrors.ErrCodeTimeout},
		{"process definition not found", apperrors.ErrCodeInvalidRequest},
		{"unauthorized", apperrors.ErrCodeAuthenticationError},
		{"something odd", apperrors.ErrCodeExternalServiceError},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			err := c.mapZeebeError(errors.New(tt.msg), "op", 0)
			assert.Equal(t, tt.code, apperrors.CodeOf(err))
		})
	}
}

func TestIsRetryableZeebeError(t *testing.T) {
	assert.True(t, isRetryableZeebeError(errors.New("Deadline Exceeded")))
	assert.False(t, isRetryableZeebeError(errors.New("invalid argument")))
}
