package textgen

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestErrorKind_Retryable(t *testing.T) {
	assert.True(t, KindRateLimit.Retryable())
	assert.True(t, KindTimeout.Retryable())
	assert.True(t, KindConnReset.Retryable())
	assert.True(t, KindNetwork.Retryable())
	// Parse error retry được vì regenerate là cách sửa duy nhất
	assert.True(t, KindParse.Retryable())
	assert.False(t, KindFatal.Retryable())
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(NewProviderError(KindRateLimit, "429", nil)))
	assert.True(t, IsRetryable(NewParseError("không parse được", nil)))
	assert.False(t, IsRetryable(NewProviderError(KindFatal, "401", nil)))
	// Lỗi không phân loại thì không retry
	assert.False(t, IsRetryable(errors.New("lỗi lạ")))
}

func TestClassifyStatusCode(t *testing.T) {
	assert.Equal(t, KindRateLimit, classifyStatusCode(429, "").Kind)
	assert.Equal(t, KindNetwork, classifyStatusCode(500, "").Kind)
	assert.Equal(t, KindNetwork, classifyStatusCode(503, "").Kind)
	assert.Equal(t, KindFatal, classifyStatusCode(400, "").Kind)
	assert.Equal(t, KindFatal, classifyStatusCode(401, "").Kind)
}

func TestCallWithRetry_SucceedsAfterTransient(t *testing.T) {
	policy := NewRetryPolicy(3, 0)

	calls := 0
	result, err := CallWithRetry(context.Background(), policy, func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", NewProviderError(KindTimeout, "timeout", nil)
		}
		return "ok", nil
	})

	assert.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 3, calls)
}

func TestCallWithRetry_FatalStopsImmediately(t *testing.T) {
	policy := NewRetryPolicy(3, 0)

	calls := 0
	_, err := CallWithRetry(context.Background(), policy, func(ctx context.Context) (string, error) {
		calls++
		return "", NewProviderError(KindFatal, "API key sai", nil)
	})

	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestCallWithRetry_ExhaustsAttempts(t *testing.T) {
	policy := NewRetryPolicy(3, 0)

	calls := 0
	_, err := CallWithRetry(context.Background(), policy, func(ctx context.Context) (int, error) {
		calls++
		return 0, NewParseError("JSON hỏng", nil)
	})

	assert.Error(t, err)
	assert.Equal(t, 3, calls)

	var pe *ProviderError
	assert.True(t, errors.As(err, &pe))
	assert.Equal(t, KindParse, pe.Kind)
}

func TestRetryPolicy_LinearDelay(t *testing.T) {
	policy := NewRetryPolicy(3, 2*time.Second)
	assert.Equal(t, 2*time.Second, policy.Delay(1))
	assert.Equal(t, 4*time.Second, policy.Delay(2))
	assert.Equal(t, 6*time.Second, policy.Delay(3))
}

func TestNewRetryPolicy_ClampsInvalidInput(t *testing.T) {
	policy := NewRetryPolicy(0, -time.Second)
	assert.Equal(t, 1, policy.MaxAttempts)
	assert.Equal(t, time.Duration(0), policy.BaseDelay)
}
