package textgen

import (
	"context"
	"errors"
	"time"

	"review_factory/internal/logger"
)

// RetryPolicy định nghĩa số lần thử và backoff tuyến tính giữa các lần
type RetryPolicy struct {
	MaxAttempts int           // Tổng số lần thử (tính cả lần đầu)
	BaseDelay   time.Duration // Delay cơ sở, lần thử thứ n chờ n * BaseDelay
}

// NewRetryPolicy tạo policy với giá trị tối thiểu hợp lệ
func NewRetryPolicy(maxAttempts int, baseDelay time.Duration) RetryPolicy {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if baseDelay < 0 {
		baseDelay = 0
	}
	return RetryPolicy{MaxAttempts: maxAttempts, BaseDelay: baseDelay}
}

// Delay trả về thời gian chờ sau lần thử thứ attempt (tính từ 1)
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return time.Duration(attempt) * p.BaseDelay
}

// CallWithRetry gọi fn tối đa MaxAttempts lần với backoff tuyến tính.
// Chỉ retry lỗi retryable (xem ErrorKind.Retryable); lỗi fatal trả về ngay.
func CallWithRetry[T any](ctx context.Context, policy RetryPolicy, fn func(ctx context.Context) (T, error)) (T, error) {
	log := logger.GetAppLogger()

	var zero T
	var lastErr error

	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !IsRetryable(err) {
			var pe *ProviderError
			if errors.As(err, &pe) {
				log.WithError(err).WithField("kind", pe.Kind.String()).Error("🔁 [RETRY] Lỗi không retry được, dừng ngay")
			}
			return zero, err
		}

		if attempt == policy.MaxAttempts {
			break
		}

		delay := policy.Delay(attempt)
		log.WithError(err).WithFields(map[string]interface{}{
			"attempt": attempt,
			"max":     policy.MaxAttempts,
			"delayMs": delay.Milliseconds(),
		}).Warn("🔁 [RETRY] Thử lại sau delay")

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delay):
		}
	}

	return zero, lastErr
}
