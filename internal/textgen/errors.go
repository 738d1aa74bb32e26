package textgen

import (
	"errors"
	"fmt"
	"net"
	"syscall"
)

// ErrorKind phân loại lỗi provider để retry policy dispatch theo enum
// thay vì match chuỗi message.
type ErrorKind int

const (
	KindFatal     ErrorKind = iota // Lỗi không retry được (4xx trừ 429, config sai, ...)
	KindRateLimit                  // Provider trả 429
	KindTimeout                    // Request timeout
	KindConnReset                  // Connection reset
	KindNetwork                    // Lỗi mạng chung
	KindParse                      // Provider trả text không parse được thành structured payload
)

// String trả về tên kind (dùng trong log)
func (k ErrorKind) String() string {
	switch k {
	case KindRateLimit:
		return "rate_limit"
	case KindTimeout:
		return "timeout"
	case KindConnReset:
		return "conn_reset"
	case KindNetwork:
		return "network"
	case KindParse:
		return "parse"
	default:
		return "fatal"
	}
}

// Retryable cho biết kind này có được retry policy thử lại không.
// Parse error retry được vì regenerate là cách sửa duy nhất.
func (k ErrorKind) Retryable() bool {
	switch k {
	case KindRateLimit, KindTimeout, KindConnReset, KindNetwork, KindParse:
		return true
	}
	return false
}

// ProviderError là lỗi có phân loại từ layer gọi provider
type ProviderError struct {
	Kind    ErrorKind // Phân loại lỗi
	Message string    // Thông báo lỗi
	Err     error     // Lỗi gốc (nếu có)
}

// Error trả về message của lỗi
func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap trả về lỗi gốc (hỗ trợ errors.Is/As)
func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError tạo ProviderError với kind và message
func NewProviderError(kind ErrorKind, message string, err error) *ProviderError {
	return &ProviderError{
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// NewParseError tạo lỗi parse (retryable — regenerate là cách sửa duy nhất)
func NewParseError(message string, err error) *ProviderError {
	return NewProviderError(KindParse, message, err)
}

// IsRetryable kiểm tra err có phải ProviderError retryable không.
// Lỗi không phải ProviderError thì không retry.
func IsRetryable(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Kind.Retryable()
	}
	return false
}

// classifyTransportError phân loại lỗi transport (trước khi có HTTP response)
func classifyTransportError(err error) *ProviderError {
	if errors.Is(err, syscall.ECONNRESET) {
		return NewProviderError(KindConnReset, "Connection reset khi gọi provider", err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return NewProviderError(KindTimeout, "Timeout khi gọi provider", err)
	}

	return NewProviderError(KindNetwork, "Lỗi mạng khi gọi provider", err)
}

// classifyStatusCode phân loại lỗi theo HTTP status code của provider
func classifyStatusCode(statusCode int, body string) *ProviderError {
	switch {
	case statusCode == 429:
		return NewProviderError(KindRateLimit, fmt.Sprintf("Provider trả về rate limit (429): %s", body), nil)
	case statusCode >= 500:
		return NewProviderError(KindNetwork, fmt.Sprintf("Provider trả về lỗi server (%d): %s", statusCode, body), nil)
	default:
		return NewProviderError(KindFatal, fmt.Sprintf("Provider trả về lỗi (%d): %s", statusCode, body), nil)
	}
}
