package xbridge

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// =============================================================================
// 构造/配置错误
// =============================================================================

var (
	// ErrInvalidConfiguration 表示构造输入缺失或非法。
	// 致命：调用方修正配置后重新构建，任何网络调用发生之前即返回。
	ErrInvalidConfiguration = errors.New("xbridge: invalid configuration")

	// ErrNilSettings 表示传入的设置为 nil。
	ErrNilSettings = errors.New("xbridge: nil settings")

	// ErrProviderClosed 表示 Provider 已关闭。
	ErrProviderClosed = errors.New("xbridge: provider closed")

	// ErrServiceUnknown 表示服务类型不在注册表内，或类型断言不匹配。
	ErrServiceUnknown = errors.New("xbridge: unknown service type")

	// ErrNilOperation 表示传入的操作函数为 nil。
	ErrNilOperation = errors.New("xbridge: nil operation")
)

// =============================================================================
// 认证错误
// =============================================================================

var (
	// ErrInvalidCredentials 表示登录被服务端拒绝。
	// 对该凭据为致命错误，修正凭据之前不会自动重试。
	ErrInvalidCredentials = errors.New("xbridge: invalid credentials")

	// ErrNoRefreshableCredential 表示凭据只携带会话而没有密码，无法刷新。
	// 这种模式下会话过期即为终态。
	ErrNoRefreshableCredential = errors.New("xbridge: no refreshable credential")

	// ErrAuthenticationFailed 表示认证失败（401 类）。
	// 认证传输链内部重放一次后仍收到此错误时，原样向调用方返回。
	ErrAuthenticationFailed = errors.New("xbridge: authentication failed")
)

// =============================================================================
// 响应分类错误
//
// 响应分类器是原始网络结果变成类型化错误的唯一位置。
// 除认证失败的单次透明重放外，所有错误立即向调用方传播。
// =============================================================================

var (
	// ErrValidationFailed 表示请求被服务端校验拒绝（400 类），携带逐字段错误。
	ErrValidationFailed = errors.New("xbridge: validation failed")

	// ErrForbidden 表示权限不足（403）。
	ErrForbidden = errors.New("xbridge: forbidden")

	// ErrNotFound 表示资源不存在（404）。
	ErrNotFound = errors.New("xbridge: not found")

	// ErrConflict 表示资源版本冲突（409）。
	ErrConflict = errors.New("xbridge: conflict")

	// ErrServerError 表示服务端错误（5xx）。
	ErrServerError = errors.New("xbridge: server error")

	// ErrTransport 表示没有收到响应（超时、连接失败）。
	ErrTransport = errors.New("xbridge: transport error")

	// ErrResponseTooLarge 表示响应体超过最大限制。
	// 超过限制的响应会被拒绝而非截断。
	ErrResponseTooLarge = errors.New("xbridge: response body exceeds maximum size limit")
)

// =============================================================================
// 可重试错误
// =============================================================================

// RetryableError 可重试错误接口。
// 实现此接口的错误会被 IsRetryable 识别为可重试或不可重试。
type RetryableError interface {
	error
	Retryable() bool
}

// IsRetryable 检查错误是否可重试。
//
// 库内部只做认证失败的单次透明重放，不做通用自动重试；
// 此函数是提供给调用方（及 RetryTransient）的判断构建块。
//
// 规则：
//   - nil 错误：不需要重试（视为成功）
//   - 实现 RetryableError 接口：根据 Retryable() 返回值判断
//   - ErrTransport / ErrServerError：可重试
//   - 其他错误：默认不可重试
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var re RetryableError
	if errors.As(err, &re) {
		return re.Retryable()
	}

	if errors.Is(err, ErrTransport) || errors.Is(err, ErrServerError) {
		return true
	}

	return false
}

// =============================================================================
// API 错误包装
// =============================================================================

// APIError 表示服务端返回的错误响应。
// StatusCode 决定其在错误分类中的归属（见 Is）。
type APIError struct {
	// StatusCode HTTP 状态码。
	StatusCode int

	// Message 服务端错误消息。
	Message string

	// Errors 逐字段校验错误（400 类响应携带）。
	Errors map[string][]string
}

func (e *APIError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "xbridge: api error: status=%d", e.StatusCode)
	if e.Message != "" {
		fmt.Fprintf(&b, ", message=%s", e.Message)
	}
	if len(e.Errors) > 0 {
		// 排序保证错误串稳定，便于日志聚合
		fields := make([]string, 0, len(e.Errors))
		for f := range e.Errors {
			fields = append(fields, f)
		}
		sort.Strings(fields)
		fmt.Fprintf(&b, ", fields=[%s]", strings.Join(fields, ", "))
	}
	return b.String()
}

// Retryable 判断 API 错误是否可重试。
// 5xx 错误视为可重试，4xx 错误视为不可重试。
func (e *APIError) Retryable() bool {
	return e.StatusCode >= 500
}

// Is 实现 errors.Is 接口。
// 使用直接 == 比较而非递归展开：target 是调用方传入的哨兵错误，
// 而这些哨兵均为 errors.New 创建的简单值。
func (e *APIError) Is(target error) bool {
	switch {
	case e.StatusCode == 400:
		return target == ErrValidationFailed
	case e.StatusCode == 401:
		return target == ErrAuthenticationFailed
	case e.StatusCode == 403:
		return target == ErrForbidden
	case e.StatusCode == 404:
		return target == ErrNotFound
	case e.StatusCode == 409:
		return target == ErrConflict
	case e.StatusCode >= 500:
		return target == ErrServerError
	}
	return false
}

// FieldErrors 返回指定字段的校验错误消息。
// 字段无错误时返回 nil。
func (e *APIError) FieldErrors(field string) []string {
	if e.Errors == nil {
		return nil
	}
	return e.Errors[field]
}

// =============================================================================
// 传输错误包装
// =============================================================================

// TransportError 表示没有收到任何响应的网络失败。
type TransportError struct {
	// Op 发起失败的操作（"METHOD path" 形式）。
	Op string

	// Err 底层网络错误。
	Err error
}

func (e *TransportError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("xbridge: transport error: %s", e.Op)
	}
	return fmt.Sprintf("xbridge: transport error: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is 实现 errors.Is 接口。
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// Retryable 传输失败默认可由调用方策略重试。
func (e *TransportError) Retryable() bool {
	return true
}
