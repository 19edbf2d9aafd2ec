package xbridge

import (
	"context"
	"time"

	"github.com/avast/retry-go/v5"
)

// RetryPolicy 调用方策略的瞬态错误重试参数。
type RetryPolicy struct {
	// Attempts 总尝试次数（含首次）。
	Attempts uint

	// Delay 首次重试前的基础退避间隔。
	Delay time.Duration

	// MaxDelay 退避间隔上限。
	MaxDelay time.Duration
}

// DefaultRetryPolicy 返回默认重试策略：3 次尝试，指数退避 500ms 起、上限 5s。
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Attempts: 3,
		Delay:    500 * time.Millisecond,
		MaxDelay: 5 * time.Second,
	}
}

// RetryTransient 以指数退避重试瞬态错误的操作。
//
// 库内部从不自动套用此函数——传输链只做认证失败的单次透明重放，
// 瞬态错误（ErrTransport / ErrServerError）的重试始终是调用方的显式决定。
// 不可重试的错误（4xx 类）立即返回，不消耗剩余尝试次数。
func RetryTransient(ctx context.Context, policy RetryPolicy, fn func(ctx context.Context) error) error {
	if fn == nil {
		return ErrNilOperation
	}
	return retry.New(
		retry.Context(ctx),
		retry.Attempts(policy.Attempts),
		retry.Delay(policy.Delay),
		retry.MaxDelay(policy.MaxDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.RetryIf(IsRetryable),
		retry.LastErrorOnly(true),
	).Do(func() error {
		return fn(ctx)
	})
}
