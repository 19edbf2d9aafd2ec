package xbridge

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// 拦截器阶段
//
// 传输链由有序的阶段列表组成，顺序是契约而非实现细节：
//
//	header -> session-attach -> warning -> classify -> logging
//
// 列表靠前的阶段更靠外：请求从前往后经过各阶段，响应/错误从后往前回溯。
// 会话附加阶段位于分类阶段之外，因此它在回溯时看到的是已分类的错误，
// 可以直接用 errors.Is(err, ErrAuthenticationFailed) 做重放判定；
// 日志阶段位于最内层，记录的是每一次原始网络尝试（重放会产生两条日志）。
// =============================================================================

// RoundFunc 执行一次 HTTP 交换的函数。
type RoundFunc func(*http.Request) (*http.Response, error)

// Stage 传输链中的一个命名阶段。
// Round 包裹 next 执行：可以在调用 next 前修饰请求，
// 在 next 返回后观察或改写响应与错误。
type Stage struct {
	// Name 阶段名，用于链顺序断言与日志。
	Name string

	// Round 阶段逻辑。
	Round func(req *http.Request, next RoundFunc) (*http.Response, error)
}

// 阶段名常量。
const (
	StageHeader        = "header"
	StageSessionAttach = "session-attach"
	StageWarning       = "warning"
	StageClassify      = "classify"
	StageLogging       = "logging"
)

// composeStages 把阶段列表组合成单个执行函数。
// 从后向前折叠：stages[0] 在最外层。
func composeStages(stages []Stage, final RoundFunc) RoundFunc {
	run := final
	for i := len(stages) - 1; i >= 0; i-- {
		stage := stages[i]
		next := run
		run = func(req *http.Request) (*http.Response, error) {
			return stage.Round(req, next)
		}
	}
	return run
}

// =============================================================================
// 内置阶段
// =============================================================================

// headerStage 构造请求头装饰阶段。
// 为每个请求设置 User-Agent、Accept-Language（有语言偏好时）与 Accept。
// 不触碰已由调用方显式设置的值。
func headerStage(userAgent, acceptLanguage string) Stage {
	return Stage{
		Name: StageHeader,
		Round: func(req *http.Request, next RoundFunc) (*http.Response, error) {
			if req.Header.Get(HeaderUserAgent) == "" && userAgent != "" {
				req.Header.Set(HeaderUserAgent, userAgent)
			}
			if req.Header.Get(HeaderAcceptLanguage) == "" && acceptLanguage != "" {
				req.Header.Set(HeaderAcceptLanguage, acceptLanguage)
			}
			if req.Header.Get(HeaderAccept) == "" {
				req.Header.Set(HeaderAccept, "application/json")
			}
			return next(req)
		},
	}
}

// warningStage 构造弃用标注阶段。
// 响应携带 Api-Status 头时记录一条 Warn 日志，提示调用方迁移；
// 不改变响应处理流程。
func warningStage(logger *slog.Logger) Stage {
	return Stage{
		Name: StageWarning,
		Round: func(req *http.Request, next RoundFunc) (*http.Response, error) {
			resp, err := next(req)
			if resp != nil {
				status := resp.Header.Get(HeaderAPIStatus)
				if status == "" {
					status = resp.Header.Get(HeaderWarning)
				}
				if status != "" {
					logger.Warn("api endpoint reports deprecation status",
						slog.String("method", req.Method),
						slog.String("path", req.URL.Path),
						slog.String("api_status", status),
					)
				}
			}
			return resp, err
		},
	}
}

// loggingStage 构造日志阶段。
// 位于链最内层：为每次网络尝试生成请求标识并记录耗时与结果。
// 认证重放会产生两条相互独立的日志记录。
func loggingStage(logger *slog.Logger) Stage {
	return Stage{
		Name: StageLogging,
		Round: func(req *http.Request, next RoundFunc) (*http.Response, error) {
			requestID := uuid.NewString()
			req.Header.Set(HeaderRequestID, requestID)

			start := time.Now()
			resp, err := next(req)
			elapsed := time.Since(start)

			attrs := []any{
				slog.String("request_id", requestID),
				slog.String("method", req.Method),
				slog.String("path", req.URL.Path),
				slog.Duration("elapsed", elapsed),
			}
			switch {
			case err != nil:
				logger.Debug("http exchange failed", append(attrs, slog.Any("error", err))...)
			default:
				logger.Debug("http exchange completed", append(attrs, slog.Int("status", resp.StatusCode))...)
			}
			return resp, err
		},
	}
}
