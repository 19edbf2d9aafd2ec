package xbridge

import (
	"log/slog"
	"net/http"
)

// Options 可选依赖注入。
type Options struct {
	// HTTPClient 自定义 HTTP 客户端。
	// 为 nil 时 Provider 根据 Config 自行构建。
	HTTPClient *http.Client

	// Logger 日志记录器。
	// 为 nil 时使用 slog.Default()。
	Logger *slog.Logger

	// ClientInfo 客户端信息覆盖。
	// 非零字段覆盖 DefaultClientInfo 的对应字段。
	ClientInfo *ClientInfo
}

// Option 配置选项函数。
type Option func(*Options)

// defaultXbridgeOptions 返回默认选项。
func defaultXbridgeOptions() *Options {
	return &Options{
		Logger: slog.Default(),
	}
}

// WithHTTPClient 注入自定义 HTTP 客户端。
// 注入后 Config.Timeout 与 Config.TLS 不再生效，由客户端自身配置决定。
func WithHTTPClient(client *http.Client) Option {
	return func(o *Options) {
		if client != nil {
			o.HTTPClient = client
		}
	}
}

// WithLogger 注入日志记录器。
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		if logger != nil {
			o.Logger = logger
		}
	}
}

// WithClientInfo 覆盖客户端信息（User-Agent 组装输入）。
func WithClientInfo(info ClientInfo) Option {
	return func(o *Options) {
		o.ClientInfo = &info
	}
}
