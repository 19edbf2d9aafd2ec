package xsdkconf

// options 内部可选配置。
type options struct {
	delim       string
	envOverride bool
}

// Option 定义设置加载的可选配置函数类型。
type Option func(*options)

// defaultOptions 返回默认配置。
func defaultOptions() *options {
	return &options{
		delim:       ".",
		envOverride: true,
	}
}

// WithDelim 设置 koanf 的层级分隔符。
// 默认 "."。
func WithDelim(delim string) Option {
	return func(o *options) {
		if delim != "" {
			o.delim = delim
		}
	}
}

// WithoutEnvOverride 禁用环境变量覆盖。
// 适用于测试或需要严格以文件为准的场景。
func WithoutEnvOverride() Option {
	return func(o *options) {
		o.envOverride = false
	}
}
