package xsdkconf

import "errors"

// 设置加载和解析相关错误。
var (
	// ErrEmptyPath 表示设置文件路径为空。
	ErrEmptyPath = errors.New("xsdkconf: empty settings path")

	// ErrUnsupportedFormat 表示不支持的设置文件格式。
	ErrUnsupportedFormat = errors.New("xsdkconf: unsupported settings format")

	// ErrLoadFailed 表示设置加载失败。
	ErrLoadFailed = errors.New("xsdkconf: failed to load settings")

	// ErrParseFailed 表示设置解析失败。
	ErrParseFailed = errors.New("xsdkconf: failed to parse settings")

	// ErrUnmarshalFailed 表示设置反序列化失败。
	ErrUnmarshalFailed = errors.New("xsdkconf: failed to unmarshal settings")
)
