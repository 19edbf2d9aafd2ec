package xsdkconf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	kjson "github.com/knadh/koanf/parsers/json"
	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/omeyang/bridgekit/internal/hostenv"
)

// =============================================================================
// 环境变量 Key
// =============================================================================

const (
	// EnvKeyStudy 研究项目标识环境变量。
	EnvKeyStudy = "STUDY_IDENTIFIER"

	// EnvKeyEmail 账号邮箱环境变量。
	EnvKeyEmail = "ACCOUNT_EMAIL"

	// EnvKeyPassword 账号密码环境变量。
	EnvKeyPassword = "ACCOUNT_PASSWORD"

	// EnvKeyLanguages 语言偏好环境变量（逗号分隔，按优先级排序）。
	EnvKeyLanguages = "LANGUAGES"

	// EnvKeyEnvironment 部署环境环境变量。
	// 取值见 hostenv.Parse。
	EnvKeyEnvironment = hostenv.EnvName
)

// =============================================================================
// Format 与 Settings
// =============================================================================

// Format 定义设置文件格式。
type Format string

// 支持的设置格式。
const (
	// FormatYAML YAML 格式。
	FormatYAML Format = "yaml"

	// FormatJSON JSON 格式。
	FormatJSON Format = "json"
)

// Settings 定义 SDK 设置。
// 字段均为构造输入，业务校验由 xbridge 完成。
type Settings struct {
	// Study 研究项目标识。
	Study string `koanf:"study"`

	// Email 账号邮箱。
	Email string `koanf:"email"`

	// Password 账号密码。
	// 与预置会话二者至少其一；只给会话时过期即为终态。
	Password string `koanf:"password"`

	// Environment 部署环境（local/develop/staging/production）。
	// 为空时由调用方决定默认值（xbridge.NewManager 默认 production）。
	Environment string `koanf:"environment"`

	// Languages 语言偏好列表，按从最偏好到最不偏好排序。
	Languages []string `koanf:"languages"`

	// App 应用信息（可选，用于 User-Agent 组装）。
	App AppInfo `koanf:"app"`
}

// AppInfo 描述嵌入 SDK 的应用。
type AppInfo struct {
	// Name 应用名。
	Name string `koanf:"name"`

	// Version 应用版本号。
	Version int `koanf:"version"`
}

// Clone 创建设置的拷贝。
func (s *Settings) Clone() *Settings {
	if s == nil {
		return nil
	}
	clone := *s
	if s.Languages != nil {
		clone.Languages = append([]string(nil), s.Languages...)
	}
	return &clone
}

// =============================================================================
// 加载入口
// =============================================================================

// Load 从文件路径加载设置。
// 根据文件扩展名自动检测格式（.yaml/.yml 或 .json），
// 加载后应用环境变量覆盖。
func Load(path string, opts ...Option) (*Settings, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}

	format, err := detectFormat(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}

	return LoadBytes(data, format, opts...)
}

// LoadBytes 从字节数据加载设置。
// 需要显式指定格式，适用于嵌入配置或远端下发的场景。
//
// 空数据处理：空数据（len(data) == 0）产生零值设置，
// 环境变量覆盖仍然生效。
func LoadBytes(data []byte, format Format, opts ...Option) (*Settings, error) {
	if !isValidFormat(format) {
		return nil, ErrUnsupportedFormat
	}

	options := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(options)
		}
	}

	k := koanf.New(options.delim)
	if len(data) > 0 {
		if err := loadData(k, data, format); err != nil {
			return nil, err
		}
	}

	settings := &Settings{}
	if err := k.UnmarshalWithConf("", settings, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnmarshalFailed, err)
	}

	// 兼容把 languages 写成逗号分隔字符串的设置文件
	if len(settings.Languages) == 0 {
		if raw := k.String("languages"); raw != "" {
			settings.Languages = splitList(raw)
		}
	}

	if options.envOverride {
		applyEnv(settings)
	}

	return settings, nil
}

// FromEnv 仅从环境变量构造设置。
// 适用于完全不落盘的部署（CI、容器）。
func FromEnv() *Settings {
	settings := &Settings{}
	applyEnv(settings)
	return settings
}

// =============================================================================
// 内部辅助函数
// =============================================================================

// applyEnv 应用环境变量覆盖。
// 环境变量优先于文件内容，空值不覆盖。
func applyEnv(s *Settings) {
	if v := os.Getenv(EnvKeyStudy); v != "" {
		s.Study = v
	}
	if v := os.Getenv(EnvKeyEmail); v != "" {
		s.Email = v
	}
	if v := os.Getenv(EnvKeyPassword); v != "" {
		s.Password = v
	}
	if v := os.Getenv(EnvKeyLanguages); v != "" {
		s.Languages = splitList(v)
	}
	if v := os.Getenv(EnvKeyEnvironment); v != "" {
		s.Environment = v
	}
}

// splitList 拆分逗号分隔列表，去除空白项。
func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// detectFormat 根据文件扩展名检测设置格式。
func detectFormat(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown extension %s", ErrUnsupportedFormat, ext)
	}
}

// isValidFormat 检查格式是否有效。
func isValidFormat(format Format) bool {
	switch format {
	case FormatYAML, FormatJSON:
		return true
	default:
		return false
	}
}

// loadData 将字节数据加载进 koanf 实例。
func loadData(k *koanf.Koanf, data []byte, format Format) error {
	var parser koanf.Parser
	switch format {
	case FormatYAML:
		parser = kyaml.Parser()
	case FormatJSON:
		parser = kjson.Parser()
	default:
		return ErrUnsupportedFormat
	}

	if err := k.Load(rawbytes.Provider(data), parser); err != nil {
		return fmt.Errorf("%w: %w", ErrParseFailed, err)
	}
	return nil
}
