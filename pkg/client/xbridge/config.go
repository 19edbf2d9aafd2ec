package xbridge

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"
)

// 默认值。
const (
	// DefaultTimeout 请求默认超时时间。
	DefaultTimeout = 30 * time.Second

	// DefaultCacheSize 客户端句柄缓存默认容量。
	DefaultCacheSize = 64
)

// Config Provider 配置。
type Config struct {
	// BaseURL 服务基地址（含 scheme）。
	// 通常由 hostenv 环境映射给出，NewManager 会自动填充。
	BaseURL string

	// UserAgent User-Agent 值。
	// 为空时由 Provider 用 DefaultClientInfo 组装。
	UserAgent string

	// AcceptLanguages 语言偏好列表，按从最偏好到最不偏好排序。
	AcceptLanguages []string

	// Timeout 请求超时时间。
	// 默认 30 秒。
	Timeout time.Duration

	// CacheSize 客户端句柄缓存容量。
	// 默认 64。
	CacheSize int

	// CacheTTL 句柄缓存过期时间。
	// 0 表示不按时间过期（默认）。
	CacheTTL time.Duration

	// AllowInsecure 是否放行 http:// 基地址。
	// 仅用于本地开发环境。
	AllowInsecure bool

	// TLS TLS 配置。
	// 为 nil 时使用默认配置（启用证书验证）。
	TLS *TLSConfig
}

// TLSConfig TLS 配置。
type TLSConfig struct {
	// InsecureSkipVerify 是否跳过证书验证。
	// 仅用于开发/测试环境，生产环境请勿启用。
	InsecureSkipVerify bool

	// RootCAFile CA 证书文件路径。
	RootCAFile string

	// CertFile 客户端证书文件路径。
	CertFile string

	// KeyFile 客户端密钥文件路径。
	KeyFile string
}

// Validate 验证配置有效性。
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: nil config", ErrInvalidConfiguration)
	}

	if err := c.validateBaseURL(); err != nil {
		return err
	}

	if c.Timeout < 0 {
		return fmt.Errorf("%w: negative timeout", ErrInvalidConfiguration)
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("%w: negative cache size", ErrInvalidConfiguration)
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("%w: negative cache ttl", ErrInvalidConfiguration)
	}

	return nil
}

// validateBaseURL 校验基地址格式和协议安全性。
func (c *Config) validateBaseURL() error {
	base := strings.TrimSpace(c.BaseURL)
	if base == "" {
		return fmt.Errorf("%w: missing base url", ErrInvalidConfiguration)
	}

	// 设计决策: 用 net/url 严格校验基地址，确保包含有效 scheme 和主机名。
	// 无 scheme 的地址在拼接接口路径后无法正确请求，
	// fail-fast 在构造阶段暴露问题，而非在运行期请求失败。
	u, err := url.Parse(base)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%w: invalid base url %q", ErrInvalidConfiguration, c.BaseURL)
	}

	// 设计决策: 强制 HTTPS——传输链携带会话令牌和账号凭据，
	// 明文 HTTP 会把凭据暴露给网络上的窃听者。
	// 本地开发环境通过 AllowInsecure = true 放行 http://。
	if !c.AllowInsecure && u.Scheme != "https" {
		return fmt.Errorf("%w: insecure base url %q requires AllowInsecure", ErrInvalidConfiguration, c.BaseURL)
	}

	return nil
}

// ApplyDefaults 应用默认值。
func (c *Config) ApplyDefaults() {
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.CacheSize == 0 {
		c.CacheSize = DefaultCacheSize
	}
}

// Clone 创建配置的深拷贝。
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}

	clone := *c
	if c.AcceptLanguages != nil {
		clone.AcceptLanguages = append([]string(nil), c.AcceptLanguages...)
	}
	if c.TLS != nil {
		tlsCopy := *c.TLS
		clone.TLS = &tlsCopy
	}
	return &clone
}

// BuildTLSConfig 构建 TLS 配置。
func (c *TLSConfig) BuildTLSConfig() (*tls.Config, error) {
	if c == nil {
		return nil, nil
	}

	//nolint:gosec // G402: InsecureSkipVerify 由用户配置控制，仅用于开发/测试环境
	tlsConfig := &tls.Config{
		InsecureSkipVerify: c.InsecureSkipVerify,
		MinVersion:         tls.VersionTLS12,
	}

	// 加载 CA 证书
	if c.RootCAFile != "" {
		caCert, err := os.ReadFile(c.RootCAFile)
		if err != nil {
			return nil, fmt.Errorf("xbridge: failed to read CA file: %w", err)
		}
		caCertPool := x509.NewCertPool()
		if !caCertPool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("xbridge: failed to parse CA certificate")
		}
		tlsConfig.RootCAs = caCertPool
	}

	// 加载客户端证书
	if c.CertFile != "" && c.KeyFile != "" {
		cert, err := tls.LoadX509KeyPair(c.CertFile, c.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("xbridge: failed to load client certificate: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	return tlsConfig, nil
}
