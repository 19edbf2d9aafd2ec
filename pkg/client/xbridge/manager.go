package xbridge

import (
	"context"
	"fmt"

	"github.com/omeyang/bridgekit/internal/hostenv"
	"github.com/omeyang/bridgekit/pkg/config/xsdkconf"
)

// Manager 把设置、环境映射与 Provider 组装成单凭据的高层入口。
//
// 一个 Manager 对应一个账号：设置给出凭据与部署环境，环境映射出
// 服务基地址，之后所有服务客户端共享同一个会话。多凭据场景直接
// 使用 Provider。
type Manager struct {
	settings   *xsdkconf.Settings
	env        hostenv.Environment
	hostURL    string
	info       ClientInfo
	credential Credential
	provider   *Provider
}

// NewManager 从设置创建 Manager。
//
// 环境缺省为 production；local 环境自动放行 http:// 基地址。
// 设置中的凭据字段缺失时返回 ErrInvalidConfiguration。
func NewManager(settings *xsdkconf.Settings, opts ...Option) (*Manager, error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfiguration, ErrNilSettings)
	}
	settings = settings.Clone()

	env := hostenv.Production
	if settings.Environment != "" {
		parsed, err := hostenv.Parse(settings.Environment)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
		}
		env = parsed
	}
	hostURL, err := env.BaseURL()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}

	cred, err := NewCredential(settings.Study, settings.Email, settings.Password)
	if err != nil {
		return nil, err
	}

	info := DefaultClientInfo().Merge(ClientInfo{
		AppName:    settings.App.Name,
		AppVersion: settings.App.Version,
	})

	config := &Config{
		BaseURL:         hostURL,
		UserAgent:       ComposeUserAgent(info),
		AcceptLanguages: settings.Languages,
		AllowInsecure:   env == hostenv.Local,
	}
	provider, err := NewProvider(config, opts...)
	if err != nil {
		return nil, err
	}

	return &Manager{
		settings:   settings,
		env:        env,
		hostURL:    hostURL,
		info:       info,
		credential: cred,
		provider:   provider,
	}, nil
}

// GetClient 返回 Manager 凭据下指定服务类型的客户端句柄。
func (m *Manager) GetClient(service ServiceType) (Service, error) {
	return m.provider.ClientFor(service, m.credential)
}

// Environment 返回部署环境。
func (m *Manager) Environment() hostenv.Environment { return m.env }

// HostURL 返回服务基地址。
func (m *Manager) HostURL() string { return m.hostURL }

// ClientInfo 返回组装 User-Agent 用的客户端信息。
func (m *Manager) ClientInfo() ClientInfo { return m.info }

// Languages 返回语言偏好列表。
func (m *Manager) Languages() []string {
	return append([]string(nil), m.settings.Languages...)
}

// Credential 返回 Manager 持有的凭据。
func (m *Manager) Credential() Credential { return m.credential }

// Provider 返回底层 Provider，供多凭据或高级场景直接使用。
func (m *Manager) Provider() *Provider { return m.provider }

// SignOut 登出 Manager 持有的凭据。
func (m *Manager) SignOut(ctx context.Context) error {
	return m.provider.SignOut(ctx, m.credential)
}

// Close 关闭底层 Provider。
func (m *Manager) Close() error {
	return m.provider.Close()
}
