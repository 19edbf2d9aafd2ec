package xbridge

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
)

// Provider 按（凭据身份，服务类型）提供服务客户端句柄。
//
// 两层结构：
//   - 会话层：每个凭据身份独占一个 SessionStore 和一条认证传输链，
//     相等的凭据共享同一个会话，不同凭据永不共享。此层不淘汰——
//     丢弃活跃会话会使其下全部句柄失效。
//   - 句柄层：服务客户端句柄放在有界 LRU 中，淘汰后透明重建。
type Provider struct {
	config *Config
	opts   *Options
	logger *slog.Logger

	httpClient     *http.Client
	userAgent      string
	acceptLanguage string

	// unauth 未认证传输：登录等公开接口走这条链。
	// authAPI 绑定其上，会话刷新的登录调用绝不附加会话。
	unauth  *Transport
	authAPI *AuthenticationService

	cache *clientCache

	mu         sync.Mutex
	stores     map[string]*SessionStore
	transports map[string]*Transport

	closed atomic.Bool
}

// NewProvider 创建 Provider。
// config 经 Validate 校验后深拷贝，构造后外部修改不影响 Provider。
func NewProvider(config *Config, opts ...Option) (*Provider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	config = config.Clone()
	config.ApplyDefaults()

	options := defaultXbridgeOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(options)
		}
	}

	httpClient := options.HTTPClient
	if httpClient == nil {
		tlsConfig, err := config.TLS.BuildTLSConfig()
		if err != nil {
			return nil, err
		}
		transport := http.DefaultTransport
		if tlsConfig != nil {
			t := http.DefaultTransport.(*http.Transport).Clone()
			t.TLSClientConfig = tlsConfig
			transport = t
		}
		httpClient = &http.Client{
			Timeout:   config.Timeout,
			Transport: transport,
		}
	}

	info := DefaultClientInfo()
	if options.ClientInfo != nil {
		info = info.Merge(*options.ClientInfo)
	}
	userAgent := config.UserAgent
	if userAgent == "" {
		userAgent = ComposeUserAgent(info)
	}

	p := &Provider{
		config:         config,
		opts:           options,
		logger:         options.Logger,
		httpClient:     httpClient,
		userAgent:      userAgent,
		acceptLanguage: ComposeAcceptLanguage(config.AcceptLanguages),
		cache:          newClientCache(config.CacheSize, config.CacheTTL),
		stores:         make(map[string]*SessionStore),
		transports:     make(map[string]*Transport),
	}
	p.unauth = newTransport(config.BaseURL, httpClient, p.baseStages())
	p.authAPI = &AuthenticationService{transport: p.unauth}
	return p, nil
}

// baseStages 返回未认证传输的阶段链。
func (p *Provider) baseStages() []Stage {
	return []Stage{
		headerStage(p.userAgent, p.acceptLanguage),
		warningStage(p.logger),
		classifyStage(),
		loggingStage(p.logger),
	}
}

// authStages 返回认证传输的阶段链。
// 会话附加位于分类之外、请求头装饰之内（顺序契约见 stage.go）。
func (p *Provider) authStages(store *SessionStore) []Stage {
	return []Stage{
		headerStage(p.userAgent, p.acceptLanguage),
		attachStage(store),
		warningStage(p.logger),
		classifyStage(),
		loggingStage(p.logger),
	}
}

// Authentication 返回未认证的认证服务。
// 用于不需要会话的公开操作（登录探活等）。
func (p *Provider) Authentication() *AuthenticationService {
	return p.authAPI
}

// Client 返回指定服务类型的未认证客户端句柄。
// 请求不附加会话，受保护接口会收到 401 类错误；句柄同样经缓存记忆。
func (p *Provider) Client(service ServiceType) (Service, error) {
	if p.closed.Load() {
		return nil, ErrProviderClosed
	}
	factory, ok := serviceFactories[service]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrServiceUnknown, service)
	}

	// 未认证句柄共用空凭据槽位
	key := cacheKey{service: service}
	return p.cache.getOrBuild(key, func() (Service, error) {
		return factory(p.unauth), nil
	})
}

// ClientFor 返回指定凭据与服务类型的客户端句柄。
// 句柄惰性构建并记忆；被缓存淘汰后透明重建，凭据的会话存储不受影响。
func (p *Provider) ClientFor(service ServiceType, cred Credential) (Service, error) {
	if p.closed.Load() {
		return nil, ErrProviderClosed
	}
	if cred.IsZero() {
		return nil, fmt.Errorf("%w: zero credential", ErrInvalidConfiguration)
	}
	factory, ok := serviceFactories[service]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrServiceUnknown, service)
	}

	key := cacheKey{credential: cred.Key(), service: service}
	return p.cache.getOrBuild(key, func() (Service, error) {
		transport, err := p.transportFor(cred)
		if err != nil {
			return nil, err
		}
		p.logger.Debug("service client built",
			slog.String("service", string(service)),
			slog.String("credential", cred.Fingerprint()),
		)
		return factory(transport), nil
	})
}

// SessionStore 返回凭据的会话存储，按需创建。
// 暴露给需要直接控制会话生命周期（预热、主动失效）的调用方。
func (p *Provider) SessionStore(cred Credential) (*SessionStore, error) {
	if p.closed.Load() {
		return nil, ErrProviderClosed
	}
	if cred.IsZero() {
		return nil, fmt.Errorf("%w: zero credential", ErrInvalidConfiguration)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.storeLocked(cred), nil
}

// transportFor 返回凭据的认证传输，按需创建。
// 会话存储与认证传输一一配对，创建后固定不变。
func (p *Provider) transportFor(cred Credential) (*Transport, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	key := cred.Key()
	if t, ok := p.transports[key]; ok {
		return t, nil
	}

	store := p.storeLocked(cred)
	t := newTransport(p.config.BaseURL, p.httpClient, p.authStages(store))
	p.transports[key] = t
	return t, nil
}

// storeLocked 返回凭据的会话存储，按需创建。调用方持有 p.mu。
func (p *Provider) storeLocked(cred Credential) *SessionStore {
	key := cred.Key()
	if s, ok := p.stores[key]; ok {
		return s
	}
	s := newSessionStore(cred, p.authAPI, p.logger, p.config.Timeout)
	p.stores[key] = s
	return s
}

// Evict 主动移除单个句柄缓存条目。
// 下次 ClientFor 透明重建，仅用于测试与诊断。
func (p *Provider) Evict(service ServiceType, cred Credential) {
	p.cache.evict(cacheKey{credential: cred.Key(), service: service})
}

// SignOut 登出：废弃服务端会话并清除本地状态。
//
// 先经认证传输调用登出接口（服务端废弃会话），再清除会话存储与
// 该凭据的全部句柄缓存。服务端调用失败时本地状态仍被清除，
// 错误返回给调用方决定是否重试。
func (p *Provider) SignOut(ctx context.Context, cred Credential) error {
	if p.closed.Load() {
		return ErrProviderClosed
	}

	var signOutErr error
	if svc, err := As[*AuthenticationService](p.ClientFor(ServiceAuthentication, cred)); err == nil {
		signOutErr = svc.SignOut(ctx)
	} else {
		signOutErr = err
	}

	key := cred.Key()
	p.mu.Lock()
	if s, ok := p.stores[key]; ok {
		s.Invalidate()
	}
	delete(p.stores, key)
	delete(p.transports, key)
	p.mu.Unlock()
	p.cache.evictCredential(key)

	p.logger.Info("credential signed out",
		slog.String("credential", cred.Fingerprint()),
	)
	return signOutErr
}

// Close 关闭 Provider。
// 关闭后所有获取句柄的入口返回 ErrProviderClosed。幂等。
func (p *Provider) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	p.cache.purge()
	p.mu.Lock()
	p.stores = make(map[string]*SessionStore)
	p.transports = make(map[string]*Transport)
	p.mu.Unlock()
	return nil
}
