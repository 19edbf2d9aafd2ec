package xbridge

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
)

// testCredential 返回测试用可刷新凭据。
func testCredential(t *testing.T) Credential {
	t.Helper()
	cred, err := NewCredential("test-study", "tester@example.com", "secret")
	if err != nil {
		t.Fatalf("NewCredential failed: %v", err)
	}
	return cred
}

// testConfig 返回指向指定地址的测试配置。
func testConfig(baseURL string) *Config {
	return &Config{
		BaseURL:       baseURL,
		AllowInsecure: true,
	}
}

// testProvider 创建指向测试服务器的 Provider。
func testProvider(t *testing.T, baseURL string, opts ...Option) *Provider {
	t.Helper()
	p, err := NewProvider(testConfig(baseURL), opts...)
	if err != nil {
		t.Fatalf("NewProvider failed: %v", err)
	}
	t.Cleanup(func() { _ = p.Close() })
	return p
}

// quietLogger 返回丢弃输出的 logger，避免测试日志噪音。
func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// =============================================================================
// 模拟服务端
// =============================================================================

// bridgeServer 模拟平台服务端。
// 记录每次请求，登录签发自增令牌，受保护接口校验 Authorization。
type bridgeServer struct {
	t      *testing.T
	server *httptest.Server

	mu       sync.Mutex
	requests []recordedRequest

	signInCount atomic.Int64
	tokenSeq    atomic.Int64

	// rejectTokens 值为 true 的令牌被判为 401。
	rejectTokens sync.Map

	// signInStatus 非 0 时登录固定返回该状态码。
	signInStatus atomic.Int64

	// protectedHandler 受保护接口通过鉴权后的处理逻辑，可为 nil。
	protectedHandler http.HandlerFunc
}

type recordedRequest struct {
	Method        string
	Path          string
	Authorization string
	UserAgent     string
	AcceptLang    string
	RequestID     string
	Body          []byte
}

func newBridgeServer(t *testing.T) *bridgeServer {
	t.Helper()
	bs := &bridgeServer{t: t}
	bs.server = httptest.NewServer(http.HandlerFunc(bs.handle))
	t.Cleanup(bs.server.Close)
	return bs
}

func (bs *bridgeServer) URL() string { return bs.server.URL }

func (bs *bridgeServer) handle(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	bs.mu.Lock()
	bs.requests = append(bs.requests, recordedRequest{
		Method:        r.Method,
		Path:          r.URL.Path,
		Authorization: r.Header.Get(HeaderAuthorization),
		UserAgent:     r.Header.Get(HeaderUserAgent),
		AcceptLang:    r.Header.Get(HeaderAcceptLanguage),
		RequestID:     r.Header.Get(HeaderRequestID),
		Body:          body,
	})
	bs.mu.Unlock()

	if r.URL.Path == pathSignIn {
		bs.handleSignIn(w)
		return
	}

	token, ok := bs.authorize(r)
	if !ok {
		writeAPIError(w, http.StatusUnauthorized, "session expired", nil)
		return
	}

	if bs.protectedHandler != nil {
		bs.protectedHandler(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "token": token})
}

func (bs *bridgeServer) handleSignIn(w http.ResponseWriter) {
	bs.signInCount.Add(1)
	if status := bs.signInStatus.Load(); status != 0 {
		writeAPIError(w, int(status), "sign-in rejected", nil)
		return
	}
	token := fmt.Sprintf("token-%d", bs.tokenSeq.Add(1))
	writeJSON(w, http.StatusOK, map[string]any{
		"sessionToken":  token,
		"id":            "account-1",
		"email":         "tester@example.com",
		"authenticated": true,
	})
}

// authorize 校验请求令牌。
func (bs *bridgeServer) authorize(r *http.Request) (string, bool) {
	auth := r.Header.Get(HeaderAuthorization)
	if len(auth) <= len(bearerPrefix) {
		return "", false
	}
	token := auth[len(bearerPrefix):]
	if rejected, ok := bs.rejectTokens.Load(token); ok && rejected.(bool) {
		return token, false
	}
	return token, true
}

// rejectToken 把令牌标记为失效，后续携带该令牌的请求返回 401。
func (bs *bridgeServer) rejectToken(token string) {
	bs.rejectTokens.Store(token, true)
}

// lastToken 返回最近签发的令牌。
func (bs *bridgeServer) lastToken() string {
	return fmt.Sprintf("token-%d", bs.tokenSeq.Load())
}

// recorded 返回截至当前的请求记录副本。
func (bs *bridgeServer) recorded() []recordedRequest {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	return append([]recordedRequest(nil), bs.requests...)
}

// requestsTo 返回指定路径的请求记录。
func (bs *bridgeServer) requestsTo(path string) []recordedRequest {
	var out []recordedRequest
	for _, r := range bs.recorded() {
		if r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeAPIError(w http.ResponseWriter, status int, message string, fields map[string][]string) {
	writeJSON(w, status, map[string]any{"message": message, "errors": fields})
}

// =============================================================================
// 模拟认证器
// =============================================================================

// mockAuthenticator sessionAuthenticator 的手写模拟。
type mockAuthenticator struct {
	mu       sync.Mutex
	calls    int
	signInFn func(ctx context.Context, req SignInRequest) (*UserSession, error)

	// block 非 nil 时 SignIn 会阻塞到该通道关闭，用于并发合并测试。
	block chan struct{}
}

func (m *mockAuthenticator) SignIn(ctx context.Context, req SignInRequest) (*UserSession, error) {
	m.mu.Lock()
	m.calls++
	n := m.calls
	fn := m.signInFn
	block := m.block
	m.mu.Unlock()

	if block != nil {
		<-block
	}
	if fn != nil {
		return fn(ctx, req)
	}
	return &UserSession{Token: fmt.Sprintf("mock-token-%d", n), Authenticated: true}, nil
}

func (m *mockAuthenticator) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
