package xbridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// sessionAuthenticator 执行登录的最小接口。
// 由绑定在未认证传输上的 AuthenticationService 实现：
// 刷新期间的登录调用绝不能再经过会话附加阶段，否则 401 会递归触发刷新。
type sessionAuthenticator interface {
	SignIn(ctx context.Context, req SignInRequest) (*UserSession, error)
}

// refreshKey singleflight 合并 key。
// 每个凭据独占一个 SessionStore，store 内只有一类刷新操作。
const refreshKey = "refresh"

// SessionStore 持有单个凭据的服务端会话。
//
// 并发契约：
//   - 同一 store 上的并发刷新经 singleflight 合并，每个刷新周期
//     底层登录至多执行一次，所有等待者收到同一结果
//   - 会话槽整体替换，读取方不会观察到半更新状态
//   - 单调序号保证过期的刷新结果不会覆盖更新的会话
type SessionStore struct {
	cred    Credential
	auth    sessionAuthenticator
	logger  *slog.Logger
	timeout time.Duration

	sf  singleflight.Group
	seq atomic.Uint64

	mu        sync.RWMutex
	session   *UserSession
	committed uint64
}

// newSessionStore 创建会话存储。
// 凭据携带预置会话时作为初始会话提交。
func newSessionStore(cred Credential, auth sessionAuthenticator, logger *slog.Logger, timeout time.Duration) *SessionStore {
	s := &SessionStore{
		cred:    cred,
		auth:    auth,
		logger:  logger,
		timeout: timeout,
	}
	if preset := cred.presetSession(); preset.Valid() {
		s.session = preset
		s.committed = s.seq.Add(1)
	}
	return s
}

// Peek 返回当前会话，不触发刷新。
// 无有效会话时返回 nil。
func (s *SessionStore) Peek() *UserSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.session.Valid() {
		return nil
	}
	return s.session
}

// Current 返回当前会话，无有效会话时先刷新。
func (s *SessionStore) Current(ctx context.Context) (*UserSession, error) {
	if sess := s.Peek(); sess != nil {
		return sess, nil
	}
	return s.Refresh(ctx)
}

// Invalidate 废弃当前会话。
// 下次 Current/Refresh 会重新登录。
func (s *SessionStore) Invalidate() {
	s.mu.Lock()
	s.session = nil
	s.mu.Unlock()
}

// Refresh 执行刷新协议：登录并用新会话整体替换会话槽。
//
// 凭据无密码时返回 ErrNoRefreshableCredential（终态，见 Credential）。
// 登录被拒（401 类）时包装为 ErrInvalidCredentials——对该凭据致命，
// 继续重试同样的凭据不会有不同结果。
//
// 刷新与发起请求的调用方解耦：等待者取消不会中断进行中的共享刷新，
// 刷新自身受 store 级超时约束。
func (s *SessionStore) Refresh(ctx context.Context) (*UserSession, error) {
	if !s.cred.CanReauthenticate() {
		return nil, fmt.Errorf("%w: credential %s carries no password", ErrNoRefreshableCredential, s.cred.Fingerprint())
	}

	v, err, shared := s.sf.Do(refreshKey, func() (any, error) {
		seq := s.seq.Add(1)
		sess, signErr := s.signIn(ctx)
		if signErr != nil {
			return nil, signErr
		}
		s.commit(seq, sess)
		return sess, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.logger.Debug("session refresh coalesced",
			slog.String("credential", s.cred.Fingerprint()),
		)
	}
	return v.(*UserSession), nil
}

// signIn 执行底层登录调用。
// 脱离调用方取消链路：共享刷新不应因单个等待者放弃而失败。
func (s *SessionStore) signIn(ctx context.Context) (*UserSession, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	start := time.Now()
	sess, err := s.auth.SignIn(ctx, s.cred.signInRequest())
	if err != nil {
		if errors.Is(err, ErrAuthenticationFailed) {
			s.logger.Warn("sign-in rejected",
				slog.String("credential", s.cred.Fingerprint()),
			)
			return nil, fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
		}
		return nil, err
	}
	if !sess.Valid() {
		return nil, fmt.Errorf("%w: sign-in response carries no session token", ErrAuthenticationFailed)
	}

	s.logger.Info("session refreshed",
		slog.String("credential", s.cred.Fingerprint()),
		slog.Duration("elapsed", time.Since(start)),
	)
	return sess, nil
}

// commit 提交刷新结果。
// 仅当序号比已提交会话更新时生效，迟到的旧结果被丢弃。
func (s *SessionStore) commit(seq uint64, sess *UserSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq <= s.committed {
		s.logger.Debug("stale session refresh discarded",
			slog.String("credential", s.cred.Fingerprint()),
			slog.Uint64("seq", seq),
			slog.Uint64("committed", s.committed),
		)
		return
	}
	s.session = sess
	s.committed = seq
}
