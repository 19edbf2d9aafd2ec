package xbridge

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
)

// =============================================================================
// Credential 凭据
// =============================================================================

// Credential 标识一个调用方：研究项目 + 账号邮箱，外加密码或预置会话。
// 构造后不可变；身份（研究项目 + 邮箱）作为缓存 key。
type Credential struct {
	study    string
	email    string
	password string
	preset   *UserSession
}

// NewCredential 创建可刷新凭据（携带密码）。
// study/email/password 任一为空时返回 ErrInvalidConfiguration。
func NewCredential(study, email, password string) (Credential, error) {
	if study == "" {
		return Credential{}, fmt.Errorf("%w: missing study identifier", ErrInvalidConfiguration)
	}
	if email == "" {
		return Credential{}, fmt.Errorf("%w: missing account email", ErrInvalidConfiguration)
	}
	if password == "" {
		return Credential{}, fmt.Errorf("%w: missing account password", ErrInvalidConfiguration)
	}
	return Credential{study: study, email: email, password: password}, nil
}

// NewSessionCredential 创建仅携带预置会话的凭据。
// 无密码意味着会话过期后无法刷新（ErrNoRefreshableCredential），
// 调用方应把过期视为终态。
func NewSessionCredential(study, email string, session *UserSession) (Credential, error) {
	if study == "" {
		return Credential{}, fmt.Errorf("%w: missing study identifier", ErrInvalidConfiguration)
	}
	if email == "" {
		return Credential{}, fmt.Errorf("%w: missing account email", ErrInvalidConfiguration)
	}
	if !session.Valid() {
		return Credential{}, fmt.Errorf("%w: session credential requires a session token", ErrInvalidConfiguration)
	}
	return Credential{study: study, email: email, preset: session}, nil
}

// Study 返回研究项目标识。
func (c Credential) Study() string { return c.study }

// Email 返回账号邮箱。
func (c Credential) Email() string { return c.email }

// CanReauthenticate 判断凭据是否携带密码、可执行刷新登录。
func (c Credential) CanReauthenticate() bool { return c.password != "" }

// IsZero 判断凭据是否为零值（未经构造函数创建）。
func (c Credential) IsZero() bool { return c.study == "" && c.email == "" }

// Key 返回凭据身份的缓存 key。
// 身份由研究项目 + 邮箱构成：同一账号换密码仍映射到同一个会话存储。
func (c Credential) Key() string {
	return c.study + "\x00" + c.email
}

// Fingerprint 返回凭据身份的短指纹（xxhash），用于日志。
// 日志中不出现原始邮箱。
func (c Credential) Fingerprint() string {
	return strconv.FormatUint(xxhash.Sum64String(c.Key()), 16)
}

// presetSession 返回预置会话（可能为 nil）。
func (c Credential) presetSession() *UserSession { return c.preset }

// signInRequest 构造登录请求体。
func (c Credential) signInRequest() SignInRequest {
	return SignInRequest{Study: c.study, Email: c.email, Password: c.password}
}

// =============================================================================
// UserSession 会话
// =============================================================================

// UserSession 服务端签发的会话。
// 由会话存储独占持有：刷新时整体替换，从不逐字段修改。
type UserSession struct {
	// Token 会话令牌。
	Token string `json:"sessionToken"`

	// ID 服务端账号标识。
	ID string `json:"id"`

	// Email 账号邮箱。
	Email string `json:"email"`

	// Authenticated 服务端是否确认认证成功。
	Authenticated bool `json:"authenticated"`

	// Raw 登录响应原始负载。
	// 业务字段（同意状态、个人信息等）对本层不透明，原样保留给上层。
	Raw json.RawMessage `json:"-"`

	// ObtainedAt 会话获取时间。
	ObtainedAt time.Time `json:"-"`
}

// Valid 判断会话是否持有令牌。
func (s *UserSession) Valid() bool {
	return s != nil && s.Token != ""
}

// =============================================================================
// 请求体
// =============================================================================

// SignInRequest 登录请求体。
// JSON 字段名与服务端登录接口对齐，不可随意修改。
type SignInRequest struct {
	Study    string `json:"study"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
