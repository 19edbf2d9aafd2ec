package xbridge

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// =============================================================================
// 服务类型与注册表
// =============================================================================

// ServiceType 标识平台的一个服务面。
type ServiceType string

// 支持的服务类型。
const (
	ServiceAuthentication ServiceType = "authentication"
	ServiceParticipants   ServiceType = "participants"
	ServiceStudies        ServiceType = "studies"
	ServiceSchedules      ServiceType = "schedules"
	ServiceUploads        ServiceType = "uploads"
	ServiceSurveys        ServiceType = "surveys"
)

// Service 服务客户端句柄的公共接口。
// 具体类型经 As 取回。
type Service interface {
	// Type 返回服务类型。
	Type() ServiceType
}

// serviceFactories 服务类型到构造函数的注册表。
// 缓存按需构建句柄时查询此表。
var serviceFactories = map[ServiceType]func(*Transport) Service{
	ServiceAuthentication: func(t *Transport) Service { return &AuthenticationService{transport: t} },
	ServiceParticipants:   func(t *Transport) Service { return &ParticipantService{transport: t} },
	ServiceStudies:        func(t *Transport) Service { return &StudyService{transport: t} },
	ServiceSchedules:      func(t *Transport) Service { return &ScheduleService{transport: t} },
	ServiceUploads:        func(t *Transport) Service { return &UploadService{transport: t} },
	ServiceSurveys:        func(t *Transport) Service { return &SurveyService{transport: t} },
}

// As 把服务句柄断言为具体类型。
// 透传 err，便于链式调用：svc, err := xbridge.As[*ParticipantService](p.ClientFor(...))。
func As[T Service](svc Service, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	typed, ok := svc.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s is not the requested concrete type", ErrServiceUnknown, svc.Type())
	}
	return typed, nil
}

// =============================================================================
// 接口路径
// =============================================================================

const (
	pathSignIn          = "/v4/auth/signIn"
	pathSignOut         = "/v4/auth/signOut"
	pathParticipantSelf = "/v4/participants/self"
	pathStudies         = "/v4/studies"
	pathSchedules       = "/v4/schedules"
	pathUploads         = "/v4/uploads"
	pathSurveys         = "/v4/surveys"
)

// =============================================================================
// 认证服务
// =============================================================================

// AuthenticationService 认证服务。
//
// Provider 内部的会话刷新使用绑定在未认证传输上的实例（登录不附加会话）；
// 经 ClientFor 取得的实例绑定认证传输，用于登出等需要会话的操作。
type AuthenticationService struct {
	transport *Transport
}

// Type 实现 Service 接口。
func (s *AuthenticationService) Type() ServiceType { return ServiceAuthentication }

// SignIn 执行登录。
// 会话被拒时上游分类为 401 类错误（ErrAuthenticationFailed）。
// 登录响应的完整负载保留在 UserSession.Raw 中。
func (s *AuthenticationService) SignIn(ctx context.Context, req SignInRequest) (*UserSession, error) {
	var raw json.RawMessage
	if err := s.transport.DoJSON(ctx, http.MethodPost, pathSignIn, req, &raw); err != nil {
		return nil, err
	}

	sess := &UserSession{}
	if err := json.Unmarshal(raw, sess); err != nil {
		return nil, &TransportError{Op: "decode sign-in response", Err: err}
	}
	sess.Raw = raw
	sess.ObtainedAt = time.Now()
	return sess, nil
}

// SignOut 执行登出，废弃服务端会话。
func (s *AuthenticationService) SignOut(ctx context.Context) error {
	return s.transport.DoJSON(ctx, http.MethodPost, pathSignOut, nil, nil)
}

// =============================================================================
// 业务服务
//
// 业务负载对本层不透明：原样透传 JSON，结构解释交给上层。
// =============================================================================

// ParticipantService 参与者服务。
type ParticipantService struct {
	transport *Transport
}

// Type 实现 Service 接口。
func (s *ParticipantService) Type() ServiceType { return ServiceParticipants }

// Self 返回当前账号的参与者记录。
func (s *ParticipantService) Self(ctx context.Context) (json.RawMessage, error) {
	var out json.RawMessage
	if err := s.transport.DoJSON(ctx, http.MethodGet, pathParticipantSelf, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateSelf 更新当前账号的参与者记录。
func (s *ParticipantService) UpdateSelf(ctx context.Context, record any) error {
	return s.transport.DoJSON(ctx, http.MethodPost, pathParticipantSelf, record, nil)
}

// StudyService 研究项目服务。
type StudyService struct {
	transport *Transport
}

// Type 实现 Service 接口。
func (s *StudyService) Type() ServiceType { return ServiceStudies }

// List 返回当前账号可见的研究项目列表。
func (s *StudyService) List(ctx context.Context) (json.RawMessage, error) {
	var out json.RawMessage
	if err := s.transport.DoJSON(ctx, http.MethodGet, pathStudies, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get 返回指定研究项目。
func (s *StudyService) Get(ctx context.Context, studyID string) (json.RawMessage, error) {
	if studyID == "" {
		return nil, fmt.Errorf("%w: missing study id", ErrInvalidConfiguration)
	}
	var out json.RawMessage
	if err := s.transport.DoJSON(ctx, http.MethodGet, pathStudies+"/"+studyID, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ScheduleService 日程服务。
type ScheduleService struct {
	transport *Transport
}

// Type 实现 Service 接口。
func (s *ScheduleService) Type() ServiceType { return ServiceSchedules }

// Timeline 返回当前账号的活动日程。
func (s *ScheduleService) Timeline(ctx context.Context) (json.RawMessage, error) {
	var out json.RawMessage
	if err := s.transport.DoJSON(ctx, http.MethodGet, pathSchedules, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UploadService 上传服务。
type UploadService struct {
	transport *Transport
}

// Type 实现 Service 接口。
func (s *UploadService) Type() ServiceType { return ServiceUploads }

// Request 申请一次上传，返回服务端签发的上传会话。
func (s *UploadService) Request(ctx context.Context, req any) (json.RawMessage, error) {
	var out json.RawMessage
	if err := s.transport.DoJSON(ctx, http.MethodPost, pathUploads, req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Complete 标记上传完成。
func (s *UploadService) Complete(ctx context.Context, uploadID string) error {
	if uploadID == "" {
		return fmt.Errorf("%w: missing upload id", ErrInvalidConfiguration)
	}
	return s.transport.DoJSON(ctx, http.MethodPost, pathUploads+"/"+uploadID+"/complete", nil, nil)
}

// SurveyService 问卷服务。
type SurveyService struct {
	transport *Transport
}

// Type 实现 Service 接口。
func (s *SurveyService) Type() ServiceType { return ServiceSurveys }

// List 返回已发布的问卷列表。
func (s *SurveyService) List(ctx context.Context) (json.RawMessage, error) {
	var out json.RawMessage
	if err := s.transport.DoJSON(ctx, http.MethodGet, pathSurveys, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get 返回指定问卷。
func (s *SurveyService) Get(ctx context.Context, surveyGUID string) (json.RawMessage, error) {
	if surveyGUID == "" {
		return nil, fmt.Errorf("%w: missing survey guid", ErrInvalidConfiguration)
	}
	var out json.RawMessage
	if err := s.transport.DoJSON(ctx, http.MethodGet, pathSurveys+"/"+surveyGUID, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
