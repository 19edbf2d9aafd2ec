package xbridge

import (
	"errors"
	"net/http"
)

// authVerdict 响应回溯后的处理决定。
type authVerdict int

const (
	// verdictPass 结果原样返回。
	verdictPass authVerdict = iota

	// verdictReauth 刷新会话并重放一次。
	verdictReauth

	// verdictFail 认证失败但请求不可重放，错误原样返回。
	verdictFail
)

// decideAuth 对回溯结果做重放判定。
// 与任何传输库解耦：只看已分类的错误与请求体可重建性。
// 仅认证失败触发重放；携带流式 body（无 GetBody）的请求无法安全重放。
func decideAuth(err error, req *http.Request) authVerdict {
	if err == nil || !errors.Is(err, ErrAuthenticationFailed) {
		return verdictPass
	}
	if req.Body != nil && req.GetBody == nil {
		return verdictFail
	}
	return verdictReauth
}

// attachStage 构造会话附加阶段。
//
// 请求方向：把会话令牌写入 Authorization 头（调用方显式设置的值优先）。
// 没有缓存会话时按需触发一次刷新——首个请求的登录也走这条路径。
//
// 响应方向：回溯结果经 decideAuth 判定。认证失败（401 类）时刷新会话并
// 用新令牌把原请求透明重放一次，重放后的任何结果原样返回——单个逻辑请求
// 至多两次网络尝试。其他错误一律不触发重放。
//
// 本阶段位于分类阶段之外（见 stage.go 的顺序契约），因此这里观察到的
// 是已分类错误，直接用哨兵判定即可。
func attachStage(store *SessionStore) Stage {
	return Stage{
		Name: StageSessionAttach,
		Round: func(req *http.Request, next RoundFunc) (*http.Response, error) {
			if req.Header.Get(HeaderAuthorization) == "" {
				sess, err := store.Current(req.Context())
				if err != nil {
					return nil, err
				}
				req.Header.Set(HeaderAuthorization, bearerPrefix+sess.Token)
			}

			resp, err := next(req)
			if decideAuth(err, req) != verdictReauth {
				return resp, err
			}

			retry, ok := replayableRequest(req)
			if !ok {
				return nil, err
			}

			sess, refreshErr := store.Refresh(req.Context())
			if refreshErr != nil {
				return nil, refreshErr
			}

			retry.Header.Set(HeaderAuthorization, bearerPrefix+sess.Token)
			return next(retry)
		},
	}
}

// replayableRequest 克隆可重放的请求，重建请求体。
func replayableRequest(req *http.Request) (*http.Request, bool) {
	if req.Body != nil && req.GetBody == nil {
		return nil, false
	}
	retry := req.Clone(req.Context())
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, false
		}
		retry.Body = body
	}
	return retry, true
}
