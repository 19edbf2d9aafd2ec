package xbridge

import (
	"encoding/json"
	"io"
	"net/http"
)

// maxErrorBodyBytes 错误响应体读取上限。
// 错误负载只含 message 与逐字段错误，正常远小于此值。
const maxErrorBodyBytes = 1 << 20 // 1MB

// errorPayload 服务端错误响应体。
type errorPayload struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

// classifyStage 构造响应分类阶段。
//
// 这是原始网络结果变成类型化错误的唯一位置：
//   - next 返回错误（未收到响应）：包装为 *TransportError
//   - 状态码 >= 400：读取并解析错误体，返回 *APIError（响应体已消费并关闭）
//   - 其余：原样放行，响应体由调用方消费
//
// 错误体无法解析时仍返回携带状态码的 *APIError，分类不依赖负载格式。
func classifyStage() Stage {
	return Stage{
		Name: StageClassify,
		Round: func(req *http.Request, next RoundFunc) (*http.Response, error) {
			resp, err := next(req)
			if err != nil {
				return nil, &TransportError{Op: req.Method + " " + req.URL.Path, Err: err}
			}
			if resp.StatusCode < 400 {
				return resp, nil
			}
			defer resp.Body.Close() //nolint:errcheck // 错误路径，关闭失败无补救

			apiErr := &APIError{StatusCode: resp.StatusCode}
			body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
			if readErr == nil && len(body) > 0 {
				var payload errorPayload
				if json.Unmarshal(body, &payload) == nil {
					apiErr.Message = payload.Message
					apiErr.Errors = payload.Errors
				}
			}
			return nil, apiErr
		},
	}
}
