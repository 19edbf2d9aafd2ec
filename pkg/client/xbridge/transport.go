package xbridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maxResponseBodyBytes 成功响应体读取上限。
// 超过上限的响应被拒绝而非截断，避免把被截断的 JSON 当作合法负载。
const maxResponseBodyBytes = 10 << 20 // 10MB

// Transport 面向单个基地址的 HTTP 传输。
// 请求依次经过构造时固定的阶段链，阶段顺序见 stage.go。
type Transport struct {
	baseURL string
	client  *http.Client
	stages  []Stage
	run     RoundFunc
}

// newTransport 创建传输。
// 阶段链在此组合一次，之后不可变。
func newTransport(baseURL string, client *http.Client, stages []Stage) *Transport {
	t := &Transport{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		stages:  stages,
	}
	t.run = composeStages(stages, client.Do)
	return t
}

// BaseURL 返回传输的基地址。
func (t *Transport) BaseURL() string { return t.baseURL }

// StageNames 返回阶段链的有序阶段名。
// 链顺序是可观测契约，此方法供断言使用。
func (t *Transport) StageNames() []string {
	names := make([]string, len(t.stages))
	for i, s := range t.stages {
		names[i] = s.Name
	}
	return names
}

// Do 执行请求并经过完整阶段链。
// 返回的响应体由调用方负责关闭。
func (t *Transport) Do(req *http.Request) (*http.Response, error) {
	return t.run(req)
}

// DoJSON 执行一次 JSON 交换：编码请求体、执行请求、解码响应体。
//
// body 支持 nil、io.Reader、[]byte、string，其余类型做 JSON 编码。
// out 为 nil 时丢弃响应体；响应体超过上限返回 ErrResponseTooLarge。
func (t *Transport) DoJSON(ctx context.Context, method, path string, body, out any) error {
	req, err := t.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}

	resp, err := t.run(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck // 读取已完成，关闭失败无补救

	return decodeBody(resp.Body, out)
}

// newRequest 构造请求。
// JSON/[]byte/string 请求体经过 bytes.Reader 构造，
// 标准库会自动填充 GetBody，认证重放才能重建请求体。
func (t *Transport) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var (
		reader      io.Reader
		contentType string
	)
	switch b := body.(type) {
	case nil:
	case io.Reader:
		reader = b
	case []byte:
		reader = bytes.NewReader(b)
	case string:
		reader = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("%w: encode request body: %w", ErrInvalidConfiguration, err)
		}
		reader = bytes.NewReader(data)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, method, t.buildURL(path), reader)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", ErrInvalidConfiguration, err)
	}
	if contentType != "" && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", contentType)
	}
	return req, nil
}

// buildURL 拼接请求地址。
// 绝对地址原样放行（分页游标等服务端下发的完整链接）。
func (t *Transport) buildURL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return t.baseURL + path
}

// decodeBody 读取并解码响应体。
func decodeBody(body io.Reader, out any) error {
	limited := &io.LimitedReader{R: body, N: maxResponseBodyBytes + 1}
	data, err := io.ReadAll(limited)
	if err != nil {
		return &TransportError{Op: "read response body", Err: err}
	}
	if limited.N <= 0 {
		return ErrResponseTooLarge
	}
	if out == nil || len(data) == 0 {
		return nil
	}

	// 原始负载出口：上层要保留服务端完整响应时直接接收字节
	if raw, ok := out.(*json.RawMessage); ok {
		*raw = append((*raw)[:0], data...)
		return nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		return &TransportError{Op: "decode response body", Err: err}
	}
	return nil
}
