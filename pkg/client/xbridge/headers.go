package xbridge

import (
	"runtime"
	"strconv"
	"strings"
)

// =============================================================================
// 请求头常量
// =============================================================================

const (
	// HeaderUserAgent User-Agent 请求头。
	HeaderUserAgent = "User-Agent"

	// HeaderAcceptLanguage Accept-Language 请求头。
	HeaderAcceptLanguage = "Accept-Language"

	// HeaderAccept Accept 请求头。
	HeaderAccept = "Accept"

	// HeaderAuthorization 会话令牌请求头。
	HeaderAuthorization = "Authorization"

	// HeaderRequestID 请求标识头，日志阶段为每次网络尝试生成。
	HeaderRequestID = "X-Request-Id"

	// HeaderAPIStatus 服务端弃用/警告信号头。
	// 仅做日志标注，不改变控制流。
	HeaderAPIStatus = "Api-Status"

	// HeaderWarning 标准警告头，作为 Api-Status 的回退。
	HeaderWarning = "Warning"

	// bearerPrefix 会话令牌的 Authorization 前缀。
	bearerPrefix = "Bearer "
)

const (
	// SDKName SDK 名称，用于 User-Agent 组装。
	SDKName = "bridgekit-go"

	// SDKVersion SDK 版本号，用于 User-Agent 组装。
	SDKVersion = 1
)

// =============================================================================
// ClientInfo 与请求头组装
// =============================================================================

// ClientInfo 描述发起请求的客户端，用于组装结构化 User-Agent。
type ClientInfo struct {
	// SDKName SDK 名称。
	SDKName string

	// SDKVersion SDK 版本号。
	SDKVersion int

	// OSName 操作系统名称。
	OSName string

	// OSVersion 操作系统版本。
	OSVersion string

	// DeviceName 设备标识。
	DeviceName string

	// AppName 应用名（可选）。
	AppName string

	// AppVersion 应用版本号（可选）。
	AppVersion int
}

// DefaultClientInfo 返回从运行时推导的默认客户端信息。
// OS 版本在 Go 运行时拿不到可靠值，留空由组装逻辑降级。
func DefaultClientInfo() ClientInfo {
	return ClientInfo{
		SDKName:    SDKName,
		SDKVersion: SDKVersion,
		OSName:     runtime.GOOS,
		DeviceName: runtime.GOARCH,
	}
}

// Merge 返回以 override 非零字段覆盖后的客户端信息。
func (ci ClientInfo) Merge(override ClientInfo) ClientInfo {
	merged := ci
	if override.SDKName != "" {
		merged.SDKName = override.SDKName
	}
	if override.SDKVersion > 0 {
		merged.SDKVersion = override.SDKVersion
	}
	if override.OSName != "" {
		merged.OSName = override.OSName
	}
	if override.OSVersion != "" {
		merged.OSVersion = override.OSVersion
	}
	if override.DeviceName != "" {
		merged.DeviceName = override.DeviceName
	}
	if override.AppName != "" {
		merged.AppName = override.AppName
	}
	if override.AppVersion > 0 {
		merged.AppVersion = override.AppVersion
	}
	return merged
}

// ComposeUserAgent 把客户端信息组装成服务端期望的 User-Agent 格式：
//
//	AppName/AppVersion (DeviceName; OsName/OsVersion) SdkName/SdkVersion
//
// 缺失的字段按节省略，保证输出始终是合法的 User-Agent。
func ComposeUserAgent(info ClientInfo) string {
	var stanzas []string

	if info.AppName != "" {
		app := info.AppName
		if info.AppVersion > 0 {
			app += "/" + strconv.Itoa(info.AppVersion)
		}
		stanzas = append(stanzas, app)
	}

	if device := composeDeviceStanza(info); device != "" {
		stanzas = append(stanzas, device)
	}

	if info.SDKName != "" {
		sdk := info.SDKName
		if info.SDKVersion > 0 {
			sdk += "/" + strconv.Itoa(info.SDKVersion)
		}
		stanzas = append(stanzas, sdk)
	}

	return strings.Join(stanzas, " ")
}

// composeDeviceStanza 组装括号内的设备/系统节。
func composeDeviceStanza(info ClientInfo) string {
	var parts []string
	if info.DeviceName != "" {
		parts = append(parts, info.DeviceName)
	}
	if info.OSName != "" {
		osPart := info.OSName
		if info.OSVersion != "" {
			osPart += "/" + info.OSVersion
		}
		parts = append(parts, osPart)
	}
	if len(parts) == 0 {
		return ""
	}
	return "(" + strings.Join(parts, "; ") + ")"
}

// ComposeAcceptLanguage 把语言偏好列表组装成 Accept-Language 值。
// 保持顺序（从最偏好到最不偏好），去除空白与重复项（首次出现优先）。
func ComposeAcceptLanguage(languages []string) string {
	seen := make(map[string]struct{}, len(languages))
	out := make([]string, 0, len(languages))
	for _, lang := range languages {
		lang = strings.TrimSpace(lang)
		if lang == "" {
			continue
		}
		if _, dup := seen[lang]; dup {
			continue
		}
		seen[lang] = struct{}{}
		out = append(out, lang)
	}
	return strings.Join(out, ",")
}
