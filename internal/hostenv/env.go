package hostenv

import (
	"errors"
	"fmt"
	"strings"
)

// EnvName 环境变量名（单一事实来源）
//
// xsdkconf 从此环境变量读取部署环境覆盖值。
const EnvName = "SDK_ENVIRONMENT"

// Environment 表示 SDK 指向的部署环境
//
// 封闭枚举：每个环境对应一个固定的服务主机地址。
type Environment string

const (
	// Local 本地开发环境
	Local Environment = "LOCAL"

	// Develop 开发联调环境
	Develop Environment = "DEVELOP"

	// Staging 预发布环境
	Staging Environment = "STAGING"

	// Production 生产环境
	Production Environment = "PRODUCTION"
)

// 错误定义
var (
	// ErrMissingValue 环境值缺失/为空
	ErrMissingValue = errors.New("hostenv: missing environment value")

	// ErrInvalidEnvironment 环境值非法（不在封闭枚举内）
	ErrInvalidEnvironment = errors.New("hostenv: invalid environment")
)

// hosts 环境到主机地址的固定映射。
var hosts = map[Environment]string{
	Local:      "http://localhost:9000",
	Develop:    "https://ws-develop.bridgekit.org",
	Staging:    "https://ws-staging.bridgekit.org",
	Production: "https://ws.bridgekit.org",
}

// String 返回环境的字符串表示
func (e Environment) String() string {
	return string(e)
}

// IsValid 判断环境是否有效（为已知枚举值）
func (e Environment) IsValid() bool {
	_, ok := hosts[e]
	return ok
}

// BaseURL 返回环境对应的服务主机地址。
// 未知环境返回 ErrInvalidEnvironment。
func (e Environment) BaseURL() (string, error) {
	host, ok := hosts[e]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidEnvironment, string(e))
	}
	return host, nil
}

// Parse 解析字符串为 Environment
//
// 支持大小写不敏感匹配：
//   - "LOCAL", "local", "Local" -> Local
//   - "develop"/"staging"/"production" 同理
func Parse(s string) (Environment, error) {
	normalized := strings.ToUpper(strings.TrimSpace(s))
	switch normalized {
	case "LOCAL":
		return Local, nil
	case "DEVELOP":
		return Develop, nil
	case "STAGING":
		return Staging, nil
	case "PRODUCTION":
		return Production, nil
	case "":
		return "", ErrMissingValue
	default:
		return "", fmt.Errorf("%w: %q (expected LOCAL, DEVELOP, STAGING or PRODUCTION)", ErrInvalidEnvironment, s)
	}
}
