// Package hostenv 提供部署环境的共享定义。
//
// 此包定义了 Environment 类型及其方法，将封闭的环境枚举
// （local/develop/staging/production）映射到固定的服务主机地址。
// xbridge 和 xsdkconf 包共享此定义，避免重复的枚举和主机表。
//
// 环境与主机的对应关系是固定的：调用方不能为已知环境覆盖主机地址，
// 需要自定义地址时应直接使用 xbridge.Config.BaseURL。
package hostenv
