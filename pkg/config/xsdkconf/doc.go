// Package xsdkconf 提供 SDK 设置的加载能力。
//
// # 功能概述
//
//   - 从 YAML/JSON 文件或原始字节加载 SDK 设置（研究项目标识、账号、语言偏好、环境）
//   - 环境变量覆盖：STUDY_IDENTIFIER、ACCOUNT_EMAIL、ACCOUNT_PASSWORD、
//     LANGUAGES、SDK_ENVIRONMENT 优先于文件内容
//   - 格式根据文件扩展名自动检测（.yaml/.yml/.json）
//
// # 职责边界
//
// 此包只负责把设置读出来，不做业务校验：缺失字段的判定
// （比如账号必须有密码或会话）由 xbridge 在构建客户端时完成。
//
// # 与 xbridge 集成
//
//	settings, err := xsdkconf.Load("~/.bridgekit/sdk.yaml")
//	manager, err := xbridge.NewManager(settings)
package xsdkconf
