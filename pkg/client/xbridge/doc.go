// Package xbridge 提供健康研究平台 REST API 的类型化客户端。
//
// # 功能概述
//
//   - 会话生命周期：登录、缓存、复用、透明刷新服务端会话
//   - 客户端缓存：按（凭据身份，服务类型）惰性构建并记忆服务客户端句柄
//   - 拦截器链：请求头装饰、会话附加、弃用标注、响应分类、日志，顺序显式可测
//   - 错误分类：把每次网络交换映射为结构化错误分类（见 errors.go）
//
// # 会话刷新与 401 重试
//
// 认证传输链在收到会话被拒（401 类）响应时，触发会话存储的刷新协议，
// 并用新会话把原请求透明重放一次。重放仍被拒时向调用方返回
// ErrAuthenticationFailed，不再继续重试（单次请求最多两次网络尝试）。
// 非认证失败一律不自动重试。
//
// # 并发安全
//
// 同一凭据的并发刷新使用 singleflight 合并，底层登录调用每个刷新周期
// 至多执行一次，所有等待者观察到同一个结果。会话槽整体替换、从不逐字段
// 修改，并用单调序号保证过期的刷新结果不会覆盖更新的会话。
//
// # 客户端缓存
//
// 句柄缓存基于有界 LRU（可选 TTL），被淘汰的条目在下次访问时透明重建，
// 调用方只会观察到一次性的重建开销，不会观察到错误。相等的凭据共享同一个
// 会话存储，不同凭据永不共享。
//
// # 凭据模式
//
// 凭据可以携带密码（可刷新），也可以只携带预置会话。仅有会话而无密码时，
// 会话过期即为终态，刷新返回 ErrNoRefreshableCredential——这是有意设计，
// 调用方应把这种模式下的过期视为致命错误。
//
// # 默认行为
//
//   - Logger：不设置时使用 slog.Default()
//   - TLS：Config.TLS 为 nil 时启用证书验证；http:// 地址需要 AllowInsecure
//   - 缓存：默认容量 64、不按时间过期（CacheTTL = 0）
//
// # 扩展点
//
//   - WithHTTPClient：注入自定义 HTTP 客户端
//   - RetryTransient：调用方策略的瞬态错误重试（不会被自动套用）
package xbridge
