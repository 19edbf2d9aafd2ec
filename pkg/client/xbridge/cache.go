package xbridge

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"
)

// cacheKey 客户端缓存 key：凭据身份 + 服务类型。
// 同一身份的不同服务类型各占一个槽位。
type cacheKey struct {
	credential string
	service    ServiceType
}

// String 返回 singleflight 合并 key。
func (k cacheKey) String() string {
	return k.credential + "\x00" + string(k.service)
}

// clientCache 有界的服务客户端句柄缓存。
//
// 淘汰对调用方透明：被 LRU 挤出或 TTL 过期的条目在下次访问时重建，
// 调用方只会观察到一次性的构建开销。并发的首次构建经 singleflight 合并，
// 每个 key 的构建函数至多执行一次。
type clientCache struct {
	entries *expirable.LRU[cacheKey, Service]
	sf      singleflight.Group
}

// newClientCache 创建句柄缓存。
// ttl 为 0 表示不按时间过期（expirable.LRU 此时不启动清理 goroutine）。
func newClientCache(size int, ttl time.Duration) *clientCache {
	return &clientCache{
		entries: expirable.NewLRU[cacheKey, Service](size, nil, ttl),
	}
}

// getOrBuild 返回缓存的句柄，缺失时用 build 构建并记忆。
func (c *clientCache) getOrBuild(key cacheKey, build func() (Service, error)) (Service, error) {
	if svc, ok := c.entries.Get(key); ok {
		return svc, nil
	}

	v, err, _ := c.sf.Do(key.String(), func() (any, error) {
		// 双重检查：等待期间其他 goroutine 可能已完成构建
		if svc, ok := c.entries.Get(key); ok {
			return svc, nil
		}
		svc, buildErr := build()
		if buildErr != nil {
			return nil, buildErr
		}
		c.entries.Add(key, svc)
		return svc, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(Service), nil
}

// evict 移除单个条目。
func (c *clientCache) evict(key cacheKey) {
	c.entries.Remove(key)
}

// evictCredential 移除指定凭据身份的全部条目。
// 登出后调用，保证旧会话的句柄不再被复用。
func (c *clientCache) evictCredential(credential string) {
	for _, key := range c.entries.Keys() {
		if key.credential == credential {
			c.entries.Remove(key)
		}
	}
}

// purge 清空缓存。
func (c *clientCache) purge() {
	c.entries.Purge()
}

// len 返回当前条目数。
func (c *clientCache) len() int {
	return c.entries.Len()
}
