/*
 * @module service/pipeline/result_cache
 * @description 预测结果TTL缓存，按请求指纹去重，并维护按键聚合的在途等待者实现single-flight
 * @architecture 分层架构 - 业务服务层
 * @documentReference ai_docs/inference_pipeline_design.md
 * @stateFlow 未命中注册等待 -> 批处理写入并唤醒 -> TTL到期由清扫器回收
 * @rules 缓存条目只有在结果完全计算后才对读者可见；同一键同一时刻至多一次在途计算
 * @dependencies sync, time
 * @refs service/pipeline/batch_worker.go, service/pipeline/cache_janitor.go
 */

package pipeline

import (
	"burnout-service/service/models"
	"context"
	"fmt"
	"sync"
	"time"
)

// cacheEntry 缓存条目
type cacheEntry struct {
	key        string
	result     *models.PredictionResult
	insertedAt time.Time
}

// resultWaiter 按键聚合的在途等待者
// done关闭后result/err不再变更，等待者通过done建立内存可见性
type resultWaiter struct {
	key    string
	done   chan struct{}
	result *models.PredictionResult
	err    error
}

// Wait 阻塞等待该键的计算结果，受调用方上下文与请求超时双重约束
func (w *resultWaiter) Wait(ctx context.Context, timeout time.Duration) (*models.PredictionResult, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-w.done:
		if w.err != nil {
			return nil, w.err
		}
		result := *w.result
		return &result, nil
	case <-timer.C:
		return nil, fmt.Errorf("%w: 键 %s 在 %v 内未产生结果", ErrTimeout, w.key, timeout)
	case <-ctx.Done():
		return nil, fmt.Errorf("等待预测结果被取消: %w", ctx.Err())
	}
}

// ResultCache 预测结果缓存
// 批处理工作器是唯一写入者，清扫器是唯一删除者，控制器只读
type ResultCache struct {
	mutex   sync.RWMutex
	ttl     time.Duration
	entries map[string]*cacheEntry
	pending map[string]*resultWaiter
}

// NewResultCache 创建结果缓存
func NewResultCache(ttl time.Duration) *ResultCache {
	return &ResultCache{
		ttl:     ttl,
		entries: make(map[string]*cacheEntry),
		pending: make(map[string]*resultWaiter),
	}
}

// Get 查询缓存，过期条目视为未命中（实际删除由清扫器完成）
func (c *ResultCache) Get(key string) (*models.PredictionResult, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	entry, exists := c.entries[key]
	if !exists {
		return nil, false
	}
	if time.Since(entry.insertedAt) > c.ttl {
		return nil, false
	}

	hit := *entry.result
	hit.FromCache = true
	return &hit, true
}

// Put 写入缓存条目
func (c *ResultCache) Put(key string, result *models.PredictionResult) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries[key] = &cacheEntry{
		key:        key,
		result:     result,
		insertedAt: time.Now(),
	}
}

// Acquire 提交路径的原子入口：命中返回结果；有在途计算则加入等待；否则成为该键的计算持有者
// 三种情况在同一把锁内判定，避免命中检查与等待注册之间的竞态
func (c *ResultCache) Acquire(key string) (*models.PredictionResult, *resultWaiter, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if entry, exists := c.entries[key]; exists && time.Since(entry.insertedAt) <= c.ttl {
		hit := *entry.result
		hit.FromCache = true
		return &hit, nil, false
	}

	if waiter, exists := c.pending[key]; exists {
		return nil, waiter, false
	}

	waiter := &resultWaiter{key: key, done: make(chan struct{})}
	c.pending[key] = waiter
	return nil, waiter, true
}

// Complete 写入计算结果并唤醒该键的全部等待者
func (c *ResultCache) Complete(key string, result *models.PredictionResult) {
	c.mutex.Lock()
	c.entries[key] = &cacheEntry{
		key:        key,
		result:     result,
		insertedAt: time.Now(),
	}
	waiter := c.pending[key]
	delete(c.pending, key)
	c.mutex.Unlock()

	if waiter != nil {
		waiter.result = result
		close(waiter.done)
	}
}

// Fail 以失败结束该键的在途计算，不产生缓存条目，下次提交会重新计算
func (c *ResultCache) Fail(key string, err error) {
	c.mutex.Lock()
	waiter := c.pending[key]
	delete(c.pending, key)
	c.mutex.Unlock()

	if waiter != nil {
		waiter.err = err
		close(waiter.done)
	}
}

// AbandonWait 撤销尚未入队成功的等待注册（入队失败时由持有者调用）
func (c *ResultCache) AbandonWait(key string, waiter *resultWaiter, err error) {
	c.mutex.Lock()
	if current, exists := c.pending[key]; exists && current == waiter {
		delete(c.pending, key)
	}
	c.mutex.Unlock()

	waiter.err = err
	close(waiter.done)
}

// FailAllWaiters 流水线停止时统一终止所有在途等待
func (c *ResultCache) FailAllWaiters(err error) {
	c.mutex.Lock()
	waiters := make([]*resultWaiter, 0, len(c.pending))
	for _, waiter := range c.pending {
		waiters = append(waiters, waiter)
	}
	c.pending = make(map[string]*resultWaiter)
	c.mutex.Unlock()

	for _, waiter := range waiters {
		waiter.err = err
		close(waiter.done)
	}
}

// Sweep 清扫过期条目，返回被清除的数量
// 全程持锁，清扫为O(缓存大小)且低频，可接受
func (c *ResultCache) Sweep() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	swept := 0
	now := time.Now()
	for key, entry := range c.entries {
		if now.Sub(entry.insertedAt) > c.ttl {
			delete(c.entries, key)
			swept++
		}
	}
	return swept
}

// SetTTL 更新条目存活时间，对后续的命中判定与清扫即时生效
func (c *ResultCache) SetTTL(ttl time.Duration) {
	c.mutex.Lock()
	c.ttl = ttl
	c.mutex.Unlock()
}

// Size 当前缓存条目数
func (c *ResultCache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.entries)
}

// PendingCount 当前在途计算数
func (c *ResultCache) PendingCount() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.pending)
}
