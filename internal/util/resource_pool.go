package util

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Resource 资源接口，所有被池管理的资源都需要实现此接口
type Resource interface {
	// Close 关闭资源
	Close() error
	// IsValid 检查资源是否有效
	IsValid() bool
}

// ResourceFactory 资源工厂接口，用于创建和验证资源
type ResourceFactory interface {
	// Create 创建新的资源实例
	Create() (Resource, error)
	// Validate 验证资源是否有效，返回false的资源将被销毁
	Validate(resource Resource) bool
	// Reset 重置资源状态，复用前调用
	Reset(resource Resource) error
}

// PoolConfig 资源池配置
type PoolConfig struct {
	// MaxSize 最大资源数量
	MaxSize int
	// MinSize 最小资源数量（预创建）
	MinSize int
	// MaxIdle 最大空闲资源数量
	MaxIdle int
	// AcquireTimeout 获取资源超时时间
	AcquireTimeout time.Duration
	// IdleTimeout 资源空闲超时时间，0表示不清理
	IdleTimeout time.Duration
	// ValidateOnBorrow 获取时是否验证资源
	ValidateOnBorrow bool
}

// DefaultConfig 返回默认配置
func DefaultConfig() *PoolConfig {
	return &PoolConfig{
		MaxSize:          10,
		MinSize:          1,
		MaxIdle:          5,
		AcquireTimeout:   30 * time.Second,
		IdleTimeout:      5 * time.Minute,
		ValidateOnBorrow: true,
	}
}

// pooledResource 池化资源包装器
type pooledResource struct {
	resource Resource
	lastUsed time.Time
	inUse    bool
}

// ResourcePool 通用资源池
type ResourcePool struct {
	config  *PoolConfig
	factory ResourceFactory

	available chan *pooledResource
	resources map[Resource]*pooledResource
	mu        sync.RWMutex
	closed    bool

	ctx       context.Context
	cancel    context.CancelFunc
	cleanupWg sync.WaitGroup
}

// NewResourcePool 创建新的资源池，预创建MinSize个资源
func NewResourcePool(config *PoolConfig, factory ResourceFactory) (*ResourcePool, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if factory == nil {
		return nil, errors.New("factory cannot be nil")
	}
	if config.MaxSize <= 0 {
		return nil, errors.New("max size must be positive")
	}
	if config.MinSize < 0 || config.MinSize > config.MaxSize {
		return nil, errors.New("invalid min size")
	}

	ctx, cancel := context.WithCancel(context.Background())

	pool := &ResourcePool{
		config:    config,
		factory:   factory,
		available: make(chan *pooledResource, config.MaxSize),
		resources: make(map[Resource]*pooledResource),
		ctx:       ctx,
		cancel:    cancel,
	}

	for i := 0; i < config.MinSize; i++ {
		resource, err := factory.Create()
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to pre-create resource %d: %w", i, err)
		}
		pooled := &pooledResource{resource: resource, lastUsed: time.Now()}
		pool.resources[resource] = pooled
		pool.available <- pooled
	}

	pool.startCleanupRoutine()
	return pool, nil
}

// Acquire 获取资源
func (p *ResourcePool) Acquire() (Resource, error) {
	return p.AcquireWithTimeout(p.config.AcquireTimeout)
}

// AcquireWithTimeout 在指定超时时间内获取资源
func (p *ResourcePool) AcquireWithTimeout(timeout time.Duration) (Resource, error) {
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return nil, errors.New("pool is closed")
	}
	p.mu.RUnlock()

	ctx, cancel := context.WithTimeout(p.ctx, timeout)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("acquire timeout after %v", timeout)
		case pooled := <-p.available:
			if p.config.ValidateOnBorrow {
				if !pooled.resource.IsValid() || !p.factory.Validate(pooled.resource) {
					p.destroyResource(pooled)
					continue
				}
			}

			if err := p.factory.Reset(pooled.resource); err != nil {
				p.destroyResource(pooled)
				continue
			}

			p.mu.Lock()
			pooled.inUse = true
			pooled.lastUsed = time.Now()
			p.mu.Unlock()

			return pooled.resource, nil
		default:
			// 没有可用资源，尝试创建新的
			if resource, err := p.tryCreateResource(); err == nil {
				return resource, nil
			}
			// 池已满，等待资源释放
			time.Sleep(10 * time.Millisecond)
		}
	}
}

func (p *ResourcePool) tryCreateResource() (Resource, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.resources) >= p.config.MaxSize {
		return nil, errors.New("pool is full")
	}

	resource, err := p.factory.Create()
	if err != nil {
		return nil, err
	}

	p.resources[resource] = &pooledResource{
		resource: resource,
		lastUsed: time.Now(),
		inUse:    true,
	}
	return resource, nil
}

// Release 释放资源回池，超出空闲上限的资源直接销毁
func (p *ResourcePool) Release(resource Resource) error {
	if resource == nil {
		return errors.New("resource cannot be nil")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return errors.New("pool is closed")
	}

	pooled, exists := p.resources[resource]
	if !exists {
		return errors.New("resource not managed by this pool")
	}
	if !pooled.inUse {
		return errors.New("resource is not in use")
	}

	if !resource.IsValid() || len(p.available) >= p.config.MaxIdle {
		p.destroyResourceLocked(pooled)
		return nil
	}

	pooled.inUse = false
	pooled.lastUsed = time.Now()

	select {
	case p.available <- pooled:
		return nil
	default:
		p.destroyResourceLocked(pooled)
		return nil
	}
}

func (p *ResourcePool) destroyResource(pooled *pooledResource) {
	p.mu.Lock()
	p.destroyResourceLocked(pooled)
	p.mu.Unlock()
}

func (p *ResourcePool) destroyResourceLocked(pooled *pooledResource) {
	if pooled.resource != nil {
		pooled.resource.Close()
		delete(p.resources, pooled.resource)
	}
}

// Stats 获取资源池统计信息
func (p *ResourcePool) Stats() map[string]interface{} {
	p.mu.RLock()
	defer p.mu.RUnlock()

	inUseCount := 0
	for _, pooled := range p.resources {
		if pooled.inUse {
			inUseCount++
		}
	}

	return map[string]interface{}{
		"total_resources":     len(p.resources),
		"available_resources": len(p.available),
		"in_use_resources":    inUseCount,
		"max_size":            p.config.MaxSize,
		"is_closed":           p.closed,
	}
}

func (p *ResourcePool) startCleanupRoutine() {
	if p.config.IdleTimeout <= 0 {
		return
	}

	p.cleanupWg.Add(1)
	go func() {
		defer p.cleanupWg.Done()
		ticker := time.NewTicker(p.config.IdleTimeout / 2)
		defer ticker.Stop()

		for {
			select {
			case <-p.ctx.Done():
				return
			case <-ticker.C:
				p.cleanupIdleResources()
			}
		}
	}()
}

// cleanupIdleResources 清理空闲超时的资源，保留未超时的
func (p *ResourcePool) cleanupIdleResources() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}

	now := time.Now()
	var keep []*pooledResource

	for {
		select {
		case pooled := <-p.available:
			if now.Sub(pooled.lastUsed) > p.config.IdleTimeout {
				p.destroyResourceLocked(pooled)
			} else {
				keep = append(keep, pooled)
			}
			continue
		default:
		}
		break
	}

	for _, pooled := range keep {
		p.available <- pooled
	}
}

// Close 关闭资源池并销毁所有资源
func (p *ResourcePool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	p.cancel()
	p.cleanupWg.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()

	close(p.available)
	for pooled := range p.available {
		p.destroyResourceLocked(pooled)
	}
	for _, pooled := range p.resources {
		p.destroyResourceLocked(pooled)
	}

	return nil
}
