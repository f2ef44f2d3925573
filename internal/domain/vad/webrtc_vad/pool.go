package webrtc_vad

import (
	"fmt"
	"sync"
	"time"

	"vad-engine-golang/internal/domain/vad/inter"
	"vad-engine-golang/internal/util"
)

// DetectorPool WebRTC VAD 检测器资源池
type DetectorPool struct {
	pool *util.ResourcePool
}

var detectorPool *DetectorPool
var once sync.Once

// AcquireVAD 从全局池获取检测器实例，首次调用按配置建池
func AcquireVAD(config map[string]interface{}) (inter.VAD, error) {
	if detectorPool == nil {
		once.Do(func() {
			poolConfig := getPoolConfigFromMap(config)
			engineConfig := getEngineConfigFromMap(config)
			pool, err := NewDetectorPool(engineConfig, poolConfig)
			if err != nil {
				return
			}
			detectorPool = pool
		})
	}
	if detectorPool == nil {
		return nil, fmt.Errorf("failed to create WebRTC VAD pool")
	}
	return detectorPool.AcquireVAD()
}

// ReleaseVAD 归还检测器实例到全局池
func ReleaseVAD(vad inter.VAD) error {
	if detectorPool != nil {
		return detectorPool.ReleaseVAD(vad)
	}
	return nil
}

// NewDetectorPool 创建检测器资源池
func NewDetectorPool(config EngineConfig, poolConfig *util.PoolConfig) (*DetectorPool, error) {
	if poolConfig == nil {
		poolConfig = util.DefaultConfig()
		// 为VAD设置合适的默认值
		poolConfig.MaxSize = 5
		poolConfig.MinSize = 1
		poolConfig.MaxIdle = 3
		poolConfig.IdleTimeout = 2 * time.Minute
	}

	factory := NewDetectorFactory(config)
	pool, err := util.NewResourcePool(poolConfig, factory)
	if err != nil {
		return nil, fmt.Errorf("failed to create WebRTC VAD pool: %w", err)
	}

	return &DetectorPool{
		pool: pool,
	}, nil
}

// AcquireVAD 获取检测器实例
func (p *DetectorPool) AcquireVAD() (inter.VAD, error) {
	resource, err := p.pool.Acquire()
	if err != nil {
		return nil, err
	}

	detector, ok := resource.(*Detector)
	if !ok {
		p.pool.Release(resource)
		return nil, fmt.Errorf("invalid resource type")
	}

	return detector, nil
}

// ReleaseVAD 释放检测器实例
func (p *DetectorPool) ReleaseVAD(vad inter.VAD) error {
	detector, ok := vad.(*Detector)
	if !ok {
		return fmt.Errorf("invalid VAD type")
	}

	return p.pool.Release(detector)
}

// Close 关闭资源池
func (p *DetectorPool) Close() error {
	return p.pool.Close()
}

// Stats 获取资源池统计信息
func (p *DetectorPool) Stats() map[string]interface{} {
	return p.pool.Stats()
}

func getPoolConfigFromMap(config map[string]interface{}) *util.PoolConfig {
	poolConfig := util.DefaultConfig()
	if minSize, ok := config["pool_min_size"].(int); ok && minSize > 0 {
		poolConfig.MinSize = minSize
	}
	if maxSize, ok := config["pool_max_size"].(int); ok && maxSize > 0 {
		poolConfig.MaxSize = maxSize
	}
	if maxIdle, ok := config["pool_max_idle"].(int); ok && maxIdle > 0 {
		poolConfig.MaxIdle = maxIdle
	}
	return poolConfig
}

func getEngineConfigFromMap(config map[string]interface{}) EngineConfig {
	engineConfig := DefaultEngineConfig()
	if sampleRate, ok := config["sample_rate"].(int); ok && sampleRate > 0 {
		engineConfig.SampleRate = sampleRate
	}
	if durationMs, ok := config["frame_duration_ms"].(int); ok && durationMs > 0 {
		engineConfig.FrameDurationMs = durationMs
	}
	if mode, ok := config["mode"].(int); ok {
		engineConfig.Mode = mode
	}
	return engineConfig
}
