package silero_vad

import (
	"fmt"
	"sync"
	"time"

	"vad-engine-golang/internal/domain/vad/inter"
	"vad-engine-golang/internal/util"
)

// SileroPool Silero 检测器资源池
// Silero 实例加载一份 onnx 模型，创建开销远大于 WebRTC 引擎，池化收益明显
type SileroPool struct {
	pool *util.ResourcePool
}

var sileroPool *SileroPool
var once sync.Once

// AcquireVAD 从全局池获取检测器实例，首次调用按配置建池
func AcquireVAD(config map[string]interface{}) (inter.VAD, error) {
	if sileroPool == nil {
		once.Do(func() {
			poolConfig := getPoolConfigFromMap(config)
			sileroConfig := getSileroConfigFromMap(config)
			pool, err := NewSileroPool(sileroConfig, poolConfig)
			if err != nil {
				return
			}
			sileroPool = pool
		})
	}
	if sileroPool == nil {
		return nil, fmt.Errorf("failed to create silero VAD pool")
	}
	return sileroPool.AcquireVAD()
}

// ReleaseVAD 归还检测器实例到全局池
func ReleaseVAD(vad inter.VAD) error {
	if sileroPool != nil {
		return sileroPool.ReleaseVAD(vad)
	}
	return nil
}

// NewSileroPool 创建 Silero 检测器资源池
func NewSileroPool(config SileroConfig, poolConfig *util.PoolConfig) (*SileroPool, error) {
	if poolConfig == nil {
		poolConfig = util.DefaultConfig()
		poolConfig.MaxSize = 10
		poolConfig.MinSize = 1
		poolConfig.MaxIdle = 5
		poolConfig.IdleTimeout = 5 * time.Minute
	}

	pool, err := util.NewResourcePool(poolConfig, &sileroFactory{config: config})
	if err != nil {
		return nil, fmt.Errorf("failed to create silero VAD pool: %w", err)
	}

	return &SileroPool{pool: pool}, nil
}

// AcquireVAD 获取检测器实例
func (p *SileroPool) AcquireVAD() (inter.VAD, error) {
	resource, err := p.pool.Acquire()
	if err != nil {
		return nil, err
	}

	vad, ok := resource.(*SileroVAD)
	if !ok {
		p.pool.Release(resource)
		return nil, fmt.Errorf("invalid resource type")
	}
	return vad, nil
}

// ReleaseVAD 释放检测器实例
func (p *SileroPool) ReleaseVAD(vad inter.VAD) error {
	sileroVAD, ok := vad.(*SileroVAD)
	if !ok {
		return fmt.Errorf("invalid VAD type")
	}
	return p.pool.Release(sileroVAD)
}

// Close 关闭资源池
func (p *SileroPool) Close() error {
	return p.pool.Close()
}

// Stats 获取资源池统计信息
func (p *SileroPool) Stats() map[string]interface{} {
	return p.pool.Stats()
}

// sileroFactory 实现 ResourceFactory 接口
type sileroFactory struct {
	config SileroConfig
}

func (f *sileroFactory) Create() (util.Resource, error) {
	vad, err := NewSileroVAD(f.config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize silero VAD: %w", err)
	}
	return vad, nil
}

func (f *sileroFactory) Validate(resource util.Resource) bool {
	vad, ok := resource.(*SileroVAD)
	if !ok {
		return false
	}
	return vad.IsValid()
}

func (f *sileroFactory) Reset(resource util.Resource) error {
	vad, ok := resource.(*SileroVAD)
	if !ok {
		return fmt.Errorf("invalid resource type")
	}
	return vad.Reset()
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

func getSileroConfigFromMap(config map[string]interface{}) SileroConfig {
	sileroConfig := DefaultSileroConfig()
	if modelPath, ok := config["model_path"].(string); ok {
		sileroConfig.ModelPath = modelPath
	}
	if sampleRate, ok := config["sample_rate"].(int); ok && sampleRate > 0 {
		sileroConfig.SampleRate = sampleRate
	}
	if threshold, ok := config["threshold"].(float64); ok && threshold > 0 {
		sileroConfig.Threshold = threshold
	}
	if silenceMs, ok := config["min_silence_duration_ms"].(int); ok && silenceMs > 0 {
		sileroConfig.MinSilenceDurationMs = silenceMs
	}
	if padMs, ok := config["speech_pad_ms"].(int); ok && padMs > 0 {
		sileroConfig.SpeechPadMs = padMs
	}
	return sileroConfig
}
