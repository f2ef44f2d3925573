package webrtc_vad

import (
	"fmt"

	"vad-engine-golang/internal/util"
)

// DetectorFactory 检测器工厂，实现 ResourceFactory 接口
type DetectorFactory struct {
	config EngineConfig
}

// NewDetectorFactory 创建检测器工厂
func NewDetectorFactory(config EngineConfig) *DetectorFactory {
	if config.SampleRate == 0 {
		config.SampleRate = DefaultSampleRate
	}
	if config.FrameDurationMs == 0 {
		config.FrameDurationMs = DefaultFrameDuration
	}
	if config.Mode < 0 || config.Mode > 3 {
		config.Mode = DefaultMode
	}

	return &DetectorFactory{
		config: config,
	}
}

// Create 创建新的检测器资源实例
func (f *DetectorFactory) Create() (util.Resource, error) {
	detector, err := NewDetector(f.config)
	if err != nil {
		return nil, fmt.Errorf("failed to create WebRTC VAD detector: %w", err)
	}
	return detector, nil
}

// Validate 验证资源是否有效
func (f *DetectorFactory) Validate(resource util.Resource) bool {
	detector, ok := resource.(*Detector)
	if !ok {
		return false
	}
	return detector.IsValid()
}

// Reset 重置资源状态
func (f *DetectorFactory) Reset(resource util.Resource) error {
	detector, ok := resource.(*Detector)
	if !ok {
		return fmt.Errorf("invalid resource type")
	}
	return detector.Reset()
}
