package webrtc_vad

import (
	"fmt"

	"vad-engine-golang/internal/domain/vad/inter"
)

// Detector 基于 Engine 的流式检测器，实现 inter.VAD 接口
// 接收任意长度的 float32 PCM，按配置帧长切帧，多帧时取多数表决
type Detector struct {
	engine *Engine
}

// NewDetector 创建流式检测器
func NewDetector(config EngineConfig) (*Detector, error) {
	engine, err := NewEngine(config)
	if err != nil {
		return nil, err
	}
	return &Detector{engine: engine}, nil
}

// IsVAD 检测音频数据中的语音活动
func (d *Detector) IsVAD(pcmData []float32) (bool, error) {
	return d.IsVADExt(pcmData, d.engine.SampleRate(), d.engine.FrameLength())
}

// IsVADExt 按指定采样率与帧长检测，必须与引擎配置一致
func (d *Detector) IsVADExt(pcmData []float32, sampleRate int, frameSize int) (bool, error) {
	if len(pcmData) == 0 {
		return false, nil
	}

	samples := float32ToInt16(pcmData)

	// 不足一帧，返回 false
	if len(samples) < frameSize {
		return false, nil
	}

	// 处理多帧数据，按多数表决
	activityCount := 0
	frameCount := 0
	for i := 0; i+frameSize <= len(samples); i += frameSize {
		isActive, err := d.engine.Classify(sampleRate, frameSize, samples[i:i+frameSize])
		if err != nil {
			return false, fmt.Errorf("WebRTC VAD detect error: %w", err)
		}
		if isActive {
			activityCount++
		}
		frameCount++
	}

	return activityCount >= (frameCount+1)/2, nil
}

// Reset 重置检测器状态，WebRTC VAD 无跨帧会话状态，无需处理
func (d *Detector) Reset() error {
	return nil
}

// Close 关闭并释放资源 (实现 Resource 接口)
func (d *Detector) Close() error {
	return d.engine.Destroy()
}

// IsValid 检查资源是否有效 (实现 Resource 接口)
func (d *Detector) IsValid() bool {
	return d.engine.Ready()
}

// SetMode 调整敏感度模式
func (d *Detector) SetMode(mode int) error {
	return d.engine.SetMode(mode)
}

// Engine 返回底层引擎
func (d *Detector) Engine() *Engine {
	return d.engine
}

// float32ToInt16 将 float32 (-1.0 到 1.0) 采样转换为 int16 采样
func float32ToInt16(samples []float32) []int16 {
	out := make([]int16, len(samples))
	for i, sample := range samples {
		if sample > 1.0 {
			out[i] = 32767
		} else if sample < -1.0 {
			out[i] = -32768
		} else {
			out[i] = int16(sample * 32767)
		}
	}
	return out
}

var _ inter.VAD = (*Detector)(nil)
