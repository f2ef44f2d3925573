package silero_vad

import (
	"errors"
	"fmt"
	"sync"

	"github.com/streamer45/silero-vad-go/speech"

	log "vad-engine-golang/logger"

	"vad-engine-golang/internal/domain/vad/inter"
)

// SileroConfig Silero 检测器配置
// Silero 模型只支持 8000/16000 Hz
type SileroConfig struct {
	ModelPath            string
	SampleRate           int
	Threshold            float64
	MinSilenceDurationMs int
	SpeechPadMs          int
}

// DefaultSileroConfig 返回默认 Silero 配置（模型路径必须由调用方提供）
func DefaultSileroConfig() SileroConfig {
	return SileroConfig{
		SampleRate:           16000,
		Threshold:            0.5,
		MinSilenceDurationMs: 100,
		SpeechPadMs:          60,
	}
}

// SileroVAD Silero 模型流式检测器
type SileroVAD struct {
	detector   *speech.Detector
	threshold  float32
	sampleRate int
	closed     bool
	mu         sync.Mutex
}

// NewSileroVAD 创建 Silero 检测器实例
func NewSileroVAD(config SileroConfig) (*SileroVAD, error) {
	if config.ModelPath == "" {
		return nil, errors.New("silero model path is required")
	}
	if config.SampleRate != 8000 && config.SampleRate != 16000 {
		return nil, fmt.Errorf("%w: silero supports 8000/16000 Hz, got %d", inter.ErrInvalidGeometry, config.SampleRate)
	}

	detector, err := speech.NewDetector(speech.DetectorConfig{
		ModelPath:            config.ModelPath,
		SampleRate:           config.SampleRate,
		Threshold:            float32(config.Threshold),
		MinSilenceDurationMs: config.MinSilenceDurationMs,
		SpeechPadMs:          config.SpeechPadMs,
		LogLevel:             speech.LogLevelWarn,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create silero detector: %w", err)
	}

	return &SileroVAD{
		detector:   detector,
		threshold:  float32(config.Threshold),
		sampleRate: config.SampleRate,
	}, nil
}

// IsVAD 检测音频数据中的语音活动
func (s *SileroVAD) IsVAD(pcmData []float32) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false, inter.ErrNotReady
	}

	segments, err := s.detector.Detect(pcmData)
	if err != nil {
		return false, fmt.Errorf("silero detect error: %w", err)
	}

	for _, segment := range segments {
		log.Debugf("speech starts at %0.2fs", segment.SpeechStartAt)
		if segment.SpeechEndAt > 0 {
			log.Debugf("speech ends at %0.2fs", segment.SpeechEndAt)
		}
	}

	return len(segments) > 0, nil
}

// IsVADExt 按指定采样率与帧长检测，Silero 检测器忽略帧长参数
func (s *SileroVAD) IsVADExt(pcmData []float32, sampleRate int, frameSize int) (bool, error) {
	if sampleRate != s.sampleRate {
		return false, fmt.Errorf("%w: detector configured for %d Hz, got %d", inter.ErrInvalidFrame, s.sampleRate, sampleRate)
	}
	return s.IsVAD(pcmData)
}

// Reset 重置检测器的跨帧会话状态
func (s *SileroVAD) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return inter.ErrNotReady
	}
	return s.detector.Reset()
}

// Close 关闭并释放资源 (实现 Resource 接口)
func (s *SileroVAD) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.detector.Destroy()
}

// IsValid 检查资源是否有效 (实现 Resource 接口)
func (s *SileroVAD) IsValid() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed
}

var _ inter.VAD = (*SileroVAD)(nil)
