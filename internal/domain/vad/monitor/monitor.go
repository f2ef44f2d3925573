// Package monitor 在逐帧分类结果之上做去抖：
// 连续语音累计超过阈值才上报语音，连续静音累计超过阈值才上报静音
// 分类契约本身不做任何平滑，平滑是调用方的事，本包就是那个调用方工具
package monitor

import "time"

// Listener 去抖后的事件回调
type Listener interface {
	// OnSpeechDetected 连续语音超过 VoiceDuration 时回调
	OnSpeechDetected()
	// OnNoiseDetected 连续静音超过 SilenceDuration 时回调
	OnNoiseDetected()
}

// Config 去抖参数
type Config struct {
	// FrameDurationMs 每帧时长，时间按帧数推进而不是挂钟，结果可复现
	FrameDurationMs int
	// VoiceDuration 连续语音累计多久判定为开始说话
	VoiceDuration time.Duration
	// SilenceDuration 连续静音累计多久判定为停止说话
	SilenceDuration time.Duration
}

// Monitor 跨帧语音状态去抖器，单协程使用
type Monitor struct {
	config   Config
	listener Listener

	voiceMs   int64
	silenceMs int64
	needReset bool
}

// New 创建去抖器
func New(config Config, listener Listener) *Monitor {
	return &Monitor{
		config:    config,
		listener:  listener,
		needReset: true,
	}
}

// Feed 投喂一帧的分类结果
func (m *Monitor) Feed(isSpeech bool) {
	frameMs := int64(m.config.FrameDurationMs)

	if isSpeech {
		m.voiceMs += frameMs
		m.needReset = true
		if m.voiceMs > m.config.VoiceDuration.Milliseconds() {
			m.listener.OnSpeechDetected()
		}
		return
	}

	if m.needReset {
		m.needReset = false
		m.voiceMs = 0
		m.silenceMs = 0
	}
	m.silenceMs += frameMs
	if m.silenceMs > m.config.SilenceDuration.Milliseconds() {
		m.listener.OnNoiseDetected()
	}
}

// Reset 清空累计状态
func (m *Monitor) Reset() {
	m.voiceMs = 0
	m.silenceMs = 0
	m.needReset = true
}
