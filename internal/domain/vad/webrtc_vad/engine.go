package webrtc_vad

import (
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	log "vad-engine-golang/logger"

	"vad-engine-golang/internal/domain/vad/geometry"
	"vad-engine-golang/internal/domain/vad/inter"
)

const (
	// DefaultSampleRate WebRTC VAD 支持的采样率 (8000, 16000, 32000, 48000)
	DefaultSampleRate = 16000
	// DefaultMode VAD 敏感度模式 (0: 最不敏感, 3: 最敏感)
	DefaultMode = 2
	// DefaultFrameDuration 帧时长 (ms)，WebRTC VAD 支持 10ms, 20ms, 30ms
	DefaultFrameDuration = 20
)

// 引擎生命周期状态，Ready 之后只能进入 Destroyed，不可逆
type engineState int

const (
	stateUninitialized engineState = iota
	stateReady
	stateDestroyed
)

// EngineConfig 引擎创建参数
type EngineConfig struct {
	SampleRate      int // 采样率 (Hz)
	FrameDurationMs int // 帧时长 (ms)
	Mode            int // 敏感度模式 0-3
}

// DefaultEngineConfig 返回默认引擎配置
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		SampleRate:      DefaultSampleRate,
		FrameDurationMs: DefaultFrameDuration,
		Mode:            DefaultMode,
	}
}

// Engine 持有一个底层分类器上下文，独占所有权，不允许别名
// 单个 Engine 的 SetMode/Classify/Destroy 不支持多线程并发调用，
// 内部互斥锁只保证误用时退化为串行而不是数据竞争，所有权语义是移动而非共享
type Engine struct {
	native          binding
	state           engineState
	sampleRate      int       // 采样率
	frameDurationMs int       // 帧时长 (ms)
	frameLength     int       // 每帧采样点数
	mode            int       // VAD 模式
	lastUsed        time.Time // 最后使用时间
	mu              sync.Mutex
}

// NewEngine 创建引擎实例：分配底层上下文、初始化、应用模式，三步原子完成
// 任何一步失败都会释放已分配的部分上下文后返回，不留半初始化状态
func NewEngine(config EngineConfig) (*Engine, error) {
	if config.Mode < 0 || config.Mode > 3 {
		return nil, fmt.Errorf("%w: %d, must be 0-3", inter.ErrInvalidMode, config.Mode)
	}

	frameLength, err := geometry.FrameLength(config.SampleRate, config.FrameDurationMs)
	if err != nil {
		return nil, err
	}

	native, err := newBinding()
	if err != nil {
		return nil, err
	}

	if err := native.SetMode(config.Mode); err != nil {
		native.Free()
		return nil, fmt.Errorf("%w: failed to set mode %d: %v", inter.ErrInitFailed, config.Mode, err)
	}

	return &Engine{
		native:          native,
		state:           stateReady,
		sampleRate:      config.SampleRate,
		frameDurationMs: config.FrameDurationMs,
		frameLength:     frameLength,
		mode:            config.Mode,
		lastUsed:        time.Now(),
	}, nil
}

// SetMode 调整敏感度模式，不重置底层自适应状态
func (e *Engine) SetMode(mode int) error {
	if mode < 0 || mode > 3 {
		return fmt.Errorf("%w: %d, must be 0-3", inter.ErrInvalidMode, mode)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != stateReady {
		return fmt.Errorf("%w: engine is not ready", inter.ErrNotReady)
	}

	if err := e.native.SetMode(mode); err != nil {
		return fmt.Errorf("%w: failed to set mode %d: %v", inter.ErrInitFailed, mode, err)
	}

	e.mode = mode
	return nil
}

// Classify 对单帧执行语音/非语音分类
// 调用方逐帧传入采样率与帧长，必须与创建时配置的几何参数一致，
// 且 frame 长度恰好等于 frameLength，否则返回 InvalidFrame 且不触碰底层算法
// 带错误长度调用底层算法是未定义行为，这一层存在的意义就是挡住它
func (e *Engine) Classify(sampleRate, frameLength int, frame []int16) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != stateReady {
		return false, fmt.Errorf("%w: engine is not ready", inter.ErrNotReady)
	}

	if sampleRate != e.sampleRate || frameLength != e.frameLength ||
		!geometry.ValidFrameLength(sampleRate, frameLength) {
		return false, fmt.Errorf("%w: got (%d Hz, %d samples), engine configured for (%d Hz, %d samples)",
			inter.ErrInvalidFrame, sampleRate, frameLength, e.sampleRate, e.frameLength)
	}

	if len(frame) != frameLength {
		return false, fmt.Errorf("%w: frame has %d samples, expected %d",
			inter.ErrInvalidFrame, len(frame), frameLength)
	}

	e.lastUsed = time.Now()

	isSpeech, err := e.native.Process(sampleRate, int16ToPCMBytes(frame))
	if err != nil {
		return false, fmt.Errorf("WebRTC VAD process error: %w", err)
	}
	return isSpeech, nil
}

// Destroy 释放底层上下文，引擎进入终态
// 重复销毁是被容忍的空操作，只记一条警告日志，不会二次释放
func (e *Engine) Destroy() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == stateDestroyed {
		log.Warnf("destroy called on already destroyed engine")
		return nil
	}

	if e.native != nil {
		e.native.Free()
		e.native = nil
	}
	e.state = stateDestroyed
	return nil
}

// Ready 引擎是否可分类
func (e *Engine) Ready() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state == stateReady
}

// SampleRate 获取配置的采样率
func (e *Engine) SampleRate() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sampleRate
}

// FrameLength 获取每帧采样点数
func (e *Engine) FrameLength() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.frameLength
}

// FrameDurationMs 获取帧时长 (ms)
func (e *Engine) FrameDurationMs() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.frameDurationMs
}

// Mode 获取当前敏感度模式
func (e *Engine) Mode() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mode
}

// LastUsed 获取最后使用时间
func (e *Engine) LastUsed() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastUsed
}

// int16ToPCMBytes 将 int16 采样转换为小端序 16-bit PCM 字节流
func int16ToPCMBytes(samples []int16) []byte {
	pcmBytes := make([]byte, len(samples)*2)
	for i, sample := range samples {
		binary.LittleEndian.PutUint16(pcmBytes[i*2:], uint16(sample))
	}
	return pcmBytes
}
