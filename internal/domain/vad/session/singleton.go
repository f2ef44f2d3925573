package session

import (
	"sync"

	log "vad-engine-golang/logger"

	"vad-engine-golang/internal/domain/vad/inter"
	"vad-engine-golang/internal/domain/vad/webrtc_vad"
)

// Singleton 单实例策略：全进程至多一个引擎，调用面不带引用
// 仅适合单路音频流。默认行为是再次 Create 时先显式销毁旧引擎再替换，
// 严格模式下改为返回 AlreadyExists
// 内部加锁，历史实现中未同步的全局句柄是缺陷，这里不复刻
type Singleton struct {
	engine *webrtc_vad.Engine
	strict bool
	mu     sync.Mutex
}

// SingletonOption 单实例策略配置项
type SingletonOption func(*Singleton)

// WithStrictCreate 存在存活引擎时让 Create 失败，而不是替换
func WithStrictCreate() SingletonOption {
	return func(s *Singleton) {
		s.strict = true
	}
}

// NewSingleton 创建单实例策略管理器
func NewSingleton(opts ...SingletonOption) *Singleton {
	s := &Singleton{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create 创建引擎
// 已有存活引擎时：默认先销毁旧引擎再替换（记日志），严格模式返回 AlreadyExists
func (s *Singleton) Create(config webrtc_vad.EngineConfig) inter.Code {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.engine != nil && s.engine.Ready() {
		if s.strict {
			return inter.CodeAlreadyExists
		}
		log.Warnf("replacing live singleton engine, destroying previous instance")
		if err := s.engine.Destroy(); err != nil {
			return inter.CodeOf(err)
		}
		s.engine = nil
	}

	engine, err := webrtc_vad.NewEngine(config)
	if err != nil {
		return inter.CodeOf(err)
	}
	s.engine = engine
	return inter.CodeOk
}

// SetMode 调整敏感度模式
func (s *Singleton) SetMode(mode int) inter.Code {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.engine == nil {
		return inter.CodeNotReady
	}
	return inter.CodeOf(s.engine.SetMode(mode))
}

// Classify 执行单帧分类
func (s *Singleton) Classify(sampleRate, frameLength int, frame []int16) (bool, inter.Code) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.engine == nil {
		return false, inter.CodeNotReady
	}
	isSpeech, err := s.engine.Classify(sampleRate, frameLength, frame)
	return isSpeech, inter.CodeOf(err)
}

// Destroy 销毁当前引擎，无存活引擎时为空操作
func (s *Singleton) Destroy() inter.Code {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.engine == nil {
		log.Warnf("destroy called with no live singleton engine")
		return inter.CodeOk
	}
	code := inter.CodeOf(s.engine.Destroy())
	s.engine = nil
	return code
}

// Live 是否存在存活引擎
func (s *Singleton) Live() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine != nil && s.engine.Ready()
}
