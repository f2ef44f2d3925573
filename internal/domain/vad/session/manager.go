// Package session 管理引擎实例的存在与寻址：谁可以创建、持有、销毁一个引擎
// 本包不实现任何分类逻辑，分类由 webrtc_vad.Engine 完成
//
// 默认采用多实例策略：Create 返回不透明的 Handle，任意多个引擎共存，
// 每个调用显式携带 Handle。单个 Handle 的调用不支持跨线程并发（移动语义，
// 非共享），注册表本身并发安全
package session

import (
	"github.com/google/uuid"
	cmap "github.com/orcaman/concurrent-map/v2"

	log "vad-engine-golang/logger"

	"vad-engine-golang/internal/domain/vad/inter"
	"vad-engine-golang/internal/domain/vad/webrtc_vad"
)

// Handle 引擎实例的不透明引用
// 内部是随机的会话id，调用方无法伪造或复用已销毁的引用：
// 失效的 Handle 在注册表中查不到，统一判定为 NotReady 而不是内存错误
type Handle struct {
	id string
}

// Valid Handle 是否由 Create 产生（零值 Handle 无效）
func (h Handle) Valid() bool {
	return h.id != ""
}

func (h Handle) String() string {
	if h.id == "" {
		return "<nil>"
	}
	return h.id
}

// Manager 多实例会话管理器
type Manager struct {
	engines cmap.ConcurrentMap[string, *webrtc_vad.Engine]
}

// NewManager 创建会话管理器
func NewManager() *Manager {
	return &Manager{
		engines: cmap.New[*webrtc_vad.Engine](),
	}
}

// Create 创建引擎实例并登记，返回不透明引用
// 创建失败不会留下任何登记，部分分配的底层上下文由引擎层负责释放
func (m *Manager) Create(config webrtc_vad.EngineConfig) (Handle, inter.Code) {
	engine, err := webrtc_vad.NewEngine(config)
	if err != nil {
		log.Warnf("create engine failed: %v", err)
		return Handle{}, inter.CodeOf(err)
	}

	handle := Handle{id: uuid.New().String()}
	m.engines.Set(handle.id, engine)
	log.Debugf("engine %s created: %d Hz, %dms, mode %d", handle, config.SampleRate, config.FrameDurationMs, config.Mode)
	return handle, inter.CodeOk
}

// SetMode 调整指定引擎的敏感度模式
func (m *Manager) SetMode(handle Handle, mode int) inter.Code {
	engine, ok := m.engines.Get(handle.id)
	if !ok {
		return inter.CodeNotReady
	}
	return inter.CodeOf(engine.SetMode(mode))
}

// Classify 对指定引擎执行单帧分类
func (m *Manager) Classify(handle Handle, sampleRate, frameLength int, frame []int16) (bool, inter.Code) {
	engine, ok := m.engines.Get(handle.id)
	if !ok {
		return false, inter.CodeNotReady
	}
	isSpeech, err := engine.Classify(sampleRate, frameLength, frame)
	return isSpeech, inter.CodeOf(err)
}

// Destroy 销毁指定引擎并注销引用
// 对已销毁或不存在的引用销毁是空操作，记一条警告日志后返回 Ok
func (m *Manager) Destroy(handle Handle) inter.Code {
	engine, ok := m.engines.Pop(handle.id)
	if !ok {
		log.Warnf("destroy called on unknown engine handle %s", handle)
		return inter.CodeOk
	}
	if err := engine.Destroy(); err != nil {
		return inter.CodeOf(err)
	}
	log.Debugf("engine %s destroyed", handle)
	return inter.CodeOk
}

// FrameLength 查询指定引擎配置的帧长
func (m *Manager) FrameLength(handle Handle) (int, inter.Code) {
	engine, ok := m.engines.Get(handle.id)
	if !ok {
		return 0, inter.CodeNotReady
	}
	return engine.FrameLength(), inter.CodeOk
}

// Count 当前存活的引擎数量
func (m *Manager) Count() int {
	return m.engines.Count()
}

// Close 销毁所有存活引擎，服务停机时使用
func (m *Manager) Close() {
	for item := range m.engines.IterBuffered() {
		m.engines.Remove(item.Key)
		if err := item.Val.Destroy(); err != nil {
			log.Errorf("destroy engine %s on close failed: %v", item.Key, err)
		}
	}
}
