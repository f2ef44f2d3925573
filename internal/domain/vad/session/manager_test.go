package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vad-engine-golang/internal/domain/vad/inter"
	"vad-engine-golang/internal/domain/vad/webrtc_vad"
)

// TestManagerLifecycle 测试完整生命周期：创建->分类->销毁
func TestManagerLifecycle(t *testing.T) {
	manager := NewManager()
	defer manager.Close()

	handle, code := manager.Create(webrtc_vad.EngineConfig{SampleRate: 16000, FrameDurationMs: 20, Mode: 1})
	require.Equal(t, inter.CodeOk, code)
	require.True(t, handle.Valid())
	assert.Equal(t, 1, manager.Count())

	frameLength, code := manager.FrameLength(handle)
	require.Equal(t, inter.CodeOk, code)
	assert.Equal(t, 320, frameLength)

	// 全零帧为非语音
	isSpeech, code := manager.Classify(handle, 16000, 320, make([]int16, 320))
	assert.Equal(t, inter.CodeOk, code)
	assert.False(t, isSpeech)

	// 帧长不符
	_, code = manager.Classify(handle, 16000, 319, make([]int16, 319))
	assert.Equal(t, inter.CodeInvalidFrame, code)

	code = manager.Destroy(handle)
	assert.Equal(t, inter.CodeOk, code)
	assert.Equal(t, 0, manager.Count())

	// 销毁之后任何调用都是 NotReady
	_, code = manager.Classify(handle, 16000, 320, make([]int16, 320))
	assert.Equal(t, inter.CodeNotReady, code)
	code = manager.SetMode(handle, 2)
	assert.Equal(t, inter.CodeNotReady, code)

	// 重复销毁是空操作
	code = manager.Destroy(handle)
	assert.Equal(t, inter.CodeOk, code)
}

// TestManagerCreateInvalid 测试非法创建参数
func TestManagerCreateInvalid(t *testing.T) {
	manager := NewManager()
	defer manager.Close()

	handle, code := manager.Create(webrtc_vad.EngineConfig{SampleRate: 16000, FrameDurationMs: 20, Mode: 5})
	assert.Equal(t, inter.CodeInvalidMode, code)
	assert.False(t, handle.Valid())

	handle, code = manager.Create(webrtc_vad.EngineConfig{SampleRate: 44100, FrameDurationMs: 20, Mode: 1})
	assert.Equal(t, inter.CodeInvalidGeometry, code)
	assert.False(t, handle.Valid())

	assert.Equal(t, 0, manager.Count())
}

// TestManagerSetMode 测试模式调整
func TestManagerSetMode(t *testing.T) {
	manager := NewManager()
	defer manager.Close()

	handle, code := manager.Create(webrtc_vad.EngineConfig{SampleRate: 8000, FrameDurationMs: 10, Mode: 0})
	require.Equal(t, inter.CodeOk, code)

	assert.Equal(t, inter.CodeOk, manager.SetMode(handle, 3))
	assert.Equal(t, inter.CodeInvalidMode, manager.SetMode(handle, -1))
	assert.Equal(t, inter.CodeInvalidMode, manager.SetMode(handle, 4))
}

// TestManagerFabricatedHandle 伪造或零值引用不能命中任何引擎
func TestManagerFabricatedHandle(t *testing.T) {
	manager := NewManager()
	defer manager.Close()

	_, code := manager.Create(webrtc_vad.EngineConfig{SampleRate: 16000, FrameDurationMs: 20, Mode: 1})
	require.Equal(t, inter.CodeOk, code)

	fabricated := Handle{id: "not-a-real-session"}
	_, code = manager.Classify(fabricated, 16000, 320, make([]int16, 320))
	assert.Equal(t, inter.CodeNotReady, code)
	assert.Equal(t, inter.CodeNotReady, manager.SetMode(fabricated, 1))
	// 销毁不存在的引用是空操作
	assert.Equal(t, inter.CodeOk, manager.Destroy(fabricated))

	var zero Handle
	_, code = manager.Classify(zero, 16000, 320, make([]int16, 320))
	assert.Equal(t, inter.CodeNotReady, code)

	assert.Equal(t, 1, manager.Count())
}

// TestManagerIndependentInstances 多实例相互独立
func TestManagerIndependentInstances(t *testing.T) {
	manager := NewManager()
	defer manager.Close()

	handleA, code := manager.Create(webrtc_vad.EngineConfig{SampleRate: 16000, FrameDurationMs: 20, Mode: 0})
	require.Equal(t, inter.CodeOk, code)
	handleB, code := manager.Create(webrtc_vad.EngineConfig{SampleRate: 8000, FrameDurationMs: 30, Mode: 3})
	require.Equal(t, inter.CodeOk, code)
	assert.Equal(t, 2, manager.Count())

	frame := make([]int16, 240)
	isSpeechBefore, code := manager.Classify(handleB, 8000, 240, frame)
	require.Equal(t, inter.CodeOk, code)

	// 调整 A 的模式不影响 B 对相同帧的判定
	require.Equal(t, inter.CodeOk, manager.SetMode(handleA, 3))
	isSpeechAfter, code := manager.Classify(handleB, 8000, 240, frame)
	require.Equal(t, inter.CodeOk, code)
	assert.Equal(t, isSpeechBefore, isSpeechAfter)

	// 销毁 A 不影响 B
	require.Equal(t, inter.CodeOk, manager.Destroy(handleA))
	_, code = manager.Classify(handleB, 8000, 240, frame)
	assert.Equal(t, inter.CodeOk, code)
	assert.Equal(t, 1, manager.Count())
}

// TestManagerClose 停机销毁所有引擎
func TestManagerClose(t *testing.T) {
	manager := NewManager()

	for i := 0; i < 4; i++ {
		_, code := manager.Create(webrtc_vad.EngineConfig{SampleRate: 16000, FrameDurationMs: 20, Mode: i % 4})
		require.Equal(t, inter.CodeOk, code)
	}
	assert.Equal(t, 4, manager.Count())

	manager.Close()
	assert.Equal(t, 0, manager.Count())
}
