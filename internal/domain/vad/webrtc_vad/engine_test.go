package webrtc_vad

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vad-engine-golang/internal/domain/vad/inter"
)

// fakeBinding 底层绑定计数桩，统计分配/释放/调用次数
type fakeBinding struct {
	counter      *bindingCounter
	mode         int
	processCalls int
	speech       bool
	setModeErr   error
	processErr   error
}

func (f *fakeBinding) SetMode(mode int) error {
	if f.setModeErr != nil {
		return f.setModeErr
	}
	f.mode = mode
	return nil
}

func (f *fakeBinding) Process(sampleRate int, frame []byte) (bool, error) {
	f.processCalls++
	if f.processErr != nil {
		return false, f.processErr
	}
	if f.speech {
		return true, nil
	}
	// 默认按能量判定：全零帧视为非语音
	for _, b := range frame {
		if b != 0 {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeBinding) Free() {
	f.counter.frees++
}

// bindingCounter 替换 newBinding，跟踪所有创建过的桩
type bindingCounter struct {
	allocs     int
	frees      int
	bindings   []*fakeBinding
	createErr  error
	setModeErr error
}

func (c *bindingCounter) install(t *testing.T) {
	t.Helper()
	old := newBinding
	newBinding = func() (binding, error) {
		if c.createErr != nil {
			return nil, c.createErr
		}
		c.allocs++
		b := &fakeBinding{counter: c, setModeErr: c.setModeErr}
		c.bindings = append(c.bindings, b)
		return b, nil
	}
	t.Cleanup(func() { newBinding = old })
}

// TestNewEngine 测试引擎创建
func TestNewEngine(t *testing.T) {
	counter := &bindingCounter{}
	counter.install(t)

	engine, err := NewEngine(EngineConfig{SampleRate: 16000, FrameDurationMs: 20, Mode: 1})
	require.NoError(t, err)
	require.NotNil(t, engine)

	assert.True(t, engine.Ready())
	assert.Equal(t, 16000, engine.SampleRate())
	assert.Equal(t, 320, engine.FrameLength())
	assert.Equal(t, 20, engine.FrameDurationMs())
	assert.Equal(t, 1, engine.Mode())
	assert.Equal(t, 1, counter.bindings[0].mode)

	require.NoError(t, engine.Destroy())
	assert.Equal(t, counter.allocs, counter.frees)
}

// TestNewEngineInvalidMode 测试无效模式，不应触碰底层分配
func TestNewEngineInvalidMode(t *testing.T) {
	counter := &bindingCounter{}
	counter.install(t)

	for _, mode := range []int{-1, 4, 100} {
		engine, err := NewEngine(EngineConfig{SampleRate: 16000, FrameDurationMs: 20, Mode: mode})
		assert.ErrorIs(t, err, inter.ErrInvalidMode, "mode=%d", mode)
		assert.Nil(t, engine)
	}
	assert.Equal(t, 0, counter.allocs)
}

// TestNewEngineInvalidGeometry 测试无效几何参数，不应触碰底层分配
func TestNewEngineInvalidGeometry(t *testing.T) {
	counter := &bindingCounter{}
	counter.install(t)

	engine, err := NewEngine(EngineConfig{SampleRate: 44100, FrameDurationMs: 20, Mode: 1})
	assert.ErrorIs(t, err, inter.ErrInvalidGeometry)
	assert.Nil(t, engine)

	engine, err = NewEngine(EngineConfig{SampleRate: 16000, FrameDurationMs: 25, Mode: 1})
	assert.ErrorIs(t, err, inter.ErrInvalidGeometry)
	assert.Nil(t, engine)

	assert.Equal(t, 0, counter.allocs)
}

// TestNewEngineAllocationFailed 测试底层分配失败
func TestNewEngineAllocationFailed(t *testing.T) {
	counter := &bindingCounter{createErr: inter.ErrAllocationFailed}
	counter.install(t)

	engine, err := NewEngine(DefaultEngineConfig())
	assert.ErrorIs(t, err, inter.ErrAllocationFailed)
	assert.Nil(t, engine)
}

// TestNewEngineInitModeFailed 初始化中途失败必须释放已分配的上下文
func TestNewEngineInitModeFailed(t *testing.T) {
	counter := &bindingCounter{setModeErr: assert.AnError}
	counter.install(t)

	engine, err := NewEngine(DefaultEngineConfig())
	assert.ErrorIs(t, err, inter.ErrInitFailed)
	assert.Nil(t, engine)

	assert.Equal(t, 1, counter.allocs)
	assert.Equal(t, 1, counter.frees)
}

// TestEngineClassify 测试分类调用契约
func TestEngineClassify(t *testing.T) {
	counter := &bindingCounter{}
	counter.install(t)

	engine, err := NewEngine(EngineConfig{SampleRate: 16000, FrameDurationMs: 20, Mode: 1})
	require.NoError(t, err)
	defer engine.Destroy()

	native := counter.bindings[0]

	// 全零帧判定为非语音
	isSpeech, err := engine.Classify(16000, 320, make([]int16, 320))
	require.NoError(t, err)
	assert.False(t, isSpeech)
	assert.Equal(t, 1, native.processCalls)

	// 非零帧判定为语音
	frame := make([]int16, 320)
	for i := range frame {
		frame[i] = int16(i * 50)
	}
	isSpeech, err = engine.Classify(16000, 320, frame)
	require.NoError(t, err)
	assert.True(t, isSpeech)

	// 帧长与配置不符，不得调用底层算法
	calls := native.processCalls
	_, err = engine.Classify(16000, 319, make([]int16, 319))
	assert.ErrorIs(t, err, inter.ErrInvalidFrame)
	assert.Equal(t, calls, native.processCalls)

	// 采样率与配置不符
	_, err = engine.Classify(8000, 320, make([]int16, 320))
	assert.ErrorIs(t, err, inter.ErrInvalidFrame)

	// 切片长度与声明的帧长不符
	_, err = engine.Classify(16000, 320, make([]int16, 310))
	assert.ErrorIs(t, err, inter.ErrInvalidFrame)
	assert.Equal(t, calls, native.processCalls)
}

// TestEngineSetMode 测试模式调整
func TestEngineSetMode(t *testing.T) {
	counter := &bindingCounter{}
	counter.install(t)

	engine, err := NewEngine(EngineConfig{SampleRate: 16000, FrameDurationMs: 20, Mode: 0})
	require.NoError(t, err)
	defer engine.Destroy()

	require.NoError(t, engine.SetMode(3))
	assert.Equal(t, 3, engine.Mode())
	assert.Equal(t, 3, counter.bindings[0].mode)

	err = engine.SetMode(4)
	assert.ErrorIs(t, err, inter.ErrInvalidMode)
	assert.Equal(t, 3, engine.Mode())
}

// TestEngineDestroy 销毁后的引擎进入终态
func TestEngineDestroy(t *testing.T) {
	counter := &bindingCounter{}
	counter.install(t)

	engine, err := NewEngine(EngineConfig{SampleRate: 16000, FrameDurationMs: 20, Mode: 1})
	require.NoError(t, err)

	require.NoError(t, engine.Destroy())
	assert.False(t, engine.Ready())
	assert.Equal(t, 1, counter.frees)

	// 终态之后 classify/setMode 一律 NotReady
	_, err = engine.Classify(16000, 320, make([]int16, 320))
	assert.ErrorIs(t, err, inter.ErrNotReady)
	assert.ErrorIs(t, engine.SetMode(1), inter.ErrNotReady)

	// 重复销毁是空操作，不会二次释放
	require.NoError(t, engine.Destroy())
	assert.Equal(t, 1, counter.frees)
}

// TestEngineLifecycleNoLeak 多次创建/销毁，分配与释放必须成对
func TestEngineLifecycleNoLeak(t *testing.T) {
	counter := &bindingCounter{}
	counter.install(t)

	for i := 0; i < 10; i++ {
		engine, err := NewEngine(EngineConfig{SampleRate: 8000, FrameDurationMs: 10, Mode: i % 4})
		require.NoError(t, err)
		require.NoError(t, engine.Destroy())
	}

	assert.Equal(t, 10, counter.allocs)
	assert.Equal(t, 10, counter.frees)
}
