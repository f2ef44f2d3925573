package inter

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestCodeValues 结果码数值是对外契约，不可变更
func TestCodeValues(t *testing.T) {
	assert.EqualValues(t, 0, CodeOk)
	assert.EqualValues(t, -1, CodeAllocationFailed)
	assert.EqualValues(t, -2, CodeInitFailed)
	assert.EqualValues(t, -3, CodeInvalidMode)
	assert.EqualValues(t, -4, CodeInvalidGeometry)
	assert.EqualValues(t, -5, CodeInvalidFrame)
	assert.EqualValues(t, -6, CodeNotReady)
	assert.EqualValues(t, -7, CodeAlreadyExists)
}

// TestCodeOf 错误到结果码的映射，包括包装后的错误
func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeOk, CodeOf(nil))
	assert.Equal(t, CodeInvalidMode, CodeOf(ErrInvalidMode))
	assert.Equal(t, CodeNotReady, CodeOf(fmt.Errorf("%w: engine is not ready", ErrNotReady)))
	assert.Equal(t, CodeInvalidFrame, CodeOf(fmt.Errorf("%w: frame has 319 samples", ErrInvalidFrame)))
	assert.Equal(t, CodeInvalidGeometry, CodeOf(fmt.Errorf("%w: 44100", ErrInvalidGeometry)))
	// 未识别的错误按 InvalidFrame 处理
	assert.Equal(t, CodeInvalidFrame, CodeOf(errors.New("boom")))
}
