package inter

import "errors"

// Code 对外调用契约的结果码，0为成功，负值为失败
// 分类调用方通常在逐帧的紧循环中使用，结果码可直接透传到桥接层
type Code int

const (
	CodeOk               Code = 0
	CodeAllocationFailed Code = -1
	CodeInitFailed       Code = -2
	CodeInvalidMode      Code = -3
	CodeInvalidGeometry  Code = -4
	CodeInvalidFrame     Code = -5
	CodeNotReady         Code = -6
	CodeAlreadyExists    Code = -7
)

// 与结果码一一对应的错误值，引擎层返回error，会话层转为Code
var (
	ErrAllocationFailed = errors.New("allocation failed")
	ErrInitFailed       = errors.New("init failed")
	ErrInvalidMode      = errors.New("invalid mode")
	ErrInvalidGeometry  = errors.New("invalid geometry")
	ErrInvalidFrame     = errors.New("invalid frame")
	ErrNotReady         = errors.New("not ready")
	ErrAlreadyExists    = errors.New("already exists")
)

func (c Code) String() string {
	switch c {
	case CodeOk:
		return "ok"
	case CodeAllocationFailed:
		return "allocation_failed"
	case CodeInitFailed:
		return "init_failed"
	case CodeInvalidMode:
		return "invalid_mode"
	case CodeInvalidGeometry:
		return "invalid_geometry"
	case CodeInvalidFrame:
		return "invalid_frame"
	case CodeNotReady:
		return "not_ready"
	case CodeAlreadyExists:
		return "already_exists"
	default:
		return "unknown"
	}
}

// CodeOf 将引擎层错误映射为结果码
// 未识别的错误按InvalidFrame处理：前置校验通过后，底层算法仅会因帧数据被拒绝而失败
func CodeOf(err error) Code {
	switch {
	case err == nil:
		return CodeOk
	case errors.Is(err, ErrAllocationFailed):
		return CodeAllocationFailed
	case errors.Is(err, ErrInitFailed):
		return CodeInitFailed
	case errors.Is(err, ErrInvalidMode):
		return CodeInvalidMode
	case errors.Is(err, ErrInvalidGeometry):
		return CodeInvalidGeometry
	case errors.Is(err, ErrInvalidFrame):
		return CodeInvalidFrame
	case errors.Is(err, ErrNotReady):
		return CodeNotReady
	case errors.Is(err, ErrAlreadyExists):
		return CodeAlreadyExists
	default:
		return CodeInvalidFrame
	}
}
