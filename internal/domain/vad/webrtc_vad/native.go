package webrtc_vad

import (
	"fmt"

	"github.com/hackers365/go-webrtcvad"

	"vad-engine-golang/internal/domain/vad/inter"
)

// binding 底层 WebRTC VAD 分类器绑定
// 抽出接口是为了让生命周期测试可以注入计数桩，统计分配/释放是否成对
type binding interface {
	SetMode(mode int) error
	Process(sampleRate int, frame []byte) (bool, error)
	Free()
}

type nativeBinding struct {
	vad *webrtcvad.VAD
}

func (n *nativeBinding) SetMode(mode int) error {
	return n.vad.SetMode(mode)
}

func (n *nativeBinding) Process(sampleRate int, frame []byte) (bool, error) {
	return n.vad.Process(sampleRate, frame)
}

func (n *nativeBinding) Free() {
	webrtcvad.Free(n.vad)
}

// newBinding 创建并初始化底层上下文，测试中可整体替换
// 创建失败与初始化失败区分返回，初始化失败时底层上下文已被释放
var newBinding = func() (binding, error) {
	v, err := webrtcvad.New()
	if v == nil {
		return nil, fmt.Errorf("%w: failed to create WebRTC VAD instance", inter.ErrAllocationFailed)
	}
	if err != nil {
		webrtcvad.Free(v)
		return nil, fmt.Errorf("%w: %v", inter.ErrInitFailed, err)
	}
	return &nativeBinding{vad: v}, nil
}
