package geometry

import (
	"fmt"

	"vad-engine-golang/internal/domain/vad/inter"
)

// WebRTC VAD 仅对 4 种采样率 × 3 种帧时长共 12 种组合定义行为
// 其余组合送入底层算法属于未定义行为，必须在本层拒绝
var (
	sampleRates    = []int{8000, 16000, 32000, 48000}
	frameDurations = []int{10, 20, 30}
)

// SampleRates 返回支持的采样率列表 (Hz)
func SampleRates() []int {
	out := make([]int, len(sampleRates))
	copy(out, sampleRates)
	return out
}

// FrameDurations 返回支持的帧时长列表 (ms)
func FrameDurations() []int {
	out := make([]int, len(frameDurations))
	copy(out, frameDurations)
	return out
}

// FrameLength 计算给定采样率与帧时长对应的帧长(采样点数)
// 组合不受支持时返回 inter.ErrInvalidGeometry
func FrameLength(sampleRateHz, durationMs int) (int, error) {
	if !contains(sampleRates, sampleRateHz) || !contains(frameDurations, durationMs) {
		return 0, fmt.Errorf("%w: sample rate %d with frame duration %dms", inter.ErrInvalidGeometry, sampleRateHz, durationMs)
	}
	return sampleRateHz * durationMs / 1000, nil
}

// ValidFrameLength 检查(采样率, 帧长)是否为受支持的组合
// 每次分类调用前都需检查，调用方逐帧传入帧长，可能与配置的几何参数不一致
func ValidFrameLength(sampleRateHz, frameLength int) bool {
	if !contains(sampleRates, sampleRateHz) {
		return false
	}
	for _, d := range frameDurations {
		if frameLength == sampleRateHz*d/1000 {
			return true
		}
	}
	return false
}

func contains(list []int, v int) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
