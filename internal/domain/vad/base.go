package vad

import (
	"errors"

	"vad-engine-golang/constants"
	"vad-engine-golang/internal/domain/vad/inter"
	"vad-engine-golang/internal/domain/vad/silero_vad"
	"vad-engine-golang/internal/domain/vad/webrtc_vad"
)

// AcquireVAD 按提供方获取流式检测器实例
func AcquireVAD(provider string, config map[string]interface{}) (inter.VAD, error) {
	switch provider {
	case constants.VadTypeWebRTCVad:
		return webrtc_vad.AcquireVAD(config)
	case constants.VadTypeSileroVad:
		return silero_vad.AcquireVAD(config)
	default:
		return nil, errors.New("invalid vad provider")
	}
}

// ReleaseVAD 按检测器类型归还实例
func ReleaseVAD(vad inter.VAD) error {
	switch vad.(type) {
	case *webrtc_vad.Detector:
		return webrtc_vad.ReleaseVAD(vad)
	case *silero_vad.SileroVAD:
		return silero_vad.ReleaseVAD(vad)
	default:
		return errors.New("invalid vad type")
	}
}
