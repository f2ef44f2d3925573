package constants

const (
	VadTypeWebRTCVad = "webrtc_vad"
	VadTypeSileroVad = "silero_vad"
)
