package server

// 控制消息走文本帧，音频帧走二进制帧（int16 小端 PCM）

// ClientMessage 客户端控制消息
type ClientMessage struct {
	Type string `json:"type"` // hello | mode | close

	// hello 字段
	Provider        string `json:"provider,omitempty"` // webrtc_vad | silero_vad，默认 webrtc_vad
	SampleRate      int    `json:"sample_rate,omitempty"`
	FrameDurationMs int    `json:"frame_duration_ms,omitempty"`

	// hello / mode 共用
	Mode int `json:"mode,omitempty"`
}

// HelloResponse 会话建立应答
type HelloResponse struct {
	Type        string `json:"type"` // hello
	SessionID   string `json:"session_id,omitempty"`
	FrameLength int    `json:"frame_length,omitempty"` // 每帧采样点数，流式提供方为0
	Code        int    `json:"code"`
	Message     string `json:"message,omitempty"`
}

// ResultResponse 单帧分类结果
type ResultResponse struct {
	Type   string `json:"type"` // result
	Speech bool   `json:"speech"`
	Code   int    `json:"code"`
}

// CodeResponse 控制操作应答
type CodeResponse struct {
	Type string `json:"type"` // mode | close
	Code int    `json:"code"`
}
