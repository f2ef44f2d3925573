package server

import (
	"encoding/binary"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"vad-engine-golang/constants"
	vad "vad-engine-golang/internal/domain/vad"
	"vad-engine-golang/internal/domain/vad/inter"
	"vad-engine-golang/internal/domain/vad/session"
	"vad-engine-golang/internal/domain/vad/webrtc_vad"
	log "vad-engine-golang/logger"
)

// vadSession 单个 WebSocket 连接对应的检测会话
// 连接即所有者：会话引用只在本连接的读循环中使用，连接断开时销毁
type vadSession struct {
	connID   string
	manager  *session.Manager
	provider string

	// webrtc_vad 路径：会话管理器引用
	handle      session.Handle
	created     bool
	sampleRate  int
	frameLength int

	// silero_vad 路径：池化流式检测器
	detector inter.VAD
}

// handleVAD 处理 /vad/v1/ 的 WebSocket 连接
func (s *WebSocketServer) handleVAD(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Errorf("升级WebSocket连接失败: %v", err)
		return
	}
	defer conn.Close()

	sess := &vadSession{
		connID:  uuid.New().String(),
		manager: s.manager,
	}
	defer sess.teardown()

	log.Infof("连接 %s 已建立", sess.connID)

	for {
		messageType, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warnf("连接 %s 异常断开: %v", sess.connID, err)
			}
			return
		}

		switch messageType {
		case websocket.TextMessage:
			if done := s.handleControl(conn, sess, payload); done {
				return
			}
		case websocket.BinaryMessage:
			s.handleFrame(conn, sess, payload)
		}
	}
}

// handleControl 处理文本控制消息，返回true表示连接应关闭
func (s *WebSocketServer) handleControl(conn *websocket.Conn, sess *vadSession, payload []byte) bool {
	var msg ClientMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		log.Warnf("连接 %s 非法控制消息: %v", sess.connID, err)
		conn.WriteJSON(CodeResponse{Type: "error", Code: int(inter.CodeInvalidFrame)})
		return false
	}

	switch msg.Type {
	case "hello":
		conn.WriteJSON(s.startSession(sess, msg))
	case "mode":
		conn.WriteJSON(CodeResponse{Type: "mode", Code: int(sess.setMode(msg.Mode))})
	case "close":
		conn.WriteJSON(CodeResponse{Type: "close", Code: int(inter.CodeOk)})
		return true
	default:
		log.Warnf("连接 %s 未知消息类型: %s", sess.connID, msg.Type)
	}
	return false
}

// startSession 按 hello 消息建立检测会话
func (s *WebSocketServer) startSession(sess *vadSession, msg ClientMessage) HelloResponse {
	if sess.created || sess.detector != nil {
		return HelloResponse{Type: "hello", Code: int(inter.CodeAlreadyExists), Message: "session already exists"}
	}

	provider := msg.Provider
	if provider == "" {
		provider = constants.VadTypeWebRTCVad
	}

	switch provider {
	case constants.VadTypeWebRTCVad:
		config := webrtc_vad.DefaultEngineConfig()
		if msg.SampleRate > 0 {
			config.SampleRate = msg.SampleRate
		}
		if msg.FrameDurationMs > 0 {
			config.FrameDurationMs = msg.FrameDurationMs
		}
		config.Mode = msg.Mode

		handle, code := s.manager.Create(config)
		if code != inter.CodeOk {
			return HelloResponse{Type: "hello", Code: int(code), Message: code.String()}
		}
		frameLength, _ := s.manager.FrameLength(handle)

		sess.provider = provider
		sess.handle = handle
		sess.created = true
		sess.sampleRate = config.SampleRate
		sess.frameLength = frameLength

		log.Infof("连接 %s 建立 webrtc_vad 会话 %s: %d Hz, %d samples/frame", sess.connID, handle, config.SampleRate, frameLength)
		return HelloResponse{Type: "hello", SessionID: handle.String(), FrameLength: frameLength, Code: int(inter.CodeOk)}

	case constants.VadTypeSileroVad:
		detector, err := vad.AcquireVAD(provider, s.vadConfig)
		if err != nil {
			log.Errorf("连接 %s 获取 silero 检测器失败: %v", sess.connID, err)
			return HelloResponse{Type: "hello", Code: int(inter.CodeAllocationFailed), Message: err.Error()}
		}
		sess.provider = provider
		sess.detector = detector
		log.Infof("连接 %s 建立 silero_vad 会话", sess.connID)
		return HelloResponse{Type: "hello", SessionID: sess.connID, Code: int(inter.CodeOk)}

	default:
		return HelloResponse{Type: "hello", Code: int(inter.CodeInvalidMode), Message: "invalid provider"}
	}
}

// handleFrame 处理一帧二进制音频数据
func (s *WebSocketServer) handleFrame(conn *websocket.Conn, sess *vadSession, payload []byte) {
	if len(payload)%2 != 0 {
		conn.WriteJSON(ResultResponse{Type: "result", Code: int(inter.CodeInvalidFrame)})
		return
	}

	samples := pcmBytesToInt16(payload)

	switch {
	case sess.created:
		isSpeech, code := s.manager.Classify(sess.handle, sess.sampleRate, len(samples), samples)
		conn.WriteJSON(ResultResponse{Type: "result", Speech: isSpeech, Code: int(code)})
	case sess.detector != nil:
		isSpeech, err := sess.detector.IsVAD(int16ToFloat32(samples))
		if err != nil {
			log.Errorf("连接 %s silero 检测失败: %v", sess.connID, err)
			conn.WriteJSON(ResultResponse{Type: "result", Code: int(inter.CodeOf(err))})
			return
		}
		conn.WriteJSON(ResultResponse{Type: "result", Speech: isSpeech, Code: int(inter.CodeOk)})
	default:
		// 未发送 hello 先发音频帧
		conn.WriteJSON(ResultResponse{Type: "result", Code: int(inter.CodeNotReady)})
	}
}

// setMode 调整会话的敏感度模式，仅 webrtc_vad 支持
func (sess *vadSession) setMode(mode int) inter.Code {
	if !sess.created {
		return inter.CodeNotReady
	}
	return sess.manager.SetMode(sess.handle, mode)
}

// teardown 连接断开时销毁会话资源
func (sess *vadSession) teardown() {
	if sess.created {
		sess.manager.Destroy(sess.handle)
		log.Infof("连接 %s 会话已销毁", sess.connID)
	}
	if sess.detector != nil {
		if err := vad.ReleaseVAD(sess.detector); err != nil {
			log.Errorf("连接 %s 归还检测器失败: %v", sess.connID, err)
		}
	}
}

// pcmBytesToInt16 将小端序 16-bit PCM 字节流转换为 int16 采样
func pcmBytesToInt16(data []byte) []int16 {
	samples := make([]int16, len(data)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
	}
	return samples
}

// int16ToFloat32 将 int16 采样归一化为 float32 (-1.0 到 1.0)
func int16ToFloat32(samples []int16) []float32 {
	out := make([]float32, len(samples))
	for i, sample := range samples {
		out[i] = float32(sample) / 32768.0
	}
	return out
}
