package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/spf13/viper"

	"vad-engine-golang/internal/domain/vad/session"
	log "vad-engine-golang/logger"
)

// WebSocketServer VAD 检测服务，每个连接一个独立会话
type WebSocketServer struct {
	upgrader  websocket.Upgrader
	manager   *session.Manager
	vadConfig map[string]interface{}
	srv       *http.Server
}

// App 统一管理服务生命周期
type App struct {
	wsServer *WebSocketServer
}

// NewApp 创建应用实例
func NewApp() *App {
	return &App{
		wsServer: NewWebSocketServer(viper.GetInt("server.port")),
	}
}

// Run 启动服务，非阻塞
func (a *App) Run() {
	go func() {
		if err := a.wsServer.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("WebSocket 服务器启动失败: %v", err)
		}
	}()
}

// Stop 停机：关闭监听并销毁所有存活会话
func (a *App) Stop(ctx context.Context) {
	a.wsServer.Stop(ctx)
}

// NewWebSocketServer 创建 WebSocket 服务器
func NewWebSocketServer(port int) *WebSocketServer {
	mux := http.NewServeMux()
	s := &WebSocketServer{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // 允许所有来源的连接
			},
		},
		manager:   session.NewManager(),
		vadConfig: viper.GetStringMap("vad"),
		srv: &http.Server{
			Addr:    fmt.Sprintf("0.0.0.0:%d", port),
			Handler: mux,
		},
	}
	mux.HandleFunc("/vad/v1/", s.handleVAD)
	return s
}

// Start 启动 WebSocket 服务器，阻塞直到监听退出
func (s *WebSocketServer) Start() error {
	log.Infof("WebSocket 服务器启动在 ws://%s/vad/v1/", s.srv.Addr)
	return s.srv.ListenAndServe()
}

// Stop 关闭服务器并销毁所有存活引擎
func (s *WebSocketServer) Stop(ctx context.Context) {
	if err := s.srv.Shutdown(ctx); err != nil {
		log.Errorf("关闭WebSocket服务器失败: %v", err)
	}
	s.manager.Close()
}
