package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/langchou/parkmate/internal/service"
	"github.com/langchou/parkmate/pkg/ws"
)

// Handler HTTP 处理器
type Handler struct {
	logger   *zap.Logger
	lot      *service.ParkingLot
	wsHub    *ws.Hub
	upgrader websocket.Upgrader
}

// NewHandler 创建处理器
func NewHandler(logger *zap.Logger, lot *service.ParkingLot, wsHub *ws.Hub) *Handler {
	return &Handler{
		logger: logger,
		lot:    lot,
		wsHub:  wsHub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // 开发环境允许所有来源
			},
		},
	}
}

// RegisterRoutes 注册路由
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	// API 路由
	api := r.Group("/api")
	{
		// 出入场
		api.POST("/park", h.Park)
		api.POST("/unpark", h.Unpark)

		// 在场票据
		api.GET("/tickets", h.ListTickets)
		api.GET("/tickets/:id", h.GetTicket)

		// 拓扑与可用性
		api.GET("/buildings", h.ListBuildings)
		api.POST("/buildings", h.CreateBuilding)
		api.GET("/buildings/:id/availability", h.GetBuildingAvailability)
		api.POST("/buildings/:id/floors", h.CreateFloor)
		api.POST("/floors/:id/spots", h.CreateSpot)
		api.GET("/availability", h.GetAvailability)

		// 出入口
		api.GET("/gates", h.ListGates)
		api.POST("/gates", h.CreateGate)
	}

	// WebSocket
	r.GET("/ws", h.HandleWebSocket)

	// 健康检查与指标
	r.GET("/health", h.HealthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// HandleWebSocket WebSocket 处理
func (h *Handler) HandleWebSocket(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade websocket", zap.Error(err))
		return
	}

	client := ws.NewClient(h.wsHub, conn)
	client.Register()

	// 启动读写协程
	go client.ReadPump()
	go client.WritePump()
}

// HealthCheck 健康检查
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "ok",
		"active_tickets": h.lot.ActiveTicketCount(),
		"ws_clients":     h.wsHub.ClientCount(),
	})
}
