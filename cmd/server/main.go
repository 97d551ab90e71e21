package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/langchou/parkmate/internal/allocator"
	"github.com/langchou/parkmate/internal/api/handlers"
	"github.com/langchou/parkmate/internal/clock"
	"github.com/langchou/parkmate/internal/config"
	"github.com/langchou/parkmate/internal/fee"
	"github.com/langchou/parkmate/internal/models"
	"github.com/langchou/parkmate/internal/service"
	"github.com/langchou/parkmate/pkg/ws"
)

func main() {
	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化日志
	logger := initLogger(cfg.Debug)
	defer logger.Sync()

	logger.Info("Starting Parkmate", zap.String("port", cfg.ServerPort))

	// 创建车场协调器
	feePolicy := fee.NewPolicy(cfg.WeekdayRate, cfg.WeekendRate, cfg.SpecialDates)
	lot := service.NewParkingLot(logger, clock.NewSystem(), newStrategy(cfg.Strategy), feePolicy)

	// 加载车场拓扑（如果存在）
	if err := loadLayout(cfg.LayoutFile, lot); err != nil {
		logger.Warn("No layout file loaded, starting with an empty lot", zap.Error(err))
	}

	// 创建 WebSocket Hub
	wsHub := ws.NewHub(logger)
	wsHub.SetInitDataProvider(func() *ws.InitData {
		return &ws.InitData{
			Buildings: lot.Buildings(),
			Tickets:   lot.ActiveTickets(),
		}
	})
	go wsHub.Run()

	// 订阅车场事件并广播到 WebSocket
	go func() {
		eventCh := lot.Subscribe()
		for event := range eventCh {
			wsHub.BroadcastLotEvent(event)
		}
	}()

	// 创建 HTTP 处理器
	handler := handlers.NewHandler(logger, lot, wsHub)

	// 设置 Gin 模式
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	// 创建路由
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	// 注册路由
	handler.RegisterRoutes(router)

	// 启动 HTTP 服务器
	server := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	logger.Info("Server started", zap.String("addr", server.Addr))

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// 优雅关闭
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

// initLogger 初始化日志
func initLogger(debug bool) *zap.Logger {
	var config zap.Config
	if debug {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		config = zap.NewProductionConfig()
	}

	logger, _ := config.Build()
	return logger
}

// newStrategy 按配置名称选择分配策略，未知名称退回首次适配
func newStrategy(name string) allocator.Strategy {
	switch name {
	case "nearest_floor":
		return allocator.NearestFloorFirst{}
	case "ev_preferring":
		return allocator.EVPreferring{}
	default:
		return allocator.FirstFit{}
	}
}

// corsMiddleware CORS 中间件
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// layoutFile 车场拓扑文件结构
type layoutFile struct {
	Buildings []struct {
		Name   string `json:"name"`
		Floors []struct {
			FloorNum int `json:"floor_num"`
			Spots    []struct {
				VehicleType string `json:"vehicle_type"`
				EVSupported bool   `json:"ev_supported"`
				Count       int    `json:"count"`
			} `json:"spots"`
		} `json:"floors"`
	} `json:"buildings"`
	Entrances []models.Gate `json:"entrances"`
	Exits     []models.Gate `json:"exits"`
}

// loadLayout 从 JSON 文件加载车场拓扑
func loadLayout(filename string, lot *service.ParkingLot) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return err
	}

	var layout layoutFile
	if err := json.Unmarshal(data, &layout); err != nil {
		return fmt.Errorf("parse layout file: %w", err)
	}

	for _, b := range layout.Buildings {
		building := models.NewBuilding(b.Name)
		for _, f := range b.Floors {
			floor := models.NewFloor(f.FloorNum)
			for _, sp := range f.Spots {
				vehicleType, err := models.ParseVehicleType(sp.VehicleType)
				if err != nil {
					return err
				}
				count := sp.Count
				if count < 1 {
					count = 1
				}
				for i := 0; i < count; i++ {
					floor.AddSpot(models.NewSpot(vehicleType, sp.EVSupported))
				}
			}
			building.AddFloor(floor)
		}
		lot.AddBuilding(building)
	}

	for _, gate := range layout.Entrances {
		lot.AddEntrance(gate)
	}
	for _, gate := range layout.Exits {
		lot.AddExit(gate)
	}

	return nil
}
