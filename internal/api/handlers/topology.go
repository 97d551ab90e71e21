package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/langchou/parkmate/internal/models"
	"github.com/langchou/parkmate/internal/service"
)

// CreateBuildingRequest 创建停车楼请求
type CreateBuildingRequest struct {
	Name string `json:"name" binding:"required"`
}

// CreateFloorRequest 创建楼层请求
type CreateFloorRequest struct {
	FloorNum int `json:"floor_num"`
}

// CreateSpotRequest 创建车位请求
type CreateSpotRequest struct {
	VehicleType string `json:"vehicle_type" binding:"required"`
	EVSupported bool   `json:"ev_supported"`
}

// CreateGateRequest 登记出入口请求
type CreateGateRequest struct {
	Kind   string `json:"kind" binding:"required"` // entrance / exit
	Number int    `json:"number" binding:"required"`
	Name   string `json:"name" binding:"required"`
}

// ListBuildings 获取拓扑快照
// GET /api/buildings
func (h *Handler) ListBuildings(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": h.lot.Buildings()})
}

// CreateBuilding 注册停车楼
// POST /api/buildings
func (h *Handler) CreateBuilding(c *gin.Context) {
	var req CreateBuildingRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	building := models.NewBuilding(req.Name)
	h.lot.AddBuilding(building)

	c.JSON(http.StatusCreated, gin.H{"data": building})
}

// CreateFloor 向停车楼追加楼层
// POST /api/buildings/:id/floors
func (h *Handler) CreateFloor(c *gin.Context) {
	var req CreateFloorRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	floor := models.NewFloor(req.FloorNum)
	if err := h.lot.AddFloor(c.Param("id"), floor); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Building not found"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": floor})
}

// CreateSpot 向楼层追加车位
// POST /api/floors/:id/spots
func (h *Handler) CreateSpot(c *gin.Context) {
	var req CreateSpotRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	vehicleType, err := models.ParseVehicleType(req.VehicleType)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	spot := models.NewSpot(vehicleType, req.EVSupported)
	if err := h.lot.AddSpot(c.Param("id"), spot); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Floor not found"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": spot})
}

// GetAvailability 全场可用车位
// GET /api/availability?vehicle_type=CAR
func (h *Handler) GetAvailability(c *gin.Context) {
	vehicleType, err := models.ParseVehicleType(c.Query("vehicle_type"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	spots := h.lot.AvailableSpots(vehicleType)
	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"vehicle_type": vehicleType,
			"count":        len(spots),
			"spots":        spots,
		},
	})
}

// GetBuildingAvailability 指定停车楼的可用车位
// GET /api/buildings/:id/availability?vehicle_type=CAR
func (h *Handler) GetBuildingAvailability(c *gin.Context) {
	vehicleType, err := models.ParseVehicleType(c.Query("vehicle_type"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	spots, err := h.lot.BuildingAvailableSpots(c.Param("id"), vehicleType)
	if err != nil {
		if errors.Is(err, service.ErrBuildingNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Building not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query availability"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"vehicle_type": vehicleType,
			"count":        len(spots),
			"spots":        spots,
		},
	})
}

// ListGates 获取出入口列表
// GET /api/gates
func (h *Handler) ListGates(c *gin.Context) {
	entrances, exits := h.lot.Gates()
	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"entrances": entrances,
			"exits":     exits,
		},
	})
}

// CreateGate 登记出入口
// POST /api/gates
func (h *Handler) CreateGate(c *gin.Context) {
	var req CreateGateRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	gate := models.Gate{Number: req.Number, Name: req.Name}
	switch req.Kind {
	case "entrance":
		h.lot.AddEntrance(gate)
	case "exit":
		h.lot.AddExit(gate)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Gate kind must be entrance or exit"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": gate})
}
