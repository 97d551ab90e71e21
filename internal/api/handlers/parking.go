package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/langchou/parkmate/internal/models"
	"github.com/langchou/parkmate/internal/payment"
)

// ParkRequest 入场请求
type ParkRequest struct {
	LicensePlate string `json:"license_plate" binding:"required"`
	VehicleType  string `json:"vehicle_type" binding:"required"`
}

// UnparkRequest 离场请求
type UnparkRequest struct {
	TicketID      int64  `json:"ticket_id" binding:"required"`
	PaymentMethod string `json:"payment_method" binding:"required"`
}

// Park 车辆入场
// POST /api/park
func (h *Handler) Park(c *gin.Context) {
	var req ParkRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	vehicle, err := models.NewVehicle(req.LicensePlate, req.VehicleType)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ticket, err := h.lot.Park(vehicle)
	if err != nil {
		if errors.Is(err, models.ErrLotFull) {
			// 车场已满是预期结果，调用方分支处理
			c.JSON(http.StatusConflict, gin.H{"error": "No spot available"})
			return
		}
		h.logger.Error("Failed to park vehicle", zap.Error(err), zap.String("plate", req.LicensePlate))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to park vehicle"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": ticket})
}

// Unpark 车辆离场
// POST /api/unpark
func (h *Handler) Unpark(c *gin.Context) {
	var req UnparkRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	method, err := payment.New(req.PaymentMethod, h.logger)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	amount, err := h.lot.Unpark(req.TicketID, method)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrTicketNotFound):
			// 未知票号与已关闭票号对调用方不可区分
			c.JSON(http.StatusNotFound, gin.H{"error": "Ticket not found"})
		case errors.Is(err, models.ErrPaymentFailed):
			c.JSON(http.StatusPaymentRequired, gin.H{
				"error": "Payment failed",
				"fee":   amount,
			})
		default:
			h.logger.Error("Failed to unpark vehicle", zap.Error(err), zap.Int64("ticket_id", req.TicketID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unpark vehicle"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"ticket_id": req.TicketID,
			"fee":       amount,
		},
	})
}

// ListTickets 获取在场票据列表
// GET /api/tickets
func (h *Handler) ListTickets(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": h.lot.ActiveTickets()})
}

// GetTicket 获取在场票据详情
// GET /api/tickets/:id
func (h *Handler) GetTicket(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ticket ID"})
		return
	}

	ticket, ok := h.lot.Ticket(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Ticket not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": ticket})
}
