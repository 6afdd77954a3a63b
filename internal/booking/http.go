package booking

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/YogeshJat8965/SwastikMotorsUjjain-sub001/internal/common/logger"
	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

// HTTPHandler 预订的 HTTP 入口（公开 + 后台）。
type HTTPHandler struct {
	svc *Service
	log logger.Logger
}

func NewHTTPHandler(svc *Service, log logger.Logger) *HTTPHandler {
	return &HTTPHandler{svc: svc, log: log}
}

// RegisterPublicRoutes 挂载公开路由。
func (h *HTTPHandler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.POST("/bookings", h.create)
	rg.GET("/vehicles/:id/availability", h.availability)
}

// RegisterAdminRoutes 挂载后台路由（调用方负责加鉴权中间件）。
// 后台创建与公开创建走同一条服务端路径：天数/总价一律重算。
func (h *HTTPHandler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.GET("/bookings", h.adminList)
	rg.GET("/bookings/:id", h.adminDetail)
	rg.POST("/bookings", h.create)
	rg.POST("/bookings/:id/status", h.adminUpdateStatus)
}

// createRequest 创建预订的请求体。total_days / total_price 字段即使传了也会被忽略。
type createRequest struct {
	VehicleID     string `json:"vehicle_id" binding:"required"`
	CustomerName  string `json:"customer_name" binding:"required"`
	CustomerPhone string `json:"customer_phone"`
	CustomerEmail string `json:"customer_email"`
	StartDate     string `json:"start_date" binding:"required"`
	EndDate       string `json:"end_date" binding:"required"`
	Notes         string `json:"notes"`
}

func (h *HTTPHandler) create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_date must be YYYY-MM-DD", "field": "start_date"})
		return
	}
	end, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end_date must be YYYY-MM-DD", "field": "end_date"})
		return
	}

	b, err := h.svc.Create(c.Request.Context(), CreateInput{
		VehicleID:     req.VehicleID,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		CustomerEmail: req.CustomerEmail,
		StartDate:     start,
		EndDate:       end,
		Notes:         req.Notes,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

func (h *HTTPHandler) availability(c *gin.Context) {
	start, err := time.Parse(dateLayout, c.Query("start_date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_date must be YYYY-MM-DD", "field": "start_date"})
		return
	}
	end, err := time.Parse(dateLayout, c.Query("end_date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end_date must be YYYY-MM-DD", "field": "end_date"})
		return
	}

	conflicts, err := h.svc.CheckAvailability(c.Request.Context(), c.Param("id"), start, end, c.Query("exclude_booking_id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"available": len(conflicts) == 0,
		"conflicts": conflicts,
	})
}

func (h *HTTPHandler) adminList(c *gin.Context) {
	f := ListFilter{
		VehicleID: c.Query("vehicle_id"),
		Status:    Status(c.Query("status")),
	}
	if f.Status != "" && !ValidStatus(f.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status", "field": "status"})
		return
	}

	page := 1
	limit := 20
	if v, err := strconv.Atoi(c.Query("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 && v <= 200 {
		limit = v
	}
	f.Offset = (page - 1) * limit
	f.Limit = limit

	bookings, total, err := h.svc.List(c.Request.Context(), f)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": bookings, "total": total, "page": page})
}

func (h *HTTPHandler) adminDetail(c *gin.Context) {
	b, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *HTTPHandler) adminUpdateStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	b, err := h.svc.UpdateStatus(c.Request.Context(), c.Param("id"), Status(req.Status), time.Now())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// writeError 错误到 HTTP 状态码的映射。冲突回 409 并附冲突区间；
// 存储错误只回泛化信息，不外露内部细节。
func (h *HTTPHandler) writeError(c *gin.Context, err error) {
	var ve *ValidationError
	var ce *ConflictError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Error(), "field": ve.Field})
	case errors.As(err, &ce):
		c.JSON(http.StatusConflict, gin.H{"error": ce.Error(), "conflicts": ce.Conflicts})
	case errors.Is(err, ErrBookingNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
	case errors.Is(err, ErrVehicleNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "vehicle not found"})
	case errors.Is(err, ErrVehicleNotRentable):
		c.JSON(http.StatusBadRequest, gin.H{"error": "vehicle not available for rent"})
	default:
		if h.log != nil {
			h.log.Errorf("booking store error: %v", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
