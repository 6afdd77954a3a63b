package soldvehicle

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/YogeshJat8965/SwastikMotorsUjjain-sub001/internal/common/logger"
	"github.com/gin-gonic/gin"
)

// HTTPHandler 成交展示记录的 HTTP 入口。
type HTTPHandler struct {
	svc *Service
	log logger.Logger
}

func NewHTTPHandler(svc *Service, log logger.Logger) *HTTPHandler {
	return &HTTPHandler{svc: svc, log: log}
}

// RegisterPublicRoutes 挂载公开路由。
func (h *HTTPHandler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/sold-vehicles", h.list)
}

// RegisterAdminRoutes 挂载后台路由（调用方负责加鉴权中间件）。
func (h *HTTPHandler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.POST("/sold-vehicles", h.adminCreate)
	rg.PUT("/sold-vehicles/:id", h.adminUpdate)
	rg.DELETE("/sold-vehicles/:id", h.adminDelete)
}

func (h *HTTPHandler) list(c *gin.Context) {
	featuredOnly := c.Query("featured") == "true"
	limit := 0
	if v, err := strconv.Atoi(c.Query("limit")); err == nil {
		limit = v
	}
	items, err := h.svc.List(c.Request.Context(), featuredOnly, limit)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

type upsertRequest struct {
	Name         string `json:"name" binding:"required"`
	VehicleType  string `json:"vehicle_type" binding:"required"`
	ImageURL     string `json:"image_url" binding:"required"`
	Testimonial  string `json:"testimonial"`
	CustomerName string `json:"customer_name"`
	Featured     bool   `json:"featured"`
	SoldAt       string `json:"sold_at"` // YYYY-MM-DD，缺省为当天
}

func (r *upsertRequest) toInput(c *gin.Context) (CreateInput, bool) {
	in := CreateInput{
		Name:         r.Name,
		VehicleType:  r.VehicleType,
		ImageURL:     r.ImageURL,
		Testimonial:  r.Testimonial,
		CustomerName: r.CustomerName,
		Featured:     r.Featured,
	}
	if r.SoldAt != "" {
		t, err := time.Parse("2006-01-02", r.SoldAt)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "sold_at must be YYYY-MM-DD", "field": "sold_at"})
			return in, false
		}
		in.SoldAt = t
	}
	return in, true
}

func (h *HTTPHandler) adminCreate(c *gin.Context) {
	var req upsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	in, ok := req.toInput(c)
	if !ok {
		return
	}
	v, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, v)
}

func (h *HTTPHandler) adminUpdate(c *gin.Context) {
	var req upsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	in, ok := req.toInput(c)
	if !ok {
		return
	}
	v, err := h.svc.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *HTTPHandler) adminDelete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (h *HTTPHandler) writeError(c *gin.Context, err error) {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Error(), "field": ve.Field})
	case errors.Is(err, ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "sold vehicle record not found"})
	default:
		if h.log != nil {
			h.log.Errorf("sold vehicle store error: %v", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
