package submission

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/YogeshJat8965/SwastikMotorsUjjain-sub001/internal/common/logger"
	"github.com/gin-gonic/gin"
)

// HTTPHandler 卖车申请的 HTTP 入口（公开 + 后台）。
type HTTPHandler struct {
	svc *Service
	log logger.Logger
}

func NewHTTPHandler(svc *Service, log logger.Logger) *HTTPHandler {
	return &HTTPHandler{svc: svc, log: log}
}

// RegisterPublicRoutes 挂载公开路由。
func (h *HTTPHandler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.POST("/submissions", h.create)
	rg.GET("/submissions/:reference", h.track)
}

// RegisterAdminRoutes 挂载后台路由（调用方负责加鉴权中间件）。
func (h *HTTPHandler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.GET("/submissions", h.adminList)
	rg.GET("/submissions/:id", h.adminDetail)
	rg.POST("/submissions/:id/status", h.adminUpdateStatus)
	rg.POST("/submissions/:id/promote", h.adminPromote)
}

type createRequest struct {
	OwnerName  string `json:"owner_name" binding:"required"`
	OwnerPhone string `json:"owner_phone" binding:"required"`
	OwnerEmail string `json:"owner_email"`

	Category      string   `json:"category" binding:"required"`
	Brand         string   `json:"brand" binding:"required"`
	Model         string   `json:"model" binding:"required"`
	Year          int      `json:"year"`
	Kilometers    int64    `json:"kilometers"`
	FuelType      string   `json:"fuel_type"`
	Transmission  string   `json:"transmission"`
	City          string   `json:"city"`
	ExpectedPrice float64  `json:"expected_price"`
	Notes         string   `json:"notes"`
	Images        []string `json:"images" binding:"required"`
}

func (h *HTTPHandler) create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sub, err := h.svc.Create(c.Request.Context(), CreateInput{
		OwnerName:     req.OwnerName,
		OwnerPhone:    req.OwnerPhone,
		OwnerEmail:    req.OwnerEmail,
		Category:      req.Category,
		Brand:         req.Brand,
		Model:         req.Model,
		Year:          req.Year,
		Kilometers:    req.Kilometers,
		FuelType:      req.FuelType,
		Transmission:  req.Transmission,
		City:          req.City,
		ExpectedPrice: req.ExpectedPrice,
		Notes:         req.Notes,
		Images:        req.Images,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"reference": sub.Reference, "status": sub.Status})
}

// track 客户按业务单号查询进度，只回状态类字段。
func (h *HTTPHandler) track(c *gin.Context) {
	sub, err := h.svc.GetByReference(c.Request.Context(), c.Param("reference"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"reference":  sub.Reference,
		"status":     sub.Status,
		"created_at": sub.CreatedAt,
		"updated_at": sub.UpdatedAt,
	})
}

func (h *HTTPHandler) adminList(c *gin.Context) {
	f := ListFilter{Status: Status(c.Query("status"))}

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

	items, total, err := h.svc.List(c.Request.Context(), f)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": total, "page": page})
}

func (h *HTTPHandler) adminDetail(c *gin.Context) {
	sub, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

type statusRequest struct {
	Status     string `json:"status" binding:"required"`
	AdminNotes string `json:"admin_notes"`
}

func (h *HTTPHandler) adminUpdateStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sub, err := h.svc.UpdateStatus(c.Request.Context(), c.Param("id"), Status(req.Status), req.AdminNotes)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

func (h *HTTPHandler) adminPromote(c *gin.Context) {
	sub, err := h.svc.Promote(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"submission": sub,
		"vehicle_id": sub.PromotedVehicleID,
	})
}

func (h *HTTPHandler) writeError(c *gin.Context, err error) {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Error(), "field": ve.Field})
	case errors.Is(err, ErrSubmissionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "submission not found"})
	case errors.Is(err, ErrNotPromotable):
		c.JSON(http.StatusConflict, gin.H{"error": "submission is not approved"})
	default:
		if h.log != nil {
			h.log.Errorf("submission store error: %v", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
