package listing

import (
	"errors"
	"net/http"
	"time"

	"github.com/YogeshJat8965/SwastikMotorsUjjain-sub001/internal/common/logger"
	"github.com/gin-gonic/gin"
)

// HTTPHandler 车辆列表的 HTTP 入口（公开 + 后台）。
type HTTPHandler struct {
	svc *Service
	log logger.Logger
}

func NewHTTPHandler(svc *Service, log logger.Logger) *HTTPHandler {
	return &HTTPHandler{svc: svc, log: log}
}

// queryParams 列表查询的 query string 绑定。
type queryParams struct {
	Category         string   `form:"category"`
	Brand            string   `form:"brand"`
	FuelType         string   `form:"fuel_type"`
	Transmission     string   `form:"transmission"`
	City             string   `form:"city"`
	Search           string   `form:"search"`
	MinPrice         *float64 `form:"min_price"`
	MaxPrice         *float64 `form:"max_price"`
	Featured         *bool    `form:"featured"`
	Sort             string   `form:"sort"`
	Page             int      `form:"page"`
	Limit            int      `form:"limit"`
	AvailableForRent bool     `form:"available_for_rent"`
	IncludeAll       bool     `form:"include_all"`
}

func (p queryParams) toQuery() Query {
	return Query{
		Category:         Category(p.Category),
		Brand:            p.Brand,
		FuelType:         p.FuelType,
		Transmission:     p.Transmission,
		City:             p.City,
		Search:           p.Search,
		MinPrice:         p.MinPrice,
		MaxPrice:         p.MaxPrice,
		Featured:         p.Featured,
		Sort:             Sort(p.Sort),
		Page:             p.Page,
		Limit:            p.Limit,
		AvailableForRent: p.AvailableForRent,
		IncludeAll:       p.IncludeAll,
	}
}

// RegisterPublicRoutes 挂载公开路由。
func (h *HTTPHandler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/vehicles", h.listForSale)
	rg.GET("/vehicles/:id", h.detail)
	rg.POST("/vehicles/:id/contact", h.contact)
	rg.GET("/rentals", h.listRentals)
	rg.GET("/facets", h.facets)
}

// RegisterAdminRoutes 挂载后台路由（调用方负责加鉴权中间件）。
func (h *HTTPHandler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.GET("/vehicles", h.adminList)
	rg.POST("/vehicles", h.adminCreate)
	rg.PUT("/vehicles/:id", h.adminUpdate)
	rg.DELETE("/vehicles/:id", h.adminDelete)
	rg.POST("/vehicles/:id/sold", h.adminMarkSold)
}

func (h *HTTPHandler) listForSale(c *gin.Context) {
	var p queryParams
	if err := c.ShouldBindQuery(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := h.svc.BrowseSale(c.Request.Context(), p.toQuery())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *HTTPHandler) listRentals(c *gin.Context) {
	var p queryParams
	if err := c.ShouldBindQuery(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := h.svc.BrowseRentals(c.Request.Context(), p.toQuery())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// detail 公开详情，顺带浏览计数 +1（计数失败不影响详情返回）。
func (h *HTTPHandler) detail(c *gin.Context) {
	v, err := h.svc.GetPublic(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	if n, err := h.svc.RecordView(c.Request.Context(), v.ID); err == nil {
		v.Views = n
	} else if h.log != nil {
		h.log.Warnf("failed to bump views for vehicle %s: %v", v.ID, err)
	}
	c.JSON(http.StatusOK, v)
}

func (h *HTTPHandler) contact(c *gin.Context) {
	n, err := h.svc.RecordContact(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"contacts": n})
}

func (h *HTTPHandler) facets(c *gin.Context) {
	f, err := h.svc.Facets(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}

// adminVehicle 后台 DTO：在公开字段之外补充内部收购价。
type adminVehicle struct {
	Vehicle
	PurchasePrice float64 `json:"purchase_price"`
}

func toAdminVehicle(v Vehicle) adminVehicle {
	return adminVehicle{Vehicle: v, PurchasePrice: v.PurchasePrice}
}

func (h *HTTPHandler) adminList(c *gin.Context) {
	var p queryParams
	if err := c.ShouldBindQuery(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := h.svc.AdminSearch(c.Request.Context(), p.toQuery())
	if err != nil {
		h.writeError(c, err)
		return
	}
	items := make([]adminVehicle, 0, len(res.Items))
	for _, v := range res.Items {
		items = append(items, toAdminVehicle(v))
	}
	c.JSON(http.StatusOK, gin.H{
		"items":       items,
		"total":       res.Total,
		"page":        res.Page,
		"total_pages": res.TotalPages,
		"has_more":    res.HasMore,
	})
}

// vehicleRequest 后台创建/更新车辆的请求体。
type vehicleRequest struct {
	Category         string   `json:"category" binding:"required"`
	Brand            string   `json:"brand" binding:"required"`
	Model            string   `json:"model" binding:"required"`
	Title            string   `json:"title"`
	Year             int      `json:"year"`
	Color            string   `json:"color"`
	Kilometers       int64    `json:"kilometers"`
	FuelType         string   `json:"fuel_type"`
	Transmission     string   `json:"transmission"`
	City             string   `json:"city"`
	PurchasePrice    float64  `json:"purchase_price"`
	SellingPrice     float64  `json:"selling_price"`
	RentPricePerDay  float64  `json:"rent_price_per_day"`
	AvailableForRent bool     `json:"available_for_rent"`
	Status           string   `json:"status"`
	Featured         bool     `json:"featured"`
	Images           []string `json:"images"`
}

func (req vehicleRequest) toInput() CreateInput {
	return CreateInput{
		Category:         Category(req.Category),
		Brand:            req.Brand,
		Model:            req.Model,
		Title:            req.Title,
		Year:             req.Year,
		Color:            req.Color,
		Kilometers:       req.Kilometers,
		FuelType:         req.FuelType,
		Transmission:     req.Transmission,
		City:             req.City,
		PurchasePrice:    req.PurchasePrice,
		SellingPrice:     req.SellingPrice,
		RentPricePerDay:  req.RentPricePerDay,
		AvailableForRent: req.AvailableForRent,
		Status:           Status(req.Status),
		Featured:         req.Featured,
		Images:           req.Images,
	}
}

func (h *HTTPHandler) adminCreate(c *gin.Context) {
	var req vehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	v, err := h.svc.CreateVehicle(c.Request.Context(), req.toInput())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toAdminVehicle(*v))
}

func (h *HTTPHandler) adminUpdate(c *gin.Context) {
	var req vehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	v, err := h.svc.UpdateVehicle(c.Request.Context(), c.Param("id"), req.toInput())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAdminVehicle(*v))
}

func (h *HTTPHandler) adminDelete(c *gin.Context) {
	if err := h.svc.DeleteVehicle(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *HTTPHandler) adminMarkSold(c *gin.Context) {
	v, err := h.svc.MarkSold(c.Request.Context(), c.Param("id"), time.Now())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAdminVehicle(*v))
}

// writeError 错误到 HTTP 状态码的映射。存储错误只回泛化信息，不外露内部细节。
func (h *HTTPHandler) writeError(c *gin.Context, err error) {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Error(), "field": ve.Field})
	case errors.Is(err, ErrVehicleNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "vehicle not found"})
	default:
		if h.log != nil {
			h.log.Errorf("listing store error: %v", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
