package admin

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/YogeshJat8965/SwastikMotorsUjjain-sub001/internal/common/logger"
	"github.com/YogeshJat8965/SwastikMotorsUjjain-sub001/internal/common/server"
	"github.com/gin-gonic/gin"
)

// HTTPHandler 后台账号与登录的 HTTP 入口。
type HTTPHandler struct {
	svc *Service
	log logger.Logger
}

func NewHTTPHandler(svc *Service, log logger.Logger) *HTTPHandler {
	return &HTTPHandler{svc: svc, log: log}
}

// RegisterPublicRoutes 挂载公开路由（登录本身不能要求已登录）。
func (h *HTTPHandler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.POST("/admin/login", h.login)
}

// RegisterAdminRoutes 挂载后台路由（调用方负责加鉴权中间件）。
func (h *HTTPHandler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.GET("/accounts", h.list)
	rg.POST("/accounts", h.create)
	rg.GET("/accounts/me", h.me)
	rg.POST("/accounts/:id/disabled", h.setDisabled)
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *HTTPHandler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := h.svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *HTTPHandler) me(c *gin.Context) {
	ai, ok := server.AuthFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth"})
		return
	}
	a, err := h.svc.Get(c.Request.Context(), ai.Subject)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *HTTPHandler) list(c *gin.Context) {
	page := 1
	limit := 20
	if v, err := strconv.Atoi(c.Query("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 && v <= 100 {
		limit = v
	}
	admins, total, err := h.svc.List(c.Request.Context(), (page-1)*limit, limit)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": admins, "total": total, "page": page})
}

type createAccountRequest struct {
	Username    string   `json:"username" binding:"required"`
	Password    string   `json:"password" binding:"required"`
	DisplayName string   `json:"display_name"`
	Email       string   `json:"email"`
	Roles       []string `json:"roles"`
}

func (h *HTTPHandler) create(c *gin.Context) {
	var req createAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	a, err := h.svc.Create(c.Request.Context(), CreateInput{
		Username:    req.Username,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		Email:       req.Email,
		Roles:       req.Roles,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

type disabledRequest struct {
	Disabled *bool `json:"disabled" binding:"required"`
}

func (h *HTTPHandler) setDisabled(c *gin.Context) {
	var req disabledRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	a, err := h.svc.SetDisabled(c.Request.Context(), c.Param("id"), *req.Disabled)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *HTTPHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	case errors.Is(err, ErrAccountDisabled):
		c.JSON(http.StatusForbidden, gin.H{"error": "account disabled"})
	case errors.Is(err, ErrUsernameTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "username already exists"})
	case errors.Is(err, ErrAdminNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "admin not found"})
	default:
		if h.log != nil {
			h.log.Errorf("admin store error: %v", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
