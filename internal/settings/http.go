package settings

import (
	"net/http"
	"strings"

	"github.com/YogeshJat8965/SwastikMotorsUjjain-sub001/internal/common/logger"
	"github.com/gin-gonic/gin"
)

// HTTPHandler 站点设置的 HTTP 入口。公开侧只读，后台可写。
type HTTPHandler struct {
	repo *Repo
	log  logger.Logger
}

func NewHTTPHandler(repo *Repo, log logger.Logger) *HTTPHandler {
	return &HTTPHandler{repo: repo, log: log}
}

// RegisterPublicRoutes 挂载公开路由。
func (h *HTTPHandler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/settings", h.get)
}

// RegisterAdminRoutes 挂载后台路由（调用方负责加鉴权中间件）。
func (h *HTTPHandler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.GET("/settings", h.get)
	rg.PUT("/settings", h.adminSave)
}

func (h *HTTPHandler) get(c *gin.Context) {
	s, err := h.repo.Get(c.Request.Context())
	if err != nil {
		if h.log != nil {
			h.log.Errorf("settings load error: %v", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *HTTPHandler) adminSave(c *gin.Context) {
	var s Settings
	if err := c.ShouldBindJSON(&s); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(s.SiteName) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "site_name is required", "field": "site_name"})
		return
	}
	if s.HomepageFeaturedLimit <= 0 || s.HomepageFeaturedLimit > 50 {
		s.HomepageFeaturedLimit = Defaults().HomepageFeaturedLimit
	}
	if err := h.repo.Save(c.Request.Context(), &s); err != nil {
		if h.log != nil {
			h.log.Errorf("settings save error: %v", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, &s)
}
