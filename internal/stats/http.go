package stats

import (
	"net/http"

	"github.com/YogeshJat8965/SwastikMotorsUjjain-sub001/internal/common/logger"
	"github.com/gin-gonic/gin"
)

// HTTPHandler 仪表盘统计的后台入口。
type HTTPHandler struct {
	svc *Service
	log logger.Logger
}

func NewHTTPHandler(svc *Service, log logger.Logger) *HTTPHandler {
	return &HTTPHandler{svc: svc, log: log}
}

// RegisterAdminRoutes 挂载后台路由（调用方负责加鉴权中间件）。
func (h *HTTPHandler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.GET("/stats/overview", h.overview)
}

func (h *HTTPHandler) overview(c *gin.Context) {
	o, err := h.svc.Overview(c.Request.Context())
	if err != nil {
		if h.log != nil {
			h.log.Errorf("stats aggregation error: %v", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, o)
}
