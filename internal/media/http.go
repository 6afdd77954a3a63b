package media

import (
	"errors"
	"net/http"

	"github.com/YogeshJat8965/SwastikMotorsUjjain-sub001/internal/common/logger"
	"github.com/YogeshJat8965/SwastikMotorsUjjain-sub001/internal/common/middleware"
	"github.com/gin-gonic/gin"
)

// HTTPHandler 图片上传的后台入口。
type HTTPHandler struct {
	client *Client
	log    logger.Logger
}

func NewHTTPHandler(client *Client, log logger.Logger) *HTTPHandler {
	return &HTTPHandler{client: client, log: log}
}

// RegisterAdminRoutes 挂载后台路由（调用方负责加鉴权中间件）。
func (h *HTTPHandler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.POST("/media", h.upload)
}

func (h *HTTPHandler) upload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file field is required", "field": "file"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read uploaded file"})
		return
	}
	defer f.Close()

	url, err := h.client.Upload(c.Request.Context(), fh.Filename, f)
	if err != nil {
		switch {
		case errors.Is(err, middleware.ErrCircuitOpen):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "media host temporarily unavailable"})
		case errors.Is(err, ErrUploadRejected):
			c.JSON(http.StatusBadGateway, gin.H{"error": "media host rejected upload"})
		default:
			if h.log != nil {
				h.log.Errorf("media upload error: %v", err)
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"url": url})
}
