package batch

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"lakehose/internal/logger"
	"lakehose/pkg/logging"
)

// Handler exposes the batch driver over HTTP for the delivery
// stream's transformation callback.
type Handler struct {
	driver *Driver
	logger logger.Logger
}

func NewHandler(driver *Driver, log logger.Logger) *Handler {
	return &Handler{
		driver: driver,
		logger: log,
	}
}

func (h *Handler) Register(router *gin.Engine) {
	router.POST("/v1/transform", h.Transform)
}

func (h *Handler) Transform(c *gin.Context) {
	var in InboundEvent
	if err := c.ShouldBindJSON(&in); err != nil {
		h.logger.Warnw("Rejected malformed batch envelope", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid batch envelope"})
		return
	}

	ctx := logging.WithBatchID(c.Request.Context(), uuid.NewString())
	out := h.driver.ProcessBatch(ctx, in)

	c.JSON(http.StatusOK, out)
}
