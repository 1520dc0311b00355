package httpserver

import (
	"errors"
	"net/http"

	"detailing-booking/internal/domain"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	msgInvalidBody = "Invalid request body"
	msgInternal    = "Something went wrong. Please try again."
)

type handlers struct {
	logger    *zap.Logger
	bookings  bookingService
	customers customerService
}

func ok(c *gin.Context, status int, body gin.H) {
	body["success"] = true
	c.JSON(status, body)
}

func fail(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"success": false, "error": msg})
}

// writeError maps service errors onto the {success:false} envelope.
func (h *handlers) writeError(c *gin.Context, op string, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		fail(c, http.StatusBadRequest, verr.Message)
	case errors.Is(err, domain.ErrNotFound):
		fail(c, http.StatusNotFound, "Not found")
	case errors.Is(err, domain.ErrAlreadyExists):
		fail(c, http.StatusConflict, "Already exists")
	default:
		h.logger.Error(op,
			zap.String("request_id", c.GetString(requestIDHeader)),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		fail(c, http.StatusInternalServerError, msgInternal)
	}
}
