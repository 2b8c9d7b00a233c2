package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"huts4u-backend/internal/quote"
	"huts4u-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store   store.Store
	webpush *webpush.Options
	quotes  *quote.Service
	loc     *time.Location
	log     *zap.SugaredLogger
	now     func() time.Time
}

// NewHandler creates a new API handler. Calendar dates in requests are read
// in loc; nil means UTC.
func NewHandler(s store.Store, webpushOptions *webpush.Options, loc *time.Location, logger *zap.SugaredLogger) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Handler{
		store:   s,
		webpush: webpushOptions,
		quotes:  quote.NewService(s, nil),
		loc:     loc,
		log:     logger.Named("api"),
		now:     time.Now,
	}
}

// today is midnight of the current day in the handler's time zone.
func (h *Handler) today() time.Time {
	y, m, d := h.now().In(h.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, h.loc)
}

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

// fail maps service errors onto HTTP statuses.
func (h *Handler) fail(c *gin.Context, err error) {
	var unavailable *quote.UnavailableError
	switch {
	case errors.As(err, &unavailable):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error(), "status": unavailable.Status})
	case errors.Is(err, store.ErrNotFound):
		abort(c, http.StatusNotFound, err.Error())
	case errors.Is(err, quote.ErrInvalidRequest), errors.Is(err, quote.ErrSlotNotOffered):
		abort(c, http.StatusBadRequest, err.Error())
	default:
		h.log.Errorw("request failed", "path", c.FullPath(), "error", err)
		abort(c, http.StatusInternalServerError, "internal error")
	}
}
