package api

import (
	"net/http"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"huts4u-backend/config"
	"huts4u-backend/internal/mw"
	"huts4u-backend/internal/store"
	"huts4u-backend/internal/ttlcache"
)

// NewRouter creates and configures a new Gin router. responses caches GET
// responses; nil disables caching.
func NewRouter(cfg *config.Config, s store.Store, responses *ttlcache.Cache, webpushOptions *webpush.Options, logger *zap.SugaredLogger) (*gin.Engine, error) {
	if err := RegisterValidators(); err != nil {
		return nil, err
	}

	r := gin.Default()
	r.Use(cors.New(corsConfig(cfg.Server.CORSOrigins)))

	handler := NewHandler(s, webpushOptions, cfg.Sync.Location, logger)
	handler.quotes.WithMaxNights(cfg.Server.MaxStayNights)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), cfg.Server.RateLimitBurst, cfg.Server.RequestIPHeader)
	var caching gin.HandlerFunc = func(c *gin.Context) { c.Next() }
	if responses != nil {
		caching = mw.Cache(responses)
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.GET("/hotels", caching, handler.ListHotels)
		api.GET("/hotels/:hotel_id", caching, handler.GetHotel)
		api.GET("/rooms/:room_id/availability", caching, handler.GetRoomAvailability)

		api.POST("/quotes", handler.CreateQuote)

		api.POST("/pricing/breakdown", handler.PriceBreakdown)
		api.POST("/pricing/breakdown/extras", handler.PriceBreakdownWithExtras)
		api.POST("/pricing/reverse", handler.ReversePrice)
		api.POST("/pricing/invoice", handler.ReverseInvoice)

		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r, nil
}

func corsConfig(origins []string) cors.Config {
	cc := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{mw.CacheStatusHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		cc.AllowAllOrigins = true
		cc.AllowCredentials = false
	} else {
		cc.AllowOrigins = origins
	}
	return cc
}
