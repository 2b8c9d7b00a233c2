package api

import (
	"errors"
	"net/http"
	"strings"

	"huts4u-backend/internal/model"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type putSubscriptionRequest struct {
	Endpoint        string  `json:"endpoint" binding:"required,url"`
	P256DH          string  `json:"p256dh" binding:"required"`
	Auth            string  `json:"auth" binding:"required"`
	SubscribedRooms []int64 `json:"subscribed_rooms" binding:"max=100,dive,gt=0"`
}

// PutSubscription creates or replaces a subscription and the rooms it watches.
func (h *Handler) PutSubscription(c *gin.Context) {
	var req putSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	subscription := model.PushSubscription{
		Endpoint: req.Endpoint,
		P256DH:   req.P256DH,
		Auth:     req.Auth,
	}

	err := h.store.DB().WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "endpoint"}},
			DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth"}),
		}).Create(&subscription).Error; err != nil {
			return err
		}

		var rooms []*model.Room
		if len(req.SubscribedRooms) > 0 {
			if err := tx.Find(&rooms, req.SubscribedRooms).Error; err != nil {
				return err
			}
		}

		return tx.Model(&subscription).Association("Rooms").Replace(&rooms)
	})

	if err != nil {
		h.log.Errorw("failed to save subscription", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusCreated)
}

type deleteSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
}

// DeleteSubscription handles the deletion of a subscription.
func (h *Handler) DeleteSubscription(c *gin.Context) {
	var req deleteSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.store.DB().WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		sub := model.PushSubscription{Endpoint: req.Endpoint}
		if err := tx.Model(&sub).Association("Rooms").Clear(); err != nil {
			return err
		}
		return tx.Delete(&sub).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}

// rawQueryParam returns key from rawQuery without URL decoding; push
// endpoints are stored exactly as the browser sent them.
func rawQueryParam(rawQuery, key string) (string, bool) {
	for _, kv := range strings.Split(rawQuery, "&") {
		if strings.HasPrefix(kv, key+"=") {
			return kv[len(key)+1:], true
		}
	}
	return "", false
}

// GetSubscription returns the rooms watched by a subscription.
func (h *Handler) GetSubscription(c *gin.Context) {
	raw, ok := rawQueryParam(c.Request.URL.RawQuery, "endpoint")
	if !ok || raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "endpoint is required"})
		return
	}

	var subscription model.PushSubscription
	err := h.store.DB().WithContext(c.Request.Context()).
		Preload("Rooms", func(db *gorm.DB) *gorm.DB { return db.Order("rooms.id") }).
		First(&subscription, "endpoint = ?", raw).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "subscription not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	roomIDs := make([]int64, len(subscription.Rooms))
	for i, room := range subscription.Rooms {
		roomIDs[i] = room.ID
	}

	c.JSON(http.StatusOK, gin.H{"subscribed_rooms": roomIDs})
}
