package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gift-collectibles-backend/internal/common/middleware"
	"gift-collectibles-backend/internal/features/gift/models"
	"gift-collectibles-backend/internal/features/gift/service"
)

type GiftHandler struct {
	service service.GiftService
}

func NewGiftHandler(svc service.GiftService) *GiftHandler {
	return &GiftHandler{service: svc}
}

func (h *GiftHandler) RegisterRoutes(router *gin.RouterGroup) {
	gifts := router.Group("/gifts")
	{
		gifts.POST("", h.create)
		gifts.GET("/me", h.listMine)
		gifts.GET("/:id", h.getByID)
		gifts.GET("/:id/collectible", h.getCollectible)
		gifts.POST("/:id/upgrade", h.upgrade)
	}
}

type giftCreateRequest struct {
	GiftType string `json:"gift_type" binding:"required"`
}

func (h *GiftHandler) create(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var input giftCreateRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	gift, err := h.service.Create(c.Request.Context(), userID, input.GiftType)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gift)
}

func (h *GiftHandler) listMine(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	gifts, err := h.service.ListByOwner(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gifts)
}

func (h *GiftHandler) getByID(c *gin.Context) {
	gift, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gift)
}

func (h *GiftHandler) getCollectible(c *gin.Context) {
	collectible, err := h.service.GetCollectible(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, collectible)
}

func (h *GiftHandler) upgrade(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	giftID := c.Param("id")

	gift, err := h.service.GetByID(c.Request.Context(), giftID)
	if err != nil {
		c.Error(err)
		return
	}
	if gift.OwnerID != userID {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "You do not own this gift"})
		return
	}

	var overrides *models.UpgradeOverrides
	if c.Request.ContentLength > 0 {
		overrides = &models.UpgradeOverrides{}
		if err := c.ShouldBindJSON(overrides); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	collectible, err := h.service.Upgrade(c.Request.Context(), giftID, overrides)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, collectible)
}
