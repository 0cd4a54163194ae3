package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gift-collectibles-backend/internal/common/middleware"
	"gift-collectibles-backend/internal/features/giveaway/models"
	"gift-collectibles-backend/internal/features/giveaway/service"
)

type GiveawayHandler struct {
	service service.GiveawayService
}

func NewGiveawayHandler(svc service.GiveawayService) *GiveawayHandler {
	return &GiveawayHandler{service: svc}
}

func (h *GiveawayHandler) RegisterRoutes(router *gin.RouterGroup) {
	giveaways := router.Group("/giveaways")
	{
		giveaways.POST("", h.create)
		giveaways.GET("/me", h.listMine)
		giveaways.GET("/:id", h.getByID)
		giveaways.PUT("/:id", h.configure)
		giveaways.POST("/:id/publish", h.publish)
		giveaways.DELETE("/:id", h.cancel)
		giveaways.POST("/:id/join", h.join)
		giveaways.GET("/:id/winners", h.getWinners)
	}
}

func (h *GiveawayHandler) create(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var input models.GiveawayCreate
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	giveaway, err := h.service.Create(c.Request.Context(), userID, &input)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, giveaway)
}

func (h *GiveawayHandler) listMine(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	giveaways, err := h.service.GetByCreator(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, giveaways)
}

func (h *GiveawayHandler) getByID(c *gin.Context) {
	giveaway, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, giveaway)
}

func (h *GiveawayHandler) configure(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var update models.GiveawayUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.Configure(c.Request.Context(), userID, c.Param("id"), &update); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *GiveawayHandler) publish(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.service.Publish(c.Request.Context(), userID, c.Param("id")); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *GiveawayHandler) cancel(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.service.Cancel(c.Request.Context(), userID, c.Param("id")); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *GiveawayHandler) join(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.service.Join(c.Request.Context(), userID, c.Param("id")); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *GiveawayHandler) getWinners(c *gin.Context) {
	records, err := h.service.GetWinners(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, records)
}
