package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/devhours/backend/services/common/errors"
	"github.com/devhours/backend/services/subscription-service/middleware"
	"github.com/devhours/backend/services/subscription-service/services"
)

type SubscriptionController struct {
	Service *services.SubscriptionService
	Logger  *zap.Logger
}

func (sc *SubscriptionController) List(c *gin.Context) {
	subs, err := sc.Service.GetUserSubscriptions(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		sc.Logger.Error("Failed to list subscriptions", zap.Error(err))
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"subscriptions": subs})
}

func (sc *SubscriptionController) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apperrors.HandleError(c, apperrors.ErrInvalidInput)
		return
	}

	sub, err := sc.Service.GetUserSubscriptionByID(c.Request.Context(), middleware.GetUserID(c), id)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

func (sc *SubscriptionController) Create(c *gin.Context) {
	var in services.CreateSubscriptionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := sc.Service.Create(c.Request.Context(), middleware.GetUserID(c), in)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (sc *SubscriptionController) Upgrade(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apperrors.HandleError(c, apperrors.ErrInvalidInput)
		return
	}

	var in services.UpgradeSubscriptionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := sc.Service.Upgrade(c.Request.Context(), middleware.GetUserID(c), id, in)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (sc *SubscriptionController) Downgrade(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apperrors.HandleError(c, apperrors.ErrInvalidInput)
		return
	}

	var in services.DowngradeSubscriptionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := sc.Service.Downgrade(c.Request.Context(), middleware.GetUserID(c), id, in)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (sc *SubscriptionController) Cancel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apperrors.HandleError(c, apperrors.ErrInvalidInput)
		return
	}

	// The body is optional: an empty request cancels immediately.
	var in services.CancelSubscriptionInput
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	result, err := sc.Service.Cancel(c.Request.Context(), middleware.GetUserID(c), id, in)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (sc *SubscriptionController) Overview(c *gin.Context) {
	overview, err := sc.Service.Overview(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}
