package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/devhours/backend/services/common/errors"
	"github.com/devhours/backend/services/subscription-service/middleware"
	"github.com/devhours/backend/services/subscription-service/services"
)

type UserController struct {
	Service *services.UserService
	Logger  *zap.Logger
}

func (uc *UserController) Register(c *gin.Context) {
	var in services.RegisterInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := uc.Service.Register(c.Request.Context(), in)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (uc *UserController) Login(c *gin.Context) {
	var in services.LoginInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := uc.Service.Login(c.Request.Context(), in)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (uc *UserController) Profile(c *gin.Context) {
	user, err := uc.Service.Profile(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
