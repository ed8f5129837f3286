package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/devhours/backend/services/common/errors"
	"github.com/devhours/backend/services/subscription-service/repository"
)

type PlanController struct {
	Repo   repository.PlanRepository
	Logger *zap.Logger
}

func (pc *PlanController) List(c *gin.Context) {
	plans, err := pc.Repo.FindAll(c.Request.Context())
	if err != nil {
		pc.Logger.Error("Failed to list plans", zap.Error(err))
		apperrors.HandleError(c, apperrors.ErrInternalServer)
		return
	}
	c.JSON(http.StatusOK, gin.H{"plans": plans})
}

func (pc *PlanController) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apperrors.HandleError(c, apperrors.ErrInvalidInput)
		return
	}

	plan, err := pc.Repo.FindByID(c.Request.Context(), id)
	if err != nil {
		apperrors.HandleError(c, apperrors.ErrPlanNotFound)
		return
	}
	c.JSON(http.StatusOK, plan)
}
