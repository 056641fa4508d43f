package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/soteriahealth/soteria/services"
	"github.com/soteriahealth/soteria/utils"
)

// AdminController holds operator-only endpoints.
type AdminController struct {
	engine *services.Engine
}

// NewAdminController creates a new AdminController instance.
func NewAdminController(engine *services.Engine) *AdminController {
	return &AdminController{engine: engine}
}

// ResetUser hard-resets one user and reports how many rows were removed.
func (a *AdminController) ResetUser(ctx *gin.Context) {
	userID, err := uuid.Parse(ctx.Param("id"))
	if err != nil || userID == uuid.Nil {
		utils.Respond(ctx, http.StatusBadRequest, codeValidation, "invalid user id", gin.H{"field": "id"})
		return
	}

	sum, err := a.engine.HardReset(ctx.Request.Context(), userID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{
		"user_id": userID,
		"deleted": sum,
		"total":   sum.Total(),
	})
}
