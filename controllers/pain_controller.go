package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/soteriahealth/soteria/services"
	"github.com/soteriahealth/soteria/utils"
)

// PainController records pain check-ins.
type PainController struct {
	engine *services.Engine
}

// NewPainController creates a new PainController instance.
func NewPainController(engine *services.Engine) *PainController {
	return &PainController{engine: engine}
}

type painRequest struct {
	PainLevel  *int       `json:"pain_level" binding:"required"`
	BodyAreas  []string   `json:"body_areas"`
	Notes      string     `json:"notes"`
	RecordedAt *time.Time `json:"recorded_at"`
}

// Create stores a check-in.
func (p *PainController) Create(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	var req painRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, codeBadRequest, "invalid request payload")
		return
	}

	in := services.PainInput{
		UserID:    userID,
		PainLevel: *req.PainLevel,
		BodyAreas: req.BodyAreas,
		Notes:     req.Notes,
	}
	if req.RecordedAt != nil {
		in.RecordedAt = *req.RecordedAt
	}
	res, err := p.engine.RecordPainCheckIn(ctx.Request.Context(), in)
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Respond(ctx, http.StatusCreated, 0, "success", res)
}
