package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/soteriahealth/soteria/services"
	"github.com/soteriahealth/soteria/utils"
)

// MilestoneController handles evaluation, the summary and celebrations.
type MilestoneController struct {
	engine *services.Engine
}

// NewMilestoneController creates a new MilestoneController instance.
func NewMilestoneController(engine *services.Engine) *MilestoneController {
	return &MilestoneController{engine: engine}
}

// Evaluate runs the evaluator and returns the ids awarded by this call.
func (m *MilestoneController) Evaluate(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	awarded, err := m.engine.EvaluateMilestones(ctx.Request.Context(), userID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"new_milestones": awarded})
}

// Summary lists every milestone with the user's progress towards it.
func (m *MilestoneController) Summary(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	list, err := m.engine.GetMilestoneSummary(ctx.Request.Context(), userID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	achieved := 0
	for _, s := range list {
		if s.Achieved {
			achieved++
		}
	}
	utils.Success(ctx, gin.H{
		"milestones": list,
		"achieved":   achieved,
		"total":      len(list),
	})
}

// Celebrations lists earned milestones the client has not displayed yet.
func (m *MilestoneController) Celebrations(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	list, err := m.engine.PendingCelebrations(ctx.Request.Context(), userID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, list)
}

// MarkCelebrated acknowledges that the award was shown.
func (m *MilestoneController) MarkCelebrated(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	id := ctx.Param("id")
	if err := m.engine.MarkCelebrated(ctx.Request.Context(), userID, id); err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"milestone_id": id, "shown_celebration": true})
}
