package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/soteriahealth/soteria/services"
	"github.com/soteriahealth/soteria/stats"
	"github.com/soteriahealth/soteria/utils"
)

// ProgressController exposes completions, daily progress, stats, the avatar
// and execution sessions.
type ProgressController struct {
	engine *services.Engine
}

// NewProgressController creates a new ProgressController instance.
func NewProgressController(engine *services.Engine) *ProgressController {
	return &ProgressController{engine: engine}
}

type completionRequest struct {
	RoutineID   string     `json:"routine_id" binding:"required"`
	Category    string     `json:"category" binding:"required"`
	CompletedAt *time.Time `json:"completed_at"`
}

// RecordCompletion stores a finished routine and returns the refreshed day,
// stats and newly earned milestones.
func (p *ProgressController) RecordCompletion(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	var req completionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, codeBadRequest, "invalid request payload")
		return
	}

	category, ok := parseCategory(ctx, req.Category)
	if !ok {
		return
	}
	in := services.CompletionInput{
		UserID:    userID,
		RoutineID: req.RoutineID,
		Category:  category,
	}
	if req.CompletedAt != nil {
		in.CompletedAt = *req.CompletedAt
	}

	res, err := p.engine.RecordCompletion(ctx.Request.Context(), in)
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Respond(ctx, http.StatusCreated, 0, "success", res)
}

// GetDailyProgress returns the three flags of one local day. The literal
// "today" resolves to the user's current day.
func (p *ProgressController) GetDailyProgress(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	date, ok := p.dateParam(ctx, userID)
	if !ok {
		return
	}

	row, err := p.engine.GetDailyProgress(ctx.Request.Context(), userID, date)
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, row)
}

// MarkCategoryComplete sets one flag of a day without recording a routine.
func (p *ProgressController) MarkCategoryComplete(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	date, ok := p.dateParam(ctx, userID)
	if !ok {
		return
	}
	category, ok := parseCategory(ctx, ctx.Param("category"))
	if !ok {
		return
	}

	row, err := p.engine.MarkCategoryComplete(ctx.Request.Context(), userID, date, category)
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, row)
}

// GetStats returns the user's aggregate statistics as of today.
func (p *ProgressController) GetStats(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	st, err := p.engine.GetUserStats(ctx.Request.Context(), userID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, st)
}

// GetAvatar returns the light state of each category for today.
func (p *ProgressController) GetAvatar(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	view, err := p.engine.GetAvatarStates(ctx.Request.Context(), userID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, view)
}

// StartSession flags a routine of the category as running.
func (p *ProgressController) StartSession(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	category, ok := parseCategory(ctx, ctx.Param("category"))
	if !ok {
		return
	}
	if err := p.engine.StartExecution(ctx.Request.Context(), userID, category); err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"category": category, "executing": true})
}

// StopSession clears the running flag of the category.
func (p *ProgressController) StopSession(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	category, ok := parseCategory(ctx, ctx.Param("category"))
	if !ok {
		return
	}
	if err := p.engine.StopExecution(ctx.Request.Context(), userID, category); err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"category": category, "executing": false})
}

func (p *ProgressController) dateParam(ctx *gin.Context, userID uuid.UUID) (stats.Date, bool) {
	raw := ctx.Param("date")
	if raw == "today" {
		today, err := p.engine.Today(ctx.Request.Context(), userID)
		if err != nil {
			respondError(ctx, err)
			return "", false
		}
		return today, true
	}
	date, err := stats.ParseDate(raw)
	if err != nil {
		utils.Respond(ctx, http.StatusBadRequest, codeValidation, "invalid date: expected YYYY-MM-DD", gin.H{"field": "date"})
		return "", false
	}
	return date, true
}
