package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/soteriahealth/soteria/middleware"
	"github.com/soteriahealth/soteria/services"
	"github.com/soteriahealth/soteria/stats"
	"github.com/soteriahealth/soteria/utils"
)

// Business codes shared by every controller.
const (
	codeUnauthorized = 40110
	codeBadRequest   = 40000
	codeValidation   = 40001
	codeNotFound     = 40400
	codeStorage      = 50000
)

func getUserID(ctx *gin.Context) (uuid.UUID, bool) {
	value, exists := ctx.Get(middleware.ContextUserIDKey)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := value.(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

// requireUserID writes the 401 response itself when the caller is anonymous.
func requireUserID(ctx *gin.Context) (uuid.UUID, bool) {
	id, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, codeUnauthorized, "unauthorized")
	}
	return id, ok
}

func parseCategory(ctx *gin.Context, raw string) (stats.Category, bool) {
	c, err := stats.ParseCategory(raw)
	if err != nil {
		utils.Respond(ctx, http.StatusBadRequest, codeValidation, err.Error(), gin.H{"field": "category"})
		return "", false
	}
	return c, true
}

// respondError maps engine errors onto the JSON envelope.
func respondError(ctx *gin.Context, err error) {
	var verr *services.ValidationError
	var serr *services.StorageError
	switch {
	case errors.As(err, &verr):
		utils.Respond(ctx, http.StatusBadRequest, codeValidation, verr.Error(), gin.H{"field": verr.Field})
	case errors.Is(err, services.ErrNotFound):
		utils.Error(ctx, http.StatusNotFound, codeNotFound, "not found")
	case errors.As(err, &serr):
		utils.Sugar.Errorw("storage failure", "op", serr.Op, "error", serr.Err)
		utils.Error(ctx, http.StatusInternalServerError, codeStorage, "storage unavailable, please retry")
	default:
		utils.Sugar.Errorw("unexpected failure", "path", ctx.FullPath(), "error", err)
		utils.Error(ctx, http.StatusInternalServerError, codeStorage, "internal error")
	}
}
