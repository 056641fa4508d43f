package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRecoverJSON_WritesEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ginzap.CustomRecoveryWithZap(zap.NewNop(), false, RecoverJSON))
	r.GET("/boom", func(*gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body JSONResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 50000, body.Code)
}

func TestNewRollingFileLogger(t *testing.T) {
	_, err := NewRollingFileLogger("", "info", 1, 1, 1, false)
	assert.Error(t, err)

	l, err := NewRollingFileLogger(filepath.Join(t.TempDir(), "logs", "gin.log"), "info", 1, 1, 1, false)
	require.NoError(t, err)
	l.Info("ok")
	require.NoError(t, l.Sync())
}
