package ingest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefreshHandlerTriggersRefresh(t *testing.T) {
	gin.SetMode(gin.TestMode)

	fake := &fakeUpstream{payload: twoCardPayload()}
	p, _ := newTestPipeline(t, fake, 100)
	require.NoError(t, p.Run(context.Background()))

	router := gin.New()
	router.POST("/admin/refresh", RefreshHandler(p))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/refresh", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusAccepted, w.Code)

	var body struct {
		Accepted bool `json:"accepted"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Accepted)

	assert.Eventually(t, func() bool {
		return fake.Hits() == 2
	}, 2*time.Second, 10*time.Millisecond, "refresh pass should fetch upstream again")
}

func TestRefreshHandlerRetriesFailedRun(t *testing.T) {
	gin.SetMode(gin.TestMode)

	fake := &fakeUpstream{status: http.StatusBadGateway}
	p, _ := newTestPipeline(t, fake, 100)
	require.Error(t, p.Run(context.Background()))

	fake.Set(twoCardPayload(), http.StatusOK)

	router := gin.New()
	router.POST("/admin/refresh", RefreshHandler(p))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/refresh", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusAccepted, w.Code)

	assert.Eventually(t, func() bool {
		return p.Tracker.Ready()
	}, 2*time.Second, 10*time.Millisecond)
}
