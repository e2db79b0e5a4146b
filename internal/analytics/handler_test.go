package analytics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	v1 "github.com/macrolog-lab/macrolog/internal/api/v1"
	core "github.com/macrolog-lab/macrolog/internal/core/rollup"
	"github.com/macrolog-lab/macrolog/internal/core/storage"
)

func newTestRouter(t *testing.T, store storage.BucketStore) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	fixedService(store, time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC)).RegisterRoutes(router)
	return router
}

func get(router *gin.Engine, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandleGetAggregate(t *testing.T) {
	store := storage.NewMemoryStore()
	require.NoError(t, store.UpsertBucket(context.Background(), "", core.Daily,
		v1.NewDate(2025, time.January, 2), dailyValue("700", 2)))
	router := newTestRouter(t, store)

	rec := get(router, "/v1/analytics/aggregate?days_back=7")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"days_with_data":1`)
	require.Contains(t, rec.Body.String(), `"total_entries":2`)
}

func TestHandleGetAggregate_BadQuery(t *testing.T) {
	router := newTestRouter(t, storage.NewMemoryStore())

	rec := get(router, "/v1/analytics/aggregate?days_back=week")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = get(router, "/v1/analytics/aggregate?days_back=-1")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleGetAggregate_NoWindowParam(t *testing.T) {
	router := newTestRouter(t, storage.NewMemoryStore())

	rec := get(router, "/v1/analytics/aggregate")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"days_with_data":0`)
}
