package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"GoldBean/internal/cache"
	"GoldBean/internal/history"
	"GoldBean/internal/logging"
	"GoldBean/internal/model"
	"GoldBean/internal/pricing"
	"GoldBean/internal/provider"
	"GoldBean/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(t *testing.T, p *provider.MockProvider) *gin.Engine {
	t.Helper()
	log := logging.Discard()
	fs, err := store.NewFileStore(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, err)
	price := pricing.NewService([]provider.Provider{p}, &provider.MockProber{}, cache.NewPriceCache(fs), log)
	require.NoError(t, price.Init(context.Background()))
	hist := history.NewService(fs, cache.NewPreferences(fs), price, log)
	return NewRouter(price, hist, fs, log)
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestHealth(t *testing.T) {
	w := do(newRouter(t, &provider.MockProvider{Price: 780}), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPriceRefreshFlow(t *testing.T) {
	r := newRouter(t, &provider.MockProvider{Label: "Coinbase", Price: 780.5})

	body := decode(t, do(r, http.MethodGet, "/api/price", ""))
	assert.Equal(t, "无数据", body["status"])
	assert.Equal(t, "暂无数据", body["formatted"])

	w := do(r, http.MethodPost, "/api/price/refresh", "")
	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	assert.Equal(t, 780.5, body["price"])
	assert.Equal(t, "Coinbase", body["source"])
	assert.Equal(t, "今日已更新", body["status"])

	w = do(r, http.MethodPost, "/api/price/refresh", "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, pricing.AdvisoryAlreadyUpdated, decode(t, w)["advisory"])

	w = do(r, http.MethodPost, "/api/price/refresh?force=true", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPriceRefresh_NoData(t *testing.T) {
	r := newRouter(t, &provider.MockProvider{Err: errors.New("down")})
	w := do(r, http.MethodPost, "/api/price/refresh", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, pricing.AdvisorySourcesDown, decode(t, w)["advisory"])
}

func TestHistoryAndSummary(t *testing.T) {
	r := newRouter(t, &provider.MockProvider{Price: 780})
	do(r, http.MethodPost, "/api/price/refresh", "")

	w := do(r, http.MethodGet, "/api/history/6M", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "6个月", body["label"])
	assert.Len(t, body["points"], 180)

	w = do(r, http.MethodGet, "/api/summary/1y", "")
	require.Equal(t, http.StatusOK, w.Code)
	summary := decode(t, w)["summary"].(map[string]any)
	assert.Equal(t, 780.0, summary["current"])

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/api/history/2W", "").Code)
	assert.Equal(t, http.StatusNoContent, do(r, http.MethodDelete, "/api/history", "").Code)
}

func TestHoldingsCRUD(t *testing.T) {
	r := newRouter(t, &provider.MockProvider{Price: 600})
	do(r, http.MethodPost, "/api/price/refresh", "")

	w := do(r, http.MethodPost, "/api/holdings", `{"name":"金条","weight":10,"purchase_price":5000,"purchase_date":"2024-01-02T00:00:00Z"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode(t, w)["id"].(string)

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/api/holdings", `{"name":"x","weight":0}`).Code)

	body := decode(t, do(r, http.MethodGet, "/api/holdings", ""))
	assert.Len(t, body["records"], 1)
	pf := body["portfolio"].(map[string]any)
	assert.Equal(t, 6000.0, pf["current_value"])
	assert.Equal(t, 20.0, pf["profit_loss_percent"])

	assert.Equal(t, http.StatusNoContent, do(r, http.MethodDelete, "/api/holdings/"+id, "").Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodDelete, "/api/holdings/nope", "").Code)
	body = decode(t, do(r, http.MethodGet, "/api/holdings", ""))
	assert.Len(t, body["records"], 0)
}

type fakeRemote struct {
	avail history.Availability
	err   error
}

func (f fakeRemote) Range(context.Context, time.Time, time.Time) ([]model.PricePoint, error) {
	return nil, nil
}

func (f fakeRemote) Availability(context.Context) (history.Availability, error) {
	return f.avail, f.err
}

func TestHealth_ReportsRemoteHistory(t *testing.T) {
	log := logging.Discard()
	fs, err := store.NewFileStore(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, err)
	price := pricing.NewService(nil, nil, cache.NewPriceCache(fs), log)

	body := decode(t, do(newRouter(t, &provider.MockProvider{Price: 780}), http.MethodGet, "/health", ""))
	assert.NotContains(t, body, "history_remote")

	remote := fakeRemote{avail: history.Availability{Count: 42}}
	hist := history.NewService(fs, cache.NewPreferences(fs), price, log, history.WithRemote(remote))
	w := do(NewRouter(price, hist, fs, log), http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, 42.0, body["history_remote"].(map[string]any)["count"])

	remote = fakeRemote{err: errors.New("connection refused")}
	hist = history.NewService(fs, cache.NewPreferences(fs), price, log, history.WithRemote(remote))
	body = decode(t, do(NewRouter(price, hist, fs, log), http.MethodGet, "/health", ""))
	assert.Equal(t, "connection refused", body["history_remote"].(map[string]any)["error"])
}

func TestCachedHistory(t *testing.T) {
	r := newRouter(t, &provider.MockProvider{Price: 780})
	body := decode(t, do(r, http.MethodGet, "/api/history", ""))
	assert.Len(t, body["points"], 0)

	do(r, http.MethodPost, "/api/price/refresh", "")
	do(r, http.MethodGet, "/api/history/6M", "")
	w := do(r, http.MethodGet, "/api/history", "")
	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	assert.Len(t, body["points"], 180)
	assert.Equal(t, 780.0, body["summary"].(map[string]any)["current"])

	// A forced refresh keeps the cached series.
	require.Equal(t, http.StatusOK, do(r, http.MethodPost, "/api/price/refresh?force=true", "").Code)
	assert.Len(t, decode(t, do(r, http.MethodGet, "/api/history", ""))["points"], 180)

	require.Equal(t, http.StatusNoContent, do(r, http.MethodDelete, "/api/history", "").Code)
	assert.Len(t, decode(t, do(r, http.MethodGet, "/api/history", ""))["points"], 0)
}

func TestCreateHolding_NameOptional(t *testing.T) {
	r := newRouter(t, &provider.MockProvider{Price: 600})
	w := do(r, http.MethodPost, "/api/holdings", `{"weight":5,"purchase_price":2900}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "", decode(t, w)["name"])

	body := decode(t, do(r, http.MethodGet, "/api/holdings", ""))
	assert.Len(t, body["records"], 1)
}
