package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"StockPredictor/internal/pipeline"
	"StockPredictor/internal/regression"
)

type mockRefresher struct {
	mock.Mock
}

func (m *mockRefresher) RefreshOne(ctx context.Context, symbol string) (pipeline.Stock, error) {
	args := m.Called(ctx, symbol)
	return args.Get(0).(pipeline.Stock), args.Error(1)
}

func init() {
	gin.SetMode(gin.TestMode)
}

func setup() (*gin.Engine, *mockRefresher) {
	reg := pipeline.NewRegistry()
	reg.Put(pipeline.Stock{Symbol: "tesla", URL: "http://x/tsla", Rows: 40, Result: &regression.FitResult{
		Model: regression.LinearModel{Slope: 0, Intercept: 345.678},
	}})
	reg.Add("paypal", "http://x/pypl")
	ref := &mockRefresher{}
	return NewRouter(reg, ref, time.UTC), ref
}

func do(r *gin.Engine, method, path string) (*httptest.ResponseRecorder, map[string]any) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	r.ServeHTTP(w, req)
	var body map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func predictPath(symbol, date string) string {
	return "/api/v1/predict/" + symbol + "?date=" + url.QueryEscape(date)
}

func TestHealth(t *testing.T) {
	r, _ := setup()
	w, body := do(r, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestListSymbols(t *testing.T) {
	r, _ := setup()
	w, body := do(r, http.MethodGet, "/api/v1/symbols")
	require.Equal(t, http.StatusOK, w.Code)

	syms := body["symbols"].([]any)
	require.Len(t, syms, 2)
	first := syms[0].(map[string]any)
	assert.Equal(t, "tesla", first["symbol"])
	assert.Equal(t, true, first["fitted"])
	assert.Equal(t, float64(40), first["rows"])
	second := syms[1].(map[string]any)
	assert.Equal(t, false, second["fitted"])
	assert.NotContains(t, second, "slope")
}

func TestPredict(t *testing.T) {
	r, _ := setup()
	w, body := do(r, http.MethodGet, predictPath("tesla", "11/20/2019"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "345.68", body["price"])
	assert.Equal(t, "The price prediction for tesla stock at 11/20/2019 is $ 345.68", body["message"])
	assert.Equal(t, float64(time.Date(2019, 11, 20, 0, 0, 0, 0, time.UTC).Unix()), body["timestamp"])
}

func TestPredict_Errors(t *testing.T) {
	r, _ := setup()
	tests := []struct {
		name string
		path string
		code int
	}{
		{"unknown symbol", predictPath("nokia", "11/20/2019"), http.StatusNotFound},
		{"missing date", "/api/v1/predict/tesla", http.StatusBadRequest},
		{"bad date", predictPath("tesla", "13/45/2019"), http.StatusBadRequest},
		{"not fitted", predictPath("paypal", "11/20/2019"), http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := do(r, http.MethodGet, tt.path)
			assert.Equal(t, tt.code, w.Code)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestRefresh(t *testing.T) {
	r, ref := setup()
	ref.On("RefreshOne", mock.Anything, "paypal").Return(pipeline.Stock{
		Symbol: "paypal", Rows: 12,
		Result: &regression.FitResult{Model: regression.LinearModel{Slope: 1, Intercept: 2}},
	}, nil)

	w, body := do(r, http.MethodPost, "/api/v1/refresh/paypal")
	require.Equal(t, http.StatusOK, w.Code)
	status := body["status"].(map[string]any)
	assert.Equal(t, true, status["fitted"])
	assert.Equal(t, float64(1), status["slope"])
	ref.AssertExpectations(t)
}

func TestRefresh_Failure(t *testing.T) {
	r, ref := setup()
	ref.On("RefreshOne", mock.Anything, "tesla").Return(pipeline.Stock{}, errors.New("fetch failed"))

	w, body := do(r, http.MethodPost, "/api/v1/refresh/tesla")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "fetch failed", body["error"])
}

func TestRefresh_UnknownSymbol(t *testing.T) {
	r, ref := setup()
	w, _ := do(r, http.MethodPost, "/api/v1/refresh/nokia")
	assert.Equal(t, http.StatusNotFound, w.Code)
	ref.AssertNotCalled(t, "RefreshOne", mock.Anything, mock.Anything)
}
