package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oneclickgrocery/internal/api"
	"oneclickgrocery/internal/config"
	"oneclickgrocery/internal/platform/localllm"
	"oneclickgrocery/internal/recipe"
	"oneclickgrocery/internal/session"
)

// deadlineClassifier records whether the context it got had a deadline.
type deadlineClassifier struct {
	hadDeadline bool
}

func (d *deadlineClassifier) Classify(ctx context.Context, query string, keys []string) (string, error) {
	_, d.hadDeadline = ctx.Deadline()
	return "pizza", nil
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	// Set up Gin in test mode
	gin.SetMode(gin.TestMode)

	logger, _ := test.NewNullLogger()
	cfg := config.Default()
	catalog, closeCatalog, err := loadCatalog(context.Background(), cfg.Catalog, logger)
	require.NoError(t, err)
	t.Cleanup(closeCatalog)

	store := session.NewStore(catalog, cfg.Session.TTL, session.WithLogger(logger))
	return newRouter(api.NewHandler(catalog, store, time.Second), cfg, logger)
}

func send(t *testing.T, r *gin.Engine, method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	// Create a new HTTP request
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	// Create a new response recorder
	rr := httptest.NewRecorder()
	// Serve the HTTP request
	r.ServeHTTP(rr, req)
	return rr
}

func sessionCookie(rr *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == api.SessionCookie {
			return c
		}
	}
	return nil
}

func TestBiryaniOrderEndToEnd(t *testing.T) {
	r := newTestRouter(t)

	rr := send(t, r, http.MethodPost, "/recipes/suggest", gin.H{"dish_name": "biryani", "servings": 2, "max_price": 500}, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	cookie := sessionCookie(rr)
	require.NotNil(t, cookie)

	var sug session.Suggestion
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &sug))
	assert.True(t, sug.OverBudget)

	// over budget still lets the shopper add everything
	rr = send(t, r, http.MethodPost, "/cart/items", gin.H{}, cookie)
	require.Equal(t, http.StatusOK, rr.Code)

	for _, step := range []gin.H{
		{"phase": "cart"},
		{"phase": "address", "address": gin.H{
			"full_name": "Farah Khan", "street": "Road No. 12", "city": "Hyderabad",
			"state": "Telangana", "pincode": "500034", "phone": "9988776655",
		}},
		{"phase": "payment", "payment_method": "cod"},
	} {
		rr = send(t, r, http.MethodPost, "/checkout/advance", step, cookie)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	}

	rr = send(t, r, http.MethodGet, "/orders/current", nil, cookie)
	require.Equal(t, http.StatusOK, rr.Code)
	var order struct {
		ID     string          `json:"id"`
		Status string          `json:"status"`
		Total  decimal.Decimal `json:"total"`
		Items  []any           `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &order))
	assert.NotEmpty(t, order.ID)
	assert.Equal(t, "confirmed", order.Status)
	assert.True(t, decimal.NewFromInt(920).Equal(order.Total))
	assert.Len(t, order.Items, len(sug.Recipe.Ingredients))
}

func TestCORSPreflight(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/recipes/suggest", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "http://localhost:5173", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rr.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORSRejectsUnknownOrigin(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://evil.example")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestLoadStaticCatalog(t *testing.T) {
	logger, _ := test.NewNullLogger()

	c, closeCatalog, err := loadCatalog(context.Background(), config.Catalog{Source: config.SourceStatic}, logger)
	require.NoError(t, err)
	defer closeCatalog()
	assert.Equal(t, recipe.Builtin().Keys(), c.Keys())
}

func TestNewClassifier(t *testing.T) {
	c, closeFn, err := newClassifier(context.Background(), config.Classifier{Provider: config.ClassifierNone})
	require.NoError(t, err)
	closeFn()
	assert.Nil(t, c)

	c, closeFn, err = newClassifier(context.Background(), config.Classifier{
		Provider:   config.ClassifierLocal,
		LocalURL:   "http://localhost:1234/v1/chat/completions",
		LocalModel: "m",
		Timeout:    time.Second,
	})
	require.NoError(t, err)
	defer closeFn()
	tc, ok := c.(timeoutClassifier)
	require.True(t, ok)
	assert.IsType(t, &localllm.Client{}, tc.Classifier)
}

func TestTimeoutClassifierSetsDeadline(t *testing.T) {
	inner := &deadlineClassifier{}

	key, err := timeoutClassifier{inner, time.Second}.Classify(context.Background(), "q", nil)
	require.NoError(t, err)
	assert.Equal(t, "pizza", key)
	assert.True(t, inner.hadDeadline)

	_, err = timeoutClassifier{inner, 0}.Classify(context.Background(), "q", nil)
	require.NoError(t, err)
	assert.False(t, inner.hadDeadline)
}

func TestSweepSessionsStopsWithContext(t *testing.T) {
	logger, _ := test.NewNullLogger()
	store := session.NewStore(recipe.Builtin(), time.Millisecond, session.WithLogger(logger))
	store.GetOrCreate("idle")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sweepSessions(ctx, store, 5*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool { return store.Len() == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
