package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/kidcare_server/config"
	"github.com/qs3c/kidcare_server/internal/api/middleware"
	"github.com/qs3c/kidcare_server/internal/pkg/clock"
	"github.com/qs3c/kidcare_server/internal/pkg/response"
	"github.com/qs3c/kidcare_server/internal/repository"
	"github.com/qs3c/kidcare_server/internal/service"
	"github.com/qs3c/kidcare_server/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
	RegisterValidators()
}

type handlerEnv struct {
	db           *gorm.DB
	subscription *SubscriptionHandler
	catalog      *CatalogHandler
	promotion    *PromotionHandler
}

func setupHandlers(t *testing.T) *handlerEnv {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })

	cfg := (&config.Config{}).WithDefaults()
	repos := repository.NewRepositories(db)
	clk := clock.Real()
	capacityService := service.NewCapacityService(repos.Catalog, repos.Subscription)
	pricingService := service.NewPricingService(repos.Catalog, cfg)
	promotionService := service.NewPromotionService(repos.Promotion, pricingService, clk)
	subscriptionService := service.NewSubscriptionService(db, repos, capacityService, promotionService, nil, clk, cfg)

	return &handlerEnv{
		db:           db,
		subscription: NewSubscriptionHandler(subscriptionService),
		catalog:      NewCatalogHandler(pricingService, capacityService),
		promotion:    NewPromotionHandler(promotionService),
	}
}

// mockAuth 模拟已登录用户
func mockAuth(userID int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
		c.Next()
	}
}

func performRequest(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var resp response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

// decodeData 把 data 字段解到具体结构
func decodeData(t *testing.T, resp response.Response, out interface{}) {
	t.Helper()
	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, out))
}

func nextMonth() (int, int) {
	next := time.Now().UTC().AddDate(0, 1, 0)
	return int(next.Month()), next.Year()
}
