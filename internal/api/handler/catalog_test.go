package handler

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/kidcare_server/internal/model/dto"
	"github.com/qs3c/kidcare_server/internal/pkg/response"
	"github.com/qs3c/kidcare_server/internal/testutil"
)

func catalogRouter(env *handlerEnv) *gin.Engine {
	r := gin.New()
	r.GET("/services/:id/pricing", env.catalog.Quote)
	r.GET("/services/:id/session-options", env.catalog.SessionOptions)
	r.GET("/services/:id/capacity", env.catalog.Capacity)
	return r
}

func TestCatalogHandler_Quote(t *testing.T) {
	env := setupHandlers(t)
	svc := testutil.TestService(t, env.db)

	tests := []struct {
		sessions    int
		total       string
		description string
	}{
		{8, "150", "8 sessions per month (standard price) - 150.00"},
		{12, "225", "12 sessions per month (8 included + 4 additional at 18.75 each) - 225.00"},
		{4, "75", "4 sessions per month (reduced: 4/8 of the monthly price) - 75.00"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d sessions", tt.sessions), func(t *testing.T) {
			w := performRequest(catalogRouter(env), http.MethodGet,
				fmt.Sprintf("/services/%d/pricing?sessions=%d", svc.ID, tt.sessions), nil)

			resp := parseResponse(t, w)
			require.Equal(t, response.CodeSuccess, resp.Code, resp.Message)

			var quote dto.PricingQuote
			decodeData(t, resp, &quote)
			assert.Equal(t, svc.ID, quote.ServiceID)
			assert.True(t, decimal.RequireFromString(tt.total).Equal(quote.TotalPrice), quote.TotalPrice.String())
			assert.Equal(t, tt.description, quote.Description)
		})
	}
}

func TestCatalogHandler_Quote_Errors(t *testing.T) {
	env := setupHandlers(t)
	svc := testutil.TestService(t, env.db)
	inactive := testutil.TestService(t, env.db, testutil.WithServiceInactive())

	tests := []struct {
		name string
		path string
		code int
	}{
		{"bad id", "/services/abc/pricing?sessions=8", response.CodeParamError},
		{"missing sessions", fmt.Sprintf("/services/%d/pricing", svc.ID), response.CodeParamError},
		{"below minimum", fmt.Sprintf("/services/%d/pricing?sessions=3", svc.ID), response.CodeParamError},
		{"above maximum", fmt.Sprintf("/services/%d/pricing?sessions=21", svc.ID), response.CodeParamError},
		{"inactive service", fmt.Sprintf("/services/%d/pricing?sessions=8", inactive.ID), response.CodeResourceNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performRequest(catalogRouter(env), http.MethodGet, tt.path, nil)
			assert.Equal(t, tt.code, parseResponse(t, w).Code)
		})
	}
}

func TestCatalogHandler_SessionOptions(t *testing.T) {
	env := setupHandlers(t)
	svc := testutil.TestService(t, env.db)

	w := performRequest(catalogRouter(env), http.MethodGet, fmt.Sprintf("/services/%d/session-options", svc.ID), nil)

	resp := parseResponse(t, w)
	require.Equal(t, response.CodeSuccess, resp.Code)

	var options dto.SessionOptionsResponse
	decodeData(t, resp, &options)
	assert.Equal(t, 8, options.IncludedSessions)
	require.Len(t, options.Options, 17)
	assert.Equal(t, 4, options.Options[0].Sessions)
	assert.Equal(t, 20, options.Options[16].Sessions)
	assert.True(t, options.Options[4].Recommended)
}

func TestCatalogHandler_Capacity(t *testing.T) {
	env := setupHandlers(t)
	limited := testutil.TestService(t, env.db, testutil.WithCapacity(3))
	unlimited := testutil.TestService(t, env.db)
	month, year := nextMonth()
	testutil.TestSubscription(t, env.db, limited.ID, year, month, "pending")
	testutil.TestSubscription(t, env.db, limited.ID, year, month, "cancelled")

	w := performRequest(catalogRouter(env), http.MethodGet,
		fmt.Sprintf("/services/%d/capacity?month=%d&year=%d", limited.ID, month, year), nil)
	var status dto.CapacityResponse
	decodeData(t, parseResponse(t, w), &status)
	assert.True(t, status.OK)
	assert.Equal(t, 1, status.Current)
	require.NotNil(t, status.Max)
	assert.Equal(t, 3, *status.Max)
	require.NotNil(t, status.Remaining)
	assert.Equal(t, 2, *status.Remaining)

	w = performRequest(catalogRouter(env), http.MethodGet,
		fmt.Sprintf("/services/%d/capacity?month=%d&year=%d", unlimited.ID, month, year), nil)
	status = dto.CapacityResponse{}
	decodeData(t, parseResponse(t, w), &status)
	assert.True(t, status.OK)
	assert.Nil(t, status.Max)
	assert.Nil(t, status.Remaining)

	w = performRequest(catalogRouter(env), http.MethodGet,
		fmt.Sprintf("/services/%d/capacity?month=13&year=%d", limited.ID, year), nil)
	assert.Equal(t, response.CodeParamError, parseResponse(t, w).Code)
}
