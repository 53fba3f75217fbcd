package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/kidcare_server/internal/model"
	"github.com/qs3c/kidcare_server/internal/model/dto"
	"github.com/qs3c/kidcare_server/internal/promotion"
	"github.com/qs3c/kidcare_server/internal/testutil"
)

func TestPromotionService_Resolve(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	svc := testutil.TestService(t, env.db)
	other := testutil.TestService(t, env.db)

	testutil.TestPromotion(t, env.db, "ANY")
	testutil.TestPromotion(t, env.db, "ONLY", testutil.WithApplicableServices(other.ID))
	testutil.TestPromotion(t, env.db, "USED", testutil.WithMaxUses(2, 2))
	testutil.TestPromotion(t, env.db, "LATER", testutil.WithValidity(time.Now().AddDate(0, 1, 0), time.Now().AddDate(0, 2, 0)))

	promo, err := env.promotions.Resolve(ctx, "ANY", svc.ID, 12)
	require.NoError(t, err)
	assert.Equal(t, "ANY", promo.Code)

	_, err = env.promotions.Resolve(ctx, "MISSING", svc.ID, 12)
	assert.True(t, errors.Is(err, ErrInvalidPromotionCode))

	tests := []struct {
		code   string
		reason promotion.Reason
	}{
		{"ONLY", promotion.ReasonServiceNotApplicable},
		{"USED", promotion.ReasonUsageLimitReached},
		{"LATER", promotion.ReasonOutsideValidity},
	}
	for _, tt := range tests {
		_, err := env.promotions.Resolve(ctx, tt.code, svc.ID, 12)
		var pe *PromotionError
		require.True(t, errors.As(err, &pe), tt.code)
		assert.Equal(t, tt.reason, pe.Reason)
	}
}

func TestPromotionService_ResolveFollowsClock(t *testing.T) {
	env := setupEnv(t)
	svc := testutil.TestService(t, env.db)
	testutil.TestPromotion(t, env.db, "SPRING")

	_, err := env.promotions.Resolve(context.Background(), "SPRING", svc.ID, 12)
	require.NoError(t, err)

	env.clock.Advance(90 * 24 * time.Hour)
	_, err = env.promotions.Resolve(context.Background(), "SPRING", svc.ID, 12)
	assert.True(t, errors.Is(err, ErrPromotionIneligible))
}

func TestPromotionService_Preview(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	svc := testutil.TestService(t, env.db, testutil.WithBasePrice("150.00"))
	testutil.TestPromotion(t, env.db, "TEN", testutil.WithDiscount(model.DiscountTypeFixedAmount, "10"))
	testutil.TestPromotion(t, env.db, "BABY", testutil.WithAgeRange(nil, intPtr(12)))

	resp, err := env.promotions.Preview(ctx, &dto.PromotionPreviewRequest{
		Code: "TEN", ServiceID: svc.ID, ChildAgeMonths: 24, SessionsPerMonth: 8,
	})
	require.NoError(t, err)
	assert.True(t, resp.Eligible)
	assertMoney(t, "150.00", resp.OriginalPrice)
	assertMoney(t, "10.00", resp.DiscountAmount)
	assertMoney(t, "140.00", resp.FinalPrice)

	resp, err = env.promotions.Preview(ctx, &dto.PromotionPreviewRequest{
		Code: "BABY", ServiceID: svc.ID, ChildAgeMonths: 24, SessionsPerMonth: 8,
	})
	require.NoError(t, err)
	assert.False(t, resp.Eligible)
	assert.Equal(t, string(promotion.ReasonAboveMaxAge), resp.Reason)
	assertMoney(t, "150.00", resp.FinalPrice)

	_, err = env.promotions.Preview(ctx, &dto.PromotionPreviewRequest{
		Code: "NOPE", ServiceID: svc.ID, ChildAgeMonths: 24, SessionsPerMonth: 8,
	})
	assert.True(t, errors.Is(err, ErrInvalidPromotionCode))

	// 预览不占用次数
	assert.Equal(t, int64(0), testutil.CountRows(t, env.db, "subscriptions"))
}
