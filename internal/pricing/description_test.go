package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribe(t *testing.T) {
	standard, err := ComputeSessionPricing(money("150"), 8, 8)
	require.NoError(t, err)
	assert.Equal(t, "8 sessions per month (standard price) - 150.00", Describe(standard))

	additional, err := ComputeSessionPricing(money("150"), 10, 8)
	require.NoError(t, err)
	assert.Equal(t, "10 sessions per month (8 included + 2 additional at 18.75 each) - 187.50", Describe(additional))

	reduced, err := ComputeSessionPricing(money("150"), 4, 8)
	require.NoError(t, err)
	assert.Equal(t, "4 sessions per month (reduced: 4/8 of the monthly price) - 75.00", Describe(reduced))
}

func TestSessionOptions(t *testing.T) {
	options, err := SessionOptions(money("150"), 8)
	require.NoError(t, err)

	require.Len(t, options, MaxSessions-MinSessions+1)
	assert.Equal(t, MinSessions, options[0].Sessions)
	assert.Equal(t, MaxSessions, options[len(options)-1].Sessions)

	recommended := 0
	for _, opt := range options {
		b, err := ComputeSessionPricing(money("150"), opt.Sessions, 8)
		require.NoError(t, err)
		assert.True(t, b.TotalPrice.Equal(opt.TotalPrice))
		assert.Equal(t, Describe(b), opt.Label)
		if opt.Recommended {
			recommended++
			assert.Equal(t, 8, opt.Sessions)
		}
	}
	assert.Equal(t, 1, recommended)
}

func TestSessionOptions_InvalidBase(t *testing.T) {
	_, err := SessionOptions(money("-5"), 8)
	assert.ErrorIs(t, err, ErrNegativePrice)
}
