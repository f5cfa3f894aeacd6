package counter

import (
	"context"
	"testing"

	"github.com/ManuelReschke/PremiumHook/app/models"
	"github.com/ManuelReschke/PremiumHook/internal/pkg/cache/cachetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const isolatedCounterTestRedisDB = 13

func TestToCounts(t *testing.T) {
	counts := toCounts(map[string]string{
		"success":   "4",
		"duplicate": "2",
		"bogus":     "9",
		"refund":    "x",
	})

	assert.Len(t, counts, len(models.PaymentOutcomes()))
	assert.Equal(t, int64(4), counts[models.OutcomeSuccess])
	assert.Equal(t, int64(2), counts[models.OutcomeDuplicate])
	assert.Zero(t, counts[models.OutcomeRefund])
	_, ok := counts["bogus"]
	assert.False(t, ok)
}

func TestOutcomes_Redis(t *testing.T) {
	client := cachetest.NewIsolatedClient(t, isolatedCounterTestRedisDB)
	ctx := context.Background()
	o := NewOutcomes(client)

	drained, err := o.Drain(ctx)
	require.NoError(t, err)
	assert.Zero(t, drained[models.OutcomeSuccess])

	require.NoError(t, o.AddWebhookOutcome(ctx, models.OutcomeSuccess))
	require.NoError(t, o.AddWebhookOutcome(ctx, models.OutcomeSuccess))
	require.NoError(t, o.AddWebhookOutcome(ctx, models.OutcomeSignatureInvalid))

	counts, err := o.WebhookOutcomes(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[models.OutcomeSuccess])
	assert.Equal(t, int64(1), counts[models.OutcomeSignatureInvalid])
	assert.Zero(t, counts[models.OutcomeDuplicate])

	drained, err = o.Drain(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), drained[models.OutcomeSuccess])

	counts, err = o.WebhookOutcomes(ctx)
	require.NoError(t, err)
	assert.Zero(t, counts[models.OutcomeSuccess])
}
