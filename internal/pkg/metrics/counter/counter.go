package counter

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/ManuelReschke/PremiumHook/app/models"
	"github.com/ManuelReschke/PremiumHook/internal/pkg/cache"
	"github.com/redis/go-redis/v9"
)

const webhookOutcomesKey = "webhook:counters:outcomes"

// Outcomes counts processed webhook deliveries per outcome in a Redis hash.
type Outcomes struct {
	rdb redis.Cmdable
	key string
}

// NewOutcomes creates a counter on rdb.
func NewOutcomes(rdb redis.Cmdable) *Outcomes {
	return &Outcomes{rdb: rdb, key: webhookOutcomesKey}
}

// Default returns a counter on the shared cache client.
func Default() *Outcomes {
	return NewOutcomes(cache.GetClient())
}

// AddWebhookOutcome increments the counter for outcome.
func (o *Outcomes) AddWebhookOutcome(ctx context.Context, outcome models.PaymentOutcome) error {
	return o.rdb.HIncrBy(ctx, o.key, string(outcome), 1).Err()
}

// WebhookOutcomes returns the current count of every outcome, zero included.
func (o *Outcomes) WebhookOutcomes(ctx context.Context) (map[models.PaymentOutcome]int64, error) {
	data, err := o.rdb.HGetAll(ctx, o.key).Result()
	if err != nil {
		return nil, err
	}
	return toCounts(data), nil
}

// Drain returns the counts and resets them. The hash is renamed to a
// temporary key first so increments arriving during the read are kept for
// the next drain.
func (o *Outcomes) Drain(ctx context.Context) (map[models.PaymentOutcome]int64, error) {
	tmpKey := fmt.Sprintf("%s:tmp:%d", o.key, time.Now().UnixNano())
	if err := o.rdb.Rename(ctx, o.key, tmpKey).Err(); err != nil {
		// Nothing counted yet
		if isNoSuchKey(err) {
			return toCounts(nil), nil
		}
		return nil, err
	}
	defer o.rdb.Del(ctx, tmpKey)

	data, err := o.rdb.HGetAll(ctx, tmpKey).Result()
	if err != nil {
		return nil, err
	}
	return toCounts(data), nil
}

func toCounts(data map[string]string) map[models.PaymentOutcome]int64 {
	counts := make(map[models.PaymentOutcome]int64, len(models.PaymentOutcomes()))
	for _, o := range models.PaymentOutcomes() {
		counts[o] = 0
	}
	for field, raw := range data {
		outcome := models.PaymentOutcome(field)
		if !outcome.Valid() {
			continue
		}
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		counts[outcome] = n
	}
	return counts
}

func isNoSuchKey(err error) bool {
	if err == redis.Nil {
		return true
	}
	return err != nil && (err.Error() == "ERR no such key" || err.Error() == "redis: nil")
}
