package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// Window keeps one sorted set per caller identity: score is the admission
// timestamp in milliseconds, member is a unique per-entry token so two
// admissions at the same millisecond stay distinct.
type Window struct {
	cli redis.UniversalClient
}

func NewWindow(cli redis.UniversalClient) Window {
	return Window{
		cli: cli,
	}
}

// PruneAndCount drops every entry with timestamp <= olderThan and returns
// the number of entries left in the window.
func (r Window) PruneAndCount(ctx context.Context, identity string, olderThan time.Time) (int64, error) {
	key := r.key(identity)

	p := r.cli.Pipeline()
	p.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(olderThan.UnixMilli(), 10))
	count := p.ZCard(ctx, key)
	_, err := p.Exec(ctx)
	if err != nil {
		return 0, errors.WithMessagef(err, "prune window for key '%s'", key)
	}

	return count.Val(), nil
}

// Record inserts an admitted entry and refreshes the expiry of the whole
// collection to the window duration.
func (r Window) Record(ctx context.Context, identity string, token string, at time.Time, window time.Duration) error {
	key := r.key(identity)

	p := r.cli.Pipeline()
	p.ZAdd(ctx, key, redis.Z{
		Score:  float64(at.UnixMilli()),
		Member: token,
	})
	p.Expire(ctx, key, window)
	_, err := p.Exec(ctx)
	if err != nil {
		return errors.WithMessagef(err, "record window entry for key '%s'", key)
	}

	return nil
}

func (r Window) key(identity string) string {
	return fmt.Sprintf("window:%s", identity)
}
