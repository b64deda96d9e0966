package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"woolet-gate-service/domain"
)

type WindowRepo interface {
	PruneAndCount(ctx context.Context, identity string, olderThan time.Time) (int64, error)
	Record(ctx context.Context, identity string, token string, at time.Time, window time.Duration) error
}

// Admission implements the sliding window log. The prune/count and record
// steps are separate store operations, so under concurrency the admitted
// count can transiently exceed the quota by the number of requests racing
// between them. The limiter is best effort, not exact.
//
// Any store failure is reported as domain.ErrStoreUnavailable and never
// turns into an admission.
type Admission struct {
	repo        WindowRepo
	maxRequests int
	window      time.Duration
	now         func() time.Time
}

func NewAdmission(repo WindowRepo, maxRequests int, window time.Duration) Admission {
	return NewAdmissionWithClock(repo, maxRequests, window, time.Now)
}

func NewAdmissionWithClock(repo WindowRepo, maxRequests int, window time.Duration, now func() time.Time) Admission {
	return Admission{
		repo:        repo,
		maxRequests: maxRequests,
		window:      window,
		now:         now,
	}
}

func (s Admission) Admit(ctx context.Context, identity string) (*domain.Decision, error) {
	now := s.now()
	resetAt := ceilSeconds(now.UnixMilli() + s.window.Milliseconds())

	count, err := s.repo.PruneAndCount(ctx, identity, now.Add(-s.window))
	if err != nil {
		return nil, errors.WithMessagef(domain.ErrStoreUnavailable, "prune and count '%s': %v", identity, err)
	}

	if count >= int64(s.maxRequests) {
		return &domain.Decision{
			Allowed:   false,
			Remaining: 0,
			ResetAt:   resetAt,
		}, nil
	}

	// recording is the final step, a cancellation before this point leaves
	// no quota consumed
	token := fmt.Sprintf("%d:%s", now.UnixMilli(), uuid.New())
	err = s.repo.Record(ctx, identity, token, now, s.window)
	if err != nil {
		return nil, errors.WithMessagef(domain.ErrStoreUnavailable, "record '%s': %v", identity, err)
	}

	return &domain.Decision{
		Allowed:   true,
		Remaining: s.maxRequests - int(count) - 1,
		ResetAt:   resetAt,
	}, nil
}

func ceilSeconds(millis int64) int64 {
	return (millis + 999) / 1000
}
