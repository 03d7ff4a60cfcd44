package cleanup

import (
	"context"
	"time"
)

type (
	sessionStorage interface {
		PurgeStaleSessions(ctx context.Context, ttl time.Duration) (int64, error)
	}

	expiringCache interface {
		PurgeExpired() int
	}
)
