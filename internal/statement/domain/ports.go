package statement

import (
	"context"
	"time"
)

// AssetStore supplies static binary assets such as logos.
// Missing keys yield *AssetNotFoundError.
type AssetStore interface {
	Fetch(ctx context.Context, key string) ([]byte, error)
}

// Clock provides current time.
type Clock interface {
	Now() time.Time
}

// SystemClock uses time.Now.
type SystemClock struct{}

// Now returns current time.
func (SystemClock) Now() time.Time { return time.Now() }
