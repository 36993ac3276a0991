// internal/oracle/oracle.go
package oracle

import (
	"context"
	"errors"
)

// ErrNoSources means every configured oracle source failed or none exist.
var ErrNoSources = errors.New("no oracle sources available")

// Reading is one market observation for a pool.
type Reading struct {
	HoldersCount int64
	VolumeUsd    float64
}

// Oracle reports holder and volume figures for a pool address.
type Oracle interface {
	Read(ctx context.Context, poolAddress string) (*Reading, error)
}
