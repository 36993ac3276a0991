// internal/burn/event.go
package burn

import (
	"time"

	"github.com/noottools/launch-engine/internal/types"
)

// EventView is the read model of one logged burn.
type EventView struct {
	ID          string
	Amount      float64
	ValueUsd    float64
	SourceType  types.BurnSource
	TxSignature string
	CreatedAt   time.Time
}
