package interfaces

import (
	"context"

	"github.com/nanaosei-dev/chatvendor/internal/domain"
)

// SessionStore holds per-conversation rolling history with a sliding TTL.
// Both backings (redis and in-process) must behave identically: every
// write or read refreshes the TTL, and reads return at most the last
// domain.HistoryWindow turns regardless of how many are stored.
type SessionStore interface {
	Append(ctx context.Context, key string, turn domain.Turn) error
	AppendAndFetch(ctx context.Context, key string, turn domain.Turn) ([]domain.Turn, error)
	Fetch(ctx context.Context, key string) ([]domain.Turn, error)
	Clear(ctx context.Context, key string) error
}
