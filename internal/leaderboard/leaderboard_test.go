package leaderboard

import (
	"context"
	"errors"
	"testing"
)

func TestDisabledWithoutClient(t *testing.T) {
	board := New(nil)
	ctx := context.Background()

	if err := board.Record(ctx, "Alice", 5); !errors.Is(err, ErrDisabled) {
		t.Errorf("Record = %v, want ErrDisabled", err)
	}
	if _, err := board.Top(ctx, 10); !errors.Is(err, ErrDisabled) {
		t.Errorf("Top = %v, want ErrDisabled", err)
	}
}
