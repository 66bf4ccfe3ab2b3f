package actorctx

import (
	"context"
	"testing"
)

func TestUsernameRoundTrip(t *testing.T) {
	if _, ok := UsernameFrom(context.Background()); ok {
		t.Fatalf("empty context should carry no actor")
	}

	ctx := WithUsername(context.Background(), "alice")
	got, ok := UsernameFrom(ctx)
	if !ok || got != "alice" {
		t.Fatalf("got %q ok=%v", got, ok)
	}

	if _, ok := UsernameFrom(WithUsername(context.Background(), "")); ok {
		t.Fatalf("empty username should read as absent")
	}
}
