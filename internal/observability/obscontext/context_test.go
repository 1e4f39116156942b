package obscontext

import (
	"context"
	"testing"
)

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), " req-1 ")
	if got := RequestIDFromContext(ctx); got != "req-1" {
		t.Fatalf("expected req-1, got %q", got)
	}
	if got := RequestIDFromContext(WithRequestID(context.Background(), "  ")); got != "" {
		t.Fatalf("expected empty request id, got %q", got)
	}
}

func TestActorRoundTrip(t *testing.T) {
	ctx := WithActor(context.Background(), "operator", "42")
	actorType, actorID := ActorFromContext(ctx)
	if actorType != "operator" || actorID != "42" {
		t.Fatalf("unexpected actor %q/%q", actorType, actorID)
	}
	actorType, actorID = ActorFromContext(context.Background())
	if actorType != "" || actorID != "" {
		t.Fatalf("expected empty actor, got %q/%q", actorType, actorID)
	}
}
