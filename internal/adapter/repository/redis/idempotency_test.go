package redis

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/iho/paysaga/internal/infrastructure/metrics"
)

func TestIdempotencyStore_ClaimOnce(t *testing.T) {
	store, mr := newTestStore(t, nil)
	ctx := context.Background()

	ok, err := store.Claim(ctx, "PAYMENT_SUCCESS:pi_1", time.Minute)
	if err != nil || !ok {
		t.Fatalf("first claim: ok=%v err=%v", ok, err)
	}

	ok, err = store.Claim(ctx, "PAYMENT_SUCCESS:pi_1", time.Minute)
	if err != nil || ok {
		t.Fatalf("second claim must fail: ok=%v err=%v", ok, err)
	}

	val, err := mr.Get(store.prefix + "PAYMENT_SUCCESS:pi_1")
	if err != nil || val != stateProcessing {
		t.Fatalf("expected processing marker, got %q err=%v", val, err)
	}
	if ttl := mr.TTL(store.prefix + "PAYMENT_SUCCESS:pi_1"); ttl != time.Minute {
		t.Fatalf("expected claim ttl of 1m, got %v", ttl)
	}
}

func TestIdempotencyStore_ClaimExpires(t *testing.T) {
	store, mr := newTestStore(t, nil)
	ctx := context.Background()

	if ok, _ := store.Claim(ctx, "k", time.Minute); !ok {
		t.Fatalf("expected claim")
	}
	mr.FastForward(2 * time.Minute)

	if ok, err := store.Claim(ctx, "k", time.Minute); err != nil || !ok {
		t.Fatalf("expired claim must be reclaimable: ok=%v err=%v", ok, err)
	}
}

func TestIdempotencyStore_Complete(t *testing.T) {
	store, mr := newTestStore(t, nil)
	ctx := context.Background()

	if _, err := store.Claim(ctx, "k", time.Minute); err != nil {
		t.Fatal(err)
	}
	if err := store.Complete(ctx, "k", 24*time.Hour); err != nil {
		t.Fatalf("complete failed: %v", err)
	}

	val, _ := mr.Get(store.prefix + "k")
	if val != stateDone {
		t.Fatalf("expected done marker, got %q", val)
	}
	if ttl := mr.TTL(store.prefix + "k"); ttl != 24*time.Hour {
		t.Fatalf("expected 24h ttl, got %v", ttl)
	}

	// Release after completion keeps the marker.
	if err := store.Release(ctx, "k"); err != nil {
		t.Fatalf("release failed: %v", err)
	}
	if !mr.Exists(store.prefix + "k") {
		t.Fatalf("release must not erase a completed key")
	}
	if ok, _ := store.Claim(ctx, "k", time.Minute); ok {
		t.Fatalf("completed key must not be claimable")
	}
}

func TestIdempotencyStore_Release(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	store, mr := newTestStore(t, m)
	ctx := context.Background()

	if _, err := store.Claim(ctx, "k", time.Minute); err != nil {
		t.Fatal(err)
	}
	if err := store.Release(ctx, "k"); err != nil {
		t.Fatalf("release failed: %v", err)
	}
	if mr.Exists(store.prefix + "k") {
		t.Fatalf("released claim still present")
	}
	if ok, _ := store.Claim(ctx, "k", time.Minute); !ok {
		t.Fatalf("released key must be claimable again")
	}

	if got := testutil.ToFloat64(m.RedisOperations.WithLabelValues("claim")); got != 2 {
		t.Fatalf("expected 2 claim operations, got %v", got)
	}
}

func TestIdempotencyStore_ErrorsAreCounted(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	store, mr := newTestStore(t, m)
	mr.Close()

	if _, err := store.Claim(context.Background(), "k", time.Minute); err == nil {
		t.Fatalf("expected error when redis is down")
	}
	if got := testutil.ToFloat64(m.RedisErrors.WithLabelValues("claim")); got != 1 {
		t.Fatalf("expected 1 redis error, got %v", got)
	}
}
