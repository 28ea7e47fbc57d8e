package ratelimit

import (
	"context"
	"testing"
	"time"

	"newsfuse/internal/content"
)

func TestWait_FirstCallDoesNotBlock(t *testing.T) {
	p := New(time.Second)

	start := time.Now()
	if err := p.Wait(context.Background(), content.SourceNews); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("first call should not block, took %v", elapsed)
	}
}

func TestWait_SecondCallSpacedByInterval(t *testing.T) {
	p := New(150 * time.Millisecond)
	ctx := context.Background()

	if err := p.Wait(ctx, content.SourceRSS); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	start := time.Now()
	if err := p.Wait(ctx, content.SourceRSS); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 100*time.Millisecond {
		t.Errorf("second call should wait out the interval, took %v", elapsed)
	}
}

func TestWait_SourceTypesAreIndependent(t *testing.T) {
	p := New(time.Second)
	ctx := context.Background()

	if err := p.Wait(ctx, content.SourceNews); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	start := time.Now()
	if err := p.Wait(ctx, content.SourceReddit); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("different source type should not share a bucket, took %v", elapsed)
	}
}

func TestWait_CanceledContext(t *testing.T) {
	p := New(time.Minute)
	ctx := context.Background()

	if err := p.Wait(ctx, content.SourceNews); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	if err := p.Wait(canceled, content.SourceNews); err == nil {
		t.Error("expected error from canceled context")
	}
}

func TestLastRequest(t *testing.T) {
	p := New(time.Second)

	if !p.LastRequest(content.SourceNews).IsZero() {
		t.Error("unused source should report zero time")
	}

	if err := p.Wait(context.Background(), content.SourceNews); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.LastRequest(content.SourceNews).IsZero() {
		t.Error("expected non-zero last-request time after Wait")
	}
}
