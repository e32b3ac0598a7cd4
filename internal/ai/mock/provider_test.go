package mock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/logsage/logsage/internal/ai"
	"github.com/logsage/logsage/pkg/models"
)

func TestNew_ReturnsCannedAugmentation(t *testing.T) {
	p := New()

	aug, err := p.Augment(context.Background(), models.AugmentRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if aug.Severity != models.SeverityMedium {
		t.Errorf("unexpected severity %s", aug.Severity)
	}
	if p.Calls != 1 {
		t.Errorf("expected 1 recorded call, got %d", p.Calls)
	}
	if p.Name() != "mock" {
		t.Errorf("unexpected name %q", p.Name())
	}
}

func TestNewFailing(t *testing.T) {
	sentinel := errors.New("boom")
	p := NewFailing(sentinel)

	_, err := p.Augment(context.Background(), models.AugmentRequest{})
	if !errors.Is(err, sentinel) {
		t.Errorf("expected wrapped sentinel, got %v", err)
	}
}

func TestNewTimeout_BlocksUntilContextExpires(t *testing.T) {
	p := NewTimeout()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := p.Augment(ctx, models.AugmentRequest{})
	if !errors.Is(err, ai.ErrInferenceTimeout) {
		t.Errorf("expected ErrInferenceTimeout, got %v", err)
	}
	if time.Since(start) < 10*time.Millisecond {
		t.Error("expected Augment to block until the deadline")
	}
}
