package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

var errBusy = errors.New("busy")

func fastConfig(maxRetries int) Config {
	return Config{
		MaxRetries:      maxRetries,
		InitialInterval: time.Millisecond,
		MaxInterval:     2 * time.Millisecond,
		MaxElapsedTime:  time.Second,
	}
}

func isBusy(err error) bool { return errors.Is(err, errBusy) }

func TestRetrierRetriesOnRetryableError(t *testing.T) {
	r := New(fastConfig(2), isBusy, zerolog.Nop())

	attempts := 0
	err := r.Retry(context.Background(), func() error {
		attempts++
		if attempts < 2 {
			return errBusy
		}
		return nil
	})

	if err != nil {
		t.Fatalf("expected success after retry, got %v", err)
	}
	if attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts)
	}
}

func TestRetrierStopsOnPermanentError(t *testing.T) {
	r := New(DefaultConfig(), isBusy, zerolog.Nop())
	attempts := 0
	permanentErr := errors.New("permanent")

	err := r.Retry(context.Background(), func() error {
		attempts++
		return permanentErr
	})

	if !errors.Is(err, permanentErr) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", attempts)
	}
}

func TestRetrierGivesUpAfterMaxRetries(t *testing.T) {
	r := New(fastConfig(2), isBusy, zerolog.Nop())
	attempts := 0

	err := r.Retry(context.Background(), func() error {
		attempts++
		return errBusy
	})

	if !errors.Is(err, errBusy) {
		t.Fatalf("expected busy error, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestRetrierNilClassifier(t *testing.T) {
	r := New(fastConfig(5), nil, zerolog.Nop())
	attempts := 0

	_ = r.Retry(context.Background(), func() error {
		attempts++
		return errBusy
	})

	if attempts != 1 {
		t.Fatalf("expected no retries without a classifier, got %d attempts", attempts)
	}
}
