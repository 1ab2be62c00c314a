package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
)

func TestNewClientSuccess(t *testing.T) {
	s := miniredis.RunT(t)
	defer s.Close()

	ctx := context.Background()
	client, err := NewClient(ctx, DefaultConfig(fmt.Sprintf("redis://%s", s.Addr())), zerolog.Nop())
	if err != nil {
		t.Fatalf("expected client, got error: %v", err)
	}
	defer client.Close()

	if err := client.Ping(ctx).Err(); err != nil {
		t.Fatalf("ping failed: %v", err)
	}
}

func TestNewClientInvalidURL(t *testing.T) {
	_, err := NewClient(context.Background(), DefaultConfig("://bad-url"), zerolog.Nop())
	if err == nil {
		t.Fatalf("expected error for invalid URL")
	}
}

func TestNewClientPingFailure(t *testing.T) {
	s := miniredis.RunT(t)
	url := fmt.Sprintf("redis://%s", s.Addr())
	s.Close() // close before attempting to connect

	cfg := Config{URL: url, DialTimeout: 100 * time.Millisecond, ConnectAttempts: 1, RetryInterval: time.Millisecond}
	_, err := NewClient(context.Background(), cfg, zerolog.Nop())
	if err == nil {
		t.Fatalf("expected ping error when server is down")
	}
}

func TestNewClientWaitsForServer(t *testing.T) {
	s := miniredis.RunT(t)
	addr := s.Addr()
	s.Close()

	go func() {
		time.Sleep(50 * time.Millisecond)
		_ = s.Restart()
	}()

	cfg := Config{URL: "redis://" + addr, DialTimeout: 100 * time.Millisecond, ConnectAttempts: 10, RetryInterval: 20 * time.Millisecond}
	client, err := NewClient(context.Background(), cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("expected retry to reach the server, got %v", err)
	}
	client.Close()
}
