package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/campus-notice-collector/internal/cache"
)

func TestNop(t *testing.T) {
	var c cache.Cache = cache.Nop{}
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if _, ok, err := c.Get(ctx, "k"); ok || err != nil {
		t.Errorf("Expected miss, got hit=%v err=%v", ok, err)
	}
}

func TestNewRedisCache_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if _, err := cache.NewRedisCache(ctx, "127.0.0.1:1", "", 0, "test:"); err == nil {
		t.Error("Expected connection error")
	}
}
