//go:build integration

package cache

import (
	"context"
	"os"
	"testing"
	"time"
)

func TestMongoCache_Integration(t *testing.T) {
	uri := os.Getenv("MUSEUM_MONGO_URI")
	if uri == "" {
		t.Skip("MUSEUM_MONGO_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	c, err := NewMongoCache(ctx, uri, "museum_test", "cache_test")
	if err != nil {
		t.Fatalf("NewMongoCache() error: %v", err)
	}
	defer c.Close()

	if err := c.Set(ctx, "collection:it", []byte("payload"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "collection:it")
	if err != nil || !hit || string(data) != "payload" {
		t.Fatalf("Get = %q, hit %v, err %v", data, hit, err)
	}

	c.now = func() time.Time { return time.Now().Add(time.Hour) }
	if _, hit, _ := c.Get(ctx, "collection:it"); hit {
		t.Error("expired entry returned as hit")
	}

	if err := c.Delete(ctx, "collection:it"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
}
