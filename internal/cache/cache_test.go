package cache

import (
	"testing"
	"time"
)

func TestCache_SetGet(t *testing.T) {
	c := New(true)
	etag := c.Set("k", []byte("v"), time.Minute)

	data, gotETag, ok := c.Get("k")
	if !ok {
		t.Fatal("expected hit")
	}
	if string(data) != "v" {
		t.Errorf("data: got %q", data)
	}
	if gotETag != etag {
		t.Errorf("etag: got %q, want %q", gotETag, etag)
	}
}

func TestCache_Expiry(t *testing.T) {
	c := New(true)
	c.Set("k", []byte("v"), -time.Second)
	if _, _, ok := c.Get("k"); ok {
		t.Error("expected expired entry to miss")
	}
}

func TestCache_Disabled(t *testing.T) {
	c := New(false)
	etag := c.Set("k", []byte("v"), time.Minute)
	if etag == "" {
		t.Error("disabled cache must still compute an ETag")
	}
	if _, _, ok := c.Get("k"); ok {
		t.Error("disabled cache must never hit")
	}
}

func TestCheckETagMatch(t *testing.T) {
	etag := ComputeETag([]byte("v"))
	if !CheckETagMatch(etag, etag) {
		t.Error("exact match failed")
	}
	if !CheckETagMatch("*", etag) {
		t.Error("wildcard match failed")
	}
	if CheckETagMatch("", etag) {
		t.Error("empty header matched")
	}
	if CheckETagMatch(`W/"other"`, etag) {
		t.Error("different etag matched")
	}
}
