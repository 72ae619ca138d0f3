package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestNilLimiterAdmitsEverything(t *testing.T) {
	var l *Limiter
	if got := l.Allow(context.Background(), "vendor-1"); !got.Allowed {
		t.Fatal("nil limiter rejected a request")
	}
}

func TestParseTokens(t *testing.T) {
	cases := []struct {
		in   any
		want int
	}{
		{int64(7), 7},
		{"3.5", 3},
		{"12", 12},
		{"garbage", 0},
		{nil, 0},
	}
	for _, tc := range cases {
		if got := parseTokens(tc.in); got != tc.want {
			t.Fatalf("parseTokens(%v) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestBucketTTL(t *testing.T) {
	if ttl := bucketTTL(100, 10); ttl != time.Minute {
		t.Fatalf("fast bucket ttl = %v, want floor of 1m", ttl)
	}
	if ttl := bucketTTL(0.1, 30); ttl != 10*time.Minute {
		t.Fatalf("slow bucket ttl = %v, want 10m", ttl)
	}
}
