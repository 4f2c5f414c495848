package httpx

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestMemoryRateLimiterFixedWindow(t *testing.T) {
	rl := NewMemoryRateLimiter()
	defer rl.Close()

	for i := 0; i < 3; i++ {
		decision := rl.Allow("ip:10.0.0.1", 3, time.Minute)
		if !decision.allowed {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	decision := rl.Allow("ip:10.0.0.1", 3, time.Minute)
	if decision.allowed {
		t.Fatal("fourth request should be denied")
	}
	if decision.count != 3 {
		t.Fatalf("count = %d", decision.count)
	}

	// Other keys keep their own window.
	if d := rl.Allow("ip:10.0.0.2", 3, time.Minute); !d.allowed {
		t.Fatal("different key must not share the window")
	}
}

func TestMemoryRateLimiterWindowReset(t *testing.T) {
	rl := NewMemoryRateLimiter()
	defer rl.Close()

	if d := rl.Allow("user:1", 1, 30*time.Millisecond); !d.allowed {
		t.Fatal("first request should be allowed")
	}
	if d := rl.Allow("user:1", 1, 30*time.Millisecond); d.allowed {
		t.Fatal("second request should be denied")
	}
	time.Sleep(50 * time.Millisecond)
	if d := rl.Allow("user:1", 1, 30*time.Millisecond); !d.allowed {
		t.Fatal("request after window expiry should be allowed")
	}
}

func TestMemoryRateLimiterCleanup(t *testing.T) {
	rl := &memoryRateLimiter{entries: make(map[string]rateState), stopCh: make(chan struct{})}
	defer rl.Close()

	rl.Allow("user:1", 5, 10*time.Millisecond)
	rl.Allow("user:2", 5, time.Hour)
	rl.cleanup(time.Now().Add(time.Second))

	if _, ok := rl.entries["user:1"]; ok {
		t.Fatal("expired entry should be swept")
	}
	if _, ok := rl.entries["user:2"]; !ok {
		t.Fatal("live entry should survive the sweep")
	}
}

func TestRateLimitKeyIP(t *testing.T) {
	req := httptest.NewRequest("GET", "/productos", nil)
	req.RemoteAddr = "203.0.113.9:4411"
	if key := rateLimitKeyIP(req); key != "ip:203.0.113.9" {
		t.Fatalf("key = %q", key)
	}

	req.RemoteAddr = ""
	if key := rateLimitKeyIP(req); key != "ip:unknown" {
		t.Fatalf("key = %q", key)
	}
}

func TestRateMetricKey(t *testing.T) {
	cases := map[string]string{
		"user:42":        "user",
		"ip:203.0.113.9": "ip",
		"plain":          "plain",
		"":               "unknown",
	}
	for in, want := range cases {
		if got := rateMetricKey(in); got != want {
			t.Fatalf("rateMetricKey(%q) = %q, want %q", in, got, want)
		}
	}
}
