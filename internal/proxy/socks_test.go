package proxy

import (
	"net/http"
	"testing"
	"time"
)

func TestNewClientDirect(t *testing.T) {
	c, err := NewClient("", 5*time.Second)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if c.Transport != nil {
		t.Fatalf("direct client should use the default transport, got %T", c.Transport)
	}
	if c.Timeout != 5*time.Second {
		t.Fatalf("timeout = %v", c.Timeout)
	}
}

func TestNewClientSocks(t *testing.T) {
	c, err := NewClient("127.0.0.1:1080", time.Minute)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, ok := c.Transport.(*http.Transport); !ok {
		t.Fatalf("expected *http.Transport, got %T", c.Transport)
	}
}
