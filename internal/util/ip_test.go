package util

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetClientIPPrefersForwardedFor(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.0.0.1:4321"
	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.2")
	r.Header.Set("X-Real-IP", "198.51.100.1")

	assert.Equal(t, "203.0.113.7", GetClientIP(r))
}

func TestGetClientIPFallsBackToRealIP(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.0.0.1:4321"
	r.Header.Set("X-Real-IP", "198.51.100.1")

	assert.Equal(t, "198.51.100.1", GetClientIP(r))
}

func TestGetClientIPUsesRemoteAddr(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.0.0.1:4321"

	assert.Equal(t, "10.0.0.1", GetClientIP(r))
}
