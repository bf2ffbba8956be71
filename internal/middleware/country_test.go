package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestResolveCountryHeaderWins(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("CF-IPCountry", "de")

	lookup := func(ip string) (string, error) { return "US", nil }
	if got := ResolveCountry(req, lookup); got != "DE" {
		t.Errorf("ResolveCountry = %q, want DE", got)
	}
}

func TestResolveCountryFallsBackToLookup(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "198.51.100.9:443"

	lookup := func(ip string) (string, error) {
		if ip != "198.51.100.9" {
			t.Errorf("lookup got ip %q", ip)
		}
		return "fr", nil
	}
	if got := ResolveCountry(req, lookup); got != "FR" {
		t.Errorf("ResolveCountry = %q, want FR", got)
	}
}

func TestResolveCountryLookupError(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	lookup := func(ip string) (string, error) { return "", errors.New("db closed") }
	if got := ResolveCountry(req, lookup); got != "" {
		t.Errorf("ResolveCountry = %q, want empty", got)
	}
}

func TestCountryMiddlewareAnnotatesContext(t *testing.T) {
	var seen string
	handler := Country(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = CountryFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Country-Code", "jp")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if seen != "JP" {
		t.Errorf("country in context = %q, want JP", seen)
	}
}

func TestClientIPPrefersForwardedFor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "127.0.0.1:8080"
	req.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.1")
	if got := ClientIP(req); got != "203.0.113.5" {
		t.Errorf("ClientIP = %q", got)
	}
}
