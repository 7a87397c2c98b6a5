package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	client := NewWithClient(server.URL, &http.Client{Jar: jar}, nil)
	return client, server
}

func TestWSToken(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/ws-token" {
			t.Errorf("path = %v, want /auth/ws-token", r.URL.Path)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("missing X-Request-ID header")
		}
		json.NewEncoder(w).Encode(map[string]string{"token": "tok-123"})
	}))

	token, err := client.WSToken(context.Background())
	if err != nil {
		t.Fatalf("WSToken() error: %v", err)
	}
	if token != "tok-123" {
		t.Errorf("token = %v, want tok-123", token)
	}
}

func TestWSToken_AuthFailure(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "session expired"})
	}))

	_, err := client.WSToken(context.Background())
	if err == nil {
		t.Fatal("WSToken() should fail on 401")
	}
	if !IsAuthError(err) {
		t.Errorf("error = %T, want *AuthError", err)
	}
	if !strings.Contains(err.Error(), "session expired") {
		t.Errorf("error message missing backend detail: %v", err)
	}
}

func TestWSToken_EmptyToken(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"token": ""})
	}))

	_, err := client.WSToken(context.Background())
	if !IsAuthError(err) {
		t.Errorf("empty token should be an auth error, got %v", err)
	}
}

func TestWSURL(t *testing.T) {
	client := NewWithClient("https://shadow.example.com", nil, nil)

	u, err := client.WSURL("tok-abc")
	if err != nil {
		t.Fatalf("WSURL() error: %v", err)
	}
	if u != "wss://shadow.example.com/ws/logs?token=tok-abc" {
		t.Errorf("WSURL() = %v", u)
	}

	plain := NewWithClient("http://localhost:8000", nil, nil)
	u, err = plain.WSURL("t")
	if err != nil {
		t.Fatalf("WSURL() error: %v", err)
	}
	if !strings.HasPrefix(u, "ws://") {
		t.Errorf("http base should map to ws scheme: %v", u)
	}
}

func TestLogin_SessionCookieReused(t *testing.T) {
	var sawCookie bool
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			// Path "/" keeps the jar from scoping the cookie to /auth
			http.SetCookie(w, &http.Cookie{Name: "session", Value: "s-1", Path: "/", HttpOnly: true})
			w.WriteHeader(http.StatusOK)
		case "/api/status":
			if c, err := r.Cookie("session"); err == nil && c.Value == "s-1" {
				sawCookie = true
			}
			json.NewEncoder(w).Encode(StatusSnapshot{ShadowEnabled: true, FSMState: "OBSERVING"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	ctx := context.Background()
	if err := client.Login(ctx, "u", "p"); err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	status, err := client.Status(ctx)
	if err != nil {
		t.Fatalf("Status() error: %v", err)
	}
	if !sawCookie {
		t.Error("session cookie was not attached to subsequent request")
	}
	if !status.ShadowEnabled || status.FSMState != "OBSERVING" {
		t.Errorf("status = %+v", status)
	}
}

func TestRecentBids(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]BidDecision{
			{CampaignID: "c-1", Keyword: "wireless mouse", OldBid: 0.42, NewBid: 0.47, Reason: "alpha_up"},
		})
	}))

	bids, err := client.RecentBids(context.Background())
	if err != nil {
		t.Fatalf("RecentBids() error: %v", err)
	}
	if len(bids) != 1 {
		t.Fatalf("len(bids) = %d, want 1", len(bids))
	}
	if bids[0].Keyword != "wireless mouse" || bids[0].NewBid != 0.47 {
		t.Errorf("bid = %+v", bids[0])
	}
}

func TestRequestError_ServerError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		json.NewEncoder(w).Encode(map[string]string{"code": "upstream_down", "message": "amazon api unreachable"})
	}))

	_, err := client.AlphaReport(context.Background())
	if err == nil {
		t.Fatal("AlphaReport() should fail on 502")
	}
	reqErr, ok := err.(*RequestError)
	if !ok {
		t.Fatalf("error = %T, want *RequestError", err)
	}
	if !reqErr.Retryable() {
		t.Error("502 should be retryable")
	}
	if reqErr.Code != "upstream_down" {
		t.Errorf("Code = %v, want upstream_down", reqErr.Code)
	}
	if IsAuthError(err) {
		t.Error("502 must not be classified as auth error")
	}
}

func TestSetShadowMode(t *testing.T) {
	var gotBody map[string]bool
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/shadow-mode" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
	}))

	if err := client.SetShadowMode(context.Background(), true); err != nil {
		t.Fatalf("SetShadowMode() error: %v", err)
	}
	if !gotBody["enabled"] {
		t.Errorf("body = %v, want enabled=true", gotBody)
	}
}
