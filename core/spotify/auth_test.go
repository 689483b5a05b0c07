package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestAuthenticator(t *testing.T) (*Authenticator, *int, func()) {
	t.Helper()

	tokenCalls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/api/token", func(w http.ResponseWriter, r *http.Request) {
		tokenCalls++
		r.ParseForm()

		w.Header().Set("Content-Type", "application/json")
		switch r.PostForm.Get("grant_type") {
		case "authorization_code":
			if r.PostForm.Get("code") != "good-code" {
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(map[string]string{"error": "invalid_grant"})
				return
			}
			json.NewEncoder(w).Encode(map[string]interface{}{
				"access_token":  "fresh-access",
				"token_type":    "Bearer",
				"refresh_token": "long-lived-refresh",
				"expires_in":    3600,
			})
		case "refresh_token":
			if r.PostForm.Get("refresh_token") == "revoked" {
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(map[string]string{"error": "invalid_grant"})
				return
			}
			resp := map[string]interface{}{
				"access_token": "renewed-access",
				"token_type":   "Bearer",
				"expires_in":   3600,
			}
			if r.PostForm.Get("refresh_token") == "rotating" {
				resp["refresh_token"] = "rotated-refresh"
			}
			json.NewEncoder(w).Encode(resp)
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	})
	mux.HandleFunc("/me", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"id": "host42"})
	})

	srv := httptest.NewServer(mux)

	api := NewClient()
	api.SetBaseURL(srv.URL)

	a := NewAuthenticator("cid", "secret", "http://localhost:8080/callback", api)
	a.SetEndpoint(srv.URL+"/authorize", srv.URL+"/api/token")

	return a, &tokenCalls, srv.Close
}

func TestBeginAuthorization(t *testing.T) {
	a, _, closeSrv := newTestAuthenticator(t)
	defer closeSrv()

	redirect, nonce, err := a.BeginAuthorization()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(nonce) < 16 {
		t.Errorf("expected nonce of at least 16 chars, got %d", len(nonce))
	}
	if !strings.Contains(redirect, "state="+nonce) {
		t.Error("redirect URL should carry the state nonce")
	}
	if !strings.Contains(redirect, "client_id=cid") {
		t.Error("redirect URL should carry the client id")
	}
	for _, scope := range []string{"playlist-modify-public", "playlist-read-private"} {
		if !strings.Contains(redirect, scope) {
			t.Errorf("redirect URL should request scope %s", scope)
		}
	}
}

func TestCompleteAuthorization(t *testing.T) {
	t.Run("State Mismatch Makes No Network Call", func(t *testing.T) {
		a, tokenCalls, closeSrv := newTestAuthenticator(t)
		defer closeSrv()

		cases := [][2]string{
			{"abc", "xyz"},
			{"", "xyz"},
			{"abc", ""},
		}
		for _, c := range cases {
			_, _, _, err := a.CompleteAuthorization(context.Background(), "good-code", c[0], c[1])
			if !errors.Is(err, ErrStateMismatch) {
				t.Errorf("state %q vs cookie %q: expected ErrStateMismatch, got %v", c[0], c[1], err)
			}
		}
		if *tokenCalls != 0 {
			t.Errorf("expected zero token endpoint calls, got %d", *tokenCalls)
		}
	})

	t.Run("Success", func(t *testing.T) {
		a, tokenCalls, closeSrv := newTestAuthenticator(t)
		defer closeSrv()

		access, refresh, hostID, err := a.CompleteAuthorization(context.Background(), "good-code", "s1", "s1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if access != "fresh-access" || refresh != "long-lived-refresh" {
			t.Errorf("unexpected token pair %s / %s", access, refresh)
		}
		if hostID != "host42" {
			t.Errorf("expected host42, got %s", hostID)
		}
		if *tokenCalls != 1 {
			t.Errorf("expected exactly one token exchange, got %d", *tokenCalls)
		}
	})

	t.Run("Exchange Failure", func(t *testing.T) {
		a, _, closeSrv := newTestAuthenticator(t)
		defer closeSrv()

		_, _, _, err := a.CompleteAuthorization(context.Background(), "bad-code", "s1", "s1")
		if !errors.Is(err, ErrAuthExchangeFailed) {
			t.Fatalf("expected ErrAuthExchangeFailed, got %v", err)
		}
	})
}

func TestRefresh(t *testing.T) {
	t.Run("Success Keeps Refresh Token", func(t *testing.T) {
		a, _, closeSrv := newTestAuthenticator(t)
		defer closeSrv()

		access, refresh, err := a.Refresh(context.Background(), "stable")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if access != "renewed-access" {
			t.Errorf("expected renewed access token, got %s", access)
		}
		if refresh != "stable" {
			t.Errorf("expected refresh token pass-through, got %s", refresh)
		}
	})

	t.Run("Provider Rotates Refresh Token", func(t *testing.T) {
		a, _, closeSrv := newTestAuthenticator(t)
		defer closeSrv()

		_, refresh, err := a.Refresh(context.Background(), "rotating")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if refresh != "rotated-refresh" {
			t.Errorf("expected rotated refresh token, got %s", refresh)
		}
	})

	t.Run("Failure", func(t *testing.T) {
		a, _, closeSrv := newTestAuthenticator(t)
		defer closeSrv()

		_, _, err := a.Refresh(context.Background(), "revoked")
		if !errors.Is(err, ErrRefreshFailed) {
			t.Fatalf("expected ErrRefreshFailed, got %v", err)
		}
	})
}
