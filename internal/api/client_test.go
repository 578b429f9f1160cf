package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClient_AllTracks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/catalog/track/all/" {
			w.WriteHeader(404)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": []map[string]any{
				{"_id": 1, "name": "Chase", "author": "Alexander Nakarada", "duration_in_seconds": 205, "track_file": "https://example.com/chase.mp3"},
				{"_id": 2, "name": "Open Sea", "author": "Aeris", "duration_in_seconds": 212, "track_file": "https://example.com/sea.mp3"},
			},
		})
	}))
	defer server.Close()

	c := New(server.URL, nil)
	tracks, err := c.AllTracks(context.Background())
	if err != nil {
		t.Fatalf("AllTracks failed: %v", err)
	}
	if len(tracks) != 2 {
		t.Fatalf("expected 2 tracks, got %d", len(tracks))
	}
	if tracks[0].ID != 1 || tracks[0].Name != "Chase" || tracks[0].DurationSec != 205 {
		t.Errorf("unexpected first track: %+v", tracks[0])
	}
}

func TestClient_IssueTokens(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/user/token/" || r.Method != http.MethodPost {
			w.WriteHeader(404)
			return
		}
		var creds Credentials
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil || creds.Email == "" {
			w.WriteHeader(400)
			return
		}
		json.NewEncoder(w).Encode(TokenPair{Access: "a1", Refresh: "r1"})
	}))
	defer server.Close()

	c := New(server.URL, nil)
	pair, err := c.IssueTokens(context.Background(), Credentials{Email: "u@example.com", Password: "pw"})
	if err != nil {
		t.Fatalf("IssueTokens failed: %v", err)
	}
	if pair.Access != "a1" || pair.Refresh != "r1" {
		t.Errorf("unexpected pair: %+v", pair)
	}
}

func TestClient_FavoritesAuthorization(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		switch {
		case r.URL.Path == "/catalog/track/8/favorite/" && r.Method == http.MethodPost:
			json.NewEncoder(w).Encode(map[string]any{"success": true, "data": map[string]any{"_id": 8, "name": "Elysium"}})
		case r.URL.Path == "/catalog/track/8/favorite/" && r.Method == http.MethodDelete:
			w.WriteHeader(204)
		default:
			w.WriteHeader(404)
		}
	}))
	defer server.Close()

	c := New(server.URL, nil)
	track, err := c.AddFavorite(context.Background(), "tok-123", 8)
	if err != nil {
		t.Fatalf("AddFavorite failed: %v", err)
	}
	if track.ID != 8 {
		t.Errorf("expected confirmed track 8, got %d", track.ID)
	}
	if gotAuth != "Bearer tok-123" {
		t.Errorf("expected bearer header, got %q", gotAuth)
	}

	if err := c.RemoveFavorite(context.Background(), "tok-123", 8); err != nil {
		t.Fatalf("RemoveFavorite failed: %v", err)
	}
}

func TestClient_ErrorMapping(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/catalog/track/favorite/all/":
			w.WriteHeader(401)
			json.NewEncoder(w).Encode(map[string]string{"detail": "authentication credentials were not provided"})
		case "/user/token/refresh/":
			w.WriteHeader(401)
			json.NewEncoder(w).Encode(map[string]string{"code": "token_not_valid"})
		case "/catalog/selection/99/":
			w.WriteHeader(404)
			json.NewEncoder(w).Encode(map[string]string{"message": "selection not found"})
		default:
			w.WriteHeader(500)
		}
	}))
	defer server.Close()

	c := New(server.URL, nil)
	ctx := context.Background()

	_, err := c.FavoriteTracks(ctx, "stale")
	if !IsUnauthorized(err) {
		t.Errorf("expected unauthorized, got %v", err)
	}
	if IsTokenExpired(err) {
		t.Errorf("plain 401 must not classify as token expired")
	}

	_, err = c.RefreshToken(ctx, "stale")
	if !IsTokenExpired(err) {
		t.Errorf("expected token expired, got %v", err)
	}
	if !IsUnauthorized(err) {
		t.Errorf("token_not_valid with 401 should still be unauthorized")
	}

	_, err = c.SelectionByID(ctx, 99)
	if !IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr.Message != "selection not found" {
		t.Errorf("expected server-provided message, got %v", err)
	}

	_, err = c.AllTracks(ctx)
	if !IsServer(err) {
		t.Errorf("expected server error, got %v", err)
	}
}

func TestClient_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse all connections

	c := New(server.URL, nil)
	_, err := c.AllTracks(context.Background())
	if !IsNetwork(err) {
		t.Errorf("expected network error, got %v", err)
	}
}
