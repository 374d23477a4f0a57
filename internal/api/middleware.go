package api

import (
	"context"
	"net/http"
)

type contextKey int

const playerIDKey contextKey = 0

// playerIdentity reads the player identity the (out-of-scope) authentication
// shell is expected to have attached as X-Player-ID, and rejects the
// request with AuthFailure if it is missing. Every handler below reads the
// player ID back out of the request context rather than re-parsing the
// header.
func playerIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" || r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}
		playerID := r.Header.Get("X-Player-ID")
		if playerID == "" {
			writeError(w, http.StatusUnauthorized, "missing player identity")
			return
		}
		ctx := context.WithValue(r.Context(), playerIDKey, playerID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func playerIDFrom(r *http.Request) string {
	id, _ := r.Context().Value(playerIDKey).(string)
	return id
}

// corsMiddleware adds CORS headers so a browser-hosted game client on a
// different origin can call this API directly.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Player-ID")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
