package main

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/xtding233/joystick-backend/internal/history"
	"github.com/xtding233/joystick-backend/internal/store"
)

const maxListLimit = 1000

type positionJSON struct {
	ID        int64     `json:"id"`
	X         int       `json:"x"`
	Y         int       `json:"y"`
	ClientID  string    `json:"client_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type positionsResp struct {
	Positions []positionJSON `json:"positions"`
	Stats     history.Stats  `json:"stats"`
	Err       string         `json:"err,omitempty"`
}

type countResp struct {
	Count int    `json:"count"`
	Err   string `json:"err,omitempty"`
}

func parseInt(r *http.Request, key string) (int, bool, string) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return 0, false, ""
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false, "invalid " + key
	}
	return v, true, ""
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// GET /positions?limit=N, newest first. Without limit the whole table is listed.
func handlePositions(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, ok, msg := parseInt(r, "limit")
		if msg != "" {
			http.Error(w, msg, http.StatusBadRequest)
			return
		}
		if ok && (limit <= 0 || limit > maxListLimit) {
			http.Error(w, "limit must be in 1.."+strconv.Itoa(maxListLimit), http.StatusBadRequest)
			return
		}

		recs, err := st.Recent(r.Context(), limit)
		if err != nil {
			writeJSON(w, http.StatusServiceUnavailable, positionsResp{Err: err.Error()})
			return
		}
		resp := positionsResp{Positions: make([]positionJSON, 0, len(recs))}
		entries := make([]history.Entry, 0, len(recs))
		for _, rec := range recs {
			resp.Positions = append(resp.Positions, positionJSON{
				ID:        rec.ID,
				X:         rec.X,
				Y:         rec.Y,
				ClientID:  rec.ClientID,
				CreatedAt: rec.CreatedAt,
			})
			entries = append(entries, history.Entry{X: rec.X, Y: rec.Y, CreatedAt: rec.CreatedAt})
		}
		resp.Stats = history.Summarize(entries)
		writeJSON(w, http.StatusOK, resp)
	}
}

// GET /count
func handleCount(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := st.Count(r.Context())
		if err != nil {
			writeJSON(w, http.StatusServiceUnavailable, countResp{Err: err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, countResp{Count: n})
	}
}

func newMux(st store.Store) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /positions", handlePositions(st))
	mux.HandleFunc("GET /count", handleCount(st))
	return mux
}
