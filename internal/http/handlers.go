package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"nutridash/internal/core"
	"nutridash/internal/dashboard"
	"nutridash/internal/log"
)

// Access states mirroring the dashboard lifecycle: the client is
// either fully served or shown one of a small set of blocking states.
const (
	stateGranted      = "granted"
	stateDenied       = "denied"
	stateNoIdentifier = "no_identifier"
)

type stateResponse struct {
	State string              `json:"state"`
	Data  *dashboard.Snapshot `json:"data,omitempty"`
}

// viewerID reads the identifier query parameter. Numeric ids are the
// common case but any non-empty string is accepted.
func viewerID(r *http.Request) string {
	return strings.TrimSpace(r.URL.Query().Get("id"))
}

// handleDashboard serves the full dashboard snapshot.
// GET /api/dashboard?id=<user id>
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	id := viewerID(r)
	if id == "" {
		writeJSON(w, http.StatusBadRequest, stateResponse{State: stateNoIdentifier})
		return
	}

	snap, err := s.snapshot(r.Context(), id)
	if err != nil {
		s.writeDenied(r.Context(), w, id, err)
		return
	}

	writeJSON(w, http.StatusOK, stateResponse{State: stateGranted, Data: snap})
}

// handleLeaderboard serves only the ranked board from the snapshot.
// GET /api/leaderboard?id=<user id>
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	id := viewerID(r)
	if id == "" {
		writeJSON(w, http.StatusBadRequest, stateResponse{State: stateNoIdentifier})
		return
	}

	snap, err := s.snapshot(r.Context(), id)
	if err != nil {
		s.writeDenied(r.Context(), w, id, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		State       string                  `json:"state"`
		Period      dashboard.PeriodView    `json:"period"`
		Leaderboard []core.LeaderboardEntry `json:"leaderboard"`
	}{
		State:       stateGranted,
		Period:      snap.Period,
		Leaderboard: snap.Leaderboard,
	})
}

// handleSaveProfile applies profile edits with the two-stage write
// (full update, retry without avatar on failure).
// POST /api/profile?id=<user id>
func (s *Server) handleSaveProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	id := viewerID(r)
	if id == "" {
		writeJSON(w, http.StatusBadRequest, stateResponse{State: stateNoIdentifier})
		return
	}

	var body core.UserProfile
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.logger.ErrorContext(r.Context(), "Profile decode error", "error", err)
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 7*time.Second)
	defer cancel()

	avatarSaved, err := s.svc.Session(id).SaveProfile(ctx, body)
	if err != nil {
		s.writeDenied(r.Context(), w, id, err)
		return
	}

	// The saved goals may change period targets; drop the cached view.
	s.snapshotCache.Delete(id)

	writeJSON(w, http.StatusOK, struct {
		State       string `json:"state"`
		AvatarSaved bool   `json:"avatar_saved"`
	}{State: stateGranted, AvatarSaved: avatarSaved})
}

// snapshot returns the cached view for id or runs a full refresh.
func (s *Server) snapshot(ctx context.Context, id string) (*dashboard.Snapshot, error) {
	if snap, found := s.snapshotCache.Get(id); found {
		s.logger.DebugContext(ctx, "Snapshot cache hit", log.FieldUserID, id)
		return snap, nil
	}

	cctx, cancel := context.WithTimeout(ctx, 7*time.Second)
	defer cancel()

	snap, err := s.svc.Session(id).Refresh(cctx)
	if err != nil {
		return nil, err
	}
	s.snapshotCache.Set(id, snap)
	return snap, nil
}

func (s *Server) writeDenied(ctx context.Context, w http.ResponseWriter, id string, err error) {
	if errors.Is(err, dashboard.ErrAccessDenied) {
		s.logger.WarnContext(ctx, "Access denied", log.FieldUserID, id, "error", err)
		writeJSON(w, http.StatusNotFound, stateResponse{State: stateDenied})
		return
	}
	s.logger.ErrorContext(ctx, "Dashboard refresh error", log.FieldUserID, id, "error", err)
	writeJSON(w, http.StatusInternalServerError, stateResponse{State: stateDenied})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Response encode error", "error", err)
	}
}
