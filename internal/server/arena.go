// Package server exposes the arena over a small JSON status API. The
// heavy lifting lives in the service layer; handlers only translate HTTP
// in and out.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"

	"octane-arena/internal/domain"
	"octane-arena/internal/middleware"
	"octane-arena/internal/registry"
	"octane-arena/internal/service"

	pie "github.com/elliotchance/pie/v2"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

type ArenaServer struct {
	svc    *service.Matchmaking
	logger zerolog.Logger
}

func NewArenaServer(svc *service.Matchmaking, logger zerolog.Logger) *ArenaServer {
	return &ArenaServer{svc: svc, logger: logger}
}

// Handler builds the routed, CORS-wrapped handler chain.
func (s *ArenaServer) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/players", s.handleRegister)
	mux.HandleFunc("GET /v1/players/{id}", s.handleProfile)
	mux.HandleFunc("GET /v1/leaderboard", s.handleLeaderboard)
	mux.HandleFunc("GET /v1/catalog", s.handleCatalog)
	mux.HandleFunc("GET /v1/queues", s.handleQueues)
	mux.HandleFunc("POST /v1/queues/join", s.handleJoinQueue)
	mux.HandleFunc("POST /v1/queues/leave", s.handleLeaveQueue)
	mux.HandleFunc("GET /v1/matches", s.handleMatches)
	mux.HandleFunc("GET /v1/matches/{id}", s.handleMatch)
	mux.HandleFunc("POST /v1/matches/{id}/result", s.handleResult)

	handler := middleware.RequestID(s.logger)(mux)
	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
	}).Handler(handler)
}

type registerRequest struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Platform    string `json:"platform"`
	Region      string `json:"region"`
}

func (s *ArenaServer) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ID == "" || req.DisplayName == "" {
		s.writeError(w, r, http.StatusBadRequest, "id and display_name are required")
		return
	}

	player, err := s.svc.RegisterPlayer(r.Context(), domain.PlayerID(req.ID), registry.Profile{
		DisplayName: req.DisplayName,
		Platform:    req.Platform,
		Region:      domain.Region(req.Region),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, player)
}

func (s *ArenaServer) handleProfile(w http.ResponseWriter, r *http.Request) {
	player, err := s.svc.Profile(r.Context(), domain.PlayerID(r.PathValue("id")))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, player)
}

type leaderboardRow struct {
	Position    int    `json:"position"`
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Rating      int    `json:"rating"`
	Rank        string `json:"rank"`
	Wins        int    `json:"wins"`
	Losses      int    `json:"losses"`
}

func (s *ArenaServer) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	n := 0
	if raw := r.URL.Query().Get("n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			s.writeError(w, r, http.StatusBadRequest, "n must be an integer")
			return
		}
		n = parsed
	}

	players := s.svc.Leaderboard(r.Context(), n)
	rows := pie.Map(players, func(p domain.Player) leaderboardRow {
		return leaderboardRow{
			ID:          string(p.ID),
			DisplayName: p.DisplayName,
			Rating:      p.Rating,
			Rank:        p.Rank,
			Wins:        p.Stats.Wins,
			Losses:      p.Stats.Losses,
		}
	})
	for i := range rows {
		rows[i].Position = i + 1
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"leaderboard": rows})
}

// handleCatalog publishes the supported regions, playlists, team sizes and
// arena pools so clients never hardcode them.
func (s *ArenaServer) handleCatalog(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"regions": domain.Regions,
		"modes":   domain.Modes,
		"team_sizes": pie.Map(domain.TeamSizes, func(t domain.TeamSize) string {
			return t.String()
		}),
		"default_map": domain.DefaultMap,
		"maps":        domain.MapPool,
	})
}

type queueRow struct {
	Queue   string `json:"queue"`
	Waiting int    `json:"waiting"`
}

func (s *ArenaServer) handleQueues(w http.ResponseWriter, r *http.Request) {
	counts := s.svc.QueueSnapshot(r.Context())
	rows := make([]queueRow, 0, len(counts))
	for key, n := range counts {
		rows = append(rows, queueRow{Queue: key.String(), Waiting: n})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Queue < rows[j].Queue })
	s.writeJSON(w, http.StatusOK, map[string]any{"queues": rows})
}

type joinQueueRequest struct {
	PlayerID string `json:"player_id"`
	Region   string `json:"region"`
	Mode     string `json:"mode"`
	TeamSize string `json:"team_size"`
}

func (s *ArenaServer) handleJoinQueue(w http.ResponseWriter, r *http.Request) {
	var req joinQueueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	size, err := domain.ParseTeamSize(req.TeamSize)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	key := domain.QueueKey{
		Region:   domain.Region(req.Region),
		Mode:     domain.Mode(req.Mode),
		TeamSize: size,
	}
	depth, err := s.svc.Enqueue(r.Context(), domain.PlayerID(req.PlayerID), key)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"queue":   key.String(),
		"waiting": depth,
	})
}

type leaveQueueRequest struct {
	PlayerID string `json:"player_id"`
}

func (s *ArenaServer) handleLeaveQueue(w http.ResponseWriter, r *http.Request) {
	var req leaveQueueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	removed := s.svc.Leave(r.Context(), domain.PlayerID(req.PlayerID))
	s.writeJSON(w, http.StatusOK, map[string]any{"removed": removed})
}

func (s *ArenaServer) handleMatches(w http.ResponseWriter, r *http.Request) {
	status := domain.MatchStatus(r.URL.Query().Get("status"))
	switch status {
	case "", domain.MatchActive, domain.MatchCompleted:
	default:
		s.writeError(w, r, http.StatusBadRequest, `status must be "Active" or "Completed"`)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"matches": s.svc.Matches(r.Context(), status)})
}

func (s *ArenaServer) handleMatch(w http.ResponseWriter, r *http.Request) {
	m, err := s.svc.Match(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, m)
}

type statLineRequest struct {
	PlayerID string `json:"player_id"`
	Goals    int    `json:"goals"`
	Assists  int    `json:"assists"`
	Saves    int    `json:"saves"`
}

type resultRequest struct {
	Winner string            `json:"winner"`
	Stats  []statLineRequest `json:"stats"`
}

func (s *ArenaServer) handleResult(w http.ResponseWriter, r *http.Request) {
	var req resultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Winner != string(domain.TeamA) && req.Winner != string(domain.TeamB) {
		s.writeError(w, r, http.StatusBadRequest, `winner must be "A" or "B"`)
		return
	}

	stats := pie.Map(req.Stats, func(line statLineRequest) service.StatLine {
		return service.StatLine{
			PlayerID: domain.PlayerID(line.PlayerID),
			Goals:    line.Goals,
			Assists:  line.Assists,
			Saves:    line.Saves,
		}
	})

	m, err := s.svc.ReportResult(r.Context(), r.PathValue("id"), domain.Team(req.Winner), stats)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, m)
}

func (s *ArenaServer) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotRegistered), errors.Is(err, domain.ErrUnknownMatch):
		s.writeError(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrAlreadyRegistered), errors.Is(err, domain.ErrAlreadyCompleted):
		s.writeError(w, r, http.StatusConflict, err.Error())
	default:
		s.logger.Error().
			Err(err).
			Str("request_id", middleware.GetRequestID(r.Context())).
			Msg("request failed")
		s.writeError(w, r, http.StatusBadRequest, err.Error())
	}
}

func (s *ArenaServer) writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

func (s *ArenaServer) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error().Err(err).Msg("failed to encode response")
	}
}
