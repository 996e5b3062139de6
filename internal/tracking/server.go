package tracking

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"greetops/internal/adapters/persistence/repositories"
	"greetops/internal/config"
	"greetops/internal/core/domain"
	"greetops/internal/pkg/jwt"

	"github.com/gorilla/websocket"
	"gorm.io/gorm"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Server serves the live tracking websocket endpoint on its own listener,
// separate from the REST API.
type Server struct {
	hub         *Hub
	missionRepo repositories.MissionRepository
	cfg         *config.Config
	httpSrv     *http.Server
}

// NewServer creates a tracking server
func NewServer(hub *Hub, missionRepo repositories.MissionRepository, cfg *config.Config) *Server {
	s := &Server{
		hub:         hub,
		missionRepo: missionRepo,
		cfg:         cfg,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws/missions/", s.handleMission)

	s.httpSrv = &http.Server{
		Addr:    ":" + cfg.TrackingPort,
		Handler: mux,
	}
	return s
}

// ListenAndServe blocks serving websocket upgrades
func (s *Server) ListenAndServe() error {
	log.Printf("📡 Tracking server listening on port %s", s.cfg.TrackingPort)
	return s.httpSrv.ListenAndServe()
}

// Shutdown gracefully stops the listener
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

// handleMission upgrades /ws/missions/{id}?token=... after verifying the
// token holder may view the mission.
func (s *Server) handleMission(w http.ResponseWriter, r *http.Request) {
	idStr := strings.TrimPrefix(r.URL.Path, "/ws/missions/")
	missionID, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		http.Error(w, "invalid mission id", http.StatusBadRequest)
		return
	}

	token := r.URL.Query().Get("token")
	if token == "" {
		token = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	}
	claims, err := jwt.ValidateAccessToken(token, s.cfg.JWT.Secret)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	mission, err := s.missionRepo.GetByID(r.Context(), uint(missionID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, "mission not found", http.StatusNotFound)
			return
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	actor := domain.Actor{UserID: claims.UserID, Role: domain.Role(claims.Role)}
	allowed := actor.IsAdmin() ||
		mission.ClientID == actor.UserID ||
		(mission.AgentID != nil && *mission.AgentID == actor.UserID)
	if !allowed {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("❌ WebSocket upgrade failed: %v", err)
		return
	}

	client := NewClient(s.hub, conn, uint(missionID), claims.UserID)
	log.Printf("📡 Tracking subscriber joined mission #%d (user #%d)", missionID, claims.UserID)
	client.Run()
}
