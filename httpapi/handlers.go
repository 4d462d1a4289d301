package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/skillswaphq/authkit"
	"github.com/skillswaphq/authkit/metrics/export/internaldefs"
	"github.com/skillswaphq/authkit/middleware"
)

// Server exposes the session manager over HTTP.
type Server struct {
	manager *authkit.Manager
}

// NewServer binds the HTTP surface to a built session manager.
func NewServer(manager *authkit.Manager) *Server {
	return &Server{manager: manager}
}

// Router assembles the full route tree, guard middleware included.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	api := r.PathPrefix("/api/auth").Subrouter()
	api.HandleFunc("/register", s.handleRegister).Methods(http.MethodPost)
	api.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)
	api.HandleFunc("/refresh", s.handleRefresh).Methods(http.MethodPost)

	protected := r.PathPrefix("/api/auth").Subrouter()
	protected.Use(middleware.Guard(s.manager))
	protected.HandleFunc("/logout", s.handleLogout).Methods(http.MethodPost)
	protected.HandleFunc("/logout-all", s.handleLogoutAll).Methods(http.MethodPost)
	protected.HandleFunc("/password", s.handleChangePassword).Methods(http.MethodPost)
	protected.HandleFunc("/me", s.handleMe).Methods(http.MethodGet)

	admin := r.PathPrefix("/api/auth").Subrouter()
	admin.Use(middleware.Guard(s.manager), middleware.RequireRole(authkit.RoleAdmin))
	admin.HandleFunc("/stats", s.handleStats).Methods(http.MethodGet)

	return r
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type logoutRequest struct {
	RefreshToken string `json:"refreshToken,omitempty"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type tokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
	TokenType    string `json:"tokenType"`
	ExpiresIn    int64  `json:"expiresIn"`
}

type userResponse struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	Role        string     `json:"role"`
	Verified    bool       `json:"verified"`
	CreatedAt   time.Time  `json:"createdAt"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
}

func toUserResponse(u *authkit.User) userResponse {
	resp := userResponse{
		ID:        u.ID,
		Email:     u.Email,
		Role:      string(u.Role),
		Verified:  u.Verified,
		CreatedAt: u.CreatedAt,
	}
	if !u.LastLoginAt.IsZero() {
		t := u.LastLoginAt
		resp.LastLoginAt = &t
	}
	return resp
}

func toTokenResponse(pair *authkit.TokenPair) tokenResponse {
	return tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
		ExpiresIn:    pair.ExpiresIn,
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "Request body must be valid JSON")
		return false
	}
	return true
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	role := authkit.Role(req.Role)
	user, pair, err := s.manager.Register(r.Context(), req.Email, req.Password, role)
	if err != nil {
		writeManagerError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"user":    toUserResponse(user),
		"tokens":  toTokenResponse(pair),
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	user, pair, err := s.manager.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeManagerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user":    toUserResponse(user),
		"tokens":  toTokenResponse(pair),
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !decodeBody(w, r, &req) {
		return
	}
	pair, err := s.manager.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeManagerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"tokens":  toTokenResponse(pair),
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	var req logoutRequest
	if r.ContentLength > 0 && !decodeBody(w, r, &req) {
		return
	}
	raw, _ := middleware.RawTokenFromContext(r.Context())
	if err := s.manager.Logout(r.Context(), raw, req.RefreshToken); err != nil {
		writeManagerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Logged out"})
}

func (s *Server) handleLogoutAll(w http.ResponseWriter, r *http.Request) {
	raw, _ := middleware.RawTokenFromContext(r.Context())
	if err := s.manager.LogoutAll(r.Context(), raw); err != nil {
		writeManagerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "All sessions terminated"})
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if !decodeBody(w, r, &req) {
		return
	}
	raw, _ := middleware.RawTokenFromContext(r.Context())
	if err := s.manager.ChangePassword(r.Context(), raw, req.CurrentPassword, req.NewPassword); err != nil {
		writeManagerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Password changed"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "AUTHENTICATION_REQUIRED", "Authentication required")
		return
	}
	user, err := s.manager.UserByID(r.Context(), identity.UserID)
	if err != nil {
		writeManagerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "user": toUserResponse(user)})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	snap := s.manager.MetricsSnapshot()
	counters := make(map[string]uint64, len(internaldefs.CounterDefs))
	for _, def := range internaldefs.CounterDefs {
		counters[def.Name] = snap.Counters[def.ID]
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"counters":     counters,
		"auditDropped": s.manager.AuditDropped(),
	})
}
