package httpadapter

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/legalease-app/backend/internal/core/domain"
)

func (rt *Router) register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		rt.methodNotAllowed(w)
		return
	}

	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rt.writeError(w, r, domain.WrapError(domain.ErrInvalidInput, "decode register request", err))
		return
	}

	user, err := rt.registrar.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (rt *Router) login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		rt.methodNotAllowed(w)
		return
	}

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rt.writeError(w, r, domain.WrapError(domain.ErrInvalidInput, "decode login request", err))
		return
	}

	pair, err := rt.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

func (rt *Router) refresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		rt.methodNotAllowed(w)
		return
	}

	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rt.writeError(w, r, domain.WrapError(domain.ErrInvalidInput, "decode refresh request", err))
		return
	}
	if strings.TrimSpace(req.RefreshToken) == "" {
		rt.writeError(w, r, domain.WrapError(domain.ErrInvalidInput, "refresh", fmt.Errorf("refresh_token is required")))
		return
	}

	pair, err := rt.auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pair)
}
