package handlers

import (
	"net/http"

	"github.com/XBigRoad/banquet-master/auth"
	"github.com/XBigRoad/banquet-master/gate"
	"github.com/XBigRoad/banquet-master/httpx"
	"github.com/XBigRoad/banquet-master/i18n"
	"github.com/XBigRoad/banquet-master/internal/models"
	"github.com/XBigRoad/banquet-master/internal/policy"
	"github.com/XBigRoad/banquet-master/internal/services"
)

type AuthHandler struct {
	svc   *services.AuthService
	roles *policy.RoleGate
	sync  Syncer
}

func NewAuthHandler(svc *services.AuthService, roles *policy.RoleGate, sync Syncer) *AuthHandler {
	return &AuthHandler{svc: svc, roles: roles, sync: sync}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type meResponse struct {
	User          models.CurrentUser `json:"user"`
	RoleLabel     string             `json:"roleLabel"`
	CanViewPrices bool               `json:"canViewPrices"`
	Permissions   []gate.Permission  `json:"permissions"`
	Message       string             `json:"message,omitempty"`
}

func (h *AuthHandler) me(r *http.Request, u models.CurrentUser) meResponse {
	return meResponse{
		User:          u,
		RoleLabel:     policy.RoleLabel(u.Role, lang(r)),
		CanViewPrices: h.roles.CanViewPrices(r.Context(), u.Role),
		Permissions:   h.roles.Permissions(r.Context(), u.Role),
	}
}

// Login signs a user in and starts the remote sync.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decode(w, r, &req) {
		return
	}
	u, err := h.svc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	auth.CreateSession(w, u.ID)
	h.sync.Start()

	resp := h.me(r, u)
	resp.Message = i18n.T(lang(r), "login.welcome") + ", " + u.Name
	httpx.JSON(w, http.StatusOK, resp)
}

// Logout signs the current user out. The body must confirm it.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.svc.Logout(r.Context(), req.Confirmed); err != nil {
		writeError(w, r, err)
		return
	}
	auth.ClearSession(w)
	httpx.JSON(w, http.StatusOK, map[string]string{"message": i18n.T(lang(r), "logout.done")})
}

// Me describes the signed-in user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	u, ok := h.svc.Current()
	if !ok {
		fail(w, r, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, h.me(r, u))
}
