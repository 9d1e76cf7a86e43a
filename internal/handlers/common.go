package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/XBigRoad/banquet-master/httpx"
	"github.com/XBigRoad/banquet-master/i18n"
	"github.com/XBigRoad/banquet-master/internal/models"
	"github.com/XBigRoad/banquet-master/internal/remote"
	"github.com/XBigRoad/banquet-master/internal/services"
	"github.com/XBigRoad/banquet-master/internal/store"
)

// Store is the planner document as the handlers use it.
type Store interface {
	Snapshot() models.AppState
	Mutate(ctx context.Context, cmd store.Command) error
	Now() time.Time
	Export() ([]byte, error)
	Import(ctx context.Context, raw []byte) error
	Reset(ctx context.Context) error
}

// Syncer is the remote mirror as the handlers use it.
type Syncer interface {
	Start()
	Status() remote.Status
	PushNow(ctx context.Context) error
	PullNow(ctx context.Context) (bool, error)
}

type confirmRequest struct {
	Confirmed bool `json:"confirmed"`
}

func lang(r *http.Request) string { return i18n.LangFromContext(r.Context()) }

// fail writes an error body whose message is the translation of code.
func fail(w http.ResponseWriter, r *http.Request, status int, code string, details any) {
	httpx.JSONError(w, status, code, i18n.T(lang(r), code), details)
}

// writeError maps domain errors onto HTTP answers.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *store.ValidationError
	switch {
	case errors.As(err, &verr):
		fail(w, r, http.StatusBadRequest, "validation_failed", verr.Violations)
	case errors.Is(err, store.ErrNotFound):
		fail(w, r, http.StatusNotFound, "not_found", nil)
	case errors.Is(err, store.ErrImportParse):
		fail(w, r, http.StatusBadRequest, "import.parse_failed", nil)
	case errors.Is(err, services.ErrMissingCredentials):
		fail(w, r, http.StatusBadRequest, "login.missing", nil)
	case errors.Is(err, services.ErrNotFound):
		fail(w, r, http.StatusUnauthorized, "login.unknown_user", nil)
	case errors.Is(err, services.ErrInvalidCredential):
		fail(w, r, http.StatusUnauthorized, "login.bad_password", nil)
	case errors.Is(err, services.ErrConfirmationRequired):
		fail(w, r, http.StatusBadRequest, "logout.confirm", nil)
	case errors.Is(err, remote.ErrInFlight):
		fail(w, r, http.StatusConflict, "sync.in_flight", nil)
	case errors.Is(err, remote.ErrNotConfigured):
		fail(w, r, http.StatusServiceUnavailable, "sync.not_configured", nil)
	default:
		log.Printf("%s %s: %v", r.Method, r.URL.Path, err)
		fail(w, r, http.StatusInternalServerError, "server_error", nil)
	}
}

// decode reads the JSON body into dst, answering 400 on failure.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := httpx.Decode(w, r, dst); err != nil {
		badBody(w, r, err)
		return false
	}
	return true
}

func badBody(w http.ResponseWriter, r *http.Request, err error) {
	if httpx.TooLarge(err) {
		fail(w, r, http.StatusRequestEntityTooLarge, "too_large", nil)
		return
	}
	fail(w, r, http.StatusBadRequest, "invalid_json", nil)
}

// currentRole is the role of the signed-in user, empty when nobody is.
func currentRole(st *models.AppState) models.Role {
	if st.CurrentUser == nil {
		return ""
	}
	return st.CurrentUser.Role
}
