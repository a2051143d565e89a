package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"unicode/utf8"

	"github.com/was-labs/webauth/internal/auth"
	"github.com/was-labs/webauth/internal/logging"
	"github.com/was-labs/webauth/internal/users"
)

// Handlers holds the route handlers and their dependencies.
type Handlers struct {
	auth       *auth.Service
	users      users.Repository
	cookieName string
	log        logging.Logger
}

// NewHandlers wires the handler set.
func NewHandlers(svc *auth.Service, repo users.Repository, cookieName string, log logging.Logger) *Handlers {
	return &Handlers{auth: svc, users: repo, cookieName: cookieName, log: log}
}

type registerRequest struct {
	UserName string `json:"userName"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

type loginRequest struct {
	UserName string `json:"userName"`
	Password string `json:"password"`
}

func (req *registerRequest) validate() error {
	if n := utf8.RuneCountInString(req.UserName); n < 4 || n > 20 {
		return fmt.Errorf("username length must be between 4 and 20")
	}
	if n := utf8.RuneCountInString(req.Password); n < 6 || n > 20 {
		return fmt.Errorf("password length must be between 6 and 20")
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return fmt.Errorf("invalid email address")
	}
	return nil
}

// Register handles POST /auth/register.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	err := h.auth.Register(r.Context(), auth.RegisterRequest{
		UserName: req.UserName,
		Password: req.Password,
		Email:    req.Email,
	})
	if err != nil {
		if errors.Is(err, auth.ErrUserAlreadyExists) {
			writeError(w, http.StatusConflict, "user already exists")
			return
		}
		h.log.Error(r.Context(), "register failed", "err", err)
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}

	writeSuccess(w, nil)
}

// Login handles POST /auth/login.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if req.UserName == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	res, err := h.auth.Login(r.Context(), req.UserName, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid username or password")
			return
		}
		h.log.Error(r.Context(), "login failed", "err", err)
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}

	h.setTokenCookie(w, res.Token, int(h.auth.TokenTTL().Seconds()))
	writeSuccess(w, res)
}

// Logout handles POST /auth/logout.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	ident := IdentityFromContext(r.Context())

	if err := h.auth.Logout(r.Context(), ident); err != nil {
		if errors.Is(err, auth.ErrUnauthenticated) {
			writeError(w, http.StatusUnauthorized, "unauthenticated")
			return
		}
		h.log.Error(r.Context(), "logout failed", "err", err)
		writeError(w, http.StatusInternalServerError, "logout failed")
		return
	}

	h.clearTokenCookie(w)
	writeSuccess(w, nil)
}

// Home handles GET /user/home, the one public route.
func (h *Handlers) Home(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, "hello")
}

// UserForm handles GET /user/form.
func (h *Handlers) UserForm(w http.ResponseWriter, r *http.Request) {
	views, err := h.users.ListForm(r.Context())
	if err != nil {
		h.log.Error(r.Context(), "user form listing failed", "err", err)
		writeError(w, http.StatusInternalServerError, "listing failed")
		return
	}
	writeSuccess(w, views)
}

func (h *Handlers) setTokenCookie(w http.ResponseWriter, tok string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    tok,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *Handlers) clearTokenCookie(w http.ResponseWriter) {
	// MaxAge < 0 emits "Max-Age=0", which tells the client to drop the
	// cookie immediately.
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}
