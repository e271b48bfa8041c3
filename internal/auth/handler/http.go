// Package handler exposes the auth service over HTTP JSON endpoints.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"todoapp/internal/auth/service"
	"todoapp/internal/httpapi"
	"todoapp/internal/server/middleware"
)

var validate = validator.New()

// AuthHandler serves /register, /login, /refresh, /logout, and /logout/all.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler returns an AuthHandler backed by the given service.
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type registerRequest struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
}

type loginRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required"`
	RememberMe bool   `json:"rememberMe"`
	DeviceID   string `json:"deviceId"`
}

type refreshRequest struct {
	Email        string `json:"email" validate:"required,email"`
	DeviceID     string `json:"deviceId" validate:"required"`
	RefreshToken string `json:"refreshToken"`
}

type logoutRequest struct {
	Email    string `json:"email" validate:"required,email"`
	DeviceID string `json:"deviceId" validate:"required"`
}

type logoutAllRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type tokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// Register handles POST /register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decode(r, &req); err != nil {
		httpapi.WriteError(w, err)
		return
	}
	user, err := h.auth.Register(r.Context(), req.FirstName, req.LastName, req.Email, req.Password)
	if err != nil {
		httpapi.WriteError(w, mapServiceError(err))
		return
	}
	httpapi.WriteJSON(w, http.StatusCreated, map[string]string{"id": user.ID, "email": user.Email})
}

// Login handles POST /login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(r, &req); err != nil {
		httpapi.WriteError(w, err)
		return
	}
	pair, err := h.auth.Login(r.Context(), req.Email, req.Password, req.RememberMe, req.DeviceID)
	if err != nil {
		httpapi.WriteError(w, mapServiceError(err))
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// Refresh handles POST /refresh. A missing refresh token is 401; a token that
// does not match the device's current session is 403.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decode(r, &req); err != nil {
		httpapi.WriteError(w, err)
		return
	}
	if req.RefreshToken == "" {
		httpapi.WriteError(w, httpapi.Unauthorized("no refresh token presented"))
		return
	}
	pair, err := h.auth.Refresh(r.Context(), req.Email, req.DeviceID, req.RefreshToken)
	if err != nil {
		httpapi.WriteError(w, mapServiceError(err))
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// Logout handles POST /logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req logoutRequest
	if err := decode(r, &req); err != nil {
		httpapi.WriteError(w, err)
		return
	}
	if err := h.auth.Logout(r.Context(), req.Email, req.DeviceID); err != nil {
		httpapi.WriteError(w, mapServiceError(err))
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// LogoutAll handles POST /logout/all. The route is mounted behind the auth
// gate; on top of that the bearer token's principal must be the target email,
// so one user cannot revoke another's sessions.
func (h *AuthHandler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	var req logoutAllRequest
	if err := decode(r, &req); err != nil {
		httpapi.WriteError(w, err)
		return
	}
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		httpapi.WriteError(w, httpapi.Unauthorized("Unauthorized"))
		return
	}
	if !strings.EqualFold(principal, req.Email) {
		httpapi.WriteError(w, httpapi.Forbidden("Forbidden"))
		return
	}
	if err := h.auth.LogoutAll(r.Context(), req.Email); err != nil {
		httpapi.WriteError(w, mapServiceError(err))
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, map[string]string{"message": "logged out of all devices"})
}

// decode unmarshals the JSON body into req and validates its tags.
func decode(r *http.Request, req interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		return httpapi.BadRequest("request body must be valid JSON")
	}
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			field := verrs[0].Field()
			return httpapi.BadRequest(strings.ToLower(field[:1]) + field[1:] + " is missing or invalid")
		}
		return httpapi.BadRequest("missing or invalid fields")
	}
	return nil
}

// mapServiceError translates auth service sentinel errors into API errors.
func mapServiceError(err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrDeviceIDRequired):
		return httpapi.BadRequest(err.Error())
	case errors.Is(err, service.ErrEmailAlreadyRegistered):
		return httpapi.Conflict("email already registered")
	case errors.Is(err, service.ErrInvalidCredentials):
		return httpapi.Unauthorized("invalid email or password")
	case errors.Is(err, service.ErrRefreshForbidden):
		return httpapi.Forbidden("Forbidden")
	case errors.Is(err, service.ErrStoreUnavailable):
		return httpapi.Unavailable("session store unavailable, retry shortly")
	default:
		return err
	}
}
