// Package service implements the session manager: login, refresh with
// rotation-on-use, and logout for one or all devices.
package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"todoapp/internal/audit"
	"todoapp/internal/security"
	"todoapp/internal/session"
	userdomain "todoapp/internal/user/domain"
)

// Sentinel errors for the auth service; the handler maps them to HTTP statuses.
var (
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	// ErrInvalidEmail is returned when the email fails shape validation.
	ErrInvalidEmail = errors.New("invalid email format")
	// ErrInvalidCredentials covers both unknown email and wrong password, so a
	// failed login never reveals whether the account exists.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrRefreshForbidden covers absent sessions, rotated-out (replayed) tokens,
	// and tokens that fail signature or expiry checks.
	ErrRefreshForbidden = errors.New("refresh token invalid or not current")
	// ErrDeviceIDRequired is returned when rememberMe is set without a deviceId.
	ErrDeviceIDRequired = errors.New("deviceId is required when rememberMe is set")
	// ErrStoreUnavailable marks transient session-store failures; retryable,
	// never conflated with a rejected token.
	ErrStoreUnavailable = errors.New("session store unavailable")
)

// TokenPair is the result of a successful login or refresh. RefreshToken is
// empty for logins without rememberMe.
type TokenPair struct {
	AccessToken     string
	RefreshToken    string
	AccessExpiresAt time.Time
}

// UserRepo is the minimal user repository needed by the auth service.
type UserRepo interface {
	GetByEmail(ctx context.Context, email string) (*userdomain.User, error)
	Create(ctx context.Context, u *userdomain.User) error
}

// AuthService orchestrates credential verification, token issuance, and the
// per-device session store. Per (principal, device) the state machine is
// NoSession → ActiveSession → NoSession, with ActiveSession re-entered on each
// successful refresh.
type AuthService struct {
	users    UserRepo
	sessions session.Store
	hasher   *security.Hasher
	tokens   *security.TokenProvider
	auditor  audit.AuditLogger
}

// NewAuthService returns an AuthService with the given dependencies.
// auditor may be nil to disable audit logging.
func NewAuthService(users UserRepo, sessions session.Store, hasher *security.Hasher, tokens *security.TokenProvider, auditor audit.AuditLogger) *AuthService {
	if auditor == nil {
		auditor = audit.Nop{}
	}
	return &AuthService{
		users:    users,
		sessions: sessions,
		hasher:   hasher,
		tokens:   tokens,
		auditor:  auditor,
	}
}

// Register creates a user with the given email and a bcrypt hash of password.
func (s *AuthService) Register(ctx context.Context, firstName, lastName, email, password string) (*userdomain.User, error) {
	email = normalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailAlreadyRegistered
	}
	hashed, err := s.hasher.Hash([]byte(password))
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	user := &userdomain.User{
		ID:           uuid.New().String(),
		FirstName:    strings.TrimSpace(firstName),
		LastName:     strings.TrimSpace(lastName),
		Email:        email,
		PasswordHash: hashed,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	s.auditor.LogEvent(ctx, email, audit.ActionRegister, "")
	return user, nil
}

// Login verifies credentials and issues a fresh access token. When remember is
// set, it also mints a refresh token and records it as the device's sole active
// session, overwriting any previous one.
func (s *AuthService) Login(ctx context.Context, email, password string, remember bool, deviceID string) (*TokenPair, error) {
	email = normalizeEmail(email)
	if remember && strings.TrimSpace(deviceID) == "" {
		return nil, ErrDeviceIDRequired
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		s.auditor.LogEvent(ctx, email, audit.ActionLoginFailure, "unknown email")
		return nil, ErrInvalidCredentials
	}
	if err := s.hasher.Compare([]byte(password), user.PasswordHash); err != nil {
		s.auditor.LogEvent(ctx, email, audit.ActionLoginFailure, "password mismatch")
		return nil, ErrInvalidCredentials
	}

	accessToken, accessExp, err := s.tokens.IssueAccess(email)
	if err != nil {
		return nil, err
	}
	pair := &TokenPair{AccessToken: accessToken, AccessExpiresAt: accessExp}

	if remember {
		refreshToken, _, err := s.tokens.IssueRefresh(email)
		if err != nil {
			return nil, err
		}
		if err := s.sessions.Put(ctx, email, deviceID, refreshToken, s.tokens.RefreshTTL()); err != nil {
			return nil, storeErr(err)
		}
		pair.RefreshToken = refreshToken
	}
	s.auditor.LogEvent(ctx, email, audit.ActionLoginSuccess, "device="+deviceID)
	return pair, nil
}

// Refresh exchanges a presented refresh token for a new token pair, rotating the
// stored token so each refresh token is single-use. A replayed (rotated-out)
// token, an unknown session, and a token failing signature or expiry checks all
// fail identically with ErrRefreshForbidden.
func (s *AuthService) Refresh(ctx context.Context, email, deviceID, presented string) (*TokenPair, error) {
	email = normalizeEmail(email)
	stored, err := s.sessions.Get(ctx, email, deviceID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			s.auditor.LogEvent(ctx, email, audit.ActionRefreshRejected, "no active session for device "+deviceID)
			return nil, ErrRefreshForbidden
		}
		return nil, storeErr(err)
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(presented)) != 1 {
		s.auditor.LogEvent(ctx, email, audit.ActionRefreshRejected, "token mismatch (possible replay) on device "+deviceID)
		return nil, ErrRefreshForbidden
	}

	// Defense in depth: a store hit alone is not enough, the token must still
	// carry a valid signature and be unexpired under the current key.
	subject, err := s.tokens.VerifyRefresh(presented)
	if err != nil || subject != email {
		s.auditor.LogEvent(ctx, email, audit.ActionRefreshRejected, "stored token failed verification")
		return nil, ErrRefreshForbidden
	}

	if err := s.sessions.Delete(ctx, email, deviceID); err != nil {
		return nil, storeErr(err)
	}
	accessToken, accessExp, err := s.tokens.IssueAccess(email)
	if err != nil {
		return nil, err
	}
	refreshToken, _, err := s.tokens.IssueRefresh(email)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Put(ctx, email, deviceID, refreshToken, s.tokens.RefreshTTL()); err != nil {
		return nil, storeErr(err)
	}
	s.auditor.LogEvent(ctx, email, audit.ActionRefreshRotated, "device="+deviceID)
	return &TokenPair{
		AccessToken:     accessToken,
		RefreshToken:    refreshToken,
		AccessExpiresAt: accessExp,
	}, nil
}

// Logout removes the device's session record. Idempotent: logging out an
// already-logged-out device succeeds.
func (s *AuthService) Logout(ctx context.Context, email, deviceID string) error {
	email = normalizeEmail(email)
	if err := s.sessions.Delete(ctx, email, deviceID); err != nil {
		return storeErr(err)
	}
	s.auditor.LogEvent(ctx, email, audit.ActionLogout, "device="+deviceID)
	return nil
}

// LogoutAll removes every session record for the principal across all devices.
// The handler gates this behind a valid access token for the same principal.
func (s *AuthService) LogoutAll(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if err := s.sessions.DeleteAll(ctx, email); err != nil {
		return storeErr(err)
	}
	s.auditor.LogEvent(ctx, email, audit.ActionLogoutAll, "")
	return nil
}

func storeErr(err error) error {
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

var simpleEmail = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func validateEmail(email string) error {
	if email == "" || !simpleEmail.MatchString(email) {
		return ErrInvalidEmail
	}
	return nil
}
