package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"todoapp/internal/security"
	"todoapp/internal/session"
	userdomain "todoapp/internal/user/domain"
)

type memUserRepo struct {
	mu      sync.Mutex
	byEmail map[string]*userdomain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byEmail: make(map[string]*userdomain.User)}
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*userdomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byEmail[email], nil
}

func (r *memUserRepo) Create(ctx context.Context, u *userdomain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byEmail[u.Email] = u
	return nil
}

// failingStore returns the given error from every operation.
type failingStore struct{ err error }

func (f failingStore) Put(ctx context.Context, email, deviceID, token string, ttl time.Duration) error {
	return f.err
}
func (f failingStore) Get(ctx context.Context, email, deviceID string) (string, error) {
	return "", f.err
}
func (f failingStore) Delete(ctx context.Context, email, deviceID string) error { return f.err }
func (f failingStore) DeleteAll(ctx context.Context, email string) error        { return f.err }

func newTestService(t *testing.T) (*AuthService, *memUserRepo, *session.MemoryStore) {
	t.Helper()
	tokens, err := security.NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	users := newMemUserRepo()
	store := session.NewMemoryStore()
	svc := NewAuthService(users, store, security.NewHasher(4), tokens, nil)
	return svc, users, store
}

func register(t *testing.T, svc *AuthService, email, password string) {
	t.Helper()
	if _, err := svc.Register(context.Background(), "Ada", "Lovelace", email, password); err != nil {
		t.Fatalf("Register: %v", err)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService(t)
	register(t, svc, "a@x.com", "p")
	if _, err := svc.Register(context.Background(), "Ada", "Lovelace", "a@x.com", "p"); err != ErrEmailAlreadyRegistered {
		t.Errorf("Register duplicate: want ErrEmailAlreadyRegistered, got %v", err)
	}
}

func TestRegister_InvalidEmail(t *testing.T) {
	svc, _, _ := newTestService(t)
	if _, err := svc.Register(context.Background(), "Ada", "Lovelace", "not-an-email", "p"); err != ErrInvalidEmail {
		t.Errorf("Register: want ErrInvalidEmail, got %v", err)
	}
}

func TestLogin_ReturnsVerifiableAccessToken(t *testing.T) {
	svc, _, _ := newTestService(t)
	register(t, svc, "a@x.com", "p")

	pair, err := svc.Login(context.Background(), "a@x.com", "p", false, "")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if pair.RefreshToken != "" {
		t.Error("Login without remember returned a refresh token")
	}

	tokens, _ := security.NewTestTokenProvider()
	email, err := tokens.VerifyAccess(pair.AccessToken)
	if err != nil {
		t.Fatalf("VerifyAccess: %v", err)
	}
	if email != "a@x.com" {
		t.Errorf("access token subject = %q, want a@x.com", email)
	}
}

func TestLogin_UnknownEmailAndBadPasswordIndistinguishable(t *testing.T) {
	svc, _, _ := newTestService(t)
	register(t, svc, "a@x.com", "p")

	_, errUnknown := svc.Login(context.Background(), "nobody@x.com", "p", false, "")
	_, errBadPass := svc.Login(context.Background(), "a@x.com", "wrong", false, "")
	if errUnknown != ErrInvalidCredentials {
		t.Errorf("unknown email: want ErrInvalidCredentials, got %v", errUnknown)
	}
	if errBadPass != ErrInvalidCredentials {
		t.Errorf("bad password: want ErrInvalidCredentials, got %v", errBadPass)
	}
}

func TestLogin_RememberStoresRefreshToken(t *testing.T) {
	svc, _, store := newTestService(t)
	register(t, svc, "a@x.com", "p")

	pair, err := svc.Login(context.Background(), "a@x.com", "p", true, "d1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if pair.RefreshToken == "" {
		t.Fatal("Login with remember returned no refresh token")
	}
	stored, err := store.Get(context.Background(), "a@x.com", "d1")
	if err != nil {
		t.Fatalf("store Get: %v", err)
	}
	if stored != pair.RefreshToken {
		t.Error("stored refresh token differs from returned one")
	}
}

func TestLogin_RememberWithoutDeviceID(t *testing.T) {
	svc, _, _ := newTestService(t)
	register(t, svc, "a@x.com", "p")
	if _, err := svc.Login(context.Background(), "a@x.com", "p", true, ""); err != ErrDeviceIDRequired {
		t.Errorf("Login: want ErrDeviceIDRequired, got %v", err)
	}
}

func TestRefresh_RotationSingleUse(t *testing.T) {
	svc, _, _ := newTestService(t)
	register(t, svc, "a@x.com", "p")
	ctx := context.Background()

	pair, err := svc.Login(ctx, "a@x.com", "p", true, "d1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	rotated, err := svc.Refresh(ctx, "a@x.com", "d1", pair.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if rotated.RefreshToken == "" || rotated.RefreshToken == pair.RefreshToken {
		t.Fatal("Refresh did not rotate the refresh token")
	}

	// the rotated-out token must be rejected on replay
	if _, err := svc.Refresh(ctx, "a@x.com", "d1", pair.RefreshToken); err != ErrRefreshForbidden {
		t.Errorf("replayed token: want ErrRefreshForbidden, got %v", err)
	}

	// the new token still works
	if _, err := svc.Refresh(ctx, "a@x.com", "d1", rotated.RefreshToken); err != nil {
		t.Errorf("Refresh with rotated token: %v", err)
	}
}

func TestRefresh_NeverLoggedIn(t *testing.T) {
	svc, _, _ := newTestService(t)
	register(t, svc, "a@x.com", "p")
	if _, err := svc.Refresh(context.Background(), "a@x.com", "d1", "whatever"); err != ErrRefreshForbidden {
		t.Errorf("Refresh without session: want ErrRefreshForbidden, got %v", err)
	}
}

func TestRefresh_StoredTokenFailsVerification(t *testing.T) {
	svc, _, store := newTestService(t)
	register(t, svc, "a@x.com", "p")
	ctx := context.Background()

	// a store hit with a token that does not verify must still be rejected
	if err := store.Put(ctx, "a@x.com", "d1", "not-a-jwt", time.Hour); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, err := svc.Refresh(ctx, "a@x.com", "d1", "not-a-jwt"); err != ErrRefreshForbidden {
		t.Errorf("unverifiable stored token: want ErrRefreshForbidden, got %v", err)
	}
}

func TestRefresh_StoreOutage(t *testing.T) {
	tokens, err := security.NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	svc := NewAuthService(newMemUserRepo(), failingStore{err: errors.New("connection refused")}, security.NewHasher(4), tokens, nil)

	_, err = svc.Refresh(context.Background(), "a@x.com", "d1", "tok")
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Errorf("store outage: want ErrStoreUnavailable, got %v", err)
	}
}

func TestLogout_Idempotent(t *testing.T) {
	svc, _, _ := newTestService(t)
	register(t, svc, "a@x.com", "p")
	ctx := context.Background()

	if _, err := svc.Login(ctx, "a@x.com", "p", true, "d1"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if err := svc.Logout(ctx, "a@x.com", "d1"); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	// second logout of the same device is not an error
	if err := svc.Logout(ctx, "a@x.com", "d1"); err != nil {
		t.Errorf("Logout again: %v", err)
	}
}

func TestLogout_ThenRefreshForbidden(t *testing.T) {
	svc, _, _ := newTestService(t)
	register(t, svc, "a@x.com", "p")
	ctx := context.Background()

	pair, err := svc.Login(ctx, "a@x.com", "p", true, "d1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	rotated, err := svc.Refresh(ctx, "a@x.com", "d1", pair.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if err := svc.Logout(ctx, "a@x.com", "d1"); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := svc.Refresh(ctx, "a@x.com", "d1", rotated.RefreshToken); err != ErrRefreshForbidden {
		t.Errorf("Refresh after Logout: want ErrRefreshForbidden, got %v", err)
	}
}

func TestLogoutAll_IsolatedPerPrincipal(t *testing.T) {
	svc, _, _ := newTestService(t)
	register(t, svc, "a@x.com", "p")
	register(t, svc, "b@x.com", "p")
	ctx := context.Background()

	pairA1, err := svc.Login(ctx, "a@x.com", "p", true, "d1")
	if err != nil {
		t.Fatalf("Login a/d1: %v", err)
	}
	pairA2, err := svc.Login(ctx, "a@x.com", "p", true, "d2")
	if err != nil {
		t.Fatalf("Login a/d2: %v", err)
	}
	pairB, err := svc.Login(ctx, "b@x.com", "p", true, "d1")
	if err != nil {
		t.Fatalf("Login b/d1: %v", err)
	}

	if err := svc.LogoutAll(ctx, "a@x.com"); err != nil {
		t.Fatalf("LogoutAll: %v", err)
	}

	if _, err := svc.Refresh(ctx, "a@x.com", "d1", pairA1.RefreshToken); err != ErrRefreshForbidden {
		t.Errorf("a/d1 after LogoutAll: want ErrRefreshForbidden, got %v", err)
	}
	if _, err := svc.Refresh(ctx, "a@x.com", "d2", pairA2.RefreshToken); err != ErrRefreshForbidden {
		t.Errorf("a/d2 after LogoutAll: want ErrRefreshForbidden, got %v", err)
	}
	// the other principal's session survives
	if _, err := svc.Refresh(ctx, "b@x.com", "d1", pairB.RefreshToken); err != nil {
		t.Errorf("b/d1 after a's LogoutAll: %v", err)
	}
}

func TestConcurrentDevices_IndependentSessions(t *testing.T) {
	svc, _, _ := newTestService(t)
	register(t, svc, "a@x.com", "p")
	ctx := context.Background()

	pair1, err := svc.Login(ctx, "a@x.com", "p", true, "d1")
	if err != nil {
		t.Fatalf("Login d1: %v", err)
	}
	pair2, err := svc.Login(ctx, "a@x.com", "p", true, "d2")
	if err != nil {
		t.Fatalf("Login d2: %v", err)
	}

	// rotating d1 does not disturb d2
	if _, err := svc.Refresh(ctx, "a@x.com", "d1", pair1.RefreshToken); err != nil {
		t.Fatalf("Refresh d1: %v", err)
	}
	if _, err := svc.Refresh(ctx, "a@x.com", "d2", pair2.RefreshToken); err != nil {
		t.Errorf("Refresh d2: %v", err)
	}
}
