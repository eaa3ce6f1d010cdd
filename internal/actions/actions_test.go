package actions

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"

	apikeydomain "account-security-core/internal/apikey/domain"
	apikeyservice "account-security-core/internal/apikey/service"
	auditdomain "account-security-core/internal/audit/domain"
	"account-security-core/internal/errs"
	"account-security-core/internal/security"
	sessiondomain "account-security-core/internal/session/domain"
	sessionservice "account-security-core/internal/session/service"
	twofactordomain "account-security-core/internal/twofactor/domain"
	twofactorservice "account-security-core/internal/twofactor/service"
	userdomain "account-security-core/internal/user/domain"
)

type memUserRepo struct {
	mu sync.Mutex
	m  map[string]*userdomain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{m: make(map[string]*userdomain.User)}
}

func (r *memUserRepo) GetByID(ctx context.Context, id string) (*userdomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.m[id]; ok {
		u2 := *u
		return &u2, nil
	}
	return nil, nil
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*userdomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.m {
		if u.Email == email {
			u2 := *u
			return &u2, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) Create(ctx context.Context, u *userdomain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u2 := *u
	r.m[u.ID] = &u2
	return nil
}

func (r *memUserRepo) UpdatePasswordHash(ctx context.Context, userID, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.m[userID]; ok {
		u.PasswordHash = hash
		now := time.Now().UTC()
		u.LastPasswordChangeAt = &now
	}
	return nil
}

func (r *memUserRepo) setTwoFactorEnabled(userID string, enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.m[userID]; ok {
		u.TwoFactorEnabled = enabled
	}
}

func (r *memUserRepo) TouchLastLogin(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.m[userID]; ok {
		now := time.Now().UTC()
		u.LastLoginAt = &now
	}
	return nil
}

type memSessionRepo struct {
	mu sync.Mutex
	m  map[string]*sessiondomain.Session
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{m: make(map[string]*sessiondomain.Session)}
}

func (r *memSessionRepo) GetByToken(ctx context.Context, token string) (*sessiondomain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.m {
		if s.Token == token {
			s2 := *s
			return &s2, nil
		}
	}
	return nil, nil
}

func (r *memSessionRepo) GetByID(ctx context.Context, id string) (*sessiondomain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.m[id]; ok {
		s2 := *s
		return &s2, nil
	}
	return nil, nil
}

func (r *memSessionRepo) ListByUser(ctx context.Context, userID string) ([]*sessiondomain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*sessiondomain.Session
	for _, s := range r.m {
		if s.UserID == userID {
			s2 := *s
			out = append(out, &s2)
		}
	}
	return out, nil
}

func (r *memSessionRepo) Create(ctx context.Context, s *sessiondomain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s2 := *s
	r.m[s.ID] = &s2
	return nil
}

func (r *memSessionRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.m, id)
	return nil
}

func (r *memSessionRepo) DeleteAllByUserExcept(ctx context.Context, userID, keepID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, s := range r.m {
		if s.UserID == userID && id != keepID {
			delete(r.m, id)
			n++
		}
	}
	return n, nil
}

// memMethodRepo mirrors the transactional behavior of the real repository:
// the account-level two-factor flag moves together with the method set, and a
// failed create leaves both untouched.
type memMethodRepo struct {
	mu        sync.Mutex
	m         map[string]*twofactordomain.Method
	users     *memUserRepo
	createErr error
}

func newMemMethodRepo(users *memUserRepo) *memMethodRepo {
	return &memMethodRepo{m: make(map[string]*twofactordomain.Method), users: users}
}

func (r *memMethodRepo) GetByID(ctx context.Context, id string) (*twofactordomain.Method, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.m[id]; ok {
		m2 := *m
		return &m2, nil
	}
	return nil, nil
}

func (r *memMethodRepo) ListByUser(ctx context.Context, userID string) ([]*twofactordomain.Method, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*twofactordomain.Method
	for _, m := range r.m {
		if m.UserID == userID {
			m2 := *m
			out = append(out, &m2)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memMethodRepo) Create(ctx context.Context, m *twofactordomain.Method) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	hasAny := false
	for _, existing := range r.m {
		if existing.UserID == m.UserID {
			hasAny = true
			if existing.Type == m.Type {
				return errs.ErrConflict
			}
		}
	}
	if !hasAny {
		m.IsPrimary = true
	}
	m2 := *m
	r.m[m.ID] = &m2
	r.users.setTwoFactorEnabled(m.UserID, true)
	return nil
}

func (r *memMethodRepo) Remove(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	removed, ok := r.m[id]
	if !ok {
		return errs.ErrNotFound
	}
	delete(r.m, id)
	var newest *twofactordomain.Method
	remaining := false
	for _, m := range r.m {
		if m.UserID != removed.UserID {
			continue
		}
		remaining = true
		if newest == nil || m.CreatedAt.After(newest.CreatedAt) {
			newest = m
		}
	}
	if removed.IsPrimary && newest != nil {
		newest.IsPrimary = true
	}
	if !remaining {
		r.users.setTwoFactorEnabled(removed.UserID, false)
	}
	return nil
}

func (r *memMethodRepo) SetPrimary(ctx context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	target, ok := r.m[id]
	if !ok || target.UserID != userID {
		return errs.ErrNotFound
	}
	for _, m := range r.m {
		if m.UserID == userID {
			m.IsPrimary = false
		}
	}
	target.IsPrimary = true
	return nil
}

func (r *memMethodRepo) DeleteAllByUser(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, m := range r.m {
		if m.UserID == userID {
			delete(r.m, id)
		}
	}
	r.users.setTwoFactorEnabled(userID, false)
	return nil
}

type memKeyRepo struct {
	mu sync.Mutex
	m  map[string]*apikeydomain.APIKey
}

func newMemKeyRepo() *memKeyRepo {
	return &memKeyRepo{m: make(map[string]*apikeydomain.APIKey)}
}

func (r *memKeyRepo) GetByID(ctx context.Context, id string) (*apikeydomain.APIKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if k, ok := r.m[id]; ok {
		k2 := *k
		return &k2, nil
	}
	return nil, nil
}

func (r *memKeyRepo) GetByDigest(ctx context.Context, digest string) (*apikeydomain.APIKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, k := range r.m {
		if k.KeyDigest == digest {
			k2 := *k
			return &k2, nil
		}
	}
	return nil, nil
}

func (r *memKeyRepo) ListByUser(ctx context.Context, userID string) ([]*apikeydomain.APIKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*apikeydomain.APIKey
	for _, k := range r.m {
		if k.UserID == userID {
			k2 := *k
			out = append(out, &k2)
		}
	}
	return out, nil
}

func (r *memKeyRepo) Create(ctx context.Context, k *apikeydomain.APIKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k2 := *k
	r.m[k.ID] = &k2
	return nil
}

func (r *memKeyRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.m, id)
	return nil
}

func (r *memKeyRepo) TouchLastUsed(ctx context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if k, ok := r.m[id]; ok {
		k.LastUsedAt = &at
	}
	return nil
}

// memAuditLog keeps recorded entries in memory, newest first.
type memAuditLog struct {
	mu      sync.Mutex
	entries []*auditdomain.Entry
}

func (l *memAuditLog) Record(ctx context.Context, userID, action, entityType, entityID string, metadata map[string]string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append([]*auditdomain.Entry{{
		ID:         action + "-" + entityID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		UserID:     userID,
		Metadata:   metadata,
		CreatedAt:  time.Now().UTC(),
	}}, l.entries...)
}

func (l *memAuditLog) ListByUser(ctx context.Context, userID string, limit, offset int32) ([]*auditdomain.Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []*auditdomain.Entry
	for _, e := range l.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	if int(offset) >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if int(limit) < len(out) {
		out = out[:limit]
	}
	return out, nil
}

type fixture struct {
	actions  *Actions
	users    *memUserRepo
	sessions *memSessionRepo
	methods  *memMethodRepo
	keys     *memKeyRepo
	audits   *memAuditLog
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	users := newMemUserRepo()
	sessions := newMemSessionRepo()
	methods := newMemMethodRepo(users)
	keys := newMemKeyRepo()
	audits := &memAuditLog{}
	a := New(
		users,
		sessionservice.NewSessionService(sessions, time.Hour),
		twofactorservice.NewTwoFactorService(methods, "account-security-core"),
		apikeyservice.NewAPIKeyService(keys, logger),
		security.NewHasher(4, 2),
		security.NewResetTokenSigner("test-secret", "account-security-core", 30*time.Minute),
		audits,
		logger,
	)
	return &fixture{actions: a, users: users, sessions: sessions, methods: methods, keys: keys, audits: audits}
}

const testPassword = "Sup3rSecretPass"

func (f *fixture) register(t *testing.T, email string) *userdomain.User {
	t.Helper()
	u, err := f.actions.Register(context.Background(), email, testPassword)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	return u
}

func (f *fixture) login(t *testing.T, email string) *sessiondomain.Session {
	t.Helper()
	res, err := f.actions.Login(context.Background(), email, testPassword, "", "test-agent")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.Session == nil {
		t.Fatal("Login returned no session")
	}
	return res.Session
}

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	u := f.register(t, "alice@example.com")
	sess := f.login(t, "alice@example.com")
	if sess.UserID != u.ID {
		t.Errorf("session user %q, want %q", sess.UserID, u.ID)
	}
	got, _ := f.users.GetByID(context.Background(), u.ID)
	if got.LastLoginAt == nil {
		t.Error("login should stamp last_login_at")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice@example.com")
	if _, err := f.actions.Register(context.Background(), "alice@example.com", testPassword); !errors.Is(err, errs.ErrConflict) {
		t.Errorf("duplicate email want ErrConflict, got %v", err)
	}
}

func TestRegisterRejectsWeakInput(t *testing.T) {
	f := newFixture(t)
	if _, err := f.actions.Register(context.Background(), "not-an-email", testPassword); !errors.Is(err, errs.ErrInvalidState) {
		t.Errorf("bad email want ErrInvalidState, got %v", err)
	}
	if _, err := f.actions.Register(context.Background(), "bob@example.com", "short"); !errors.Is(err, errs.ErrInvalidState) {
		t.Errorf("weak password want ErrInvalidState, got %v", err)
	}
}

func TestLoginWrongCredentials(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice@example.com")
	ctx := context.Background()

	if _, err := f.actions.Login(ctx, "alice@example.com", "WrongPass1234", "", ""); !errors.Is(err, errs.ErrInvalidCredential) {
		t.Errorf("wrong password want ErrInvalidCredential, got %v", err)
	}
	if _, err := f.actions.Login(ctx, "nobody@example.com", testPassword, "", ""); !errors.Is(err, errs.ErrInvalidCredential) {
		t.Errorf("unknown email want ErrInvalidCredential, got %v", err)
	}
}

func TestLoginRequiresTwoFactorWhenEnabled(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice@example.com")
	ctx := context.Background()
	sess := f.login(t, "alice@example.com")

	if _, err := f.actions.AddTwoFactorMethod(ctx, sess.Token, twofactordomain.MethodSMS, "+15555550100", ""); err != nil {
		t.Fatalf("AddTwoFactorMethod: %v", err)
	}
	res, err := f.actions.Login(ctx, "alice@example.com", testPassword, "", "")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if !res.TwoFactorRequired || res.Session != nil {
		t.Errorf("login without code should require a second factor, got %+v", res)
	}
}

func TestLoginWithTOTPCode(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice@example.com")
	ctx := context.Background()
	sess := f.login(t, "alice@example.com")

	enr, err := f.actions.GenerateTOTPEnrollment(ctx, sess.Token)
	if err != nil {
		t.Fatalf("GenerateTOTPEnrollment: %v", err)
	}
	code, err := totp.GenerateCode(enr.Secret, time.Now().UTC())
	if err != nil {
		t.Fatalf("GenerateCode: %v", err)
	}
	if _, err := f.actions.AddTwoFactorMethod(ctx, sess.Token, twofactordomain.MethodTOTP, enr.Secret, code); err != nil {
		t.Fatalf("AddTwoFactorMethod: %v", err)
	}

	res, err := f.actions.Login(ctx, "alice@example.com", testPassword, code, "")
	if err != nil {
		t.Fatalf("Login with code: %v", err)
	}
	if res.Session == nil {
		t.Fatal("valid code should yield a session")
	}
	if _, err := f.actions.Login(ctx, "alice@example.com", testPassword, "000000", ""); !errors.Is(err, errs.ErrInvalidCredential) {
		t.Errorf("wrong code want ErrInvalidCredential, got %v", err)
	}
}

func TestUnauthenticatedShortCircuit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	const bad = "no-such-token"

	if _, err := f.actions.ListSessions(ctx, bad); !errors.Is(err, errs.ErrNotAuthenticated) {
		t.Errorf("ListSessions want ErrNotAuthenticated, got %v", err)
	}
	if err := f.actions.ChangePassword(ctx, bad, testPassword, "NewPass123456"); !errors.Is(err, errs.ErrNotAuthenticated) {
		t.Errorf("ChangePassword want ErrNotAuthenticated, got %v", err)
	}
	if _, err := f.actions.CreateAPIKey(ctx, bad, "x", nil, nil); !errors.Is(err, errs.ErrNotAuthenticated) {
		t.Errorf("CreateAPIKey want ErrNotAuthenticated, got %v", err)
	}
	if err := f.actions.DisableTwoFactor(ctx, bad); !errors.Is(err, errs.ErrNotAuthenticated) {
		t.Errorf("DisableTwoFactor want ErrNotAuthenticated, got %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice@example.com")
	ctx := context.Background()
	current := f.login(t, "alice@example.com")
	other := f.login(t, "alice@example.com")

	const newPassword = "Brand0NewSecret"
	if err := f.actions.ChangePassword(ctx, current.Token, testPassword, newPassword); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	// Old password no longer works, new one does.
	if _, err := f.actions.Login(ctx, "alice@example.com", testPassword, "", ""); !errors.Is(err, errs.ErrInvalidCredential) {
		t.Error("old password should be rejected after change")
	}
	if _, err := f.actions.Login(ctx, "alice@example.com", newPassword, "", ""); err != nil {
		t.Errorf("new password should work: %v", err)
	}
	// Other sessions revoked, current survives.
	if got, _ := f.sessions.GetByID(ctx, other.ID); got != nil {
		t.Error("other session should be revoked after password change")
	}
	if got, _ := f.sessions.GetByID(ctx, current.ID); got == nil {
		t.Error("current session should survive password change")
	}
}

func TestChangePasswordWrongCurrent(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice@example.com")
	sess := f.login(t, "alice@example.com")

	err := f.actions.ChangePassword(context.Background(), sess.Token, "WrongPass1234", "Brand0NewSecret")
	if !errors.Is(err, errs.ErrInvalidCredential) {
		t.Errorf("wrong current password want ErrInvalidCredential, got %v", err)
	}
}

func TestPasswordResetFlow(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice@example.com")
	ctx := context.Background()
	sess := f.login(t, "alice@example.com")

	token, err := f.actions.RequestPasswordReset(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("RequestPasswordReset: %v", err)
	}
	generated, err := f.actions.ResetPassword(ctx, token, "")
	if err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}
	if len(generated) != security.DefaultPasswordLength {
		t.Errorf("generated password length want %d, got %d", security.DefaultPasswordLength, len(generated))
	}
	if _, err := f.actions.Login(ctx, "alice@example.com", generated, "", ""); err != nil {
		t.Errorf("generated password should work: %v", err)
	}
	if got, _ := f.sessions.GetByID(ctx, sess.ID); got != nil {
		t.Error("reset should revoke all sessions")
	}
}

func TestPasswordResetRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.actions.RequestPasswordReset(ctx, "nobody@example.com"); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("unknown email want ErrNotFound, got %v", err)
	}
	if _, err := f.actions.ResetPassword(ctx, "garbage-token", ""); !errors.Is(err, errs.ErrInvalidCredential) {
		t.Errorf("bad token want ErrInvalidCredential, got %v", err)
	}
}

func TestTwoFactorFlagFollowsMethods(t *testing.T) {
	f := newFixture(t)
	u := f.register(t, "alice@example.com")
	ctx := context.Background()
	sess := f.login(t, "alice@example.com")

	m, err := f.actions.AddTwoFactorMethod(ctx, sess.Token, twofactordomain.MethodSMS, "+15555550100", "")
	if err != nil {
		t.Fatalf("AddTwoFactorMethod: %v", err)
	}
	got, _ := f.users.GetByID(ctx, u.ID)
	if !got.TwoFactorEnabled {
		t.Error("adding a method should enable two-factor")
	}
	if err := f.actions.RemoveTwoFactorMethod(ctx, sess.Token, m.ID); err != nil {
		t.Fatalf("RemoveTwoFactorMethod: %v", err)
	}
	got, _ = f.users.GetByID(ctx, u.ID)
	if got.TwoFactorEnabled {
		t.Error("removing the last method should disable two-factor")
	}
}

func TestAddTwoFactorMethodFailureLeavesAccountConsistent(t *testing.T) {
	f := newFixture(t)
	u := f.register(t, "alice@example.com")
	ctx := context.Background()
	sess := f.login(t, "alice@example.com")

	f.methods.createErr = errors.New("db down")
	if _, err := f.actions.AddTwoFactorMethod(ctx, sess.Token, twofactordomain.MethodSMS, "+15555550100", ""); err == nil {
		t.Fatal("failed store must surface an error")
	}
	methods, err := f.actions.ListTwoFactorMethods(ctx, sess.Token)
	if err != nil {
		t.Fatalf("ListTwoFactorMethods: %v", err)
	}
	if len(methods) != 0 {
		t.Error("failed add should leave no method behind")
	}
	got, _ := f.users.GetByID(ctx, u.ID)
	if got.TwoFactorEnabled {
		t.Error("failed add should leave two-factor disabled")
	}

	// The account stays usable with password-only login, and once the store
	// recovers the flag moves with the stored method again.
	f.methods.createErr = nil
	if _, err := f.actions.AddTwoFactorMethod(ctx, sess.Token, twofactordomain.MethodSMS, "+15555550100", ""); err != nil {
		t.Fatalf("AddTwoFactorMethod after recovery: %v", err)
	}
	got, _ = f.users.GetByID(ctx, u.ID)
	if !got.TwoFactorEnabled {
		t.Error("stored method must come with the flag enabled")
	}
	res, err := f.actions.Login(ctx, "alice@example.com", testPassword, "", "")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if !res.TwoFactorRequired {
		t.Error("password-only login must demand the second factor once a method exists")
	}
}

func TestAPIKeyLifecycleViaActions(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice@example.com")
	ctx := context.Background()
	sess := f.login(t, "alice@example.com")

	created, err := f.actions.CreateAPIKey(ctx, sess.Token, "ci-deploy", []string{"deploy"}, nil)
	if err != nil {
		t.Fatalf("CreateAPIKey: %v", err)
	}
	keys, err := f.actions.ListAPIKeys(ctx, sess.Token)
	if err != nil {
		t.Fatalf("ListAPIKeys: %v", err)
	}
	if len(keys) != 1 {
		t.Fatalf("want 1 key, got %d", len(keys))
	}
	if err := f.actions.DeleteAPIKey(ctx, sess.Token, created.Key.ID); err != nil {
		t.Fatalf("DeleteAPIKey: %v", err)
	}
	if err := f.actions.DeleteAPIKey(ctx, sess.Token, created.Key.ID); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("double delete want ErrNotFound, got %v", err)
	}
}

func TestLogoutIdempotent(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice@example.com")
	ctx := context.Background()
	sess := f.login(t, "alice@example.com")

	if err := f.actions.Logout(ctx, sess.Token); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if err := f.actions.Logout(ctx, sess.Token); err != nil {
		t.Errorf("logout with a dead token should be a no-op, got %v", err)
	}
}

func TestListAuditLog(t *testing.T) {
	f := newFixture(t)
	u := f.register(t, "alice@example.com")
	ctx := context.Background()
	sess := f.login(t, "alice@example.com")

	if _, err := f.actions.CreateAPIKey(ctx, sess.Token, "ci-deploy", nil, nil); err != nil {
		t.Fatalf("CreateAPIKey: %v", err)
	}

	entries, err := f.actions.ListAuditLog(ctx, sess.Token, 0, 0)
	if err != nil {
		t.Fatalf("ListAuditLog: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("expected audit entries after register, login, and key creation")
	}
	actions := make(map[string]bool, len(entries))
	for _, e := range entries {
		if e.UserID != u.ID {
			t.Errorf("entry %q belongs to %q, want only caller's entries", e.Action, e.UserID)
		}
		actions[e.Action] = true
	}
	for _, want := range []string{"user_registered", "login", "api_key_created"} {
		if !actions[want] {
			t.Errorf("audit trail missing %q", want)
		}
	}

	page, err := f.actions.ListAuditLog(ctx, sess.Token, 1, 0)
	if err != nil {
		t.Fatalf("ListAuditLog paged: %v", err)
	}
	if len(page) != 1 {
		t.Errorf("limit 1 want 1 entry, got %d", len(page))
	}

	if _, err := f.actions.ListAuditLog(ctx, "", 0, 0); !errors.Is(err, errs.ErrNotAuthenticated) {
		t.Errorf("missing token want ErrNotAuthenticated, got %v", err)
	}
}
