package services

import (
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"accountsvc/internal/models"
	"accountsvc/internal/repositories"
)

// fakeUserRepo keeps accounts in memory, keyed by email, mirroring the
// store semantics the service relies on (unique email, ErrNoRows misses).
type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int
	users  map[string]*models.User // by email
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{nextID: 1, users: make(map[string]*models.User)}
}

func (r *fakeUserRepo) Create(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.Email]; ok {
		return repositories.ErrDuplicateEmail
	}
	user.ID = r.nextID
	r.nextID++
	cp := *user
	r.users[user.Email] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(id int) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *fakeUserRepo) GetByEmail(email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[email]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetVerifiedByEmail(email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[email]
	if !ok || u.OTPVerifyStatus != models.OTPStatusVerified {
		return nil, sql.ErrNoRows
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) SetOTP(email, otp string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[email]; ok {
		u.OTP = otp
		u.OTPExpiresAt = &expiresAt
		u.OTPVerifyStatus = models.OTPStatusPending
	}
	return nil
}

func (r *fakeUserRepo) MarkVerified(email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[email]; ok {
		u.OTP = ""
		u.OTPExpiresAt = nil
		u.OTPVerifyStatus = models.OTPStatusVerified
	}
	return nil
}

func (r *fakeUserRepo) UpdatePasswordByEmail(email, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[email]; ok {
		u.PasswordHash = passwordHash
	}
	return nil
}

func (r *fakeUserRepo) UpdatePasswordByID(id int, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == id {
			u.PasswordHash = passwordHash
		}
	}
	return nil
}

func (r *fakeUserRepo) UpdateProfile(id int, name, email, role string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for old, u := range r.users {
		if u.ID == id {
			u.Name = name
			u.Role = role
			if old != email {
				delete(r.users, old)
				u.Email = email
				r.users[email] = u
			}
			return nil
		}
	}
	return nil
}

// recordingMailer captures OTP sends; delivery happens on a goroutine so
// assertions go through sent() with require.Eventually.
type recordingMailer struct {
	mu   sync.Mutex
	otps map[string][]string
}

func newRecordingMailer() *recordingMailer {
	return &recordingMailer{otps: make(map[string][]string)}
}

func (m *recordingMailer) SendOTPEmail(email, otp string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.otps[email] = append(m.otps[email], otp)
	return nil
}

func (m *recordingMailer) sent(email string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.otps[email]...)
}

func newTestAccountService(t *testing.T) (AccountService, *fakeUserRepo, *recordingMailer) {
	t.Helper()
	repo := newFakeUserRepo()
	mailer := newRecordingMailer()
	tokens := NewTokenService("test-secret", 24*time.Hour)
	svc := NewAccountService(repo, mailer, NewAuthService(), tokens, 10*time.Minute)
	return svc, repo, mailer
}

func TestRegisterCreatesPendingAccount(t *testing.T) {
	svc, repo, mailer := newTestAccountService(t)

	user, err := svc.Register("A", "a@x.com", "pass1")
	require.NoError(t, err)
	require.NotZero(t, user.ID)

	stored, err := repo.GetByEmail("a@x.com")
	require.NoError(t, err)
	assert.Equal(t, models.OTPStatusPending, stored.OTPVerifyStatus)
	assert.Len(t, stored.OTP, 6)
	require.NoError(t, NewAuthService().CheckPassword("pass1", stored.PasswordHash))

	require.Eventually(t, func() bool {
		sent := mailer.sent("a@x.com")
		return len(sent) == 1 && sent[0] == stored.OTP
	}, time.Second, 10*time.Millisecond)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, repo, _ := newTestAccountService(t)

	_, err := svc.Register("A", "a@x.com", "pass1")
	require.NoError(t, err)
	first, err := repo.GetByEmail("a@x.com")
	require.NoError(t, err)

	_, err = svc.Register("B", "a@x.com", "pass2")
	assert.ErrorIs(t, err, ErrEmailTaken)

	// first account untouched
	again, err := repo.GetByEmail("a@x.com")
	require.NoError(t, err)
	assert.Equal(t, first, again)
}

func TestVerifyEmail(t *testing.T) {
	svc, repo, _ := newTestAccountService(t)

	_, err := svc.Register("A", "a@x.com", "pass1")
	require.NoError(t, err)
	stored, err := repo.GetByEmail("a@x.com")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.VerifyEmail("missing@x.com", stored.OTP), ErrUserNotFound)

	assert.ErrorIs(t, svc.VerifyEmail("a@x.com", "000000"), ErrInvalidOTP)
	unchanged, _ := repo.GetByEmail("a@x.com")
	assert.Equal(t, models.OTPStatusPending, unchanged.OTPVerifyStatus)
	assert.Equal(t, stored.OTP, unchanged.OTP)

	require.NoError(t, svc.VerifyEmail("a@x.com", stored.OTP))
	verified, _ := repo.GetByEmail("a@x.com")
	assert.Equal(t, models.OTPStatusVerified, verified.OTPVerifyStatus)
	assert.Empty(t, verified.OTP)

	// a cleared OTP must not match an empty submission
	assert.ErrorIs(t, svc.VerifyEmail("a@x.com", ""), ErrInvalidOTP)
}

func TestVerifyEmailExpiredOTP(t *testing.T) {
	repo := newFakeUserRepo()
	tokens := NewTokenService("test-secret", 24*time.Hour)
	svc := NewAccountService(repo, newRecordingMailer(), NewAuthService(), tokens, -time.Minute)

	_, err := svc.Register("A", "a@x.com", "pass1")
	require.NoError(t, err)
	stored, err := repo.GetByEmail("a@x.com")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.VerifyEmail("a@x.com", stored.OTP), ErrOTPExpired)
}

func TestLoginRequiresVerification(t *testing.T) {
	svc, _, _ := newTestAccountService(t)

	_, err := svc.Register("A", "a@x.com", "pass1")
	require.NoError(t, err)

	// pending account, even with the right password
	_, _, err = svc.Login("a@x.com", "pass1")
	assert.ErrorIs(t, err, ErrNotVerified)

	// unknown account collapses into the same error
	_, _, err = svc.Login("nobody@x.com", "pass1")
	assert.ErrorIs(t, err, ErrNotVerified)
}

func TestLoginVerifiedAccount(t *testing.T) {
	svc, repo, _ := newTestAccountService(t)
	tokens := NewTokenService("test-secret", 24*time.Hour)

	_, err := svc.Register("A", "a@x.com", "pass1")
	require.NoError(t, err)
	stored, err := repo.GetByEmail("a@x.com")
	require.NoError(t, err)
	require.NoError(t, svc.VerifyEmail("a@x.com", stored.OTP))

	user, token, err := svc.Login("a@x.com", "pass1")
	require.NoError(t, err)
	require.NotNil(t, user)

	userID, err := tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)

	_, _, err = svc.Login("a@x.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestResendOTPResetsVerifiedAccount(t *testing.T) {
	svc, repo, mailer := newTestAccountService(t)

	_, err := svc.Register("A", "a@x.com", "pass1")
	require.NoError(t, err)
	stored, err := repo.GetByEmail("a@x.com")
	require.NoError(t, err)
	firstOTP := stored.OTP
	require.NoError(t, svc.VerifyEmail("a@x.com", firstOTP))

	require.NoError(t, svc.ResendOTP("a@x.com"))

	after, err := repo.GetByEmail("a@x.com")
	require.NoError(t, err)
	assert.Equal(t, models.OTPStatusPending, after.OTPVerifyStatus)
	assert.Len(t, after.OTP, 6)

	require.Eventually(t, func() bool {
		return len(mailer.sent("a@x.com")) == 2
	}, time.Second, 10*time.Millisecond)

	assert.ErrorIs(t, svc.ResendOTP("nobody@x.com"), ErrUserNotFound)
}

func TestForgotPasswordChange(t *testing.T) {
	svc, repo, _ := newTestAccountService(t)
	auth := NewAuthService()

	_, err := svc.Register("A", "a@x.com", "pass1")
	require.NoError(t, err)

	require.NoError(t, svc.ForgotPasswordChange("a@x.com", "pass2"))

	stored, err := repo.GetByEmail("a@x.com")
	require.NoError(t, err)
	require.NoError(t, auth.CheckPassword("pass2", stored.PasswordHash))
	assert.ErrorIs(t, auth.CheckPassword("pass1", stored.PasswordHash), ErrPasswordMismatch)

	assert.ErrorIs(t, svc.ForgotPasswordChange("nobody@x.com", "pass2"), ErrEmailNotFound)
}

func TestProfileOperations(t *testing.T) {
	svc, repo, _ := newTestAccountService(t)
	auth := NewAuthService()

	user, err := svc.Register("A", "a@x.com", "pass1")
	require.NoError(t, err)

	details, err := svc.ProfileDetails(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", details.Email)

	_, err = svc.ProfileDetails(9999)
	assert.ErrorIs(t, err, ErrUserNotFound)

	require.NoError(t, svc.UpdateProfile(user.ID, "B", "b@x.com", "admin"))
	updated, err := repo.GetByEmail("b@x.com")
	require.NoError(t, err)
	assert.Equal(t, "B", updated.Name)
	assert.Equal(t, "admin", updated.Role)

	require.NoError(t, svc.ChangePassword(user.ID, "pass3"))
	updated, err = repo.GetByEmail("b@x.com")
	require.NoError(t, err)
	require.NoError(t, auth.CheckPassword("pass3", updated.PasswordHash))
}
