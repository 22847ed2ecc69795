package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"wastetrack/internal/domain"
	"wastetrack/internal/metrics"
	"wastetrack/internal/pkg/password"
	"wastetrack/internal/pkg/token"
	"wastetrack/internal/repository"
)

type mockUserStore struct {
	mock.Mock
}

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserStore) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserStore) Update(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *mockUserStore) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	args := m.Called(ctx, id, hash)
	return args.Error(0)
}

type mockSessionStore struct {
	mock.Mock
}

func (m *mockSessionStore) Create(ctx context.Context, userID int64, refreshJTI string, expiresAt time.Time) (*domain.Session, error) {
	args := m.Called(ctx, userID, refreshJTI, expiresAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *mockSessionStore) Rotate(ctx context.Context, sessionID, presentedJTI, nextJTI string) error {
	args := m.Called(ctx, sessionID, presentedJTI, nextJTI)
	return args.Error(0)
}

func (m *mockSessionStore) Invalidate(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func (m *mockSessionStore) InvalidateAllForUser(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

type mockAttemptTracker struct {
	mock.Mock
}

func (m *mockAttemptTracker) CountRecentFailures(ctx context.Context, username, clientAddr string, window time.Duration) (int64, error) {
	args := m.Called(ctx, username, clientAddr, window)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockAttemptTracker) RecordFailure(ctx context.Context, username, clientAddr, reason string) error {
	args := m.Called(ctx, username, clientAddr, reason)
	return args.Error(0)
}

func (m *mockAttemptTracker) RecordSuccess(ctx context.Context, username, clientAddr string) error {
	args := m.Called(ctx, username, clientAddr)
	return args.Error(0)
}

type recordingNotifier struct {
	locked []string
	reuses []string
}

func (r *recordingNotifier) AccountLocked(username, _ string) {
	r.locked = append(r.locked, username)
}

func (r *recordingNotifier) RefreshReuse(_ int64, sessionID string) {
	r.reuses = append(r.reuses, sessionID)
}

func newTestService(t *testing.T) (*Service, *mockUserStore, *mockSessionStore, *mockAttemptTracker, *recordingNotifier) {
	t.Helper()

	users := new(mockUserStore)
	sessions := new(mockSessionStore)
	attempts := new(mockAttemptTracker)
	notifier := &recordingNotifier{}

	tokens, err := token.NewManager("wastetrack", "wastetrack-clients",
		"access-secret-tests", "refresh-secret-tests",
		15*time.Minute, 7*24*time.Hour)
	require.NoError(t, err)

	svc := NewService(users, sessions, attempts, tokens,
		password.NewHasher(bcrypt.MinCost), notifier, metrics.New(),
		5, 15*time.Minute)
	return svc, users, sessions, attempts, notifier
}

func hashFor(t *testing.T, pw string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestService_Login_Success(t *testing.T) {
	svc, users, sessions, attempts, _ := newTestService(t)

	branch := int64(1)
	user := &domain.User{ID: 42, Email: "admin@wastetrack.kz", PasswordHash: hashFor(t, "correct horse"), Role: domain.RoleBranchAdmin, BranchID: &branch}
	attempts.On("CountRecentFailures", mock.Anything, "admin@wastetrack.kz", "10.0.0.1", 15*time.Minute).Return(int64(0), nil)
	users.On("GetByEmail", mock.Anything, "admin@wastetrack.kz").Return(user, nil)

	var boundJTI string
	sessions.On("Create", mock.Anything, int64(42), mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).
		Run(func(args mock.Arguments) { boundJTI = args.String(2) }).
		Return(&domain.Session{ID: "sess-1", UserID: 42, ExpiresAt: time.Now().Add(7 * 24 * time.Hour)}, nil)
	attempts.On("RecordSuccess", mock.Anything, "admin@wastetrack.kz", "10.0.0.1").Return(nil)

	result, err := svc.Login(context.Background(), LoginRequest{Email: "Admin@WasteTrack.kz", Password: "correct horse"}, "10.0.0.1")
	require.NoError(t, err)
	assert.Empty(t, result.User.PasswordHash)

	access, err := svc.tokens.VerifyAccessToken(result.AccessToken)
	require.NoError(t, err)
	assert.EqualValues(t, 42, access.UserID)
	assert.Equal(t, "BRANCH_ADMIN", access.Role)
	assert.Equal(t, "sess-1", access.SessionID)

	refresh, err := svc.tokens.VerifyRefreshToken(result.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "sess-1", refresh.SessionID)
	assert.Equal(t, boundJTI, refresh.ID, "the refresh jti must be the one bound to the session")

	attempts.AssertCalled(t, "RecordSuccess", mock.Anything, "admin@wastetrack.kz", "10.0.0.1")
}

func TestService_Login_LockedBeforePasswordCheck(t *testing.T) {
	svc, users, _, attempts, notifier := newTestService(t)

	attempts.On("CountRecentFailures", mock.Anything, "admin@wastetrack.kz", "10.0.0.1", 15*time.Minute).Return(int64(5), nil)

	_, err := svc.Login(context.Background(), LoginRequest{Email: "admin@wastetrack.kz", Password: "whatever"}, "10.0.0.1")
	assert.ErrorIs(t, err, ErrAccountLocked)

	// The account row is never loaded, so no bcrypt work happens.
	users.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
	assert.Equal(t, []string{"admin@wastetrack.kz"}, notifier.locked)
}

func TestService_Login_BadPasswordRecordsFailure(t *testing.T) {
	svc, users, _, attempts, _ := newTestService(t)

	user := &domain.User{ID: 42, Email: "admin@wastetrack.kz", PasswordHash: hashFor(t, "correct horse"), Role: domain.RoleSuperAdmin}
	attempts.On("CountRecentFailures", mock.Anything, "admin@wastetrack.kz", "10.0.0.1", 15*time.Minute).Return(int64(2), nil)
	users.On("GetByEmail", mock.Anything, "admin@wastetrack.kz").Return(user, nil)
	attempts.On("RecordFailure", mock.Anything, "admin@wastetrack.kz", "10.0.0.1", "bad password").Return(nil)

	_, err := svc.Login(context.Background(), LoginRequest{Email: "admin@wastetrack.kz", Password: "wrong"}, "10.0.0.1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	attempts.AssertCalled(t, "RecordFailure", mock.Anything, "admin@wastetrack.kz", "10.0.0.1", "bad password")
}

func TestService_Login_UnknownUserSameError(t *testing.T) {
	svc, users, _, attempts, _ := newTestService(t)

	attempts.On("CountRecentFailures", mock.Anything, "ghost@wastetrack.kz", "10.0.0.1", 15*time.Minute).Return(int64(0), nil)
	users.On("GetByEmail", mock.Anything, "ghost@wastetrack.kz").Return(nil, gorm.ErrRecordNotFound)
	attempts.On("RecordFailure", mock.Anything, "ghost@wastetrack.kz", "10.0.0.1", "unknown user").Return(nil)

	_, err := svc.Login(context.Background(), LoginRequest{Email: "ghost@wastetrack.kz", Password: "whatever"}, "10.0.0.1")
	assert.ErrorIs(t, err, ErrInvalidCredentials, "unknown user and bad password must be indistinguishable")
}

func TestService_Login_LockoutReadFailsClosed(t *testing.T) {
	svc, users, _, attempts, _ := newTestService(t)

	attempts.On("CountRecentFailures", mock.Anything, "admin@wastetrack.kz", "10.0.0.1", 15*time.Minute).
		Return(int64(0), errors.New("store down"))

	_, err := svc.Login(context.Background(), LoginRequest{Email: "admin@wastetrack.kz", Password: "correct horse"}, "10.0.0.1")
	assert.ErrorIs(t, err, ErrInvalidCredentials, "an unprovable lockout state must reject the attempt")
	users.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
}

func TestService_Refresh_Success(t *testing.T) {
	svc, users, sessions, _, _ := newTestService(t)

	oldJTI := "11111111-1111-1111-1111-111111111111"
	raw, err := svc.tokens.IssueRefreshToken(42, "sess-1", oldJTI)
	require.NoError(t, err)

	var nextJTI string
	sessions.On("Rotate", mock.Anything, "sess-1", oldJTI, mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) { nextJTI = args.String(3) }).
		Return(nil)
	users.On("GetByID", mock.Anything, int64(42)).
		Return(&domain.User{ID: 42, Email: "admin@wastetrack.kz", Role: domain.RoleSuperAdmin}, nil)

	result, err := svc.Refresh(context.Background(), raw)
	require.NoError(t, err)

	refresh, err := svc.tokens.VerifyRefreshToken(result.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, nextJTI, refresh.ID, "the new token must carry the jti swapped into the session")
	assert.NotEqual(t, oldJTI, refresh.ID)

	access, err := svc.tokens.VerifyAccessToken(result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "sess-1", access.SessionID)
}

func TestService_Refresh_ReuseDetected(t *testing.T) {
	svc, _, sessions, _, notifier := newTestService(t)

	raw, err := svc.tokens.IssueRefreshToken(42, "sess-1", "spent-jti")
	require.NoError(t, err)

	sessions.On("Rotate", mock.Anything, "sess-1", "spent-jti", mock.AnythingOfType("string")).
		Return(repository.ErrRefreshReused)

	_, err = svc.Refresh(context.Background(), raw)
	assert.ErrorIs(t, err, ErrReuseDetected)
	assert.Equal(t, []string{"sess-1"}, notifier.reuses)
}

func TestService_Refresh_ExpiredSession(t *testing.T) {
	svc, _, sessions, _, _ := newTestService(t)

	raw, err := svc.tokens.IssueRefreshToken(42, "sess-1", "jti-1")
	require.NoError(t, err)

	sessions.On("Rotate", mock.Anything, "sess-1", "jti-1", mock.AnythingOfType("string")).
		Return(repository.ErrSessionExpired)

	_, err = svc.Refresh(context.Background(), raw)
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestService_Refresh_GarbageToken(t *testing.T) {
	svc, _, sessions, _, _ := newTestService(t)

	_, err := svc.Refresh(context.Background(), "not.a.token")
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
	sessions.AssertNotCalled(t, "Rotate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Refresh_AccessTokenRejected(t *testing.T) {
	svc, _, sessions, _, _ := newTestService(t)

	raw, err := svc.tokens.IssueAccessToken(&domain.User{ID: 42, Role: domain.RoleSuperAdmin}, "sess-1", "jti-1")
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), raw)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken, "an access token must never rotate a session")
	sessions.AssertNotCalled(t, "Rotate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_ChangePassword_Success(t *testing.T) {
	svc, users, sessions, _, _ := newTestService(t)

	user := &domain.User{ID: 42, Email: "admin@wastetrack.kz", PasswordHash: hashFor(t, "old password"), Role: domain.RoleSuperAdmin}
	users.On("GetByID", mock.Anything, int64(42)).Return(user, nil)

	var newHash string
	users.On("UpdatePasswordHash", mock.Anything, int64(42), mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) { newHash = args.String(2) }).
		Return(nil)
	sessions.On("InvalidateAllForUser", mock.Anything, int64(42)).Return(int64(2), nil)

	err := svc.ChangePassword(context.Background(), 42, ChangePasswordRequest{CurrentPassword: "old password", NewPassword: "new password"})
	require.NoError(t, err)

	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(newHash), []byte("new password")))
	sessions.AssertCalled(t, "InvalidateAllForUser", mock.Anything, int64(42))
}

func TestService_ChangePassword_WrongCurrent(t *testing.T) {
	svc, users, sessions, _, _ := newTestService(t)

	user := &domain.User{ID: 42, Email: "admin@wastetrack.kz", PasswordHash: hashFor(t, "old password"), Role: domain.RoleSuperAdmin}
	users.On("GetByID", mock.Anything, int64(42)).Return(user, nil)

	err := svc.ChangePassword(context.Background(), 42, ChangePasswordRequest{CurrentPassword: "guess", NewPassword: "new password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	users.AssertNotCalled(t, "UpdatePasswordHash", mock.Anything, mock.Anything, mock.Anything)
	sessions.AssertNotCalled(t, "InvalidateAllForUser", mock.Anything, mock.Anything)
}

func TestService_Logout_Idempotent(t *testing.T) {
	svc, _, sessions, _, _ := newTestService(t)

	sessions.On("Invalidate", mock.Anything, "sess-1").Return(nil)

	require.NoError(t, svc.Logout(context.Background(), "sess-1"))
	require.NoError(t, svc.Logout(context.Background(), "sess-1"))
}
