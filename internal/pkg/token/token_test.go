package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wastetrack/internal/domain"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager("wastetrack", "wastetrack-api", "access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
	require.NoError(t, err)
	return m
}

func TestNewManager_RejectsSharedSecret(t *testing.T) {
	_, err := NewManager("wastetrack", "wastetrack-api", "same", "same", time.Minute, time.Hour)
	require.Error(t, err)

	_, err = NewManager("wastetrack", "wastetrack-api", "", "refresh", time.Minute, time.Hour)
	require.Error(t, err)
}

func TestAccessToken_RoundTrip(t *testing.T) {
	m := newTestManager(t)
	branchID := int64(3)
	user := &domain.User{ID: 42, Role: domain.RoleBranchAdmin, BranchID: &branchID}

	raw, err := m.IssueAccessToken(user, "sess-1", "jti-1")
	require.NoError(t, err)

	claims, err := m.VerifyAccessToken(raw)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, string(domain.RoleBranchAdmin), claims.Role)
	require.NotNil(t, claims.BranchID)
	assert.Equal(t, int64(3), *claims.BranchID)
	assert.Equal(t, "sess-1", claims.SessionID)
	assert.Equal(t, "jti-1", claims.ID)
	assert.Equal(t, KindAccess, claims.Kind)
}

func TestRefreshToken_RoundTrip(t *testing.T) {
	m := newTestManager(t)

	raw, err := m.IssueRefreshToken(7, "sess-9", "jti-9")
	require.NoError(t, err)

	claims, err := m.VerifyRefreshToken(raw)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "sess-9", claims.SessionID)
	assert.Equal(t, "jti-9", claims.ID)
	assert.Equal(t, KindRefresh, claims.Kind)
}

func TestVerify_RejectsWrongKind(t *testing.T) {
	m := newTestManager(t)
	user := &domain.User{ID: 1, Role: domain.RoleSuperAdmin}

	access, err := m.IssueAccessToken(user, "sess-1", "jti-1")
	require.NoError(t, err)
	refresh, err := m.IssueRefreshToken(1, "sess-1", "jti-2")
	require.NoError(t, err)

	// Each kind is signed with its own secret, so crossing the
	// verifiers must fail even before the kind claim is checked.
	_, err = m.VerifyRefreshToken(access)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = m.VerifyAccessToken(refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_RejectsExpired(t *testing.T) {
	m, err := NewManager("wastetrack", "wastetrack-api", "access-secret", "refresh-secret", -time.Minute, 7*24*time.Hour)
	require.NoError(t, err)

	raw, err := m.IssueAccessToken(&domain.User{ID: 1, Role: domain.RoleSuperAdmin}, "sess-1", "jti-1")
	require.NoError(t, err)

	_, err = m.VerifyAccessToken(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_RejectsForeignIssuerAndAudience(t *testing.T) {
	m := newTestManager(t)

	other, err := NewManager("other-service", "wastetrack-api", "access-secret", "refresh-secret", 15*time.Minute, time.Hour)
	require.NoError(t, err)
	raw, err := other.IssueAccessToken(&domain.User{ID: 1, Role: domain.RoleSuperAdmin}, "sess-1", "jti-1")
	require.NoError(t, err)
	_, err = m.VerifyAccessToken(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)

	other, err = NewManager("wastetrack", "other-audience", "access-secret", "refresh-secret", 15*time.Minute, time.Hour)
	require.NoError(t, err)
	raw, err = other.IssueAccessToken(&domain.User{ID: 1, Role: domain.RoleSuperAdmin}, "sess-1", "jti-1")
	require.NoError(t, err)
	_, err = m.VerifyAccessToken(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_RejectsTampering(t *testing.T) {
	m := newTestManager(t)

	raw, err := m.IssueAccessToken(&domain.User{ID: 1, Role: domain.RoleSuperAdmin}, "sess-1", "jti-1")
	require.NoError(t, err)

	tampered := raw[:len(raw)-2] + "xx"
	_, err = m.VerifyAccessToken(tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.VerifyAccessToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
