package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zuhaoku/pkg/errs"
)

func TestParseRole(t *testing.T) {
	for in, want := range map[string]Role{"tenant": RoleTenant, " Owner ": RoleOwner, "OPERATOR": RoleOperator} {
		got, err := ParseRole(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseRole("admin")
	assert.True(t, errs.IsKind(err, errs.KindUnauthorized))
}

func TestIssueAndAuthenticate(t *testing.T) {
	a, err := NewAuthenticator("secret", time.Hour)
	require.NoError(t, err)

	token, err := a.Issue(Identity{ID: 7, Role: RoleTenant})
	require.NoError(t, err)

	id, err := a.Authenticate("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, Identity{ID: 7, Role: RoleTenant}, id)
}

func TestAuthenticateNormalizesLowercaseRole(t *testing.T) {
	a, err := NewAuthenticator("secret", time.Hour)
	require.NoError(t, err)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role:             "owner",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "3", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	id, err := a.Authenticate(token)
	require.NoError(t, err)
	assert.Equal(t, RoleOwner, id.Role)
}

func TestAuthenticateRejects(t *testing.T) {
	a, err := NewAuthenticator("secret", time.Hour)
	require.NoError(t, err)
	other, err := NewAuthenticator("other", time.Hour)
	require.NoError(t, err)

	forged, err := other.Issue(Identity{ID: 7, Role: RoleTenant})
	require.NoError(t, err)
	_, err = a.Authenticate(forged)
	assert.Equal(t, "TOKEN_INVALID", errs.CodeOf(err))

	a.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := a.Issue(Identity{ID: 7, Role: RoleTenant})
	require.NoError(t, err)
	a.now = time.Now
	_, err = a.Authenticate(expired)
	assert.Equal(t, "TOKEN_INVALID", errs.CodeOf(err))

	_, err = a.Authenticate("")
	assert.Equal(t, "TOKEN_MISSING", errs.CodeOf(err))

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{Role: "TENANT"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = a.Authenticate(none)
	assert.Equal(t, "TOKEN_INVALID", errs.CodeOf(err))
}
