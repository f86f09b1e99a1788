package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinisys/backoffice/internal/model"
	"github.com/clinisys/backoffice/internal/policy"
	"github.com/clinisys/backoffice/pkg/errors"
	"github.com/clinisys/backoffice/pkg/security"
)

type fakeUsers struct {
	byEmail map[string]*model.SystemUser
}

func (f *fakeUsers) GetByEmail(ctx context.Context, email string) (*model.SystemUser, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, errors.NotFound("user", nil)
	}
	return u, nil
}

func (f *fakeUsers) GetByID(ctx context.Context, id int64) (*model.SystemUser, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, errors.NotFound("user", nil)
}

func (f *fakeUsers) CountUsers(ctx context.Context) (int64, error) {
	return int64(len(f.byEmail)), nil
}

func (f *fakeUsers) CreateUser(ctx context.Context, user *model.SystemUser, doctor *model.Doctor) error {
	user.ID = int64(len(f.byEmail) + 1)
	f.byEmail[user.Email] = user
	return nil
}

func newTestService(t *testing.T) (*Service, security.PasswordHasher) {
	t.Helper()

	hasher := security.NewBcryptHasher(4)
	hashed, err := hasher.Hash("correct-horse")
	require.NoError(t, err)

	users := &fakeUsers{byEmail: map[string]*model.SystemUser{
		"admin@clinic.test": {ID: 1, Email: "admin@clinic.test", HashedPassword: hashed, Role: "admin"},
	}}

	return NewService(users, hasher, Config{Secret: "test-secret", ExpiryHours: 1}, nil), hasher
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	token, principal, err := svc.Login(ctx, "admin@clinic.test", "correct-horse")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, policy.Principal{ID: 1, Role: policy.RoleAdmin}, principal)

	verified, err := svc.Verify(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, principal, verified)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	svc, _ := newTestService(t)

	_, _, err := svc.Login(context.Background(), "admin@clinic.test", "wrong")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnauthorized))
}

func TestLoginDoesNotRevealUnknownAccount(t *testing.T) {
	svc, _ := newTestService(t)

	_, _, err := svc.Login(context.Background(), "ghost@clinic.test", "whatever")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnauthorized))
	assert.Equal(t, "unauthorized: invalid credentials", err.Error())
}

func TestLogoutRevokesToken(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	token, _, err := svc.Login(ctx, "admin@clinic.test", "correct-horse")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, token))

	_, err = svc.Verify(ctx, token)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnauthorized))
}

func TestLogoutRevokesOnlyThatSession(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, _, err := svc.Login(ctx, "admin@clinic.test", "correct-horse")
	require.NoError(t, err)
	second, _, err := svc.Login(ctx, "admin@clinic.test", "correct-horse")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, first))

	_, err = svc.Verify(ctx, first)
	assert.Error(t, err)
	_, err = svc.Verify(ctx, second)
	assert.NoError(t, err)
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	token, _, err := svc.Login(ctx, "admin@clinic.test", "correct-horse")
	require.NoError(t, err)

	_, err = svc.Verify(ctx, token+"x")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnauthorized))
}

func TestVerifyRejectsTokenSignedWithOtherSecret(t *testing.T) {
	svc, hasher := newTestService(t)
	ctx := context.Background()

	hashed, err := hasher.Hash("correct-horse")
	require.NoError(t, err)
	other := NewService(&fakeUsers{byEmail: map[string]*model.SystemUser{
		"admin@clinic.test": {ID: 1, Email: "admin@clinic.test", HashedPassword: hashed, Role: "admin"},
	}}, hasher, Config{Secret: "different-secret", ExpiryHours: 1}, nil)

	token, _, err := other.Login(ctx, "admin@clinic.test", "correct-horse")
	require.NoError(t, err)

	_, err = svc.Verify(ctx, token)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnauthorized))
}
