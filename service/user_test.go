package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/branchlib/circulate/model"
	"github.com/branchlib/circulate/store"
)

func newUserService() *UserService {
	return NewUserService(store.NewMemoryStore())
}

func memberRequest() *model.UserRegisterRequest {
	return &model.UserRegisterRequest{
		Name:     "Ada Lovelace",
		Email:    "ada@example.com",
		Mobile:   "555-123-4567",
		Username: "ada",
		Password: "Str0ng!Pass",
		Role:     model.RoleMember,
	}
}

func TestRegisterMember(t *testing.T) {
	svc := newUserService()

	user, err := svc.Register(memberRequest())
	require.NoError(t, err)

	assert.Equal(t, model.RoleMember, user.Role)
	assert.True(t, user.Active)
	require.NotNil(t, user.Member)
	assert.NotEmpty(t, user.Member.MemberID)
	assert.Equal(t, 5, user.Member.MaxBooksAllowed)
	assert.NotEqual(t, "Str0ng!Pass", user.PasswordHash)
}

func TestRegisterLibrarianGetsPayload(t *testing.T) {
	svc := newUserService()

	req := memberRequest()
	req.Role = model.RoleLibrarian
	user, err := svc.Register(req)
	require.NoError(t, err)

	require.NotNil(t, user.Librarian)
	assert.NotEmpty(t, user.Librarian.EmployeeID)
	assert.Nil(t, user.Member)
}

func TestRegisterRejectsDuplicateUsername(t *testing.T) {
	svc := newUserService()

	_, err := svc.Register(memberRequest())
	require.NoError(t, err)

	req := memberRequest()
	req.Email = "other@example.com"
	_, err = svc.Register(req)
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

// Deleting an account must not let a later registration reclaim a live
// user's ID: Save is an upsert, so an ID collision would silently
// replace the existing user.
func TestRegisterNeverReusesLiveID(t *testing.T) {
	svc := newUserService()

	alice, err := svc.Register(memberRequest())
	require.NoError(t, err)

	req := memberRequest()
	req.Username = "bob"
	req.Email = "bob@example.com"
	bob, err := svc.Register(req)
	require.NoError(t, err)

	deleted, err := svc.Delete(alice.ID)
	require.NoError(t, err)
	require.True(t, deleted)

	req = memberRequest()
	req.Username = "carol"
	req.Email = "carol@example.com"
	carol, err := svc.Register(req)
	require.NoError(t, err)

	assert.NotEqual(t, bob.ID, carol.ID)

	kept, err := svc.GetByID(bob.ID)
	require.NoError(t, err)
	require.NotNil(t, kept)
	assert.Equal(t, "bob", kept.Username)
}

func TestRegisterValidation(t *testing.T) {
	svc := newUserService()

	bad := memberRequest()
	bad.Email = "not-an-email"
	_, err := svc.Register(bad)
	assert.Error(t, err)

	bad = memberRequest()
	bad.Password = "weak"
	_, err = svc.Register(bad)
	assert.Error(t, err)

	bad = memberRequest()
	bad.Mobile = "12"
	_, err = svc.Register(bad)
	assert.Error(t, err)

	_, err = svc.Register(nil)
	assert.Error(t, err)
}

func TestAuthenticate(t *testing.T) {
	svc := newUserService()

	user, err := svc.Register(memberRequest())
	require.NoError(t, err)

	got, err := svc.Authenticate("ada", "Str0ng!Pass")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = svc.Authenticate("ada", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate("nobody", "Str0ng!Pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticateInactiveUser(t *testing.T) {
	svc := newUserService()

	user, err := svc.Register(memberRequest())
	require.NoError(t, err)

	require.NoError(t, svc.Deactivate(user.ID))
	_, err = svc.Authenticate("ada", "Str0ng!Pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, svc.Reactivate(user.ID))
	_, err = svc.Authenticate("ada", "Str0ng!Pass")
	assert.NoError(t, err)
}

func TestChangePassword(t *testing.T) {
	svc := newUserService()

	user, err := svc.Register(memberRequest())
	require.NoError(t, err)

	assert.Error(t, svc.ChangePassword(user.ID, "weak"))

	require.NoError(t, svc.ChangePassword(user.ID, "N3w!Secret"))
	_, err = svc.Authenticate("ada", "N3w!Secret")
	assert.NoError(t, err)
	_, err = svc.Authenticate("ada", "Str0ng!Pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAvailabilityChecks(t *testing.T) {
	svc := newUserService()

	_, err := svc.Register(memberRequest())
	require.NoError(t, err)

	free, err := svc.IsUsernameAvailable("ada")
	require.NoError(t, err)
	assert.False(t, free)

	free, err = svc.IsUsernameAvailable("grace")
	require.NoError(t, err)
	assert.True(t, free)

	free, err = svc.IsEmailAvailable("ADA@example.com")
	require.NoError(t, err)
	assert.False(t, free, "email matching is case-insensitive")
}

func TestListByRole(t *testing.T) {
	svc := newUserService()

	_, err := svc.Register(memberRequest())
	require.NoError(t, err)
	req := memberRequest()
	req.Username = "grace"
	req.Email = "grace@example.com"
	req.Role = model.RoleAdmin
	_, err = svc.Register(req)
	require.NoError(t, err)

	members, err := svc.ListByRole(model.RoleMember)
	require.NoError(t, err)
	assert.Len(t, members, 1)

	admins, err := svc.ListByRole(model.RoleAdmin)
	require.NoError(t, err)
	assert.Len(t, admins, 1)
}
