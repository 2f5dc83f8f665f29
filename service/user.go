package service

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/branchlib/circulate/auth"
	"github.com/branchlib/circulate/config"
	"github.com/branchlib/circulate/log"
	"github.com/branchlib/circulate/model"
	"github.com/branchlib/circulate/store"
	"github.com/branchlib/circulate/validator"
)

// UserService manages identities and delegates everything secret to
// the auth collaborator.
type UserService struct {
	users store.UserRepository
}

func NewUserService(users store.UserRepository) *UserService {
	return &UserService{users: users}
}

// Register validates the request, hashes the secret and stores a new
// user with the role payload the role calls for.
func (s *UserService) Register(req *model.UserRegisterRequest) (*model.User, error) {
	if req == nil {
		return nil, errors.New("register request is nil")
	}
	if err := s.validateRegisterRequest(req); err != nil {
		return nil, err
	}

	available, err := s.IsUsernameAvailable(req.Username)
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, ErrUsernameTaken
	}

	hash, err := auth.HashSecret(req.Password)
	if err != nil {
		return nil, err
	}

	var prefix string
	switch req.Role {
	case model.RoleMember:
		prefix = "MEM"
	case model.RoleLibrarian:
		prefix = "LIB"
	case model.RoleAdmin:
		prefix = "ADM"
	default:
		return nil, errors.Errorf("unknown role: %s", req.Role)
	}

	id, seq, err := s.nextUserID(prefix)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		ID:           id,
		Name:         req.Name,
		Email:        req.Email,
		Mobile:       req.Mobile,
		Username:     req.Username,
		PasswordHash: hash,
		Role:         req.Role,
		Active:       true,
	}
	switch req.Role {
	case model.RoleMember:
		user.Member = &model.MemberProfile{
			MemberID:        fmt.Sprintf("M-%04d", seq),
			MaxBooksAllowed: config.Opts.MaxBooksAllowed,
			ActiveLoans:     []string{},
		}
	case model.RoleLibrarian:
		user.Librarian = &model.LibrarianProfile{
			EmployeeID: fmt.Sprintf("EMP%03d", seq),
			Shift:      "Morning",
		}
	}

	if err := s.users.SaveUser(user); err != nil {
		return nil, errors.Wrap(err, "failed to persist user")
	}

	log.Info("user registered", zap.String("id", user.ID), zap.String("role", user.Role.String()))
	return user, nil
}

// nextUserID allocates the first unused role-prefixed ID. Save is an
// upsert, so an ID derived from the user count alone would silently
// replace a live user once any account had been deleted.
func (s *UserService) nextUserID(prefix string) (string, int, error) {
	existing, err := s.users.ListUsers(&model.FindUser{})
	if err != nil {
		return "", 0, err
	}
	for seq := len(existing) + 1; ; seq++ {
		id := fmt.Sprintf("%s%03d", prefix, seq)
		user, err := s.users.GetUser(&model.FindUser{ID: &id})
		if err != nil {
			return "", 0, err
		}
		if user == nil {
			return id, seq, nil
		}
	}
}

func (s *UserService) validateRegisterRequest(req *model.UserRegisterRequest) error {
	if strings.TrimSpace(req.Username) == "" {
		return errors.New("username is empty")
	}
	if !validator.IsValidName(req.Name) {
		return errors.New("name is invalid")
	}
	if !validator.IsValidEmail(req.Email) {
		return errors.New("email is invalid")
	}
	if req.Mobile != "" && !validator.IsValidPhone(req.Mobile) {
		return errors.New("phone number is invalid")
	}
	if !validator.IsStrongPassword(req.Password) {
		return errors.New("password must be at least 8 characters with a mix of cases, digits and symbols")
	}
	return nil
}

// Authenticate resolves the username and verifies the secret.
// Unknown users and bad secrets both come back as
// ErrInvalidCredentials so the caller cannot probe for usernames.
func (s *UserService) Authenticate(username, secret string) (*model.User, error) {
	user, err := s.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	if user == nil || !auth.Authenticate(user, secret) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// ChangePassword replaces the user's secret after checking strength.
func (s *UserService) ChangePassword(userID, newSecret string) error {
	if !validator.IsStrongPassword(newSecret) {
		return errors.New("password must be at least 8 characters with a mix of cases, digits and symbols")
	}
	user, err := s.GetByID(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	if err := auth.ChangeSecret(user, newSecret); err != nil {
		return err
	}
	return s.users.SaveUser(user)
}

// Deactivate disables an account; it can no longer authenticate.
func (s *UserService) Deactivate(userID string) error {
	return s.setActive(userID, false)
}

// Reactivate re-enables an account.
func (s *UserService) Reactivate(userID string) error {
	return s.setActive(userID, true)
}

func (s *UserService) setActive(userID string, active bool) error {
	user, err := s.GetByID(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	if active {
		user.Reactivate()
	} else {
		user.Deactivate()
	}
	return s.users.SaveUser(user)
}

func (s *UserService) GetByID(id string) (*model.User, error) {
	return s.users.GetUser(&model.FindUser{ID: &id})
}

func (s *UserService) GetByUsername(username string) (*model.User, error) {
	return s.users.GetUser(&model.FindUser{Username: &username})
}

func (s *UserService) GetByEmail(email string) (*model.User, error) {
	return s.users.GetUser(&model.FindUser{Email: &email})
}

func (s *UserService) List() ([]*model.User, error) {
	return s.users.ListUsers(&model.FindUser{})
}

func (s *UserService) ListByRole(role model.Role) ([]*model.User, error) {
	return s.users.ListUsers(&model.FindUser{Role: &role})
}

func (s *UserService) Delete(userID string) (bool, error) {
	return s.users.DeleteUser(userID)
}

func (s *UserService) IsUsernameAvailable(username string) (bool, error) {
	user, err := s.GetByUsername(username)
	if err != nil {
		return false, err
	}
	return user == nil, nil
}

func (s *UserService) IsEmailAvailable(email string) (bool, error) {
	user, err := s.GetByEmail(email)
	if err != nil {
		return false, err
	}
	return user == nil, nil
}
