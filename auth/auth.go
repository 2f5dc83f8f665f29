// Package auth is the credential collaborator: it owns secret hashing
// and verification so the rest of the system treats credentials as
// opaque strings.
package auth

import (
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/branchlib/circulate/model"
)

// HashSecret hashes a plain secret for storage.
func HashSecret(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.Wrap(err, "failed to hash secret")
	}
	return string(hash), nil
}

// Authenticate reports whether the secret matches the user's stored
// hash. Inactive users never authenticate. A malformed stored hash
// authenticates false rather than surfacing an error.
func Authenticate(user *model.User, secret string) bool {
	if user == nil || !user.Active {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(secret)) == nil
}

// ChangeSecret replaces the user's stored hash with a hash of the new
// secret.
func ChangeSecret(user *model.User, newSecret string) error {
	if user == nil {
		return errors.New("user is nil")
	}
	hash, err := HashSecret(newSecret)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	return nil
}
