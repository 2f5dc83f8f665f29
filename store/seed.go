package store

import (
	"go.uber.org/zap"

	"github.com/branchlib/circulate/auth"
	"github.com/branchlib/circulate/config"
	"github.com/branchlib/circulate/log"
	"github.com/branchlib/circulate/model"
)

// Seed inserts the default identities and a starter catalog so a fresh
// install is usable out of the box. It is idempotent: a repository
// with any existing rows is left alone.
func Seed(users UserRepository, books BookRepository) error {
	existing, err := users.ListUsers(&model.FindUser{})
	if err != nil {
		return err
	}
	if len(existing) == 0 {
		if err := seedUsers(users); err != nil {
			return err
		}
	}

	catalog, err := books.ListBooks(&model.FindBook{})
	if err != nil {
		return err
	}
	if len(catalog) == 0 {
		if err := seedBooks(books); err != nil {
			return err
		}
	}

	return nil
}

func seedUsers(users UserRepository) error {
	defaults := []struct {
		user   *model.User
		secret string
	}{
		{
			user: &model.User{
				ID:       "ADM001",
				Name:     "Default Admin",
				Email:    "admin@library.local",
				Mobile:   "555-000-0000",
				Username: "admin",
				Role:     model.RoleAdmin,
				Active:   true,
			},
			secret: "Admin@123",
		},
		{
			user: &model.User{
				ID:       "LIB001",
				Name:     "Default Librarian",
				Email:    "librarian@library.local",
				Mobile:   "555-000-0001",
				Username: "librarian",
				Role:     model.RoleLibrarian,
				Active:   true,
				Librarian: &model.LibrarianProfile{
					EmployeeID: "EMP001",
					Shift:      "Morning",
				},
			},
			secret: "Librarian@123",
		},
		{
			user: &model.User{
				ID:       "MEM001",
				Name:     "Default Member",
				Email:    "member@library.local",
				Mobile:   "555-000-0002",
				Username: "member",
				Role:     model.RoleMember,
				Active:   true,
				Member: &model.MemberProfile{
					MemberID:        "M-0001",
					MaxBooksAllowed: config.Opts.MaxBooksAllowed,
					ActiveLoans:     []string{},
				},
			},
			secret: "Member@123",
		},
	}

	for _, d := range defaults {
		hash, err := auth.HashSecret(d.secret)
		if err != nil {
			return err
		}
		d.user.PasswordHash = hash
		if err := users.SaveUser(d.user); err != nil {
			return err
		}
		log.Info("seeded user", zap.String("username", d.user.Username), zap.String("role", d.user.Role.String()))
	}
	return nil
}

func seedBooks(books BookRepository) error {
	printed, err := model.NewPrintedBook(
		"9780134190440", "The Go Programming Language", "Alan A. A. Donovan",
		2015, 3, "A-12", model.ConditionGood, 1)
	if err != nil {
		return err
	}
	ebook, err := model.NewEBook(
		"9781491941959", "Introducing Go", "Caleb Doxsey",
		2016, 5, 4.2, model.FormatEPUB, "https://library.local/dl/9781491941959", false)
	if err != nil {
		return err
	}

	for _, b := range []*model.Book{printed, ebook} {
		if err := books.SaveBook(b); err != nil {
			return err
		}
		log.Info("seeded book", zap.String("isbn", b.ISBN), zap.String("title", b.Title))
	}
	return nil
}
