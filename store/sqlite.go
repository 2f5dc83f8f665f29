package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/branchlib/circulate/log"
	"github.com/branchlib/circulate/model"
)

// SQLiteStore is the relational backend. The domain never sees SQL;
// it talks to the repository contracts only.
type SQLiteStore struct {
	db        *sql.DB
	userCache sync.Map // map[string]*model.User
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Ping() error {
	return s.db.Ping()
}

const bookColumns = `
		isbn,
		title,
		author,
		publication_year,
		copies,
		available,
		book_type,
		file_size_mb,
		format,
		download_link,
		drm_protected,
		shelf_location,
		condition,
		edition`

func (s *SQLiteStore) SaveBook(book *model.Book) error {
	fields := []string{"isbn", "title", "author", "publication_year", "copies", "available", "book_type",
		"file_size_mb", "format", "download_link", "drm_protected",
		"shelf_location", "condition", "edition"}
	placeholder := []string{"?", "?", "?", "?", "?", "?", "?", "?", "?", "?", "?", "?", "?", "?"}

	// The available column is a denormalized convenience for external
	// readers; the loaded model always re-derives it.
	args := []any{book.ISBN, book.Title, book.Author, book.PublicationYear, book.Copies, book.Available(), string(book.Type)}
	if book.EBook != nil {
		args = append(args, book.EBook.FileSizeMB, string(book.EBook.Format), book.EBook.DownloadLink, book.EBook.DRMProtected)
	} else {
		args = append(args, nil, nil, nil, nil)
	}
	if book.Print != nil {
		args = append(args, book.Print.ShelfLocation, string(book.Print.Condition), book.Print.Edition)
	} else {
		args = append(args, nil, nil, nil)
	}

	stmt := "INSERT OR REPLACE INTO books (" + strings.Join(fields, ", ") + ") VALUES (" + strings.Join(placeholder, ", ") + ")"

	log.Debug("SQL query and args:")
	log.Fallback("Debug", fmt.Sprintf("query: %s\nargs: %v\n", stmt, args))

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(stmt, args...); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStore) GetBook(find *model.FindBook) (*model.Book, error) {
	list, err := s.ListBooks(find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (s *SQLiteStore) ListBooks(find *model.FindBook) ([]*model.Book, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find != nil {
		if v := find.ISBN; v != nil {
			where, args = append(where, "isbn = ?"), append(args, *v)
		}
		if v := find.Title; v != nil {
			where, args = append(where, "title LIKE ?"), append(args, "%"+*v+"%")
		}
		if v := find.Author; v != nil {
			where, args = append(where, "author LIKE ?"), append(args, "%"+*v+"%")
		}
		if v := find.Type; v != nil {
			where, args = append(where, "book_type = ?"), append(args, string(*v))
		}
	}

	query := `SELECT` + bookColumns + `
	FROM books
	WHERE ` + strings.Join(where, " AND ") + ` ORDER BY title`
	if find != nil && find.Limit != nil {
		query += fmt.Sprintf(" LIMIT %d", *find.Limit)
	}

	log.Debug("SQL query and args:")
	log.Fallback("Debug", fmt.Sprintf("query: %s\nargs: %v\n", query, args))

	rows, err := s.db.Query(query, args...)
	if err != nil {
		log.Debug("Error querying books", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	list := make([]*model.Book, 0)
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, book)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return list, nil
}

func scanBook(rows *sql.Rows) (*model.Book, error) {
	var (
		book      model.Book
		bookType  string
		available bool

		fileSizeMB   sql.NullFloat64
		format       sql.NullString
		downloadLink sql.NullString
		drmProtected sql.NullBool

		shelfLocation sql.NullString
		condition     sql.NullString
		edition       sql.NullInt64
	)

	if err := rows.Scan(
		&book.ISBN,
		&book.Title,
		&book.Author,
		&book.PublicationYear,
		&book.Copies,
		&available,
		&bookType,
		&fileSizeMB,
		&format,
		&downloadLink,
		&drmProtected,
		&shelfLocation,
		&condition,
		&edition,
	); err != nil {
		return nil, err
	}

	book.Type = model.BookType(bookType)
	switch book.Type {
	case model.BookTypeEBook:
		book.EBook = &model.EBookMeta{
			FileSizeMB:   fileSizeMB.Float64,
			Format:       model.Format(format.String),
			DownloadLink: downloadLink.String,
			DRMProtected: drmProtected.Bool,
		}
	case model.BookTypePrinted:
		book.Print = &model.PrintMeta{
			ShelfLocation: shelfLocation.String,
			Condition:     model.Condition(condition.String),
			Edition:       int(edition.Int64),
			// A stored available=false with copies on hand means the
			// book was reserved when saved.
			Reserved: !available && book.Copies > 0,
		}
	}

	return &book, nil
}

func (s *SQLiteStore) DeleteBook(isbn string) (bool, error) {
	stmt := `DELETE FROM books WHERE isbn = ?`

	tx, err := s.db.Begin()
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	result, err := tx.Exec(stmt, isbn)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (s *SQLiteStore) SaveUser(user *model.User) error {
	fields := []string{"id", "name", "email", "mobile", "username", "password_hash", "role", "active",
		"member_id", "max_books_allowed", "total_fine", "active_loans", "employee_id", "shift"}
	placeholder := []string{"?", "?", "?", "?", "?", "?", "?", "?", "?", "?", "?", "?", "?", "?"}

	args := []any{user.ID, user.Name, user.Email, user.Mobile, user.Username, user.PasswordHash, string(user.Role), user.Active}
	if user.Member != nil {
		activeLoans, err := json.Marshal(user.Member.ActiveLoans)
		if err != nil {
			return err
		}
		args = append(args, user.Member.MemberID, user.Member.MaxBooksAllowed, user.Member.TotalFine, string(activeLoans))
	} else {
		args = append(args, nil, nil, nil, nil)
	}
	if user.Librarian != nil {
		args = append(args, user.Librarian.EmployeeID, user.Librarian.Shift)
	} else {
		args = append(args, nil, nil)
	}

	stmt := "INSERT OR REPLACE INTO users (" + strings.Join(fields, ", ") + ") VALUES (" + strings.Join(placeholder, ", ") + ")"

	log.Fallback("Debug", fmt.Sprintf("SaveUser\nstmt: %s\n", stmt))

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(stmt, args...); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	s.userCache.Store(user.ID, user)
	return nil
}

func (s *SQLiteStore) GetUser(find *model.FindUser) (*model.User, error) {
	if find != nil && find.ID != nil {
		if cache, ok := s.userCache.Load(*find.ID); ok {
			return cache.(*model.User), nil
		}
	}

	list, err := s.ListUsers(find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}

	user := list[0]
	s.userCache.Store(user.ID, user)
	return user, nil
}

func (s *SQLiteStore) ListUsers(find *model.FindUser) ([]*model.User, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find != nil {
		if v := find.ID; v != nil {
			where, args = append(where, "id = ?"), append(args, *v)
		}
		if v := find.Username; v != nil {
			where, args = append(where, "username = ?"), append(args, *v)
		}
		if v := find.Email; v != nil {
			where, args = append(where, "email = ? COLLATE NOCASE"), append(args, *v)
		}
		if v := find.Role; v != nil {
			where, args = append(where, "role = ?"), append(args, string(*v))
		}
	}

	// Here will return password_hash, so need to be careful when the
	// result is handed to a presentation layer.
	query := `
		SELECT
			id,
			name,
			email,
			mobile,
			username,
			password_hash,
			role,
			active,
			member_id,
			max_books_allowed,
			total_fine,
			active_loans,
			employee_id,
			shift
		FROM users
		WHERE ` + strings.Join(where, " AND ") + ` ORDER BY id`
	if find != nil && find.Limit != nil {
		query += fmt.Sprintf(" LIMIT %d", *find.Limit)
	}

	log.Debug("SQL query and args:")
	log.Fallback("Debug", fmt.Sprintf("query: %s\nargs: %v\n", query, args))

	rows, err := s.db.Query(query, args...)
	if err != nil {
		log.Debug("Error querying users", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	list := make([]*model.User, 0)
	for rows.Next() {
		var (
			user model.User
			role string

			memberID        sql.NullString
			maxBooksAllowed sql.NullInt64
			totalFine       sql.NullFloat64
			activeLoans     sql.NullString

			employeeID sql.NullString
			shift      sql.NullString
		)
		if err := rows.Scan(
			&user.ID,
			&user.Name,
			&user.Email,
			&user.Mobile,
			&user.Username,
			&user.PasswordHash,
			&role,
			&user.Active,
			&memberID,
			&maxBooksAllowed,
			&totalFine,
			&activeLoans,
			&employeeID,
			&shift,
		); err != nil {
			return nil, err
		}

		user.Role = model.Role(role)
		if memberID.Valid {
			profile := &model.MemberProfile{
				MemberID:        memberID.String,
				MaxBooksAllowed: int(maxBooksAllowed.Int64),
				TotalFine:       totalFine.Float64,
				ActiveLoans:     []string{},
			}
			if activeLoans.Valid && activeLoans.String != "" {
				if err := json.Unmarshal([]byte(activeLoans.String), &profile.ActiveLoans); err != nil {
					return nil, err
				}
			}
			user.Member = profile
		}
		if employeeID.Valid {
			user.Librarian = &model.LibrarianProfile{
				EmployeeID: employeeID.String,
				Shift:      shift.String,
			}
		}

		list = append(list, &user)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return list, nil
}

func (s *SQLiteStore) DeleteUser(id string) (bool, error) {
	stmt := `DELETE FROM users WHERE id = ?`

	tx, err := s.db.Begin()
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	result, err := tx.Exec(stmt, id)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}

	s.userCache.Delete(id)
	return affected > 0, nil
}

const loanDateFormat = time.RFC3339

func (s *SQLiteStore) SaveLoan(loan *model.Loan) error {
	fields := []string{"loan_id", "isbn", "user_id", "borrow_date", "due_date", "return_date", "status"}
	placeholder := []string{"?", "?", "?", "?", "?", "?", "?"}

	var returnDate any
	if loan.ReturnDate != nil {
		returnDate = loan.ReturnDate.Format(loanDateFormat)
	}
	args := []any{loan.ID, loan.ISBN, loan.UserID,
		loan.BorrowDate.Format(loanDateFormat), loan.DueDate.Format(loanDateFormat),
		returnDate, string(loan.Status)}

	stmt := "INSERT OR REPLACE INTO loans (" + strings.Join(fields, ", ") + ") VALUES (" + strings.Join(placeholder, ", ") + ")"

	log.Fallback("Debug", fmt.Sprintf("SaveLoan\nstmt: %s\nargs: %v\n", stmt, args))

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(stmt, args...); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStore) GetLoan(find *model.FindLoan) (*model.Loan, error) {
	list, err := s.ListLoans(find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (s *SQLiteStore) ListLoans(find *model.FindLoan) ([]*model.Loan, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find != nil {
		if v := find.ID; v != nil {
			where, args = append(where, "loan_id = ?"), append(args, *v)
		}
		if v := find.ISBN; v != nil {
			where, args = append(where, "isbn = ?"), append(args, *v)
		}
		if v := find.UserID; v != nil {
			where, args = append(where, "user_id = ?"), append(args, *v)
		}
		if v := find.Status; v != nil {
			where, args = append(where, "status = ?"), append(args, string(*v))
		}
	}

	query := `
		SELECT
			loan_id,
			isbn,
			user_id,
			borrow_date,
			due_date,
			return_date,
			status
		FROM loans
		WHERE ` + strings.Join(where, " AND ") + ` ORDER BY borrow_date`
	if find != nil && find.Limit != nil {
		query += fmt.Sprintf(" LIMIT %d", *find.Limit)
	}

	log.Debug("SQL query and args:")
	log.Fallback("Debug", fmt.Sprintf("query: %s\nargs: %v\n", query, args))

	rows, err := s.db.Query(query, args...)
	if err != nil {
		log.Debug("Error querying loans", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	list := make([]*model.Loan, 0)
	for rows.Next() {
		var (
			loan       model.Loan
			status     string
			borrowDate string
			dueDate    string
			returnDate sql.NullString
		)
		if err := rows.Scan(
			&loan.ID,
			&loan.ISBN,
			&loan.UserID,
			&borrowDate,
			&dueDate,
			&returnDate,
			&status,
		); err != nil {
			return nil, err
		}

		loan.Status = model.LoanStatus(status)
		if loan.BorrowDate, err = time.Parse(loanDateFormat, borrowDate); err != nil {
			return nil, err
		}
		if loan.DueDate, err = time.Parse(loanDateFormat, dueDate); err != nil {
			return nil, err
		}
		if returnDate.Valid {
			t, err := time.Parse(loanDateFormat, returnDate.String)
			if err != nil {
				return nil, err
			}
			loan.ReturnDate = &t
		}

		list = append(list, &loan)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return list, nil
}
