package model

// Role is the type of a role.
type Role string

const (
	// RoleAdmin is the ADMIN role.
	RoleAdmin Role = "ADMIN"
	// RoleLibrarian is the LIBRARIAN role.
	RoleLibrarian Role = "LIBRARIAN"
	// RoleMember is the MEMBER role.
	RoleMember Role = "MEMBER"
)

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "ADMIN"
	case RoleLibrarian:
		return "LIBRARIAN"
	case RoleMember:
		return "MEMBER"
	}
	return "MEMBER"
}

// MemberProfile is the role payload for members. ActiveLoans holds the
// IDs of currently open loans in borrow order.
type MemberProfile struct {
	MemberID        string   `json:"member_id"`
	MaxBooksAllowed int      `json:"max_books_allowed"`
	TotalFine       float64  `json:"total_fine"`
	ActiveLoans     []string `json:"active_loans"`
}

// LibrarianProfile is the role payload for librarians.
type LibrarianProfile struct {
	EmployeeID string `json:"employee_id"`
	Shift      string `json:"shift"`
}

// User carries the role tag plus an optional per-role payload instead
// of subclassing.
type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Mobile       string `json:"mobile"`
	Username     string `json:"username"`
	PasswordHash string `json:"password_hash"`
	Role         Role   `json:"role"`
	Active       bool   `json:"active"`

	Member    *MemberProfile    `json:"member,omitempty"`
	Librarian *LibrarianProfile `json:"librarian,omitempty"`
}

// FindUser filters user lookups. Nil fields are not constrained.
type FindUser struct {
	ID       *string `json:"id"`
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Role     *Role   `json:"role"`

	// The maximum number of users to return.
	Limit *int `json:"limit"`
}

// UserRegisterRequest is the registration input shape.
type UserRegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Mobile   string `json:"mobile"`
	Username string `json:"username"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}

// IsMember reports whether the user carries a member payload.
func (u *User) IsMember() bool {
	return u.Role == RoleMember && u.Member != nil
}

// CanBorrowMore is the borrowing eligibility gate: room under the quota
// and a clean fine balance.
func (u *User) CanBorrowMore() bool {
	if !u.IsMember() {
		return false
	}
	return len(u.Member.ActiveLoans) < u.Member.MaxBooksAllowed && u.Member.TotalFine == 0
}

// AddFine charges a fine to the member's running balance.
func (u *User) AddFine(amount float64) {
	if u.Member == nil || amount <= 0 {
		return
	}
	u.Member.TotalFine += amount
}

// PayFine reduces the balance, clamped at zero even if overpaid.
func (u *User) PayFine(amount float64) {
	if u.Member == nil || amount <= 0 {
		return
	}
	u.Member.TotalFine -= amount
	if u.Member.TotalFine < 0 {
		u.Member.TotalFine = 0
	}
}

// AddActiveLoan appends a loan to the member's open-loan list.
func (u *User) AddActiveLoan(loanID string) {
	if u.Member == nil {
		return
	}
	u.Member.ActiveLoans = append(u.Member.ActiveLoans, loanID)
}

// RemoveActiveLoan drops a loan from the open-loan list, reporting
// whether it was present.
func (u *User) RemoveActiveLoan(loanID string) bool {
	if u.Member == nil {
		return false
	}
	for i, id := range u.Member.ActiveLoans {
		if id == loanID {
			u.Member.ActiveLoans = append(u.Member.ActiveLoans[:i], u.Member.ActiveLoans[i+1:]...)
			return true
		}
	}
	return false
}

// HasActiveLoan reports membership in the open-loan list.
func (u *User) HasActiveLoan(loanID string) bool {
	if u.Member == nil {
		return false
	}
	for _, id := range u.Member.ActiveLoans {
		if id == loanID {
			return true
		}
	}
	return false
}

// Deactivate disables the account. Inactive users cannot authenticate.
func (u *User) Deactivate() {
	u.Active = false
}

// Reactivate re-enables the account.
func (u *User) Reactivate() {
	u.Active = true
}
