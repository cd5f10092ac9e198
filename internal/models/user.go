package models

// Role is the closed set of actor roles.
type Role string

const (
	RoleOwner Role = "OWNER"
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// User represents a registered account. Owners and admins are users too;
// what elevates them is the Role field plus, for admins, a backing Admin
// record (see Admin).
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// Username is the unique login name.
	Username string

	// Email is the user's email address (unique).
	Email string

	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash string

	FirstName string
	LastName  string

	// Role determines the actor class. Defaults to RoleUser.
	Role Role

	// Blocked prevents login. Only meaningful for RoleUser; admins and
	// owners are always enabled regardless of the flag.
	Blocked bool

	// AdminID is the Admin that directly manages this user. Empty for
	// owners, admins and standalone users.
	AdminID string

	// GroupID is the user group this user belongs to, if any.
	GroupID string

	// CreatedAt and UpdatedAt are Unix timestamps.
	CreatedAt int64
	UpdatedAt int64
}

// IsBlocked reports whether login should be refused. The Blocked flag is
// ignored for elevated roles.
func (u *User) IsBlocked() bool {
	return u.Role == RoleUser && u.Blocked
}

// Admin is the tenant-boundary record behind an ADMIN-role user. It is
// lazily materialized: a user may hold RoleAdmin before an Admin record
// exists, and callers must treat that as a valid transient state.
type Admin struct {
	// ID is the unique identifier for the admin (UUID format).
	ID string

	// Username and Email mirror the backing user's credentials; the match
	// on either is how the Admin record is linked to its User record.
	Username string
	Email    string

	// OwnerUserID is the owner user who created this admin.
	OwnerUserID string

	IsActive bool

	CreatedAt int64
}
