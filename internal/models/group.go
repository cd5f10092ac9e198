package models

// UserGroup is a peer collective of users under one Admin. Every member
// shares data visibility with the rest of the group; the owning Admin is the
// group's mutate-authority.
type UserGroup struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group.
	Name string

	Description string

	// AdminID is the Admin that owns this group.
	AdminID string

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}
