package user

import (
	"time"

	"github.com/alciverdev/farmatup-API/internal/domain/branch"
)

type User struct {
	ID           int64     `json:"id"`
	Fullname     string    `json:"fullname"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never expose the hash in JSON
	Role         Role      `json:"role"`
	NumCel       string    `json:"num_cel"`
	IDType       string    `json:"id_type"`
	NumID        string    `json:"num_id"`
	Image        *string   `json:"image,omitempty"`
	BranchID     *int64    `json:"branch_id,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Profile is the read projection returned by list/fetch endpoints. The
// password hash is structurally absent, and the linked branch is embedded
// when present.
type Profile struct {
	ID       int64          `json:"id"`
	Fullname string         `json:"fullname"`
	Email    string         `json:"email"`
	Role     Role           `json:"role"`
	NumCel   string         `json:"num_cel"`
	IDType   string         `json:"id_type"`
	NumID    string         `json:"num_id"`
	Image    *string        `json:"image,omitempty"`
	Branch   *branch.Branch `json:"branch,omitempty"`
}

func (u User) Profile(b *branch.Branch) Profile {
	return Profile{
		ID:       u.ID,
		Fullname: u.Fullname,
		Email:    u.Email,
		Role:     u.Role,
		NumCel:   u.NumCel,
		IDType:   u.IDType,
		NumID:    u.NumID,
		Image:    u.Image,
		Branch:   b,
	}
}

// CreateUserParams is what the repository needs to persist a new user.
// The password arrives already hashed.
type CreateUserParams struct {
	Fullname     string
	Email        string
	PasswordHash string
	Role         Role
	NumCel       string
	IDType       string
	NumID        string
	Image        *string
	BranchID     *int64
}

// UpdateUserParams carries partial-update fields. Nil means "leave as is";
// a present pointer is applied even when it points at an empty string.
type UpdateUserParams struct {
	Fullname     *string
	Email        *string
	PasswordHash *string
	Role         *Role
	NumCel       *string
	IDType       *string
	NumID        *string
	Image        *string
	BranchID     *int64
}

func (p UpdateUserParams) Empty() bool {
	return p.Fullname == nil && p.Email == nil && p.PasswordHash == nil &&
		p.Role == nil && p.NumCel == nil && p.IDType == nil &&
		p.NumID == nil && p.Image == nil && p.BranchID == nil
}
