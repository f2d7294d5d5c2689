package user

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleVendor   Role = "vendor"
	RoleSupplier Role = "supplier"
)

func (r Role) Valid() bool {
	return r == RoleVendor || r == RoleSupplier
}

const (
	MaxNameLength    = 100
	MaxPhoneLength   = 15
	MaxAddressLength = 500
	MinPasswordLen   = 6
)

type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	Password     string    `db:"password" json:"-"`
	Role         Role      `db:"role" json:"role"`
	Phone        string    `db:"phone" json:"phone"`
	Address      string    `db:"address" json:"address"`
	Rating       float64   `db:"rating" json:"rating"`
	RatingSum    int       `db:"rating_sum" json:"-"`
	TotalRatings int       `db:"total_ratings" json:"totalRatings"`
	IsActive     bool      `db:"is_active" json:"isActive"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

type UpdateProfileInput struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}
