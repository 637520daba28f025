package handler

import (
	"time"

	"github.com/zachmicha/inno-shop/internal/domain"
)

// UserDTO is the JSON representation of a user profile.
type UserDTO struct {
	ID             string `json:"id"`
	UserName       string `json:"userName"`
	Email          string `json:"email"`
	EmailConfirmed bool   `json:"emailConfirmed"`
	IsDeleted      bool   `json:"isDeleted"`
	CreatedAt      string `json:"createdAt"`
	UpdatedAt      string `json:"updatedAt"`
}

func toUserDTO(u *domain.User) UserDTO {
	return UserDTO{
		ID:             u.ID,
		UserName:       u.UserName,
		Email:          u.Email,
		EmailConfirmed: u.EmailConfirmed,
		IsDeleted:      u.IsDeleted,
		CreatedAt:      u.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      u.UpdatedAt.Format(time.RFC3339),
	}
}
