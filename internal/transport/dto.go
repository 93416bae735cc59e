package transport

import (
	"github.com/Skotchmaster/gym_site/internal/models"
)

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

type AdminIdentity struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
}

type AdminLoginResponse struct {
	User  AdminIdentity `json:"user"`
	Token string        `json:"token"`
}

type PatchMeRequest struct {
	Name *string `json:"name"`
}

type PatchUserRequest struct {
	Name                     *string                  `json:"name"`
	MembershipType           *models.MembershipType   `json:"membershipType"`
	MembershipStatus         *models.MembershipStatus `json:"membershipStatus"`
	UpcomingClasses          *int                     `json:"upcomingClasses"`
	PersonalTrainingSessions *int                     `json:"personalTrainingSessions"`
}

type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

type ContactResponse struct {
	ID uint `json:"id"`
}

type PageMeta struct {
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
	HasPrev    bool  `json:"has_prev"`
	HasNext    bool  `json:"has_next"`
}
