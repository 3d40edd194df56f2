package dto

import (
	"time"

	"go-guildsync/internal/session/services"
	"go-guildsync/pkg/swgoh"
)

// LoginRequest is the upstream sign-in form
type LoginRequest struct {
	Username string `json:"username" minLength:"1" maxLength:"100" validate:"required,max=100" doc:"Upstream API username"`
	Password string `json:"password" minLength:"1" maxLength:"200" validate:"required,max=200" doc:"Upstream API password"`
	UserID   string `json:"user_id" validate:"required,numeric_id" doc:"Upstream API user id"`
	AllyCode string `json:"ally_code" validate:"required,allycode" doc:"Ally code, dashed or plain"`
}

type LoginInput struct {
	Body LoginRequest
}

type LoginResponse struct {
	Token     string         `json:"token"`
	AllyCode  swgoh.AllyCode `json:"ally_code"`
	Username  string         `json:"username"`
	ExpiresAt time.Time      `json:"expires_at"`
}

type LoginOutput struct {
	SetCookie string        `header:"Set-Cookie" doc:"Authentication cookie"`
	Body      LoginResponse `json:"body"`
}

type LogoutOutput struct {
	SetCookie string `header:"Set-Cookie" doc:"Clear authentication cookie"`
	Body      struct {
		Success bool `json:"success"`
	}
}

type StatusInput struct{}

type StatusOutput struct {
	Body services.Status `json:"body"`
}

type AuthInput struct {
	Authorization string `header:"Authorization" doc:"JWT Bearer token for authentication"`
	Cookie        string `header:"Cookie" doc:"Authentication cookie"`
}

// AllianceRequest replaces the saved alliance
type AllianceRequest struct {
	AllyCodes []string `json:"ally_codes" maxItems:"100" validate:"max=100,dive,allycode" doc:"Ally codes of one member per alliance guild"`
}

type SetAllianceInput struct {
	Authorization string `header:"Authorization" doc:"JWT Bearer token for authentication"`
	Cookie        string `header:"Cookie" doc:"Authentication cookie"`
	Body          AllianceRequest
}

type AllianceOutput struct {
	Body struct {
		AllyCodes []swgoh.AllyCode `json:"ally_codes"`
	}
}
