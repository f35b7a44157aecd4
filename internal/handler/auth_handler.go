package handlers

import (
	"net/http"

	"marketplace/internal/service"
)

type RegisterRequest struct {
	Email       string  `json:"email" validate:"required,email"`
	Password    string  `json:"password" validate:"required,min=6"`
	DisplayName string  `json:"displayName" validate:"required,max=100"`
	AvatarURL   *string `json:"avatarUrl" validate:"omitempty,url"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	User  any    `json:"user"`
	Token string `json:"token"`
}

func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	session, err := h.AuthService.Register(r.Context(), service.RegisterRequest{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		AvatarURL:   req.AvatarURL,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeSuccess(w, AuthResponse{User: session.Account, Token: session.Token}, http.StatusCreated)
}

// Login answers with the full account for admins and the public view otherwise.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	session, err := h.AuthService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeSuccess(w, AuthResponse{
		User:  session.Account.ViewFor(session.Account.Role),
		Token: session.Token,
	}, http.StatusOK)
}
