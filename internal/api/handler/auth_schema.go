package handler

import "time"

// errorResponse documents the error envelope rendered by the API error handler.
type errorResponse struct {
	Error string `json:"error"`
}

type registerRequest struct {
	Username string `json:"username" validate:"required,notblank,max=64"`
	Password string `json:"password" validate:"required,min=6,maxbytes=72"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type meResponse struct {
	SubjectID string    `json:"subject_id"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}
