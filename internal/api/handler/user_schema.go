package handler

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// --- Request types ---

type signupRequest struct {
	Email        string `json:"email"        validate:"required,emailpattern"`
	Password     string `json:"password"     validate:"required,min=6"`
	Subscription string `json:"subscription" validate:"omitempty,oneof=starter pro business"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,emailpattern"`
	Password string `json:"password" validate:"required,min=6"`
}

type resendVerificationRequest struct {
	Email string `json:"email" validate:"required,emailpattern"`
}

type updateSubscriptionRequest struct {
	Subscription string `json:"subscription" validate:"required,oneof=starter pro business"`
}

// --- Response types ---

type currentUserResponse struct {
	Email        string `json:"email"`
	Phone        string `json:"phone,omitempty"`
	Subscription string `json:"subscription"`
}

type avatarResponse struct {
	AvatarURL string `json:"avatarURL"`
}
