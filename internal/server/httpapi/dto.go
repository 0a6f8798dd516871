package httpapi

// Typed request/response bodies for each operation. Requests are validated
// before they reach the credential service.

type registerRequest struct {
	Username        string `json:"username"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type changeRequest struct {
	UserID             string `json:"user_id"`
	NewUsername        string `json:"new_username,omitempty"`
	NewPassword        string `json:"new_password,omitempty"`
	NewPasswordConfirm string `json:"new_password_confirm,omitempty"`
}

type deleteRequest struct {
	UserID string `json:"user_id"`
}

type authResponse struct {
	Message     string `json:"message"`
	UserID      string `json:"user_id"`
	AccessToken string `json:"access_token,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}
