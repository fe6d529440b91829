package dto

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"ada@uni.example.org"`
	Password string `json:"password" binding:"required" example:"secret1"`
}

// RegisterRequest creates a student together with their credentials.
type RegisterRequest struct {
	FirstName string `json:"firstName" binding:"required,personname" example:"Ada"`
	LastName  string `json:"lastName" binding:"required,personname" example:"Lovelace"`
	Email     string `json:"email" binding:"required,email,mailbox,max=255" example:"ada@uni.example.org"`
	Password  string `json:"password" binding:"required,password" example:"secret1"`
}

// AuthResponse represents successful authentication response
type AuthResponse struct {
	Token     string `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	TokenType string `json:"tokenType" example:"Bearer"`
	ExpiresIn int64  `json:"expiresIn" example:"86400"`
	Email     string `json:"email" example:"ada@uni.example.org"`
	FullName  string `json:"fullName" example:"Ada Lovelace"`
	Message   string `json:"message" example:"Login successful"`
}
