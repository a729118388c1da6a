package dto

type LoginDTO struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegisterDTO - самостоятельная регистрация; роль по умолчанию user.
type RegisterDTO struct {
	CreateUserDTO
}

type AuthResponseDTO struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}
