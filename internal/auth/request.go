package auth

type RegisterRequest struct {
	Name             string `json:"name" validate:"required,min=2"`
	Email            string `json:"email" validate:"required,email"`
	Password         string `json:"password" validate:"required,min=6"`
	Phone            string `json:"phone" validate:"omitempty,phone"`
	Address          string `json:"address"`
	EmergencyContact string `json:"emergency_contact"`
	UserType         string `json:"user_type" validate:"omitempty,oneof=user admin"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// UpdateProfileRequest carries a partial profile; nil fields are left as they are.
type UpdateProfileRequest struct {
	Name             *string `json:"name,omitempty" validate:"omitempty,min=2"`
	Phone            *string `json:"phone,omitempty" validate:"omitempty,phone"`
	Address          *string `json:"address,omitempty"`
	EmergencyContact *string `json:"emergency_contact,omitempty"`
}
