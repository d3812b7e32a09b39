package domain

// Role: роль пользователя на платформе.
type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleShop     Role = "SHOP"
	RoleAdmin    Role = "ADMIN"
)

// User: ответ GET /api/auth/me.
type User struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     Role   `json:"role"`
	IsActive bool   `json:"isActive"`
}

// CustomerRegistration: тело POST /api/auth/register/customer.
type CustomerRegistration struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	Address     string `json:"address,omitempty"`
	City        string `json:"city,omitempty"`
}
