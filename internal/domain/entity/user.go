package entity

// User types recorded in the session
const (
	UserTypeEmployee = "Employee"
	UserTypeAdmin    = "Admin"
)

// User is the identity of the currently authenticated user
type User struct {
	Type  string `json:"type"`
	Email string `json:"email"`
}

// IsEmployee returns true if the user is an employee
func (u *User) IsEmployee() bool {
	return u.Type == UserTypeEmployee
}
