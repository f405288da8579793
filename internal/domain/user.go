package domain

const (
	RoleBuyer  = "BUYER"
	RoleSeller = "SELLER"
	RoleAdmin  = "ADMIN"
)

type User struct {
	ID     string `json:"id" db:"user_id"`
	Email  string `json:"email" db:"email"`
	Name   string `json:"name" db:"name"`
	Role   string `json:"role" db:"role"`
	Banned bool   `json:"banned" db:"-"`
}

func (u *User) IsSeller() bool { return u != nil && (u.Role == RoleSeller || u.Role == RoleAdmin) }
func (u *User) IsAdmin() bool  { return u != nil && u.Role == RoleAdmin }
