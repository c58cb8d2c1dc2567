package domain

import "strings"

// Role роль пользователя
type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleEmployee Role = "EMPLOYEE"
	RoleAdmin    Role = "ADMIN"
)

// User пользователь системы (клиент, сотрудник или администратор)
type User struct {
	ID     int64
	Name   string
	Email  string
	Active bool
	Roles  []Role
}

// HasRole проверяет наличие роли у пользователя
func (u *User) HasRole(role Role) bool {
	return hasRole(u.Roles, role)
}

// IsActiveEmployee returns true if the user can take appointments
func (u *User) IsActiveEmployee() bool {
	return u.Active && u.HasRole(RoleEmployee)
}

// Caller идентичность вызывающего, подтверждённая провайдером аутентификации
type Caller struct {
	UserID int64
	Roles  []Role
}

// HasRole проверяет наличие роли у вызывающего
func (c Caller) HasRole(role Role) bool {
	return hasRole(c.Roles, role)
}

// ParseRoles разбирает список ролей вида "CUSTOMER,EMPLOYEE".
// Неизвестные роли игнорируются.
func ParseRoles(raw string) []Role {
	roles := make([]Role, 0)
	for _, part := range strings.Split(raw, ",") {
		role := Role(strings.ToUpper(strings.TrimSpace(part)))
		switch role {
		case RoleCustomer, RoleEmployee, RoleAdmin:
			if !hasRole(roles, role) {
				roles = append(roles, role)
			}
		}
	}
	return roles
}

func hasRole(roles []Role, role Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
