package models

import (
	"strings"

	"gorm.io/gorm"
)

type RoleName string

const (
	RoleUser  RoleName = "USER"
	RoleAdmin RoleName = "ADMIN"
)

// AllRoles lists every role seeded into the roles table.
var AllRoles = []RoleName{RoleUser, RoleAdmin}

// ParseRoleName matches name case-insensitively, accepting an optional
// "ROLE_" prefix.
func ParseRoleName(name string) (RoleName, bool) {
	n := strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(name)), "ROLE_")
	for _, r := range AllRoles {
		if string(r) == n {
			return r, true
		}
	}
	return "", false
}

type Role struct {
	ID   uint     `gorm:"primaryKey"`
	Name RoleName `gorm:"size:20;uniqueIndex;not null"`
}

type User struct {
	gorm.Model
	Email           string `gorm:"size:255;uniqueIndex;not null"`
	Password        string `gorm:"not null"`
	FirstName       string `gorm:"size:255;not null"`
	LastName        string `gorm:"size:255;not null"`
	ShippingAddress string
	Roles           []Role `gorm:"many2many:user_roles;"`
}

func (u User) RoleNames() []RoleName {
	names := make([]RoleName, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}
