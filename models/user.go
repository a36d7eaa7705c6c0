package models

import (
	"gorm.io/gorm"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
	RoleSecurity Role = "security"
)

// Employee is a staff member of a company. Employees host appointments and,
// depending on role, manage visitors and approvals.
type Employee struct {
	gorm.Model
	CompanyID  uint     `json:"companyId" gorm:"index"`
	Company    *Company `json:"company,omitempty" gorm:"foreignKey:CompanyID"`
	Name       string   `json:"name" validate:"required"`
	Email      string   `json:"email" gorm:"uniqueIndex" validate:"required,email"`
	Password   string   `json:"-"`
	Phone      string   `json:"phone"`
	Department string   `json:"department"`
	Role       Role     `json:"role" gorm:"size:20;default:'employee'"`
}

func (e *Employee) BeforeCreate(tx *gorm.DB) error {
	if e.Role == "" {
		e.Role = RoleEmployee
	}
	return nil
}
