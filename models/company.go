package models

import "gorm.io/gorm"

// Company is a tenant. Every other record carries its CompanyID.
type Company struct {
	gorm.Model
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}
