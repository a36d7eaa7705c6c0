package models

import "gorm.io/gorm"

type Visitor struct {
	gorm.Model
	CompanyID     uint   `json:"companyId" gorm:"index"`
	Name          string `json:"name" validate:"required"`
	Email         string `json:"email" validate:"omitempty,email"`
	Phone         string `json:"phone" validate:"required"`
	Organization  string `json:"organization"`
	Address       string `json:"address"`
	IDProofType   string `json:"idProofType" validate:"omitempty,oneof=aadhaar pan passport driving_license voter_id other"`
	IDProofNumber string `json:"idProofNumber"`
	PhotoURL      string `json:"photoUrl"`
}
