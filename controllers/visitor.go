package controllers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/safein/safein-server/daterange"
	"github.com/safein/safein-server/db"
	"github.com/safein/safein-server/models"
	"github.com/safein/safein-server/utils"
	"gorm.io/gorm"
)

const visitorsScope = "visitors"

type VisitorInput struct {
	Name          string `json:"name" validate:"required"`
	Email         string `json:"email" validate:"omitempty,email"`
	Phone         string `json:"phone" validate:"required"`
	Organization  string `json:"organization"`
	Address       string `json:"address"`
	IDProofType   string `json:"idProofType" validate:"omitempty,oneof=aadhaar pan passport driving_license voter_id other"`
	IDProofNumber string `json:"idProofNumber"`
}

type VisitorPatch struct {
	Name          *string `json:"name" validate:"omitempty,min=1"`
	Email         *string `json:"email" validate:"omitempty,email"`
	Phone         *string `json:"phone" validate:"omitempty,min=1"`
	Organization  *string `json:"organization"`
	Address       *string `json:"address"`
	IDProofType   *string `json:"idProofType" validate:"omitempty,oneof=aadhaar pan passport driving_license voter_id other"`
	IDProofNumber *string `json:"idProofNumber"`
}

func (p VisitorPatch) updates() map[string]interface{} {
	out := map[string]interface{}{}
	set := func(column string, v *string) {
		if v != nil {
			out[column] = *v
		}
	}
	set("name", p.Name)
	set("email", p.Email)
	set("phone", p.Phone)
	set("organization", p.Organization)
	set("address", p.Address)
	set("id_proof_type", p.IDProofType)
	set("id_proof_number", p.IDProofNumber)
	return out
}

// ListVisitors returns visitors registered in the selected range, newest
// first. q matches name, phone or email.
func (h *Handler) ListVisitors(c *fiber.Ctx) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}

	rng, err := h.rangeFromQuery(c, id, visitorsScope)
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid date range", err)
	}

	query := visitorsIn(id.CompanyID, rng)
	if q := c.Query("q"); q != "" {
		like := "%" + q + "%"
		query = query.Where("name ILIKE ? OR phone ILIKE ? OR email ILIKE ?", like, like, like)
	}

	page, limit := pagination(c)
	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to count visitors", err)
	}

	visitors := []models.Visitor{}
	if err := query.Order("created_at DESC").Offset((page - 1) * limit).Limit(limit).Find(&visitors).Error; err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to fetch visitors", err)
	}

	return c.JSON(fiber.Map{
		"data":  visitors,
		"total": total,
		"page":  page,
		"limit": limit,
		"range": rng.Value(),
	})
}

func (h *Handler) GetVisitor(c *fiber.Ctx) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	visitorID, err := paramID(c)
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid visitor ID", err)
	}

	var visitor models.Visitor
	if err := db.DB.Where("company_id = ?", id.CompanyID).First(&visitor, visitorID).Error; err != nil {
		return respondDBError(c, "Visitor", err)
	}
	return c.JSON(visitor)
}

func (h *Handler) CreateVisitor(c *fiber.Ctx) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}

	input := new(VisitorInput)
	if err := c.BodyParser(input); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Failed to parse request body", err)
	}
	if err := utils.Validate(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Validation failed",
			Error:   utils.FormatValidationError(err),
		})
	}

	visitor := models.Visitor{
		CompanyID:     id.CompanyID,
		Name:          input.Name,
		Email:         input.Email,
		Phone:         input.Phone,
		Organization:  input.Organization,
		Address:       input.Address,
		IDProofType:   input.IDProofType,
		IDProofNumber: input.IDProofNumber,
	}
	if err := db.DB.Create(&visitor).Error; err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to create visitor", err)
	}
	return c.Status(fiber.StatusCreated).JSON(visitor)
}

// UpdateVisitor applies the fields present in the body.
func (h *Handler) UpdateVisitor(c *fiber.Ctx) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	visitorID, err := paramID(c)
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid visitor ID", err)
	}

	patch := new(VisitorPatch)
	if err := c.BodyParser(patch); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Failed to parse request body", err)
	}
	if err := utils.Validate(patch); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Validation failed",
			Error:   utils.FormatValidationError(err),
		})
	}

	var visitor models.Visitor
	if err := db.DB.Where("company_id = ?", id.CompanyID).First(&visitor, visitorID).Error; err != nil {
		return respondDBError(c, "Visitor", err)
	}

	if updates := patch.updates(); len(updates) > 0 {
		if err := db.DB.Model(&visitor).Updates(updates).Error; err != nil {
			return respondError(c, fiber.StatusInternalServerError, "Failed to update visitor", err)
		}
	}
	return c.JSON(visitor)
}

// UploadVisitorPhoto stores the multipart "photo" file and saves its URL on
// the visitor.
func (h *Handler) UploadVisitorPhoto(c *fiber.Ctx) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	visitorID, err := paramID(c)
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid visitor ID", err)
	}
	if h.Uploader == nil {
		return respondError(c, fiber.StatusServiceUnavailable, "Photo uploads are not configured", nil)
	}

	header, err := c.FormFile("photo")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "Photo file is required", err)
	}

	var visitor models.Visitor
	if err := db.DB.Where("company_id = ?", id.CompanyID).First(&visitor, visitorID).Error; err != nil {
		return respondDBError(c, "Visitor", err)
	}

	file, err := header.Open()
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "Cannot read photo", err)
	}
	defer file.Close()

	folder := fmt.Sprintf("safein/%d/visitors", id.CompanyID)
	url, err := h.Uploader.Upload(c.UserContext(), file, fmt.Sprintf("visitor_%d", visitor.ID), folder)
	if err != nil {
		return respondError(c, fiber.StatusBadGateway, "Failed to upload photo", err)
	}

	if err := db.DB.Model(&visitor).Update("photo_url", url).Error; err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to save photo", err)
	}

	log.Info().Uint("visitor_id", visitor.ID).Uint("company_id", id.CompanyID).Msg("visitor photo uploaded")
	return c.JSON(visitor)
}

// visitorsIn selects the company's visitors registered on the days of rng.
func visitorsIn(companyID uint, rng daterange.Range) *gorm.DB {
	query := db.DB.Model(&models.Visitor{}).Where("company_id = ?", companyID)
	if !rng.Start.IsZero() {
		query = query.Where("created_at >= ?", rng.Start)
	}
	if !rng.End.IsZero() {
		query = query.Where("created_at < ?", rng.End.AddDate(0, 0, 1))
	}
	return query
}
