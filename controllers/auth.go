package controllers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/rs/zerolog/log"
	"github.com/safein/safein-server/db"
	"github.com/safein/safein-server/models"
	"github.com/safein/safein-server/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RegisterInput struct {
	CompanyName    string `json:"companyName" validate:"required"`
	CompanyEmail   string `json:"companyEmail" validate:"omitempty,email"`
	CompanyPhone   string `json:"companyPhone"`
	CompanyAddress string `json:"companyAddress"`
	Name           string `json:"name" validate:"required"`
	Email          string `json:"email" validate:"required,email"`
	Password       string `json:"password" validate:"required,min=8"`
	Phone          string `json:"phone"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type EmployeeInput struct {
	Name       string      `json:"name" validate:"required"`
	Email      string      `json:"email" validate:"required,email"`
	Password   string      `json:"password" validate:"required,min=8"`
	Phone      string      `json:"phone"`
	Department string      `json:"department"`
	Role       models.Role `json:"role" validate:"omitempty,oneof=admin employee security"`
}

type AuthResponse struct {
	Token    string           `json:"token"`
	Employee *models.Employee `json:"employee"`
}

var errEmailTaken = errors.New("email already registered")

// Register creates a company together with its first admin employee.
func (h *Handler) Register(c *fiber.Ctx) error {
	input := new(RegisterInput)
	if err := c.BodyParser(input); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Cannot parse JSON", err)
	}
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if err := utils.Validate(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Validation failed",
			Error:   utils.FormatValidationError(err),
		})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to hash password", err)
	}

	company := models.Company{
		Name:    input.CompanyName,
		Email:   input.CompanyEmail,
		Phone:   input.CompanyPhone,
		Address: input.CompanyAddress,
	}
	admin := models.Employee{
		Name:     input.Name,
		Email:    input.Email,
		Password: string(hashed),
		Phone:    input.Phone,
		Role:     models.RoleAdmin,
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.Employee{}).Where("email = ?", admin.Email).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return errEmailTaken
		}
		if err := tx.Create(&company).Error; err != nil {
			return err
		}
		admin.CompanyID = company.ID
		return tx.Create(&admin).Error
	})
	if errors.Is(err, errEmailTaken) {
		return respondError(c, fiber.StatusConflict, "Employee with this email already exists", err)
	}
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to register company", err)
	}

	token, err := h.issueToken(&admin)
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to generate token", err)
	}

	log.Info().Uint("company_id", company.ID).Uint("employee_id", admin.ID).Msg("company registered")
	admin.Company = &company
	return c.Status(fiber.StatusCreated).JSON(AuthResponse{Token: token, Employee: &admin})
}

// Login checks the credentials and returns a signed access token.
func (h *Handler) Login(c *fiber.Ctx) error {
	input := new(LoginInput)
	if err := c.BodyParser(input); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Cannot parse JSON", err)
	}
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if err := utils.Validate(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Validation failed",
			Error:   utils.FormatValidationError(err),
		})
	}

	var employee models.Employee
	if err := db.DB.Where("email = ?", input.Email).First(&employee).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return respondError(c, fiber.StatusUnauthorized, "Invalid credentials", nil)
		}
		return respondError(c, fiber.StatusInternalServerError, "Failed to fetch employee", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(employee.Password), []byte(input.Password)); err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid credentials", nil)
	}

	token, err := h.issueToken(&employee)
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to generate token", err)
	}

	return c.JSON(AuthResponse{Token: token, Employee: &employee})
}

// Me returns the signed-in employee with their company.
func (h *Handler) Me(c *fiber.Ctx) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}

	var employee models.Employee
	if err := db.DB.Preload("Company").
		Where("company_id = ?", id.CompanyID).
		First(&employee, id.UserID).Error; err != nil {
		return respondDBError(c, "Employee", err)
	}
	return c.JSON(employee)
}

// CreateEmployee adds a staff member to the caller's company.
func (h *Handler) CreateEmployee(c *fiber.Ctx) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}

	input := new(EmployeeInput)
	if err := c.BodyParser(input); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Cannot parse JSON", err)
	}
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if err := utils.Validate(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Validation failed",
			Error:   utils.FormatValidationError(err),
		})
	}

	var existing int64
	if err := db.DB.Model(&models.Employee{}).Where("email = ?", input.Email).Count(&existing).Error; err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to check email", err)
	}
	if existing > 0 {
		return respondError(c, fiber.StatusConflict, "Employee with this email already exists", errEmailTaken)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to hash password", err)
	}

	employee := models.Employee{
		CompanyID:  id.CompanyID,
		Name:       input.Name,
		Email:      input.Email,
		Password:   string(hashed),
		Phone:      input.Phone,
		Department: input.Department,
		Role:       input.Role,
	}
	if err := db.DB.Create(&employee).Error; err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to create employee", err)
	}

	return c.Status(fiber.StatusCreated).JSON(employee)
}

func (h *Handler) ListEmployees(c *fiber.Ctx) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}

	query := db.DB.Where("company_id = ?", id.CompanyID)
	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}

	var employees []models.Employee
	if err := query.Order("name ASC").Find(&employees).Error; err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to fetch employees", err)
	}
	return c.JSON(employees)
}

func (h *Handler) issueToken(e *models.Employee) (string, error) {
	ttl := h.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	claims := jwt.MapClaims{
		"id":        e.ID,
		"companyId": e.CompanyID,
		"email":     e.Email,
		"role":      string(e.Role),
		"exp":       time.Now().Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.JWTSecret))
}
