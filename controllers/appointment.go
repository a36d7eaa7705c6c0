package controllers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/safein/safein-server/daterange"
	"github.com/safein/safein-server/db"
	"github.com/safein/safein-server/models"
	"github.com/safein/safein-server/utils"
	"gorm.io/gorm"
)

const appointmentsScope = "appointments"

type AppointmentInput struct {
	VisitorID  uint `json:"visitorId" validate:"required"`
	EmployeeID uint `json:"employeeId" validate:"required"`
	models.AppointmentDetails
}

type StatusInput struct {
	Status models.AppointmentStatus `json:"status" validate:"required"`
}

type CheckInInput struct {
	PassCode string `json:"passCode" validate:"required"`
}

// ListAppointments godoc
// @Summary List appointments
// @Description Appointments of the caller's company in a date range, with effective status
// @Tags appointments
// @Produce json
// @Param startDate query string false "YYYY-MM-DD"
// @Param endDate query string false "YYYY-MM-DD"
// @Param preset query string false "Date range preset"
// @Param status query string false "Effective status, time_out included"
// @Success 200 {object} fiber.Map
// @Failure 400 {object} utils.ErrorResponse
// @Router /appointments [get]
func (h *Handler) ListAppointments(c *fiber.Ctx) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}

	rng, err := h.rangeFromQuery(c, id, appointmentsScope)
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid date range", err)
	}

	var status models.AppointmentStatus
	if s := c.Query("status"); s != "" {
		if status, err = models.ParseStatus(s); err != nil {
			return respondError(c, fiber.StatusBadRequest, "Invalid status", err)
		}
	}

	query := db.DB.Model(&models.Appointment{}).
		Joins("Visitor").
		Joins("Employee").
		Where("appointments.company_id = ?", id.CompanyID)
	if id.Role == string(models.RoleEmployee) {
		query = query.Where("appointments.employee_id = ?", id.UserID)
	} else if employeeID := c.QueryInt("employeeId"); employeeID > 0 {
		query = query.Where("appointments.employee_id = ?", employeeID)
	}
	if visitorID := c.QueryInt("visitorId"); visitorID > 0 {
		query = query.Where("appointments.visitor_id = ?", visitorID)
	}
	query = applyDateFilter(query, "appointments.scheduled_date", rng)

	// pending and time_out share a stored status; the split is only known
	// after resolving each row.
	byEffective := status == models.StatusPending || status == models.StatusTimeOut
	switch {
	case byEffective:
		query = query.Where("appointments.status = ?", models.StatusPending)
	case status != "":
		query = query.Where("appointments.status = ?", status)
	}
	query = query.Order("appointments.scheduled_date DESC, appointments.id DESC")

	page, limit := pagination(c)
	var appointments []models.Appointment
	var total int64

	if byEffective {
		var all []models.Appointment
		if err := query.Find(&all).Error; err != nil {
			return respondError(c, fiber.StatusInternalServerError, "Failed to fetch appointments", err)
		}
		matched := make([]models.Appointment, 0, len(all))
		for _, a := range all {
			if a.Resolve(h.Resolver) == status {
				matched = append(matched, a)
			}
		}
		total = int64(len(matched))
		appointments = pageOf(matched, page, limit)
	} else {
		if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
			return respondError(c, fiber.StatusInternalServerError, "Failed to count appointments", err)
		}
		if err := query.Offset((page - 1) * limit).Limit(limit).Find(&appointments).Error; err != nil {
			return respondError(c, fiber.StatusInternalServerError, "Failed to fetch appointments", err)
		}
		models.ResolveAll(appointments, h.Resolver)
	}
	if appointments == nil {
		appointments = []models.Appointment{}
	}

	return c.JSON(fiber.Map{
		"data":  appointments,
		"total": total,
		"page":  page,
		"limit": limit,
		"range": rng.Value(),
	})
}

// GetAppointment godoc
// @Summary Get an appointment by ID
// @Tags appointments
// @Produce json
// @Param id path int true "Appointment ID"
// @Success 200 {object} models.Appointment
// @Failure 404 {object} utils.ErrorResponse
// @Router /appointments/{id} [get]
func (h *Handler) GetAppointment(c *fiber.Ctx) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	appointmentID, err := paramID(c)
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid appointment ID", err)
	}

	appointment, err := findAppointment(appointmentID, id.CompanyID, true)
	if err != nil {
		return respondDBError(c, "Appointment", err)
	}
	appointment.Resolve(h.Resolver)
	return c.JSON(appointment)
}

// CreateAppointment godoc
// @Summary Book a visit
// @Tags appointments
// @Accept json
// @Produce json
// @Param appointment body AppointmentInput true "Appointment"
// @Success 201 {object} models.Appointment
// @Failure 400 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Router /appointments [post]
func (h *Handler) CreateAppointment(c *fiber.Ctx) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}

	input := new(AppointmentInput)
	if err := c.BodyParser(input); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Failed to parse request body", err)
	}
	if err := utils.Validate(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Validation failed",
			Error:   utils.FormatValidationError(err),
		})
	}

	// Stored dates and times are compared as strings.
	if _, ok := input.AppointmentDetails.Normalize(h.location()); !ok {
		return respondError(c, fiber.StatusBadRequest, "Invalid scheduled date", daterange.ErrInvalidDate)
	}
	appointment := models.Appointment{
		CompanyID:          id.CompanyID,
		VisitorID:          input.VisitorID,
		EmployeeID:         input.EmployeeID,
		AppointmentDetails: input.AppointmentDetails,
	}
	if h.Resolver.TimedOut(&appointment) {
		return respondError(c, fiber.StatusBadRequest, "Scheduled date has already passed", nil)
	}

	var visitor models.Visitor
	if err := db.DB.Where("company_id = ?", id.CompanyID).First(&visitor, input.VisitorID).Error; err != nil {
		return respondDBError(c, "Visitor", err)
	}
	var host models.Employee
	if err := db.DB.Where("company_id = ?", id.CompanyID).First(&host, input.EmployeeID).Error; err != nil {
		return respondDBError(c, "Employee", err)
	}

	available, err := utils.CheckHostAvailability(id.CompanyID, host.ID, appointment.ScheduledDate(), appointment.ScheduledTime())
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to check host availability", err)
	}
	if !available {
		return respondError(c, fiber.StatusConflict, "Host already has an appointment at this time", nil)
	}

	if err := db.DB.Create(&appointment).Error; err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to create appointment", err)
	}

	appointment.Visitor = &visitor
	appointment.Employee = &host
	appointment.Resolve(h.Resolver)

	log.Info().
		Uint("appointment_id", appointment.ID).
		Uint("company_id", id.CompanyID).
		Msg("appointment booked")
	h.notifyHost(&appointment)

	return c.Status(fiber.StatusCreated).JSON(appointment)
}

// UpdateAppointmentStatus godoc
// @Summary Move an appointment to a new status
// @Tags appointments
// @Accept json
// @Produce json
// @Param id path int true "Appointment ID"
// @Param status body StatusInput true "New status"
// @Success 200 {object} models.Appointment
// @Failure 409 {object} utils.ErrorResponse
// @Router /appointments/{id}/status [patch]
func (h *Handler) UpdateAppointmentStatus(c *fiber.Ctx) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	appointmentID, err := paramID(c)
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid appointment ID", err)
	}

	input := new(StatusInput)
	if err := c.BodyParser(input); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Failed to parse request body", err)
	}
	status, err := models.ParseStatus(string(input.Status))
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid status", err)
	}
	switch status {
	case models.StatusCheckedIn:
		return respondError(c, fiber.StatusConflict, "Use the check-in endpoint to check a visitor in", models.ErrInvalidTransition)
	case models.StatusCompleted:
		return respondError(c, fiber.StatusConflict, "Use the check-out endpoint to complete a visit", models.ErrInvalidTransition)
	}

	appointment, err := findAppointment(appointmentID, id.CompanyID, false)
	if err != nil {
		return respondDBError(c, "Appointment", err)
	}
	if id.Role == string(models.RoleEmployee) && appointment.EmployeeID != id.UserID {
		return respondError(c, fiber.StatusForbidden, "Only the host can update this appointment", nil)
	}

	return h.transition(c, appointment, status)
}

// CheckIn marks an approved appointment as arrived. The visitor's pass code
// must match.
func (h *Handler) CheckIn(c *fiber.Ctx) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	appointmentID, err := paramID(c)
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid appointment ID", err)
	}

	input := new(CheckInInput)
	if err := c.BodyParser(input); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Failed to parse request body", err)
	}
	if err := utils.Validate(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Validation failed",
			Error:   utils.FormatValidationError(err),
		})
	}

	appointment, err := findAppointment(appointmentID, id.CompanyID, false)
	if err != nil {
		return respondDBError(c, "Appointment", err)
	}
	if appointment.PassCode != input.PassCode {
		return respondError(c, fiber.StatusForbidden, "Pass code does not match", nil)
	}

	return h.transition(c, appointment, models.StatusCheckedIn)
}

// CheckOut completes a checked-in visit.
func (h *Handler) CheckOut(c *fiber.Ctx) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	appointmentID, err := paramID(c)
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid appointment ID", err)
	}

	appointment, err := findAppointment(appointmentID, id.CompanyID, false)
	if err != nil {
		return respondDBError(c, "Appointment", err)
	}
	return h.transition(c, appointment, models.StatusCompleted)
}

// DeleteAppointment godoc
// @Summary Delete an appointment
// @Tags appointments
// @Param id path int true "Appointment ID"
// @Success 204
// @Failure 404 {object} utils.ErrorResponse
// @Router /appointments/{id} [delete]
func (h *Handler) DeleteAppointment(c *fiber.Ctx) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	appointmentID, err := paramID(c)
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid appointment ID", err)
	}

	result := db.DB.Where("company_id = ?", id.CompanyID).Delete(&models.Appointment{}, appointmentID)
	if result.Error != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to delete appointment", result.Error)
	}
	if result.RowsAffected == 0 {
		return respondError(c, fiber.StatusNotFound, "Appointment not found", gorm.ErrRecordNotFound)
	}

	log.Info().Uint("appointment_id", appointmentID).Uint("company_id", id.CompanyID).Msg("appointment deleted")
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) transition(c *fiber.Ctx, appointment *models.Appointment, status models.AppointmentStatus) error {
	from := appointment.Status
	if err := appointment.UpdateStatus(db.DB, status, h.Resolver); err != nil {
		if errors.Is(err, models.ErrInvalidTransition) {
			return respondError(c, fiber.StatusConflict, "Invalid status transition", err)
		}
		return respondError(c, fiber.StatusInternalServerError, "Failed to update appointment", err)
	}

	log.Info().
		Uint("appointment_id", appointment.ID).
		Str("from", string(from)).
		Str("to", string(status)).
		Msg("appointment status changed")
	return c.JSON(appointment)
}

func findAppointment(appointmentID, companyID uint, withRelations bool) (*models.Appointment, error) {
	query := db.DB.Model(&models.Appointment{})
	if withRelations {
		query = query.Joins("Visitor").Joins("Employee")
	}
	var appointment models.Appointment
	err := query.Where("appointments.company_id = ?", companyID).
		Where("appointments.id = ?", appointmentID).
		First(&appointment).Error
	if err != nil {
		return nil, err
	}
	return &appointment, nil
}

// applyDateFilter restricts column, holding a date or date-time string, to
// the days covered by rng. Open bounds are not filtered.
func applyDateFilter(query *gorm.DB, column string, rng daterange.Range) *gorm.DB {
	if !rng.Start.IsZero() {
		query = query.Where(fmt.Sprintf("LEFT(%s, 10) >= ?", column), daterange.Format(rng.Start))
	}
	if !rng.End.IsZero() {
		query = query.Where(fmt.Sprintf("LEFT(%s, 10) <= ?", column), daterange.Format(rng.End))
	}
	return query
}

func pageOf[T any](items []T, page, limit int) []T {
	start := (page - 1) * limit
	if start >= len(items) {
		return nil
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func (h *Handler) notifyHost(a *models.Appointment) {
	if h.Notifier == nil || a.Employee == nil || a.Employee.Email == "" {
		return
	}
	visitorName := ""
	if a.Visitor != nil {
		visitorName = a.Visitor.Name
	}
	subject := "New visitor appointment"
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>%s is booked to visit you on %s %s.</p><p>Purpose: %s</p>",
		a.Employee.Name, visitorName, a.ScheduledDate(), a.ScheduledTime(), a.AppointmentDetails.Purpose,
	)
	to := a.Employee.Email
	appointmentID := a.ID

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := h.Notifier.Send(ctx, to, subject, body); err != nil {
			log.Warn().Err(err).Uint("appointment_id", appointmentID).Msg("host notification failed")
		}
	}()
}
