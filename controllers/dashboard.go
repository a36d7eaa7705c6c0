package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/safein/safein-server/daterange"
	"github.com/safein/safein-server/db"
	"github.com/safein/safein-server/models"
)

const dashboardScope = "dashboard"

type StatsResponse struct {
	Range       daterange.Value                    `json:"range"`
	Total       int                                `json:"total"`
	ByStatus    map[models.AppointmentStatus]int64 `json:"byStatus"`
	NewVisitors int64                              `json:"newVisitors"`
}

// DashboardStats counts the company's appointments per effective status for
// the selected range.
func (h *Handler) DashboardStats(c *fiber.Ctx) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}

	rng, err := h.rangeFromQuery(c, id, dashboardScope)
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid date range", err)
	}

	query := db.DB.Model(&models.Appointment{}).
		Select("id", "status", "scheduled_date", "scheduled_time").
		Where("company_id = ?", id.CompanyID)
	if id.Role == string(models.RoleEmployee) {
		query = query.Where("employee_id = ?", id.UserID)
	}
	query = applyDateFilter(query, "scheduled_date", rng)

	var appointments []models.Appointment
	if err := query.Find(&appointments).Error; err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to fetch appointments", err)
	}

	stats := StatsResponse{
		Range:    rng.Value(),
		Total:    len(appointments),
		ByStatus: map[models.AppointmentStatus]int64{},
	}
	for _, s := range []models.AppointmentStatus{
		models.StatusPending, models.StatusApproved, models.StatusRejected, models.StatusCheckedIn,
		models.StatusCompleted, models.StatusCancelled, models.StatusTimeOut,
	} {
		stats.ByStatus[s] = 0
	}
	for i := range appointments {
		stats.ByStatus[appointments[i].Resolve(h.Resolver)]++
	}

	if err := visitorsIn(id.CompanyID, rng).Count(&stats.NewVisitors).Error; err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to count visitors", err)
	}

	return c.JSON(stats)
}
