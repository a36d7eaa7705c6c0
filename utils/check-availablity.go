package utils

import (
	"github.com/safein/safein-server/db"
	"github.com/safein/safein-server/models"
)

// CheckHostAvailability reports whether the host employee has no other open
// appointment booked for the same day and time.
func CheckHostAvailability(companyID, employeeID uint, scheduledDate, scheduledTime string) (bool, error) {
	var count int64
	err := db.DB.Model(&models.Appointment{}).
		Where("company_id = ? AND employee_id = ?", companyID, employeeID).
		Where("LEFT(scheduled_date, 10) = LEFT(?, 10) AND scheduled_time = ?", scheduledDate, scheduledTime).
		Where("status IN ?", []models.AppointmentStatus{models.StatusPending, models.StatusApproved, models.StatusCheckedIn}).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count == 0, nil
}
