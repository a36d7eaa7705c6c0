package controllers

import (
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/safein/safein-server/db/dbtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardStats_CountsEffectiveStatus(t *testing.T) {
	mock := dbtest.Setup(t)
	h := newTestHandler(time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC))

	mock.ExpectQuery(`SELECT "id","status","scheduled_date","scheduled_time" FROM "appointments"`).
		WithArgs(sqlmock.AnyArg(), "2025-06-09", "2025-06-15").
		WillReturnRows(sqlmock.NewRows([]string{"id", "status", "scheduled_date", "scheduled_time"}).
			AddRow(1, "approved", "2025-06-10", "10:00").
			AddRow(2, "pending", "2025-06-12", "11:00").
			AddRow(3, "pending", "2025-06-15", "08:00").
			AddRow(4, "completed", "2025-06-11", "16:00"))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "visitors"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))

	app := newTestApp(testEmployeeID, "admin", func(r fiber.Router) {
		r.Get("/dashboard/stats", h.DashboardStats)
	})
	status, body := doJSON(t, app, http.MethodGet, "/dashboard/stats?preset=last_7_days", nil)

	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 4, body["total"])
	assert.EqualValues(t, 5, body["newVisitors"])

	byStatus := body["byStatus"].(map[string]interface{})
	assert.EqualValues(t, 1, byStatus["approved"])
	assert.EqualValues(t, 1, byStatus["pending"])
	assert.EqualValues(t, 1, byStatus["time_out"])
	assert.EqualValues(t, 1, byStatus["completed"])
	assert.EqualValues(t, 0, byStatus["rejected"])

	rng := body["range"].(map[string]interface{})
	assert.Equal(t, "2025-06-09", rng["startDate"])
}
