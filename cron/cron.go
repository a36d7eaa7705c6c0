package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"github.com/safein/safein-server/daterange"
	"github.com/safein/safein-server/db"
	"github.com/safein/safein-server/models"
	"github.com/safein/safein-server/schedule"
	"github.com/safein/safein-server/utils"
)

// DefaultLookback bounds how far back a run searches for lapsed visits that
// were never notified, so a missed night is caught up on the next run.
const DefaultLookback = 7 * 24 * time.Hour

// LapseNotifier tells hosts about visits that were never acted on and have
// now timed out. Each appointment is notified once.
type LapseNotifier struct {
	Resolver *schedule.Resolver
	Notifier utils.Notifier
	Lookback time.Duration
}

// StartCronJobs schedules the lapse notifier on expr in the resolver's
// location. The caller stops the returned scheduler on shutdown.
func StartCronJobs(expr string, job *LapseNotifier) (*cron.Cron, error) {
	c := cron.New(cron.WithLocation(job.Resolver.Location))
	_, err := c.AddFunc(expr, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		if _, err := job.Run(ctx); err != nil {
			log.Error().Err(err).Msg("lapse notifier failed")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("add lapse job %q: %w", expr, err)
	}
	c.Start()
	log.Info().Str("expr", expr).Msg("cron scheduler started for lapsed appointments")
	return c, nil
}

// Run emails the host of every pending appointment scheduled before today,
// within the lookback window, that has not been notified yet. Notified
// appointments are stamped so later runs skip them. It returns how many
// notices were sent.
func (n *LapseNotifier) Run(ctx context.Context) (int, error) {
	lookback := n.Lookback
	if lookback < 24*time.Hour {
		lookback = DefaultLookback
	}
	today := n.Resolver.Today()
	from := daterange.Format(today.AddDate(0, 0, -int(lookback/(24*time.Hour))))
	until := daterange.Format(today)

	var appointments []models.Appointment
	err := db.DB.WithContext(ctx).
		Joins("Visitor").
		Joins("Employee").
		Where("appointments.status = ?", models.StatusPending).
		Where("appointments.lapse_notified_at IS NULL").
		Where("LEFT(appointments.scheduled_date, 10) >= ?", from).
		Where("LEFT(appointments.scheduled_date, 10) < ?", until).
		Order("appointments.scheduled_date, appointments.id").
		Find(&appointments).Error
	if err != nil {
		return 0, fmt.Errorf("fetch lapsed appointments: %w", err)
	}

	log.Info().Int("count", len(appointments)).Str("from", from).Str("until", until).Msg("checking lapsed appointments")

	sent := 0
	for i := range appointments {
		a := &appointments[i]
		if a.Resolve(n.Resolver) != models.StatusTimeOut {
			continue
		}
		if a.Employee == nil || a.Employee.Email == "" {
			log.Warn().Uint("appointment_id", a.ID).Msg("lapsed appointment has no host email")
			continue
		}

		subject, body := lapseEmail(a)
		if err := n.Notifier.Send(ctx, a.Employee.Email, subject, body); err != nil {
			log.Error().Err(err).Uint("appointment_id", a.ID).Msg("failed to send lapse notice")
			continue
		}
		sent++

		err := db.DB.WithContext(ctx).
			Model(&models.Appointment{}).
			Where("id = ?", a.ID).
			Update("lapse_notified_at", n.Resolver.Now()).Error
		if err != nil {
			log.Error().Err(err).Uint("appointment_id", a.ID).Msg("failed to mark lapse notice")
		}
	}
	return sent, nil
}

func lapseEmail(a *models.Appointment) (string, string) {
	visitor := "A visitor"
	if a.Visitor != nil && a.Visitor.Name != "" {
		visitor = a.Visitor.Name
	}
	subject := fmt.Sprintf("Visit timed out: %s", visitor)
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>The visit below was never approved or rejected and has timed out.</p>
		<ul>
			<li><strong>Visitor:</strong> %s</li>
			<li><strong>Scheduled:</strong> %s %s</li>
			<li><strong>Purpose:</strong> %s</li>
		</ul>
		<p>Ask the visitor to book again if the visit is still needed.</p>
		<p>SafeIn</p>
	`, a.Employee.Name, visitor, a.ScheduledDate(), a.ScheduledTime(), a.AppointmentDetails.Purpose)
	return subject, body
}
