package controllers

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberutils "github.com/gofiber/fiber/v2/utils"
	"github.com/rs/zerolog/log"
	"github.com/safein/safein-server/daterange"
	"github.com/safein/safein-server/middleware"
	"github.com/safein/safein-server/redis"
	"github.com/safein/safein-server/schedule"
	"github.com/safein/safein-server/utils"
	"gorm.io/gorm"
)

// Handler carries the collaborators the HTTP handlers need. Persistence goes
// through the shared db.DB connection.
type Handler struct {
	Resolver  *schedule.Resolver
	Filters   redis.FilterStore
	Uploader  utils.PhotoUploader
	Notifier  utils.Notifier
	JWTSecret string
	TokenTTL  time.Duration
}

func (h *Handler) location() *time.Location {
	return h.Resolver.Location
}

type identity struct {
	UserID    uint
	CompanyID uint
	Role      string
}

func currentIdentity(c *fiber.Ctx) (identity, error) {
	userID, companyID, role, ok := middleware.Identity(c)
	if !ok {
		return identity{}, fiber.NewError(fiber.StatusUnauthorized, "User identity not found in context")
	}
	return identity{UserID: userID, CompanyID: companyID, Role: role}, nil
}

// ErrorHandler renders errors returned from handlers as ErrorResponse.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code >= fiber.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Msg("unhandled error")
	}
	return c.Status(code).JSON(utils.ErrorResponse{
		Message: fiberutils.StatusMessage(code),
		Error:   err.Error(),
	})
}

func paramID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, errBadID
	}
	return uint(id), nil
}

var errBadID = errors.New("invalid id")

func pagination(c *fiber.Ctx) (page, limit int) {
	page, limit = 1, 20
	if p := c.QueryInt("page"); p > 0 {
		page = p
	}
	if l := c.QueryInt("limit"); l > 0 {
		limit = l
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}

func respondError(c *fiber.Ctx, status int, message string, err error) error {
	body := utils.ErrorResponse{Message: message}
	if err != nil {
		body.Error = err.Error()
	}
	if status >= fiber.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Msg(message)
	}
	return c.Status(status).JSON(body)
}

func respondDBError(c *fiber.Ctx, what string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return respondError(c, fiber.StatusNotFound, what+" not found", err)
	}
	return respondError(c, fiber.StatusInternalServerError, "Failed to fetch "+what, err)
}

// rangeFromQuery picks the date filter for a list endpoint: a preset, then
// explicit startDate/endDate, then the caller's committed picker range for
// scope.
func (h *Handler) rangeFromQuery(c *fiber.Ctx, id identity, scope string) (daterange.Range, error) {
	loc := h.location()

	if p := c.Query("preset"); p != "" {
		preset, err := daterange.ParsePreset(p)
		if err != nil {
			return daterange.Range{}, err
		}
		return daterange.PresetRange(preset, h.Resolver.Now(), loc)
	}

	start, end := c.Query("startDate"), c.Query("endDate")
	if start != "" || end != "" {
		r, err := daterange.Value{StartDate: &start, EndDate: &end}.Range(loc)
		if err != nil {
			return daterange.Range{}, err
		}
		return r.Ordered(), nil
	}

	if h.Filters == nil {
		return daterange.Range{}, nil
	}
	key := redis.FilterKey{CompanyID: id.CompanyID, EmployeeID: id.UserID, Scope: scope}
	snap, err := h.Filters.Load(c.UserContext(), key)
	if err != nil {
		log.Warn().Err(err).Str("key", key.String()).Msg("saved filter unavailable, listing without date filter")
		return daterange.Range{}, nil
	}
	r, err := snap.Committed.Range(loc)
	if err != nil {
		log.Warn().Err(err).Str("key", key.String()).Msg("saved filter is corrupt, ignoring")
		return daterange.Range{}, nil
	}
	return r, nil
}
