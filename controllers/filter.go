package controllers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/safein/safein-server/daterange"
	"github.com/safein/safein-server/redis"
)

var filterScopes = map[string]bool{
	appointmentsScope: true,
	visitorsScope:     true,
	dashboardScope:    true,
}

var errUnknownAction = errors.New("unknown picker action")

type FilterActionInput struct {
	Date      string          `json:"date"`
	Preset    string          `json:"preset"`
	Direction string          `json:"direction"`
	Value     daterange.Value `json:"value"`
}

// FilterResponse carries the picker after an action. Changed is set when the
// action committed a range; Value is then the range passed to the callback.
type FilterResponse struct {
	Picker  daterange.Snapshot `json:"picker"`
	Changed bool               `json:"changed"`
	Value   *daterange.Value   `json:"value,omitempty"`
}

// GetFilter returns the caller's picker for scope.
func (h *Handler) GetFilter(c *fiber.Ctx) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	key, err := filterKey(c, id)
	if err != nil {
		return err
	}

	picker, err := h.loadPicker(c, key, nil)
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to load filter", err)
	}
	return c.JSON(FilterResponse{Picker: picker.Snapshot()})
}

// FilterAction drives the caller's picker for scope with one user action and
// persists the result.
func (h *Handler) FilterAction(c *fiber.Ctx) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	key, err := filterKey(c, id)
	if err != nil {
		return err
	}

	input := new(FilterActionInput)
	if len(c.Body()) > 0 {
		if err := c.BodyParser(input); err != nil {
			return respondError(c, fiber.StatusBadRequest, "Failed to parse request body", err)
		}
	}

	var committed *daterange.Value
	picker, err := h.loadPicker(c, key, func(v daterange.Value) {
		committed = &v
	})
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to load filter", err)
	}

	if err := h.applyAction(picker, c.Params("action"), input); err != nil {
		switch {
		case errors.Is(err, errUnknownAction):
			return respondError(c, fiber.StatusNotFound, "Unknown action", err)
		case errors.Is(err, daterange.ErrPickerClosed), errors.Is(err, daterange.ErrIncompleteRange):
			return respondError(c, fiber.StatusConflict, "Action not allowed in current state", err)
		default:
			return respondError(c, fiber.StatusBadRequest, "Invalid action input", err)
		}
	}

	snap := picker.Snapshot()
	if err := h.Filters.Save(c.UserContext(), key, snap); err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Failed to save filter", err)
	}

	if committed != nil {
		log.Debug().
			Str("key", key.String()).
			Interface("value", committed).
			Msg("date range committed")
	}
	return c.JSON(FilterResponse{Picker: snap, Changed: committed != nil, Value: committed})
}

func (h *Handler) applyAction(p *daterange.Picker, action string, in *FilterActionInput) error {
	loc := h.location()
	now := h.Resolver.Now()

	switch action {
	case "open":
		p.Open(now)
	case "click":
		d, err := daterange.ParseDate(in.Date, loc)
		if err != nil {
			return err
		}
		return p.ClickDay(d)
	case "hover":
		d, err := daterange.ParseDate(in.Date, loc)
		if err != nil {
			return err
		}
		p.HoverDay(d)
	case "apply":
		return p.Apply()
	case "cancel":
		p.Cancel()
	case "outside":
		p.ClickOutside()
	case "preset":
		preset, err := daterange.ParsePreset(in.Preset)
		if err != nil {
			return err
		}
		return p.SelectPreset(preset, now)
	case "clear":
		p.Clear()
	case "month":
		switch in.Direction {
		case "next":
			p.NextMonth()
		case "prev":
			p.PrevMonth()
		default:
			return fmt.Errorf("direction must be next or prev, got %q", in.Direction)
		}
	case "initial":
		return p.SetInitialValue(in.Value)
	default:
		return fmt.Errorf("%w: %q", errUnknownAction, action)
	}
	return nil
}

func (h *Handler) loadPicker(c *fiber.Ctx, key redis.FilterKey, onChange func(daterange.Value)) (*daterange.Picker, error) {
	picker := daterange.NewPicker(h.location(), onChange)
	snap, err := h.Filters.Load(c.UserContext(), key)
	if err != nil {
		return nil, err
	}
	if err := picker.Restore(snap); err != nil {
		// Corrupt snapshots start over empty.
		log.Warn().Err(err).Str("key", key.String()).Msg("discarding corrupt filter")
		return daterange.NewPicker(h.location(), onChange), nil
	}
	return picker, nil
}

func filterKey(c *fiber.Ctx, id identity) (redis.FilterKey, error) {
	scope := c.Params("scope")
	if !filterScopes[scope] {
		return redis.FilterKey{}, fiber.NewError(fiber.StatusNotFound, fmt.Sprintf("unknown filter scope %q", scope))
	}
	return redis.FilterKey{CompanyID: id.CompanyID, EmployeeID: id.UserID, Scope: scope}, nil
}
