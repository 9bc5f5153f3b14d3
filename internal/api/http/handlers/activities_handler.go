package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/siyabongaprospersithole/support-ticket-system/internal/api/dto"
	"github.com/siyabongaprospersithole/support-ticket-system/internal/auth"
	"github.com/siyabongaprospersithole/support-ticket-system/internal/domain"
	"github.com/siyabongaprospersithole/support-ticket-system/internal/repository"
	"github.com/siyabongaprospersithole/support-ticket-system/internal/service"
	apperrors "github.com/siyabongaprospersithole/support-ticket-system/pkg/util"
)

// ActivitiesHandler serves the activity feed.
type ActivitiesHandler struct {
	activity *service.ActivityService
	tickets  repository.TicketRepository
	users    repository.UserRepository
	logger   *zap.Logger
}

// NewActivitiesHandler constructs handler.
func NewActivitiesHandler(activityService *service.ActivityService, tickets repository.TicketRepository, users repository.UserRepository, logger *zap.Logger) *ActivitiesHandler {
	return &ActivitiesHandler{activity: activityService, tickets: tickets, users: users, logger: logger}
}

// Feed GET /activities. Admin only: the feed spans every user's tickets.
func (h *ActivitiesHandler) Feed(c *fiber.Ctx) error {
	if _, ok := auth.PrincipalFromContext(c); !ok {
		return apperrors.NewUnauthorized("user required")
	}

	filter := parseActivityQuery(c)
	activities, total, err := h.activity.List(c.Context(), filter)
	if err != nil {
		return err
	}

	items, err := h.renderItems(c, activities)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ActivityFeedResponse{Items: items, Total: total}})
}

// ForTicket GET /tickets/:id/activities. Same visibility rule as the
// ticket detail.
func (h *ActivitiesHandler) ForTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}

	ticket, err := h.tickets.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	if !canViewTicket(principal, ticket) {
		return apperrors.NewForbidden("not your ticket")
	}

	activities, err := h.activity.ForSubject(c.Context(), domain.SubjectTicket, c.Params("id"))
	if err != nil {
		return err
	}
	items, err := h.renderItems(c, activities)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ActivityFeedResponse{Items: items, Total: len(items)}})
}

func (h *ActivitiesHandler) renderItems(c *fiber.Ctx, activities []domain.Activity) ([]dto.ActivityFeedItem, error) {
	// Causers repeat heavily across a page of the feed, so resolve each
	// user once.
	causers := make(map[string]*domain.User)

	items := make([]dto.ActivityFeedItem, 0, len(activities))
	for i := range activities {
		activity := activities[i]

		item := dto.ActivityFeedItem{
			ID:          activity.ID,
			Type:        activity.Type,
			Description: activity.Description,
			Icon:        activity.Type.Icon(),
			Color:       activity.Type.Color(),
			SubjectType: activity.SubjectType,
			SubjectID:   activity.SubjectID,
			CreatedAt:   activity.CreatedAt,
		}

		details, err := h.activity.FormattedDetails(c.Context(), activity)
		if err != nil {
			h.logger.Warn("activity details not rendered", zap.String("activity_id", activity.ID), zap.Error(err))
		} else {
			item.Details = details
		}

		ticket, err := h.activity.ResolveTicket(c.Context(), activity)
		if err != nil {
			h.logger.Warn("activity ticket not resolved", zap.String("activity_id", activity.ID), zap.Error(err))
		} else if ticket != nil {
			item.Ticket = &dto.TicketRef{ID: ticket.ID, Title: ticket.Title}
		}

		if activity.CauserID != nil {
			causer, ok := causers[*activity.CauserID]
			if !ok {
				causer, err = h.users.GetByID(c.Context(), *activity.CauserID)
				if err != nil {
					causer = nil
				}
				causers[*activity.CauserID] = causer
			}
			if causer != nil {
				resp := userResponse(causer)
				item.Causer = &resp
			}
		}

		items = append(items, item)
	}
	return items, nil
}

func parseActivityQuery(c *fiber.Ctx) repository.ActivityFilter {
	filter := repository.ActivityFilter{Limit: defaultPageSize}

	if raw := strings.TrimSpace(c.Query("type")); raw != "" {
		kind := domain.ActivityType(raw)
		filter.Type = &kind
	}
	if raw := strings.TrimSpace(c.Query("search")); raw != "" {
		filter.SearchTerm = &raw
	}

	page, _ := strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.Query("page_size", strconv.Itoa(defaultPageSize)))
	if pageSize < 1 || pageSize > 100 {
		pageSize = defaultPageSize
	}
	filter.Limit = pageSize
	filter.Offset = (page - 1) * pageSize
	return filter
}
