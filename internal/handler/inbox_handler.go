package handler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/talentwire/pipeline-tracker/internal/domain"
	"github.com/talentwire/pipeline-tracker/internal/service"
)

const defaultInboxLimit = 50

type InboxService interface {
	List(ctx context.Context, recipient string, limit int) (*service.InboxPage, error)
	UnreadCount(ctx context.Context, recipient string) (int64, error)
	MarkRead(ctx context.Context, recipient, id string, strict bool) error
	MarkAllRead(ctx context.Context, recipient string) (int64, error)
}

type InboxHandler struct {
	service InboxService
}

func NewInboxHandler(service InboxService) (*InboxHandler, error) {
	if service == nil {
		return nil, fmt.Errorf("inbox service is required")
	}
	return &InboxHandler{service: service}, nil
}

func RegisterInboxRoutes(router fiber.Router, service InboxService) error {
	h, err := NewInboxHandler(service)
	if err != nil {
		return err
	}

	v1 := router.Group("/v1")
	v1.Get("/inbox", h.ListInbox)
	v1.Get("/inbox/unread-count", h.UnreadCount)
	v1.Post("/inbox/:id/read", h.MarkRead)
	v1.Post("/inbox/read-all", h.MarkAllRead)

	return nil
}

type notificationItem struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	Priority    string    `json:"priority"`
	Read        bool      `json:"read"`
	RelatedKind string    `json:"relatedKind"`
	RelatedID   string    `json:"relatedId"`
	ActionHint  string    `json:"actionHint,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

type inboxResponse struct {
	Data        []notificationItem `json:"data"`
	UnreadCount int64              `json:"unreadCount"`
}

func (h *InboxHandler) ListInbox(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", defaultInboxLimit)

	page, err := h.service.List(c.UserContext(), inboxRecipient(c), limit)
	if err != nil {
		return err
	}

	items := make([]notificationItem, 0, len(page.Notifications))
	for i := range page.Notifications {
		items = append(items, toNotificationItem(&page.Notifications[i]))
	}

	return c.Status(fiber.StatusOK).JSON(inboxResponse{
		Data:        items,
		UnreadCount: page.UnreadCount,
	})
}

func (h *InboxHandler) UnreadCount(c *fiber.Ctx) error {
	count, err := h.service.UnreadCount(c.UserContext(), inboxRecipient(c))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"unreadCount": count})
}

func (h *InboxHandler) MarkRead(c *fiber.Ctx) error {
	strict := c.QueryBool("strict", false)
	if err := h.service.MarkRead(c.UserContext(), inboxRecipient(c), c.Params("id"), strict); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *InboxHandler) MarkAllRead(c *fiber.Ctx) error {
	marked, err := h.service.MarkAllRead(c.UserContext(), inboxRecipient(c))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"marked": marked})
}

// inboxRecipient is the acting user; the inbox never exposes another user's
// notifications.
func inboxRecipient(c *fiber.Ctx) string {
	return strings.TrimSpace(c.Get(actorIDHeader))
}

func toNotificationItem(n *domain.Notification) notificationItem {
	return notificationItem{
		ID:          n.ID,
		Type:        n.Type.String(),
		Title:       n.Title,
		Message:     n.Message,
		Priority:    n.Priority.String(),
		Read:        n.Read,
		RelatedKind: string(n.RelatedKind),
		RelatedID:   n.RelatedID,
		ActionHint:  n.ActionHint,
		CreatedAt:   n.CreatedAt,
	}
}
