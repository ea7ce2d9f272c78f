package handlers

import (
	"investa/internal/services/notification"
	"investa/internal/utils"
	"investa/internal/utils/pagination"

	"github.com/gofiber/fiber/v2"
)

type NotificationHandler struct {
	notifications *notification.Service
}

func NewNotificationHandler(notificationService *notification.Service) *NotificationHandler {
	return &NotificationHandler{notifications: notificationService}
}

type broadcastRequest struct {
	Title   string `json:"title" validate:"required,max=255"`
	Message string `json:"message" validate:"required"`
	Image   string `json:"image" validate:"omitempty,url"`
}

// Create broadcasts a notification to every member. Admin only.
func (h *NotificationHandler) Create(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	var req broadcastRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	n, recipients, err := h.notifications.Broadcast(c.UserContext(), a, notification.BroadcastInput{
		Title:   req.Title,
		Message: req.Message,
		Image:   req.Image,
	})
	if err != nil {
		return err
	}
	return utils.Created(c, "Notification sent successfully", fiber.Map{
		"id":         n.ID,
		"title":      n.Title,
		"message":    n.Message,
		"image":      n.Image,
		"recipients": recipients,
	})
}

// Index pages the caller's notifications, newest first.
func (h *NotificationHandler) Index(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	p := pagination.ParseFromRequest(c)
	rows, total, err := h.notifications.List(c.UserContext(), a.UserID, p.Window())
	if err != nil {
		return err
	}

	items := make([]fiber.Map, 0, len(rows))
	for i := range rows {
		items = append(items, presentNotification(&rows[i]))
	}
	return utils.Success(c, "Notifications retrieved", pagination.Response("notifications", p, total, items))
}

// Show returns one notification and marks it read.
func (h *NotificationHandler) Show(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	row, err := h.notifications.Show(c.UserContext(), a.UserID, id)
	if err != nil {
		return err
	}
	return utils.Success(c, "Notification retrieved", presentNotification(row))
}

// UnreadCount returns how many of the caller's notifications are unread.
func (h *NotificationHandler) UnreadCount(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	n, err := h.notifications.UnreadCount(c.UserContext(), a.UserID)
	if err != nil {
		return err
	}
	return utils.Success(c, "Unread count retrieved", fiber.Map{"unread_count": n})
}
