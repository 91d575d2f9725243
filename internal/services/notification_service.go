package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prof-it/school-service/internal/events"
	"github.com/prof-it/school-service/internal/models"
	"github.com/prof-it/school-service/internal/repositories"
)

type notificationService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	publisher events.EventPublisher
}

func NewNotificationService(repo repositories.Repository, logger *slog.Logger, publisher events.EventPublisher) NotificationService {
	return &notificationService{repo: repo, logger: logger, publisher: publisher}
}

func (s *notificationService) ListForUser(ctx context.Context, userID string, unreadOnly bool, limit, offset int) (*NotificationListResponse, error) {
	notifications, total, err := s.repo.Notification().ListByUser(ctx, userID, repositories.NotificationFilters{
		UnreadOnly: unreadOnly,
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	unread, err := s.repo.Notification().CountUnread(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count unread notifications: %w", err)
	}

	return &NotificationListResponse{
		Notifications: notifications,
		Total:         total,
		Unread:        unread,
	}, nil
}

func (s *notificationService) MarkRead(ctx context.Context, userID, notificationID string) (*models.Notification, error) {
	notification, err := s.repo.Notification().GetByID(ctx, notificationID)
	if err != nil {
		return nil, fmt.Errorf("%w: notification not found", ErrNotFound)
	}

	// A notification addressed to someone else does not exist as far as
	// this user is concerned.
	if notification.UserID != userID {
		return nil, fmt.Errorf("%w: notification not found", ErrNotFound)
	}

	if notification.Read {
		return notification, nil
	}

	notification.Read = true
	if err := s.repo.Notification().Update(ctx, notification); err != nil {
		return nil, fmt.Errorf("failed to mark notification read: %w", err)
	}

	return notification, nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID string) error {
	notifications, _, err := s.repo.Notification().ListByUser(ctx, userID, repositories.NotificationFilters{UnreadOnly: true})
	if err != nil {
		return fmt.Errorf("failed to list unread notifications: %w", err)
	}

	var errs []error
	for _, notification := range notifications {
		notification.Read = true
		if err := s.repo.Notification().Update(ctx, notification); err != nil {
			errs = append(errs, fmt.Errorf("notification %s: %w", notification.ID, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("failed to mark all read: %w", errors.Join(errs...))
	}

	return nil
}

// NotifyUsers writes one notification per recipient. Every write is
// attempted even when earlier ones fail; the failures come back joined
// so the caller sees the full picture.
func (s *notificationService) NotifyUsers(ctx context.Context, userIDs []string, nType models.NotificationType, title, message string) error {
	var errs []error
	created := make([]string, 0, len(userIDs))

	for _, userID := range userIDs {
		notification := &models.Notification{
			UserID:  userID,
			Type:    nType,
			Title:   title,
			Message: message,
		}
		if err := s.repo.Notification().Create(ctx, notification); err != nil {
			errs = append(errs, fmt.Errorf("recipient %s: %w", userID, err))
			continue
		}
		created = append(created, notification.ID)
	}

	s.logger.Info("Notifications created",
		"type", nType,
		"recipients", len(userIDs),
		"created", len(created),
		"failed", len(errs))

	if s.publisher != nil && len(created) > 0 {
		event := events.NewEvent(events.EventNotificationsSent, map[string]any{
			"type":             string(nType),
			"title":            title,
			"notification_ids": created,
		})
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Error("Failed to publish notification event", "error", err, "type", nType)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("notification fan-out incomplete (%d of %d failed): %w",
			len(errs), len(userIDs), errors.Join(errs...))
	}

	return nil
}
