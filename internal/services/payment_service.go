package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prof-it/school-service/internal/events"
	"github.com/prof-it/school-service/internal/models"
	"github.com/prof-it/school-service/internal/repositories"
	"github.com/prof-it/school-service/internal/validator"
)

type paymentService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	notifier  NotificationService
	publisher events.EventPublisher
}

func NewPaymentService(
	repo repositories.Repository,
	logger *slog.Logger,
	validator *validator.Validator,
	notifier NotificationService,
	publisher events.EventPublisher,
) PaymentService {
	return &paymentService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		notifier:  notifier,
		publisher: publisher,
	}
}

func (s *paymentService) Create(ctx context.Context, req CreatePaymentRequest) (*models.Payment, error) {
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, err.Error())
	}

	student, err := s.repo.User().GetByID(ctx, req.StudentID)
	if err != nil {
		return nil, fmt.Errorf("%w: student not found", ErrNotFound)
	}
	if student.Role != models.RoleStudent {
		return nil, fmt.Errorf("%w: user %s is not a student", ErrValidationFailed, req.StudentID)
	}

	if req.GroupID != "" {
		if _, err := s.repo.Group().GetByID(ctx, req.GroupID); err != nil {
			return nil, fmt.Errorf("%w: group not found", ErrNotFound)
		}
	}

	currency := req.Currency
	if currency == "" {
		currency = "EUR"
	}

	status := models.PaymentStatus(req.Status)
	if req.Status == "" {
		status = models.PaymentPending
	}

	payment := &models.Payment{
		StudentID:   req.StudentID,
		GroupID:     req.GroupID,
		Amount:      req.Amount,
		Currency:    currency,
		Status:      status,
		PaymentDate: req.PaymentDate,
		DueDate:     req.DueDate,
		Description: req.Description,
	}
	if payment.Status == models.PaymentPaid {
		paidAt := req.PaymentDate
		payment.PaidAt = &paidAt
	}

	if err := s.repo.Payment().Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}

	s.logger.Info("Payment created",
		"payment_id", payment.ID,
		"student_id", payment.StudentID,
		"amount", payment.Amount)

	// Payments recorded as already paid need no reminder.
	if payment.Status != models.PaymentPaid {
		title := "Payment Due"
		message := fmt.Sprintf("A payment of %.2f %s is due by %s.",
			payment.Amount, payment.Currency, payment.DueDate.Format("2006-01-02"))
		if err := s.notifier.NotifyUsers(ctx, []string{payment.StudentID}, models.NotificationPaymentDue, title, message); err != nil {
			s.logger.Error("Failed to notify student about payment",
				"error", err,
				"payment_id", payment.ID,
				"student_id", payment.StudentID)
		}
	}

	return payment, nil
}

func (s *paymentService) GetByID(ctx context.Context, id string) (*models.Payment, error) {
	payment, err := s.repo.Payment().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: payment not found", ErrNotFound)
	}
	return payment, nil
}

func (s *paymentService) List(ctx context.Context, studentID, status string, page, size int) (*PaymentListResponse, error) {
	filters := repositories.PaymentFilters{
		Limit:     size,
		Offset:    pageOffset(page, size),
		SortBy:    "due_date",
		SortOrder: "asc",
	}
	if studentID != "" {
		filters.StudentID = &studentID
	}
	if status != "" {
		st := models.PaymentStatus(status)
		if !st.Valid() {
			return nil, fmt.Errorf("%w: unknown payment status %q", ErrValidationFailed, status)
		}
		filters.Status = &st
	}

	payments, total, err := s.repo.Payment().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	return &PaymentListResponse{Payments: payments, Total: total, Page: page, Size: size}, nil
}

func (s *paymentService) Update(ctx context.Context, id string, req UpdatePaymentRequest) (*models.Payment, error) {
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, err.Error())
	}

	payment, err := s.repo.Payment().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: payment not found", ErrNotFound)
	}

	if req.Amount != nil {
		payment.Amount = *req.Amount
	}
	if req.Status != nil {
		payment.Status = models.PaymentStatus(*req.Status)
		if payment.Status == models.PaymentPaid && payment.PaidAt == nil {
			now := time.Now()
			payment.PaidAt = &now
		}
	}
	if req.PaymentDate != nil {
		payment.PaymentDate = *req.PaymentDate
	}
	if req.DueDate != nil {
		payment.DueDate = *req.DueDate
	}
	if req.Description != nil {
		payment.Description = *req.Description
	}

	payment.Student = nil
	payment.Group = nil

	if err := s.repo.Payment().Update(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to update payment: %w", err)
	}

	s.logger.Info("Payment updated", "payment_id", payment.ID, "status", payment.Status)

	return payment, nil
}

func (s *paymentService) MarkPaid(ctx context.Context, id string) (*models.Payment, error) {
	payment, err := s.repo.Payment().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: payment not found", ErrNotFound)
	}

	if payment.Status == models.PaymentPaid {
		return nil, fmt.Errorf("%w: payment already paid", ErrConflict)
	}

	now := time.Now()
	payment.Status = models.PaymentPaid
	payment.PaidAt = &now
	payment.Student = nil
	payment.Group = nil

	if err := s.repo.Payment().Update(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to mark payment paid: %w", err)
	}

	s.logger.Info("Payment marked paid", "payment_id", payment.ID)

	return payment, nil
}

func (s *paymentService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.Payment().GetByID(ctx, id); err != nil {
		return fmt.Errorf("%w: payment not found", ErrNotFound)
	}

	if err := s.repo.Payment().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete payment: %w", err)
	}

	s.logger.Info("Payment deleted", "payment_id", id)

	return nil
}

// SendDueReminders notifies every student holding an unpaid payment
// whose due date has passed. Returns the number of reminders sent.
func (s *paymentService) SendDueReminders(ctx context.Context) (int, error) {
	now := time.Now()
	payments, _, err := s.repo.Payment().List(ctx, repositories.PaymentFilters{DueTo: &now})
	if err != nil {
		return 0, fmt.Errorf("failed to list due payments: %w", err)
	}

	sent := 0
	for _, payment := range payments {
		if payment.Status == models.PaymentPaid || payment.Status == models.PaymentCanceled {
			continue
		}

		title := "Payment due"
		message := fmt.Sprintf("Payment of %.2f %s was due on %s.",
			payment.Amount, payment.Currency, payment.DueDate.Format("2006-01-02"))

		if err := s.notifier.NotifyUsers(ctx, []string{payment.StudentID}, models.NotificationPaymentDue, title, message); err != nil {
			s.logger.Error("Failed to send due reminder",
				"error", err,
				"payment_id", payment.ID,
				"student_id", payment.StudentID)
			continue
		}
		sent++

		if s.publisher != nil {
			event := events.NewEvent(events.EventPaymentDue, map[string]any{
				"payment_id": payment.ID,
				"student_id": payment.StudentID,
				"amount":     payment.Amount,
				"due_date":   payment.DueDate,
			})
			if err := s.publisher.Publish(ctx, event); err != nil {
				s.logger.Error("Failed to publish payment due event", "error", err, "payment_id", payment.ID)
			}
		}
	}

	s.logger.Info("Due reminders sent", "count", sent)

	return sent, nil
}
