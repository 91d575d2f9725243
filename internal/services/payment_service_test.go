package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prof-it/school-service/internal/events"
	"github.com/prof-it/school-service/internal/models"
	"github.com/prof-it/school-service/internal/repositories"
	"github.com/prof-it/school-service/internal/validator"
)

func newPaymentFixture(t *testing.T) (*fakeRepo, *events.MockEventPublisher, PaymentService, *models.User) {
	t.Helper()
	repo := newFakeRepo()
	publisher := events.NewMockEventPublisher()
	logger := testLogger()
	notifier := NewNotificationService(repo, logger, publisher)
	service := NewPaymentService(repo, logger, validator.New(), notifier, publisher)

	student := &models.User{Email: "student@example.com", Role: models.RoleStudent, Approved: true}
	if err := repo.users.Create(context.Background(), student); err != nil {
		t.Fatal(err)
	}
	return repo, publisher, service, student
}

func TestPaymentCreateDefaults(t *testing.T) {
	_, _, service, student := newPaymentFixture(t)

	paymentDate := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	payment, err := service.Create(context.Background(), CreatePaymentRequest{
		StudentID:   student.ID,
		Amount:      150,
		PaymentDate: paymentDate,
		DueDate:     time.Now().AddDate(0, 1, 0),
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if payment.Status != models.PaymentPending {
		t.Errorf("status = %q, want %q", payment.Status, models.PaymentPending)
	}
	if payment.Currency != "EUR" {
		t.Errorf("currency = %q, want EUR", payment.Currency)
	}
	if !payment.PaymentDate.Equal(paymentDate) {
		t.Errorf("payment_date = %v, want %v", payment.PaymentDate, paymentDate)
	}
}

func TestPaymentCreateNotifiesStudent(t *testing.T) {
	repo, _, service, student := newPaymentFixture(t)
	ctx := context.Background()

	if _, err := service.Create(ctx, CreatePaymentRequest{
		StudentID:   student.ID,
		Amount:      150,
		PaymentDate: time.Now(),
		DueDate:     time.Now().AddDate(0, 1, 0),
	}); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	notifications, _, err := repo.notifications.ListByUser(ctx, student.ID, repositories.NotificationFilters{})
	if err != nil {
		t.Fatal(err)
	}
	if len(notifications) != 1 {
		t.Fatalf("notifications = %d, want 1", len(notifications))
	}
	if notifications[0].Title != "Payment Due" {
		t.Errorf("title = %q, want %q", notifications[0].Title, "Payment Due")
	}
	if notifications[0].Type != models.NotificationPaymentDue {
		t.Errorf("type = %q, want %q", notifications[0].Type, models.NotificationPaymentDue)
	}
}

func TestPaymentCreatePaidOnRecord(t *testing.T) {
	repo, _, service, student := newPaymentFixture(t)
	ctx := context.Background()

	paymentDate := time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC)
	payment, err := service.Create(ctx, CreatePaymentRequest{
		StudentID:   student.ID,
		Amount:      90,
		Status:      "paid",
		PaymentDate: paymentDate,
		DueDate:     paymentDate.AddDate(0, 1, 0),
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if payment.Status != models.PaymentPaid {
		t.Errorf("status = %q, want %q", payment.Status, models.PaymentPaid)
	}
	if payment.PaidAt == nil || !payment.PaidAt.Equal(paymentDate) {
		t.Errorf("paid_at = %v, want %v", payment.PaidAt, paymentDate)
	}

	// A payment recorded as settled triggers no reminder.
	notifications, _, err := repo.notifications.ListByUser(ctx, student.ID, repositories.NotificationFilters{})
	if err != nil {
		t.Fatal(err)
	}
	if len(notifications) != 0 {
		t.Errorf("notifications = %d, want 0", len(notifications))
	}
}

func TestPaymentCreateRejectsUnknownStatus(t *testing.T) {
	_, _, service, student := newPaymentFixture(t)

	_, err := service.Create(context.Background(), CreatePaymentRequest{
		StudentID:   student.ID,
		Amount:      150,
		Status:      "refunded",
		PaymentDate: time.Now(),
		DueDate:     time.Now().AddDate(0, 1, 0),
	})
	if !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("expected ErrValidationFailed, got %v", err)
	}
}

func TestPaymentCreateRejectsNonStudents(t *testing.T) {
	repo, _, service, _ := newPaymentFixture(t)
	ctx := context.Background()

	teacher := &models.User{Email: "teacher@example.com", Role: models.RoleTeacher, Approved: true}
	if err := repo.users.Create(ctx, teacher); err != nil {
		t.Fatal(err)
	}

	_, err := service.Create(ctx, CreatePaymentRequest{
		StudentID:   teacher.ID,
		Amount:      150,
		PaymentDate: time.Now(),
		DueDate:     time.Now(),
	})
	if !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("expected ErrValidationFailed, got %v", err)
	}
}

func TestPaymentMarkPaid(t *testing.T) {
	_, _, service, student := newPaymentFixture(t)
	ctx := context.Background()

	payment, err := service.Create(ctx, CreatePaymentRequest{
		StudentID:   student.ID,
		Amount:      150,
		PaymentDate: time.Now(),
		DueDate:     time.Now().AddDate(0, 1, 0),
	})
	if err != nil {
		t.Fatal(err)
	}

	paid, err := service.MarkPaid(ctx, payment.ID)
	if err != nil {
		t.Fatalf("MarkPaid returned error: %v", err)
	}
	if paid.Status != models.PaymentPaid {
		t.Errorf("status = %q, want %q", paid.Status, models.PaymentPaid)
	}
	if paid.PaidAt == nil {
		t.Error("paid_at should be set")
	}

	if _, err := service.MarkPaid(ctx, payment.ID); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict on double payment, got %v", err)
	}
}

func TestSendDueReminders(t *testing.T) {
	repo, publisher, service, student := newPaymentFixture(t)
	ctx := context.Background()

	yesterday := time.Now().AddDate(0, 0, -1)
	nextMonth := time.Now().AddDate(0, 1, 0)

	overdue := &models.Payment{StudentID: student.ID, Amount: 150, Currency: "EUR", Status: models.PaymentPending, DueDate: yesterday}
	paid := &models.Payment{StudentID: student.ID, Amount: 80, Currency: "EUR", Status: models.PaymentPaid, DueDate: yesterday}
	notYetDue := &models.Payment{StudentID: student.ID, Amount: 60, Currency: "EUR", Status: models.PaymentPending, DueDate: nextMonth}
	for _, payment := range []*models.Payment{overdue, paid, notYetDue} {
		if err := repo.payments.Create(ctx, payment); err != nil {
			t.Fatal(err)
		}
	}

	sent, err := service.SendDueReminders(ctx)
	if err != nil {
		t.Fatalf("SendDueReminders returned error: %v", err)
	}
	if sent != 1 {
		t.Errorf("sent = %d, want 1", sent)
	}

	unread, err := repo.notifications.CountUnread(ctx, student.ID)
	if err != nil {
		t.Fatal(err)
	}
	if unread != 1 {
		t.Errorf("unread reminders = %d, want 1", unread)
	}

	var dueEvents int
	for _, event := range publisher.Events() {
		if event.Type == events.EventPaymentDue {
			dueEvents++
		}
	}
	if dueEvents != 1 {
		t.Errorf("payment.due events = %d, want 1", dueEvents)
	}
}
