package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/prof-it/school-service/internal/events"
	"github.com/prof-it/school-service/internal/models"
	"github.com/prof-it/school-service/internal/validator"
)

type capturingMailer struct {
	to      []string
	body    []string
	sendErr error
}

func (m *capturingMailer) Send(ctx context.Context, to, subject, body string) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.to = append(m.to, to)
	m.body = append(m.body, body)
	return nil
}

type authFixture struct {
	repo      *fakeRepo
	mailer    *capturingMailer
	publisher *events.MockEventPublisher
	auth      AuthService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	repo := newFakeRepo()
	mailer := &capturingMailer{}
	publisher := events.NewMockEventPublisher()
	logger := testLogger()
	notifier := NewNotificationService(repo, logger, publisher)
	auth := NewAuthService(repo, logger, validator.New(), mailer, notifier, publisher, AuthConfig{
		JWTSecret: "test-secret",
		AdminKey:  "master-key",
	})
	return &authFixture{repo: repo, mailer: mailer, publisher: publisher, auth: auth}
}

func studentRegistration(email string) RegisterRequest {
	return RegisterRequest{
		Email:     email,
		Password:  "correct-horse",
		FirstName: "Anna",
		LastName:  "Ivanova",
		Role:      "student",
	}
}

func TestRegisterStudentPendingApproval(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	resp, err := f.auth.Register(ctx, studentRegistration("anna@example.com"))
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	if resp.Token == "" {
		t.Error("expected a token for the new user")
	}
	if resp.User.Approved {
		t.Error("student should not be auto-approved")
	}
	if resp.User.PasswordHash == "correct-horse" {
		t.Error("password stored in plain text")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(resp.User.PasswordHash), []byte("correct-horse")); err != nil {
		t.Errorf("stored hash does not match password: %v", err)
	}
}

func TestRegisterNotifiesApprovedAdmins(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	admin := &models.User{Email: "admin@example.com", Role: models.RoleAdmin, Approved: true}
	if err := f.repo.users.Create(ctx, admin); err != nil {
		t.Fatal(err)
	}

	if _, err := f.auth.Register(ctx, studentRegistration("anna@example.com")); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	unread, err := f.repo.notifications.CountUnread(ctx, admin.ID)
	if err != nil {
		t.Fatal(err)
	}
	if unread != 1 {
		t.Errorf("admin unread notifications = %d, want 1", unread)
	}

	var registered bool
	for _, event := range f.publisher.Events() {
		if event.Type == events.EventUserRegistered {
			registered = true
		}
	}
	if !registered {
		t.Error("expected a user.registered event")
	}
}

func TestRegisterAdminKey(t *testing.T) {
	tests := []struct {
		name     string
		adminKey string
		wantErr  error
	}{
		{name: "valid key", adminKey: "master-key"},
		{name: "wrong key", adminKey: "guess", wantErr: ErrForbidden},
		{name: "missing key", adminKey: "", wantErr: ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture(t)
			req := studentRegistration("root@example.com")
			req.Role = "admin"
			req.AdminKey = tt.adminKey

			resp, err := f.auth.Register(context.Background(), req)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Register returned error: %v", err)
			}
			if !resp.User.Approved {
				t.Error("admin with valid key should be auto-approved")
			}
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	if _, err := f.auth.Register(ctx, studentRegistration("anna@example.com")); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}

	_, err := f.auth.Register(ctx, studentRegistration("anna@example.com"))
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestRegisterRejectsInvalidPayload(t *testing.T) {
	f := newAuthFixture(t)

	req := studentRegistration("not-an-email")
	_, err := f.auth.Register(context.Background(), req)
	if !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("expected ErrValidationFailed, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	req := studentRegistration("anna@example.com")
	resp, err := f.auth.Register(ctx, req)
	if err != nil {
		t.Fatal(err)
	}

	t.Run("pending account cannot log in", func(t *testing.T) {
		_, err := f.auth.Login(ctx, LoginRequest{Email: req.Email, Password: req.Password})
		if !errors.Is(err, ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})

	resp.User.Approved = true
	if err := f.repo.users.Update(ctx, resp.User); err != nil {
		t.Fatal(err)
	}

	t.Run("approved account logs in", func(t *testing.T) {
		got, err := f.auth.Login(ctx, LoginRequest{Email: req.Email, Password: req.Password})
		if err != nil {
			t.Fatalf("Login returned error: %v", err)
		}
		if got.Token == "" {
			t.Error("expected a token")
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := f.auth.Login(ctx, LoginRequest{Email: req.Email, Password: "wrong-password"})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := f.auth.Login(ctx, LoginRequest{Email: "nobody@example.com", Password: "whatever-pass"})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})
}

func TestVerifyTokenRoundtrip(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	req := studentRegistration("anna@example.com")
	resp, err := f.auth.Register(ctx, req)
	if err != nil {
		t.Fatal(err)
	}

	claims, err := f.auth.VerifyToken(resp.Token)
	if err != nil {
		t.Fatalf("VerifyToken returned error: %v", err)
	}
	if claims.UserID != resp.User.ID {
		t.Errorf("user_id = %q, want %q", claims.UserID, resp.User.ID)
	}
	if claims.Email != req.Email {
		t.Errorf("email = %q, want %q", claims.Email, req.Email)
	}
	if claims.Role != models.RoleStudent {
		t.Errorf("role = %q, want %q", claims.Role, models.RoleStudent)
	}
}

func TestVerifyTokenRejectsGarbage(t *testing.T) {
	f := newAuthFixture(t)

	for _, token := range []string{"", "garbage", "a.b.c"} {
		if _, err := f.auth.VerifyToken(token); !errors.Is(err, ErrUnauthorized) {
			t.Errorf("token %q: expected ErrUnauthorized, got %v", token, err)
		}
	}
}

func TestVerifyTokenRejectsForeignSecret(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	resp, err := f.auth.Register(ctx, studentRegistration("anna@example.com"))
	if err != nil {
		t.Fatal(err)
	}

	other := NewAuthService(f.repo, testLogger(), validator.New(), f.mailer, nil, nil, AuthConfig{
		JWTSecret: "different-secret",
	})
	if _, err := other.VerifyToken(resp.Token); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestApproveUser(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	resp, err := f.auth.Register(ctx, studentRegistration("anna@example.com"))
	if err != nil {
		t.Fatal(err)
	}

	approved, err := f.auth.ApproveUser(ctx, resp.User.ID)
	if err != nil {
		t.Fatalf("ApproveUser returned error: %v", err)
	}
	if !approved.Approved {
		t.Error("user should be approved")
	}

	unread, err := f.repo.notifications.CountUnread(ctx, resp.User.ID)
	if err != nil {
		t.Fatal(err)
	}
	if unread != 1 {
		t.Errorf("user unread notifications = %d, want 1", unread)
	}

	var published bool
	for _, event := range f.publisher.Events() {
		if event.Type == events.EventUserApproved {
			published = true
		}
	}
	if !published {
		t.Error("expected a user.approved event")
	}

	if _, err := f.auth.ApproveUser(ctx, resp.User.ID); !errors.Is(err, ErrAlreadyApproved) {
		t.Fatalf("expected ErrAlreadyApproved on second approval, got %v", err)
	}
}

func TestApproveUserUnknown(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.auth.ApproveUser(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPasswordResetFlow(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	resp, err := f.auth.Register(ctx, studentRegistration("anna@example.com"))
	if err != nil {
		t.Fatal(err)
	}

	if err := f.auth.RequestPasswordReset(ctx, RequestPasswordResetRequest{Email: "anna@example.com"}); err != nil {
		t.Fatalf("RequestPasswordReset returned error: %v", err)
	}
	if len(f.mailer.to) != 1 || f.mailer.to[0] != "anna@example.com" {
		t.Fatalf("reset email recipients = %v", f.mailer.to)
	}

	user, err := f.repo.users.GetByID(ctx, resp.User.ID)
	if err != nil {
		t.Fatal(err)
	}
	if user.ResetToken == nil {
		t.Fatal("reset token not stored")
	}
	token := *user.ResetToken

	if err := f.auth.ResetPassword(ctx, ResetPasswordRequest{Token: token, NewPassword: "new-password-1"}); err != nil {
		t.Fatalf("ResetPassword returned error: %v", err)
	}

	user.Approved = true
	if err := f.repo.users.Update(ctx, user); err != nil {
		t.Fatal(err)
	}
	if _, err := f.auth.Login(ctx, LoginRequest{Email: "anna@example.com", Password: "new-password-1"}); err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}

	// The token is single-use.
	err = f.auth.ResetPassword(ctx, ResetPasswordRequest{Token: token, NewPassword: "new-password-2"})
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken on reuse, got %v", err)
	}
}

func TestResetPasswordExpiredToken(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	resp, err := f.auth.Register(ctx, studentRegistration("anna@example.com"))
	if err != nil {
		t.Fatal(err)
	}

	token := "stale-token"
	expired := time.Now().Add(-time.Minute)
	resp.User.ResetToken = &token
	resp.User.ResetTokenExpires = &expired
	if err := f.repo.users.Update(ctx, resp.User); err != nil {
		t.Fatal(err)
	}

	err = f.auth.ResetPassword(ctx, ResetPasswordRequest{Token: token, NewPassword: "new-password-1"})
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestRequestPasswordResetUnknownEmail(t *testing.T) {
	f := newAuthFixture(t)

	err := f.auth.RequestPasswordReset(context.Background(), RequestPasswordResetRequest{Email: "nobody@example.com"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
