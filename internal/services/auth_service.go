package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/prof-it/school-service/internal/email"
	"github.com/prof-it/school-service/internal/events"
	"github.com/prof-it/school-service/internal/models"
	"github.com/prof-it/school-service/internal/repositories"
	"github.com/prof-it/school-service/internal/validator"
)

// AuthConfig carries the secrets and lifetimes the auth service needs.
type AuthConfig struct {
	JWTSecret     string
	AdminKey      string
	TokenTTL      time.Duration
	ResetTokenTTL time.Duration
}

type authService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	mailer    email.Mailer
	notifier  NotificationService
	publisher events.EventPublisher
	config    AuthConfig
}

func NewAuthService(
	repo repositories.Repository,
	logger *slog.Logger,
	validator *validator.Validator,
	mailer email.Mailer,
	notifier NotificationService,
	publisher events.EventPublisher,
	config AuthConfig,
) AuthService {
	if config.TokenTTL == 0 {
		config.TokenTTL = 24 * time.Hour
	}
	if config.ResetTokenTTL == 0 {
		config.ResetTokenTTL = time.Hour
	}
	return &authService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		mailer:    mailer,
		notifier:  notifier,
		publisher: publisher,
		config:    config,
	}
}

type accessClaims struct {
	UserID string `json:"id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

func (s *authService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, err.Error())
	}

	role := models.UserRole(req.Role)
	if role == models.RoleAdmin && req.AdminKey != s.config.AdminKey {
		return nil, fmt.Errorf("%w: invalid admin key", ErrForbidden)
	}

	exists, err := s.repo.User().ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("%w: email already registered", ErrConflict)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: string(hash),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         role,
		Phone:        req.Phone,
		Address:      req.Address,
		// Admins self-registering with a valid key skip the approval
		// queue; everyone else waits for an admin.
		Approved: role == models.RoleAdmin,
	}

	if err := s.repo.User().Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("User registered", "user_id", user.ID, "role", user.Role, "approved", user.Approved)

	if !user.Approved {
		s.notifyAdminsOfRegistration(ctx, user)
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{Token: token, User: user}, nil
}

func (s *authService) RegisterByAdmin(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, err.Error())
	}

	exists, err := s.repo.User().ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("%w: email already registered", ErrConflict)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: string(hash),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         models.UserRole(req.Role),
		Phone:        req.Phone,
		Address:      req.Address,
		Approved:     true,
	}

	if err := s.repo.User().Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("User registered by admin", "user_id", user.ID, "role", user.Role)

	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{Token: token, User: user}, nil
}

func (s *authService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, err.Error())
	}

	user, err := s.repo.User().GetByEmail(ctx, req.Email)
	if err != nil {
		// Unknown email and wrong password are indistinguishable to the
		// caller.
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if !user.Approved {
		return nil, fmt.Errorf("%w: account pending approval", ErrForbidden)
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("User logged in", "user_id", user.ID)

	return &AuthResponse{Token: token, User: user}, nil
}

func (s *authService) RequestPasswordReset(ctx context.Context, req RequestPasswordResetRequest) error {
	if err := s.validator.ValidateStruct(req); err != nil {
		return fmt.Errorf("%w: %s", ErrValidationFailed, err.Error())
	}

	user, err := s.repo.User().GetByEmail(ctx, req.Email)
	if err != nil {
		return fmt.Errorf("%w: no account for email", ErrNotFound)
	}

	token, err := generateResetToken()
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}

	expires := time.Now().Add(s.config.ResetTokenTTL)
	user.ResetToken = &token
	user.ResetTokenExpires = &expires

	if err := s.repo.User().Update(ctx, user); err != nil {
		return fmt.Errorf("failed to persist reset token: %w", err)
	}

	body := fmt.Sprintf("Hello %s,\n\nUse this token to reset your password: %s\n\nThe token expires in %s.",
		user.FirstName, token, s.config.ResetTokenTTL)
	if err := s.mailer.Send(ctx, user.Email, "Password reset", body); err != nil {
		s.logger.Error("Failed to send reset email", "error", err, "user_id", user.ID)
		return fmt.Errorf("%w: email delivery failed", ErrUnavailable)
	}

	s.logger.Info("Password reset requested", "user_id", user.ID)

	return nil
}

func (s *authService) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	if err := s.validator.ValidateStruct(req); err != nil {
		return fmt.Errorf("%w: %s", ErrValidationFailed, err.Error())
	}

	user, err := s.repo.User().GetByResetToken(ctx, req.Token)
	if err != nil {
		return ErrInvalidToken
	}

	if user.ResetTokenExpires == nil || time.Now().After(*user.ResetTokenExpires) {
		return fmt.Errorf("%w: token expired", ErrInvalidToken)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user.PasswordHash = string(hash)
	user.ResetToken = nil
	user.ResetTokenExpires = nil

	if err := s.repo.User().Update(ctx, user); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.logger.Info("Password reset completed", "user_id", user.ID)

	return nil
}

func (s *authService) ApproveUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: user not found", ErrNotFound)
	}

	if user.Approved {
		return nil, ErrAlreadyApproved
	}

	user.Approved = true
	if err := s.repo.User().Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to approve user: %w", err)
	}

	s.logger.Info("User approved", "user_id", user.ID)

	if s.notifier != nil {
		if err := s.notifier.NotifyUsers(ctx, []string{user.ID}, models.NotificationApproval,
			"Account approved",
			"Your account has been approved. You can now log in."); err != nil {
			s.logger.Error("Failed to notify approved user", "error", err, "user_id", user.ID)
		}
	}

	if s.publisher != nil {
		event := events.NewEvent(events.EventUserApproved, map[string]any{
			"user_id": user.ID,
			"email":   user.Email,
		})
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Error("Failed to publish approval event", "error", err, "user_id", user.ID)
		}
	}

	return user, nil
}

func (s *authService) PendingUsers(ctx context.Context) ([]*models.User, error) {
	approved := false
	users, _, err := s.repo.User().List(ctx, repositories.UserFilters{Approved: &approved})
	if err != nil {
		return nil, fmt.Errorf("failed to list pending users: %w", err)
	}
	return users, nil
}

func (s *authService) VerifyToken(tokenString string) (*TokenClaims, error) {
	claims := &accessClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrUnauthorized
	}

	return &TokenClaims{
		UserID: claims.UserID,
		Email:  claims.Email,
		Role:   models.UserRole(claims.Role),
	}, nil
}

func (s *authService) issueToken(user *models.User) (string, error) {
	now := time.Now()
	claims := accessClaims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.TokenTTL)),
			Subject:   user.ID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// notifyAdminsOfRegistration fans a registration notice out to every
// approved admin. Failures are logged, not surfaced; registration
// itself already succeeded.
func (s *authService) notifyAdminsOfRegistration(ctx context.Context, user *models.User) {
	admins, err := s.repo.User().ListApprovedAdmins(ctx)
	if err != nil {
		s.logger.Error("Failed to list admins for registration notice", "error", err)
		return
	}
	if len(admins) == 0 {
		return
	}

	adminIDs := make([]string, 0, len(admins))
	for _, admin := range admins {
		adminIDs = append(adminIDs, admin.ID)
	}

	title := "New registration pending approval"
	message := fmt.Sprintf("%s (%s) registered as %s and is waiting for approval.",
		user.FullName(), user.Email, user.Role)

	if s.notifier != nil {
		if err := s.notifier.NotifyUsers(ctx, adminIDs, models.NotificationRegistration, title, message); err != nil {
			s.logger.Error("Registration fan-out incomplete", "error", err, "user_id", user.ID)
		}
	}

	if s.publisher != nil {
		event := events.NewEvent(events.EventUserRegistered, map[string]any{
			"user_id": user.ID,
			"email":   user.Email,
			"role":    string(user.Role),
		})
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Error("Failed to publish registration event", "error", err, "user_id", user.ID)
		}
	}
}

func generateResetToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
