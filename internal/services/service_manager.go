package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/prof-it/school-service/internal/cache"
	"github.com/prof-it/school-service/internal/email"
	"github.com/prof-it/school-service/internal/events"
	"github.com/prof-it/school-service/internal/repositories"
	"github.com/prof-it/school-service/internal/validator"
)

// ServiceManagerConfig holds configuration for the service manager
type ServiceManagerConfig struct {
	Auth AuthConfig

	DefaultTimeout time.Duration
}

// serviceManager implements ServiceManager interface
type serviceManager struct {
	// Dependencies
	db           *gorm.DB
	repo         repositories.Repository
	logger       *slog.Logger
	validator    *validator.Validator
	cacheManager *cache.CacheManager
	mailer       email.Mailer
	publisher    events.EventPublisher
	config       ServiceManagerConfig

	// Service instances
	authService         AuthService
	userService         UserService
	classroomService    ClassroomService
	groupService        GroupService
	scheduleService     ScheduleService
	availabilityService AvailabilityService
	attendanceService   AttendanceService
	paymentService      PaymentService
	notificationService NotificationService
	reportService       ReportService

	// Lifecycle management
	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a new service manager with all dependencies
func NewServiceManager(
	db *gorm.DB,
	repo repositories.Repository,
	logger *slog.Logger,
	validator *validator.Validator,
	cacheManager *cache.CacheManager,
	mailer email.Mailer,
	publisher events.EventPublisher,
	config ServiceManagerConfig,
) ServiceManager {
	return &serviceManager{
		db:           db,
		repo:         repo,
		logger:       logger,
		validator:    validator,
		cacheManager: cacheManager,
		mailer:       mailer,
		publisher:    publisher,
		config:       config,
	}
}

// NewDefaultServiceManager creates a service manager with default configuration
func NewDefaultServiceManager(
	db *gorm.DB,
	repo repositories.Repository,
	logger *slog.Logger,
	validator *validator.Validator,
	cacheManager *cache.CacheManager,
	mailer email.Mailer,
	publisher events.EventPublisher,
	auth AuthConfig,
) ServiceManager {
	config := ServiceManagerConfig{
		Auth:           auth,
		DefaultTimeout: 30 * time.Second,
	}
	return NewServiceManager(db, repo, logger, validator, cacheManager, mailer, publisher, config)
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	sm.logger.Info("Initializing service manager")

	// Notification service first; auth and payment fan out through it.
	sm.notificationService = NewNotificationService(sm.repo, sm.logger, sm.publisher)
	sm.authService = NewAuthService(sm.repo, sm.logger, sm.validator, sm.mailer, sm.notificationService, sm.publisher, sm.config.Auth)
	sm.userService = NewUserService(sm.repo, sm.logger, sm.validator)
	sm.classroomService = NewClassroomService(sm.repo, sm.logger, sm.validator, sm.cacheManager)
	sm.groupService = NewGroupService(sm.repo, sm.logger, sm.validator)
	sm.scheduleService = NewScheduleService(sm.repo, sm.logger, sm.validator, sm.cacheManager)
	sm.availabilityService = NewAvailabilityService(sm.repo, sm.logger, sm.cacheManager)
	sm.attendanceService = NewAttendanceService(sm.repo, sm.logger, sm.validator)
	sm.paymentService = NewPaymentService(sm.repo, sm.logger, sm.validator, sm.notificationService, sm.publisher)
	sm.reportService = NewReportService(sm.repo, sm.logger)

	sm.initialized = true
	sm.logger.Info("Service manager initialized successfully")

	return nil
}

func (sm *serviceManager) ensureInitialized() {
	if !sm.initialized {
		panic("service manager not initialized")
	}
}

func (sm *serviceManager) Auth() AuthService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.ensureInitialized()
	return sm.authService
}

func (sm *serviceManager) User() UserService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.ensureInitialized()
	return sm.userService
}

func (sm *serviceManager) Classroom() ClassroomService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.ensureInitialized()
	return sm.classroomService
}

func (sm *serviceManager) Group() GroupService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.ensureInitialized()
	return sm.groupService
}

func (sm *serviceManager) Schedule() ScheduleService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.ensureInitialized()
	return sm.scheduleService
}

func (sm *serviceManager) Availability() AvailabilityService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.ensureInitialized()
	return sm.availabilityService
}

func (sm *serviceManager) Attendance() AttendanceService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.ensureInitialized()
	return sm.attendanceService
}

func (sm *serviceManager) Payment() PaymentService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.ensureInitialized()
	return sm.paymentService
}

func (sm *serviceManager) Notification() NotificationService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.ensureInitialized()
	return sm.notificationService
}

func (sm *serviceManager) Report() ReportService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.ensureInitialized()
	return sm.reportService
}

// HealthCheck verifies the backing stores are reachable
func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}
	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	return sm.repo.Ping(ctx)
}

// Shutdown flushes the event publisher and marks the manager stopped
func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.logger.Info("Shutting down service manager")

	if sm.publisher != nil {
		if err := sm.publisher.Close(); err != nil {
			sm.logger.Error("Failed to close event publisher", "error", err)
		}
	}

	sm.shutdown = true
	sm.logger.Info("Service manager shut down")

	return nil
}
