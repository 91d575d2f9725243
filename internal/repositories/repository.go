package repositories

import "context"

// Repository aggregates all entity repositories behind a single handle.
type Repository interface {
	User() UserRepository
	Classroom() ClassroomRepository
	Group() GroupRepository
	Schedule() ScheduleRepository
	Attendance() AttendanceRepository
	Payment() PaymentRepository
	Notification() NotificationRepository

	// WithTransaction runs fn with a Repository bound to a single
	// database transaction.
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	Ping(ctx context.Context) error
	Close() error
}

// RepositoryManager manages the repository lifecycle.
type RepositoryManager interface {
	Initialize() error
	GetRepository() Repository
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
