package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/prof-it/school-service/internal/models"
)

// ErrNotFound is returned by lookups that match no record. Implementations
// translate their driver's not-found error into this sentinel so callers
// never depend on the storage engine.
var ErrNotFound = errors.New("record not found")

// ===== SHARED FILTER STRUCTS =====

type UserFilters struct {
	Role      *models.UserRole `json:"role"`
	Approved  *bool            `json:"approved"`
	Query     string           `json:"query"` // matches name or email
	Limit     int              `json:"limit"`
	Offset    int              `json:"offset"`
	SortBy    string           `json:"sort_by"`    // "created_at", "email", "last_name"
	SortOrder string           `json:"sort_order"` // "asc", "desc"
}

type ClassroomFilters struct {
	MinCapacity *int   `json:"min_capacity"`
	Query       string `json:"query"`
	Limit       int    `json:"limit"`
	Offset      int    `json:"offset"`
	SortBy      string `json:"sort_by"`
	SortOrder   string `json:"sort_order"`
}

type GroupFilters struct {
	TeacherID *string `json:"teacher_id"`
	StudentID *string `json:"student_id"`
	Subject   *string `json:"subject"`
	Limit     int     `json:"limit"`
	Offset    int     `json:"offset"`
	SortBy    string  `json:"sort_by"`
	SortOrder string  `json:"sort_order"`
}

type ScheduleFilters struct {
	GroupID     *string    `json:"group_id"`
	ClassroomID *string    `json:"classroom_id"`
	DateFrom    *time.Time `json:"date_from"`
	DateTo      *time.Time `json:"date_to"`
	Limit       int        `json:"limit"`
	Offset      int        `json:"offset"`
	SortBy      string     `json:"sort_by"`
	SortOrder   string     `json:"sort_order"`
}

type AttendanceFilters struct {
	StudentID  *string                  `json:"student_id"`
	ScheduleID *string                  `json:"schedule_id"`
	Status     *models.AttendanceStatus `json:"status"`
	DateFrom   *time.Time               `json:"date_from"`
	DateTo     *time.Time               `json:"date_to"`
	Limit      int                      `json:"limit"`
	Offset     int                      `json:"offset"`
	SortBy     string                   `json:"sort_by"`
	SortOrder  string                   `json:"sort_order"`
}

type PaymentFilters struct {
	StudentID *string               `json:"student_id"`
	GroupID   *string               `json:"group_id"`
	Status    *models.PaymentStatus `json:"status"`
	DueFrom   *time.Time            `json:"due_from"`
	DueTo     *time.Time            `json:"due_to"`
	Limit     int                   `json:"limit"`
	Offset    int                   `json:"offset"`
	SortBy    string                `json:"sort_by"`
	SortOrder string                `json:"sort_order"`
}

type NotificationFilters struct {
	UnreadOnly bool `json:"unread_only"`
	Limit      int  `json:"limit"`
	Offset     int  `json:"offset"`
}

// ===== REPOSITORY INTERFACES =====

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByResetToken(ctx context.Context, token string) (*models.User, error)
	List(ctx context.Context, filters UserFilters) ([]*models.User, int64, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error

	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// ListApprovedAdmins feeds the registration notification fan-out.
	ListApprovedAdmins(ctx context.Context) ([]*models.User, error)
}

type ClassroomRepository interface {
	Create(ctx context.Context, classroom *models.Classroom) error
	GetByID(ctx context.Context, id string) (*models.Classroom, error)
	List(ctx context.Context, filters ClassroomFilters) ([]*models.Classroom, int64, error)
	Update(ctx context.Context, classroom *models.Classroom) error
	Delete(ctx context.Context, id string) error

	// HasSchedules reports whether any schedule still references the
	// classroom; deletion is refused while this holds.
	HasSchedules(ctx context.Context, id string) (bool, error)
}

type GroupRepository interface {
	Create(ctx context.Context, group *models.Group) error
	GetByID(ctx context.Context, id string) (*models.Group, error)
	List(ctx context.Context, filters GroupFilters) ([]*models.Group, int64, error)
	Update(ctx context.Context, group *models.Group) error
	Delete(ctx context.Context, id string) error

	AddStudent(ctx context.Context, groupID, studentID string) error
	RemoveStudent(ctx context.Context, groupID, studentID string) error
	CountStudents(ctx context.Context, groupID string) (int64, error)
	HasStudent(ctx context.Context, groupID, studentID string) (bool, error)
}

type ScheduleRepository interface {
	Create(ctx context.Context, schedule *models.Schedule) error
	GetByID(ctx context.Context, id string) (*models.Schedule, error)
	List(ctx context.Context, filters ScheduleFilters) ([]*models.Schedule, int64, error)
	Update(ctx context.Context, schedule *models.Schedule) error
	Delete(ctx context.Context, id string) error

	// ListInWindow returns schedules whose start time falls inside
	// [from, to], ordered by start time, with group, teacher and
	// classroom preloaded. Empty classroomID means all classrooms.
	ListInWindow(ctx context.Context, classroomID string, from, to time.Time) ([]*models.Schedule, error)
}

type AttendanceRepository interface {
	Create(ctx context.Context, attendance *models.Attendance) error
	GetByID(ctx context.Context, id string) (*models.Attendance, error)
	List(ctx context.Context, filters AttendanceFilters) ([]*models.Attendance, int64, error)
	Update(ctx context.Context, attendance *models.Attendance) error
	Delete(ctx context.Context, id string) error

	ExistsForLesson(ctx context.Context, studentID, scheduleID string, date time.Time) (bool, error)
}

type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	GetByID(ctx context.Context, id string) (*models.Payment, error)
	List(ctx context.Context, filters PaymentFilters) ([]*models.Payment, int64, error)
	Update(ctx context.Context, payment *models.Payment) error
	Delete(ctx context.Context, id string) error
}

type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	GetByID(ctx context.Context, id string) (*models.Notification, error)
	ListByUser(ctx context.Context, userID string, filters NotificationFilters) ([]*models.Notification, int64, error)
	Update(ctx context.Context, notification *models.Notification) error
	CountUnread(ctx context.Context, userID string) (int64, error)
}
