package services

import (
	"context"
	"time"

	"github.com/prof-it/school-service/internal/models"
)

// ===== AUTH DTOs =====

type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Role      string `json:"role" validate:"required,user_role"`
	Phone     string `json:"phone" validate:"omitempty,max=30"`
	Address   string `json:"address" validate:"omitempty,max=255"`

	// AdminKey must match the configured key when Role is "admin".
	AdminKey string `json:"admin_key" validate:"omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type RequestPasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=72"`
}

// TokenClaims is the verified content of an access token.
type TokenClaims struct {
	UserID string          `json:"id"`
	Email  string          `json:"email"`
	Role   models.UserRole `json:"role"`
}

// ===== USER DTOs =====

type UpdateUserRequest struct {
	FirstName *string `json:"first_name" validate:"omitempty,max=100"`
	LastName  *string `json:"last_name" validate:"omitempty,max=100"`
	Phone     *string `json:"phone" validate:"omitempty,max=30"`
	Address   *string `json:"address" validate:"omitempty,max=255"`
}

type UserListResponse struct {
	Users []*models.User `json:"users"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Size  int            `json:"size"`
}

// ===== CLASSROOM DTOs =====

type CreateClassroomRequest struct {
	Name        string   `json:"name" validate:"required,max=100"`
	Capacity    int      `json:"capacity" validate:"required,min=1,max=1000"`
	Description string   `json:"description" validate:"omitempty,max=500"`
	Location    string   `json:"location" validate:"omitempty,max=255"`
	Equipment   []string `json:"equipment" validate:"omitempty,dive,max=100"`
}

type UpdateClassroomRequest struct {
	Name        *string   `json:"name" validate:"omitempty,max=100"`
	Capacity    *int      `json:"capacity" validate:"omitempty,min=1,max=1000"`
	Description *string   `json:"description" validate:"omitempty,max=500"`
	Location    *string   `json:"location" validate:"omitempty,max=255"`
	Equipment   *[]string `json:"equipment" validate:"omitempty,dive,max=100"`
}

type ClassroomListResponse struct {
	Classrooms []*models.Classroom `json:"classrooms"`
	Total      int64               `json:"total"`
	Page       int                 `json:"page"`
	Size       int                 `json:"size"`
}

// ===== GROUP DTOs =====

type CreateGroupRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Subject     string `json:"subject" validate:"required,max=100"`
	TeacherID   string `json:"teacher_id" validate:"required,uuid4"`
	MaxStudents int    `json:"max_students" validate:"omitempty,min=1,max=200"`
	Description string `json:"description" validate:"omitempty,max=500"`
}

type UpdateGroupRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=100"`
	Subject     *string `json:"subject" validate:"omitempty,max=100"`
	TeacherID   *string `json:"teacher_id" validate:"omitempty,uuid4"`
	MaxStudents *int    `json:"max_students" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=500"`
}

type GroupListResponse struct {
	Groups []*models.Group `json:"groups"`
	Total  int64           `json:"total"`
	Page   int             `json:"page"`
	Size   int             `json:"size"`
}

// ===== SCHEDULE DTOs =====

type CreateScheduleRequest struct {
	GroupID           string     `json:"group_id" validate:"required,uuid4"`
	ClassroomID       string     `json:"classroom_id" validate:"required,uuid4"`
	DayOfWeek         string     `json:"day_of_week" validate:"required,day_of_week"`
	StartTime         time.Time  `json:"start_time" validate:"required"`
	EndTime           time.Time  `json:"end_time" validate:"required"`
	IsRecurring       bool       `json:"is_recurring"`
	RecurrenceEndDate *time.Time `json:"recurrence_end_date"`
}

type UpdateScheduleRequest struct {
	GroupID           *string    `json:"group_id" validate:"omitempty,uuid4"`
	ClassroomID       *string    `json:"classroom_id" validate:"omitempty,uuid4"`
	DayOfWeek         *string    `json:"day_of_week" validate:"omitempty,day_of_week"`
	StartTime         *time.Time `json:"start_time"`
	EndTime           *time.Time `json:"end_time"`
	IsRecurring       *bool      `json:"is_recurring"`
	RecurrenceEndDate *time.Time `json:"recurrence_end_date"`
}

type ScheduleListResponse struct {
	Schedules []*models.Schedule `json:"schedules"`
	Total     int64              `json:"total"`
	Page      int                `json:"page"`
	Size      int                `json:"size"`
}

// ===== AVAILABILITY DTOs =====

type AvailabilityView string

const (
	ViewDay   AvailabilityView = "day"
	ViewWeek  AvailabilityView = "week"
	ViewMonth AvailabilityView = "month"
)

func (v AvailabilityView) Valid() bool {
	switch v {
	case ViewDay, ViewWeek, ViewMonth:
		return true
	}
	return false
}

// OccupiedSlot describes one busy interval inside a classroom.
type OccupiedSlot struct {
	ScheduleID        string           `json:"schedule_id"`
	GroupID           string           `json:"group_id"`
	GroupName         string           `json:"group_name"`
	Subject           string           `json:"subject"`
	TeacherName       string           `json:"teacher_name"`
	DayOfWeek         models.DayOfWeek `json:"day_of_week"`
	StartTime         time.Time        `json:"start_time"`
	EndTime           time.Time        `json:"end_time"`
	IsRecurring       bool             `json:"is_recurring"`
	RecurrenceEndDate *time.Time       `json:"recurrence_end_date,omitempty"`
	Status            string           `json:"status"`
}

type ClassroomAvailability struct {
	ClassroomID   string         `json:"classroom_id"`
	ClassroomName string         `json:"classroom_name"`
	Slots         []OccupiedSlot `json:"occupied_slots"`
}

type AvailabilityResponse struct {
	View       AvailabilityView        `json:"view"`
	WindowFrom time.Time               `json:"window_from"`
	WindowTo   time.Time               `json:"window_to"`
	Classrooms []ClassroomAvailability `json:"classrooms"`
}

// ===== ATTENDANCE DTOs =====

type CreateAttendanceRequest struct {
	StudentID  string    `json:"student_id" validate:"required,uuid4"`
	ScheduleID string    `json:"schedule_id" validate:"required,uuid4"`
	Date       time.Time `json:"date" validate:"required"`
	Status     string    `json:"status" validate:"required,attendance_status"`
	Notes      string    `json:"notes" validate:"omitempty,max=500"`
}

type UpdateAttendanceRequest struct {
	Status *string `json:"status" validate:"omitempty,attendance_status"`
	Notes  *string `json:"notes" validate:"omitempty,max=500"`
}

type AttendanceListResponse struct {
	Attendances []*models.Attendance `json:"attendances"`
	Total       int64                `json:"total"`
	Page        int                  `json:"page"`
	Size        int                  `json:"size"`
}

// ===== PAYMENT DTOs =====

type CreatePaymentRequest struct {
	StudentID   string    `json:"student_id" validate:"required,uuid4"`
	GroupID     string    `json:"group_id" validate:"omitempty,uuid4"`
	Amount      float64   `json:"amount" validate:"required,gt=0"`
	Currency    string    `json:"currency" validate:"omitempty,len=3"`
	Status      string    `json:"status" validate:"omitempty,payment_status"`
	PaymentDate time.Time `json:"payment_date" validate:"required"`
	DueDate     time.Time `json:"due_date" validate:"required"`
	Description string    `json:"description" validate:"omitempty,max=500"`
}

type UpdatePaymentRequest struct {
	Amount      *float64   `json:"amount" validate:"omitempty,gt=0"`
	Status      *string    `json:"status" validate:"omitempty,payment_status"`
	PaymentDate *time.Time `json:"payment_date"`
	DueDate     *time.Time `json:"due_date"`
	Description *string    `json:"description" validate:"omitempty,max=500"`
}

type PaymentListResponse struct {
	Payments []*models.Payment `json:"payments"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	Size     int               `json:"size"`
}

// ===== NOTIFICATION DTOs =====

type NotificationListResponse struct {
	Notifications []*models.Notification `json:"notifications"`
	Total         int64                  `json:"total"`
	Unread        int64                  `json:"unread"`
}

// ===== SERVICE INTERFACES =====

type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error)
	// RegisterByAdmin creates a pre-approved account on behalf of an
	// administrator.
	RegisterByAdmin(ctx context.Context, req RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	RequestPasswordReset(ctx context.Context, req RequestPasswordResetRequest) error
	ResetPassword(ctx context.Context, req ResetPasswordRequest) error
	ApproveUser(ctx context.Context, userID string) (*models.User, error)
	// PendingUsers lists accounts waiting for approval.
	PendingUsers(ctx context.Context) ([]*models.User, error)
	VerifyToken(tokenString string) (*TokenClaims, error)
}

type UserService interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context, role string, approved *bool, page, size int) (*UserListResponse, error)
	Update(ctx context.Context, id string, req UpdateUserRequest) (*models.User, error)
	Delete(ctx context.Context, id string) error
}

type ClassroomService interface {
	Create(ctx context.Context, req CreateClassroomRequest) (*models.Classroom, error)
	GetByID(ctx context.Context, id string) (*models.Classroom, error)
	List(ctx context.Context, page, size int) (*ClassroomListResponse, error)
	Update(ctx context.Context, id string, req UpdateClassroomRequest) (*models.Classroom, error)
	Delete(ctx context.Context, id string) error
}

type GroupService interface {
	Create(ctx context.Context, req CreateGroupRequest) (*models.Group, error)
	GetByID(ctx context.Context, id string) (*models.Group, error)
	List(ctx context.Context, teacherID, studentID string, page, size int) (*GroupListResponse, error)
	Update(ctx context.Context, id string, req UpdateGroupRequest) (*models.Group, error)
	Delete(ctx context.Context, id string) error
	AddStudent(ctx context.Context, groupID, studentID string) error
	RemoveStudent(ctx context.Context, groupID, studentID string) error
}

type ScheduleService interface {
	Create(ctx context.Context, req CreateScheduleRequest) (*models.Schedule, error)
	GetByID(ctx context.Context, id string) (*models.Schedule, error)
	List(ctx context.Context, groupID, classroomID string, page, size int) (*ScheduleListResponse, error)
	Update(ctx context.Context, id string, req UpdateScheduleRequest) (*models.Schedule, error)
	Delete(ctx context.Context, id string) error
}

// AvailabilityService computes classroom occupancy over a calendar
// window.
type AvailabilityService interface {
	ResolveClassroom(ctx context.Context, classroomID string, view AvailabilityView, refDate time.Time) (*AvailabilityResponse, error)
	ResolveAll(ctx context.Context, view AvailabilityView, refDate time.Time) (*AvailabilityResponse, error)
}

type AttendanceService interface {
	Create(ctx context.Context, req CreateAttendanceRequest) (*models.Attendance, error)
	GetByID(ctx context.Context, id string) (*models.Attendance, error)
	List(ctx context.Context, studentID, scheduleID string, page, size int) (*AttendanceListResponse, error)
	Update(ctx context.Context, id string, req UpdateAttendanceRequest) (*models.Attendance, error)
	Delete(ctx context.Context, id string) error
}

type PaymentService interface {
	Create(ctx context.Context, req CreatePaymentRequest) (*models.Payment, error)
	GetByID(ctx context.Context, id string) (*models.Payment, error)
	List(ctx context.Context, studentID, status string, page, size int) (*PaymentListResponse, error)
	Update(ctx context.Context, id string, req UpdatePaymentRequest) (*models.Payment, error)
	MarkPaid(ctx context.Context, id string) (*models.Payment, error)
	Delete(ctx context.Context, id string) error
	// SendDueReminders notifies every student with an unpaid payment
	// past or near its due date.
	SendDueReminders(ctx context.Context) (int, error)
}

type NotificationService interface {
	ListForUser(ctx context.Context, userID string, unreadOnly bool, limit, offset int) (*NotificationListResponse, error)
	MarkRead(ctx context.Context, userID, notificationID string) (*models.Notification, error)
	MarkAllRead(ctx context.Context, userID string) error
	// NotifyUsers writes one notification per recipient. All writes are
	// attempted; failures are aggregated into the returned error.
	NotifyUsers(ctx context.Context, userIDs []string, nType models.NotificationType, title, message string) error
}

// ReportService produces spreadsheet exports for administrators.
type ReportService interface {
	ExportPayments(ctx context.Context) ([]byte, error)
	ExportAttendances(ctx context.Context) ([]byte, error)
}

// ServiceManager provides access to all services
type ServiceManager interface {
	Auth() AuthService
	User() UserService
	Classroom() ClassroomService
	Group() GroupService
	Schedule() ScheduleService
	Availability() AvailabilityService
	Attendance() AttendanceService
	Payment() PaymentService
	Notification() NotificationService
	Report() ReportService

	Initialize(ctx context.Context) error
	Shutdown(ctx context.Context) error
	HealthCheck(ctx context.Context) error
}
