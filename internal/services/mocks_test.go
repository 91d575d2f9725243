package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/prof-it/school-service/internal/models"
	"github.com/prof-it/school-service/internal/repositories"
)

// Fakes report missing records the same way the postgres layer does.
var errNotFoundInFake = fmt.Errorf("%w: not in fixture", repositories.ErrNotFound)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeRepo is an in-memory repositories.Repository for service tests.
type fakeRepo struct {
	users         *fakeUserRepo
	classrooms    *fakeClassroomRepo
	groups        *fakeGroupRepo
	schedules     *fakeScheduleRepo
	attendances   *fakeAttendanceRepo
	payments      *fakePaymentRepo
	notifications *fakeNotificationRepo
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:         &fakeUserRepo{byID: map[string]*models.User{}},
		classrooms:    &fakeClassroomRepo{},
		groups:        &fakeGroupRepo{byID: map[string]*models.Group{}, members: map[string]map[string]bool{}},
		schedules:     &fakeScheduleRepo{},
		attendances:   &fakeAttendanceRepo{byID: map[string]*models.Attendance{}},
		payments:      &fakePaymentRepo{byID: map[string]*models.Payment{}},
		notifications: &fakeNotificationRepo{byID: map[string]*models.Notification{}},
	}
}

func (r *fakeRepo) User() repositories.UserRepository                 { return r.users }
func (r *fakeRepo) Classroom() repositories.ClassroomRepository       { return r.classrooms }
func (r *fakeRepo) Group() repositories.GroupRepository               { return r.groups }
func (r *fakeRepo) Schedule() repositories.ScheduleRepository         { return r.schedules }
func (r *fakeRepo) Attendance() repositories.AttendanceRepository     { return r.attendances }
func (r *fakeRepo) Payment() repositories.PaymentRepository           { return r.payments }
func (r *fakeRepo) Notification() repositories.NotificationRepository { return r.notifications }

func (r *fakeRepo) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(r)
}

func (r *fakeRepo) Ping(ctx context.Context) error { return nil }
func (r *fakeRepo) Close() error                   { return nil }

// ===== users =====

type fakeUserRepo struct {
	byID map[string]*models.User
}

func (f *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	f.byID[user.ID] = user
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	user, ok := f.byID[id]
	if !ok {
		return nil, errNotFoundInFake
	}
	return user, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, user := range f.byID {
		if strings.EqualFold(user.Email, email) {
			return user, nil
		}
	}
	return nil, errNotFoundInFake
}

func (f *fakeUserRepo) GetByResetToken(ctx context.Context, token string) (*models.User, error) {
	for _, user := range f.byID {
		if user.ResetToken != nil && *user.ResetToken == token {
			return user, nil
		}
	}
	return nil, errNotFoundInFake
}

func (f *fakeUserRepo) List(ctx context.Context, filters repositories.UserFilters) ([]*models.User, int64, error) {
	var out []*models.User
	for _, user := range f.byID {
		if filters.Role != nil && user.Role != *filters.Role {
			continue
		}
		if filters.Approved != nil && user.Approved != *filters.Approved {
			continue
		}
		out = append(out, user)
	}
	return out, int64(len(out)), nil
}

func (f *fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	if _, ok := f.byID[user.ID]; !ok {
		return errNotFoundInFake
	}
	f.byID[user.ID] = user
	return nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return errNotFoundInFake
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := f.GetByEmail(ctx, email)
	return err == nil, nil
}

func (f *fakeUserRepo) ListApprovedAdmins(ctx context.Context) ([]*models.User, error) {
	var out []*models.User
	for _, user := range f.byID {
		if user.Role == models.RoleAdmin && user.Approved {
			out = append(out, user)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ===== classrooms =====

type fakeClassroomRepo struct {
	classrooms   []*models.Classroom
	hasSchedules map[string]bool
	// getErr simulates a storage failure on lookups.
	getErr error
}

func (f *fakeClassroomRepo) Create(ctx context.Context, classroom *models.Classroom) error {
	if classroom.ID == "" {
		classroom.ID = uuid.NewString()
	}
	f.classrooms = append(f.classrooms, classroom)
	return nil
}

func (f *fakeClassroomRepo) GetByID(ctx context.Context, id string) (*models.Classroom, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, classroom := range f.classrooms {
		if classroom.ID == id {
			return classroom, nil
		}
	}
	return nil, errNotFoundInFake
}

func (f *fakeClassroomRepo) List(ctx context.Context, filters repositories.ClassroomFilters) ([]*models.Classroom, int64, error) {
	out := make([]*models.Classroom, len(f.classrooms))
	copy(out, f.classrooms)
	return out, int64(len(out)), nil
}

func (f *fakeClassroomRepo) Update(ctx context.Context, classroom *models.Classroom) error {
	for i, existing := range f.classrooms {
		if existing.ID == classroom.ID {
			f.classrooms[i] = classroom
			return nil
		}
	}
	return errNotFoundInFake
}

func (f *fakeClassroomRepo) Delete(ctx context.Context, id string) error {
	for i, classroom := range f.classrooms {
		if classroom.ID == id {
			f.classrooms = append(f.classrooms[:i], f.classrooms[i+1:]...)
			return nil
		}
	}
	return errNotFoundInFake
}

func (f *fakeClassroomRepo) HasSchedules(ctx context.Context, id string) (bool, error) {
	return f.hasSchedules[id], nil
}

// ===== groups =====

type fakeGroupRepo struct {
	byID    map[string]*models.Group
	members map[string]map[string]bool
}

func (f *fakeGroupRepo) Create(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.NewString()
	}
	f.byID[group.ID] = group
	return nil
}

func (f *fakeGroupRepo) GetByID(ctx context.Context, id string) (*models.Group, error) {
	group, ok := f.byID[id]
	if !ok {
		return nil, errNotFoundInFake
	}
	return group, nil
}

func (f *fakeGroupRepo) List(ctx context.Context, filters repositories.GroupFilters) ([]*models.Group, int64, error) {
	var out []*models.Group
	for _, group := range f.byID {
		out = append(out, group)
	}
	return out, int64(len(out)), nil
}

func (f *fakeGroupRepo) Update(ctx context.Context, group *models.Group) error {
	if _, ok := f.byID[group.ID]; !ok {
		return errNotFoundInFake
	}
	f.byID[group.ID] = group
	return nil
}

func (f *fakeGroupRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return errNotFoundInFake
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeGroupRepo) AddStudent(ctx context.Context, groupID, studentID string) error {
	if f.members[groupID] == nil {
		f.members[groupID] = map[string]bool{}
	}
	f.members[groupID][studentID] = true
	return nil
}

func (f *fakeGroupRepo) RemoveStudent(ctx context.Context, groupID, studentID string) error {
	delete(f.members[groupID], studentID)
	return nil
}

func (f *fakeGroupRepo) CountStudents(ctx context.Context, groupID string) (int64, error) {
	return int64(len(f.members[groupID])), nil
}

func (f *fakeGroupRepo) HasStudent(ctx context.Context, groupID, studentID string) (bool, error) {
	return f.members[groupID][studentID], nil
}

// ===== schedules =====

type fakeScheduleRepo struct {
	schedules []*models.Schedule
}

func (f *fakeScheduleRepo) Create(ctx context.Context, schedule *models.Schedule) error {
	if schedule.ID == "" {
		schedule.ID = uuid.NewString()
	}
	f.schedules = append(f.schedules, schedule)
	return nil
}

func (f *fakeScheduleRepo) GetByID(ctx context.Context, id string) (*models.Schedule, error) {
	for _, schedule := range f.schedules {
		if schedule.ID == id {
			return schedule, nil
		}
	}
	return nil, errNotFoundInFake
}

func (f *fakeScheduleRepo) List(ctx context.Context, filters repositories.ScheduleFilters) ([]*models.Schedule, int64, error) {
	out := make([]*models.Schedule, len(f.schedules))
	copy(out, f.schedules)
	return out, int64(len(out)), nil
}

func (f *fakeScheduleRepo) Update(ctx context.Context, schedule *models.Schedule) error {
	for i, existing := range f.schedules {
		if existing.ID == schedule.ID {
			f.schedules[i] = schedule
			return nil
		}
	}
	return errNotFoundInFake
}

func (f *fakeScheduleRepo) Delete(ctx context.Context, id string) error {
	for i, schedule := range f.schedules {
		if schedule.ID == id {
			f.schedules = append(f.schedules[:i], f.schedules[i+1:]...)
			return nil
		}
	}
	return errNotFoundInFake
}

func (f *fakeScheduleRepo) ListInWindow(ctx context.Context, classroomID string, from, to time.Time) ([]*models.Schedule, error) {
	var out []*models.Schedule
	for _, schedule := range f.schedules {
		if classroomID != "" && schedule.ClassroomID != classroomID {
			continue
		}
		if schedule.StartTime.Before(from) || schedule.StartTime.After(to) {
			continue
		}
		out = append(out, schedule)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

// ===== attendances =====

type fakeAttendanceRepo struct {
	byID map[string]*models.Attendance
}

func (f *fakeAttendanceRepo) Create(ctx context.Context, attendance *models.Attendance) error {
	if attendance.ID == "" {
		attendance.ID = uuid.NewString()
	}
	f.byID[attendance.ID] = attendance
	return nil
}

func (f *fakeAttendanceRepo) GetByID(ctx context.Context, id string) (*models.Attendance, error) {
	attendance, ok := f.byID[id]
	if !ok {
		return nil, errNotFoundInFake
	}
	return attendance, nil
}

func (f *fakeAttendanceRepo) List(ctx context.Context, filters repositories.AttendanceFilters) ([]*models.Attendance, int64, error) {
	var out []*models.Attendance
	for _, attendance := range f.byID {
		if filters.StudentID != nil && attendance.StudentID != *filters.StudentID {
			continue
		}
		out = append(out, attendance)
	}
	return out, int64(len(out)), nil
}

func (f *fakeAttendanceRepo) Update(ctx context.Context, attendance *models.Attendance) error {
	if _, ok := f.byID[attendance.ID]; !ok {
		return errNotFoundInFake
	}
	f.byID[attendance.ID] = attendance
	return nil
}

func (f *fakeAttendanceRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return errNotFoundInFake
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeAttendanceRepo) ExistsForLesson(ctx context.Context, studentID, scheduleID string, date time.Time) (bool, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)
	for _, attendance := range f.byID {
		if attendance.StudentID != studentID || attendance.ScheduleID != scheduleID {
			continue
		}
		if !attendance.Date.Before(dayStart) && attendance.Date.Before(dayEnd) {
			return true, nil
		}
	}
	return false, nil
}

// ===== payments =====

type fakePaymentRepo struct {
	byID map[string]*models.Payment
}

func (f *fakePaymentRepo) Create(ctx context.Context, payment *models.Payment) error {
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	f.byID[payment.ID] = payment
	return nil
}

func (f *fakePaymentRepo) GetByID(ctx context.Context, id string) (*models.Payment, error) {
	payment, ok := f.byID[id]
	if !ok {
		return nil, errNotFoundInFake
	}
	return payment, nil
}

func (f *fakePaymentRepo) List(ctx context.Context, filters repositories.PaymentFilters) ([]*models.Payment, int64, error) {
	var out []*models.Payment
	for _, payment := range f.byID {
		if filters.StudentID != nil && payment.StudentID != *filters.StudentID {
			continue
		}
		if filters.Status != nil && payment.Status != *filters.Status {
			continue
		}
		if filters.DueTo != nil && payment.DueDate.After(*filters.DueTo) {
			continue
		}
		out = append(out, payment)
	}
	return out, int64(len(out)), nil
}

func (f *fakePaymentRepo) Update(ctx context.Context, payment *models.Payment) error {
	if _, ok := f.byID[payment.ID]; !ok {
		return errNotFoundInFake
	}
	f.byID[payment.ID] = payment
	return nil
}

func (f *fakePaymentRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return errNotFoundInFake
	}
	delete(f.byID, id)
	return nil
}

// ===== notifications =====

type fakeNotificationRepo struct {
	byID map[string]*models.Notification
	// failFor forces Create to fail for specific recipients.
	failFor map[string]error
}

func (f *fakeNotificationRepo) Create(ctx context.Context, notification *models.Notification) error {
	if err, ok := f.failFor[notification.UserID]; ok {
		return err
	}
	if notification.ID == "" {
		notification.ID = uuid.NewString()
	}
	f.byID[notification.ID] = notification
	return nil
}

func (f *fakeNotificationRepo) GetByID(ctx context.Context, id string) (*models.Notification, error) {
	notification, ok := f.byID[id]
	if !ok {
		return nil, errNotFoundInFake
	}
	return notification, nil
}

func (f *fakeNotificationRepo) ListByUser(ctx context.Context, userID string, filters repositories.NotificationFilters) ([]*models.Notification, int64, error) {
	var out []*models.Notification
	for _, notification := range f.byID {
		if notification.UserID != userID {
			continue
		}
		if filters.UnreadOnly && notification.Read {
			continue
		}
		out = append(out, notification)
	}
	return out, int64(len(out)), nil
}

func (f *fakeNotificationRepo) Update(ctx context.Context, notification *models.Notification) error {
	if _, ok := f.byID[notification.ID]; !ok {
		return errNotFoundInFake
	}
	f.byID[notification.ID] = notification
	return nil
}

func (f *fakeNotificationRepo) CountUnread(ctx context.Context, userID string) (int64, error) {
	var count int64
	for _, notification := range f.byID {
		if notification.UserID == userID && !notification.Read {
			count++
		}
	}
	return count, nil
}
