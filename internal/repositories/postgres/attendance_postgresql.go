package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/prof-it/school-service/internal/models"
	"github.com/prof-it/school-service/internal/repositories"
)

type attendanceRepository struct {
	db *gorm.DB
}

func NewAttendancePostgreSQL(db *gorm.DB) repositories.AttendanceRepository {
	return &attendanceRepository{db: db}
}

func (r *attendanceRepository) Create(ctx context.Context, attendance *models.Attendance) error {
	if err := r.db.WithContext(ctx).Create(attendance).Error; err != nil {
		return handleDBError(err, "create attendance")
	}
	return nil
}

func (r *attendanceRepository) GetByID(ctx context.Context, id string) (*models.Attendance, error) {
	var attendance models.Attendance
	err := r.db.WithContext(ctx).
		Preload("Student").
		Preload("Schedule").
		First(&attendance, "id = ?", id).Error
	if err != nil {
		return nil, handleDBError(err, "get attendance by id")
	}
	return &attendance, nil
}

func (r *attendanceRepository) List(ctx context.Context, filters repositories.AttendanceFilters) ([]*models.Attendance, int64, error) {
	var records []*models.Attendance
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Attendance{})

	if filters.StudentID != nil {
		query = query.Where("student_id = ?", *filters.StudentID)
	}
	if filters.ScheduleID != nil {
		query = query.Where("schedule_id = ?", *filters.ScheduleID)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.DateFrom != nil {
		query = query.Where("date >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("date <= ?", *filters.DateTo)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count attendances")
	}

	query = applyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset, map[string]string{
		"created_at": "created_at",
		"date":       "date",
	})

	if err := query.Preload("Student").Find(&records).Error; err != nil {
		return nil, 0, handleDBError(err, "list attendances")
	}

	return records, total, nil
}

func (r *attendanceRepository) Update(ctx context.Context, attendance *models.Attendance) error {
	if err := r.db.WithContext(ctx).Save(attendance).Error; err != nil {
		return handleDBError(err, "update attendance")
	}
	return nil
}

func (r *attendanceRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Delete(&models.Attendance{}, "id = ?", id).Error; err != nil {
		return handleDBError(err, "delete attendance")
	}
	return nil
}

func (r *attendanceRepository) ExistsForLesson(ctx context.Context, studentID, scheduleID string, date time.Time) (bool, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Attendance{}).
		Where("student_id = ? AND schedule_id = ? AND date >= ? AND date < ?", studentID, scheduleID, dayStart, dayEnd).
		Count(&count).Error
	if err != nil {
		return false, handleDBError(err, "check attendance exists")
	}
	return count > 0, nil
}
