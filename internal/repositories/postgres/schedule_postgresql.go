package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/prof-it/school-service/internal/models"
	"github.com/prof-it/school-service/internal/repositories"
)

type scheduleRepository struct {
	db *gorm.DB
}

func NewSchedulePostgreSQL(db *gorm.DB) repositories.ScheduleRepository {
	return &scheduleRepository{db: db}
}

func (r *scheduleRepository) Create(ctx context.Context, schedule *models.Schedule) error {
	if err := r.db.WithContext(ctx).Create(schedule).Error; err != nil {
		return handleDBError(err, "create schedule")
	}
	return nil
}

func (r *scheduleRepository) GetByID(ctx context.Context, id string) (*models.Schedule, error) {
	var schedule models.Schedule
	err := r.db.WithContext(ctx).
		Preload("Group").
		Preload("Group.Teacher").
		Preload("Classroom").
		First(&schedule, "id = ?", id).Error
	if err != nil {
		return nil, handleDBError(err, "get schedule by id")
	}
	return &schedule, nil
}

func (r *scheduleRepository) List(ctx context.Context, filters repositories.ScheduleFilters) ([]*models.Schedule, int64, error) {
	var schedules []*models.Schedule
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Schedule{})

	if filters.GroupID != nil {
		query = query.Where("group_id = ?", *filters.GroupID)
	}
	if filters.ClassroomID != nil {
		query = query.Where("classroom_id = ?", *filters.ClassroomID)
	}
	if filters.DateFrom != nil {
		query = query.Where("start_time >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("start_time <= ?", *filters.DateTo)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count schedules")
	}

	query = applyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset, map[string]string{
		"created_at": "created_at",
		"start_time": "start_time",
	})

	err := query.
		Preload("Group").
		Preload("Group.Teacher").
		Preload("Classroom").
		Find(&schedules).Error
	if err != nil {
		return nil, 0, handleDBError(err, "list schedules")
	}

	return schedules, total, nil
}

func (r *scheduleRepository) Update(ctx context.Context, schedule *models.Schedule) error {
	if err := r.db.WithContext(ctx).Save(schedule).Error; err != nil {
		return handleDBError(err, "update schedule")
	}
	return nil
}

func (r *scheduleRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Delete(&models.Schedule{}, "id = ?", id).Error; err != nil {
		return handleDBError(err, "delete schedule")
	}
	return nil
}

func (r *scheduleRepository) ListInWindow(ctx context.Context, classroomID string, from, to time.Time) ([]*models.Schedule, error) {
	var schedules []*models.Schedule

	query := r.db.WithContext(ctx).
		Where("start_time >= ? AND start_time <= ?", from, to)
	if classroomID != "" {
		query = query.Where("classroom_id = ?", classroomID)
	}

	err := query.
		Preload("Group").
		Preload("Group.Teacher").
		Preload("Classroom").
		Order("start_time ASC").
		Find(&schedules).Error
	if err != nil {
		return nil, handleDBError(err, "list schedules in window")
	}

	return schedules, nil
}
