package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/prof-it/school-service/internal/models"
	"github.com/prof-it/school-service/internal/repositories"
)

type classroomRepository struct {
	db *gorm.DB
}

func NewClassroomPostgreSQL(db *gorm.DB) repositories.ClassroomRepository {
	return &classroomRepository{db: db}
}

func (r *classroomRepository) Create(ctx context.Context, classroom *models.Classroom) error {
	if err := r.db.WithContext(ctx).Create(classroom).Error; err != nil {
		return handleDBError(err, "create classroom")
	}
	return nil
}

func (r *classroomRepository) GetByID(ctx context.Context, id string) (*models.Classroom, error) {
	var classroom models.Classroom
	if err := r.db.WithContext(ctx).First(&classroom, "id = ?", id).Error; err != nil {
		return nil, handleDBError(err, "get classroom by id")
	}
	return &classroom, nil
}

func (r *classroomRepository) List(ctx context.Context, filters repositories.ClassroomFilters) ([]*models.Classroom, int64, error) {
	var classrooms []*models.Classroom
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Classroom{})

	if filters.MinCapacity != nil {
		query = query.Where("capacity >= ?", *filters.MinCapacity)
	}
	if filters.Query != "" {
		pattern := "%" + filters.Query + "%"
		query = query.Where("name ILIKE ? OR location ILIKE ?", pattern, pattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count classrooms")
	}

	query = applyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset, map[string]string{
		"created_at": "created_at",
		"name":       "name",
		"capacity":   "capacity",
	})

	if err := query.Find(&classrooms).Error; err != nil {
		return nil, 0, handleDBError(err, "list classrooms")
	}

	return classrooms, total, nil
}

func (r *classroomRepository) Update(ctx context.Context, classroom *models.Classroom) error {
	if err := r.db.WithContext(ctx).Save(classroom).Error; err != nil {
		return handleDBError(err, "update classroom")
	}
	return nil
}

func (r *classroomRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Delete(&models.Classroom{}, "id = ?", id).Error; err != nil {
		return handleDBError(err, "delete classroom")
	}
	return nil
}

func (r *classroomRepository) HasSchedules(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Schedule{}).
		Where("classroom_id = ?", id).
		Count(&count).Error
	if err != nil {
		return false, handleDBError(err, "check classroom schedules")
	}
	return count > 0, nil
}
