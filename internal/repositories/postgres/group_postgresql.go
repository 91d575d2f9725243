package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/prof-it/school-service/internal/models"
	"github.com/prof-it/school-service/internal/repositories"
)

type groupRepository struct {
	db *gorm.DB
}

func NewGroupPostgreSQL(db *gorm.DB) repositories.GroupRepository {
	return &groupRepository{db: db}
}

func (r *groupRepository) Create(ctx context.Context, group *models.Group) error {
	if err := r.db.WithContext(ctx).Create(group).Error; err != nil {
		return handleDBError(err, "create group")
	}
	return nil
}

func (r *groupRepository) GetByID(ctx context.Context, id string) (*models.Group, error) {
	var group models.Group
	err := r.db.WithContext(ctx).
		Preload("Teacher").
		Preload("Students").
		First(&group, "id = ?", id).Error
	if err != nil {
		return nil, handleDBError(err, "get group by id")
	}
	return &group, nil
}

func (r *groupRepository) List(ctx context.Context, filters repositories.GroupFilters) ([]*models.Group, int64, error) {
	var groups []*models.Group
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Group{})

	if filters.TeacherID != nil {
		query = query.Where("teacher_id = ?", *filters.TeacherID)
	}
	if filters.Subject != nil {
		query = query.Where("subject = ?", *filters.Subject)
	}
	if filters.StudentID != nil {
		query = query.
			Joins("JOIN group_students ON group_students.group_id = groups.id").
			Where("group_students.user_id = ?", *filters.StudentID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count groups")
	}

	query = applyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset, map[string]string{
		"created_at": "groups.created_at",
		"name":       "groups.name",
		"subject":    "groups.subject",
	})

	if err := query.Preload("Teacher").Find(&groups).Error; err != nil {
		return nil, 0, handleDBError(err, "list groups")
	}

	return groups, total, nil
}

func (r *groupRepository) Update(ctx context.Context, group *models.Group) error {
	if err := r.db.WithContext(ctx).Save(group).Error; err != nil {
		return handleDBError(err, "update group")
	}
	return nil
}

func (r *groupRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Delete(&models.Group{}, "id = ?", id).Error; err != nil {
		return handleDBError(err, "delete group")
	}
	return nil
}

func (r *groupRepository) AddStudent(ctx context.Context, groupID, studentID string) error {
	err := r.db.WithContext(ctx).
		Model(&models.Group{ID: groupID}).
		Association("Students").
		Append(&models.User{ID: studentID})
	if err != nil {
		return handleDBError(err, "add student to group")
	}
	return nil
}

func (r *groupRepository) RemoveStudent(ctx context.Context, groupID, studentID string) error {
	err := r.db.WithContext(ctx).
		Model(&models.Group{ID: groupID}).
		Association("Students").
		Delete(&models.User{ID: studentID})
	if err != nil {
		return handleDBError(err, "remove student from group")
	}
	return nil
}

func (r *groupRepository) CountStudents(ctx context.Context, groupID string) (int64, error) {
	count := r.db.WithContext(ctx).
		Model(&models.Group{ID: groupID}).
		Association("Students").
		Count()
	return count, nil
}

func (r *groupRepository) HasStudent(ctx context.Context, groupID, studentID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("group_students").
		Where("group_id = ? AND user_id = ?", groupID, studentID).
		Count(&count).Error
	if err != nil {
		return false, handleDBError(err, "check group membership")
	}
	return count > 0, nil
}
