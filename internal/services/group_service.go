package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prof-it/school-service/internal/models"
	"github.com/prof-it/school-service/internal/repositories"
	"github.com/prof-it/school-service/internal/validator"
)

type groupService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewGroupService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) GroupService {
	return &groupService{repo: repo, logger: logger, validator: validator}
}

func (s *groupService) Create(ctx context.Context, req CreateGroupRequest) (*models.Group, error) {
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, err.Error())
	}

	teacher, err := s.repo.User().GetByID(ctx, req.TeacherID)
	if err != nil {
		return nil, fmt.Errorf("%w: teacher not found", ErrNotFound)
	}
	if teacher.Role != models.RoleTeacher && teacher.Role != models.RoleAdmin {
		return nil, fmt.Errorf("%w: user %s is not a teacher", ErrValidationFailed, req.TeacherID)
	}

	group := &models.Group{
		Name:        req.Name,
		Subject:     req.Subject,
		TeacherID:   req.TeacherID,
		MaxStudents: req.MaxStudents,
		Description: req.Description,
	}

	if err := s.repo.Group().Create(ctx, group); err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}

	s.logger.Info("Group created", "group_id", group.ID, "teacher_id", group.TeacherID)

	return group, nil
}

func (s *groupService) GetByID(ctx context.Context, id string) (*models.Group, error) {
	group, err := s.repo.Group().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: group not found", ErrNotFound)
	}
	return group, nil
}

func (s *groupService) List(ctx context.Context, teacherID, studentID string, page, size int) (*GroupListResponse, error) {
	filters := repositories.GroupFilters{
		Limit:  size,
		Offset: pageOffset(page, size),
	}
	if teacherID != "" {
		filters.TeacherID = &teacherID
	}
	if studentID != "" {
		filters.StudentID = &studentID
	}

	groups, total, err := s.repo.Group().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}

	return &GroupListResponse{Groups: groups, Total: total, Page: page, Size: size}, nil
}

func (s *groupService) Update(ctx context.Context, id string, req UpdateGroupRequest) (*models.Group, error) {
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, err.Error())
	}

	group, err := s.repo.Group().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: group not found", ErrNotFound)
	}

	if req.TeacherID != nil {
		teacher, err := s.repo.User().GetByID(ctx, *req.TeacherID)
		if err != nil {
			return nil, fmt.Errorf("%w: teacher not found", ErrNotFound)
		}
		if teacher.Role != models.RoleTeacher && teacher.Role != models.RoleAdmin {
			return nil, fmt.Errorf("%w: user %s is not a teacher", ErrValidationFailed, *req.TeacherID)
		}
		group.TeacherID = *req.TeacherID
	}
	if req.Name != nil {
		group.Name = *req.Name
	}
	if req.Subject != nil {
		group.Subject = *req.Subject
	}
	if req.MaxStudents != nil {
		group.MaxStudents = *req.MaxStudents
	}
	if req.Description != nil {
		group.Description = *req.Description
	}

	// Save would try to upsert preloaded associations as well.
	group.Teacher = nil
	group.Students = nil

	if err := s.repo.Group().Update(ctx, group); err != nil {
		return nil, fmt.Errorf("failed to update group: %w", err)
	}

	s.logger.Info("Group updated", "group_id", group.ID)

	return group, nil
}

func (s *groupService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.Group().GetByID(ctx, id); err != nil {
		return fmt.Errorf("%w: group not found", ErrNotFound)
	}

	if err := s.repo.Group().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}

	s.logger.Info("Group deleted", "group_id", id)

	return nil
}

func (s *groupService) AddStudent(ctx context.Context, groupID, studentID string) error {
	group, err := s.repo.Group().GetByID(ctx, groupID)
	if err != nil {
		return fmt.Errorf("%w: group not found", ErrNotFound)
	}

	student, err := s.repo.User().GetByID(ctx, studentID)
	if err != nil {
		return fmt.Errorf("%w: student not found", ErrNotFound)
	}
	if student.Role != models.RoleStudent {
		return fmt.Errorf("%w: user %s is not a student", ErrValidationFailed, studentID)
	}

	enrolled, err := s.repo.Group().HasStudent(ctx, groupID, studentID)
	if err != nil {
		return fmt.Errorf("failed to check membership: %w", err)
	}
	if enrolled {
		return fmt.Errorf("%w: student already in group", ErrConflict)
	}

	if group.MaxStudents > 0 {
		count, err := s.repo.Group().CountStudents(ctx, groupID)
		if err != nil {
			return fmt.Errorf("failed to count students: %w", err)
		}
		if count >= int64(group.MaxStudents) {
			return fmt.Errorf("%w: group is full", ErrConflict)
		}
	}

	if err := s.repo.Group().AddStudent(ctx, groupID, studentID); err != nil {
		return fmt.Errorf("failed to add student: %w", err)
	}

	s.logger.Info("Student added to group", "group_id", groupID, "student_id", studentID)

	return nil
}

func (s *groupService) RemoveStudent(ctx context.Context, groupID, studentID string) error {
	if _, err := s.repo.Group().GetByID(ctx, groupID); err != nil {
		return fmt.Errorf("%w: group not found", ErrNotFound)
	}

	enrolled, err := s.repo.Group().HasStudent(ctx, groupID, studentID)
	if err != nil {
		return fmt.Errorf("failed to check membership: %w", err)
	}
	if !enrolled {
		return fmt.Errorf("%w: student not in group", ErrNotFound)
	}

	if err := s.repo.Group().RemoveStudent(ctx, groupID, studentID); err != nil {
		return fmt.Errorf("failed to remove student: %w", err)
	}

	s.logger.Info("Student removed from group", "group_id", groupID, "student_id", studentID)

	return nil
}
