package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"gorm.io/datatypes"

	"github.com/prof-it/school-service/internal/cache"
	"github.com/prof-it/school-service/internal/models"
	"github.com/prof-it/school-service/internal/repositories"
	"github.com/prof-it/school-service/internal/validator"
)

type classroomService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	cache     *cache.CacheManager
}

func NewClassroomService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, cacheManager *cache.CacheManager) ClassroomService {
	return &classroomService{repo: repo, logger: logger, validator: validator, cache: cacheManager}
}

func (s *classroomService) Create(ctx context.Context, req CreateClassroomRequest) (*models.Classroom, error) {
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, err.Error())
	}

	equipment, err := marshalEquipment(req.Equipment)
	if err != nil {
		return nil, err
	}

	classroom := &models.Classroom{
		Name:        req.Name,
		Capacity:    req.Capacity,
		Description: req.Description,
		Location:    req.Location,
		Equipment:   equipment,
	}

	if err := s.repo.Classroom().Create(ctx, classroom); err != nil {
		return nil, fmt.Errorf("failed to create classroom: %w", err)
	}

	s.logger.Info("Classroom created", "classroom_id", classroom.ID, "name", classroom.Name)
	s.cache.InvalidateClassroom(ctx, classroom.ID)

	return classroom, nil
}

func (s *classroomService) GetByID(ctx context.Context, id string) (*models.Classroom, error) {
	var classroom models.Classroom
	err := s.cache.Classroom.CacheOrExecute(ctx, "id:"+id, &classroom, cache.ClassroomCacheConfig.TTL, func() (interface{}, error) {
		return s.repo.Classroom().GetByID(ctx, id)
	})
	if err != nil {
		return nil, lookupFailure(err, "classroom")
	}
	return &classroom, nil
}

func (s *classroomService) List(ctx context.Context, page, size int) (*ClassroomListResponse, error) {
	classrooms, total, err := s.repo.Classroom().List(ctx, repositories.ClassroomFilters{
		Limit:     size,
		Offset:    pageOffset(page, size),
		SortBy:    "name",
		SortOrder: "asc",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list classrooms: %w", err)
	}

	return &ClassroomListResponse{Classrooms: classrooms, Total: total, Page: page, Size: size}, nil
}

func (s *classroomService) Update(ctx context.Context, id string, req UpdateClassroomRequest) (*models.Classroom, error) {
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, err.Error())
	}

	classroom, err := s.repo.Classroom().GetByID(ctx, id)
	if err != nil {
		return nil, lookupFailure(err, "classroom")
	}

	if req.Name != nil {
		classroom.Name = *req.Name
	}
	if req.Capacity != nil {
		classroom.Capacity = *req.Capacity
	}
	if req.Description != nil {
		classroom.Description = *req.Description
	}
	if req.Location != nil {
		classroom.Location = *req.Location
	}
	if req.Equipment != nil {
		equipment, err := marshalEquipment(*req.Equipment)
		if err != nil {
			return nil, err
		}
		classroom.Equipment = equipment
	}

	if err := s.repo.Classroom().Update(ctx, classroom); err != nil {
		return nil, fmt.Errorf("failed to update classroom: %w", err)
	}

	s.logger.Info("Classroom updated", "classroom_id", classroom.ID)
	s.cache.InvalidateClassroom(ctx, classroom.ID)

	return classroom, nil
}

func (s *classroomService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.Classroom().GetByID(ctx, id); err != nil {
		return lookupFailure(err, "classroom")
	}

	hasSchedules, err := s.repo.Classroom().HasSchedules(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check classroom schedules: %w", err)
	}
	if hasSchedules {
		return fmt.Errorf("%w: classroom has schedules", ErrConflict)
	}

	if err := s.repo.Classroom().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete classroom: %w", err)
	}

	s.logger.Info("Classroom deleted", "classroom_id", id)
	s.cache.InvalidateClassroom(ctx, id)
	s.cache.InvalidateAvailability(ctx, id)

	return nil
}

func marshalEquipment(items []string) (datatypes.JSON, error) {
	if items == nil {
		items = []string{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("failed to encode equipment: %w", err)
	}
	return datatypes.JSON(data), nil
}
