package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/prof-it/school-service/internal/cache"
	"github.com/prof-it/school-service/internal/models"
	"github.com/prof-it/school-service/internal/repositories"
	"github.com/prof-it/school-service/internal/validator"
)

type scheduleService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	cache     *cache.CacheManager
}

func NewScheduleService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, cacheManager *cache.CacheManager) ScheduleService {
	return &scheduleService{repo: repo, logger: logger, validator: validator, cache: cacheManager}
}

func (s *scheduleService) Create(ctx context.Context, req CreateScheduleRequest) (*models.Schedule, error) {
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, err.Error())
	}
	if !req.EndTime.After(req.StartTime) {
		return nil, fmt.Errorf("%w: end_time must be after start_time", ErrValidationFailed)
	}
	if req.IsRecurring && req.RecurrenceEndDate == nil {
		return nil, fmt.Errorf("%w: recurring schedule needs recurrence_end_date", ErrValidationFailed)
	}
	if req.RecurrenceEndDate != nil && req.RecurrenceEndDate.Before(req.StartTime) {
		return nil, fmt.Errorf("%w: recurrence_end_date before start_time", ErrValidationFailed)
	}

	if _, err := s.repo.Group().GetByID(ctx, req.GroupID); err != nil {
		return nil, fmt.Errorf("%w: group not found", ErrNotFound)
	}
	if _, err := s.repo.Classroom().GetByID(ctx, req.ClassroomID); err != nil {
		return nil, fmt.Errorf("%w: classroom not found", ErrNotFound)
	}

	// A one-off lesson never carries a recurrence end date.
	recurrenceEnd := req.RecurrenceEndDate
	if !req.IsRecurring {
		recurrenceEnd = nil
	}

	schedule := &models.Schedule{
		GroupID:           req.GroupID,
		ClassroomID:       req.ClassroomID,
		DayOfWeek:         models.DayOfWeek(strings.ToLower(req.DayOfWeek)),
		StartTime:         req.StartTime,
		EndTime:           req.EndTime,
		IsRecurring:       req.IsRecurring,
		RecurrenceEndDate: recurrenceEnd,
	}

	if err := s.repo.Schedule().Create(ctx, schedule); err != nil {
		return nil, fmt.Errorf("failed to create schedule: %w", err)
	}

	s.logger.Info("Schedule created",
		"schedule_id", schedule.ID,
		"group_id", schedule.GroupID,
		"classroom_id", schedule.ClassroomID)
	s.cache.InvalidateAvailability(ctx, schedule.ClassroomID)

	return schedule, nil
}

func (s *scheduleService) GetByID(ctx context.Context, id string) (*models.Schedule, error) {
	schedule, err := s.repo.Schedule().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: schedule not found", ErrNotFound)
	}
	return schedule, nil
}

func (s *scheduleService) List(ctx context.Context, groupID, classroomID string, page, size int) (*ScheduleListResponse, error) {
	filters := repositories.ScheduleFilters{
		Limit:     size,
		Offset:    pageOffset(page, size),
		SortBy:    "start_time",
		SortOrder: "asc",
	}
	if groupID != "" {
		filters.GroupID = &groupID
	}
	if classroomID != "" {
		filters.ClassroomID = &classroomID
	}

	schedules, total, err := s.repo.Schedule().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}

	return &ScheduleListResponse{Schedules: schedules, Total: total, Page: page, Size: size}, nil
}

func (s *scheduleService) Update(ctx context.Context, id string, req UpdateScheduleRequest) (*models.Schedule, error) {
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, err.Error())
	}

	schedule, err := s.repo.Schedule().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: schedule not found", ErrNotFound)
	}
	previousClassroom := schedule.ClassroomID

	if req.GroupID != nil {
		if _, err := s.repo.Group().GetByID(ctx, *req.GroupID); err != nil {
			return nil, fmt.Errorf("%w: group not found", ErrNotFound)
		}
		schedule.GroupID = *req.GroupID
	}
	if req.ClassroomID != nil {
		if _, err := s.repo.Classroom().GetByID(ctx, *req.ClassroomID); err != nil {
			return nil, fmt.Errorf("%w: classroom not found", ErrNotFound)
		}
		schedule.ClassroomID = *req.ClassroomID
	}
	if req.DayOfWeek != nil {
		schedule.DayOfWeek = models.DayOfWeek(strings.ToLower(*req.DayOfWeek))
	}
	if req.StartTime != nil {
		schedule.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		schedule.EndTime = *req.EndTime
	}
	if req.IsRecurring != nil {
		schedule.IsRecurring = *req.IsRecurring
	}
	if req.RecurrenceEndDate != nil {
		schedule.RecurrenceEndDate = req.RecurrenceEndDate
	}
	// Switching back to one-off drops any stale end date.
	if !schedule.IsRecurring {
		schedule.RecurrenceEndDate = nil
	}

	if !schedule.EndTime.After(schedule.StartTime) {
		return nil, fmt.Errorf("%w: end_time must be after start_time", ErrValidationFailed)
	}
	if schedule.IsRecurring && schedule.RecurrenceEndDate == nil {
		return nil, fmt.Errorf("%w: recurring schedule needs recurrence_end_date", ErrValidationFailed)
	}

	schedule.Group = nil
	schedule.Classroom = nil

	if err := s.repo.Schedule().Update(ctx, schedule); err != nil {
		return nil, fmt.Errorf("failed to update schedule: %w", err)
	}

	s.logger.Info("Schedule updated", "schedule_id", schedule.ID)
	s.cache.InvalidateAvailability(ctx, previousClassroom)
	if schedule.ClassroomID != previousClassroom {
		s.cache.InvalidateAvailability(ctx, schedule.ClassroomID)
	}

	return schedule, nil
}

func (s *scheduleService) Delete(ctx context.Context, id string) error {
	schedule, err := s.repo.Schedule().GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("%w: schedule not found", ErrNotFound)
	}

	if err := s.repo.Schedule().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete schedule: %w", err)
	}

	s.logger.Info("Schedule deleted", "schedule_id", id)
	s.cache.InvalidateAvailability(ctx, schedule.ClassroomID)

	return nil
}
