package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prof-it/school-service/internal/models"
	"github.com/prof-it/school-service/internal/repositories"
	"github.com/prof-it/school-service/internal/validator"
)

type attendanceService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewAttendanceService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) AttendanceService {
	return &attendanceService{repo: repo, logger: logger, validator: validator}
}

func (s *attendanceService) Create(ctx context.Context, req CreateAttendanceRequest) (*models.Attendance, error) {
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, err.Error())
	}

	student, err := s.repo.User().GetByID(ctx, req.StudentID)
	if err != nil {
		return nil, fmt.Errorf("%w: student not found", ErrNotFound)
	}
	if student.Role != models.RoleStudent {
		return nil, fmt.Errorf("%w: user %s is not a student", ErrValidationFailed, req.StudentID)
	}

	if _, err := s.repo.Schedule().GetByID(ctx, req.ScheduleID); err != nil {
		return nil, fmt.Errorf("%w: schedule not found", ErrNotFound)
	}

	exists, err := s.repo.Attendance().ExistsForLesson(ctx, req.StudentID, req.ScheduleID, req.Date)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing attendance: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("%w: attendance already recorded for this lesson", ErrConflict)
	}

	attendance := &models.Attendance{
		StudentID:  req.StudentID,
		ScheduleID: req.ScheduleID,
		Date:       req.Date,
		Status:     models.AttendanceStatus(req.Status),
		Notes:      req.Notes,
	}

	if err := s.repo.Attendance().Create(ctx, attendance); err != nil {
		return nil, fmt.Errorf("failed to create attendance: %w", err)
	}

	s.logger.Info("Attendance recorded",
		"attendance_id", attendance.ID,
		"student_id", attendance.StudentID,
		"status", attendance.Status)

	return attendance, nil
}

func (s *attendanceService) GetByID(ctx context.Context, id string) (*models.Attendance, error) {
	attendance, err := s.repo.Attendance().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: attendance not found", ErrNotFound)
	}
	return attendance, nil
}

func (s *attendanceService) List(ctx context.Context, studentID, scheduleID string, page, size int) (*AttendanceListResponse, error) {
	filters := repositories.AttendanceFilters{
		Limit:     size,
		Offset:    pageOffset(page, size),
		SortBy:    "date",
		SortOrder: "desc",
	}
	if studentID != "" {
		filters.StudentID = &studentID
	}
	if scheduleID != "" {
		filters.ScheduleID = &scheduleID
	}

	records, total, err := s.repo.Attendance().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendances: %w", err)
	}

	return &AttendanceListResponse{Attendances: records, Total: total, Page: page, Size: size}, nil
}

func (s *attendanceService) Update(ctx context.Context, id string, req UpdateAttendanceRequest) (*models.Attendance, error) {
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, err.Error())
	}

	attendance, err := s.repo.Attendance().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: attendance not found", ErrNotFound)
	}

	if req.Status != nil {
		attendance.Status = models.AttendanceStatus(*req.Status)
	}
	if req.Notes != nil {
		attendance.Notes = *req.Notes
	}

	attendance.Student = nil
	attendance.Schedule = nil

	if err := s.repo.Attendance().Update(ctx, attendance); err != nil {
		return nil, fmt.Errorf("failed to update attendance: %w", err)
	}

	s.logger.Info("Attendance updated", "attendance_id", attendance.ID)

	return attendance, nil
}

func (s *attendanceService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.Attendance().GetByID(ctx, id); err != nil {
		return fmt.Errorf("%w: attendance not found", ErrNotFound)
	}

	if err := s.repo.Attendance().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete attendance: %w", err)
	}

	s.logger.Info("Attendance deleted", "attendance_id", id)

	return nil
}
