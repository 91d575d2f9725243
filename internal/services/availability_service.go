package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prof-it/school-service/internal/cache"
	"github.com/prof-it/school-service/internal/models"
	"github.com/prof-it/school-service/internal/repositories"
)

const slotStatusOccupied = "occupied"

// teacherNameFallback is shown when a schedule's group has no teacher
// loaded.
const teacherNameFallback = "N/A"

type availabilityService struct {
	repo   repositories.Repository
	logger *slog.Logger
	cache  *cache.CacheManager
}

func NewAvailabilityService(repo repositories.Repository, logger *slog.Logger, cacheManager *cache.CacheManager) AvailabilityService {
	return &availabilityService{repo: repo, logger: logger, cache: cacheManager}
}

func (s *availabilityService) ResolveClassroom(ctx context.Context, classroomID string, view AvailabilityView, refDate time.Time) (*AvailabilityResponse, error) {
	from, to, err := resolveWindow(view, refDate)
	if err != nil {
		return nil, err
	}

	classroom, err := s.repo.Classroom().GetByID(ctx, classroomID)
	if err != nil {
		return nil, lookupFailure(err, "classroom")
	}

	cacheKey := fmt.Sprintf("classroom:%s:%s:%d", classroomID, view, from.Unix())

	var result AvailabilityResponse
	err = s.cache.Availability.CacheOrExecute(ctx, cacheKey, &result, cache.AvailabilityCacheConfig.TTL, func() (interface{}, error) {
		schedules, err := s.repo.Schedule().ListInWindow(ctx, classroomID, from, to)
		if err != nil {
			return nil, err
		}

		return &AvailabilityResponse{
			View:       view,
			WindowFrom: from,
			WindowTo:   to,
			Classrooms: []ClassroomAvailability{
				{
					ClassroomID:   classroom.ID,
					ClassroomName: classroom.Name,
					Slots:         buildSlots(schedules),
				},
			},
		}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve availability: %w", err)
	}

	return &result, nil
}

func (s *availabilityService) ResolveAll(ctx context.Context, view AvailabilityView, refDate time.Time) (*AvailabilityResponse, error) {
	from, to, err := resolveWindow(view, refDate)
	if err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("all:%s:%d", view, from.Unix())

	var result AvailabilityResponse
	err = s.cache.Availability.CacheOrExecute(ctx, cacheKey, &result, cache.AvailabilityCacheConfig.TTL, func() (interface{}, error) {
		classrooms, _, err := s.repo.Classroom().List(ctx, repositories.ClassroomFilters{})
		if err != nil {
			return nil, err
		}

		schedules, err := s.repo.Schedule().ListInWindow(ctx, "", from, to)
		if err != nil {
			return nil, err
		}

		byClassroom := make(map[string][]*models.Schedule)
		for _, schedule := range schedules {
			byClassroom[schedule.ClassroomID] = append(byClassroom[schedule.ClassroomID], schedule)
		}

		// Every classroom appears, including ones with nothing booked.
		entries := make([]ClassroomAvailability, 0, len(classrooms))
		for _, classroom := range classrooms {
			entries = append(entries, ClassroomAvailability{
				ClassroomID:   classroom.ID,
				ClassroomName: classroom.Name,
				Slots:         buildSlots(byClassroom[classroom.ID]),
			})
		}

		return &AvailabilityResponse{
			View:       view,
			WindowFrom: from,
			WindowTo:   to,
			Classrooms: entries,
		}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve availability: %w", err)
	}

	return &result, nil
}

// resolveWindow maps a view and reference date onto an inclusive
// [from, to] interval. Days run midnight to 23:59:59.999, weeks run
// Monday through Sunday, months cover the full calendar month.
func resolveWindow(view AvailabilityView, refDate time.Time) (time.Time, time.Time, error) {
	dayStart := time.Date(refDate.Year(), refDate.Month(), refDate.Day(), 0, 0, 0, 0, refDate.Location())

	switch view {
	case ViewDay:
		return dayStart, endOfDay(dayStart), nil

	case ViewWeek:
		weekday := int(dayStart.Weekday()) // Sunday == 0
		var monday time.Time
		if weekday == 0 {
			monday = dayStart.AddDate(0, 0, -6)
		} else {
			monday = dayStart.AddDate(0, 0, -(weekday - 1))
		}
		return monday, endOfDay(monday.AddDate(0, 0, 6)), nil

	case ViewMonth:
		first := time.Date(refDate.Year(), refDate.Month(), 1, 0, 0, 0, 0, refDate.Location())
		last := first.AddDate(0, 1, -1)
		return first, endOfDay(last), nil
	}

	return time.Time{}, time.Time{}, fmt.Errorf("%w: %q", ErrInvalidView, view)
}

func endOfDay(dayStart time.Time) time.Time {
	return dayStart.Add(24*time.Hour - time.Millisecond)
}

func buildSlots(schedules []*models.Schedule) []OccupiedSlot {
	slots := make([]OccupiedSlot, 0, len(schedules))
	for _, schedule := range schedules {
		slot := OccupiedSlot{
			ScheduleID:        schedule.ID,
			GroupID:           schedule.GroupID,
			DayOfWeek:         schedule.DayOfWeek,
			StartTime:         schedule.StartTime,
			EndTime:           schedule.EndTime,
			IsRecurring:       schedule.IsRecurring,
			RecurrenceEndDate: schedule.RecurrenceEndDate,
			Status:            slotStatusOccupied,
		}

		slot.TeacherName = teacherNameFallback
		if schedule.Group != nil {
			slot.GroupName = schedule.Group.Name
			slot.Subject = schedule.Group.Subject
			if schedule.Group.Teacher != nil {
				slot.TeacherName = schedule.Group.Teacher.FullName()
			}
		}

		slots = append(slots, slot)
	}
	return slots
}
