package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prof-it/school-service/internal/cache"
	"github.com/prof-it/school-service/internal/models"
	"github.com/prof-it/school-service/internal/validator"
)

func newScheduleFixture(t *testing.T) (*fakeRepo, ScheduleService, *models.Group, *models.Classroom) {
	t.Helper()
	repo := newFakeRepo()
	service := NewScheduleService(repo, testLogger(), validator.New(), cache.NewCacheManager(nil))

	ctx := context.Background()
	group := &models.Group{Name: "Watercolor Basics", Subject: "Painting", TeacherID: "teacher-1"}
	if err := repo.groups.Create(ctx, group); err != nil {
		t.Fatal(err)
	}
	classroom := &models.Classroom{Name: "Studio A", Capacity: 12}
	if err := repo.classrooms.Create(ctx, classroom); err != nil {
		t.Fatal(err)
	}
	return repo, service, group, classroom
}

func validScheduleRequest(groupID, classroomID string) CreateScheduleRequest {
	return CreateScheduleRequest{
		GroupID:     groupID,
		ClassroomID: classroomID,
		DayOfWeek:   "Monday",
		StartTime:   time.Date(2024, 3, 11, 10, 0, 0, 0, time.UTC),
		EndTime:     time.Date(2024, 3, 11, 11, 30, 0, 0, time.UTC),
	}
}

func TestScheduleCreate(t *testing.T) {
	_, service, group, classroom := newScheduleFixture(t)

	schedule, err := service.Create(context.Background(), validScheduleRequest(group.ID, classroom.ID))
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	// Day names are normalized to lowercase.
	if schedule.DayOfWeek != models.Monday {
		t.Errorf("day_of_week = %q, want %q", schedule.DayOfWeek, models.Monday)
	}
}

func TestScheduleCreateValidation(t *testing.T) {
	_, service, group, classroom := newScheduleFixture(t)
	ctx := context.Background()

	t.Run("end before start", func(t *testing.T) {
		req := validScheduleRequest(group.ID, classroom.ID)
		req.EndTime = req.StartTime.Add(-time.Hour)
		if _, err := service.Create(ctx, req); !errors.Is(err, ErrValidationFailed) {
			t.Fatalf("expected ErrValidationFailed, got %v", err)
		}
	})

	t.Run("recurring without end date", func(t *testing.T) {
		req := validScheduleRequest(group.ID, classroom.ID)
		req.IsRecurring = true
		if _, err := service.Create(ctx, req); !errors.Is(err, ErrValidationFailed) {
			t.Fatalf("expected ErrValidationFailed, got %v", err)
		}
	})

	t.Run("recurrence end before start", func(t *testing.T) {
		req := validScheduleRequest(group.ID, classroom.ID)
		req.IsRecurring = true
		end := req.StartTime.AddDate(0, 0, -7)
		req.RecurrenceEndDate = &end
		if _, err := service.Create(ctx, req); !errors.Is(err, ErrValidationFailed) {
			t.Fatalf("expected ErrValidationFailed, got %v", err)
		}
	})

	t.Run("unknown day", func(t *testing.T) {
		req := validScheduleRequest(group.ID, classroom.ID)
		req.DayOfWeek = "someday"
		if _, err := service.Create(ctx, req); !errors.Is(err, ErrValidationFailed) {
			t.Fatalf("expected ErrValidationFailed, got %v", err)
		}
	})
}

func TestScheduleCreateUnknownReferences(t *testing.T) {
	_, service, group, classroom := newScheduleFixture(t)
	ctx := context.Background()

	missingID := "11111111-2222-4333-8444-555555555555"

	t.Run("unknown group", func(t *testing.T) {
		req := validScheduleRequest(missingID, classroom.ID)
		if _, err := service.Create(ctx, req); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("unknown classroom", func(t *testing.T) {
		req := validScheduleRequest(group.ID, missingID)
		if _, err := service.Create(ctx, req); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestScheduleCreateRecurring(t *testing.T) {
	_, service, group, classroom := newScheduleFixture(t)

	req := validScheduleRequest(group.ID, classroom.ID)
	req.IsRecurring = true
	end := req.StartTime.AddDate(0, 3, 0)
	req.RecurrenceEndDate = &end

	schedule, err := service.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if !schedule.IsRecurring || schedule.RecurrenceEndDate == nil {
		t.Error("recurrence fields not persisted")
	}
}

func TestScheduleCreateDropsEndDateWhenNotRecurring(t *testing.T) {
	_, service, group, classroom := newScheduleFixture(t)

	req := validScheduleRequest(group.ID, classroom.ID)
	end := req.StartTime.AddDate(0, 2, 0)
	req.RecurrenceEndDate = &end

	schedule, err := service.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if schedule.RecurrenceEndDate != nil {
		t.Errorf("recurrence_end_date = %v, want nil on a one-off lesson", schedule.RecurrenceEndDate)
	}
}

func TestScheduleUpdateToOneOffClearsEndDate(t *testing.T) {
	repo, service, group, classroom := newScheduleFixture(t)
	ctx := context.Background()

	req := validScheduleRequest(group.ID, classroom.ID)
	req.IsRecurring = true
	end := req.StartTime.AddDate(0, 3, 0)
	req.RecurrenceEndDate = &end

	schedule, err := service.Create(ctx, req)
	if err != nil {
		t.Fatal(err)
	}

	oneOff := false
	updated, err := service.Update(ctx, schedule.ID, UpdateScheduleRequest{IsRecurring: &oneOff})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.IsRecurring {
		t.Error("schedule should no longer recur")
	}
	if updated.RecurrenceEndDate != nil {
		t.Errorf("recurrence_end_date = %v, want nil after the switch", updated.RecurrenceEndDate)
	}

	stored, err := repo.schedules.GetByID(ctx, schedule.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.RecurrenceEndDate != nil {
		t.Errorf("stored recurrence_end_date = %v, want nil", stored.RecurrenceEndDate)
	}
}

func TestScheduleUpdateMoveClassroom(t *testing.T) {
	repo, service, group, classroom := newScheduleFixture(t)
	ctx := context.Background()

	other := &models.Classroom{Name: "Studio B", Capacity: 8}
	if err := repo.classrooms.Create(ctx, other); err != nil {
		t.Fatal(err)
	}

	schedule, err := service.Create(ctx, validScheduleRequest(group.ID, classroom.ID))
	if err != nil {
		t.Fatal(err)
	}

	updated, err := service.Update(ctx, schedule.ID, UpdateScheduleRequest{ClassroomID: &other.ID})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.ClassroomID != other.ID {
		t.Errorf("classroom_id = %q, want %q", updated.ClassroomID, other.ID)
	}
}

func TestScheduleDelete(t *testing.T) {
	repo, service, group, classroom := newScheduleFixture(t)
	ctx := context.Background()

	schedule, err := service.Create(ctx, validScheduleRequest(group.ID, classroom.ID))
	if err != nil {
		t.Fatal(err)
	}

	if err := service.Delete(ctx, schedule.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := repo.schedules.GetByID(ctx, schedule.ID); err == nil {
		t.Error("schedule should be gone")
	}
}
