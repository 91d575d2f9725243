package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/prof-it/school-service/internal/cache"
	"github.com/prof-it/school-service/internal/validator"
)

func newClassroomFixture() (*fakeRepo, ClassroomService) {
	repo := newFakeRepo()
	service := NewClassroomService(repo, testLogger(), validator.New(), cache.NewCacheManager(nil))
	return repo, service
}

func TestClassroomCreate(t *testing.T) {
	_, service := newClassroomFixture()

	classroom, err := service.Create(context.Background(), CreateClassroomRequest{
		Name:        "Studio A",
		Capacity:    12,
		Description: "North-facing painting studio",
		Location:    "2nd floor",
		Equipment:   []string{"easels", "projector"},
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if classroom.ID == "" {
		t.Error("expected an ID")
	}
	if classroom.Description != "North-facing painting studio" {
		t.Errorf("description = %q", classroom.Description)
	}

	var equipment []string
	if err := json.Unmarshal(classroom.Equipment, &equipment); err != nil {
		t.Fatalf("equipment is not valid JSON: %v", err)
	}
	if len(equipment) != 2 || equipment[0] != "easels" {
		t.Errorf("equipment = %v", equipment)
	}
}

func TestClassroomCreateEmptyEquipment(t *testing.T) {
	_, service := newClassroomFixture()

	classroom, err := service.Create(context.Background(), CreateClassroomRequest{
		Name:     "Studio B",
		Capacity: 8,
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	// Omitted equipment is stored as an empty array, not null.
	if string(classroom.Equipment) != "[]" {
		t.Errorf("equipment = %q, want %q", string(classroom.Equipment), "[]")
	}
}

func TestClassroomCreateValidation(t *testing.T) {
	_, service := newClassroomFixture()

	tests := []struct {
		name string
		req  CreateClassroomRequest
	}{
		{name: "missing name", req: CreateClassroomRequest{Capacity: 10}},
		{name: "zero capacity", req: CreateClassroomRequest{Name: "Studio A"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Create(context.Background(), tt.req)
			if !errors.Is(err, ErrValidationFailed) {
				t.Fatalf("expected ErrValidationFailed, got %v", err)
			}
		})
	}
}

func TestClassroomUpdatePartial(t *testing.T) {
	_, service := newClassroomFixture()
	ctx := context.Background()

	classroom, err := service.Create(ctx, CreateClassroomRequest{Name: "Studio A", Capacity: 12})
	if err != nil {
		t.Fatal(err)
	}

	capacity := 20
	updated, err := service.Update(ctx, classroom.ID, UpdateClassroomRequest{Capacity: &capacity})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	if updated.Capacity != 20 {
		t.Errorf("capacity = %d, want 20", updated.Capacity)
	}
	if updated.Name != "Studio A" {
		t.Errorf("name changed unexpectedly: %q", updated.Name)
	}

	description := "Repainted over the summer"
	updated, err = service.Update(ctx, classroom.ID, UpdateClassroomRequest{Description: &description})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.Description != description {
		t.Errorf("description = %q, want %q", updated.Description, description)
	}
}

func TestClassroomGetByIDStorageFailureIsNotNotFound(t *testing.T) {
	repo, service := newClassroomFixture()

	repo.classrooms.getErr = errors.New("connection refused")

	_, err := service.GetByID(context.Background(), "room-1")
	if err == nil {
		t.Fatal("expected an error")
	}
	if errors.Is(err, ErrNotFound) {
		t.Fatalf("storage failure surfaced as ErrNotFound: %v", err)
	}
}

func TestClassroomDeleteRefusedWhileScheduled(t *testing.T) {
	repo, service := newClassroomFixture()
	ctx := context.Background()

	classroom, err := service.Create(ctx, CreateClassroomRequest{Name: "Studio A", Capacity: 12})
	if err != nil {
		t.Fatal(err)
	}

	repo.classrooms.hasSchedules = map[string]bool{classroom.ID: true}

	err = service.Delete(ctx, classroom.ID)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	// Still retrievable.
	if _, err := repo.classrooms.GetByID(ctx, classroom.ID); err != nil {
		t.Errorf("classroom should survive the refused delete: %v", err)
	}
}

func TestClassroomDelete(t *testing.T) {
	repo, service := newClassroomFixture()
	ctx := context.Background()

	classroom, err := service.Create(ctx, CreateClassroomRequest{Name: "Studio A", Capacity: 12})
	if err != nil {
		t.Fatal(err)
	}

	if err := service.Delete(ctx, classroom.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := repo.classrooms.GetByID(ctx, classroom.ID); err == nil {
		t.Error("classroom should be gone")
	}

	if err := service.Delete(ctx, classroom.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}
