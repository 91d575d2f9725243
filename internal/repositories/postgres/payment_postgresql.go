package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/prof-it/school-service/internal/models"
	"github.com/prof-it/school-service/internal/repositories"
)

type paymentRepository struct {
	db *gorm.DB
}

func NewPaymentPostgreSQL(db *gorm.DB) repositories.PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	if err := r.db.WithContext(ctx).Create(payment).Error; err != nil {
		return handleDBError(err, "create payment")
	}
	return nil
}

func (r *paymentRepository) GetByID(ctx context.Context, id string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		Preload("Student").
		Preload("Group").
		First(&payment, "id = ?", id).Error
	if err != nil {
		return nil, handleDBError(err, "get payment by id")
	}
	return &payment, nil
}

func (r *paymentRepository) List(ctx context.Context, filters repositories.PaymentFilters) ([]*models.Payment, int64, error) {
	var payments []*models.Payment
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Payment{})

	if filters.StudentID != nil {
		query = query.Where("student_id = ?", *filters.StudentID)
	}
	if filters.GroupID != nil {
		query = query.Where("group_id = ?", *filters.GroupID)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.DueFrom != nil {
		query = query.Where("due_date >= ?", *filters.DueFrom)
	}
	if filters.DueTo != nil {
		query = query.Where("due_date <= ?", *filters.DueTo)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count payments")
	}

	query = applyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset, map[string]string{
		"created_at": "created_at",
		"due_date":   "due_date",
		"amount":     "amount",
	})

	if err := query.Preload("Student").Find(&payments).Error; err != nil {
		return nil, 0, handleDBError(err, "list payments")
	}

	return payments, total, nil
}

func (r *paymentRepository) Update(ctx context.Context, payment *models.Payment) error {
	if err := r.db.WithContext(ctx).Save(payment).Error; err != nil {
		return handleDBError(err, "update payment")
	}
	return nil
}

func (r *paymentRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Delete(&models.Payment{}, "id = ?", id).Error; err != nil {
		return handleDBError(err, "delete payment")
	}
	return nil
}
