package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/prof-it/school-service/internal/repositories"
)

type reportService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewReportService(repo repositories.Repository, logger *slog.Logger) ReportService {
	return &reportService{repo: repo, logger: logger}
}

func (s *reportService) ExportPayments(ctx context.Context) ([]byte, error) {
	payments, _, err := s.repo.Payment().List(ctx, repositories.PaymentFilters{
		SortBy:    "due_date",
		SortOrder: "asc",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load payments: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Payments"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"ID", "Student", "Email", "Amount", "Currency", "Status", "Payment Date", "Due Date", "Paid At", "Description"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, header)
	}

	for row, payment := range payments {
		studentName, studentEmail := "", ""
		if payment.Student != nil {
			studentName = payment.Student.FullName()
			studentEmail = payment.Student.Email
		}

		paidAt := ""
		if payment.PaidAt != nil {
			paidAt = payment.PaidAt.Format("2006-01-02 15:04")
		}

		values := []any{
			payment.ID,
			studentName,
			studentEmail,
			payment.Amount,
			payment.Currency,
			string(payment.Status),
			payment.PaymentDate.Format("2006-01-02"),
			payment.DueDate.Format("2006-01-02"),
			paidAt,
			payment.Description,
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write payments workbook: %w", err)
	}

	s.logger.Info("Payments exported", "rows", len(payments))

	return buf.Bytes(), nil
}

func (s *reportService) ExportAttendances(ctx context.Context) ([]byte, error) {
	records, _, err := s.repo.Attendance().List(ctx, repositories.AttendanceFilters{
		SortBy:    "date",
		SortOrder: "desc",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load attendances: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Attendances"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"ID", "Student", "Schedule", "Date", "Status", "Notes"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, header)
	}

	for row, record := range records {
		studentName := ""
		if record.Student != nil {
			studentName = record.Student.FullName()
		}

		values := []any{
			record.ID,
			studentName,
			record.ScheduleID,
			record.Date.Format("2006-01-02"),
			string(record.Status),
			record.Notes,
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write attendances workbook: %w", err)
	}

	s.logger.Info("Attendances exported", "rows", len(records))

	return buf.Bytes(), nil
}
