package report

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/peoplecore/leave-backend-go/internal/domain/leave"
	"github.com/peoplecore/leave-backend-go/internal/domain/report"
	"github.com/peoplecore/leave-backend-go/internal/domain/user"
	"github.com/xuri/excelize/v2"
)

type reportServiceImpl struct {
	requests leave.LeaveRequestRepository
	balances leave.BalanceRepository
	users    user.UserRepository
}

func NewReportService(
	requests leave.LeaveRequestRepository,
	balances leave.BalanceRepository,
	users user.UserRepository,
) report.ReportService {
	return &reportServiceImpl{
		requests: requests,
		balances: balances,
		users:    users,
	}
}

var registerHeaders = []string{
	"Request ID", "Employee", "Email", "Leave Type", "Start Date", "End Date",
	"Working Days", "Status", "Modified", "Approved At", "Reason",
}

func (s *reportServiceImpl) GenerateLeaveRegisterXLSX(ctx context.Context, req report.YearlyReportRequest) ([]byte, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	year := req.Year
	rows, _, err := s.requests.List(ctx, leave.RequestFilter{Year: &year})
	if err != nil {
		return nil, fmt.Errorf("failed to list leave requests: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := fmt.Sprintf("Leave Register %d", req.Year)
	f.SetSheetName("Sheet1", sheet)

	for col, header := range registerHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, err
		}
	}

	for i, lr := range rows {
		approvedAt := ""
		if lr.ApprovedAt != nil {
			approvedAt = lr.ApprovedAt.Format(time.RFC3339)
		}
		name := ""
		if lr.RequesterName != nil {
			name = *lr.RequesterName
		}
		email := ""
		if lr.RequesterEmail != nil {
			email = *lr.RequesterEmail
		}

		values := []interface{}{
			lr.ID, name, email, string(lr.Type),
			lr.StartDate.Format("2006-01-02"), lr.EndDate.Format("2006-01-02"),
			lr.WorkingDays, string(lr.Status), lr.IsModified, approvedAt, lr.Reason,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	return writeWorkbook(f)
}

var balanceHeaders = []string{
	"Employee", "Email", "Leave Type", "Year", "Opening", "Accrued", "Used", "Available",
}

func (s *reportServiceImpl) GenerateBalanceSummaryXLSX(ctx context.Context, req report.YearlyReportRequest) ([]byte, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	employees, err := s.users.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := fmt.Sprintf("Balances %d", req.Year)
	f.SetSheetName("Sheet1", sheet)

	for col, header := range balanceHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, err
		}
	}

	row := 2
	for _, emp := range employees {
		balances, err := s.balances.GetByEmployeeYear(ctx, emp.ID, req.Year)
		if err != nil {
			return nil, fmt.Errorf("failed to load balances for %s: %w", emp.ID, err)
		}

		for _, b := range balances {
			values := []interface{}{
				emp.FullName, emp.Email, string(b.LeaveType), b.Year,
				b.Opening.String(), b.Accrued.String(), b.Used.String(), b.Available().String(),
			}
			for col, v := range values {
				cell, _ := excelize.CoordinatesToCellName(col+1, row)
				if err := f.SetCellValue(sheet, cell, v); err != nil {
					return nil, err
				}
			}
			row++
		}
	}

	return writeWorkbook(f)
}

func writeWorkbook(f *excelize.File) ([]byte, error) {
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
