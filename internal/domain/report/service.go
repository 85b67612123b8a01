package report

import "context"

type ReportService interface {
	// GenerateLeaveRegisterXLSX builds the yearly leave register workbook:
	// one row per leave request with its lifecycle outcome.
	GenerateLeaveRegisterXLSX(ctx context.Context, req YearlyReportRequest) ([]byte, error)

	// GenerateBalanceSummaryXLSX builds the yearly balance summary workbook:
	// one row per (employee, leave type) ledger entry.
	GenerateBalanceSummaryXLSX(ctx context.Context, req YearlyReportRequest) ([]byte, error)
}
