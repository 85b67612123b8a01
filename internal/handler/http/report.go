package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/peoplecore/leave-backend-go/internal/domain/report"
	"github.com/peoplecore/leave-backend-go/internal/handler/http/response"
)

type ReportHandler interface {
	LeaveRegister(w http.ResponseWriter, r *http.Request)
	BalanceSummary(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.ReportService
}

func NewReportHandler(reportService report.ReportService) ReportHandler {
	return &reportHandlerImpl{
		reportService: reportService,
	}
}

func (h *reportHandlerImpl) LeaveRegister(w http.ResponseWriter, r *http.Request) {
	req := report.YearlyReportRequest{
		Year: getIntQueryParam(r, "year", time.Now().UTC().Year()),
	}

	workbook, err := h.reportService.GenerateLeaveRegisterXLSX(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	writeWorkbook(w, fmt.Sprintf("leave-register-%d.xlsx", req.Year), workbook)
}

func (h *reportHandlerImpl) BalanceSummary(w http.ResponseWriter, r *http.Request) {
	req := report.YearlyReportRequest{
		Year: getIntQueryParam(r, "year", time.Now().UTC().Year()),
	}

	workbook, err := h.reportService.GenerateBalanceSummaryXLSX(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	writeWorkbook(w, fmt.Sprintf("balance-summary-%d.xlsx", req.Year), workbook)
}

func writeWorkbook(w http.ResponseWriter, filename string, workbook []byte) {
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(workbook)
}
