package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/peoplecore/leave-backend-go/internal/domain/leave"
	"github.com/peoplecore/leave-backend-go/internal/domain/user"
	"github.com/peoplecore/leave-backend-go/internal/handler/http/response"
	"github.com/peoplecore/leave-backend-go/internal/service/file"
)

type LeaveHandler interface {
	// Lifecycle
	Submit(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
	Return(w http.ResponseWriter, r *http.Request)
	Resubmit(w http.ResponseWriter, r *http.Request)
	Extend(w http.ResponseWriter, r *http.Request)
	Shorten(w http.ResponseWriter, r *http.Request)
	PartialCancel(w http.ResponseWriter, r *http.Request)
	Cancel(w http.ResponseWriter, r *http.Request)
	RequestCancellation(w http.ResponseWriter, r *http.Request)
	DecideCancellation(w http.ResponseWriter, r *http.Request)
	Recall(w http.ResponseWriter, r *http.Request)

	// Queries
	GetRequest(w http.ResponseWriter, r *http.Request)
	ListMyRequests(w http.ResponseWriter, r *http.Request)
	ListRequests(w http.ResponseWriter, r *http.Request)
	ListPending(w http.ResponseWriter, r *http.Request)
	GetVersions(w http.ResponseWriter, r *http.Request)
	GetComments(w http.ResponseWriter, r *http.Request)

	// Balances
	GetMyBalances(w http.ResponseWriter, r *http.Request)
	AdjustBalance(w http.ResponseWriter, r *http.Request)

	// Holidays
	ListHolidays(w http.ResponseWriter, r *http.Request)
	CreateHoliday(w http.ResponseWriter, r *http.Request)

	// Attachments
	UploadCertificate(w http.ResponseWriter, r *http.Request)
}

type leaveHandlerImpl struct {
	leaveService leave.LeaveService
	fileService  file.FileService
}

func NewLeaveHandler(leaveService leave.LeaveService, fileService file.FileService) LeaveHandler {
	return &leaveHandlerImpl{
		leaveService: leaveService,
		fileService:  fileService,
	}
}

// getUserIDFromContext extracts user_id from JWT context
func getUserIDFromContext(r *http.Request) string {
	_, claims, _ := jwtauth.FromContext(r.Context())
	if userID, ok := claims["user_id"].(string); ok {
		return userID
	}
	return ""
}

// getRoleFromContext extracts role from JWT context
func getRoleFromContext(r *http.Request) user.Role {
	_, claims, _ := jwtauth.FromContext(r.Context())
	if role, ok := claims["role"].(string); ok {
		return user.Role(role)
	}
	return ""
}

// getIntQueryParam gets an int query parameter with a default value
func getIntQueryParam(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}
	intVal, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return intVal
}

func (h *leaveHandlerImpl) Submit(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r)
	if userID == "" {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	var req leave.CreateLeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Submit decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.leaveService.Submit(r.Context(), userID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Leave request submitted successfully", result)
}

func (h *leaveHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r)
	leaveID := chi.URLParam(r, "id")

	var req leave.DecideRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "Invalid request format", nil)
			return
		}
	}

	result, err := h.leaveService.Approve(r.Context(), userID, leaveID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Decision recorded", result)
}

func (h *leaveHandlerImpl) Reject(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r)
	leaveID := chi.URLParam(r, "id")

	var req leave.RejectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.leaveService.Reject(r.Context(), userID, leaveID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave request rejected", result)
}

func (h *leaveHandlerImpl) Return(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r)
	leaveID := chi.URLParam(r, "id")

	var req leave.ReturnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.leaveService.Return(r.Context(), userID, leaveID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave request returned for correction", result)
}

func (h *leaveHandlerImpl) Resubmit(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r)
	leaveID := chi.URLParam(r, "id")

	var req leave.ResubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.leaveService.Resubmit(r.Context(), userID, leaveID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave request resubmitted", result)
}

func (h *leaveHandlerImpl) Extend(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r)
	leaveID := chi.URLParam(r, "id")

	var req leave.ExtendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.leaveService.Extend(r.Context(), userID, leaveID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Extension request submitted", result)
}

func (h *leaveHandlerImpl) Shorten(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r)
	leaveID := chi.URLParam(r, "id")

	var req leave.ShortenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.leaveService.Shorten(r.Context(), userID, leaveID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave shortened", result)
}

func (h *leaveHandlerImpl) PartialCancel(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r)
	leaveID := chi.URLParam(r, "id")

	var req leave.CancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.leaveService.PartialCancel(r.Context(), userID, leaveID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Remaining leave days cancelled", result)
}

func (h *leaveHandlerImpl) Cancel(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r)
	leaveID := chi.URLParam(r, "id")

	var req leave.CancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.leaveService.Cancel(r.Context(), userID, leaveID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave request cancelled", result)
}

func (h *leaveHandlerImpl) RequestCancellation(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r)
	leaveID := chi.URLParam(r, "id")

	var req leave.CancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.leaveService.RequestCancellation(r.Context(), userID, leaveID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Cancellation requested", result)
}

func (h *leaveHandlerImpl) DecideCancellation(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r)
	leaveID := chi.URLParam(r, "id")

	var req leave.DecideCancellationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.leaveService.DecideCancellation(r.Context(), userID, leaveID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Cancellation decision recorded", result)
}

func (h *leaveHandlerImpl) Recall(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r)
	leaveID := chi.URLParam(r, "id")

	var req leave.RecallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.leaveService.Recall(r.Context(), userID, leaveID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Employee recalled from leave", result)
}

func (h *leaveHandlerImpl) GetRequest(w http.ResponseWriter, r *http.Request) {
	leaveID := chi.URLParam(r, "id")

	result, err := h.leaveService.GetRequest(r.Context(), leaveID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	// Employees may only see their own requests
	role := getRoleFromContext(r)
	if role == user.RoleEmployee && result.RequesterID != getUserIDFromContext(r) {
		response.Forbidden(w, "You may only view your own leave requests")
		return
	}

	response.Success(w, result)
}

func (h *leaveHandlerImpl) ListMyRequests(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r)
	if userID == "" {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	year := getIntQueryParam(r, "year", time.Now().UTC().Year())

	result, err := h.leaveService.ListMyRequests(r.Context(), userID, year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *leaveHandlerImpl) ListRequests(w http.ResponseWriter, r *http.Request) {
	filter := leave.RequestFilter{
		Limit:  getIntQueryParam(r, "limit", 50),
		Offset: getIntQueryParam(r, "offset", 0),
	}
	if v := r.URL.Query().Get("status"); v != "" {
		status := leave.LeaveStatus(v)
		filter.Status = &status
	}
	if v := r.URL.Query().Get("leave_type"); v != "" {
		leaveType := leave.LeaveType(v)
		filter.Type = &leaveType
	}
	if v := r.URL.Query().Get("requester_id"); v != "" {
		filter.RequesterID = &v
	}
	if v := getIntQueryParam(r, "year", 0); v > 0 {
		filter.Year = &v
	}

	result, err := h.leaveService.ListRequests(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.Requests, &response.Meta{
		Limit:      filter.Limit,
		TotalItems: result.Total,
	})
}

func (h *leaveHandlerImpl) ListPending(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r)

	result, err := h.leaveService.ListPendingForApprover(r.Context(), userID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *leaveHandlerImpl) GetVersions(w http.ResponseWriter, r *http.Request) {
	leaveID := chi.URLParam(r, "id")

	result, err := h.leaveService.GetVersions(r.Context(), leaveID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *leaveHandlerImpl) GetComments(w http.ResponseWriter, r *http.Request) {
	leaveID := chi.URLParam(r, "id")

	result, err := h.leaveService.GetComments(r.Context(), leaveID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *leaveHandlerImpl) GetMyBalances(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r)
	if userID == "" {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	year := getIntQueryParam(r, "year", time.Now().UTC().Year())

	result, err := h.leaveService.GetMyBalances(r.Context(), userID, year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *leaveHandlerImpl) AdjustBalance(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r)

	var req leave.AdjustBalanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.leaveService.AdjustBalance(r.Context(), userID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Balance adjusted", result)
}

func (h *leaveHandlerImpl) ListHolidays(w http.ResponseWriter, r *http.Request) {
	result, err := h.leaveService.ListHolidays(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *leaveHandlerImpl) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r)

	var req leave.CreateHolidayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.leaveService.CreateHoliday(r.Context(), userID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Holiday created", result)
}

const maxCertificateSize = 10 << 20 // 10 MB

// UploadCertificate stores a certificate file and returns its path; the
// client passes the path in certificate_url when submitting or resubmitting.
func (h *leaveHandlerImpl) UploadCertificate(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r)
	if userID == "" {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	if err := r.ParseMultipartForm(maxCertificateSize); err != nil {
		response.BadRequest(w, "Invalid multipart form", nil)
		return
	}

	uploaded, header, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, "file field is required", nil)
		return
	}
	defer uploaded.Close()

	var path string
	if r.URL.Query().Get("kind") == "fitness" {
		path, err = h.fileService.UploadFitnessCertificate(r.Context(), userID, uploaded, header.Filename)
	} else {
		path, err = h.fileService.UploadCertificate(r.Context(), userID, uploaded, header.Filename)
	}
	if err != nil {
		response.BadRequest(w, err.Error(), nil)
		return
	}

	response.Created(w, "Certificate uploaded", map[string]string{"path": path})
}
