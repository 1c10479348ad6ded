package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/uptpik/amanat/internal/application/port"
	"github.com/uptpik/amanat/internal/application/service"
	"github.com/uptpik/amanat/internal/domain/entity"
	"github.com/uptpik/amanat/internal/domain/workflow"
	"github.com/uptpik/amanat/internal/report"
)

// actorKey is the gin context key holding the resolved entity.Actor
const actorKey = "actor"

// Handlers contains all HTTP request handlers
type Handlers struct {
	letterService      service.LetterService
	dispositionService service.DispositionService
	trackingService    service.TrackingService
	dashboardService   service.DashboardService
	attachmentService  service.AttachmentService
	userService        service.UserService
	registerExporter   *report.RegisterExporter
	logger             Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	letterService service.LetterService,
	dispositionService service.DispositionService,
	trackingService service.TrackingService,
	dashboardService service.DashboardService,
	attachmentService service.AttachmentService,
	userService service.UserService,
	registerExporter *report.RegisterExporter,
	logger Logger,
) *Handlers {
	return &Handlers{
		letterService:      letterService,
		dispositionService: dispositionService,
		trackingService:    trackingService,
		dashboardService:   dashboardService,
		attachmentService:  attachmentService,
		userService:        userService,
		registerExporter:   registerExporter,
		logger:             logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// PageResponse wraps a paginated listing
type PageResponse struct {
	Items interface{} `json:"items"`
	Total int         `json:"total"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// ActorMiddleware resolves the acting user from the X-Actor-ID header.
// Authentication proper lives outside this system; the header names an
// existing active user whose role drives every authorization decision.
func (h *Handlers) ActorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		idStr := c.GetHeader("X-Actor-ID")
		if idStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{
				Success: false,
				Error:   "X-Actor-ID header is required",
			})
			return
		}

		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{
				Success: false,
				Error:   "invalid X-Actor-ID header",
			})
			return
		}

		user, err := h.userService.GetByID(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, port.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, Response{
					Success: false,
					Error:   "unknown actor",
				})
				return
			}
			h.writeError(c, err)
			c.Abort()
			return
		}
		if !user.Active {
			c.AbortWithStatusJSON(http.StatusForbidden, Response{
				Success: false,
				Error:   "actor is deactivated",
			})
			return
		}

		c.Set(actorKey, user.Actor())
		c.Next()
	}
}

// actor returns the entity.Actor the middleware resolved
func (h *Handlers) actor(c *gin.Context) entity.Actor {
	return c.MustGet(actorKey).(entity.Actor)
}

// writeError maps application errors to HTTP status codes
func (h *Handlers) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, port.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, workflow.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, workflow.ErrInvalidTransition), errors.Is(err, workflow.ErrInvalidState):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, port.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, port.ErrTimeout):
		status = http.StatusGatewayTimeout
	case errors.Is(err, service.ErrInvalidArgument):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("Request failed", "error", err, "path", c.Request.URL.Path)
		c.JSON(status, Response{Success: false, Error: "internal error"})
		return
	}
	c.JSON(status, Response{Success: false, Error: err.Error()})
}

// pathID parses the :id path parameter
func pathID(c *gin.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}

// parseDate accepts either a bare date or a full RFC3339 timestamp
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Version:   "1.0.0",
		},
	})
}

// CreateIncomingLetterRequest is the registration payload for a surat masuk
type CreateIncomingLetterRequest struct {
	LetterNumber string `json:"letter_number"`
	Subject      string `json:"subject" binding:"required"`
	Sender       string `json:"sender" binding:"required"`
	Category     string `json:"category"`
	LetterDate   string `json:"letter_date" binding:"required"`
	ReceivedDate string `json:"received_date" binding:"required"`
}

// CreateIncomingLetter handles POST /api/letters/incoming
func (h *Handlers) CreateIncomingLetter(c *gin.Context) {
	var req CreateIncomingLetterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	letterDate, err := parseDate(req.LetterDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid letter_date"})
		return
	}
	receivedDate, err := parseDate(req.ReceivedDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid received_date"})
		return
	}

	letter, err := h.letterService.CreateIncoming(c.Request.Context(), service.CreateIncomingInput{
		LetterNumber: req.LetterNumber,
		Subject:      req.Subject,
		Sender:       req.Sender,
		Category:     req.Category,
		LetterDate:   letterDate,
		ReceivedDate: receivedDate,
	}, h.actor(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: letter})
}

// ListLettersRequest represents query parameters for letter listings
type ListLettersRequest struct {
	Status   string `form:"status"`
	Category string `form:"category"`
	Search   string `form:"search"`
	Limit    int    `form:"limit"`
	Offset   int    `form:"offset"`
}

func (r ListLettersRequest) filter() port.LetterFilter {
	return port.LetterFilter{
		Status:   workflow.State(r.Status),
		Category: r.Category,
		Search:   r.Search,
		Limit:    r.Limit,
		Offset:   r.Offset,
	}
}

// ListIncomingLetters handles GET /api/letters/incoming
func (h *Handlers) ListIncomingLetters(c *gin.Context) {
	var req ListLettersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid query parameters"})
		return
	}

	letters, total, err := h.letterService.ListIncoming(c.Request.Context(), req.filter())
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: PageResponse{Items: letters, Total: total}})
}

// GetIncomingLetter handles GET /api/letters/incoming/:id
func (h *Handlers) GetIncomingLetter(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid letter ID"})
		return
	}

	letter, err := h.letterService.GetIncoming(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: letter})
}

// TransitionRequest asks for a workflow status change
type TransitionRequest struct {
	Status string `json:"status" binding:"required"`
}

// TransitionIncomingLetter handles POST /api/letters/incoming/:id/transition
func (h *Handlers) TransitionIncomingLetter(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid letter ID"})
		return
	}

	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	letter, err := h.letterService.AdvanceIncoming(c.Request.Context(), id, workflow.State(req.Status), h.actor(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: letter})
}

// DeleteIncomingLetter handles DELETE /api/letters/incoming/:id
func (h *Handlers) DeleteIncomingLetter(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid letter ID"})
		return
	}

	if err := h.letterService.DeleteIncoming(c.Request.Context(), id, h.actor(c)); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true})
}

// CreateOutgoingLetterRequest is the draft payload for a surat keluar
type CreateOutgoingLetterRequest struct {
	LetterNumber string `json:"letter_number"`
	Subject      string `json:"subject" binding:"required"`
	Recipient    string `json:"recipient" binding:"required"`
	Category     string `json:"category"`
	LetterDate   string `json:"letter_date" binding:"required"`
}

// CreateOutgoingLetter handles POST /api/letters/outgoing
func (h *Handlers) CreateOutgoingLetter(c *gin.Context) {
	var req CreateOutgoingLetterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	letterDate, err := parseDate(req.LetterDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid letter_date"})
		return
	}

	letter, err := h.letterService.CreateOutgoing(c.Request.Context(), service.CreateOutgoingInput{
		LetterNumber: req.LetterNumber,
		Subject:      req.Subject,
		Recipient:    req.Recipient,
		Category:     req.Category,
		LetterDate:   letterDate,
	}, h.actor(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: letter})
}

// ListOutgoingLetters handles GET /api/letters/outgoing
func (h *Handlers) ListOutgoingLetters(c *gin.Context) {
	var req ListLettersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid query parameters"})
		return
	}

	letters, total, err := h.letterService.ListOutgoing(c.Request.Context(), req.filter())
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: PageResponse{Items: letters, Total: total}})
}

// GetOutgoingLetter handles GET /api/letters/outgoing/:id
func (h *Handlers) GetOutgoingLetter(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid letter ID"})
		return
	}

	letter, err := h.letterService.GetOutgoing(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: letter})
}

// TransitionOutgoingLetter handles POST /api/letters/outgoing/:id/transition
func (h *Handlers) TransitionOutgoingLetter(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid letter ID"})
		return
	}

	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	letter, err := h.letterService.AdvanceOutgoing(c.Request.Context(), id, workflow.State(req.Status), h.actor(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: letter})
}

// DeleteOutgoingLetter handles DELETE /api/letters/outgoing/:id
func (h *Handlers) DeleteOutgoingLetter(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid letter ID"})
		return
	}

	if err := h.letterService.DeleteOutgoing(c.Request.Context(), id, h.actor(c)); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true})
}

// GetIncomingTracking handles GET /api/letters/incoming/:id/tracking
func (h *Handlers) GetIncomingTracking(c *gin.Context) {
	h.getTracking(c, entity.IncomingRef)
}

// GetOutgoingTracking handles GET /api/letters/outgoing/:id/tracking
func (h *Handlers) GetOutgoingTracking(c *gin.Context) {
	h.getTracking(c, entity.OutgoingRef)
}

func (h *Handlers) getTracking(c *gin.Context, ref func(int64) entity.LetterRef) {
	id, err := pathID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid letter ID"})
		return
	}

	entries, err := h.trackingService.ListByLetter(c.Request.Context(), ref(id))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: entries})
}

// UploadIncomingAttachment handles POST /api/letters/incoming/:id/attachments
func (h *Handlers) UploadIncomingAttachment(c *gin.Context) {
	h.uploadAttachment(c, entity.IncomingRef)
}

// UploadOutgoingAttachment handles POST /api/letters/outgoing/:id/attachments
func (h *Handlers) UploadOutgoingAttachment(c *gin.Context) {
	h.uploadAttachment(c, entity.OutgoingRef)
}

func (h *Handlers) uploadAttachment(c *gin.Context, ref func(int64) entity.LetterRef) {
	id, err := pathID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid letter ID"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "multipart field 'file' is required"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		h.writeError(c, err)
		return
	}
	defer f.Close()

	attachment, err := h.attachmentService.Add(
		c.Request.Context(),
		ref(id),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		f,
		h.actor(c),
	)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: attachment})
}

// ListIncomingAttachments handles GET /api/letters/incoming/:id/attachments
func (h *Handlers) ListIncomingAttachments(c *gin.Context) {
	h.listAttachments(c, entity.IncomingRef)
}

// ListOutgoingAttachments handles GET /api/letters/outgoing/:id/attachments
func (h *Handlers) ListOutgoingAttachments(c *gin.Context) {
	h.listAttachments(c, entity.OutgoingRef)
}

func (h *Handlers) listAttachments(c *gin.Context, ref func(int64) entity.LetterRef) {
	id, err := pathID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid letter ID"})
		return
	}

	attachments, err := h.attachmentService.ListByLetter(c.Request.Context(), ref(id))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: attachments})
}

// DownloadAttachment handles GET /api/attachments/:id/download
func (h *Handlers) DownloadAttachment(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid attachment ID"})
		return
	}

	attachment, rc, err := h.attachmentService.Open(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	defer rc.Close()

	contentType := attachment.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.DataFromReader(http.StatusOK, attachment.SizeBytes, contentType, rc, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", attachment.FileName),
	})
}

// CreateDispositionRequest carries a routing instruction
type CreateDispositionRequest struct {
	Direction   string `json:"direction" binding:"required"`
	LetterID    int64  `json:"letter_id" binding:"required"`
	ToUserID    int64  `json:"to_user_id" binding:"required"`
	Kind        string `json:"kind" binding:"required"`
	Instruction string `json:"instruction" binding:"required"`
	DueDate     string `json:"due_date"`
}

// CreateDisposition handles POST /api/dispositions
func (h *Handlers) CreateDisposition(c *gin.Context) {
	var req CreateDispositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	var dueDate *time.Time
	if req.DueDate != "" {
		t, err := parseDate(req.DueDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid due_date"})
			return
		}
		dueDate = &t
	}

	disposition, err := h.dispositionService.Create(c.Request.Context(), service.CreateDispositionInput{
		Letter: entity.LetterRef{
			Direction: workflow.Direction(req.Direction),
			ID:        req.LetterID,
		},
		ToUserID:    req.ToUserID,
		Kind:        req.Kind,
		Instruction: req.Instruction,
		DueDate:     dueDate,
	}, h.actor(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: disposition})
}

// ListDispositionsRequest represents query parameters for disposition listings
type ListDispositionsRequest struct {
	Status   string `form:"status"`
	ToUserID int64  `form:"to_user_id"`
	Limit    int    `form:"limit"`
	Offset   int    `form:"offset"`
}

// ListDispositions handles GET /api/dispositions
func (h *Handlers) ListDispositions(c *gin.Context) {
	var req ListDispositionsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid query parameters"})
		return
	}

	dispositions, total, err := h.dispositionService.List(c.Request.Context(), port.DispositionFilter{
		Status:   req.Status,
		ToUserID: req.ToUserID,
		Limit:    req.Limit,
		Offset:   req.Offset,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: PageResponse{Items: dispositions, Total: total}})
}

// GetDisposition handles GET /api/dispositions/:id
func (h *Handlers) GetDisposition(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid disposition ID"})
		return
	}

	disposition, err := h.dispositionService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: disposition})
}

// UpdateDispositionStatusRequest asks for a disposition status change
type UpdateDispositionStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateDispositionStatus handles PATCH /api/dispositions/:id/status
func (h *Handlers) UpdateDispositionStatus(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid disposition ID"})
		return
	}

	var req UpdateDispositionStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	disposition, err := h.dispositionService.UpdateStatus(c.Request.Context(), id, req.Status, h.actor(c).ID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: disposition})
}

// DeleteDisposition handles DELETE /api/dispositions/:id
func (h *Handlers) DeleteDisposition(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid disposition ID"})
		return
	}

	if err := h.dispositionService.Delete(c.Request.Context(), id, h.actor(c)); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true})
}

// DashboardSummary handles GET /api/dashboard/summary
func (h *Handlers) DashboardSummary(c *gin.Context) {
	summary, err := h.dashboardService.Summary(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: summary})
}

// DispositionSummary handles GET /api/dashboard/dispositions. It reports the
// acting user's own disposition inbox.
func (h *Handlers) DispositionSummary(c *gin.Context) {
	counts, err := h.dashboardService.DispositionSummary(c.Request.Context(), h.actor(c).ID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: counts})
}

// ListUsers handles GET /api/users
func (h *Handlers) ListUsers(c *gin.Context) {
	users, err := h.userService.List(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: users})
}

// ExportRegister handles GET /api/reports/register?year=2025&month=3
func (h *Handlers) ExportRegister(c *gin.Context) {
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil || year < 2000 || year > 2100 {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid year"})
		return
	}
	month, err := strconv.Atoi(c.Query("month"))
	if err != nil || month < 1 || month > 12 {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid month"})
		return
	}

	fileName := fmt.Sprintf("agenda-%04d%02d.xlsx", year, month)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := h.registerExporter.ExportMonth(c.Request.Context(), year, time.Month(month), c.Writer); err != nil {
		h.logger.Error("Register export failed", "error", err)
		c.Status(http.StatusInternalServerError)
	}
}
