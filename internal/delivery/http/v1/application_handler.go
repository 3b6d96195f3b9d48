package v1

import (
	"net/http"
	"strings"
	"time"

	"go-maids-backend/internal/delivery/http/response"
	"go-maids-backend/internal/domain"
	"go-maids-backend/pkg/apperror"
	"go-maids-backend/pkg/validation"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type ApplicationHandler struct {
	applicationUC domain.ApplicationUsecase
}

// NewApplicationHandler registers application routes
func NewApplicationHandler(r *gin.RouterGroup, applicationUC domain.ApplicationUsecase) {
	handler := &ApplicationHandler{applicationUC: applicationUC}

	// Maid routes
	maids := r.Group("/maids")
	{
		maids.POST("/jobs/:jobId/apply", handler.Apply)
		maids.GET("/applications", handler.GetMyApplications)
		maids.POST("/applications/:id/withdraw", handler.Withdraw)
	}

	// Sponsor routes
	sponsors := r.Group("/sponsors")
	{
		sponsors.GET("/jobs/:jobId/applications", handler.ListByJob)
		sponsors.POST("/applications/:id/review", handler.Review)
		sponsors.POST("/applications/:id/interview", handler.ScheduleInterview)
		sponsors.POST("/applications/:id/interview/complete", handler.CompleteInterview)
		sponsors.POST("/applications/:id/accept", handler.Accept)
		sponsors.POST("/applications/:id/reject", handler.Reject)
	}
}

// ApplyRequest is the request payload for applying to a job
type ApplyRequest struct {
	CoverLetter    string           `json:"cover_letter" binding:"omitempty,max=2000,no_emoji"`
	ProposedSalary *decimal.Decimal `json:"proposed_salary"`
	AvailableFrom  *time.Time       `json:"available_from" binding:"omitempty,future_date"`
}

// Apply godoc
// @Summary      Apply to a job
// @Description  Submit an application for an open job (Maid only)
// @Tags         applications
// @Accept       json
// @Produce      json
// @Param        jobId  path      string        true  "Job ID"
// @Param        body   body      ApplyRequest  true  "Application data"
// @Success      201    {object}  response.Response
// @Failure      400    {object}  response.Response
// @Failure      403    {object}  response.Response
// @Failure      409    {object}  response.Response
// @Router       /maids/jobs/{jobId}/apply [post]
// @Security     BearerAuth
func (h *ApplicationHandler) Apply(c *gin.Context) {
	if !requireMaid(c) {
		return
	}

	var req ApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.Error(apperror.BadRequest(strings.Join(validation.FormatValidationErrors(err), "; ")))
		return
	}

	maidID := c.GetString(string(domain.KeyUserID))
	app, err := h.applicationUC.Apply(c.Request.Context(), maidID, c.Param("jobId"), domain.ApplyParams{
		CoverLetter:    req.CoverLetter,
		ProposedSalary: req.ProposedSalary,
		AvailableFrom:  req.AvailableFrom,
	})
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "Application submitted", app.Snapshot())
}

// GetMyApplications godoc
// @Summary      List own applications
// @Tags         applications
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /maids/applications [get]
// @Security     BearerAuth
func (h *ApplicationHandler) GetMyApplications(c *gin.Context) {
	if !requireMaid(c) {
		return
	}

	maidID := c.GetString(string(domain.KeyUserID))
	apps, err := h.applicationUC.GetMyApplications(c.Request.Context(), maidID)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Your applications", apps)
}

// Withdraw godoc
// @Summary      Withdraw an application
// @Tags         applications
// @Accept       json
// @Produce      json
// @Param        id    path      string         true   "Application ID"
// @Param        body  body      ReasonRequest  false  "Withdrawal reason"
// @Success      200   {object}  response.Response
// @Failure      403   {object}  response.Response
// @Failure      409   {object}  response.Response
// @Router       /maids/applications/{id}/withdraw [post]
// @Security     BearerAuth
func (h *ApplicationHandler) Withdraw(c *gin.Context) {
	if !requireMaid(c) {
		return
	}

	var req ReasonRequest
	_ = c.ShouldBindJSON(&req)

	maidID := c.GetString(string(domain.KeyUserID))
	if err := h.applicationUC.WithdrawApplication(c.Request.Context(), maidID, c.Param("id"), req.Reason); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Application withdrawn", nil)
}

// ListByJob godoc
// @Summary      List a job's applications
// @Description  Applications for the sponsor's own posting, best match first
// @Tags         applications
// @Produce      json
// @Param        jobId  path      string  true  "Job ID"
// @Success      200    {object}  response.Response
// @Failure      403    {object}  response.Response
// @Router       /sponsors/jobs/{jobId}/applications [get]
// @Security     BearerAuth
func (h *ApplicationHandler) ListByJob(c *gin.Context) {
	if !requireSponsor(c) {
		return
	}

	sponsorID := c.GetString(string(domain.KeyUserID))
	ranked, err := h.applicationUC.ListByJob(c.Request.Context(), sponsorID, c.Param("jobId"))
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Job applications", ranked)
}

// Review godoc
// @Summary      Mark an application as reviewed
// @Tags         applications
// @Produce      json
// @Param        id   path      string  true  "Application ID"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /sponsors/applications/{id}/review [post]
// @Security     BearerAuth
func (h *ApplicationHandler) Review(c *gin.Context) {
	if !requireSponsor(c) {
		return
	}

	sponsorID := c.GetString(string(domain.KeyUserID))
	if err := h.applicationUC.ReviewApplication(c.Request.Context(), sponsorID, c.Param("id")); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Application reviewed", nil)
}

type ScheduleInterviewRequest struct {
	ScheduledAt time.Time `json:"scheduled_at" binding:"required,future_date"`
}

// ScheduleInterview godoc
// @Summary      Schedule an interview
// @Tags         applications
// @Accept       json
// @Produce      json
// @Param        id    path      string                    true  "Application ID"
// @Param        body  body      ScheduleInterviewRequest  true  "Interview slot"
// @Success      200   {object}  response.Response
// @Failure      400   {object}  response.Response
// @Failure      403   {object}  response.Response
// @Failure      409   {object}  response.Response
// @Router       /sponsors/applications/{id}/interview [post]
// @Security     BearerAuth
func (h *ApplicationHandler) ScheduleInterview(c *gin.Context) {
	if !requireSponsor(c) {
		return
	}

	var req ScheduleInterviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(strings.Join(validation.FormatValidationErrors(err), "; ")))
		return
	}

	sponsorID := c.GetString(string(domain.KeyUserID))
	if err := h.applicationUC.ScheduleInterview(c.Request.Context(), sponsorID, c.Param("id"), req.ScheduledAt); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Interview scheduled", nil)
}

type NotesRequest struct {
	Notes string `json:"notes" binding:"omitempty,max=2000"`
}

// CompleteInterview godoc
// @Summary      Record an interview outcome
// @Tags         applications
// @Accept       json
// @Produce      json
// @Param        id    path      string        true   "Application ID"
// @Param        body  body      NotesRequest  false  "Interview notes"
// @Success      200   {object}  response.Response
// @Failure      403   {object}  response.Response
// @Failure      409   {object}  response.Response
// @Router       /sponsors/applications/{id}/interview/complete [post]
// @Security     BearerAuth
func (h *ApplicationHandler) CompleteInterview(c *gin.Context) {
	if !requireSponsor(c) {
		return
	}

	var req NotesRequest
	_ = c.ShouldBindJSON(&req)

	sponsorID := c.GetString(string(domain.KeyUserID))
	if err := h.applicationUC.CompleteInterview(c.Request.Context(), sponsorID, c.Param("id"), req.Notes); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Interview completed", nil)
}

// Accept godoc
// @Summary      Accept an application
// @Tags         applications
// @Accept       json
// @Produce      json
// @Param        id    path      string        true   "Application ID"
// @Param        body  body      NotesRequest  false  "Decision notes"
// @Success      200   {object}  response.Response
// @Failure      403   {object}  response.Response
// @Failure      409   {object}  response.Response
// @Router       /sponsors/applications/{id}/accept [post]
// @Security     BearerAuth
func (h *ApplicationHandler) Accept(c *gin.Context) {
	if !requireSponsor(c) {
		return
	}

	var req NotesRequest
	_ = c.ShouldBindJSON(&req)

	sponsorID := c.GetString(string(domain.KeyUserID))
	if err := h.applicationUC.AcceptApplication(c.Request.Context(), sponsorID, c.Param("id"), req.Notes); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Application accepted", nil)
}

// Reject godoc
// @Summary      Reject an application
// @Tags         applications
// @Accept       json
// @Produce      json
// @Param        id    path      string         true   "Application ID"
// @Param        body  body      ReasonRequest  false  "Rejection reason"
// @Success      200   {object}  response.Response
// @Failure      403   {object}  response.Response
// @Failure      409   {object}  response.Response
// @Router       /sponsors/applications/{id}/reject [post]
// @Security     BearerAuth
func (h *ApplicationHandler) Reject(c *gin.Context) {
	if !requireSponsor(c) {
		return
	}

	var req ReasonRequest
	_ = c.ShouldBindJSON(&req)

	sponsorID := c.GetString(string(domain.KeyUserID))
	if err := h.applicationUC.RejectApplication(c.Request.Context(), sponsorID, c.Param("id"), req.Reason); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Application rejected", nil)
}

func requireMaid(c *gin.Context) bool {
	role := c.GetString(string(domain.KeyUserRole))
	if role != domain.RoleMaid && role != domain.RoleAdmin {
		c.Error(apperror.Forbidden("Only maids can manage applications"))
		return false
	}
	return true
}
