package v1

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"go-maids-backend/internal/delivery/http/response"
	"go-maids-backend/internal/domain"
	"go-maids-backend/pkg/apperror"
	"go-maids-backend/pkg/validation"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type JobHandler struct {
	jobUC domain.JobUsecase
}

func NewJobHandler(public *gin.RouterGroup, protected *gin.RouterGroup, jobUC domain.JobUsecase) {
	handler := &JobHandler{jobUC: jobUC}

	// PUBLIC routes - browsing needs no account
	publicJobs := public.Group("/jobs")
	{
		publicJobs.GET("", handler.ListOpen)
		publicJobs.GET("/salary-recommendation", handler.SalaryRecommendation)
		publicJobs.GET("/:id", handler.GetDetails)
		publicJobs.POST("/:id/view", handler.RecordView)
	}

	// PROTECTED routes - sponsor lifecycle operations
	protectedJobs := protected.Group("/jobs")
	{
		protectedJobs.POST("", handler.Create)
		protectedJobs.PUT("/:id", handler.UpdateDetails)
		protectedJobs.PUT("/:id/compensation", handler.UpdateCompensation)
		protectedJobs.POST("/:id/publish", handler.Publish)
		protectedJobs.POST("/:id/close", handler.Close)
		protectedJobs.POST("/:id/cancel", handler.Cancel)
		protectedJobs.POST("/:id/fill", handler.MarkFilled)
	}

	// Sponsor-specific routes (only the sponsor's own postings)
	sponsors := protected.Group("/sponsors")
	{
		sponsors.GET("/jobs", handler.ListBySponsor)
	}
}

// SalaryRequest is the embedded salary payload. Amount is decimal to
// keep monetary values exact.
type SalaryRequest struct {
	Amount   decimal.Decimal `json:"amount" binding:"required"`
	Currency string          `json:"currency" binding:"omitempty,oneof=AED SAR USD EUR GBP KWD QAR BHD OMR"`
	Period   string          `json:"period" binding:"omitempty,oneof=monthly weekly hourly yearly"`
}

func (r SalaryRequest) toDomain() (*domain.Salary, error) {
	salary, err := domain.NewSalary(r.Amount, r.Currency, r.Period)
	if err != nil {
		return nil, err
	}
	return &salary, nil
}

// CreateJobRequest creates a draft posting. Drafts may be incomplete,
// so almost everything is optional; completeness is enforced when the
// sponsor publishes.
type CreateJobRequest struct {
	Title                  string         `json:"title" binding:"omitempty,max=150,no_emoji"`
	Description            string         `json:"description" binding:"omitempty,max=5000"`
	RequiredSkills         []string       `json:"required_skills"`
	RequiredLanguages      []string       `json:"required_languages"`
	ExperienceYears        int            `json:"experience_years" binding:"omitempty,gte=0,max=50"`
	PreferredNationality   string         `json:"preferred_nationality" binding:"omitempty,valid_name"`
	Country                string         `json:"country" binding:"omitempty,valid_name"`
	City                   string         `json:"city" binding:"omitempty,valid_name"`
	ContractDurationMonths *int           `json:"contract_duration_months" binding:"omitempty,gt=0"`
	StartDate              *time.Time     `json:"start_date" binding:"omitempty,future_date"`
	Salary                 *SalaryRequest `json:"salary"`
	Benefits               []string       `json:"benefits"`
	WorkingHours           string         `json:"working_hours" binding:"omitempty,max=200"`
	DaysOff                string         `json:"days_off" binding:"omitempty,max=200"`
	AccommodationType      string         `json:"accommodation_type" binding:"omitempty,oneof=private shared live_out"`
	MaxApplications        int            `json:"max_applications" binding:"omitempty,gt=0"`
}

// Create godoc
// @Summary      Create a job posting
// @Description  Create a draft job posting (Sponsor only)
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Param        job  body      CreateJobRequest  true  "Job JSON"
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      401  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /jobs [post]
// @Security     BearerAuth
func (h *JobHandler) Create(c *gin.Context) {
	if !requireSponsor(c) {
		return
	}

	var req CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(strings.Join(validation.FormatValidationErrors(err), "; ")))
		return
	}

	params := domain.NewJobPostingParams{
		Title:                  req.Title,
		Description:            req.Description,
		RequiredSkills:         req.RequiredSkills,
		RequiredLanguages:      req.RequiredLanguages,
		ExperienceYears:        req.ExperienceYears,
		PreferredNationality:   req.PreferredNationality,
		Location:               domain.Location{Country: req.Country, City: req.City},
		ContractDurationMonths: req.ContractDurationMonths,
		StartDate:              req.StartDate,
		Benefits:               req.Benefits,
		WorkingHours:           req.WorkingHours,
		DaysOff:                req.DaysOff,
		AccommodationType:      req.AccommodationType,
		MaxApplications:        req.MaxApplications,
	}
	if req.Salary != nil {
		salary, err := req.Salary.toDomain()
		if err != nil {
			c.Error(apperror.BadRequest(err.Error()))
			return
		}
		params.Salary = salary
	}

	sponsorID := c.GetString(string(domain.KeyUserID))
	job, err := h.jobUC.CreateJob(c.Request.Context(), sponsorID, params)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "Job posting created", job.Snapshot())
}

// ListOpen godoc
// @Summary      List open job postings
// @Description  Browse open postings with pagination (no auth required)
// @Tags         jobs
// @Produce      json
// @Param        page       query     int  false  "Page number"
// @Param        page_size  query     int  false  "Page size"
// @Success      200        {object}  response.Response
// @Router       /jobs [get]
func (h *JobHandler) ListOpen(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	jobs, total, err := h.jobUC.ListOpenJobs(c.Request.Context(), page, pageSize)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Open job postings", gin.H{
		"jobs":      jobs,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// GetDetails godoc
// @Summary      Get job posting details
// @Tags         jobs
// @Produce      json
// @Param        id   path      string  true  "Job ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /jobs/{id} [get]
func (h *JobHandler) GetDetails(c *gin.Context) {
	job, err := h.jobUC.GetJob(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Job posting details", job.Snapshot())
}

// RecordView godoc
// @Summary      Record a job posting view
// @Description  Bump the posting's view counter
// @Tags         jobs
// @Produce      json
// @Param        id   path      string  true  "Job ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /jobs/{id}/view [post]
func (h *JobHandler) RecordView(c *gin.Context) {
	if err := h.jobUC.RecordJobView(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "View recorded", nil)
}

// SalaryRecommendation godoc
// @Summary      Recommended salary range
// @Description  Suggest a salary band for a country and experience level
// @Tags         jobs
// @Produce      json
// @Param        country           query     string  true   "Country name or ISO code"
// @Param        experience_years  query     int     false  "Required experience in years"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /jobs/salary-recommendation [get]
func (h *JobHandler) SalaryRecommendation(c *gin.Context) {
	country := c.Query("country")
	if country == "" {
		c.Error(apperror.BadRequest("country query parameter is required"))
		return
	}
	years, _ := strconv.Atoi(c.DefaultQuery("experience_years", "0"))

	rng := domain.RecommendedSalaryRange(years, country)
	if rng == nil {
		c.Error(apperror.NotFound("No salary recommendation available for this country"))
		return
	}
	response.Success(c, http.StatusOK, "Recommended salary range", rng)
}

// UpdateJobDetailsRequest carries partial edits. Absent fields stay
// untouched; present fields are applied, empty or not.
type UpdateJobDetailsRequest struct {
	Title                  *string          `json:"title" binding:"omitempty,max=150,no_emoji"`
	Description            *string          `json:"description" binding:"omitempty,max=5000"`
	RequiredSkills         []string         `json:"required_skills"`
	RequiredLanguages      []string         `json:"required_languages"`
	ExperienceYears        *int             `json:"experience_years" binding:"omitempty,gte=0,max=50"`
	PreferredNationality   *string          `json:"preferred_nationality" binding:"omitempty,valid_name"`
	Location               *LocationRequest `json:"location"`
	ContractDurationMonths *int             `json:"contract_duration_months" binding:"omitempty,gt=0"`
	StartDate              *time.Time       `json:"start_date" binding:"omitempty,future_date"`
	WorkingHours           *string          `json:"working_hours" binding:"omitempty,max=200"`
	DaysOff                *string          `json:"days_off" binding:"omitempty,max=200"`
	AccommodationType      *string          `json:"accommodation_type" binding:"omitempty,oneof=private shared live_out"`
}

type LocationRequest struct {
	Country string `json:"country" binding:"omitempty,valid_name"`
	City    string `json:"city" binding:"omitempty,valid_name"`
}

// UpdateDetails godoc
// @Summary      Update job posting details
// @Description  Partially update an editable posting (Sponsor only)
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Param        id   path      string                   true  "Job ID"
// @Param        job  body      UpdateJobDetailsRequest  true  "Fields to update"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /jobs/{id} [put]
// @Security     BearerAuth
func (h *JobHandler) UpdateDetails(c *gin.Context) {
	if !requireSponsor(c) {
		return
	}

	var req UpdateJobDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(strings.Join(validation.FormatValidationErrors(err), "; ")))
		return
	}

	upd := domain.JobPostingUpdate{
		Title:                  req.Title,
		Description:            req.Description,
		RequiredSkills:         req.RequiredSkills,
		RequiredLanguages:      req.RequiredLanguages,
		ExperienceYears:        req.ExperienceYears,
		PreferredNationality:   req.PreferredNationality,
		ContractDurationMonths: req.ContractDurationMonths,
		StartDate:              req.StartDate,
		WorkingHours:           req.WorkingHours,
		DaysOff:                req.DaysOff,
		AccommodationType:      req.AccommodationType,
	}
	if req.Location != nil {
		upd.Location = &domain.Location{Country: req.Location.Country, City: req.Location.City}
	}

	sponsorID := c.GetString(string(domain.KeyUserID))
	job, err := h.jobUC.UpdateJobDetails(c.Request.Context(), sponsorID, c.Param("id"), upd)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Job posting updated", job.Snapshot())
}

type UpdateCompensationRequest struct {
	Salary   *SalaryRequest `json:"salary"`
	Benefits []string       `json:"benefits"`
}

// UpdateCompensation godoc
// @Summary      Update job compensation
// @Description  Update salary and benefits of an editable posting (Sponsor only)
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Param        id    path      string                     true  "Job ID"
// @Param        body  body      UpdateCompensationRequest  true  "Compensation"
// @Success      200   {object}  response.Response
// @Failure      400   {object}  response.Response
// @Failure      403   {object}  response.Response
// @Router       /jobs/{id}/compensation [put]
// @Security     BearerAuth
func (h *JobHandler) UpdateCompensation(c *gin.Context) {
	if !requireSponsor(c) {
		return
	}

	var req UpdateCompensationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(strings.Join(validation.FormatValidationErrors(err), "; ")))
		return
	}

	var salary *domain.Salary
	if req.Salary != nil {
		s, err := req.Salary.toDomain()
		if err != nil {
			c.Error(apperror.BadRequest(err.Error()))
			return
		}
		salary = s
	}

	sponsorID := c.GetString(string(domain.KeyUserID))
	job, err := h.jobUC.UpdateJobCompensation(c.Request.Context(), sponsorID, c.Param("id"), salary, req.Benefits)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Compensation updated", job.Snapshot())
}

type PublishJobRequest struct {
	ExpiryDays int `json:"expiry_days" binding:"omitempty,gt=0,max=90"`
}

// Publish godoc
// @Summary      Publish a job posting
// @Description  Take a complete draft live (Sponsor only)
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Param        id    path      string             true   "Job ID"
// @Param        body  body      PublishJobRequest  false  "Publish options"
// @Success      200   {object}  response.Response
// @Failure      400   {object}  response.Response
// @Failure      403   {object}  response.Response
// @Failure      409   {object}  response.Response
// @Router       /jobs/{id}/publish [post]
// @Security     BearerAuth
func (h *JobHandler) Publish(c *gin.Context) {
	if !requireSponsor(c) {
		return
	}

	var req PublishJobRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.Error(apperror.BadRequest(strings.Join(validation.FormatValidationErrors(err), "; ")))
		return
	}

	sponsorID := c.GetString(string(domain.KeyUserID))
	job, err := h.jobUC.PublishJob(c.Request.Context(), sponsorID, c.Param("id"), req.ExpiryDays)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Job posting published", job.Snapshot())
}

type ReasonRequest struct {
	Reason string `json:"reason" binding:"omitempty,max=500"`
}

// Close godoc
// @Summary      Close a job posting
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Param        id    path      string         true   "Job ID"
// @Param        body  body      ReasonRequest  false  "Close reason"
// @Success      200   {object}  response.Response
// @Failure      403   {object}  response.Response
// @Failure      409   {object}  response.Response
// @Router       /jobs/{id}/close [post]
// @Security     BearerAuth
func (h *JobHandler) Close(c *gin.Context) {
	if !requireSponsor(c) {
		return
	}

	var req ReasonRequest
	_ = c.ShouldBindJSON(&req)

	sponsorID := c.GetString(string(domain.KeyUserID))
	if err := h.jobUC.CloseJob(c.Request.Context(), sponsorID, c.Param("id"), req.Reason); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Job posting closed", nil)
}

// Cancel godoc
// @Summary      Cancel a job posting
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Param        id    path      string         true   "Job ID"
// @Param        body  body      ReasonRequest  false  "Cancel reason"
// @Success      200   {object}  response.Response
// @Failure      403   {object}  response.Response
// @Failure      409   {object}  response.Response
// @Router       /jobs/{id}/cancel [post]
// @Security     BearerAuth
func (h *JobHandler) Cancel(c *gin.Context) {
	if !requireSponsor(c) {
		return
	}

	var req ReasonRequest
	_ = c.ShouldBindJSON(&req)

	sponsorID := c.GetString(string(domain.KeyUserID))
	if err := h.jobUC.CancelJob(c.Request.Context(), sponsorID, c.Param("id"), req.Reason); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Job posting cancelled", nil)
}

type MarkFilledRequest struct {
	MaidID     string `json:"maid_id" binding:"required"`
	ContractID string `json:"contract_id"`
}

// MarkFilled godoc
// @Summary      Mark a job posting as filled
// @Description  Record the hire that fills the posting (Sponsor only)
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Param        id    path      string             true  "Job ID"
// @Param        body  body      MarkFilledRequest  true  "Hire details"
// @Success      200   {object}  response.Response
// @Failure      400   {object}  response.Response
// @Failure      403   {object}  response.Response
// @Failure      409   {object}  response.Response
// @Router       /jobs/{id}/fill [post]
// @Security     BearerAuth
func (h *JobHandler) MarkFilled(c *gin.Context) {
	if !requireSponsor(c) {
		return
	}

	var req MarkFilledRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(strings.Join(validation.FormatValidationErrors(err), "; ")))
		return
	}

	sponsorID := c.GetString(string(domain.KeyUserID))
	if err := h.jobUC.MarkJobFilled(c.Request.Context(), sponsorID, c.Param("id"), req.MaidID, req.ContractID); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Job posting filled", nil)
}

// ListBySponsor godoc
// @Summary      List own job postings
// @Description  All of the sponsor's postings in any status
// @Tags         jobs
// @Produce      json
// @Param        page       query     int  false  "Page number"
// @Param        page_size  query     int  false  "Page size"
// @Success      200        {object}  response.Response
// @Router       /sponsors/jobs [get]
// @Security     BearerAuth
func (h *JobHandler) ListBySponsor(c *gin.Context) {
	if !requireSponsor(c) {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	sponsorID := c.GetString(string(domain.KeyUserID))
	jobs, total, err := h.jobUC.ListJobsBySponsor(c.Request.Context(), sponsorID, page, pageSize)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Your job postings", gin.H{
		"jobs":      jobs,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// requireSponsor aborts with 403 unless the caller is a sponsor or an
// admin acting on their behalf.
func requireSponsor(c *gin.Context) bool {
	role := c.GetString(string(domain.KeyUserRole))
	if role != domain.RoleSponsor && role != domain.RoleAdmin {
		c.Error(apperror.Forbidden("Only sponsors can manage job postings"))
		return false
	}
	return true
}
