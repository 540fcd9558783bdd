package v1

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"go-hr-tracker/internal/delivery/http/response"
	"go-hr-tracker/internal/domain"
	"go-hr-tracker/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	candidateUC domain.CandidateUsecase
}

func NewAdminHandler(r *gin.RouterGroup, candidateUC domain.CandidateUsecase) {
	handler := &AdminHandler{candidateUC: candidateUC}

	candidates := r.Group("/candidates")
	{
		candidates.GET("", handler.ListCandidates)
		candidates.GET("/export", handler.ExportCandidates)
		candidates.GET("/:id", handler.GetCandidate)
		candidates.GET("/:id/resume", handler.DownloadResume)
		candidates.PUT("/:id/status", handler.UpdateStatus)
	}
}

// ListCandidates godoc
// @Summary      List candidates
// @Description  Paginated candidate list, newest first. Repeat department (or pass a comma list) to filter by several.
// @Tags         admin
// @Produce      json
// @Param        page        query  int     false  "Page number (default 1)"
// @Param        page_size   query  int     false  "Items per page (default 10, max 100)"
// @Param        department  query  string  false  "Department filter (IT, HR, FINANCE)"
// @Success      200  {object}  response.Response{data=domain.PaginatedResult[domain.CandidateSummary]}
// @Failure      400  {object}  response.Response
// @Failure      401  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /admin/candidates [get]
// @Security     BearerAuth
func (h *AdminHandler) ListCandidates(c *gin.Context) {
	page, err := queryInt(c, "page")
	if err != nil {
		c.Error(err)
		return
	}
	pageSize, err := queryInt(c, "page_size")
	if err != nil {
		c.Error(err)
		return
	}

	result, err := h.candidateUC.ListCandidates(c, domain.CandidateFilter{
		Page:        page,
		PageSize:    pageSize,
		Departments: departmentFilter(c),
	})
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Candidates retrieved", result)
}

// GetCandidate godoc
// @Summary      Get candidate detail
// @Tags         admin
// @Produce      json
// @Param        id   path      string  true  "Candidate ID"
// @Success      200  {object}  response.Response{data=domain.CandidateView}
// @Failure      401  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /admin/candidates/{id} [get]
// @Security     BearerAuth
func (h *AdminHandler) GetCandidate(c *gin.Context) {
	view, err := h.candidateUC.GetCandidate(c, c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	setETag(c, view.Version)
	response.Success(c, http.StatusOK, "Candidate retrieved", view)
}

type statusUpdateResponse struct {
	Message   string                `json:"message"`
	Candidate *domain.CandidateView `json:"candidate"`
}

// UpdateStatus godoc
// @Summary      Update candidate status
// @Description  Moves the candidate to a new status and appends a history entry attributed to the signed-in admin.
// @Description  Send the last seen version in the body or as If-Match to reject concurrent edits.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id        path    string                    true   "Candidate ID"
// @Param        If-Match  header  string                    false  "Expected version"
// @Param        request   body    domain.UpdateStatusInput  true   "New status"
// @Success      200  {object}  response.Response{data=statusUpdateResponse}
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /admin/candidates/{id}/status [put]
// @Security     BearerAuth
func (h *AdminHandler) UpdateStatus(c *gin.Context) {
	var input domain.UpdateStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.Error(apperror.BadRequest("Invalid request body"))
		return
	}

	if input.ExpectedVersion == 0 {
		version, err := ifMatchVersion(c.GetHeader("If-Match"))
		if err != nil {
			c.Error(err)
			return
		}
		input.ExpectedVersion = version
	}

	view, err := h.candidateUC.UpdateStatus(c, c.Param("id"), input)
	if err != nil {
		c.Error(err)
		return
	}

	message := "Status updated to " + view.CurrentStatusDisplay + "."
	setETag(c, view.Version)
	response.Success(c, http.StatusOK, message, statusUpdateResponse{Message: message, Candidate: view})
}

// DownloadResume godoc
// @Summary      Download resume
// @Tags         admin
// @Produce      application/pdf
// @Produce      application/vnd.openxmlformats-officedocument.wordprocessingml.document
// @Param        id   path  string  true  "Candidate ID"
// @Success      200  {file}    binary
// @Failure      404  {object}  response.Response
// @Router       /admin/candidates/{id}/resume [get]
// @Security     BearerAuth
func (h *AdminHandler) DownloadResume(c *gin.Context) {
	file, err := h.candidateUC.OpenResume(c, c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	defer file.Body.Close()

	headers := map[string]string{
		"Content-Disposition": contentDisposition(file.Filename),
	}
	if file.Size > 0 {
		c.DataFromReader(http.StatusOK, file.Size, file.ContentType, file.Body, headers)
		return
	}
	for k, v := range headers {
		c.Header(k, v)
	}
	c.Status(http.StatusOK)
	c.Header("Content-Type", file.ContentType)
	_, _ = io.Copy(c.Writer, file.Body)
}

// ExportCandidates godoc
// @Summary      Export candidates
// @Tags         admin
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Produce      text/csv
// @Param        format      query  string  false  "xlsx (default) or csv"
// @Param        department  query  string  false  "Department filter"
// @Success      200  {file}    binary
// @Failure      400  {object}  response.Response
// @Router       /admin/candidates/export [get]
// @Security     BearerAuth
func (h *AdminHandler) ExportCandidates(c *gin.Context) {
	file, err := h.candidateUC.ExportCandidates(c, departmentFilter(c), c.Query("format"))
	if err != nil {
		c.Error(err)
		return
	}

	c.Header("Content-Disposition", contentDisposition(file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

func queryInt(c *gin.Context, name string) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperror.Validation("Invalid query parameter", map[string]string{name: "A valid integer is required."})
	}
	return v, nil
}

// departmentFilter accepts ?department=IT&department=HR as well as ?department=IT,HR.
func departmentFilter(c *gin.Context) []domain.Department {
	var out []domain.Department
	for _, raw := range c.QueryArray("department") {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.ToUpper(strings.TrimSpace(part)); part != "" {
				out = append(out, domain.Department(part))
			}
		}
	}
	return out
}

// ifMatchVersion reads an ETag written by setETag. An empty header means no check.
func ifMatchVersion(header string) (int64, error) {
	header = strings.TrimSpace(header)
	if header == "" || header == "*" {
		return 0, nil
	}
	header = strings.TrimPrefix(header, "W/")
	v, err := strconv.ParseInt(strings.Trim(header, `"`), 10, 64)
	if err != nil || v < 1 {
		return 0, apperror.Validation("Invalid If-Match header", map[string]string{"version": "Must be a positive number."})
	}
	return v, nil
}

func contentDisposition(filename string) string {
	if filename == "" {
		filename = "download"
	}
	return `attachment; filename="` + filename + `"`
}
