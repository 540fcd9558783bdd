package v1

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"go-hr-tracker/internal/delivery/http/response"
	"go-hr-tracker/internal/domain"
	"go-hr-tracker/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type CandidateHandler struct {
	candidateUC domain.CandidateUsecase
}

func NewCandidateHandler(r *gin.RouterGroup, candidateUC domain.CandidateUsecase, uploadGuards ...gin.HandlerFunc) {
	handler := &CandidateHandler{candidateUC: candidateUC}

	register := append(append([]gin.HandlerFunc{}, uploadGuards...), handler.Register)

	candidates := r.Group("/candidates")
	{
		candidates.POST("", register...)
		candidates.POST("/register", register...)
		candidates.GET("/:id/status", handler.GetStatus)
	}
}

type registrationResponse struct {
	ID string `json:"id"`
}

// Register godoc
// @Summary      Submit a registration
// @Description  Public applicant form. Creates a candidate in SUBMITTED status with its first history entry.
// @Tags         candidates
// @Accept       multipart/form-data
// @Produce      json
// @Param        full_name            formData  string  true  "Full name"
// @Param        email                formData  string  true  "E-mail address"
// @Param        date_of_birth        formData  string  true  "Date of birth (YYYY-MM-DD)"
// @Param        years_of_experience  formData  int     true  "Years of experience"
// @Param        department           formData  string  true  "Department (IT, HR, FINANCE)"
// @Param        resume               formData  file    true  "Resume (PDF or DOCX)"
// @Success      201  {object}  response.Response{data=registrationResponse}
// @Failure      400  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Failure      413  {object}  response.Response
// @Failure      429  {object}  response.Response
// @Router       /candidates [post]
func (h *CandidateHandler) Register(c *gin.Context) {
	input, err := bindRegistration(c)
	if err != nil {
		c.Error(err)
		return
	}

	var resume io.Reader = strings.NewReader("")
	if fh, ferr := c.FormFile("resume"); ferr == nil {
		f, oerr := fh.Open()
		if oerr != nil {
			c.Error(apperror.BadRequest("Could not read the uploaded file."))
			return
		}
		defer f.Close()
		resume = f
		input.Resume = &domain.ResumeUpload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
		}
	}

	id, err := h.candidateUC.SubmitRegistration(c, input, resume)
	if err != nil {
		c.Error(err)
		return
	}

	c.Header("Location", "/v1/candidates/"+id+"/status")
	response.Success(c, http.StatusCreated, "Application submitted successfully.", registrationResponse{ID: id})
}

// bindRegistration reads the multipart fields. years_of_experience is parsed
// here so a non-numeric value reports on its own field.
func bindRegistration(c *gin.Context) (domain.RegistrationInput, error) {
	if err := c.Request.ParseMultipartForm(1 << 20); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return domain.RegistrationInput{}, apperror.New(http.StatusRequestEntityTooLarge, "The submitted form is too large.", nil)
		}
		return domain.RegistrationInput{}, apperror.BadRequest("Malformed form data.")
	}

	input := domain.RegistrationInput{
		FullName:    c.PostForm("full_name"),
		Email:       c.PostForm("email"),
		DateOfBirth: c.PostForm("date_of_birth"),
		Department:  c.PostForm("department"),
	}
	if raw := strings.TrimSpace(c.PostForm("years_of_experience")); raw != "" {
		years, err := strconv.Atoi(raw)
		if err != nil {
			return input, apperror.Validation("Please correct the highlighted fields.", map[string]string{
				"years_of_experience": "A valid integer is required.",
			})
		}
		input.YearsOfExperience = &years
	}
	return input, nil
}

// GetStatus godoc
// @Summary      Get application status
// @Description  Public status page for a registration, including its full status history (oldest first).
// @Tags         candidates
// @Produce      json
// @Param        id   path      string  true  "Candidate ID"
// @Success      200  {object}  response.Response{data=domain.CandidateView}
// @Failure      404  {object}  response.Response
// @Router       /candidates/{id}/status [get]
func (h *CandidateHandler) GetStatus(c *gin.Context) {
	view, err := h.candidateUC.FetchStatus(c, c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	setETag(c, view.Version)
	response.Success(c, http.StatusOK, "Candidate status", view)
}

func setETag(c *gin.Context, version int64) {
	c.Header("ETag", `"`+strconv.FormatInt(version, 10)+`"`)
}
