package v1_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"go-hr-tracker/config"
	v1 "go-hr-tracker/internal/delivery/http/v1"
	"go-hr-tracker/internal/domain"
	"go-hr-tracker/internal/repository/memory"
	"go-hr-tracker/internal/usecase"
	"go-hr-tracker/pkg/auth"
	"go-hr-tracker/pkg/storage"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"github.com/xeipuuv/gojsonschema"
)

const (
	testSecret = "router-test-secret"
	testIssuer = "hr-tracker"
)

var pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")

const candidateViewSchema = `{
  "type": "object",
  "required": ["id", "full_name", "email", "date_of_birth", "years_of_experience", "department",
               "department_display", "current_status", "current_status_display",
               "current_status_category", "version", "created_at", "updated_at", "status_changes"],
  "properties": {
    "id": {"type": "string", "format": "uuid"},
    "date_of_birth": {"type": "string", "pattern": "^[0-9]{4}-[0-9]{2}-[0-9]{2}$"},
    "years_of_experience": {"type": "integer", "minimum": 0},
    "department": {"enum": ["IT", "HR", "FINANCE"]},
    "current_status": {"enum": ["SUBMITTED", "UNDER_REVIEW", "INTERVIEW_SCHEDULED", "ACCEPTED", "REJECTED"]},
    "current_status_category": {"enum": ["primary", "info", "warning", "success", "danger", "secondary"]},
    "version": {"type": "integer", "minimum": 1},
    "resume": {
      "type": "object",
      "required": ["filename", "content_type", "size"],
      "not": {"required": ["key"]}
    },
    "status_changes": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["id", "previous_status", "new_status", "new_status_display", "feedback", "admin_user", "created_at"],
        "properties": {
          "previous_status": {"type": ["string", "null"]},
          "new_status": {"type": "string"}
        }
      }
    }
  }
}`

type testServer struct {
	router *gin.Engine
	issuer *auth.TokenIssuer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	hash, err := auth.HashPassword("correct horse")
	require.NoError(t, err)

	issuer := auth.NewTokenIssuer(testSecret, testIssuer, time.Hour)
	cfg := &config.Config{
		Environment:    "test",
		FrontendURL:    "http://localhost:3000",
		MaxUploadBytes: 1 << 20,
	}

	router := v1.NewRouter(v1.RouterDeps{
		CandidateUC: usecase.NewCandidateUsecase(memory.NewCandidateRepository(), store, nil, usecase.CandidateConfig{
			MaxResumeBytes: cfg.MaxUploadBytes,
		}),
		AuthUC: usecase.NewAuthUsecase(memory.NewAdminAccountRepository([]auth.Account{
			{Username: "hr.admin", PasswordHash: hash},
		}), issuer),
		TokenVerifier: auth.NewTokenVerifier(testSecret, testIssuer, nil),
		Config:        cfg,
	})
	return &testServer{router: router, issuer: issuer}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) adminToken(t *testing.T) string {
	t.Helper()
	token, _, err := s.issuer.Issue("hr.admin", domain.RoleAdmin)
	require.NoError(t, err)
	return token
}

func (s *testServer) register(t *testing.T, path string, fields map[string]string, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("resume", filename)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return s.do(req)
}

func validFields(email string) map[string]string {
	return map[string]string{
		"full_name":           "Jane Doe",
		"email":               email,
		"date_of_birth":       "1995-06-15",
		"years_of_experience": "0",
		"department":          "IT",
	}
}

func (s *testServer) registerOK(t *testing.T, email string) string {
	t.Helper()
	w := s.register(t, "/v1/candidates", validFields(email), "cv.pdf", pdfBytes)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := gjson.Get(w.Body.String(), "data.id").String()
	require.NotEmpty(t, id)
	return id
}

func authed(method, path, token string, body []byte) *http.Request {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func TestRegistrationEndpoint(t *testing.T) {
	t.Run("Should create candidate and expose public status", func(t *testing.T) {
		s := newTestServer(t)
		id := s.registerOK(t, "jane@example.com")

		w := s.do(httptest.NewRequest(http.MethodGet, "/v1/candidates/"+id+"/status", nil))
		require.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
		assert.Equal(t, `"1"`, w.Header().Get("ETag"))

		data := gjson.Get(w.Body.String(), "data")
		result, err := gojsonschema.Validate(
			gojsonschema.NewStringLoader(candidateViewSchema),
			gojsonschema.NewStringLoader(data.Raw),
		)
		require.NoError(t, err)
		assert.True(t, result.Valid(), "%v", result.Errors())

		assert.Equal(t, "SUBMITTED", data.Get("current_status").String())
		assert.Equal(t, int64(1), data.Get("status_changes.#").Int())
		assert.Equal(t, "Application submitted successfully.", data.Get("status_changes.0.feedback").String())
	})

	t.Run("Should return identical payloads on repeated reads", func(t *testing.T) {
		s := newTestServer(t)
		id := s.registerOK(t, "repeat@example.com")

		first := s.do(httptest.NewRequest(http.MethodGet, "/v1/candidates/"+id+"/status", nil))
		second := s.do(httptest.NewRequest(http.MethodGet, "/v1/candidates/"+id+"/status", nil))
		assert.Equal(t, first.Body.String(), second.Body.String())
	})

	t.Run("Should report field errors", func(t *testing.T) {
		s := newTestServer(t)
		fields := validFields("not-an-email")
		w := s.register(t, "/v1/candidates", fields, "", nil)

		require.Equal(t, http.StatusBadRequest, w.Code)
		body := w.Body.String()
		assert.False(t, gjson.Get(body, "success").Bool())
		assert.True(t, gjson.Get(body, "error.email").Exists())
		assert.True(t, gjson.Get(body, "error.resume").Exists())
	})

	t.Run("Should reject non-numeric experience", func(t *testing.T) {
		s := newTestServer(t)
		fields := validFields("years@example.com")
		fields["years_of_experience"] = "five"
		w := s.register(t, "/v1/candidates", fields, "cv.pdf", pdfBytes)

		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.True(t, gjson.Get(w.Body.String(), "error.years_of_experience").Exists())
	})

	t.Run("Should reject disguised resume", func(t *testing.T) {
		s := newTestServer(t)
		w := s.register(t, "/v1/candidates", validFields("exe@example.com"), "cv.pdf", []byte("MZ\x90\x00 not a pdf"))

		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.True(t, gjson.Get(w.Body.String(), "error.resume").Exists())
	})

	t.Run("Should reject duplicate email on register alias", func(t *testing.T) {
		s := newTestServer(t)
		s.registerOK(t, "dup@example.com")

		w := s.register(t, "/v1/candidates/register", validFields("DUP@example.com"), "cv.pdf", pdfBytes)
		require.Equal(t, http.StatusConflict, w.Code)
		assert.True(t, gjson.Get(w.Body.String(), "error.email").Exists())
	})

	t.Run("Should reject oversized body", func(t *testing.T) {
		s := newTestServer(t)
		big := append(append([]byte{}, pdfBytes...), bytes.Repeat([]byte("A"), 3<<20)...)
		w := s.register(t, "/v1/candidates", validFields("big@example.com"), "cv.pdf", big)

		assert.Contains(t, []int{http.StatusRequestEntityTooLarge, http.StatusBadRequest}, w.Code)
	})

	t.Run("Should return 404 without data for unknown id", func(t *testing.T) {
		s := newTestServer(t)
		w := s.do(httptest.NewRequest(http.MethodGet, "/v1/candidates/00000000-0000-0000-0000-000000000000/status", nil))

		require.Equal(t, http.StatusNotFound, w.Code)
		assert.False(t, gjson.Get(w.Body.String(), "data").Exists())
	})
}

func TestAdminAuthentication(t *testing.T) {
	t.Run("Should require a token", func(t *testing.T) {
		s := newTestServer(t)
		w := s.do(authed(http.MethodGet, "/v1/admin/candidates", "", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Should reject a forged token", func(t *testing.T) {
		s := newTestServer(t)
		forged, _, err := auth.NewTokenIssuer("other-secret", testIssuer, time.Hour).Issue("mallory", domain.RoleAdmin)
		require.NoError(t, err)

		w := s.do(authed(http.MethodGet, "/v1/admin/candidates", forged, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Should forbid non-admin roles", func(t *testing.T) {
		s := newTestServer(t)
		token, _, err := s.issuer.Issue("viewer", "viewer")
		require.NoError(t, err)

		w := s.do(authed(http.MethodGet, "/v1/admin/candidates", token, nil))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Should log in and use the issued token", func(t *testing.T) {
		s := newTestServer(t)
		body, _ := json.Marshal(map[string]string{"username": "hr.admin", "password": "correct horse"})
		w := s.do(authed(http.MethodPost, "/v1/admin/login", "", body))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		token := gjson.Get(w.Body.String(), "data.token").String()
		require.NotEmpty(t, token)

		w = s.do(authed(http.MethodGet, "/v1/admin/candidates", token, nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Cache-Control"), "no-store")
	})

	t.Run("Should reject bad password", func(t *testing.T) {
		s := newTestServer(t)
		body, _ := json.Marshal(map[string]string{"username": "hr.admin", "password": "wrong"})
		w := s.do(authed(http.MethodPost, "/v1/admin/login", "", body))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestAdminCandidateEndpoints(t *testing.T) {
	t.Run("Should list newest first with paging", func(t *testing.T) {
		s := newTestServer(t)
		for i := 0; i < 3; i++ {
			s.registerOK(t, "list"+strconv.Itoa(i)+"@example.com")
		}
		token := s.adminToken(t)

		w := s.do(authed(http.MethodGet, "/v1/admin/candidates?page=2&page_size=2", token, nil))
		require.Equal(t, http.StatusOK, w.Code)
		body := w.Body.String()
		assert.Equal(t, int64(3), gjson.Get(body, "data.count").Int())
		assert.Equal(t, int64(2), gjson.Get(body, "data.total_pages").Int())
		assert.Equal(t, int64(1), gjson.Get(body, "data.results.#").Int())
		assert.False(t, gjson.Get(body, "data.results.0.email").Exists())
	})

	t.Run("Should reject bad paging input", func(t *testing.T) {
		s := newTestServer(t)
		w := s.do(authed(http.MethodGet, "/v1/admin/candidates?page=abc", s.adminToken(t), nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Should filter by department", func(t *testing.T) {
		s := newTestServer(t)
		s.registerOK(t, "it@example.com")
		fields := validFields("hr@example.com")
		fields["department"] = "HR"
		require.Equal(t, http.StatusCreated, s.register(t, "/v1/candidates", fields, "cv.pdf", pdfBytes).Code)

		w := s.do(authed(http.MethodGet, "/v1/admin/candidates?department=hr", s.adminToken(t), nil))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, int64(1), gjson.Get(w.Body.String(), "data.count").Int())
		assert.Equal(t, "HR", gjson.Get(w.Body.String(), "data.results.0.department").String())
	})

	t.Run("Should update status with optimistic concurrency", func(t *testing.T) {
		s := newTestServer(t)
		id := s.registerOK(t, "flow@example.com")
		token := s.adminToken(t)

		w := s.do(authed(http.MethodGet, "/v1/admin/candidates/"+id, token, nil))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "flow@example.com", gjson.Get(w.Body.String(), "data.email").String())
		etag := w.Header().Get("ETag")

		body, _ := json.Marshal(map[string]string{"status": "REJECTED", "feedback": "Needs more experience"})
		req := authed(http.MethodPut, "/v1/admin/candidates/"+id+"/status", token, body)
		req.Header.Set("If-Match", etag)
		w = s.do(req)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		resp := w.Body.String()
		assert.Equal(t, "REJECTED", gjson.Get(resp, "data.candidate.current_status").String())
		assert.Equal(t, "Status updated to Rejected.", gjson.Get(resp, "data.message").String())
		assert.Equal(t, int64(2), gjson.Get(resp, "data.candidate.status_changes.#").Int())
		assert.Equal(t, "hr.admin", gjson.Get(resp, "data.candidate.status_changes.1.admin_user").String())
		assert.Equal(t, "SUBMITTED", gjson.Get(resp, "data.candidate.status_changes.1.previous_status").String())
		assert.Equal(t, `"2"`, w.Header().Get("ETag"))

		// the stale tag no longer matches
		req = authed(http.MethodPut, "/v1/admin/candidates/"+id+"/status", token, body)
		req.Header.Set("If-Match", etag)
		assert.Equal(t, http.StatusConflict, s.do(req).Code)

		w = s.do(httptest.NewRequest(http.MethodGet, "/v1/candidates/"+id+"/status", nil))
		assert.Equal(t, "Needs more experience", gjson.Get(w.Body.String(), "data.status_changes.1.feedback").String())
	})

	t.Run("Should reject unknown status", func(t *testing.T) {
		s := newTestServer(t)
		id := s.registerOK(t, "bad-status@example.com")
		body, _ := json.Marshal(map[string]string{"status": "HIRED"})

		w := s.do(authed(http.MethodPut, "/v1/admin/candidates/"+id+"/status", s.adminToken(t), body))
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.True(t, gjson.Get(w.Body.String(), "error.status").Exists())
	})

	t.Run("Should download resume as attachment", func(t *testing.T) {
		s := newTestServer(t)
		id := s.registerOK(t, "resume@example.com")

		w := s.do(authed(http.MethodGet, "/v1/admin/candidates/"+id+"/resume", s.adminToken(t), nil))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
		assert.True(t, strings.HasPrefix(w.Header().Get("Content-Disposition"), "attachment;"))
		assert.Equal(t, pdfBytes, w.Body.Bytes())
	})

	t.Run("Should export csv", func(t *testing.T) {
		s := newTestServer(t)
		s.registerOK(t, "export@example.com")

		w := s.do(authed(http.MethodGet, "/v1/admin/candidates/export?format=csv", s.adminToken(t), nil))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Disposition"), ".csv")
		assert.Contains(t, w.Body.String(), "Jane Doe")
	})
}

func TestHealthAndHeaders(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/v1/health", nil)
	req.Header.Set("X-Request-ID", "req-12345678")
	w := s.do(req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "req-12345678", w.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
}
