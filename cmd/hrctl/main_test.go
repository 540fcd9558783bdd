package main

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"go-hr-tracker/config"
	v1 "go-hr-tracker/internal/delivery/http/v1"
	"go-hr-tracker/internal/repository/memory"
	"go-hr-tracker/internal/usecase"
	"go-hr-tracker/pkg/auth"
	"go-hr-tracker/pkg/client"
	"go-hr-tracker/pkg/storage"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestRegisterAndStatusCommands(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	router := v1.NewRouter(v1.RouterDeps{
		CandidateUC:   usecase.NewCandidateUsecase(memory.NewCandidateRepository(), store, nil, usecase.CandidateConfig{}),
		AuthUC:        usecase.NewAuthUsecase(memory.NewAdminAccountRepository(nil), auth.NewTokenIssuer("s", "hr-tracker", 0)),
		TokenVerifier: auth.NewTokenVerifier("s", "hr-tracker", nil),
		Config:        &config.Config{Environment: "test"},
	})
	srv := httptest.NewServer(router)
	defer srv.Close()

	resume := filepath.Join(t.TempDir(), "cv.pdf")
	require.NoError(t, os.WriteFile(resume, []byte("%PDF-1.4\n%%EOF\n"), 0o600))

	out, err := runCLI(t, "register", "--base-url", srv.URL+"/v1", "--json",
		"--name", "Jane Doe", "--email", "jane@example.com", "--dob", "1990-01-31",
		"--experience", "3", "--department", "HR", "--resume", resume)
	require.NoError(t, err)

	var created map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &created))
	id := created["id"]
	require.NotEmpty(t, id)

	out, err = runCLI(t, "status", "--base-url", srv.URL+"/v1", "--json", id)
	require.NoError(t, err)
	var view client.Candidate
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, "SUBMITTED", view.CurrentStatus)
	assert.Equal(t, "HR", view.Department)

	_, err = runCLI(t, "status", "--base-url", srv.URL+"/v1", "--json", id, "00000000-0000-0000-0000-000000000000")
	assert.True(t, client.IsKind(err, client.KindNotFound))
}
