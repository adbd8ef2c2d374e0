package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/demo-content/pkg/democontent"
	"github.com/tendant/demo-content/pkg/democontent/api"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

// offlineEnv points the CLI at an in-memory store and a catalog without
// remote images.
func offlineEnv(t *testing.T) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"images": []}`), 0o644))
	t.Setenv("DATABASE_URL", "memory")
	t.Setenv("STORAGE_URL", "memory://")
	t.Setenv("CATALOG_PATH", path)
	t.Setenv("ENABLE_EVENT_LOGGING", "false")
	t.Setenv("EVENT_AUDIT_URL", "")
}

func TestImportCommand(t *testing.T) {
	offlineEnv(t)

	out, err := runCommand(t, "import")
	require.NoError(t, err)
	assert.Equal(t, "Imported: 5 pages, 5 posts, 0 images. Menu assigned.\n", out)

	out, err = runCommand(t, "import", "--json")
	require.NoError(t, err)
	var result democontent.ImportResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, 5, result.PagesCreated)
	assert.Equal(t, "primary_navigation", result.MenuLocation)
}

func TestRemoveCommand(t *testing.T) {
	offlineEnv(t)

	out, err := runCommand(t, "remove")
	require.NoError(t, err)
	assert.Equal(t, "Removed 0 demo items (pages, posts, attachments, and menu if created).\n", out)

	out, err = runCommand(t, "remove", "--json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"removed": 0}`, out)
}

func TestMigrateRequiresPostgres(t *testing.T) {
	offlineEnv(t)

	_, err := runCommand(t, "migrate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres")
}

type countingService struct{ removed int }

func (s *countingService) RunImport(ctx context.Context) (democontent.ImportResult, error) {
	return democontent.ImportResult{}, nil
}

func (s *countingService) RemoveDemoContent(ctx context.Context) int {
	s.removed++
	return 3
}

func TestTokenCommand(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := runCommand(t, "token")
	require.Error(t, err)

	t.Setenv("JWT_SECRET", "cli-secret")
	out, err := runCommand(t, "token", "--subject", "ops")
	require.NoError(t, err)
	token := strings.TrimSpace(out)
	assert.Len(t, strings.Split(token, "."), 3)

	service := &countingService{}
	router := api.NewHandler(service, api.NewAuth([]byte("cli-secret"), 0), nil).Routes()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/demo-content/remove", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, service.removed)
}
