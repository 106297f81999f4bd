package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ar-model-dashboard/models"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "dashboard", cmd.Use)
	assert.Contains(t, cmd.Long, "AR model assets")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"refresh", "verify", "incorrect", "notes", "status", "show", "clear"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	t.Setenv("DASHBOARD_API_URL", "")
	cmd := NewRootCommand()

	apiFlag := cmd.PersistentFlags().Lookup("api-url")
	require.NotNil(t, apiFlag)
	assert.Equal(t, "http://localhost:8080", apiFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	require.NotNil(t, cmd.PersistentFlags().Lookup("cache-file"))
	require.NotNil(t, cmd.PersistentFlags().Lookup("redis-addr"))
}

func TestFormatValidationIntegration(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"--format", "xml", "show"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

// backend records PATCH /variant-update bodies
type backend struct {
	mu      sync.Mutex
	updates []models.VariantUpdateRequest
}

func (b *backend) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/variant-update" {
			http.NotFound(w, r)
			return
		}
		var req models.VariantUpdateRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		b.mu.Lock()
		b.updates = append(b.updates, req)
		b.mu.Unlock()
		w.Write([]byte(`{"ok": true}`))
	})
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVerifyPersistsAndCaches(t *testing.T) {
	b := &backend{}
	server := httptest.NewServer(b.handler(t))
	defer server.Close()
	cacheFile := filepath.Join(t.TempDir(), "statuses.json")
	global := []string{"--api-url", server.URL, "--cache-file", cacheFile}

	_, err := run(t, append(global, "incorrect", "42")...)
	require.NoError(t, err)

	out, err := run(t, append(global, "verify", "42")...)
	require.NoError(t, err)
	assert.Contains(t, out, "verified")

	b.mu.Lock()
	updates := append([]models.VariantUpdateRequest(nil), b.updates...)
	b.mu.Unlock()
	require.Len(t, updates, 2)
	assert.True(t, *updates[1].HumanVerified)
	assert.False(t, *updates[1].ManualIncorrect)

	out, err = run(t, append(global, "--format", "json", "show", "42")...)
	require.NoError(t, err)
	var shown []models.ClientVariantStatus
	require.NoError(t, json.Unmarshal([]byte(out), &shown))
	require.Len(t, shown, 1)
	assert.True(t, shown[0].HumanVerified)
	assert.False(t, shown[0].ManualIncorrect)
}

func TestStatusIsLocalOnly(t *testing.T) {
	b := &backend{}
	server := httptest.NewServer(b.handler(t))
	defer server.Close()
	global := []string{"--api-url", server.URL, "--cache-file", filepath.Join(t.TempDir(), "statuses.json")}

	out, err := run(t, append(global, "status", "7", "ios", "passed")...)
	require.NoError(t, err)
	assert.Contains(t, out, "ios=passed")
	assert.Empty(t, b.updates)

	_, err = run(t, append(global, "status", "7", "windows", "passed")...)
	assert.Error(t, err)
}

func TestNotesAndClear(t *testing.T) {
	b := &backend{}
	server := httptest.NewServer(b.handler(t))
	defer server.Close()
	global := []string{"--api-url", server.URL, "--cache-file", filepath.Join(t.TempDir(), "statuses.json")}

	_, err := run(t, append(global, "notes", "9", "wrong", "scale")...)
	require.NoError(t, err)

	b.mu.Lock()
	require.Len(t, b.updates, 1)
	assert.Equal(t, "wrong scale", *b.updates[0].Notes)
	b.mu.Unlock()

	_, err = run(t, append(global, "clear")...)
	require.NoError(t, err)

	out, err := run(t, append(global, "show")...)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestInvalidVariantID(t *testing.T) {
	_, err := run(t, "--cache-file", filepath.Join(t.TempDir(), "s.json"), "verify", "abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid variant id")
}
