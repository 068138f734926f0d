package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newBackend serves the endpoints the commands use. Only "tok" is a valid
// bearer token.
func newBackend(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "secret1" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"Credenciales incorrectas"}`))
			return
		}
		_, _ = w.Write([]byte(`{"access_token":"tok","token_type":"bearer"}`))
	})
	mux.HandleFunc("POST /api/v1/comprobantes/consultar", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"respuesta":"Tienes 2 comprobantes"}`))
	})
	mux.HandleFunc("GET /api/v1/health", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func setupConfig(t *testing.T, baseURL string) {
	t.Helper()

	viper.Reset()
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	cfgFile = filepath.Join(dir, "config.yaml")
	t.Cleanup(func() { cfgFile = "" })

	content := fmt.Sprintf("api:\n  base_url: %s\nstorage:\n  path: %s\nlogging:\n  level: error\n",
		baseURL, filepath.Join(dir, "session.db"))
	require.NoError(t, os.WriteFile(cfgFile, []byte(content), 0o600))
}

// execute runs one command line against a fresh command tree.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	// Building the tree resets the --config flag variable.
	path := cfgFile
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append(args, "--config", path))

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCommands_SessionLifecycle(t *testing.T) {
	server := newBackend(t)
	setupConfig(t, server.URL+"/api/v1")

	out, err := execute(t, "", "status")
	require.NoError(t, err)
	assert.Contains(t, out, notLoggedIn)

	_, err = execute(t, "", "ask", "hola")
	require.Error(t, err)
	assert.Equal(t, notLoggedIn, errorText(err))

	out, err = execute(t, "secret1\n", "login", "--email", "ana@x.com")
	require.NoError(t, err)
	assert.Contains(t, out, "Sesión iniciada como ana@x.com")

	out, err = execute(t, "", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Sesión activa: ana@x.com")

	out, err = execute(t, "", "ask", "¿cuántos", "comprobantes?")
	require.NoError(t, err)
	assert.Contains(t, out, "Tienes 2 comprobantes")

	out, err = execute(t, "", "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Sesión cerrada")

	out, err = execute(t, "", "status")
	require.NoError(t, err)
	assert.Contains(t, out, notLoggedIn)
}

func TestCommands_LoginRejected(t *testing.T) {
	server := newBackend(t)
	setupConfig(t, server.URL+"/api/v1")

	out, err := execute(t, "wrong1\n", "login", "--email", "ana@x.com")
	require.ErrorIs(t, err, errSilent)
	assert.Contains(t, out, "Credenciales incorrectas")

	out, err = execute(t, "", "status")
	require.NoError(t, err)
	assert.Contains(t, out, notLoggedIn)
}

func TestCommands_FormValidation(t *testing.T) {
	server := newBackend(t)
	setupConfig(t, server.URL+"/api/v1")

	tests := []struct {
		name  string
		stdin string
		args  []string
		want  string
	}{
		{
			name:  "login missing password",
			stdin: "\n",
			args:  []string{"login", "--email", "ana@x.com"},
			want:  "Por favor completa todos los campos",
		},
		{
			name:  "register mismatch",
			stdin: "secret1\nsecret2\n",
			args:  []string{"register", "--name", "Ana", "--email", "ana@x.com"},
			want:  "Las contraseñas no coinciden",
		},
		{
			name:  "register short password",
			stdin: "abc\nabc\n",
			args:  []string{"register", "--name", "Ana", "--email", "ana@x.com"},
			want:  "La contraseña debe tener al menos 6 caracteres",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, tt.stdin, tt.args...)
			require.ErrorIs(t, err, errSilent)
			assert.Contains(t, out, tt.want)
		})
	}
}

func TestCommands_Health(t *testing.T) {
	server := newBackend(t)
	setupConfig(t, server.URL+"/api/v1")

	out, err := execute(t, "", "health", "--attempts", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "ok")
}

func TestCommands_UsesConfigFile(t *testing.T) {
	server := newBackend(t)
	setupConfig(t, server.URL+"/api/v1")
	path := cfgFile

	_, err := execute(t, "", "version")
	require.NoError(t, err)

	assert.Equal(t, path, viper.ConfigFileUsed())
	assert.Equal(t, server.URL+"/api/v1", viper.GetString("api.base_url"))
	assert.Equal(t, "error", viper.GetString("logging.level"))
}

func TestCommands_EnvOverridesNestedKeys(t *testing.T) {
	server := newBackend(t)
	setupConfig(t, "http://unreachable.invalid/api/v1")

	storePath := filepath.Join(t.TempDir(), "env-session.db")
	t.Setenv("FINCHAT_API_BASE_URL", server.URL+"/api/v1")
	t.Setenv("FINCHAT_STORAGE_PATH", storePath)

	out, err := execute(t, "", "health", "--attempts", "1")
	require.NoError(t, err)
	assert.Contains(t, out, server.URL)
	assert.Equal(t, storePath, viper.GetString("storage.path"))
}

func TestCommands_Version(t *testing.T) {
	setupConfig(t, "http://localhost:8000/api/v1")

	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "finchat dev")
}
