package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", filepath.Join(home, "missing.toml")}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func apiServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/clientes":
			if r.URL.Query().Get("page") == "2" {
				_, _ = w.Write([]byte(`{"data":[{"id":8,"tipo_cliente":"minorista","nombre":"Pedro Salas","dni":"41234567"}],"links":{},"meta":{"current_page":2,"last_page":2,"per_page":1,"total":2}}`))
				return
			}
			_, _ = w.Write([]byte(`{"data":[{"id":7,"tipo_cliente":"minorista","nombre":"Ana Torres","dni":"47654321"}],"links":{},"meta":{"current_page":1,"last_page":2,"per_page":1,"total":2}}`))
		case "/api/login":
			_, _ = w.Write([]byte(`{"success":true,"data":{"token":"tok-123","user":{"id":2,"nombre":"Rosa Huamán","email":"rosa@bodega.pe","rol":"vendedor"}}}`))
		case "/api/logout":
			w.WriteHeader(http.StatusNoContent)
		default:
			_, _ = w.Write([]byte(`{}`))
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func closedURL(t *testing.T) string {
	t.Helper()
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL + "/api"
	server.Close()
	return url
}

func TestListCommand_Live(t *testing.T) {
	server := apiServer(t)
	out, err := execute(t, "--base-url", server.URL+"/api", "clientes", "list")
	require.NoError(t, err)

	assert.Contains(t, out, "Origen: live")
	assert.Contains(t, out, "Ana Torres")
	assert.NotContains(t, out, "Pedro Salas")
	assert.Contains(t, out, "1 registros (página 1 de 2)")
}

func TestListCommand_AllWalksPages(t *testing.T) {
	server := apiServer(t)
	out, err := execute(t, "--base-url", server.URL+"/api", "clientes", "list", "--all")
	require.NoError(t, err)

	assert.Contains(t, out, "Ana Torres")
	assert.Contains(t, out, "Pedro Salas")
	assert.Contains(t, out, "2 registros")
}

func TestListCommand_AllIgnoredPageParameter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"id":7,"tipo_cliente":"minorista","nombre":"Ana Torres","dni":"47654321"}],"meta":{"current_page":1,"last_page":5,"per_page":1,"total":5}}`))
	}))
	t.Cleanup(server.Close)

	out, err := execute(t, "--base-url", server.URL+"/api", "clientes", "list", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "Origen: live")
	assert.Contains(t, out, "1 registros")
}

func TestListCommand_FallsBackToBundledDataset(t *testing.T) {
	out, err := execute(t, "--base-url", closedURL(t), "clientes", "list")
	require.NoError(t, err)

	assert.Contains(t, out, "Origen: local-fallback")
	assert.Contains(t, out, "Datos locales versión")
	assert.Contains(t, out, "Distribuidora Norte SAC")
	assert.Contains(t, out, "4 registros")
}

func TestProbeCommand(t *testing.T) {
	server := apiServer(t)
	out, err := execute(t, "--base-url", server.URL+"/api", "probe", "--verbose")
	require.NoError(t, err)
	assert.Contains(t, out, "Conectado")
	assert.Contains(t, out, "primary")

	out, err = execute(t, "--base-url", closedURL(t), "probe")
	require.ErrorIs(t, err, errDisconnected)
	assert.Contains(t, out, "Sin conexión con el servidor")
}

func TestLoginAndLogout(t *testing.T) {
	server := apiServer(t)
	home := t.TempDir()
	t.Setenv("HOME", home)

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"--config", filepath.Join(home, "missing.toml"), "--base-url", server.URL + "/api",
		"login", "--email", "rosa@bodega.pe", "--password", "secreto"})
	require.NoError(t, root.ExecuteContext(context.Background()))
	assert.Contains(t, out.String(), "Bienvenido, Rosa Huamán")

	sessionPath := filepath.Join(home, ".config", "bodega", "session.toml")
	data, err := os.ReadFile(sessionPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "tok-123")

	out.Reset()
	root = newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"--config", filepath.Join(home, "missing.toml"), "--base-url", server.URL + "/api", "logout"})
	require.NoError(t, root.ExecuteContext(context.Background()))
	assert.Contains(t, out.String(), "Sesión cerrada.")
	_, err = os.Stat(sessionPath)
	assert.True(t, os.IsNotExist(err))
}

func TestLoginCommand_RequiresFlags(t *testing.T) {
	_, err := execute(t, "login", "--email", "rosa@bodega.pe")
	require.Error(t, err)
}
