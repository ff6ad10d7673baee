package gateway

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modkit-dev/modkit/pkg/openapi"
)

func TestGateway_HealthEndpoint(t *testing.T) {
	gw := New(Config{Title: "widgets", Version: "1.0.0"})

	resp, err := gw.app.Test(httptest.NewRequest(fiber.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestGateway_OpenAPIJSONReflectsRegisteredOperations(t *testing.T) {
	gw := New(Config{Title: "widgets", Version: "1.0.0"})
	gw.OpenAPI().Add(openapi.Operation{Method: "GET", Path: "/widgets", Summary: "list widgets"})

	resp, err := gw.app.Test(httptest.NewRequest(fiber.MethodGet, "/openapi.json", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "/widgets")
}

func TestGateway_ReadyFreezesOpenAPI(t *testing.T) {
	gw := New(Config{Title: "widgets", Version: "1.0.0"})
	gw.OpenAPI().Add(openapi.Operation{Method: "GET", Path: "/widgets"})

	doc := gw.Ready()
	assert.Contains(t, doc.Paths, "/widgets")
	assert.True(t, gw.OpenAPI().Frozen())

	assert.Panics(t, func() {
		gw.OpenAPI().Add(openapi.Operation{Method: "POST", Path: "/widgets"})
	})
}

func TestGateway_RequestIDIsEchoedOnResponses(t *testing.T) {
	gw := New(Config{Title: "widgets", Version: "1.0.0"})

	resp, err := gw.app.Test(httptest.NewRequest(fiber.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Header.Get(requestIDHeader))
}

func TestGateway_HealthReflectsDegradedModule(t *testing.T) {
	gw := New(Config{Title: "widgets", Version: "1.0.0"})
	gw.SetHealthFunc(func() map[string]ModuleHealth {
		return map[string]ModuleHealth{"widgets": {Status: "unhealthy", Reason: "db down"}}
	})

	resp, err := gw.app.Test(httptest.NewRequest(fiber.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"status":"degraded"`)
}

func TestGateway_RouterIsUsableByRuntimeDeps(t *testing.T) {
	gw := New(Config{Title: "widgets", Version: "1.0.0"})

	var router fiber.Router = gw.Router()
	require.NotNil(t, router)
}
