package restop

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modkit-dev/modkit/pkg/openapi"
	"github.com/modkit-dev/modkit/pkg/problem"
)

type createWidgetRequest struct {
	Name string `json:"name" validate:"required"`
}

type widgetResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (w widgetResponse) Location() string { return "/widgets/" + w.ID }

func TestOperation_CreatedWritesLocationAndStatus(t *testing.T) {
	app := fiber.New()
	reg := openapi.New("widgets", "1.0.0")

	op := New[createWidgetRequest, widgetResponse](fiber.MethodPost, "/widgets", "widgets.widgets.create").
		Created().
		Handle(func(r *Request[createWidgetRequest]) (widgetResponse, error) {
			return widgetResponse{ID: "123", Name: r.Body.Name}, nil
		})

	require.NoError(t, op.Register(app, reg, "widgets", nil))

	body := strings.NewReader(`{"name":"acme"}`)
	req := httptest.NewRequest(fiber.MethodPost, "/widgets", body)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, "/widgets/123", resp.Header.Get(fiber.HeaderLocation))

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out widgetResponse
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, "acme", out.Name)
}

func TestOperation_ValidationFailureIsProblemResponse(t *testing.T) {
	app := fiber.New()
	reg := openapi.New("widgets", "1.0.0")

	op := New[createWidgetRequest, widgetResponse](fiber.MethodPost, "/widgets", "widgets.widgets.create").
		Handle(func(r *Request[createWidgetRequest]) (widgetResponse, error) {
			return widgetResponse{}, nil
		})
	require.NoError(t, op.Register(app, reg, "widgets", nil))

	body := strings.NewReader(`{}`)
	req := httptest.NewRequest(fiber.MethodPost, "/widgets", body)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, problem.ContentType, resp.Header.Get(fiber.HeaderContentType))
}

func TestOperation_HandlerErrorBecomesProblem(t *testing.T) {
	app := fiber.New()
	reg := openapi.New("widgets", "1.0.0")

	op := New[struct{}, widgetResponse](fiber.MethodGet, "/widgets/:id", "widgets.widgets.get").
		Handle(func(r *Request[struct{}]) (widgetResponse, error) {
			return widgetResponse{}, problem.NotFound("Widget")
		})
	require.NoError(t, op.Register(app, reg, "widgets", nil))

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/widgets/"+uuid.NewString(), nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestOperation_RequireAuthWithoutAuthorizerFailsRegister(t *testing.T) {
	app := fiber.New()
	reg := openapi.New("widgets", "1.0.0")

	op := New[struct{}, widgetResponse](fiber.MethodGet, "/widgets", "widgets.widgets.list").
		RequireAuth("widgets", "read").
		Handle(func(r *Request[struct{}]) (widgetResponse, error) {
			return widgetResponse{}, nil
		})

	err := op.Register(app, reg, "widgets", nil)
	assert.Error(t, err)
}

func TestOperation_NoHandlerFailsRegister(t *testing.T) {
	app := fiber.New()
	reg := openapi.New("widgets", "1.0.0")

	op := New[struct{}, widgetResponse](fiber.MethodGet, "/widgets", "widgets.widgets.list")
	err := op.Register(app, reg, "widgets", nil)
	assert.Error(t, err)
}

func TestOperation_RegistersIntoOpenAPIDocument(t *testing.T) {
	app := fiber.New()
	reg := openapi.New("widgets", "1.0.0")

	op := New[struct{}, widgetResponse](fiber.MethodGet, "/widgets", "widgets.widgets.list").
		Summary("list widgets").
		Handle(func(r *Request[struct{}]) (widgetResponse, error) {
			return widgetResponse{}, nil
		})
	require.NoError(t, op.Register(app, reg, "widgets", nil))

	doc := reg.Freeze()
	require.Contains(t, doc.Paths, "/widgets")
	assert.Contains(t, doc.Paths["/widgets"], "GET")
}

func TestOperation_NoContentWritesEmptyBody(t *testing.T) {
	app := fiber.New()
	reg := openapi.New("widgets", "1.0.0")

	op := New[struct{}, widgetResponse](fiber.MethodDelete, "/widgets/:id", "widgets.widgets.delete").
		NoContent().
		Handle(func(r *Request[struct{}]) (widgetResponse, error) {
			return widgetResponse{}, nil
		})
	require.NoError(t, op.Register(app, reg, "widgets", nil))

	resp, err := app.Test(httptest.NewRequest(fiber.MethodDelete, "/widgets/"+uuid.NewString(), nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Empty(t, raw)
}
