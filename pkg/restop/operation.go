package restop

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/modkit-dev/modkit/pkg/openapi"
	"github.com/modkit-dev/modkit/pkg/problem"
)

// Handler is the typed function a registered Operation ultimately
// calls, after path/query/body extraction and the auth guard have all
// run (spec §4.3 "Extraction contract").
type Handler[Req, Resp any] func(*Request[Req]) (Resp, error)

// authSpec is the (resource, action) tuple an authorized Operation
// evaluates before calling its handler.
type authSpec struct {
	resource string
	action   string
}

// Operation accumulates one REST endpoint's route, auth, and OpenAPI
// metadata, then wires all three simultaneously in Register (spec
// §4.3 "Contract").
type Operation[Req, Resp any] struct {
	method        string
	path          string
	operationID   string
	summary       string
	tags          []string
	auth          *authSpec
	successStatus int
	location      bool
	errorKinds    []problem.Kind
	handler       Handler[Req, Resp]
}

// New starts building an Operation. operationID follows the
// `<module>.<resource>.<action>` convention spec §3 names for the
// Route Operation record.
func New[Req, Resp any](method, path, operationID string) *Operation[Req, Resp] {
	return &Operation[Req, Resp]{
		method:        strings.ToUpper(method),
		path:          path,
		operationID:   operationID,
		successStatus: fiber.StatusOK,
	}
}

func (op *Operation[Req, Resp]) Summary(s string) *Operation[Req, Resp] {
	op.summary = s
	return op
}

func (op *Operation[Req, Resp]) Tags(tags ...string) *Operation[Req, Resp] {
	op.tags = tags
	return op
}

// RequireAuth marks this operation as requiring a guard evaluating
// (resource, action) against the authorization engine before the
// handler runs.
func (op *Operation[Req, Resp]) RequireAuth(resource, action string) *Operation[Req, Resp] {
	op.auth = &authSpec{resource: resource, action: action}
	return op
}

// OnErrors declares the error Kinds this operation can return, so
// Register can document the matching RFC-9457 Problem responses in the
// OpenAPI document (spec §4.3 point 3).
func (op *Operation[Req, Resp]) OnErrors(kinds ...problem.Kind) *Operation[Req, Resp] {
	op.errorKinds = kinds
	return op
}

// Created marks a 201 success response with a Location header pointing
// at the new resource (spec §4.3 "Response and error conventions").
func (op *Operation[Req, Resp]) Created() *Operation[Req, Resp] {
	op.successStatus = fiber.StatusCreated
	op.location = true
	return op
}

// NoContent marks a 204 success response with no body.
func (op *Operation[Req, Resp]) NoContent() *Operation[Req, Resp] {
	op.successStatus = fiber.StatusNoContent
	return op
}

// Handle sets the typed handler function this operation dispatches to.
func (op *Operation[Req, Resp]) Handle(h Handler[Req, Resp]) *Operation[Req, Resp] {
	op.handler = h
	return op
}

var bodyValidator = validator.New()

// Register wires the operation into app's router, accumulates its
// description into reg, and (if RequireAuth was called) installs the
// authorization guard ahead of the handler — the four simultaneous
// effects spec §4.3 describes. moduleName is used to build stable
// Problem codes for every error path.
func (op *Operation[Req, Resp]) Register(router fiber.Router, reg *openapi.Registry, moduleName string, authz Authorizer) error {
	if op.handler == nil {
		return fmt.Errorf("restop: operation %s has no handler", op.operationID)
	}
	if op.auth != nil && authz == nil {
		return fmt.Errorf("restop: operation %s requires auth but no Authorizer was supplied", op.operationID)
	}

	var handlers []fiber.Handler
	if op.auth != nil {
		handlers = append(handlers, guard(moduleName, op.auth.resource, op.auth.action, authz))
	}
	handlers = append(handlers, op.fiberHandler(moduleName))

	router.Add(op.method, op.path, handlers...)

	reg.Add(op.openapiOperation())
	return nil
}

func (op *Operation[Req, Resp]) fiberHandler(moduleName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		body, err := decodeAndValidate[Req](c)
		if err != nil {
			return problem.WriteError(c, moduleName, problem.Validation(err.Error()))
		}

		sc, _ := securityContextFromFiber(c)

		req := &Request[Req]{
			Ctx:      c.Context(),
			Body:     body,
			Security: sc,
			fiberCtx: c,
		}

		resp, err := op.handler(req)
		if err != nil {
			return problem.WriteError(c, moduleName, err)
		}

		c.Status(op.successStatus)
		if op.location {
			if located, ok := any(resp).(locatable); ok {
				c.Set(fiber.HeaderLocation, located.Location())
			}
		}
		if op.successStatus == fiber.StatusNoContent {
			return nil
		}
		return c.JSON(resp)
	}
}

// locatable lets a response DTO supply its own Location header value
// for a 201 response without restop needing to know its route shape.
type locatable interface{ Location() string }

// decodeAndValidate mirrors the teacher's withBody decode-then-validate
// decorator: unmarshal the body into a Req value, then run struct
// validation tags over it with go-playground/validator.
func decodeAndValidate[Req any](c *fiber.Ctx) (Req, error) {
	var body Req

	if len(c.Body()) > 0 {
		if err := json.Unmarshal(c.Body(), &body); err != nil {
			return body, fmt.Errorf("malformed request body: %w", err)
		}
	}

	v := reflect.ValueOf(body)
	if v.Kind() == reflect.Struct {
		if err := bodyValidator.Struct(body); err != nil {
			var ve validator.ValidationErrors
			if asValidationErrors(err, &ve) {
				return body, fmt.Errorf("validation failed: %s", formatValidationErrors(ve))
			}
			return body, err
		}
	}

	return body, nil
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	ve, ok := err.(validator.ValidationErrors)
	if !ok {
		return false
	}
	*target = ve
	return true
}

func formatValidationErrors(errs validator.ValidationErrors) string {
	parts := make([]string, 0, len(errs))
	for _, fe := range errs {
		parts = append(parts, fmt.Sprintf("%s: failed %q", fe.Field(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}

func (op *Operation[Req, Resp]) openapiOperation() openapi.Operation {
	responses := map[int]openapi.Response{
		op.successStatus: {Description: "success"},
	}
	for _, kind := range op.errorKinds {
		responses[kind.HTTPStatus()] = openapi.Response{Description: string(kind), Body: problem.Problem{}}
	}
	if op.auth != nil {
		responses[fiber.StatusUnauthorized] = openapi.Response{Description: "unauthorized", Body: problem.Problem{}}
		responses[fiber.StatusForbidden] = openapi.Response{Description: "forbidden", Body: problem.Problem{}}
	}

	return openapi.Operation{
		Method:    op.method,
		Path:      op.path,
		Summary:   op.summary,
		Tags:      op.tags,
		Responses: responses,
	}
}
