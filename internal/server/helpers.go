package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"strconv"
	"strings"

	"hrdesk/internal/models"
	"hrdesk/internal/observability"
	"hrdesk/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// errorHandler renders errors that escaped a handler, including fiber's own
// routing and body limit errors, as APIError bodies.
func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code := models.CodeBadRequest
		switch {
		case fe.Code == fiber.StatusNotFound:
			code = models.CodeNotFound
		case fe.Code >= fiber.StatusInternalServerError:
			code = models.CodeInternal
		}
		return c.Status(fe.Code).JSON(models.APIError{
			Status:  strconv.Itoa(fe.Code),
			Code:    code,
			Message: fe.Message,
		})
	}
	observability.GlobalLogger.ErrorContext(c.UserContext(), "unhandled error", "error", err.Error())
	return models.RespondWithError(c, err)
}

// requestContext derives the handler context, bounded by requestTimeout.
func requestContext(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.UserContext(), requestTimeout)
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, models.NewBadRequestError("Invalid "+humanizeParam(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// humanizeParam converts a route param name into a human-readable label.
// Examples: "id" -> "ID", "optionId" -> "option ID".
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	if strings.HasSuffix(param, "Id") {
		return strings.ToLower(param[:len(param)-2]) + " ID"
	}
	return param
}

// parseSubmission reads a user submission from a form, multipart or JSON body.
// Repeated form keys keep their first value.
func parseSubmission(c *fiber.Ctx) (validation.Input, error) {
	values := map[string]string{}
	files := map[string]*multipart.FileHeader{}

	contentType := strings.ToLower(string(c.Request().Header.ContentType()))
	switch {
	case strings.HasPrefix(contentType, fiber.MIMEMultipartForm):
		form, err := c.MultipartForm()
		if err != nil {
			return validation.Input{}, models.NewBadRequestError("Malformed multipart body")
		}
		for k, vs := range form.Value {
			if len(vs) > 0 {
				values[k] = vs[0]
			}
		}
		for k, fhs := range form.File {
			if len(fhs) > 0 {
				files[k] = fhs[0]
			}
		}

	case strings.HasPrefix(contentType, fiber.MIMEApplicationJSON):
		body := c.Body()
		if len(body) == 0 {
			break
		}
		var raw map[string]any
		dec := json.NewDecoder(bytes.NewReader(body))
		dec.UseNumber()
		if err := dec.Decode(&raw); err != nil {
			return validation.Input{}, models.NewBadRequestError("Malformed JSON body")
		}
		for k, v := range raw {
			s, err := scalar(v)
			if err != nil {
				return validation.Input{}, models.NewBadRequestError(fmt.Sprintf("Field %q must be a scalar value", k))
			}
			values[k] = s
		}

	default:
		c.Request().PostArgs().VisitAll(func(key, value []byte) {
			k := string(key)
			if _, seen := values[k]; !seen {
				values[k] = string(value)
			}
		})
	}

	// Form method spoofing marker, not a field.
	delete(values, "_method")

	return validation.NewInput(values, files), nil
}

// scalar renders a decoded JSON value as form text. null counts as empty.
func scalar(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	case json.Number:
		return t.String(), nil
	case bool:
		if t {
			return "1", nil
		}
		return "0", nil
	default:
		return "", fmt.Errorf("unsupported value of type %T", v)
	}
}
