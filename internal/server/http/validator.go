package http

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"chessarbiter/internal/core"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

var validate = validator.New()

// validationMiddleware parses and validates the JSON body of game mutations
// and leaves it in Locals("validatedBody")
func validationMiddleware(c *fiber.Ctx) error {
	if c.Method() != fiber.MethodPost {
		return c.Next()
	}

	path := c.Path()
	var requestType any

	switch {
	case strings.HasSuffix(path, "/games"):
		requestType = &core.CreateGameRequest{}
	case strings.HasSuffix(path, "/select"):
		requestType = &core.SelectRequest{}
	case strings.HasSuffix(path, "/moves"):
		requestType = &core.MoveRequest{}
	case strings.HasSuffix(path, "/promotion"):
		requestType = &core.PromotionRequest{}
	case strings.HasSuffix(path, "/undo"):
		requestType = &core.UndoRequest{}
	default:
		return c.Next() // Bodyless commands
	}

	if errResp := bindAndValidate(c, requestType); errResp != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errResp)
	}

	c.Locals("validatedBody", requestType)
	c.Locals("validated", true)

	return c.Next()
}

// bindAndValidate fills out from the body, when there is one, and checks its
// struct tags
func bindAndValidate(c *fiber.Ctx, out any) *core.ErrorResponse {
	if len(c.Body()) > 0 {
		if err := c.BodyParser(out); err != nil {
			return &core.ErrorResponse{
				Error:   "invalid request body",
				Code:    core.ErrInvalidRequest,
				Details: err.Error(),
			}
		}
	}

	if err := validate.Struct(out); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return &core.ErrorResponse{
				Error: "validation failed",
				Code:  core.ErrInvalidRequest,
			}
		}
		return &core.ErrorResponse{
			Error:   "validation failed",
			Code:    core.ErrInvalidRequest,
			Details: describeValidation(verrs),
		}
	}
	return nil
}

func describeValidation(errs validator.ValidationErrors) string {
	var details strings.Builder
	for _, err := range errs {
		if details.Len() > 0 {
			details.WriteString("; ")
		}
		unit := ""
		if err.Type().Kind() == reflect.String {
			unit = " characters"
		}
		switch err.Tag() {
		case "required":
			fmt.Fprintf(&details, "%s is required", err.Field())
		case "oneof":
			fmt.Fprintf(&details, "%s must be one of [%s]", err.Field(), err.Param())
		case "len":
			fmt.Fprintf(&details, "%s must be exactly %s%s", err.Field(), err.Param(), unit)
		case "min":
			fmt.Fprintf(&details, "%s must be at least %s%s", err.Field(), err.Param(), unit)
		case "max":
			fmt.Fprintf(&details, "%s must be at most %s%s", err.Field(), err.Param(), unit)
		default:
			fmt.Fprintf(&details, "%s failed %s validation", err.Field(), err.Tag())
		}
	}
	return details.String()
}

// validatedBody returns the body stored by validationMiddleware
func validatedBody[T any](c *fiber.Ctx) (T, bool) {
	var zero T
	if validated, ok := c.Locals("validated").(bool); !ok || !validated {
		return zero, false
	}
	body, ok := c.Locals("validatedBody").(*T)
	if !ok || body == nil {
		return zero, false
	}
	return *body, true
}

func isValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
