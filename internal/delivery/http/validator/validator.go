// Package validator wires go-playground validation into echo.
package validator

import (
	"net/http"

	govalidator "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// CustomValidator adapts go-playground/validator to echo's Validator interface.
type CustomValidator struct {
	validate *govalidator.Validate
}

// New creates the request validator.
func New() *CustomValidator {
	return &CustomValidator{validate: govalidator.New()}
}

// Validate checks the bound request struct against its validate tags.
func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validate.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return nil
}
