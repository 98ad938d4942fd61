package validator

import (
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
)

// CustomValidator implements echo.Validator using go-playground/validator
type CustomValidator struct {
	v *validator.Validate
}

// New creates a new CustomValidator instance with the application's custom
// rules registered.
func New() *CustomValidator {
	v := validator.New()

	// filename: a bare file name with no path components, for download
	// endpoints that resolve names inside the output directory.
	v.RegisterValidation("filename", func(fl validator.FieldLevel) bool {
		name := fl.Field().String()
		if name == "" || strings.HasPrefix(name, ".") {
			return false
		}
		return name == filepath.Base(name)
	})

	return &CustomValidator{v: v}
}

// Validate performs struct validation
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.v.Struct(i)
}
