package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/jimdaga/gestor/internal/apperr"
	"github.com/jimdaga/gestor/internal/models"
)

func init() {
	// Report field errors under their JSON names
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
	}
}

// BindJSON decodes and validates the request body into dst. All failures
// come back as apperr validation errors.
func BindJSON(c *gin.Context, dst interface{}) error {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return nil
	}
	return TranslateBindError(err)
}

// TranslateBindError converts decoder and validator errors into a field map
func TranslateBindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = messageFor(fe)
		}
		return apperr.ValidationFields("Datos inválidos", fields)
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = "non_field_errors"
		}
		return apperr.Validation(field, fmt.Sprintf("Tipo inválido, se esperaba %s", typeErr.Type.String()))
	}

	var syntaxErr *json.SyntaxError
	switch {
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return apperr.Validation("non_field_errors", "JSON mal formado")
	case errors.Is(err, io.EOF):
		return apperr.Validation("non_field_errors", "Cuerpo de la petición vacío")
	case errors.Is(err, models.ErrInvalidDate):
		return apperr.Validation("fecha", "Formato de fecha inválido, use AAAA-MM-DD")
	}

	return apperr.Validation("non_field_errors", err.Error())
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Este campo es requerido."
	case "email":
		return "Introduzca una dirección de correo electrónico válida."
	case "min":
		return fmt.Sprintf("Debe tener al menos %s caracteres.", fe.Param())
	case "max":
		return fmt.Sprintf("No puede tener más de %s caracteres.", fe.Param())
	case "oneof":
		return fmt.Sprintf("Valor no permitido, opciones: %s.", fe.Param())
	case "gte":
		return fmt.Sprintf("Debe ser >= %s", fe.Param())
	case "gt":
		return fmt.Sprintf("Debe ser > %s", fe.Param())
	case "lt":
		return fmt.Sprintf("Debe ser < %s", fe.Param())
	default:
		return fmt.Sprintf("Valor inválido (%s)", fe.Tag())
	}
}
