package dto

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/domain"
)

// DateLayout formato de fechas calendario en la API (recepción, vencimiento, corte).
const DateLayout = "2006-01-02"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Reportar el nombre JSON del campo en lugar del nombre Go.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate valida las etiquetas `validate` del DTO. Cualquier falla se reporta como
// domain.ErrInvalidInput indicando el primer campo inválido.
func Validate(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Errorf("%w: campo %s no cumple %q", domain.ErrInvalidInput, fe.Namespace(), fe.Tag())
	}
	return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
}

// ParseDate interpreta una fecha YYYY-MM-DD como medianoche UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: fecha %q", domain.ErrInvalidInput, s)
	}
	return t, nil
}

// ParseOptionalDate igual que ParseDate pero una cadena vacía devuelve nil.
func ParseOptionalDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// FormatDate formatea una fecha calendario; nil devuelve nil.
func FormatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(DateLayout)
	return &s
}
