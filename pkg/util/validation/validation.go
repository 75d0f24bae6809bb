package validation

import (
	"errors"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// Validator checks tagged structs and reports failures as VALIDATION_FAILED
// domain errors with an English message per field.
type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

// New builds a Validator with the default English translations registered.
func New() (*Validator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}
	return &Validator{validate: validate, translator: trans}, nil
}

// MustNew is New for package level wiring where failure is a programming error.
func MustNew() *Validator {
	v, err := New()
	if err != nil {
		panic(err)
	}
	return v
}

// Struct validates v. The first failing field becomes the error message and
// every failing field is listed in the details.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperrors.NewValidationError(err.Error(), nil)
	}

	details := make(map[string]any, len(fieldErrs))
	for _, fe := range fieldErrs {
		details[fe.Field()] = fe.Translate(v.translator)
	}
	return apperrors.NewValidationError(fieldErrs[0].Translate(v.translator), details)
}
