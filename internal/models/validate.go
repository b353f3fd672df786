package models

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

const DateLayout = "2006-01-02"

const (
	notFutureTag  = "notfuture"
	notFutureText = "{0} can not be in the future"
)

// Now is the clock used by date rules. Tests pin it.
var Now = time.Now

var validate, translator = newValidator()

func newValidator() (*validator.Validate, ut.Translator) {
	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")

	v := validator.New()
	_ = en_translations.RegisterDefaultTranslations(v, trans)

	// field errors carry the json names the API speaks
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation(notFutureTag, notFutureValidation)
	_ = v.RegisterTranslation(
		notFutureTag, trans,
		func(t ut.Translator) error { return t.Add(notFutureTag, notFutureText, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(notFutureTag, fe.Field())
			return s
		},
	)

	return v, trans
}

// notFutureValidation accepts a YYYY-MM-DD date that is not after today.
// Unparseable values are left to the datetime rule.
func notFutureValidation(fl validator.FieldLevel) bool {
	d, err := time.Parse(DateLayout, fl.Field().String())
	if err != nil {
		return true
	}
	now := Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return !d.After(today)
}

func validateStruct(what string, s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("failed to validate %s: %w", what, err)
	}

	fields := make([]FieldError, 0, len(verrs))
	names := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{Field: fe.Field(), Message: fe.Translate(translator)})
		names = append(names, fe.Field())
	}
	return NewValidationError(
		fmt.Errorf("invalid %s: bad %s", what, strings.Join(names, ", ")),
		fields...,
	)
}
