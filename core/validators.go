package core

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

const requiredText = "this field is required"

var wordsRegex = regexp.MustCompile(`^[\w\s]+$`)

// customTag is a validation tag with its english message.
// A nil fn only overrides the message of a built-in tag.
type customTag struct {
	tag  string
	text string
	fn   validator.Func
}

var customTags = []customTag{
	{
		tag:  "alphanum_",
		text: "only alphanumeric characters and underscores are allowed",
		fn:   func(fl validator.FieldLevel) bool { return wordsRegex.MatchString(fl.Field().String()) },
	},
	{
		tag:  "notblank",
		text: "this field cannot be blank",
		fn:   func(fl validator.FieldLevel) bool { return strings.TrimSpace(fl.Field().String()) != "" },
	},
	{tag: "required", text: requiredText},
	{tag: "required_with", text: requiredText},
}

// NewTranslator returns the english translator used for validation messages.
func NewTranslator() ut.Translator {
	locale := en.New()
	translator, _ := ut.New(locale, locale).GetTranslator("en")
	return translator
}

// jsonFieldName makes validation errors refer to fields by their JSON name.
func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

// InitValidators registers the shared tags and english messages on validate.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = en_translations.RegisterDefaultTranslations(validate, translator)
	validate.RegisterTagNameFunc(jsonFieldName)

	for _, ct := range customTags {
		if ct.fn != nil {
			_ = validate.RegisterValidation(ct.tag, ct.fn)
		}
		RegisterCustomTranslation(validate, translator, ct.tag, ct.text, ct.fn == nil)
	}
}

// RegisterCustomTranslation registers the message of a validation tag.
// With override set, it replaces an existing message.
func RegisterCustomTranslation(validate *validator.Validate, translator ut.Translator, tag, text string, override ...bool) {
	replace := len(override) > 0 && override[0]
	register := func(t ut.Translator) error { return t.Add(tag, text, replace) }
	translate := func(t ut.Translator, fe validator.FieldError) string {
		msg, _ := t.T(tag, fe.Field())
		return msg
	}
	_ = validate.RegisterTranslation(tag, translator, register, translate)
}
