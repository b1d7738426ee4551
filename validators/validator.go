package validators

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	panRegex   = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)
	emailRegex = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)
)

// DateLayouts are the accepted date formats for date of birth fields.
var DateLayouts = []string{"2006-01-02", time.RFC3339}

var (
	validate *validator.Validate
	trans    ut.Translator
)

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// Report JSON / form names instead of Go field names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form", "query"} {
			name, _, _ := strings.Cut(fld.Tag.Get(tag), ",")
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})

	english := en.New()
	trans, _ = ut.New(english, english).GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		panic(err)
	}

	register("digits", digits, "{0} must be exactly {1} digits")
	register("pastdate", pastDate, "{0} must be a valid date in the past (YYYY-MM-DD)")
	register("accepted", accepted, "{0} must be accepted")
	register("pan", pan, "{0} must be a valid PAN number (e.g. ABCDE1234F)")
	register("emailpattern", emailPattern, "{0} must be a valid email address")
}

func register(tag string, fn validator.Func, message string) {
	if err := validate.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
	err := validate.RegisterTranslation(tag, trans,
		func(t ut.Translator) error {
			return t.Add(tag, message, true)
		},
		func(t ut.Translator, fe validator.FieldError) string {
			msg, _ := t.T(tag, fe.Field(), fe.Param())
			return msg
		},
	)
	if err != nil {
		panic(err)
	}
}

// Struct validates v and returns every violation keyed by field name, or nil.
func Struct(v interface{}) map[string]string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"general": err.Error()}
	}

	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, seen := out[fe.Field()]; !seen {
			out[fe.Field()] = fe.Translate(trans)
		}
	}
	return out
}

// ParseDate parses a date in one of DateLayouts.
func ParseDate(value string) (time.Time, error) {
	var err error
	for _, layout := range DateLayouts {
		var t time.Time
		if t, err = time.Parse(layout, strings.TrimSpace(value)); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

// IsTrue reports whether a form value spells boolean true.
func IsTrue(value string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(value))
	return err == nil && b
}

// FormBool is a boolean that arrives either as a JSON boolean or as text
// ("true", "false", "1", "0"). It stays text so that the boolean and
// accepted tags report bad values as field errors.
type FormBool string

func (b *FormBool) UnmarshalJSON(data []byte) error {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case nil:
		*b = ""
	case bool:
		*b = FormBool(strconv.FormatBool(value))
	case string:
		*b = FormBool(strings.TrimSpace(value))
	case float64:
		*b = FormBool(strconv.FormatFloat(value, 'f', -1, 64))
	default:
		return fmt.Errorf("invalid boolean value %s", data)
	}
	return nil
}

func (b *FormBool) UnmarshalText(text []byte) error {
	*b = FormBool(strings.TrimSpace(string(text)))
	return nil
}

// Bool reports whether the value spells true.
func (b FormBool) Bool() bool {
	return IsTrue(string(b))
}

func digits(fl validator.FieldLevel) bool {
	n, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	value := fl.Field().String()
	if len(value) != n {
		return false
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func pastDate(fl validator.FieldLevel) bool {
	t, err := ParseDate(fl.Field().String())
	return err == nil && t.Before(time.Now())
}

func accepted(fl validator.FieldLevel) bool {
	field := fl.Field()
	switch field.Kind() {
	case reflect.Bool:
		return field.Bool()
	case reflect.String:
		return IsTrue(field.String())
	}
	return false
}

func pan(fl validator.FieldLevel) bool {
	return panRegex.MatchString(fl.Field().String())
}

func emailPattern(fl validator.FieldLevel) bool {
	return emailRegex.MatchString(fl.Field().String())
}
