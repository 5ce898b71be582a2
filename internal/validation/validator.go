package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/rajac/admission-portal/internal/dto"
	appErrors "github.com/rajac/admission-portal/pkg/errors"
)

const (
	latinNameTag   = "latin_name"
	arabicNameTag  = "arabic_name"
	phoneTag       = "eg_phone"
	emailTag       = "simple_email"
	studentAgeTag  = "student_age"
	guardianAgeTag = "guardian_age"
)

var (
	latinNameRegex  = regexp.MustCompile(`^[a-zA-Z\s]+$`)
	arabicNameRegex = regexp.MustCompile(`^[\x{0600}-\x{06FF}\s]+$`)
	phoneRegex      = regexp.MustCompile(`^(\+20|0)?1[0125][0-9]{8}$`)
	emailRegex      = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// Age bounds, inclusive.
const (
	StudentMinAge  = 3
	StudentMaxAge  = 18
	GuardianMinAge = 18
	GuardianMaxAge = 100
)

// labels gives the human name used in messages, keyed by JSON field.
var labels = map[string]string{
	"studentFirstName": "First name",
	"studentLastName":  "Last name",
	"studentNameAr":    "Arabic name",
	"dob":              "Date of birth",
	"religion":         "Religion",
	"citizenship":      "Citizenship",
	"secondLang":       "Second language",
	"address":          "Address",
	"school":           "School name",
	"grade":            "Grade",
	"prevSchool":       "Previous school",
	"scholarNotes":     "Notes",
	"name":             "Name",
	"phone":            "Phone number",
	"email":            "Email",
	"degree":           "Degree",
	"work":             "Occupation",
	"business":         "Business address",
	"password":         "Password",
}

func label(field string) string {
	if l, ok := labels[field]; ok {
		return l
	}
	for _, prefix := range []string{"father", "mother"} {
		if rest, ok := strings.CutPrefix(field, prefix); ok && rest != "" {
			key := strings.ToLower(rest[:1]) + rest[1:]
			if l, ok := labels[key]; ok {
				return l
			}
		}
	}
	return field
}

// Violation is one failed rule at a field path.
type Violation struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// String renders "path: message".
func (v Violation) String() string {
	return v.Path + ": " + v.Message
}

// Result holds either the typed form or the list of violations.
type Result struct {
	Form       *dto.AdmissionFormRequest
	Violations []Violation
}

// OK reports whether validation passed.
func (r Result) OK() bool {
	return len(r.Violations) == 0 && r.Form != nil
}

// Messages renders every violation as "path: message".
func (r Result) Messages() []string {
	out := make([]string, 0, len(r.Violations))
	for _, v := range r.Violations {
		out = append(out, v.String())
	}
	return out
}

// Err converts a failed result into a VALIDATION_ERROR carrying the messages.
func (r Result) Err() error {
	if r.OK() {
		return nil
	}
	return ViolationsError(r.Violations)
}

// ViolationsError wraps violations into the typed validation error.
func ViolationsError(violations []Violation) error {
	messages := make([]string, 0, len(violations))
	for _, v := range violations {
		messages = append(messages, v.String())
	}
	msg := appErrors.ErrValidation.Message
	if len(messages) > 0 {
		msg = messages[0]
	}
	return appErrors.WithDetails(appErrors.Clone(appErrors.ErrValidation, msg), messages)
}

// Option configures a Validator.
type Option func(*Validator)

// WithClock overrides the time source used for age rules.
func WithClock(now func() time.Time) Option {
	return func(v *Validator) {
		if now != nil {
			v.now = now
		}
	}
}

type formField struct {
	index    int
	name     string
	optional bool
}

// Validator checks admission payloads and request DTOs.
type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
	now        func() time.Time
	fields     []formField
}

// New builds a Validator with the portal rules and English messages registered.
func New(opts ...Option) *Validator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")

	v := &Validator{
		validate:   validator.New(),
		translator: translator,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}

	_ = en_translations.RegisterDefaultTranslations(v.validate, translator)
	v.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.validate.RegisterValidation(latinNameTag, regexValidation(latinNameRegex))
	_ = v.validate.RegisterValidation(arabicNameTag, regexValidation(arabicNameRegex))
	_ = v.validate.RegisterValidation(phoneTag, regexValidation(phoneRegex))
	_ = v.validate.RegisterValidation(emailTag, func(fl validator.FieldLevel) bool {
		return IsValidEmail(fl.Field().String())
	})
	_ = v.validate.RegisterValidation(studentAgeTag, v.ageValidation(StudentMinAge, StudentMaxAge))
	_ = v.validate.RegisterValidation(guardianAgeTag, v.ageValidation(GuardianMinAge, GuardianMaxAge))

	registerLabelled(v.validate, translator, "required", "{0} is required")
	registerLabelled(v.validate, translator, "min", "{0} must be at least {1} characters")
	registerLabelled(v.validate, translator, "max", "{0} must be less than {1} characters")
	registerLabelled(v.validate, translator, latinNameTag, "{0} must contain only English letters")
	registerLabelled(v.validate, translator, arabicNameTag, "{0} must contain only Arabic letters")
	registerFixed(v.validate, translator, phoneTag, "Please enter a valid Egyptian phone number")
	registerFixed(v.validate, translator, emailTag, "Please enter a valid email address")
	registerFixed(v.validate, translator, "email", "Please enter a valid email address")
	_ = v.validate.RegisterTranslation(
		"oneof", translator,
		func(t ut.Translator) error {
			if err := t.Add("oneof", "{0} must be one of [{1}]", true); err != nil {
				return err
			}
			return t.Add("oneof_gender", "Please select Male or Female", true)
		},
		func(t ut.Translator, fe validator.FieldError) string {
			if fe.Field() == "gender" {
				s, _ := t.T("oneof_gender")
				return s
			}
			s, _ := t.T("oneof", label(fe.Field()), fe.Param())
			return s
		},
	)
	registerFixed(v.validate, translator, studentAgeTag, fmt.Sprintf("Student must be between %d and %d years old", StudentMinAge, StudentMaxAge))
	registerFixed(v.validate, translator, guardianAgeTag, fmt.Sprintf("Parent must be between %d and %d years old", GuardianMinAge, GuardianMaxAge))

	v.fields = formFields()
	return v
}

// Engine exposes the underlying validator for services that bind their own DTOs.
func (v *Validator) Engine() *validator.Validate {
	return v.validate
}

// Validate decodes raw JSON and checks it against the admission rules.
func (v *Validator) Validate(raw []byte) Result {
	var payload map[string]interface{}
	if err := json.Unmarshal(raw, &payload); err != nil || payload == nil {
		return Result{Violations: []Violation{{Path: "", Message: "Expected object"}}}
	}
	return v.ValidateMap(payload)
}

// ValidateMap checks an already-decoded payload. Unknown keys are ignored.
func (v *Validator) ValidateMap(payload map[string]interface{}) Result {
	form := &dto.AdmissionFormRequest{}
	target := reflect.ValueOf(form).Elem()

	var violations []Violation
	rejected := make(map[string]bool)
	for _, f := range v.fields {
		raw, present := payload[f.name]
		if !present || raw == nil {
			if !f.optional {
				violations = append(violations, Violation{Path: f.name, Message: "Required"})
				rejected[f.name] = true
			}
			continue
		}
		s, ok := raw.(string)
		if !ok {
			violations = append(violations, Violation{Path: f.name, Message: "Expected string, received " + jsonKind(raw)})
			rejected[f.name] = true
			continue
		}
		target.Field(f.index).SetString(s)
	}

	for _, fv := range v.Struct(form) {
		if !rejected[fv.Path] {
			violations = append(violations, fv)
		}
	}

	if len(violations) > 0 {
		return Result{Violations: violations}
	}
	return Result{Form: form}
}

// Struct validates any tagged struct and returns translated violations.
func (v *Validator) Struct(s interface{}) []Violation {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []Violation{{Path: "", Message: err.Error()}}
	}
	out := make([]Violation, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, Violation{Path: fe.Field(), Message: fe.Translate(v.translator)})
	}
	return out
}

// Age returns the coarse year difference between now and the birth date.
func (v *Validator) Age(dob string) (int, bool) {
	birth, ok := parseDate(dob)
	if !ok {
		return 0, false
	}
	return v.now().Year() - birth.Year(), true
}

func (v *Validator) ageValidation(minAge, maxAge int) validator.Func {
	return func(fl validator.FieldLevel) bool {
		age, ok := v.Age(fl.Field().String())
		return ok && age >= minAge && age <= maxAge
	}
}

func regexValidation(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

var dateLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04:05", "2006/01/02", "01/02/2006"}

func parseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func registerLabelled(validate *validator.Validate, translator ut.Translator, tag, text string) {
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, label(fe.Field()), fe.Param())
			return s
		},
	)
}

func registerFixed(validate *validator.Validate, translator ut.Translator, tag, text string) {
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag)
			return s
		},
	)
}

func formFields() []formField {
	typ := reflect.TypeOf(dto.AdmissionFormRequest{})
	fields := make([]formField, 0, typ.NumField())
	for i := 0; i < typ.NumField(); i++ {
		sf := typ.Field(i)
		name := strings.SplitN(sf.Tag.Get("json"), ",", 2)[0]
		fields = append(fields, formField{
			index:    i,
			name:     name,
			optional: strings.HasPrefix(sf.Tag.Get("validate"), "omitempty"),
		})
	}
	return fields
}

func jsonKind(v interface{}) string {
	switch v.(type) {
	case float64:
		return "number"
	case bool:
		return "boolean"
	case []interface{}:
		return "array"
	case map[string]interface{}:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
