package auth

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/abhisek/edulearn/internal/api"
)

// MinPasswordLength is the shortest password accepted for new passwords.
const MinPasswordLength = 8

// LoginForm is the sign-in form.
type LoginForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterForm is the sign-up form.
type RegisterForm struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// ForgotForm requests a password reset email.
type ForgotForm struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetForm sets a new password from an emailed token.
type ResetForm struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
	Confirm  string `json:"confirm" validate:"required,eqfield=Password"`
}

// FieldError is one failed form rule.
type FieldError struct {
	Field  string
	Reason string
}

// ValidationError lists every problem with a form.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Reason
	}
	return strings.Join(msgs, "; ")
}

// For returns the reason attached to field, if any.
func (e *ValidationError) For(field string) string {
	for _, f := range e.Fields {
		if f.Field == field {
			return f.Reason
		}
	}
	return ""
}

// IsValidation reports whether err is a form validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterStructValidation(questionDraftRules, api.QuestionDraft{})
	return v
}

// questionDraftRules requires the correct option to be one of the options.
func questionDraftRules(sl validator.StructLevel) {
	q := sl.Current().Interface().(api.QuestionDraft)
	if len(q.Options) > 0 && q.CorrectOptionIndex >= len(q.Options) {
		sl.ReportError(q.CorrectOptionIndex, "correctOptionIndex", "CorrectOptionIndex", "option_index", "")
	}
}

// Normalize trims and lowercases the email.
func (f *LoginForm) Normalize() {
	f.Email = normalizeEmail(f.Email)
}

// Normalize trims the name and email and lowercases the email.
func (f *RegisterForm) Normalize() {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = normalizeEmail(f.Email)
}

// Normalize trims and lowercases the email.
func (f *ForgotForm) Normalize() {
	f.Email = normalizeEmail(f.Email)
}

// Normalize trims the token.
func (f *ResetForm) Normalize() {
	f.Token = strings.TrimSpace(f.Token)
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Validate checks a form struct and returns *ValidationError on failure.
func Validate(form any) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{Field: fieldPath(fe), Reason: reason(fe)})
	}
	return out
}

// fieldPath is the field's namespace without the form name, e.g.
// "email" or "questions[0].options".
func fieldPath(fe validator.FieldError) string {
	if _, path, ok := strings.Cut(fe.Namespace(), "."); ok {
		return path
	}
	return fe.Field()
}

func reason(fe validator.FieldError) string {
	label := fieldLabel(fieldPath(fe))
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", label)
	case "email":
		return "Enter a valid email address"
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s needs at least %s", label, entries(fe.Param()))
		}
		return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", label, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", label, fe.Param())
	case "eqfield":
		return "Passwords do not match"
	case "option_index":
		return fmt.Sprintf("%s must be one of the options", label)
	}
	return fmt.Sprintf("%s is invalid", label)
}

func entries(n string) string {
	if n == "1" {
		return "1 entry"
	}
	return n + " entries"
}

func fieldLabel(field string) string {
	if rest, ok := strings.CutPrefix(field, "questions["); ok {
		n, part, _ := strings.Cut(rest, "]")
		i, _ := strconv.Atoi(n)
		return strings.TrimSpace(fmt.Sprintf("Question %d %s", i+1, questionPart(strings.TrimPrefix(part, "."))))
	}
	switch field {
	case "confirm":
		return "Confirm password"
	case "token":
		return "Reset token"
	case "passingScore":
		return "Passing score"
	}
	if field == "" {
		return "Field"
	}
	return strings.ToUpper(field[:1]) + field[1:]
}

func questionPart(part string) string {
	if rest, ok := strings.CutPrefix(part, "options["); ok {
		n, _, _ := strings.Cut(rest, "]")
		i, _ := strconv.Atoi(n)
		return fmt.Sprintf("option %d", i+1)
	}
	switch part {
	case "questionText":
		return "text"
	case "correctOptionIndex":
		return "correct option"
	}
	return part
}
