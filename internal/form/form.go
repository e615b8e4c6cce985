// Package form models the sign-up form that collects leads: field validation,
// the submission flow and the results dialog.
package form

import (
	"regexp"
	"sort"
	"strings"

	"github.com/mikey/lead-vetting/internal/core"
)

// Field names, as posted by the form
const (
	FieldFirstName    = "firstName"
	FieldLastName     = "lastName"
	FieldCompany      = "company"
	FieldEmail        = "email"
	FieldAgreeToTerms = "agreeToTerms"
)

// Validation messages shown under each field
const (
	MsgFirstNameRequired = "First name is required"
	MsgLastNameRequired  = "Last name is required"
	MsgCompanyRequired   = "Company name is required"
	MsgEmailRequired     = "Business email is required"
	MsgEmailInvalid      = "Please enter a valid email address"
	MsgTermsRequired     = "You must agree to the terms of service"
)

var emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

// Fields holds the values typed into the form
type Fields struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Company      string `json:"company"`
	Email        string `json:"email"`
	AgreeToTerms bool   `json:"agreeToTerms"`
}

// FieldErrors maps a field name to its validation message
type FieldErrors map[string]string

// ValidationError is returned by Submit when the form does not validate
type ValidationError struct {
	Errors FieldErrors
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Errors))
	for name := range e.Errors {
		names = append(names, name)
	}
	sort.Strings(names)
	return "invalid form fields: " + strings.Join(names, ", ")
}

// Validate checks every field and returns the messages for those that fail.
// An empty result means the form can be submitted.
func Validate(f Fields) FieldErrors {
	errs := FieldErrors{}

	if strings.TrimSpace(f.FirstName) == "" {
		errs[FieldFirstName] = MsgFirstNameRequired
	}
	if strings.TrimSpace(f.LastName) == "" {
		errs[FieldLastName] = MsgLastNameRequired
	}
	if strings.TrimSpace(f.Company) == "" {
		errs[FieldCompany] = MsgCompanyRequired
	}

	switch {
	case strings.TrimSpace(f.Email) == "":
		errs[FieldEmail] = MsgEmailRequired
	case !emailPattern.MatchString(f.Email):
		errs[FieldEmail] = MsgEmailInvalid
	}

	if !f.AgreeToTerms {
		errs[FieldAgreeToTerms] = MsgTermsRequired
	}

	return errs
}

// Domain returns the part of the email between the first and second '@'
func (f Fields) Domain() string {
	parts := strings.SplitN(f.Email, "@", 3)
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

// Lead builds the webhook payload for the form values
func (f Fields) Lead() *core.Lead {
	return &core.Lead{
		UserName:    f.FirstName + " " + f.LastName,
		EmailDomain: f.Domain(),
		Company:     f.Company,
		Email:       f.Email,
	}
}
