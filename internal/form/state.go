package form

import (
	"fmt"
	"strings"

	"github.com/mikey/lead-vetting/internal/core"
)

// Dialog colours
const (
	ColorGreen = "#10b981"
	ColorRed   = "#ef4444"
	ColorAmber = "#f59e0b"
	ColorGray  = "#6b7280"
)

// State is the full record of one form: values, errors, submission flag and dialog
type State struct {
	Fields       Fields        `json:"fields"`
	Errors       FieldErrors   `json:"errors"`
	Submitting   bool          `json:"submitting"`
	ModalVisible bool          `json:"modalVisible"`
	Response     *core.Verdict `json:"response,omitempty"`
}

// NewState returns an empty form
func NewState() *State {
	return &State{Errors: FieldErrors{}}
}

// SetField updates a text field and clears its error
func (s *State) SetField(name, value string) error {
	switch name {
	case FieldFirstName:
		s.Fields.FirstName = value
	case FieldLastName:
		s.Fields.LastName = value
	case FieldCompany:
		s.Fields.Company = value
	case FieldEmail:
		s.Fields.Email = value
	default:
		return fmt.Errorf("unknown form field %q", name)
	}
	s.clearError(name)
	return nil
}

// SetAgreeToTerms updates the terms checkbox and clears its error
func (s *State) SetAgreeToTerms(agree bool) {
	s.Fields.AgreeToTerms = agree
	s.clearError(FieldAgreeToTerms)
}

// CloseModal hides the results dialog. A passed lead resets the form for the next one;
// any other result keeps the values so the user can correct them.
func (s *State) CloseModal() {
	s.ModalVisible = false
	if s.Response != nil && strings.EqualFold(string(s.Response.Result), string(core.ResultPassed)) {
		s.Fields = Fields{}
		s.Errors = FieldErrors{}
	}
	s.Response = nil
}

// show opens the dialog with a verdict
func (s *State) show(v core.Verdict) {
	s.Response = &v
	s.ModalVisible = true
}

func (s *State) clearError(name string) {
	if s.Errors != nil {
		delete(s.Errors, name)
	}
}

// ResultColor returns the badge colour for a result
func ResultColor(result string) string {
	switch core.Result(strings.ToLower(result)) {
	case core.ResultPassed:
		return ColorGreen
	case core.ResultFailed:
		return ColorRed
	case core.ResultVetting:
		return ColorAmber
	default:
		return ColorGray
	}
}

// ConfidenceColor returns the badge colour for a confidence level.
// High confidence reads as alarming, so it is red.
func ConfidenceColor(confidence string) string {
	switch core.Confidence(strings.ToLower(confidence)) {
	case core.ConfidenceHigh:
		return ColorRed
	case core.ConfidenceMedium:
		return ColorAmber
	case core.ConfidenceLow:
		return ColorGreen
	default:
		return ColorGray
	}
}

// Headline returns the dialog's opening sentence for the shown verdict
func Headline(s *State) string {
	name := s.Fields.FirstName + " " + s.Fields.LastName
	if s.Response != nil && strings.EqualFold(string(s.Response.Result), string(core.ResultPassed)) {
		return "Welcome " + name + " to Textellent platform!"
	}
	return "Sorry, " + name + ", we were unable to create an account for you due to the following reason:"
}
