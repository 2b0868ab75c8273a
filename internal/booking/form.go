package booking

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/wolfman30/hospital-booking/internal/hospital"
)

// User-facing messages.
const (
	MessageIncomplete        = "Please complete all fields."
	MessageUnknownDoctor     = "Please choose a doctor from the list."
	MessageDoctorUnavailable = "This doctor is not available."
	MessageInvalidAge        = "Please enter a valid age."
	MessageInvalidDate       = "Please enter the date as YYYY-MM-DD."
	MessageInvalidTime       = "Please enter the time as HH:MM."
	MessagePatientFailed     = "❌ Could not create the patient record. Please try again."
	MessagePatientRejected   = "❌ Patient details were rejected: %s"
	MessageBookingFailed     = "❌ Failed to book appointment. Please try again."
	MessageDoctorsFailed     = "❌ Could not load doctors. Please try again."
	MessageSubmissionPending = "A booking is already being submitted."

	successTemplate = "✅ Appointment booked with %s on %s at %s for %s"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

var (
	// ErrIncompleteForm means at least one required field is empty.
	ErrIncompleteForm = errors.New("booking: incomplete form")
	// ErrUnknownDoctor means the doctor is not in the last fetched list.
	ErrUnknownDoctor = errors.New("booking: doctor not in list")
	// ErrDoctorUnavailable means the doctor is flagged as not available.
	ErrDoctorUnavailable = errors.New("booking: doctor not available")
	// ErrSubmissionInFlight means a booking is already being submitted.
	ErrSubmissionInFlight = errors.New("booking: submission in flight")
)

// FieldError reports a filled-in field whose value cannot be used.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("booking: invalid %s", e.Field)
}

// Draft is the raw form input, kept as typed by the user.
type Draft struct {
	PatientName  string
	PatientEmail string
	PatientAge   string
	Date         string
	Time         string
}

func (d Draft) complete() bool {
	for _, v := range []string{d.PatientName, d.PatientEmail, d.PatientAge, d.Date, d.Time} {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}

// validate checks the draft and converts it to the API payloads. No network
// call may happen unless it returns nil error.
func (d Draft) validate(doctor *hospital.Doctor) (hospital.PatientDraft, error) {
	if doctor == nil || !d.complete() {
		return hospital.PatientDraft{}, ErrIncompleteForm
	}
	age, err := strconv.Atoi(strings.TrimSpace(d.PatientAge))
	if err != nil || age <= 0 {
		return hospital.PatientDraft{}, &FieldError{Field: "age", Message: MessageInvalidAge}
	}
	if _, err := time.Parse(dateLayout, strings.TrimSpace(d.Date)); err != nil {
		return hospital.PatientDraft{}, &FieldError{Field: "date", Message: MessageInvalidDate}
	}
	if _, err := time.Parse(timeLayout, strings.TrimSpace(d.Time)); err != nil {
		return hospital.PatientDraft{}, &FieldError{Field: "time", Message: MessageInvalidTime}
	}
	return hospital.PatientDraft{
		Name:  d.PatientName,
		Email: strings.TrimSpace(d.PatientEmail),
		Age:   age,
	}, nil
}

// validationMessage maps a validate error to its user-facing text.
func validationMessage(err error) string {
	var fieldErr *FieldError
	switch {
	case errors.As(err, &fieldErr):
		return fieldErr.Message
	case errors.Is(err, ErrUnknownDoctor):
		return MessageUnknownDoctor
	default:
		return MessageIncomplete
	}
}

// SelectionMessage maps a Select error to its user-facing text.
func SelectionMessage(err error) string {
	switch {
	case errors.Is(err, ErrDoctorUnavailable):
		return MessageDoctorUnavailable
	case errors.Is(err, ErrSubmissionInFlight):
		return MessageSubmissionPending
	default:
		return MessageUnknownDoctor
	}
}

// SuccessMessage renders the confirmation for a booked appointment.
func SuccessMessage(doctorName, date, clock, patientName string) string {
	return fmt.Sprintf(successTemplate, doctorTitle(doctorName), date, clock, patientName)
}

// doctorTitle prefixes "Dr." unless the name already carries it.
func doctorTitle(name string) string {
	name = strings.TrimSpace(name)
	lower := strings.ToLower(name)
	if strings.HasPrefix(lower, "dr.") || strings.HasPrefix(lower, "dr ") {
		return name
	}
	return "Dr. " + name
}
