// Package booking drives the appointment booking screen: it holds the form
// state, validates it, runs the patient-then-appointment sequence against the
// hospital API and presents the transient outcome message.
package booking

import (
	"context"

	"github.com/wolfman30/hospital-booking/internal/hospital"
)

// API is the part of the hospital client the booking flow depends on.
// *hospital.Client satisfies it; tests substitute fakes.
type API interface {
	// ListDoctors returns the bookable practitioners.
	ListDoctors(ctx context.Context) ([]hospital.Doctor, error)

	// CreatePatient persists the patient and returns its server id.
	CreatePatient(ctx context.Context, draft hospital.PatientDraft) (*hospital.Patient, error)

	// CreateAppointment books the doctor for an existing patient. The result
	// may carry a structured rejection message despite a success status.
	CreateAppointment(ctx context.Context, req hospital.AppointmentRequest) (*hospital.AppointmentResult, error)
}

var _ API = (*hospital.Client)(nil)
