package booking

import (
	"context"
	"errors"

	"github.com/wolfman30/hospital-booking/internal/hospital"
	"github.com/wolfman30/hospital-booking/pkg/logging"
)

// SagaState names a step of the booking sequence.
type SagaState string

const (
	SagaPending             SagaState = "pending"
	SagaCreatingPatient     SagaState = "creating_patient"
	SagaCreatingAppointment SagaState = "creating_appointment"
	SagaSucceeded           SagaState = "succeeded"
	SagaFailed              SagaState = "failed"
)

// Terminal reports whether no further transition can happen.
func (s SagaState) Terminal() bool {
	return s == SagaSucceeded || s == SagaFailed
}

// SagaInput is a validated booking request.
type SagaInput struct {
	Doctor  hospital.Doctor
	Patient hospital.PatientDraft
	Date    string
	Time    string
}

// SagaOutcome describes how a booking sequence ended.
type SagaOutcome struct {
	State SagaState
	// FailedStep is the step that was running when the saga failed.
	FailedStep  SagaState
	Patient     *hospital.Patient
	Appointment *hospital.AppointmentResult
	Err         error
	// OrphanedPatientID is set when the patient was created but the
	// appointment was not. Nothing deletes that record.
	OrphanedPatientID int
}

// Rejection returns the structured server message behind a failure, if any.
func (o SagaOutcome) Rejection() *hospital.ServerRejection {
	var rej *hospital.ServerRejection
	if errors.As(o.Err, &rej) {
		return rej
	}
	return nil
}

// TransitionFunc observes every state change of a saga.
type TransitionFunc func(from, to SagaState)

// Saga runs the dependent patient-then-appointment calls once. The
// appointment call is never made unless the patient call returned an id.
type Saga struct {
	api          API
	logger       *logging.Logger
	state        SagaState
	onTransition TransitionFunc
}

// NewSaga prepares a single booking attempt.
func NewSaga(api API, logger *logging.Logger, onTransition TransitionFunc) *Saga {
	if logger == nil {
		logger = logging.Default()
	}
	return &Saga{api: api, logger: logger, state: SagaPending, onTransition: onTransition}
}

// State returns the current step.
func (s *Saga) State() SagaState { return s.state }

func (s *Saga) transition(to SagaState) {
	from := s.state
	s.state = to
	if s.onTransition != nil {
		s.onTransition(from, to)
	}
}

// Run executes the sequence. It never returns an error; failures are
// described by the outcome.
func (s *Saga) Run(ctx context.Context, in SagaInput) SagaOutcome {
	if s.state != SagaPending {
		return SagaOutcome{State: SagaFailed, FailedStep: s.state, Err: errors.New("booking: saga already ran")}
	}

	s.transition(SagaCreatingPatient)
	patient, err := s.api.CreatePatient(ctx, in.Patient)
	if err == nil && (patient == nil || patient.ID == 0) {
		err = errors.New("booking: patient created without id")
	}
	if err != nil {
		s.logger.Warn("booking: patient creation failed", "doctor_id", in.Doctor.ID, "error", err)
		s.transition(SagaFailed)
		return SagaOutcome{State: SagaFailed, FailedStep: SagaCreatingPatient, Err: err}
	}

	s.transition(SagaCreatingAppointment)
	appt, err := s.api.CreateAppointment(ctx, hospital.AppointmentRequest{
		DoctorID:  in.Doctor.ID,
		PatientID: patient.ID,
		Date:      in.Date,
		Time:      in.Time,
	})
	if err == nil {
		if rej := appt.Rejection(); rej != nil {
			err = rej
		}
	}
	if err != nil {
		s.logger.Warn("booking: appointment creation failed, patient left without appointment",
			"doctor_id", in.Doctor.ID,
			"patient_id", patient.ID,
			"error", err,
		)
		s.transition(SagaFailed)
		return SagaOutcome{
			State:             SagaFailed,
			FailedStep:        SagaCreatingAppointment,
			Patient:           patient,
			Appointment:       appt,
			Err:               err,
			OrphanedPatientID: patient.ID,
		}
	}

	s.transition(SagaSucceeded)
	s.logger.Info("booking: appointment booked", "doctor_id", in.Doctor.ID, "patient_id", patient.ID, "date", in.Date)
	return SagaOutcome{State: SagaSucceeded, Patient: patient, Appointment: appt}
}
