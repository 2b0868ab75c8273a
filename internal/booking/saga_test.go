package booking

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/hospital-booking/internal/hospital"
	"github.com/wolfman30/hospital-booking/pkg/logging"
)

func sagaInput() SagaInput {
	return SagaInput{
		Doctor:  alice,
		Patient: hospital.PatientDraft{Name: "Bob", Email: "b@x.com", Age: 30},
		Date:    "2024-05-01",
		Time:    "09:00",
	}
}

func runSaga(t *testing.T, api *fakeAPI) (SagaOutcome, []SagaState) {
	t.Helper()
	var seen []SagaState
	saga := NewSaga(api, logging.Discard(), func(_, to SagaState) { seen = append(seen, to) })
	return saga.Run(context.Background(), sagaInput()), seen
}

func TestSaga_Success(t *testing.T) {
	api := &fakeAPI{patient: &hospital.Patient{ID: 42}, appointment: &hospital.AppointmentResult{ID: 7}}

	out, seen := runSaga(t, api)

	assert.Equal(t, SagaSucceeded, out.State)
	assert.Equal(t, []SagaState{SagaCreatingPatient, SagaCreatingAppointment, SagaSucceeded}, seen)
	assert.NoError(t, out.Err)
	assert.Zero(t, out.OrphanedPatientID)
	require.NotNil(t, out.Appointment)
	assert.Equal(t, 7, out.Appointment.ID)
	require.Len(t, api.appointmentCalls, 1)
	assert.Equal(t, 42, api.appointmentCalls[0].PatientID)
}

func TestSaga_PatientFailure(t *testing.T) {
	boom := errors.New("boom")
	api := &fakeAPI{patientErr: boom}

	out, seen := runSaga(t, api)

	assert.Equal(t, SagaFailed, out.State)
	assert.Equal(t, SagaCreatingPatient, out.FailedStep)
	assert.ErrorIs(t, out.Err, boom)
	assert.Equal(t, []SagaState{SagaCreatingPatient, SagaFailed}, seen)
	assert.Empty(t, api.appointmentCalls)
}

func TestSaga_PatientWithoutID(t *testing.T) {
	api := &fakeAPI{patient: &hospital.Patient{}}

	out, _ := runSaga(t, api)

	assert.Equal(t, SagaFailed, out.State)
	assert.Equal(t, SagaCreatingPatient, out.FailedStep)
	assert.Empty(t, api.appointmentCalls)
}

func TestSaga_RejectionLeavesOrphan(t *testing.T) {
	api := &fakeAPI{
		patient:     &hospital.Patient{ID: 42},
		appointment: &hospital.AppointmentResult{Message: "Doctor unavailable"},
	}

	out, seen := runSaga(t, api)

	assert.Equal(t, SagaFailed, out.State)
	assert.Equal(t, SagaCreatingAppointment, out.FailedStep)
	assert.Equal(t, []SagaState{SagaCreatingPatient, SagaCreatingAppointment, SagaFailed}, seen)
	require.NotNil(t, out.Rejection())
	assert.Equal(t, "Doctor unavailable", out.Rejection().Message)
	assert.Equal(t, 42, out.OrphanedPatientID)
}

func TestSaga_RunsOnce(t *testing.T) {
	api := &fakeAPI{patient: &hospital.Patient{ID: 42}, appointment: &hospital.AppointmentResult{}}
	saga := NewSaga(api, logging.Discard(), nil)

	first := saga.Run(context.Background(), sagaInput())
	second := saga.Run(context.Background(), sagaInput())

	assert.Equal(t, SagaSucceeded, first.State)
	assert.Equal(t, SagaFailed, second.State)
	assert.Len(t, api.patientCalls, 1)
	assert.True(t, saga.State().Terminal())
}
