package stubapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/hospital-booking/internal/booking"
	"github.com/wolfman30/hospital-booking/internal/hospital"
	"github.com/wolfman30/hospital-booking/pkg/logging"
)

const testSecret = "stub-test-secret"

func newTestServer(t *testing.T, requireAuth bool) (*Server, *httptest.Server) {
	t.Helper()
	stub := New(Config{
		Logger:      logging.Discard(),
		TokenSecret: []byte(testSecret),
		RequireAuth: requireAuth,
		Credentials: map[string]string{"staff@hospital.test": "password"},
	})
	srv := httptest.NewServer(stub.Handler())
	t.Cleanup(srv.Close)
	return stub, srv
}

func TestListDoctorsEnvelope(t *testing.T) {
	_, srv := newTestServer(t, false)

	resp, err := http.Get(srv.URL + "/doctors")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Doctors []hospital.Doctor `json:"doctors"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Doctors, 4)
	assert.Equal(t, "Dr. Alice Johnson", body.Doctors[0].Name)
	assert.False(t, body.Doctors[1].Bookable())
}

func TestCreatePatientRejectsInvalidInput(t *testing.T) {
	stub, srv := newTestServer(t, false)

	resp, err := http.Post(srv.URL+"/patients/", "application/json", bytes.NewBufferString(`{"name":"Jane","email":"nope","age":30}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Empty(t, stub.Patients())
}

func TestCreatePatientThroughClientSurfacesDetail(t *testing.T) {
	_, srv := newTestServer(t, false)
	client := hospital.NewClient(srv.URL, hospital.WithLogger(logging.Discard()))

	_, err := client.CreatePatient(context.Background(), hospital.PatientDraft{Name: "Jane", Email: "jane@example.com", Age: 0})
	var valErr *hospital.ValidationError
	require.True(t, errors.As(err, &valErr), "expected validation error, got %v", err)
	assert.Equal(t, "age must be a positive integer", valErr.Message)
}

func TestCreateAppointmentMessagePayloads(t *testing.T) {
	_, srv := newTestServer(t, false)
	client := hospital.NewClient(srv.URL, hospital.WithLogger(logging.Discard()))
	ctx := context.Background()

	patient, err := client.CreatePatient(ctx, hospital.PatientDraft{Name: "Jane", Email: "jane@example.com", Age: 30})
	require.NoError(t, err)

	cases := []struct {
		name string
		req  hospital.AppointmentRequest
		want string
	}{
		{"unavailable doctor", hospital.AppointmentRequest{DoctorID: 2, PatientID: patient.ID, Date: "2026-11-02"}, "Dr. Bob Smith is not available"},
		{"unknown doctor", hospital.AppointmentRequest{DoctorID: 99, PatientID: patient.ID, Date: "2026-11-02"}, "Doctor 99 not found"},
		{"unknown patient", hospital.AppointmentRequest{DoctorID: 1, PatientID: 42, Date: "2026-11-02"}, "Patient 42 not found"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := client.CreateAppointment(ctx, tc.req)
			require.NoError(t, err)
			rej := result.Rejection()
			require.NotNil(t, rej)
			assert.Equal(t, tc.want, rej.Message)
		})
	}
}

func TestLoginIssuesUsableToken(t *testing.T) {
	_, srv := newTestServer(t, true)
	ctx := context.Background()
	session := hospital.NewSession(hospital.NewMemoryTokenStore())
	client := hospital.NewClient(srv.URL, hospital.WithSession(session), hospital.WithLogger(logging.Discard()))

	_, err := client.ListDoctors(ctx)
	var netErr *hospital.NetworkError
	require.True(t, errors.As(err, &netErr), "expected network error, got %v", err)
	assert.Equal(t, http.StatusUnauthorized, netErr.StatusCode)

	auth := hospital.NewAuthenticator(client, session, logging.Discard())
	require.NoError(t, auth.Login(ctx, "Staff@Hospital.test", "password"))
	assert.True(t, session.Authenticated(ctx))

	doctors, err := client.ListDoctors(ctx)
	require.NoError(t, err)
	assert.Len(t, doctors, 4)

	require.NoError(t, auth.Logout(ctx))
	_, err = client.ListDoctors(ctx)
	assert.Error(t, err)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	_, srv := newTestServer(t, true)
	ctx := context.Background()
	session := hospital.NewSession(hospital.NewMemoryTokenStore())
	client := hospital.NewClient(srv.URL, hospital.WithSession(session), hospital.WithLogger(logging.Discard()))

	err := hospital.NewAuthenticator(client, session, logging.Discard()).Login(ctx, "staff@hospital.test", "wrong")
	require.Error(t, err)
	assert.Equal(t, hospital.MessageLoginFailed, hospital.LoginFailureMessage(err))
	assert.False(t, session.Authenticated(ctx))
}

func TestBookingFlowEndToEnd(t *testing.T) {
	stub, srv := newTestServer(t, false)
	ctx := context.Background()
	client := hospital.NewClient(srv.URL, hospital.WithLogger(logging.Discard()))
	ctrl := booking.NewController(client, booking.WithLogger(logging.Discard()))

	doctors, err := ctrl.LoadDoctors(ctx)
	require.NoError(t, err)
	require.Len(t, doctors, 4)

	assert.ErrorIs(t, ctrl.Select(2), booking.ErrDoctorUnavailable)
	require.NoError(t, ctrl.Select(1))
	ctrl.SetPatient("Jane Doe", "jane@example.com", "30")
	ctrl.SetSchedule("2026-11-02", "09:30")

	result := ctrl.Submit(ctx)
	require.Equal(t, booking.ResultSucceeded, result.Kind, result.Message)
	assert.Equal(t, "✅ Appointment booked with Dr. Alice Johnson on 2026-11-02 at 09:30 for Jane Doe", result.Message)
	assert.Equal(t, booking.StateIdle, ctrl.State())

	appts := stub.Appointments()
	require.Len(t, appts, 1)
	assert.Equal(t, 1, appts[0].DoctorID)
	assert.Equal(t, stub.Patients()[0].ID, appts[0].PatientID)
	assert.Equal(t, "09:30", appts[0].Time)
}

func TestHealthAndCORS(t *testing.T) {
	stub := New(Config{Logger: logging.Discard(), AllowedOrigins: []string{"http://localhost:3000"}})
	req := httptest.NewRequest(http.MethodOptions, "/doctors", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	stub.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = httptest.NewRecorder()
	stub.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
