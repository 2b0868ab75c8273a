// Package hospital contains the hospital booking API client, its wire types
// and the session that carries the access token between calls.
package hospital

import (
	"encoding/json"
	"strings"
)

// Doctor is a bookable practitioner as returned by GET /doctors.
type Doctor struct {
	ID             int    `json:"id"`
	Name           string `json:"name"`
	Specialization string `json:"specialization"`
	// Available is optional; a doctor without the flag is treated as bookable.
	Available *bool `json:"available,omitempty"`
}

// Bookable reports whether the doctor may be selected for an appointment.
func (d Doctor) Bookable() bool {
	return d.Available == nil || *d.Available
}

// PatientDraft is the patient payload for POST /patients/.
type PatientDraft struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Age   int    `json:"age"`
}

// Patient is a persisted patient with its server-issued identifier.
type Patient struct {
	ID    int    `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Age   int    `json:"age,omitempty"`
}

// AppointmentRequest is the payload for POST /appointments.
type AppointmentRequest struct {
	DoctorID  int    `json:"doctor_id"`
	PatientID int    `json:"patient_id"`
	Date      string `json:"date"`
	Time      string `json:"time,omitempty"`
}

// AppointmentResult is whatever the server answered with a 2xx status. It is
// either a confirmation object or a structured {"message": ...} payload.
type AppointmentResult struct {
	ID      int             `json:"id,omitempty"`
	Message string          `json:"message,omitempty"`
	Raw     json.RawMessage `json:"-"`
}

// Rejection returns the structured server message, or nil when the result is
// a plain confirmation.
func (r *AppointmentResult) Rejection() *ServerRejection {
	if r == nil || strings.TrimSpace(r.Message) == "" {
		return nil
	}
	return &ServerRejection{Message: r.Message}
}

// LoginRequest is the payload for POST /login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the bearer token issued by POST /login.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
}
