// Package stubapi serves the hospital booking HTTP surface from memory. It
// backs local runs of the booking CLI and end-to-end tests of the client.
package stubapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/hospital-booking/internal/hospital"
	httpmiddleware "github.com/wolfman30/hospital-booking/internal/http/middleware"
	"github.com/wolfman30/hospital-booking/pkg/logging"
)

// Config holds stub server configuration
type Config struct {
	Logger         *logging.Logger
	TokenSecret    []byte
	TokenTTL       time.Duration
	RequireAuth    bool
	Credentials    map[string]string
	AllowedOrigins []string
	MetricsHandler http.Handler
	// Doctors seeds the list served by GET /doctors. Nil uses DefaultDoctors.
	Doctors []hospital.Doctor
}

// Appointment is a booked appointment held by the stub.
type Appointment struct {
	ID        int    `json:"id"`
	DoctorID  int    `json:"doctor_id"`
	PatientID int    `json:"patient_id"`
	Date      string `json:"date"`
	Time      string `json:"time,omitempty"`
}

// Server is an in-memory hospital API.
type Server struct {
	cfg    Config
	logger *logging.Logger

	mu                sync.Mutex
	doctors           []hospital.Doctor
	patients          map[int]hospital.Patient
	appointments      []Appointment
	nextPatientID     int
	nextAppointmentID int
}

// DefaultDoctors is the sample roster the booking screen shipped with.
func DefaultDoctors() []hospital.Doctor {
	available, unavailable := true, false
	return []hospital.Doctor{
		{ID: 1, Name: "Dr. Alice Johnson", Specialization: "Cardiologist", Available: &available},
		{ID: 2, Name: "Dr. Bob Smith", Specialization: "Dermatologist", Available: &unavailable},
		{ID: 3, Name: "Dr. Carol Lee", Specialization: "Neurologist", Available: &available},
		{ID: 4, Name: "Dr. David Wilson", Specialization: "Pediatrician", Available: &available},
	}
}

// New creates a stub server.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = time.Hour
	}
	doctors := cfg.Doctors
	if doctors == nil {
		doctors = DefaultDoctors()
	}
	return &Server{
		cfg:               cfg,
		logger:            cfg.Logger,
		doctors:           append([]hospital.Doctor(nil), doctors...),
		patients:          make(map[int]hospital.Patient),
		nextPatientID:     1,
		nextAppointmentID: 1,
	}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(httpmiddleware.RequestLogger(s.logger))
	r.Use(httpmiddleware.CORS(s.cfg.AllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if s.cfg.MetricsHandler != nil {
		r.Handle("/metrics", s.cfg.MetricsHandler)
	}
	r.Post("/login", s.handleLogin)

	r.Group(func(r chi.Router) {
		if s.cfg.RequireAuth {
			r.Use(httpmiddleware.BearerJWT(s.cfg.TokenSecret))
		}
		r.Get("/doctors", s.handleListDoctors)
		r.Post("/patients/", s.handleCreatePatient)
		r.Post("/appointments", s.handleCreateAppointment)
	})
	return r
}

// Patients returns a snapshot of created patients.
func (s *Server) Patients() []hospital.Patient {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]hospital.Patient, 0, len(s.patients))
	for id := 1; id < s.nextPatientID; id++ {
		if p, ok := s.patients[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

// Appointments returns a snapshot of booked appointments.
func (s *Server) Appointments() []Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Appointment(nil), s.appointments...)
}

func (s *Server) handleListDoctors(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	doctors := append([]hospital.Doctor(nil), s.doctors...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"doctors": doctors})
}

func (s *Server) handleCreatePatient(w http.ResponseWriter, r *http.Request) {
	var draft hospital.PatientDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "invalid JSON body"})
		return
	}
	if msg := validatePatient(draft); msg != "" {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": msg})
		return
	}

	s.mu.Lock()
	patient := hospital.Patient{ID: s.nextPatientID, Name: draft.Name, Email: draft.Email, Age: draft.Age}
	s.patients[patient.ID] = patient
	s.nextPatientID++
	s.mu.Unlock()

	s.logger.Info("stub: patient created", "patient_id", patient.ID)
	writeJSON(w, http.StatusCreated, patient)
}

func (s *Server) handleCreateAppointment(w http.ResponseWriter, r *http.Request) {
	var req hospital.AppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "invalid JSON body"})
		return
	}
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "date must be YYYY-MM-DD"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doctor, ok := s.findDoctorLocked(req.DoctorID)
	if !ok {
		writeJSON(w, http.StatusOK, map[string]string{"message": fmt.Sprintf("Doctor %d not found", req.DoctorID)})
		return
	}
	if !doctor.Bookable() {
		writeJSON(w, http.StatusOK, map[string]string{"message": doctor.Name + " is not available"})
		return
	}
	if _, ok := s.patients[req.PatientID]; !ok {
		writeJSON(w, http.StatusOK, map[string]string{"message": fmt.Sprintf("Patient %d not found", req.PatientID)})
		return
	}

	appt := Appointment{
		ID:        s.nextAppointmentID,
		DoctorID:  req.DoctorID,
		PatientID: req.PatientID,
		Date:      req.Date,
		Time:      req.Time,
	}
	s.nextAppointmentID++
	s.appointments = append(s.appointments, appt)
	s.logger.Info("stub: appointment booked", "appointment_id", appt.ID, "doctor_id", appt.DoctorID, "patient_id", appt.PatientID)
	writeJSON(w, http.StatusCreated, appt)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req hospital.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid JSON body"})
		return
	}
	want, ok := s.cfg.Credentials[strings.ToLower(strings.TrimSpace(req.Email))]
	if !ok || want != req.Password {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "invalid credentials"})
		return
	}
	token, err := httpmiddleware.IssueToken(s.cfg.TokenSecret, req.Email, s.cfg.TokenTTL)
	if err != nil {
		s.logger.Error("stub: failed to issue token", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "could not issue token"})
		return
	}
	writeJSON(w, http.StatusOK, hospital.LoginResponse{AccessToken: token})
}

func (s *Server) findDoctorLocked(id int) (hospital.Doctor, bool) {
	for _, d := range s.doctors {
		if d.ID == id {
			return d, true
		}
	}
	return hospital.Doctor{}, false
}

func validatePatient(d hospital.PatientDraft) string {
	switch {
	case strings.TrimSpace(d.Name) == "":
		return "name is required"
	case !strings.Contains(d.Email, "@"):
		return "email is invalid"
	case d.Age <= 0:
		return "age must be a positive integer"
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
