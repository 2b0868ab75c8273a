package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/wolfman30/hospital-booking/internal/hospital"
	"github.com/wolfman30/hospital-booking/internal/observability/metrics"
	"github.com/wolfman30/hospital-booking/pkg/logging"
)

// DefaultMessageDelay is how long a booking message stays on screen.
const DefaultMessageDelay = 5 * time.Second

// State is the screen state of the booking form.
type State string

const (
	StateIdle       State = "idle"
	StateSelecting  State = "selecting"
	StateSubmitting State = "submitting"
)

// ResultKind classifies what Submit did.
type ResultKind string

const (
	ResultSucceeded ResultKind = "succeeded"
	// ResultFailed covers transport errors and server rejections.
	ResultFailed ResultKind = "failed"
	// ResultInvalid means the form was rejected before any network call.
	ResultInvalid ResultKind = "invalid"
	// ResultBusy means another submission was still in flight.
	ResultBusy ResultKind = "busy"
)

// Result is returned by Submit. Message is the text shown to the user.
type Result struct {
	Kind    ResultKind
	Message string
	Outcome *SagaOutcome
}

// Controller owns the transient form state. All methods are safe for
// concurrent use; network calls run without holding the lock.
type Controller struct {
	mu        sync.Mutex
	api       API
	presenter *Presenter
	logger    *logging.Logger
	metrics   *metrics.BookingMetrics

	state    State
	doctors  []hospital.Doctor
	selected *hospital.Doctor
	draft    Draft
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the controller logger.
func WithLogger(l *logging.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics records booking outcomes.
func WithMetrics(m *metrics.BookingMetrics) Option {
	return func(c *Controller) {
		c.metrics = m
	}
}

// WithPresenter replaces the default presenter.
func WithPresenter(p *Presenter) Option {
	return func(c *Controller) {
		if p != nil {
			c.presenter = p
		}
	}
}

// NewController creates an idle controller.
func NewController(api API, opts ...Option) *Controller {
	c := &Controller{
		api:    api,
		logger: logging.Default(),
		state:  StateIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.presenter == nil {
		c.presenter = NewPresenter(DefaultMessageDelay)
	}
	return c
}

// Presenter returns the message presenter.
func (c *Controller) Presenter() *Presenter { return c.presenter }

// State returns the current screen state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// LoadDoctors fetches the doctor list. On failure the list is emptied and a
// failure message is shown; the error is returned for callers that care.
func (c *Controller) LoadDoctors(ctx context.Context) ([]hospital.Doctor, error) {
	doctors, err := c.api.ListDoctors(ctx)
	if err != nil {
		c.logger.Error("booking: failed to load doctors", "error", err)
		c.mu.Lock()
		c.doctors = nil
		c.mu.Unlock()
		c.presenter.Show(MessageFailure, MessageDoctorsFailed)
		return nil, err
	}

	c.mu.Lock()
	c.doctors = append([]hospital.Doctor(nil), doctors...)
	if c.selected != nil && c.state == StateSelecting && !containsDoctor(c.doctors, c.selected.ID) {
		c.selected = nil
		c.state = StateIdle
	}
	out := append([]hospital.Doctor(nil), c.doctors...)
	c.mu.Unlock()

	c.logger.Debug("booking: doctors loaded", "count", len(out))
	return out, nil
}

// Doctors returns the last fetched list.
func (c *Controller) Doctors() []hospital.Doctor {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]hospital.Doctor(nil), c.doctors...)
}

// Select targets the doctor with id. Only doctors from the last fetched list
// that are not flagged unavailable can be selected.
func (c *Controller) Select(id int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateSubmitting {
		return ErrSubmissionInFlight
	}
	for i := range c.doctors {
		if c.doctors[i].ID != id {
			continue
		}
		if !c.doctors[i].Bookable() {
			return ErrDoctorUnavailable
		}
		d := c.doctors[i]
		c.selected = &d
		c.state = StateSelecting
		return nil
	}
	return fmt.Errorf("%w: %d", ErrUnknownDoctor, id)
}

// Selected returns the targeted doctor, if any.
func (c *Controller) Selected() (hospital.Doctor, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected == nil {
		return hospital.Doctor{}, false
	}
	return *c.selected, true
}

// Cancel closes the form without submitting.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateSubmitting {
		return
	}
	c.resetLocked()
}

// SetDraft replaces the form fields. Ignored while submitting.
func (c *Controller) SetDraft(d Draft) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateSubmitting {
		return
	}
	c.draft = d
}

// SetPatient fills the patient fields.
func (c *Controller) SetPatient(name, email, age string) {
	c.updateDraft(func(d *Draft) {
		d.PatientName, d.PatientEmail, d.PatientAge = name, email, age
	})
}

// SetSchedule fills the appointment date and time.
func (c *Controller) SetSchedule(date, clock string) {
	c.updateDraft(func(d *Draft) {
		d.Date, d.Time = date, clock
	})
}

// Draft returns the current form fields.
func (c *Controller) Draft() Draft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

func (c *Controller) updateDraft(fn func(*Draft)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateSubmitting {
		return
	}
	fn(&c.draft)
}

// Submit validates the form and runs the booking saga. Every failure is
// turned into a message; nothing is returned as an error.
func (c *Controller) Submit(ctx context.Context) Result {
	c.mu.Lock()
	if c.state == StateSubmitting {
		c.mu.Unlock()
		return Result{Kind: ResultBusy, Message: MessageSubmissionPending}
	}
	patient, err := c.draft.validate(c.selected)
	if err == nil && !containsDoctor(c.doctors, c.selected.ID) {
		err = ErrUnknownDoctor
	}
	if err != nil {
		c.mu.Unlock()
		msg := validationMessage(err)
		c.logger.Debug("booking: submission rejected by form validation", "error", err)
		c.metrics.ObserveOutcome(string(ResultInvalid), "validating")
		c.presenter.Show(MessageFailure, msg)
		return Result{Kind: ResultInvalid, Message: msg}
	}
	doctor := *c.selected
	draft := c.draft
	c.state = StateSubmitting
	c.mu.Unlock()

	saga := NewSaga(c.api, c.logger, func(from, to SagaState) {
		c.logger.Debug("booking: saga transition", "from", string(from), "to", string(to), "doctor_id", doctor.ID)
	})
	outcome := saga.Run(ctx, SagaInput{
		Doctor:  doctor,
		Patient: patient,
		Date:    strings.TrimSpace(draft.Date),
		Time:    strings.TrimSpace(draft.Time),
	})

	result := Result{Outcome: &outcome}
	kind := MessageFailure
	switch {
	case outcome.State == SagaSucceeded:
		result.Kind = ResultSucceeded
		result.Message = SuccessMessage(doctor.Name, strings.TrimSpace(draft.Date), strings.TrimSpace(draft.Time), draft.PatientName)
		kind = MessageSuccess
	default:
		result.Kind = ResultFailed
		result.Message = failureMessage(outcome)
	}

	c.metrics.ObserveOutcome(string(outcome.State), string(outcome.FailedStep))
	if outcome.OrphanedPatientID != 0 {
		c.metrics.ObserveOrphanedPatient()
	}

	c.mu.Lock()
	c.resetLocked()
	c.mu.Unlock()

	c.presenter.Show(kind, result.Message)
	return result
}

func (c *Controller) resetLocked() {
	c.selected = nil
	c.draft = Draft{}
	c.state = StateIdle
}

func failureMessage(o SagaOutcome) string {
	if rej := o.Rejection(); rej != nil {
		return rej.Message
	}
	if o.FailedStep == SagaCreatingPatient {
		var valErr *hospital.ValidationError
		if errors.As(o.Err, &valErr) && valErr.Message != "" {
			return fmt.Sprintf(MessagePatientRejected, valErr.Message)
		}
		return MessagePatientFailed
	}
	return MessageBookingFailed
}

func containsDoctor(doctors []hospital.Doctor, id int) bool {
	for _, d := range doctors {
		if d.ID == id {
			return true
		}
	}
	return false
}
