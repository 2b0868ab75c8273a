package booking

import (
	"context"
	"sync"
	"time"

	"github.com/wolfman30/hospital-booking/internal/hospital"
)

// fakeAPI records calls and answers with canned responses.
type fakeAPI struct {
	mu sync.Mutex

	doctors    []hospital.Doctor
	doctorsErr error

	patient    *hospital.Patient
	patientErr error
	// patientGate, when set, blocks CreatePatient until it is closed.
	patientGate chan struct{}

	appointment    *hospital.AppointmentResult
	appointmentErr error

	listCalls        int
	patientCalls     []hospital.PatientDraft
	appointmentCalls []hospital.AppointmentRequest
}

func (f *fakeAPI) ListDoctors(context.Context) ([]hospital.Doctor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	return f.doctors, f.doctorsErr
}

func (f *fakeAPI) CreatePatient(ctx context.Context, draft hospital.PatientDraft) (*hospital.Patient, error) {
	f.mu.Lock()
	f.patientCalls = append(f.patientCalls, draft)
	gate := f.patientGate
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.patient, f.patientErr
}

func (f *fakeAPI) CreateAppointment(_ context.Context, req hospital.AppointmentRequest) (*hospital.AppointmentResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.appointmentCalls = append(f.appointmentCalls, req)
	return f.appointment, f.appointmentErr
}

func (f *fakeAPI) networkCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.patientCalls) + len(f.appointmentCalls)
}

// fakeClock hands out timers that only fire when told to.
type fakeClock struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

type fakeTimer struct {
	delay   time.Duration
	fn      func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	wasActive := !t.stopped
	t.stopped = true
	return wasActive
}

func (c *fakeClock) AfterFunc(d time.Duration, fn func()) Stopper {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{delay: d, fn: fn}
	c.timers = append(c.timers, t)
	return t
}

// fire runs every timer that has not been stopped.
func (c *fakeClock) fire() {
	c.mu.Lock()
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped {
			t.stopped = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()
	for _, t := range due {
		t.fn()
	}
}

func (c *fakeClock) last() *fakeTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.timers) == 0 {
		return nil
	}
	return c.timers[len(c.timers)-1]
}

func boolPtr(b bool) *bool { return &b }
