package service

import (
	"reflect"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"srm-agent-portal/internal/domain"
	"srm-agent-portal/internal/logger"
)

// PaymentContext is what the payment step needs from earlier steps.
type PaymentContext struct {
	BookingID  string
	CustomerID string
	VehicleID  string
	Rates      domain.RateTierSet
}

// BookingSession threads identifiers between the independently submitted steps of a
// single booking flow. One session belongs to one flow; step handlers take the writer
// lock for the whole submission so a flow never has two steps in flight.
type BookingSession struct {
	id      string
	agentID string

	writer sync.Mutex

	mu         sync.Mutex
	step       domain.FlowStep
	bookingID  string
	customerID string
	vehicleID  string
	rates      *domain.RateTierSet
	uploads    map[string]struct{}
	completed  bool
	touchedAt  time.Time
	now        func() time.Time

	// records created by a step whose follow-up call failed
	createdCustomer *createdCustomer
	createdVehicle  *createdVehicle
}

type createdCustomer struct {
	id      string
	details domain.CustomerDetails
}

type createdVehicle struct {
	id      string
	details domain.VehicleDetails
	rates   domain.RateTierSet
}

func newBookingSession(agentID string, now func() time.Time) *BookingSession {
	return &BookingSession{
		id:        uuid.NewString(),
		agentID:   agentID,
		step:      domain.FlowStepCustomer,
		uploads:   make(map[string]struct{}),
		touchedAt: now(),
		now:       now,
	}
}

func (s *BookingSession) ID() string {
	return s.id
}

func (s *BookingSession) AgentID() string {
	return s.agentID
}

// acquire takes the writer lock and returns its release
func (s *BookingSession) acquire() func() {
	s.writer.Lock()
	return s.writer.Unlock
}

func (s *BookingSession) touch() {
	s.touchedAt = s.now()
}

// BeginBooking records the booking created by the customer step. An active booking is
// overwritten and everything recorded for it by later steps is dropped.
func (s *BookingSession) BeginBooking(bookingID, customerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.bookingID != "" && s.bookingID != bookingID && !s.completed {
		logger.WithFlow(s.id).Warn("Overwriting active booking",
			"previousBookingID", s.bookingID, "bookingID", bookingID)
	}
	if s.bookingID != bookingID {
		s.vehicleID = ""
		s.rates = nil
		s.step = domain.FlowStepCustomer
	}
	s.bookingID = bookingID
	s.customerID = customerID
	s.createdCustomer = nil
	s.completed = false
	s.touch()
}

// AttachCustomer re-points the active booking at another customer.
func (s *BookingSession) AttachCustomer(customerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customerID = customerID
	s.touch()
}

func (s *BookingSession) RecordVehicle(vehicleID string, rates domain.RateTierSet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vehicleID = vehicleID
	snapshot := rates
	s.rates = &snapshot
	s.createdVehicle = nil
	s.touch()
}

// RememberCreatedCustomer keeps a customer whose booking could not be created yet, so a
// retry with the same details reuses it.
func (s *BookingSession) RememberCreatedCustomer(id string, details domain.CustomerDetails) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createdCustomer = &createdCustomer{id: id, details: details}
}

// CreatedCustomer returns the remembered customer when details match what was created.
func (s *BookingSession) CreatedCustomer(details domain.CustomerDetails) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createdCustomer == nil || s.createdCustomer.details != details {
		return "", false
	}
	return s.createdCustomer.id, true
}

// RememberCreatedVehicle keeps a vehicle that could not be attached to the booking yet.
func (s *BookingSession) RememberCreatedVehicle(id string, details domain.VehicleDetails, rates domain.RateTierSet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createdVehicle = &createdVehicle{id: id, details: details, rates: rates}
}

// CreatedVehicle returns the remembered vehicle when details and rates match.
func (s *BookingSession) CreatedVehicle(details domain.VehicleDetails, rates domain.RateTierSet) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.createdVehicle
	if v == nil || !reflect.DeepEqual(v.details, details) || !v.rates.Equal(rates) {
		return "", false
	}
	return v.id, true
}

func (s *BookingSession) BookingID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bookingID
}

// ReadForPayment fails with *domain.MissingContextError naming the step that still has
// to run when no booking or no rate snapshot has been recorded.
func (s *BookingSession) ReadForPayment() (PaymentContext, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.bookingID == "" {
		return PaymentContext{}, &domain.MissingContextError{Missing: "booking id", RequiredStep: domain.FlowStepCustomer}
	}
	if s.rates == nil {
		return PaymentContext{}, &domain.MissingContextError{Missing: "rate snapshot", RequiredStep: domain.FlowStepVehicle}
	}
	return PaymentContext{
		BookingID:  s.bookingID,
		CustomerID: s.customerID,
		VehicleID:  s.vehicleID,
		Rates:      *s.rates,
	}, nil
}

// Advance moves the flow forward to step. Re-entering an earlier step never moves it back.
func (s *BookingSession) Advance(step domain.FlowStep) (from, to domain.FlowStep) {
	s.mu.Lock()
	defer s.mu.Unlock()
	from = s.step
	if step.Rank() > s.step.Rank() {
		s.step = step
	}
	s.touch()
	return from, s.step
}

func (s *BookingSession) Step() domain.FlowStep {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}

func (s *BookingSession) Completed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completed
}

func (s *BookingSession) TrackUpload(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads[path] = struct{}{}
	s.touch()
}

// Untrack stops tracking paths that a step has now confirmed or deleted.
func (s *BookingSession) Untrack(paths ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range paths {
		delete(s.uploads, p)
	}
}

// PendingUploads returns the tracked upload paths in sorted order.
func (s *BookingSession) PendingUploads() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pendingUploadsLocked()
}

func (s *BookingSession) pendingUploadsLocked() []string {
	out := make([]string, 0, len(s.uploads))
	for p := range s.uploads {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Clear drops every identifier and returns the uploads that were still pending.
func (s *BookingSession) Clear() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	pending := s.pendingUploadsLocked()
	s.bookingID = ""
	s.customerID = ""
	s.vehicleID = ""
	s.rates = nil
	s.createdCustomer = nil
	s.createdVehicle = nil
	s.uploads = make(map[string]struct{})
	s.touch()
	return pending
}

// Complete clears the session and marks the flow finished.
func (s *BookingSession) Complete() []string {
	pending := s.Clear()
	s.mu.Lock()
	s.step = domain.FlowStepCompleted
	s.completed = true
	s.mu.Unlock()
	return pending
}

func (s *BookingSession) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touchedAt
}

// State is a point-in-time copy of the session.
func (s *BookingSession) State() *FlowState {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := &FlowState{
		FlowID:         s.id,
		Step:           s.step,
		BookingID:      s.bookingID,
		CustomerID:     s.customerID,
		VehicleID:      s.vehicleID,
		PendingUploads: len(s.uploads),
		UpdatedAt:      s.touchedAt,
	}
	if s.rates != nil {
		rates := *s.rates
		state.Rates = &rates
	}
	return state
}

// SessionRegistry hands every flow its own BookingSession.
type SessionRegistry struct {
	mu          sync.Mutex
	sessions    map[string]*BookingSession
	idleTimeout time.Duration
	now         func() time.Time
}

func NewSessionRegistry(idleTimeout time.Duration) *SessionRegistry {
	return &SessionRegistry{
		sessions:    make(map[string]*BookingSession),
		idleTimeout: idleTimeout,
		now:         time.Now,
	}
}

func (r *SessionRegistry) Open(agentID string) *BookingSession {
	sess := newBookingSession(agentID, r.now)
	r.mu.Lock()
	r.sessions[sess.id] = sess
	r.mu.Unlock()
	return sess
}

// Get returns the session of flowID. Flows of other agents are reported as not found.
func (r *SessionRegistry) Get(agentID, flowID string) (*BookingSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sess, ok := r.sessions[flowID]
	if !ok || sess.agentID != agentID {
		return nil, domain.ErrFlowNotFound
	}
	return sess, nil
}

func (r *SessionRegistry) Discard(agentID, flowID string) (*BookingSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sess, ok := r.sessions[flowID]
	if !ok || sess.agentID != agentID {
		return nil, domain.ErrFlowNotFound
	}
	delete(r.sessions, flowID)
	return sess, nil
}

// SweepIdle removes and returns every session untouched for longer than the idle timeout.
func (r *SessionRegistry) SweepIdle() []*BookingSession {
	if r.idleTimeout <= 0 {
		return nil
	}
	cutoff := r.now().Add(-r.idleTimeout)

	r.mu.Lock()
	defer r.mu.Unlock()
	var swept []*BookingSession
	for id, sess := range r.sessions {
		if sess.idleSince().Before(cutoff) {
			delete(r.sessions, id)
			swept = append(swept, sess)
		}
	}
	return swept
}

func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
