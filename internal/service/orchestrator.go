package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"srm-agent-portal/internal/domain"
	"srm-agent-portal/internal/logger"
	"srm-agent-portal/internal/utils"
)

// FlowState is the externally visible position of a booking flow.
type FlowState struct {
	FlowID         string              `json:"flow_id"`
	Step           domain.FlowStep     `json:"step"`
	BookingID      string              `json:"booking_id,omitempty"`
	CustomerID     string              `json:"customer_id,omitempty"`
	VehicleID      string              `json:"vehicle_id,omitempty"`
	Rates          *domain.RateTierSet `json:"rates,omitempty"`
	PendingUploads int                 `json:"pending_uploads"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

type CustomerSubmission struct {
	Selection      *domain.SearchResult   `json:"selection"`
	TypedValue     string                 `json:"typed_value"`
	Details        domain.CustomerDetails `json:"details"`
	DiscardedFiles []string               `json:"discarded_files"`
}

type CustomerStepResult struct {
	State      *FlowState             `json:"state"`
	Resolution Resolution             `json:"resolution"`
	CustomerID string                 `json:"customer_id"`
	BookingID  string                 `json:"booking_id"`
	Details    domain.CustomerDetails `json:"details"`
}

type VehicleSubmission struct {
	Selection      *domain.SearchResult    `json:"selection"`
	TypedValue     string                  `json:"typed_value"`
	Details        domain.VehicleDetails   `json:"details"`
	Rates          domain.RateTierSetInput `json:"rates"`
	DiscardedFiles []string                `json:"discarded_files"`
}

type VehicleStepResult struct {
	State      *FlowState            `json:"state"`
	Resolution Resolution            `json:"resolution"`
	VehicleID  string                `json:"vehicle_id"`
	Details    domain.VehicleDetails `json:"details"`
	Rates      domain.RateTierSet    `json:"rates"`
}

// QuotePreview is the reactive quote shown while payment fields change. An
// unpriceable range is reported through Available rather than as an error.
type QuotePreview struct {
	Available bool                        `json:"available"`
	Reason    string                      `json:"reason,omitempty"`
	Code      domain.CalculationErrorCode `json:"code,omitempty"`
	Quote     *domain.Quote               `json:"quote,omitempty"`
	Breakdown *utils.RentalBreakdown      `json:"breakdown,omitempty"`
}

type PaymentResult struct {
	State     *FlowState   `json:"state"`
	BookingID string       `json:"booking_id"`
	Quote     domain.Quote `json:"quote"`
}

type bookingFlowService struct {
	registry *SessionRegistry
	gateway  BookingGateway
	files    FileService
	emailSvc EmailService
	location *time.Location
}

func NewBookingFlowService(registry *SessionRegistry, gateway BookingGateway, files FileService, emailSvc EmailService, loc *time.Location) BookingFlowService {
	if loc == nil {
		loc = time.UTC
	}
	return &bookingFlowService{
		registry: registry,
		gateway:  gateway,
		files:    files,
		emailSvc: emailSvc,
		location: loc,
	}
}

func (s *bookingFlowService) StartFlow(ctx context.Context, agentID string) (*FlowState, error) {
	sess := s.registry.Open(agentID)
	logger.WithFlow(sess.ID()).Info("Booking flow started", "agentID", agentID)
	return sess.State(), nil
}

func (s *bookingFlowService) State(ctx context.Context, agentID, flowID string) (*FlowState, error) {
	sess, err := s.registry.Get(agentID, flowID)
	if err != nil {
		return nil, err
	}
	return sess.State(), nil
}

// openStep looks up the flow and takes its writer lock. Completed flows are rejected.
func (s *bookingFlowService) openStep(agentID, flowID string) (*BookingSession, func(), error) {
	sess, err := s.registry.Get(agentID, flowID)
	if err != nil {
		return nil, nil, err
	}
	release := sess.acquire()
	if sess.Completed() {
		release()
		return nil, nil, domain.ErrFlowCompleted
	}
	return sess, release, nil
}

func (s *bookingFlowService) SubmitCustomer(ctx context.Context, agentID, flowID string, sub CustomerSubmission) (*CustomerStepResult, error) {
	logger.EnterMethod("bookingFlowService.SubmitCustomer", "flowID", flowID)

	sess, release, err := s.openStep(agentID, flowID)
	if err != nil {
		logger.ExitMethodWithError("bookingFlowService.SubmitCustomer", err, "flowID", flowID)
		return nil, err
	}
	defer release()

	res := Resolve(sub.Selection, sub.TypedValue)
	result := &CustomerStepResult{Resolution: res}

	switch res.Mode {
	case ResolutionBlocked:
		err = domain.ValidationErrors{{Field: "customer", Message: "select an existing customer or enter a name to add a new one"}}

	case ResolutionExisting:
		err = s.attachExistingCustomer(ctx, agentID, sess, res.ID, result)

	case ResolutionNew:
		err = s.createNewCustomer(ctx, agentID, sess, sub, result)
	}
	if err != nil {
		logger.ExitMethodWithError("bookingFlowService.SubmitCustomer", err, "flowID", flowID, "mode", res.Mode)
		return nil, err
	}

	s.commitFiles(ctx, agentID, sess, sub.DiscardedFiles, []string{result.Details.ProfilePhotoPath})
	s.advance(sess, domain.FlowStepVehicle)
	result.State = sess.State()

	logger.ExitMethod("bookingFlowService.SubmitCustomer", "flowID", flowID, "bookingID", result.BookingID)
	return result, nil
}

// attachExistingCustomer fills the form from the selected record and links it to the
// active booking, creating the booking when none exists.
func (s *bookingFlowService) attachExistingCustomer(ctx context.Context, agentID string, sess *BookingSession, customerID string, result *CustomerStepResult) error {
	customer, err := s.gateway.GetCustomer(ctx, agentID, customerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ValidationErrors{{Field: "selection", Message: "the selected customer no longer exists"}}
		}
		return err
	}
	selected := customer.SearchResult()
	result.Details = ApplyCustomerSelection(&selected, "")
	result.CustomerID = customer.ID

	bookingID := sess.BookingID()
	if bookingID == "" {
		bookingID, err = s.gateway.CreateBookingForCustomer(ctx, agentID, customer.ID)
		if err != nil {
			return err
		}
		sess.BeginBooking(bookingID, customer.ID)
	} else {
		if err := s.gateway.AttachCustomerToBooking(ctx, agentID, customer.ID, bookingID); err != nil {
			return err
		}
		sess.AttachCustomer(customer.ID)
	}
	result.BookingID = bookingID
	return nil
}

func (s *bookingFlowService) createNewCustomer(ctx context.Context, agentID string, sess *BookingSession, sub CustomerSubmission, result *CustomerStepResult) error {
	details := sub.Details
	if strings.TrimSpace(details.FullName) == "" {
		details.FullName = strings.TrimSpace(sub.TypedValue)
	}
	if err := validateCustomer(details); err != nil {
		return err
	}

	customerID, reused := sess.CreatedCustomer(details)
	if reused {
		logger.WithFlow(sess.ID()).Info("Reusing customer created by an earlier attempt", "customerID", customerID)
	} else {
		var err error
		if customerID, err = s.gateway.CreateCustomer(ctx, agentID, details); err != nil {
			return err
		}
	}
	bookingID, err := s.gateway.CreateBookingForCustomer(ctx, agentID, customerID)
	if err != nil {
		sess.RememberCreatedCustomer(customerID, details)
		return err
	}
	sess.BeginBooking(bookingID, customerID)

	result.Details = details
	result.CustomerID = customerID
	result.BookingID = bookingID
	return nil
}

func validateCustomer(d domain.CustomerDetails) error {
	var errs domain.ValidationErrors
	if strings.TrimSpace(d.FullName) == "" {
		errs.Add("details.full_name", "full name is required")
	}
	if strings.TrimSpace(d.Phone) == "" {
		errs.Add("details.phone", "phone is required")
	}
	if email := strings.TrimSpace(d.Email); email != "" && !strings.Contains(email, "@") {
		errs.Add("details.email", "email is not valid")
	}
	return errs.Err()
}

func (s *bookingFlowService) SubmitVehicle(ctx context.Context, agentID, flowID string, sub VehicleSubmission) (*VehicleStepResult, error) {
	logger.EnterMethod("bookingFlowService.SubmitVehicle", "flowID", flowID)

	sess, release, err := s.openStep(agentID, flowID)
	if err != nil {
		logger.ExitMethodWithError("bookingFlowService.SubmitVehicle", err, "flowID", flowID)
		return nil, err
	}
	defer release()

	bookingID := sess.BookingID()
	if bookingID == "" {
		err := &domain.MissingContextError{Missing: "booking id", RequiredStep: domain.FlowStepCustomer}
		logger.ExitMethodWithError("bookingFlowService.SubmitVehicle", err, "flowID", flowID)
		return nil, err
	}

	res := Resolve(sub.Selection, sub.TypedValue)
	result := &VehicleStepResult{Resolution: res}

	switch res.Mode {
	case ResolutionBlocked:
		err = domain.ValidationErrors{{Field: "vehicle", Message: "select an existing vehicle or enter one to add it"}}

	case ResolutionExisting:
		var vehicle *domain.Vehicle
		vehicle, err = s.gateway.GetVehicle(ctx, agentID, res.ID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				err = domain.ValidationErrors{{Field: "selection", Message: "the selected vehicle no longer exists"}}
			}
			break
		}
		selected := vehicle.SearchResult()
		details, ratesInput := ApplyVehicleSelection(&selected)
		rates, verr := ratesInput.Validate()
		if verr != nil {
			err = verr
			break
		}
		if err = s.gateway.AttachVehicleToBooking(ctx, agentID, vehicle.ID, bookingID); err != nil {
			break
		}
		result.VehicleID, result.Details, result.Rates = vehicle.ID, details, rates

	case ResolutionNew:
		details := sub.Details
		var rates domain.RateTierSet
		if rates, err = validateVehicle(details, sub.Rates); err != nil {
			break
		}
		vehicleID, reused := sess.CreatedVehicle(details, rates)
		if reused {
			logger.WithFlow(sess.ID()).Info("Reusing vehicle created by an earlier attempt", "vehicleID", vehicleID)
		} else if vehicleID, err = s.gateway.CreateVehicle(ctx, agentID, details, rates); err != nil {
			break
		}
		if err = s.gateway.AttachVehicleToBooking(ctx, agentID, vehicleID, bookingID); err != nil {
			sess.RememberCreatedVehicle(vehicleID, details, rates)
			break
		}
		result.VehicleID, result.Details, result.Rates = vehicleID, details, rates
	}
	if err != nil {
		logger.ExitMethodWithError("bookingFlowService.SubmitVehicle", err, "flowID", flowID, "mode", res.Mode)
		return nil, err
	}

	sess.RecordVehicle(result.VehicleID, result.Rates)
	s.commitFiles(ctx, agentID, sess, sub.DiscardedFiles, result.Details.PhotoPaths)
	s.advance(sess, domain.FlowStepPayment)
	result.State = sess.State()

	logger.ExitMethod("bookingFlowService.SubmitVehicle", "flowID", flowID, "vehicleID", result.VehicleID)
	return result, nil
}

// validateVehicle checks the vehicle fields and the rate tiers together so every field
// error is reported in one response.
func validateVehicle(d domain.VehicleDetails, in domain.RateTierSetInput) (domain.RateTierSet, error) {
	var errs domain.ValidationErrors
	if strings.TrimSpace(d.Make) == "" {
		errs.Add("details.make", "make is required")
	}
	if strings.TrimSpace(d.Model) == "" {
		errs.Add("details.model", "model is required")
	}
	if d.Year != 0 && (d.Year < 1950 || d.Year > time.Now().Year()+1) {
		errs.Add("details.year", "year is out of range")
	}

	rates, err := in.Validate()
	if err != nil {
		var rateErrs domain.ValidationErrors
		if !errors.As(err, &rateErrs) {
			return domain.RateTierSet{}, err
		}
		errs = append(errs, rateErrs...)
	}
	if err := errs.Err(); err != nil {
		return domain.RateTierSet{}, err
	}
	return rates, nil
}

func (s *bookingFlowService) PreviewQuote(ctx context.Context, agentID, flowID string, in PaymentInput) (*QuotePreview, error) {
	sess, err := s.registry.Get(agentID, flowID)
	if err != nil {
		return nil, err
	}
	if sess.Completed() {
		return nil, domain.ErrFlowCompleted
	}
	pc, err := sess.ReadForPayment()
	if err != nil {
		return nil, err
	}

	quote, breakdown, err := BuildQuote(pc.Rates, in, s.location)
	if err != nil {
		var calcErr *domain.CalculationError
		if errors.As(err, &calcErr) {
			return &QuotePreview{Available: false, Reason: calcErr.Message, Code: calcErr.Code}, nil
		}
		return nil, err
	}
	return &QuotePreview{Available: true, Quote: &quote, Breakdown: &breakdown}, nil
}

func (s *bookingFlowService) SubmitPayment(ctx context.Context, agentID, flowID string, in PaymentInput) (*PaymentResult, error) {
	logger.EnterMethod("bookingFlowService.SubmitPayment", "flowID", flowID)

	sess, release, err := s.openStep(agentID, flowID)
	if err != nil {
		logger.ExitMethodWithError("bookingFlowService.SubmitPayment", err, "flowID", flowID)
		return nil, err
	}
	defer release()

	pc, err := sess.ReadForPayment()
	if err != nil {
		logger.ExitMethodWithError("bookingFlowService.SubmitPayment", err, "flowID", flowID)
		return nil, err
	}

	quote, _, err := BuildQuote(pc.Rates, in, s.location)
	if err != nil {
		logger.ExitMethodWithError("bookingFlowService.SubmitPayment", err, "flowID", flowID)
		return nil, err
	}

	if err := s.gateway.FinalizeBooking(ctx, agentID, pc.BookingID, quote); err != nil {
		logger.ExitMethodWithError("bookingFlowService.SubmitPayment", err, "flowID", flowID, "bookingID", pc.BookingID)
		return nil, err
	}

	s.notifyFinalized(ctx, agentID, pc, quote)

	leftover := sess.Complete()
	s.releaseFiles(ctx, sess.ID(), leftover)
	logger.StepTransition(sess.ID(), domain.FlowStepPayment.Label(), domain.FlowStepCompleted.Label(), "bookingID", pc.BookingID)

	logger.ExitMethod("bookingFlowService.SubmitPayment", "flowID", flowID, "bookingID", pc.BookingID)
	return &PaymentResult{State: sess.State(), BookingID: pc.BookingID, Quote: quote}, nil
}

// notifyFinalized mails the customer a confirmation. Failures are logged only.
func (s *bookingFlowService) notifyFinalized(ctx context.Context, agentID string, pc PaymentContext, quote domain.Quote) {
	if s.emailSvc == nil || pc.CustomerID == "" {
		return
	}
	customer, err := s.gateway.GetCustomer(ctx, agentID, pc.CustomerID)
	if err != nil {
		logger.Warn("Skipping booking confirmation", "bookingID", pc.BookingID, "error", err)
		return
	}
	if customer.Email == "" {
		return
	}
	confirmation := BookingConfirmation{BookingID: pc.BookingID, Quote: quote}
	if vehicle, err := s.gateway.GetVehicle(ctx, agentID, pc.VehicleID); err == nil {
		confirmation.VehicleLabel = vehicle.Label()
	}
	if err := s.emailSvc.SendBookingConfirmation(ctx, customer.Email, customer.FullName, confirmation); err != nil {
		logger.Error("Failed to send booking confirmation", "bookingID", pc.BookingID, "error", err)
	}
}

func (s *bookingFlowService) Abandon(ctx context.Context, agentID, flowID string) error {
	sess, err := s.registry.Discard(agentID, flowID)
	if err != nil {
		return err
	}
	release := sess.acquire()
	pending := sess.Clear()
	release()

	s.releaseFiles(ctx, flowID, pending)
	logger.WithFlow(flowID).Info("Booking flow abandoned", "releasedUploads", len(pending))
	return nil
}

func (s *bookingFlowService) TrackUpload(ctx context.Context, agentID, flowID, path string) error {
	sess, err := s.registry.Get(agentID, flowID)
	if err != nil {
		return err
	}
	if sess.Completed() {
		return domain.ErrFlowCompleted
	}
	sess.TrackUpload(path)
	return nil
}

func (s *bookingFlowService) SearchCustomers(ctx context.Context, agentID, query string) ([]domain.SearchResult, error) {
	return s.gateway.SearchCustomers(ctx, agentID, query)
}

func (s *bookingFlowService) SearchVehicles(ctx context.Context, agentID, query string) ([]domain.SearchResult, error) {
	return s.gateway.SearchVehicles(ctx, agentID, query)
}

// SweepAbandoned drops flows idle past the timeout and releases their uploads.
func (s *bookingFlowService) SweepAbandoned(ctx context.Context) (int, error) {
	swept := s.registry.SweepIdle()
	var released []string
	abandoned := 0
	for _, sess := range swept {
		release := sess.acquire()
		completed := sess.Completed()
		pending := sess.Clear()
		release()

		released = append(released, pending...)
		if !completed {
			abandoned++
			logger.WithFlow(sess.ID()).Info("Idle booking flow abandoned", "releasedUploads", len(pending))
		}
	}
	if len(released) > 0 {
		if err := s.files.ReleaseStoredFiles(ctx, released); err != nil {
			return abandoned, err
		}
	}
	return abandoned, nil
}

// commitFiles runs the second phase of a successful step: discarded files are deleted
// and files the step referenced are confirmed. A failed step never reaches this point,
// so its discard list is simply dropped.
func (s *bookingFlowService) commitFiles(ctx context.Context, agentID string, sess *BookingSession, discarded, referenced []string) {
	var keep []string
	for _, p := range referenced {
		if p != "" {
			keep = append(keep, p)
		}
	}
	kept := make(map[string]bool, len(keep))
	for _, p := range keep {
		kept[p] = true
	}

	for _, p := range discarded {
		if p == "" || kept[p] {
			continue
		}
		if err := s.files.DeleteStoredFile(ctx, agentID, p); err != nil {
			logger.WithFlow(sess.ID()).Error("Failed to delete discarded file", "path", p, "error", err)
		}
		sess.Untrack(p)
	}

	if len(keep) > 0 {
		if err := s.files.ConfirmStoredFiles(ctx, agentID, keep); err != nil {
			logger.WithFlow(sess.ID()).Error("Failed to confirm step files", "error", err)
			return
		}
		sess.Untrack(keep...)
	}
}

func (s *bookingFlowService) releaseFiles(ctx context.Context, flowID string, paths []string) {
	if len(paths) == 0 {
		return
	}
	if err := s.files.ReleaseStoredFiles(ctx, paths); err != nil {
		logger.WithFlow(flowID).Error("Failed to release uploads", "count", len(paths), "error", err)
	}
}

func (s *bookingFlowService) advance(sess *BookingSession, next domain.FlowStep) {
	from, to := sess.Advance(next)
	logger.StepTransition(sess.ID(), from.Label(), to.Label())
}
