package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"srm-agent-portal/internal/domain"
)

const agentID = "agent-1"

type flowFixture struct {
	svc      BookingFlowService
	registry *SessionRegistry
	gateway  *MockBookingGateway
	files    *MockFileService
	email    *MockEmailService
}

func newFlowFixture() *flowFixture {
	f := &flowFixture{
		registry: NewSessionRegistry(30 * time.Minute),
		gateway:  new(MockBookingGateway),
		files:    new(MockFileService),
		email:    new(MockEmailService),
	}
	f.svc = NewBookingFlowService(f.registry, f.gateway, f.files, f.email, time.UTC)
	return f
}

func (f *flowFixture) start(t *testing.T) string {
	t.Helper()
	state, err := f.svc.StartFlow(context.Background(), agentID)
	require.NoError(t, err)
	assert.Equal(t, domain.FlowStepCustomer, state.Step)
	return state.FlowID
}

// withCustomer runs a successful new-customer step that creates booking book-1.
func (f *flowFixture) withCustomer(t *testing.T, flowID string) {
	t.Helper()
	details := domain.CustomerDetails{FullName: "John Roe", Phone: "+971501111111", Email: "john@example.com"}
	f.gateway.On("CreateCustomer", mock.Anything, agentID, details).Return("cust-1", nil).Once()
	f.gateway.On("CreateBookingForCustomer", mock.Anything, agentID, "cust-1").Return("book-1", nil).Once()

	_, err := f.svc.SubmitCustomer(context.Background(), agentID, flowID, CustomerSubmission{
		TypedValue: "John Roe",
		Details:    details,
	})
	require.NoError(t, err)
}

func dailyRatesInput() domain.RateTierSetInput {
	return domain.RateTierSetInput{Day: domain.RateTierInput{Enabled: true, PriceAmount: "100", UnlimitedMileage: true}}
}

// withVehicle runs a successful new-vehicle step that attaches veh-1 to book-1.
func (f *flowFixture) withVehicle(t *testing.T, flowID string) {
	t.Helper()
	details := domain.VehicleDetails{Make: "Toyota", Model: "Land Cruiser", Year: 2023}
	f.gateway.On("CreateVehicle", mock.Anything, agentID, details, mock.AnythingOfType("domain.RateTierSet")).Return("veh-1", nil).Once()
	f.gateway.On("AttachVehicleToBooking", mock.Anything, agentID, "veh-1", "book-1").Return(nil).Once()

	_, err := f.svc.SubmitVehicle(context.Background(), agentID, flowID, VehicleSubmission{
		TypedValue: "Toyota",
		Details:    details,
		Rates:      dailyRatesInput(),
	})
	require.NoError(t, err)
}

func TestBookingFlowService_SubmitCustomer(t *testing.T) {
	ctx := context.Background()

	t.Run("Selecting an existing customer autofills and never creates", func(t *testing.T) {
		f := newFlowFixture()
		flowID := f.start(t)

		record := &domain.Customer{
			ID:      "cust-9",
			AgentID: agentID,
			CustomerDetails: domain.CustomerDetails{
				FullName:         "Jane Doe",
				Phone:            "+971500000000",
				Nationality:      "AE",
				LicenseNumber:    "DL-778",
				ProfilePhotoPath: "agent-1/f/jane.jpg",
			},
		}
		f.gateway.On("GetCustomer", mock.Anything, agentID, "cust-9").Return(record, nil)
		f.gateway.On("CreateBookingForCustomer", mock.Anything, agentID, "cust-9").Return("book-9", nil)
		f.files.On("ConfirmStoredFiles", mock.Anything, agentID, []string{"agent-1/f/jane.jpg"}).Return(nil)

		res, err := f.svc.SubmitCustomer(ctx, agentID, flowID, CustomerSubmission{
			Selection:  &domain.SearchResult{ID: "cust-9", Label: "Jane Doe"},
			TypedValue: "Jane",
			// client-side values are ignored for an existing record
			Details: domain.CustomerDetails{Nationality: "XX"},
		})
		require.NoError(t, err)

		assert.Equal(t, ResolutionExisting, res.Resolution.Mode)
		assert.Equal(t, "cust-9", res.CustomerID)
		assert.Equal(t, "book-9", res.BookingID)
		assert.Equal(t, "AE", res.Details.Nationality)
		assert.Equal(t, "DL-778", res.Details.LicenseNumber)
		assert.Equal(t, "+971500000000", res.Details.Phone)
		assert.Equal(t, domain.FlowStepVehicle, res.State.Step)
		f.gateway.AssertNotCalled(t, "CreateCustomer", mock.Anything, mock.Anything, mock.Anything)
		f.files.AssertExpectations(t)
	})

	t.Run("Re-submitting attaches to the existing booking", func(t *testing.T) {
		f := newFlowFixture()
		flowID := f.start(t)
		f.withCustomer(t, flowID)

		record := &domain.Customer{ID: "cust-9", CustomerDetails: domain.CustomerDetails{FullName: "Jane Doe", Phone: "1"}}
		f.gateway.On("GetCustomer", mock.Anything, agentID, "cust-9").Return(record, nil)
		f.gateway.On("AttachCustomerToBooking", mock.Anything, agentID, "cust-9", "book-1").Return(nil)

		res, err := f.svc.SubmitCustomer(ctx, agentID, flowID, CustomerSubmission{Selection: &domain.SearchResult{ID: "cust-9"}})
		require.NoError(t, err)
		assert.Equal(t, "book-1", res.BookingID)
		assert.Equal(t, "cust-9", res.State.CustomerID)
		f.gateway.AssertNumberOfCalls(t, "CreateBookingForCustomer", 1)
	})

	t.Run("Nothing selected or typed", func(t *testing.T) {
		f := newFlowFixture()
		flowID := f.start(t)

		_, err := f.svc.SubmitCustomer(ctx, agentID, flowID, CustomerSubmission{})
		assert.Contains(t, fieldErrors(t, err), "customer")
		f.gateway.AssertNotCalled(t, "CreateCustomer", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("New customer validation", func(t *testing.T) {
		f := newFlowFixture()
		flowID := f.start(t)

		_, err := f.svc.SubmitCustomer(ctx, agentID, flowID, CustomerSubmission{
			TypedValue: "John",
			Details:    domain.CustomerDetails{Email: "not-an-email"},
		})
		fields := fieldErrors(t, err)
		assert.NotContains(t, fields, "details.full_name")
		assert.Contains(t, fields, "details.phone")
		assert.Contains(t, fields, "details.email")
	})

	t.Run("Selected customer no longer exists", func(t *testing.T) {
		f := newFlowFixture()
		flowID := f.start(t)
		f.gateway.On("GetCustomer", mock.Anything, agentID, "gone").
			Return(nil, &domain.RemoteCallError{Operation: "getCustomer", Err: domain.ErrNotFound})

		_, err := f.svc.SubmitCustomer(ctx, agentID, flowID, CustomerSubmission{Selection: &domain.SearchResult{ID: "gone"}})
		assert.Contains(t, fieldErrors(t, err), "selection")
	})

	t.Run("Remote failure keeps the step and skips file deletion", func(t *testing.T) {
		f := newFlowFixture()
		flowID := f.start(t)
		remoteErr := &domain.RemoteCallError{Operation: "createCustomer", Err: errors.New("connection refused")}
		f.gateway.On("CreateCustomer", mock.Anything, agentID, mock.Anything).Return("", remoteErr)

		_, err := f.svc.SubmitCustomer(ctx, agentID, flowID, CustomerSubmission{
			TypedValue:     "John",
			Details:        domain.CustomerDetails{Phone: "1", ProfilePhotoPath: "new.jpg"},
			DiscardedFiles: []string{"old.jpg"},
		})
		var rce *domain.RemoteCallError
		require.True(t, errors.As(err, &rce))
		assert.Equal(t, "createCustomer", rce.Operation)

		state, err := f.svc.State(ctx, agentID, flowID)
		require.NoError(t, err)
		assert.Equal(t, domain.FlowStepCustomer, state.Step)
		assert.Empty(t, state.BookingID)
		f.files.AssertNotCalled(t, "DeleteStoredFile", mock.Anything, mock.Anything, mock.Anything)
		f.files.AssertNotCalled(t, "ConfirmStoredFiles", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Retry after booking failure reuses the created customer", func(t *testing.T) {
		f := newFlowFixture()
		flowID := f.start(t)
		details := domain.CustomerDetails{FullName: "John Roe", Phone: "+971501111111"}
		sub := CustomerSubmission{TypedValue: "John Roe", Details: details}

		f.gateway.On("CreateCustomer", mock.Anything, agentID, details).Return("cust-1", nil).Once()
		f.gateway.On("CreateBookingForCustomer", mock.Anything, agentID, "cust-1").
			Return("", &domain.RemoteCallError{Operation: "createBookingForCustomer", Err: errors.New("timeout")}).Once()
		_, err := f.svc.SubmitCustomer(ctx, agentID, flowID, sub)
		require.Error(t, err)

		f.gateway.On("CreateBookingForCustomer", mock.Anything, agentID, "cust-1").Return("book-1", nil).Once()
		res, err := f.svc.SubmitCustomer(ctx, agentID, flowID, sub)
		require.NoError(t, err)
		assert.Equal(t, "cust-1", res.CustomerID)
		assert.Equal(t, "book-1", res.BookingID)
		f.gateway.AssertNumberOfCalls(t, "CreateCustomer", 1)
	})

	t.Run("Retry with edited details creates a new customer", func(t *testing.T) {
		f := newFlowFixture()
		flowID := f.start(t)
		first := domain.CustomerDetails{FullName: "John Roe", Phone: "+971501111111"}
		edited := domain.CustomerDetails{FullName: "John Roe", Phone: "+971502222222"}

		f.gateway.On("CreateCustomer", mock.Anything, agentID, first).Return("cust-1", nil).Once()
		f.gateway.On("CreateBookingForCustomer", mock.Anything, agentID, "cust-1").
			Return("", &domain.RemoteCallError{Operation: "createBookingForCustomer", Err: errors.New("timeout")}).Once()
		_, err := f.svc.SubmitCustomer(ctx, agentID, flowID, CustomerSubmission{TypedValue: "John Roe", Details: first})
		require.Error(t, err)

		f.gateway.On("CreateCustomer", mock.Anything, agentID, edited).Return("cust-2", nil).Once()
		f.gateway.On("CreateBookingForCustomer", mock.Anything, agentID, "cust-2").Return("book-2", nil).Once()
		res, err := f.svc.SubmitCustomer(ctx, agentID, flowID, CustomerSubmission{TypedValue: "John Roe", Details: edited})
		require.NoError(t, err)
		assert.Equal(t, "cust-2", res.CustomerID)
	})

	t.Run("Success deletes discarded files and confirms the kept one", func(t *testing.T) {
		f := newFlowFixture()
		flowID := f.start(t)
		details := domain.CustomerDetails{FullName: "John", Phone: "1", ProfilePhotoPath: "new.jpg"}
		f.gateway.On("CreateCustomer", mock.Anything, agentID, details).Return("cust-1", nil)
		f.gateway.On("CreateBookingForCustomer", mock.Anything, agentID, "cust-1").Return("book-1", nil)
		f.files.On("DeleteStoredFile", mock.Anything, agentID, "old.jpg").Return(nil)
		f.files.On("ConfirmStoredFiles", mock.Anything, agentID, []string{"new.jpg"}).Return(nil)

		require.NoError(t, f.svc.TrackUpload(ctx, agentID, flowID, "old.jpg"))
		require.NoError(t, f.svc.TrackUpload(ctx, agentID, flowID, "new.jpg"))

		res, err := f.svc.SubmitCustomer(ctx, agentID, flowID, CustomerSubmission{
			TypedValue:     "John",
			Details:        details,
			DiscardedFiles: []string{"old.jpg", "new.jpg"},
		})
		require.NoError(t, err)
		assert.Equal(t, 0, res.State.PendingUploads)
		f.files.AssertExpectations(t)
		f.files.AssertNotCalled(t, "DeleteStoredFile", mock.Anything, agentID, "new.jpg")
	})

	t.Run("Other agents cannot submit", func(t *testing.T) {
		f := newFlowFixture()
		flowID := f.start(t)
		_, err := f.svc.SubmitCustomer(ctx, "agent-2", flowID, CustomerSubmission{TypedValue: "x"})
		assert.ErrorIs(t, err, domain.ErrFlowNotFound)
	})
}

func TestBookingFlowService_SubmitVehicle(t *testing.T) {
	ctx := context.Background()

	t.Run("Before the customer step", func(t *testing.T) {
		f := newFlowFixture()
		flowID := f.start(t)

		_, err := f.svc.SubmitVehicle(ctx, agentID, flowID, VehicleSubmission{TypedValue: "Toyota"})
		assert.Equal(t, domain.FlowStepCustomer, missingStep(t, err))
		f.gateway.AssertNotCalled(t, "CreateVehicle", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("New vehicle field and rate errors together", func(t *testing.T) {
		f := newFlowFixture()
		flowID := f.start(t)
		f.withCustomer(t, flowID)

		_, err := f.svc.SubmitVehicle(ctx, agentID, flowID, VehicleSubmission{
			TypedValue: "Toyota",
			Details:    domain.VehicleDetails{Year: 1900},
		})
		fields := fieldErrors(t, err)
		assert.Contains(t, fields, "details.make")
		assert.Contains(t, fields, "details.model")
		assert.Contains(t, fields, "details.year")
		assert.Contains(t, fields, "rates")

		state, _ := f.svc.State(ctx, agentID, flowID)
		assert.Equal(t, domain.FlowStepVehicle, state.Step)
	})

	t.Run("Existing vehicle uses stored rates", func(t *testing.T) {
		f := newFlowFixture()
		flowID := f.start(t)
		f.withCustomer(t, flowID)

		record := &domain.Vehicle{
			ID:             "veh-7",
			VehicleDetails: domain.VehicleDetails{Make: "Nissan", Model: "Patrol", PhotoPaths: []string{"p1.jpg"}},
			Rates:          dayRates(),
		}
		f.gateway.On("GetVehicle", mock.Anything, agentID, "veh-7").Return(record, nil)
		f.gateway.On("AttachVehicleToBooking", mock.Anything, agentID, "veh-7", "book-1").Return(nil)
		f.files.On("ConfirmStoredFiles", mock.Anything, agentID, []string{"p1.jpg"}).Return(nil)

		res, err := f.svc.SubmitVehicle(ctx, agentID, flowID, VehicleSubmission{
			Selection: &domain.SearchResult{ID: "veh-7"},
			// ignored in favour of the stored record
			Rates: domain.RateTierSetInput{Hour: domain.RateTierInput{Enabled: true, PriceAmount: "1"}},
		})
		require.NoError(t, err)
		assert.Equal(t, "veh-7", res.VehicleID)
		assert.False(t, res.Rates.Hour.Enabled)
		assert.Equal(t, "100", res.Rates.Day.PriceAmount.String())
		assert.Equal(t, domain.FlowStepPayment, res.State.Step)
		require.NotNil(t, res.State.Rates)
		f.gateway.AssertNotCalled(t, "CreateVehicle", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Attach failure keeps the step", func(t *testing.T) {
		f := newFlowFixture()
		flowID := f.start(t)
		f.withCustomer(t, flowID)

		f.gateway.On("CreateVehicle", mock.Anything, agentID, mock.Anything, mock.Anything).Return("veh-1", nil)
		f.gateway.On("AttachVehicleToBooking", mock.Anything, agentID, "veh-1", "book-1").
			Return(&domain.RemoteCallError{Operation: "attachVehicleToBooking", Err: errors.New("timeout")})

		_, err := f.svc.SubmitVehicle(ctx, agentID, flowID, VehicleSubmission{
			TypedValue: "Toyota",
			Details:    domain.VehicleDetails{Make: "Toyota", Model: "Yaris"},
			Rates:      dailyRatesInput(),
		})
		var rce *domain.RemoteCallError
		require.True(t, errors.As(err, &rce))

		state, _ := f.svc.State(ctx, agentID, flowID)
		assert.Equal(t, domain.FlowStepVehicle, state.Step)
		assert.Empty(t, state.VehicleID)
	})

	t.Run("Retry after attach failure reuses the created vehicle", func(t *testing.T) {
		f := newFlowFixture()
		flowID := f.start(t)
		f.withCustomer(t, flowID)
		sub := VehicleSubmission{
			TypedValue: "Toyota",
			Details:    domain.VehicleDetails{Make: "Toyota", Model: "Yaris", PhotoPaths: []string{}},
			Rates:      dailyRatesInput(),
		}

		f.gateway.On("CreateVehicle", mock.Anything, agentID, sub.Details, mock.AnythingOfType("domain.RateTierSet")).Return("veh-1", nil).Once()
		f.gateway.On("AttachVehicleToBooking", mock.Anything, agentID, "veh-1", "book-1").
			Return(&domain.RemoteCallError{Operation: "attachVehicleToBooking", Err: errors.New("timeout")}).Once()
		_, err := f.svc.SubmitVehicle(ctx, agentID, flowID, sub)
		require.Error(t, err)

		f.gateway.On("AttachVehicleToBooking", mock.Anything, agentID, "veh-1", "book-1").Return(nil).Once()
		res, err := f.svc.SubmitVehicle(ctx, agentID, flowID, sub)
		require.NoError(t, err)
		assert.Equal(t, "veh-1", res.VehicleID)
		assert.Equal(t, domain.FlowStepPayment, res.State.Step)
		f.gateway.AssertNumberOfCalls(t, "CreateVehicle", 1)
	})

	t.Run("Retry with changed rates creates a new vehicle", func(t *testing.T) {
		f := newFlowFixture()
		flowID := f.start(t)
		f.withCustomer(t, flowID)
		details := domain.VehicleDetails{Make: "Toyota", Model: "Yaris"}

		f.gateway.On("CreateVehicle", mock.Anything, agentID, details, mock.AnythingOfType("domain.RateTierSet")).Return("veh-1", nil).Once()
		f.gateway.On("AttachVehicleToBooking", mock.Anything, agentID, "veh-1", "book-1").
			Return(&domain.RemoteCallError{Operation: "attachVehicleToBooking", Err: errors.New("timeout")}).Once()
		_, err := f.svc.SubmitVehicle(ctx, agentID, flowID, VehicleSubmission{TypedValue: "Toyota", Details: details, Rates: dailyRatesInput()})
		require.Error(t, err)

		cheaper := domain.RateTierSetInput{Day: domain.RateTierInput{Enabled: true, PriceAmount: "80", UnlimitedMileage: true}}
		f.gateway.On("CreateVehicle", mock.Anything, agentID, details, mock.AnythingOfType("domain.RateTierSet")).Return("veh-2", nil).Once()
		f.gateway.On("AttachVehicleToBooking", mock.Anything, agentID, "veh-2", "book-1").Return(nil).Once()
		res, err := f.svc.SubmitVehicle(ctx, agentID, flowID, VehicleSubmission{TypedValue: "Toyota", Details: details, Rates: cheaper})
		require.NoError(t, err)
		assert.Equal(t, "veh-2", res.VehicleID)
		f.gateway.AssertNumberOfCalls(t, "CreateVehicle", 2)
	})
}

func TestBookingFlowService_Payment(t *testing.T) {
	ctx := context.Background()
	payment := PaymentInput{StartAt: "2024-03-01T09:00", EndAt: "2024-03-04T09:00", AdvanceAmount: "50"}

	t.Run("Before the vehicle step", func(t *testing.T) {
		f := newFlowFixture()
		flowID := f.start(t)
		f.withCustomer(t, flowID)

		_, err := f.svc.SubmitPayment(ctx, agentID, flowID, payment)
		assert.Equal(t, domain.FlowStepVehicle, missingStep(t, err))

		_, err = f.svc.PreviewQuote(ctx, agentID, flowID, payment)
		assert.Equal(t, domain.FlowStepVehicle, missingStep(t, err))
		f.gateway.AssertNotCalled(t, "FinalizeBooking", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Preview", func(t *testing.T) {
		f := newFlowFixture()
		flowID := f.start(t)
		f.withCustomer(t, flowID)
		f.withVehicle(t, flowID)

		preview, err := f.svc.PreviewQuote(ctx, agentID, flowID, payment)
		require.NoError(t, err)
		require.True(t, preview.Available)
		assert.Equal(t, "300", preview.Quote.BaseRentalAmount.String())
		assert.Equal(t, "250", preview.Quote.RemainingAmount.String())

		preview, err = f.svc.PreviewQuote(ctx, agentID, flowID, PaymentInput{StartAt: payment.EndAt, EndAt: payment.StartAt})
		require.NoError(t, err)
		assert.False(t, preview.Available)
		assert.Equal(t, domain.CalculationInvalidRange, preview.Code)
		assert.Nil(t, preview.Quote)
	})

	t.Run("Full flow finalizes and emails the customer", func(t *testing.T) {
		f := newFlowFixture()
		flowID := f.start(t)
		f.withCustomer(t, flowID)
		f.withVehicle(t, flowID)
		require.NoError(t, f.svc.TrackUpload(ctx, agentID, flowID, "stray.jpg"))

		f.gateway.On("FinalizeBooking", mock.Anything, agentID, "book-1", mock.MatchedBy(func(q domain.Quote) bool {
			return q.BaseRentalAmount.String() == "300" && q.AdvanceAmount.String() == "50"
		})).Return(nil)
		f.gateway.On("GetCustomer", mock.Anything, agentID, "cust-1").
			Return(&domain.Customer{ID: "cust-1", CustomerDetails: domain.CustomerDetails{FullName: "John Roe", Email: "john@example.com"}}, nil)
		f.gateway.On("GetVehicle", mock.Anything, agentID, "veh-1").
			Return(&domain.Vehicle{ID: "veh-1", VehicleDetails: domain.VehicleDetails{Make: "Toyota", Model: "Land Cruiser"}}, nil)
		f.email.On("SendBookingConfirmation", mock.Anything, "john@example.com", "John Roe", mock.MatchedBy(func(c BookingConfirmation) bool {
			return c.BookingID == "book-1" && c.VehicleLabel == "Toyota Land Cruiser"
		})).Return(nil)
		f.files.On("ReleaseStoredFiles", mock.Anything, []string{"stray.jpg"}).Return(nil)

		res, err := f.svc.SubmitPayment(ctx, agentID, flowID, payment)
		require.NoError(t, err)
		assert.Equal(t, "book-1", res.BookingID)
		assert.Equal(t, "250", res.Quote.RemainingAmount.String())
		assert.Equal(t, domain.FlowStepCompleted, res.State.Step)
		assert.Empty(t, res.State.BookingID)

		f.gateway.AssertExpectations(t)
		f.email.AssertExpectations(t)
		f.files.AssertExpectations(t)

		t.Run("Completed flow rejects further steps", func(t *testing.T) {
			_, err := f.svc.SubmitPayment(ctx, agentID, flowID, payment)
			assert.ErrorIs(t, err, domain.ErrFlowCompleted)
			_, err = f.svc.SubmitCustomer(ctx, agentID, flowID, CustomerSubmission{TypedValue: "x"})
			assert.ErrorIs(t, err, domain.ErrFlowCompleted)
			assert.ErrorIs(t, f.svc.TrackUpload(ctx, agentID, flowID, "late.jpg"), domain.ErrFlowCompleted)
		})
	})

	t.Run("Email failure does not fail the payment", func(t *testing.T) {
		f := newFlowFixture()
		flowID := f.start(t)
		f.withCustomer(t, flowID)
		f.withVehicle(t, flowID)

		f.gateway.On("FinalizeBooking", mock.Anything, agentID, "book-1", mock.Anything).Return(nil)
		f.gateway.On("GetCustomer", mock.Anything, agentID, "cust-1").
			Return(&domain.Customer{ID: "cust-1", CustomerDetails: domain.CustomerDetails{FullName: "John Roe", Email: "john@example.com"}}, nil)
		f.gateway.On("GetVehicle", mock.Anything, agentID, "veh-1").Return(nil, errors.New("down"))
		f.email.On("SendBookingConfirmation", mock.Anything, "john@example.com", "John Roe", mock.Anything).Return(errors.New("smtp down"))

		_, err := f.svc.SubmitPayment(ctx, agentID, flowID, payment)
		require.NoError(t, err)
	})

	t.Run("Finalize failure keeps the context for retry", func(t *testing.T) {
		f := newFlowFixture()
		flowID := f.start(t)
		f.withCustomer(t, flowID)
		f.withVehicle(t, flowID)

		f.gateway.On("FinalizeBooking", mock.Anything, agentID, "book-1", mock.Anything).
			Return(&domain.RemoteCallError{Operation: "finalizeBooking", Err: errors.New("503")}).Once()

		_, err := f.svc.SubmitPayment(ctx, agentID, flowID, payment)
		require.Error(t, err)

		state, _ := f.svc.State(ctx, agentID, flowID)
		assert.Equal(t, domain.FlowStepPayment, state.Step)
		assert.Equal(t, "book-1", state.BookingID)
		f.email.AssertNotCalled(t, "SendBookingConfirmation", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Invalid payment fields", func(t *testing.T) {
		f := newFlowFixture()
		flowID := f.start(t)
		f.withCustomer(t, flowID)
		f.withVehicle(t, flowID)

		_, err := f.svc.SubmitPayment(ctx, agentID, flowID, PaymentInput{StartAt: payment.StartAt, EndAt: payment.EndAt, AdvanceAmount: "1000"})
		assert.Contains(t, fieldErrors(t, err), "advance_amount")
	})
}

func TestBookingFlowService_Abandon(t *testing.T) {
	ctx := context.Background()
	f := newFlowFixture()
	flowID := f.start(t)
	f.withCustomer(t, flowID)
	require.NoError(t, f.svc.TrackUpload(ctx, agentID, flowID, "a.jpg"))

	f.files.On("ReleaseStoredFiles", mock.Anything, []string{"a.jpg"}).Return(nil)

	require.NoError(t, f.svc.Abandon(ctx, agentID, flowID))
	f.files.AssertExpectations(t)

	_, err := f.svc.State(ctx, agentID, flowID)
	assert.ErrorIs(t, err, domain.ErrFlowNotFound)
	assert.ErrorIs(t, f.svc.Abandon(ctx, agentID, flowID), domain.ErrFlowNotFound)
}

func TestBookingFlowService_SweepAbandoned(t *testing.T) {
	ctx := context.Background()
	f := newFlowFixture()
	clock := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	f.registry.now = func() time.Time { return clock }

	idle := f.start(t)
	require.NoError(t, f.svc.TrackUpload(ctx, agentID, idle, "idle.jpg"))

	clock = clock.Add(25 * time.Minute)
	active := f.start(t)

	clock = clock.Add(10 * time.Minute)
	f.files.On("ReleaseStoredFiles", mock.Anything, []string{"idle.jpg"}).Return(nil)

	n, err := f.svc.SweepAbandoned(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	f.files.AssertExpectations(t)

	_, err = f.svc.State(ctx, agentID, idle)
	assert.ErrorIs(t, err, domain.ErrFlowNotFound)
	_, err = f.svc.State(ctx, agentID, active)
	assert.NoError(t, err)
}

func TestBookingFlowService_Search(t *testing.T) {
	f := newFlowFixture()
	hits := []domain.SearchResult{{ID: "cust-9", Label: "Jane Doe"}}
	f.gateway.On("SearchCustomers", mock.Anything, agentID, "jan").Return(hits, nil)

	got, err := f.svc.SearchCustomers(context.Background(), agentID, "jan")
	require.NoError(t, err)
	assert.Equal(t, hits, got)
}
