package service

import (
	"context"
	"io"
	"time"

	"srm-agent-portal/internal/domain"
)

type AuthService interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
}

// BookingGateway is the create/attach collaborator behind the booking flow.
// Every failure comes back as a *domain.RemoteCallError.
type BookingGateway interface {
	CreateCustomer(ctx context.Context, agentID string, details domain.CustomerDetails) (string, error)
	GetCustomer(ctx context.Context, agentID, customerID string) (*domain.Customer, error)
	AttachCustomerToBooking(ctx context.Context, agentID, customerID, bookingID string) error
	CreateBookingForCustomer(ctx context.Context, agentID, customerID string) (string, error)
	CreateVehicle(ctx context.Context, agentID string, details domain.VehicleDetails, rates domain.RateTierSet) (string, error)
	GetVehicle(ctx context.Context, agentID, vehicleID string) (*domain.Vehicle, error)
	AttachVehicleToBooking(ctx context.Context, agentID, vehicleID, bookingID string) error
	FinalizeBooking(ctx context.Context, agentID, bookingID string, quote domain.Quote) error
	SearchCustomers(ctx context.Context, agentID, query string) ([]domain.SearchResult, error)
	SearchVehicles(ctx context.Context, agentID, query string) ([]domain.SearchResult, error)
}

type FileService interface {
	Upload(ctx context.Context, agentID, flowID, fileName, mimeType string, body io.Reader) (*domain.StoredFile, error)
	Open(ctx context.Context, agentID, path string) (io.ReadCloser, *domain.StoredFile, error)
	DeleteStoredFile(ctx context.Context, agentID, path string) error
	ConfirmStoredFiles(ctx context.Context, agentID string, paths []string) error
	ReleaseStoredFiles(ctx context.Context, paths []string) error
	ReleaseStale(ctx context.Context, age time.Duration) (int, error)
	PurgeReleased(ctx context.Context, grace time.Duration, limit int) (int, error)
}

type BookingFlowService interface {
	StartFlow(ctx context.Context, agentID string) (*FlowState, error)
	State(ctx context.Context, agentID, flowID string) (*FlowState, error)
	SubmitCustomer(ctx context.Context, agentID, flowID string, sub CustomerSubmission) (*CustomerStepResult, error)
	SubmitVehicle(ctx context.Context, agentID, flowID string, sub VehicleSubmission) (*VehicleStepResult, error)
	PreviewQuote(ctx context.Context, agentID, flowID string, in PaymentInput) (*QuotePreview, error)
	SubmitPayment(ctx context.Context, agentID, flowID string, in PaymentInput) (*PaymentResult, error)
	Abandon(ctx context.Context, agentID, flowID string) error
	TrackUpload(ctx context.Context, agentID, flowID, path string) error
	SearchCustomers(ctx context.Context, agentID, query string) ([]domain.SearchResult, error)
	SearchVehicles(ctx context.Context, agentID, query string) ([]domain.SearchResult, error)
	SweepAbandoned(ctx context.Context) (int, error)
}

type EmailService interface {
	SendBookingConfirmation(ctx context.Context, to, name string, confirmation BookingConfirmation) error
}
