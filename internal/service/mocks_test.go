package service

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"srm-agent-portal/internal/domain"
)

// MockBookingGateway
type MockBookingGateway struct {
	mock.Mock
}

func (m *MockBookingGateway) CreateCustomer(ctx context.Context, agentID string, details domain.CustomerDetails) (string, error) {
	args := m.Called(ctx, agentID, details)
	return args.String(0), args.Error(1)
}
func (m *MockBookingGateway) GetCustomer(ctx context.Context, agentID, customerID string) (*domain.Customer, error) {
	args := m.Called(ctx, agentID, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}
func (m *MockBookingGateway) AttachCustomerToBooking(ctx context.Context, agentID, customerID, bookingID string) error {
	args := m.Called(ctx, agentID, customerID, bookingID)
	return args.Error(0)
}
func (m *MockBookingGateway) CreateBookingForCustomer(ctx context.Context, agentID, customerID string) (string, error) {
	args := m.Called(ctx, agentID, customerID)
	return args.String(0), args.Error(1)
}
func (m *MockBookingGateway) CreateVehicle(ctx context.Context, agentID string, details domain.VehicleDetails, rates domain.RateTierSet) (string, error) {
	args := m.Called(ctx, agentID, details, rates)
	return args.String(0), args.Error(1)
}
func (m *MockBookingGateway) GetVehicle(ctx context.Context, agentID, vehicleID string) (*domain.Vehicle, error) {
	args := m.Called(ctx, agentID, vehicleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Vehicle), args.Error(1)
}
func (m *MockBookingGateway) AttachVehicleToBooking(ctx context.Context, agentID, vehicleID, bookingID string) error {
	args := m.Called(ctx, agentID, vehicleID, bookingID)
	return args.Error(0)
}
func (m *MockBookingGateway) FinalizeBooking(ctx context.Context, agentID, bookingID string, quote domain.Quote) error {
	args := m.Called(ctx, agentID, bookingID, quote)
	return args.Error(0)
}
func (m *MockBookingGateway) SearchCustomers(ctx context.Context, agentID, query string) ([]domain.SearchResult, error) {
	args := m.Called(ctx, agentID, query)
	return args.Get(0).([]domain.SearchResult), args.Error(1)
}
func (m *MockBookingGateway) SearchVehicles(ctx context.Context, agentID, query string) ([]domain.SearchResult, error) {
	args := m.Called(ctx, agentID, query)
	return args.Get(0).([]domain.SearchResult), args.Error(1)
}

// MockFileService
type MockFileService struct {
	mock.Mock
}

func (m *MockFileService) Upload(ctx context.Context, agentID, flowID, fileName, mimeType string, body io.Reader) (*domain.StoredFile, error) {
	args := m.Called(ctx, agentID, flowID, fileName, mimeType, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StoredFile), args.Error(1)
}
func (m *MockFileService) Open(ctx context.Context, agentID, path string) (io.ReadCloser, *domain.StoredFile, error) {
	args := m.Called(ctx, agentID, path)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(io.ReadCloser), args.Get(1).(*domain.StoredFile), args.Error(2)
}
func (m *MockFileService) DeleteStoredFile(ctx context.Context, agentID, path string) error {
	args := m.Called(ctx, agentID, path)
	return args.Error(0)
}
func (m *MockFileService) ConfirmStoredFiles(ctx context.Context, agentID string, paths []string) error {
	args := m.Called(ctx, agentID, paths)
	return args.Error(0)
}
func (m *MockFileService) ReleaseStoredFiles(ctx context.Context, paths []string) error {
	args := m.Called(ctx, paths)
	return args.Error(0)
}
func (m *MockFileService) ReleaseStale(ctx context.Context, age time.Duration) (int, error) {
	args := m.Called(ctx, age)
	return args.Int(0), args.Error(1)
}
func (m *MockFileService) PurgeReleased(ctx context.Context, grace time.Duration, limit int) (int, error) {
	args := m.Called(ctx, grace, limit)
	return args.Int(0), args.Error(1)
}

// MockEmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendBookingConfirmation(ctx context.Context, to, name string, confirmation BookingConfirmation) error {
	args := m.Called(ctx, to, name, confirmation)
	return args.Error(0)
}

// MockAgentRepo
type MockAgentRepo struct {
	mock.Mock
}

func (m *MockAgentRepo) GetByID(ctx context.Context, id string) (*domain.Agent, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Agent), args.Error(1)
}
func (m *MockAgentRepo) GetByEmail(ctx context.Context, email string) (*domain.Agent, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Agent), args.Error(1)
}

// MockCustomerRepo
type MockCustomerRepo struct {
	mock.Mock
}

func (m *MockCustomerRepo) Create(ctx context.Context, customer *domain.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}
func (m *MockCustomerRepo) GetByID(ctx context.Context, agentID, id string) (*domain.Customer, error) {
	args := m.Called(ctx, agentID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}
func (m *MockCustomerRepo) Update(ctx context.Context, customer *domain.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}
func (m *MockCustomerRepo) Search(ctx context.Context, agentID, query string, limit int) ([]domain.Customer, error) {
	args := m.Called(ctx, agentID, query, limit)
	return args.Get(0).([]domain.Customer), args.Error(1)
}

// MockVehicleRepo
type MockVehicleRepo struct {
	mock.Mock
}

func (m *MockVehicleRepo) Create(ctx context.Context, vehicle *domain.Vehicle) error {
	args := m.Called(ctx, vehicle)
	return args.Error(0)
}
func (m *MockVehicleRepo) GetByID(ctx context.Context, agentID, id string) (*domain.Vehicle, error) {
	args := m.Called(ctx, agentID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Vehicle), args.Error(1)
}
func (m *MockVehicleRepo) Update(ctx context.Context, vehicle *domain.Vehicle) error {
	args := m.Called(ctx, vehicle)
	return args.Error(0)
}
func (m *MockVehicleRepo) Search(ctx context.Context, agentID, query string, limit int) ([]domain.Vehicle, error) {
	args := m.Called(ctx, agentID, query, limit)
	return args.Get(0).([]domain.Vehicle), args.Error(1)
}

// MockBookingRepo
type MockBookingRepo struct {
	mock.Mock
}

func (m *MockBookingRepo) Create(ctx context.Context, booking *domain.Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}
func (m *MockBookingRepo) GetByID(ctx context.Context, agentID, id string) (*domain.Booking, error) {
	args := m.Called(ctx, agentID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}
func (m *MockBookingRepo) AttachCustomer(ctx context.Context, agentID, bookingID, customerID string) error {
	args := m.Called(ctx, agentID, bookingID, customerID)
	return args.Error(0)
}
func (m *MockBookingRepo) AttachVehicle(ctx context.Context, agentID, bookingID, vehicleID string) error {
	args := m.Called(ctx, agentID, bookingID, vehicleID)
	return args.Error(0)
}
func (m *MockBookingRepo) Finalize(ctx context.Context, agentID, bookingID string, quote *domain.Quote) error {
	args := m.Called(ctx, agentID, bookingID, quote)
	return args.Error(0)
}

// MockStoredFileRepo
type MockStoredFileRepo struct {
	mock.Mock
}

func (m *MockStoredFileRepo) Create(ctx context.Context, file *domain.StoredFile) error {
	args := m.Called(ctx, file)
	return args.Error(0)
}
func (m *MockStoredFileRepo) GetByPath(ctx context.Context, path string) (*domain.StoredFile, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StoredFile), args.Error(1)
}
func (m *MockStoredFileRepo) MarkConfirmed(ctx context.Context, paths []string) error {
	args := m.Called(ctx, paths)
	return args.Error(0)
}
func (m *MockStoredFileRepo) MarkPendingDeletion(ctx context.Context, paths []string) error {
	args := m.Called(ctx, paths)
	return args.Error(0)
}
func (m *MockStoredFileRepo) ReleaseStale(ctx context.Context, olderThan time.Time) (int64, error) {
	args := m.Called(ctx, olderThan)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockStoredFileRepo) MarkDeleted(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockStoredFileRepo) ListPendingDeletion(ctx context.Context, olderThan time.Time, limit int) ([]domain.StoredFile, error) {
	args := m.Called(ctx, olderThan, limit)
	return args.Get(0).([]domain.StoredFile), args.Error(1)
}
