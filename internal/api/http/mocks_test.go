package http

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"srm-agent-portal/internal/domain"
	"srm-agent-portal/internal/service"
)

// MockBookingFlowService
type MockBookingFlowService struct {
	mock.Mock
}

func (m *MockBookingFlowService) StartFlow(ctx context.Context, agentID string) (*service.FlowState, error) {
	args := m.Called(ctx, agentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.FlowState), args.Error(1)
}
func (m *MockBookingFlowService) State(ctx context.Context, agentID, flowID string) (*service.FlowState, error) {
	args := m.Called(ctx, agentID, flowID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.FlowState), args.Error(1)
}
func (m *MockBookingFlowService) SubmitCustomer(ctx context.Context, agentID, flowID string, sub service.CustomerSubmission) (*service.CustomerStepResult, error) {
	args := m.Called(ctx, agentID, flowID, sub)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CustomerStepResult), args.Error(1)
}
func (m *MockBookingFlowService) SubmitVehicle(ctx context.Context, agentID, flowID string, sub service.VehicleSubmission) (*service.VehicleStepResult, error) {
	args := m.Called(ctx, agentID, flowID, sub)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.VehicleStepResult), args.Error(1)
}
func (m *MockBookingFlowService) PreviewQuote(ctx context.Context, agentID, flowID string, in service.PaymentInput) (*service.QuotePreview, error) {
	args := m.Called(ctx, agentID, flowID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.QuotePreview), args.Error(1)
}
func (m *MockBookingFlowService) SubmitPayment(ctx context.Context, agentID, flowID string, in service.PaymentInput) (*service.PaymentResult, error) {
	args := m.Called(ctx, agentID, flowID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PaymentResult), args.Error(1)
}
func (m *MockBookingFlowService) Abandon(ctx context.Context, agentID, flowID string) error {
	args := m.Called(ctx, agentID, flowID)
	return args.Error(0)
}
func (m *MockBookingFlowService) TrackUpload(ctx context.Context, agentID, flowID, path string) error {
	args := m.Called(ctx, agentID, flowID, path)
	return args.Error(0)
}
func (m *MockBookingFlowService) SearchCustomers(ctx context.Context, agentID, query string) ([]domain.SearchResult, error) {
	args := m.Called(ctx, agentID, query)
	return args.Get(0).([]domain.SearchResult), args.Error(1)
}
func (m *MockBookingFlowService) SearchVehicles(ctx context.Context, agentID, query string) ([]domain.SearchResult, error) {
	args := m.Called(ctx, agentID, query)
	return args.Get(0).([]domain.SearchResult), args.Error(1)
}
func (m *MockBookingFlowService) SweepAbandoned(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
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

// MockAuthService
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*service.LoginResult, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.LoginResult), args.Error(1)
}
