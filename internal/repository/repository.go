package repository

import (
	"context"
	"time"

	"srm-agent-portal/internal/domain"
)

type AgentRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Agent, error)
	GetByEmail(ctx context.Context, email string) (*domain.Agent, error)
}

type CustomerRepository interface {
	Create(ctx context.Context, customer *domain.Customer) error
	GetByID(ctx context.Context, agentID, id string) (*domain.Customer, error)
	Update(ctx context.Context, customer *domain.Customer) error
	Search(ctx context.Context, agentID, query string, limit int) ([]domain.Customer, error)
}

type VehicleRepository interface {
	Create(ctx context.Context, vehicle *domain.Vehicle) error
	GetByID(ctx context.Context, agentID, id string) (*domain.Vehicle, error)
	Update(ctx context.Context, vehicle *domain.Vehicle) error
	Search(ctx context.Context, agentID, query string, limit int) ([]domain.Vehicle, error)
}

type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, agentID, id string) (*domain.Booking, error)
	AttachCustomer(ctx context.Context, agentID, bookingID, customerID string) error
	AttachVehicle(ctx context.Context, agentID, bookingID, vehicleID string) error
	Finalize(ctx context.Context, agentID, bookingID string, quote *domain.Quote) error
}

type StoredFileRepository interface {
	Create(ctx context.Context, file *domain.StoredFile) error
	GetByPath(ctx context.Context, path string) (*domain.StoredFile, error)
	MarkConfirmed(ctx context.Context, paths []string) error
	MarkPendingDeletion(ctx context.Context, paths []string) error
	ReleaseStale(ctx context.Context, olderThan time.Time) (int64, error)
	MarkDeleted(ctx context.Context, id string) error
	ListPendingDeletion(ctx context.Context, olderThan time.Time, limit int) ([]domain.StoredFile, error)
}
