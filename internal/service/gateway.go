package service

import (
	"context"
	"strings"

	"srm-agent-portal/internal/domain"
	"srm-agent-portal/internal/logger"
	"srm-agent-portal/internal/repository"
)

const searchResultLimit = 20

type bookingGateway struct {
	customers repository.CustomerRepository
	vehicles  repository.VehicleRepository
	bookings  repository.BookingRepository
}

func NewBookingGateway(customers repository.CustomerRepository, vehicles repository.VehicleRepository, bookings repository.BookingRepository) BookingGateway {
	return &bookingGateway{
		customers: customers,
		vehicles:  vehicles,
		bookings:  bookings,
	}
}

func remote(operation string, err error) error {
	if err == nil {
		return nil
	}
	return &domain.RemoteCallError{Operation: operation, Err: err}
}

func (g *bookingGateway) CreateCustomer(ctx context.Context, agentID string, details domain.CustomerDetails) (string, error) {
	c := &domain.Customer{AgentID: agentID, CustomerDetails: details}
	if err := g.customers.Create(ctx, c); err != nil {
		return "", remote("createCustomer", err)
	}
	return c.ID, nil
}

func (g *bookingGateway) GetCustomer(ctx context.Context, agentID, customerID string) (*domain.Customer, error) {
	c, err := g.customers.GetByID(ctx, agentID, customerID)
	if err != nil {
		return nil, remote("getCustomer", err)
	}
	return c, nil
}

func (g *bookingGateway) AttachCustomerToBooking(ctx context.Context, agentID, customerID, bookingID string) error {
	return remote("attachCustomerToBooking", g.bookings.AttachCustomer(ctx, agentID, bookingID, customerID))
}

func (g *bookingGateway) CreateBookingForCustomer(ctx context.Context, agentID, customerID string) (string, error) {
	b := &domain.Booking{AgentID: agentID, CustomerID: customerID, Status: domain.BookingStatusDraft}
	if err := g.bookings.Create(ctx, b); err != nil {
		return "", remote("createBookingForCustomer", err)
	}
	return b.ID, nil
}

func (g *bookingGateway) CreateVehicle(ctx context.Context, agentID string, details domain.VehicleDetails, rates domain.RateTierSet) (string, error) {
	v := &domain.Vehicle{AgentID: agentID, VehicleDetails: details, Rates: rates}
	if err := g.vehicles.Create(ctx, v); err != nil {
		return "", remote("createVehicle", err)
	}
	return v.ID, nil
}

func (g *bookingGateway) GetVehicle(ctx context.Context, agentID, vehicleID string) (*domain.Vehicle, error) {
	v, err := g.vehicles.GetByID(ctx, agentID, vehicleID)
	if err != nil {
		return nil, remote("getVehicle", err)
	}
	return v, nil
}

func (g *bookingGateway) AttachVehicleToBooking(ctx context.Context, agentID, vehicleID, bookingID string) error {
	return remote("attachVehicleToBooking", g.bookings.AttachVehicle(ctx, agentID, bookingID, vehicleID))
}

func (g *bookingGateway) FinalizeBooking(ctx context.Context, agentID, bookingID string, quote domain.Quote) error {
	return remote("finalizeBooking", g.bookings.Finalize(ctx, agentID, bookingID, &quote))
}

func (g *bookingGateway) SearchCustomers(ctx context.Context, agentID, query string) ([]domain.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.SearchResult{}, nil
	}
	customers, err := g.customers.Search(ctx, agentID, query, searchResultLimit)
	if err != nil {
		return nil, remote("searchCustomers", err)
	}
	results := make([]domain.SearchResult, 0, len(customers))
	for i := range customers {
		results = append(results, customers[i].SearchResult())
	}
	logger.Debug("Customer search", "agentID", agentID, "query", query, "hits", len(results))
	return results, nil
}

func (g *bookingGateway) SearchVehicles(ctx context.Context, agentID, query string) ([]domain.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.SearchResult{}, nil
	}
	vehicles, err := g.vehicles.Search(ctx, agentID, query, searchResultLimit)
	if err != nil {
		return nil, remote("searchVehicles", err)
	}
	results := make([]domain.SearchResult, 0, len(vehicles))
	for i := range vehicles {
		results = append(results, vehicles[i].SearchResult())
	}
	logger.Debug("Vehicle search", "agentID", agentID, "query", query, "hits", len(results))
	return results, nil
}
