package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"srm-agent-portal/internal/domain"
	"srm-agent-portal/internal/logger"
	"srm-agent-portal/internal/repository"
)

type bookingRepository struct {
	db *sql.DB
}

func NewBookingRepository(db *sql.DB) repository.BookingRepository {
	return &bookingRepository{db: db}
}

func (r *bookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	logger.EnterMethod("bookingRepository.Create", "agentID", b.AgentID, "customerID", b.CustomerID)

	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.Status == "" {
		b.Status = domain.BookingStatusDraft
	}
	now := time.Now().UTC()
	b.CreatedOn = now
	b.UpdatedOn = now

	query := `INSERT INTO bookings (id, agent_id, customer_id, vehicle_id, status, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`
	logger.DatabaseCall("INSERT", query, "bookingID", b.ID)

	res, err := r.db.ExecContext(ctx, query, b.ID, b.AgentID, b.CustomerID, b.VehicleID, b.Status, b.CreatedOn, b.UpdatedOn)
	if err != nil {
		logger.DatabaseResult("INSERT", 0, err)
		logger.ExitMethodWithError("bookingRepository.Create", err, "bookingID", b.ID)
		return err
	}
	n, _ := res.RowsAffected()
	logger.DatabaseResult("INSERT", n, nil)

	logger.ExitMethod("bookingRepository.Create", "bookingID", b.ID)
	return nil
}

func (r *bookingRepository) GetByID(ctx context.Context, agentID, id string) (*domain.Booking, error) {
	logger.EnterMethod("bookingRepository.GetByID", "agentID", agentID, "bookingID", id)

	query := `SELECT id, agent_id, customer_id, vehicle_id, status, start_at, end_at,
	                 base_rental_amount, advance_amount, remaining_amount, deposit_enabled, deposit_amount,
	                 created_on, updated_on
	          FROM bookings WHERE id = $1 AND agent_id = $2`
	logger.DatabaseCall("SELECT", query, "bookingID", id)

	b := &domain.Booking{}
	var vehicleID sql.NullString
	var startAt, endAt sql.NullTime
	var base, advance, remaining, deposit decimal.NullDecimal
	var depositEnabled sql.NullBool

	err := r.db.QueryRowContext(ctx, query, id, agentID).Scan(
		&b.ID, &b.AgentID, &b.CustomerID, &vehicleID, &b.Status, &startAt, &endAt,
		&base, &advance, &remaining, &depositEnabled, &deposit,
		&b.CreatedOn, &b.UpdatedOn,
	)
	if err != nil {
		logger.ExitMethodWithError("bookingRepository.GetByID", err, "bookingID", id)
		return nil, notFound(err)
	}

	if vehicleID.Valid {
		b.VehicleID = &vehicleID.String
	}
	if startAt.Valid {
		b.StartAt = &startAt.Time
	}
	if endAt.Valid {
		b.EndAt = &endAt.Time
	}
	if base.Valid && startAt.Valid && endAt.Valid {
		b.Quote = &domain.Quote{
			StartAt:          startAt.Time,
			EndAt:            endAt.Time,
			BaseRentalAmount: base.Decimal,
			AdvanceAmount:    advance.Decimal,
			RemainingAmount:  remaining.Decimal,
			SecurityDeposit: domain.SecurityDeposit{
				Enabled: depositEnabled.Bool,
				Amount:  deposit,
			},
		}
	}

	logger.ExitMethod("bookingRepository.GetByID", "bookingID", id, "status", b.Status)
	return b, nil
}

func (r *bookingRepository) AttachCustomer(ctx context.Context, agentID, bookingID, customerID string) error {
	logger.EnterMethod("bookingRepository.AttachCustomer", "bookingID", bookingID, "customerID", customerID)

	query := `UPDATE bookings SET customer_id = $1, updated_on = $2
	          WHERE id = $3 AND agent_id = $4 AND status = $5`
	logger.DatabaseCall("UPDATE", query, "bookingID", bookingID)

	res, err := r.db.ExecContext(ctx, query, customerID, time.Now().UTC(), bookingID, agentID, domain.BookingStatusDraft)
	if err == nil {
		err = expectRow(res)
	}
	if err != nil {
		logger.ExitMethodWithError("bookingRepository.AttachCustomer", err, "bookingID", bookingID)
		return err
	}

	logger.ExitMethod("bookingRepository.AttachCustomer", "bookingID", bookingID)
	return nil
}

func (r *bookingRepository) AttachVehicle(ctx context.Context, agentID, bookingID, vehicleID string) error {
	logger.EnterMethod("bookingRepository.AttachVehicle", "bookingID", bookingID, "vehicleID", vehicleID)

	query := `UPDATE bookings SET vehicle_id = $1, updated_on = $2
	          WHERE id = $3 AND agent_id = $4 AND status = $5`
	logger.DatabaseCall("UPDATE", query, "bookingID", bookingID)

	res, err := r.db.ExecContext(ctx, query, vehicleID, time.Now().UTC(), bookingID, agentID, domain.BookingStatusDraft)
	if err == nil {
		err = expectRow(res)
	}
	if err != nil {
		logger.ExitMethodWithError("bookingRepository.AttachVehicle", err, "bookingID", bookingID)
		return err
	}

	logger.ExitMethod("bookingRepository.AttachVehicle", "bookingID", bookingID)
	return nil
}

func (r *bookingRepository) Finalize(ctx context.Context, agentID, bookingID string, q *domain.Quote) error {
	logger.EnterMethod("bookingRepository.Finalize", "bookingID", bookingID, "base", q.BaseRentalAmount.String())

	query := `UPDATE bookings SET status = $1, start_at = $2, end_at = $3,
	                 base_rental_amount = $4, advance_amount = $5, remaining_amount = $6,
	                 deposit_enabled = $7, deposit_amount = $8, updated_on = $9
	          WHERE id = $10 AND agent_id = $11 AND status = $12 AND vehicle_id IS NOT NULL`
	logger.DatabaseCall("UPDATE", query, "bookingID", bookingID)

	res, err := r.db.ExecContext(ctx, query,
		domain.BookingStatusFinalized, q.StartAt, q.EndAt,
		q.BaseRentalAmount, q.AdvanceAmount, q.RemainingAmount,
		q.SecurityDeposit.Enabled, q.SecurityDeposit.Amount, time.Now().UTC(),
		bookingID, agentID, domain.BookingStatusDraft,
	)
	if err == nil {
		err = expectRow(res)
	}
	if err != nil {
		logger.ExitMethodWithError("bookingRepository.Finalize", err, "bookingID", bookingID)
		return err
	}

	logger.ExitMethod("bookingRepository.Finalize", "bookingID", bookingID)
	return nil
}
