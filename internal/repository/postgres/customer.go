package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"srm-agent-portal/internal/domain"
	"srm-agent-portal/internal/logger"
	"srm-agent-portal/internal/repository"
)

type customerRepository struct {
	db *sql.DB
}

func NewCustomerRepository(db *sql.DB) repository.CustomerRepository {
	return &customerRepository{db: db}
}

const customerColumns = `id, agent_id, full_name, COALESCE(email, ''), COALESCE(phone, ''), COALESCE(nationality, ''),
	COALESCE(license_number, ''), COALESCE(id_number, ''), COALESCE(profile_photo_path, ''), created_on, updated_on`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCustomer(row rowScanner) (*domain.Customer, error) {
	c := &domain.Customer{}
	err := row.Scan(&c.ID, &c.AgentID, &c.FullName, &c.Email, &c.Phone, &c.Nationality,
		&c.LicenseNumber, &c.IDNumber, &c.ProfilePhotoPath, &c.CreatedOn, &c.UpdatedOn)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *customerRepository) Create(ctx context.Context, c *domain.Customer) error {
	logger.EnterMethod("customerRepository.Create", "agentID", c.AgentID)

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	c.CreatedOn = now
	c.UpdatedOn = now

	query := `INSERT INTO customers (id, agent_id, full_name, email, phone, nationality, license_number, id_number, profile_photo_path, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	logger.DatabaseCall("INSERT", query, "customerID", c.ID)

	res, err := r.db.ExecContext(ctx, query, c.ID, c.AgentID, c.FullName, c.Email, c.Phone, c.Nationality,
		c.LicenseNumber, c.IDNumber, c.ProfilePhotoPath, c.CreatedOn, c.UpdatedOn)
	if err != nil {
		logger.DatabaseResult("INSERT", 0, err)
		logger.ExitMethodWithError("customerRepository.Create", err, "customerID", c.ID)
		return err
	}
	rows, _ := res.RowsAffected()
	logger.DatabaseResult("INSERT", rows, nil)

	logger.ExitMethod("customerRepository.Create", "customerID", c.ID)
	return nil
}

func (r *customerRepository) GetByID(ctx context.Context, agentID, id string) (*domain.Customer, error) {
	logger.EnterMethod("customerRepository.GetByID", "agentID", agentID, "customerID", id)

	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1 AND agent_id = $2`
	logger.DatabaseCall("SELECT", query, "customerID", id)

	c, err := scanCustomer(r.db.QueryRowContext(ctx, query, id, agentID))
	if err != nil {
		logger.ExitMethodWithError("customerRepository.GetByID", err, "customerID", id)
		return nil, notFound(err)
	}

	logger.ExitMethod("customerRepository.GetByID", "customerID", id)
	return c, nil
}

func (r *customerRepository) Update(ctx context.Context, c *domain.Customer) error {
	logger.EnterMethod("customerRepository.Update", "customerID", c.ID)

	c.UpdatedOn = time.Now().UTC()
	query := `UPDATE customers SET full_name=$1, email=$2, phone=$3, nationality=$4, license_number=$5, id_number=$6, profile_photo_path=$7, updated_on=$8
	          WHERE id=$9 AND agent_id=$10`
	logger.DatabaseCall("UPDATE", query, "customerID", c.ID)

	res, err := r.db.ExecContext(ctx, query, c.FullName, c.Email, c.Phone, c.Nationality, c.LicenseNumber,
		c.IDNumber, c.ProfilePhotoPath, c.UpdatedOn, c.ID, c.AgentID)
	if err == nil {
		err = expectRow(res)
	}
	if err != nil {
		logger.ExitMethodWithError("customerRepository.Update", err, "customerID", c.ID)
		return err
	}

	logger.ExitMethod("customerRepository.Update", "customerID", c.ID)
	return nil
}

func (r *customerRepository) Search(ctx context.Context, agentID, query string, limit int) ([]domain.Customer, error) {
	logger.EnterMethod("customerRepository.Search", "agentID", agentID, "query", query)

	sqlQuery := `SELECT ` + customerColumns + ` FROM customers
	          WHERE agent_id = $1 AND (full_name ILIKE $2 ESCAPE '\' OR email ILIKE $2 ESCAPE '\' OR phone ILIKE $2 ESCAPE '\' OR license_number ILIKE $2 ESCAPE '\')
	          ORDER BY full_name LIMIT $3`
	logger.DatabaseCall("SELECT", sqlQuery, "agentID", agentID)

	rows, err := r.db.QueryContext(ctx, sqlQuery, agentID, containsPattern(query), searchLimit(limit))
	if err != nil {
		logger.ExitMethodWithError("customerRepository.Search", err, "agentID", agentID)
		return nil, err
	}
	defer rows.Close()

	var customers []domain.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			logger.ExitMethodWithError("customerRepository.Search", err, "agentID", agentID)
			return nil, err
		}
		customers = append(customers, *c)
	}
	if err := rows.Err(); err != nil {
		logger.ExitMethodWithError("customerRepository.Search", err, "agentID", agentID)
		return nil, err
	}

	logger.ExitMethod("customerRepository.Search", "agentID", agentID, "count", len(customers))
	return customers, nil
}
