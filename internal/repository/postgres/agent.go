package postgres

import (
	"context"
	"database/sql"

	"srm-agent-portal/internal/domain"
	"srm-agent-portal/internal/logger"
	"srm-agent-portal/internal/repository"
)

type agentRepository struct {
	db *sql.DB
}

func NewAgentRepository(db *sql.DB) repository.AgentRepository {
	return &agentRepository{db: db}
}

const agentColumns = `id, email, name, COALESCE(company_name, ''), password_hash, created_on`

func (r *agentRepository) GetByID(ctx context.Context, id string) (*domain.Agent, error) {
	logger.EnterMethod("agentRepository.GetByID", "agentID", id)

	query := `SELECT ` + agentColumns + ` FROM agents WHERE id = $1`
	logger.DatabaseCall("SELECT", query, "agentID", id)

	a := &domain.Agent{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&a.ID, &a.Email, &a.Name, &a.CompanyName, &a.PasswordHash, &a.CreatedOn)
	if err != nil {
		logger.ExitMethodWithError("agentRepository.GetByID", err, "agentID", id)
		return nil, notFound(err)
	}

	logger.ExitMethod("agentRepository.GetByID", "agentID", id)
	return a, nil
}

func (r *agentRepository) GetByEmail(ctx context.Context, email string) (*domain.Agent, error) {
	logger.EnterMethod("agentRepository.GetByEmail", "email", email)

	query := `SELECT ` + agentColumns + ` FROM agents WHERE LOWER(email) = LOWER($1)`
	logger.DatabaseCall("SELECT", query, "email", email)

	a := &domain.Agent{}
	err := r.db.QueryRowContext(ctx, query, email).Scan(&a.ID, &a.Email, &a.Name, &a.CompanyName, &a.PasswordHash, &a.CreatedOn)
	if err != nil {
		logger.ExitMethodWithError("agentRepository.GetByEmail", err, "email", email)
		return nil, notFound(err)
	}

	logger.ExitMethod("agentRepository.GetByEmail", "agentID", a.ID)
	return a, nil
}
