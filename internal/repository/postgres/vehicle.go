package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"srm-agent-portal/internal/domain"
	"srm-agent-portal/internal/logger"
	"srm-agent-portal/internal/repository"
)

type vehicleRepository struct {
	db *sql.DB
}

func NewVehicleRepository(db *sql.DB) repository.VehicleRepository {
	return &vehicleRepository{db: db}
}

const vehicleColumns = `id, agent_id, make, model, COALESCE(year, 0), COALESCE(plate_number, ''), COALESCE(color, ''),
	photo_paths, rates, created_on, updated_on`

func scanVehicle(row rowScanner) (*domain.Vehicle, error) {
	v := &domain.Vehicle{}
	var rates []byte
	err := row.Scan(&v.ID, &v.AgentID, &v.Make, &v.Model, &v.Year, &v.PlateNumber, &v.Color,
		pq.Array(&v.PhotoPaths), &rates, &v.CreatedOn, &v.UpdatedOn)
	if err != nil {
		return nil, err
	}
	if len(rates) > 0 {
		if err := json.Unmarshal(rates, &v.Rates); err != nil {
			return nil, fmt.Errorf("decode rates for vehicle %s: %w", v.ID, err)
		}
	}
	return v, nil
}

func (r *vehicleRepository) Create(ctx context.Context, v *domain.Vehicle) error {
	logger.EnterMethod("vehicleRepository.Create", "agentID", v.AgentID, "plate", v.PlateNumber)

	rates, err := json.Marshal(v.Rates)
	if err != nil {
		logger.ExitMethodWithError("vehicleRepository.Create", err)
		return fmt.Errorf("encode rates: %w", err)
	}
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	v.CreatedOn = now
	v.UpdatedOn = now

	query := `INSERT INTO vehicles (id, agent_id, make, model, year, plate_number, color, photo_paths, rates, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	logger.DatabaseCall("INSERT", query, "vehicleID", v.ID)

	res, err := r.db.ExecContext(ctx, query, v.ID, v.AgentID, v.Make, v.Model, v.Year, v.PlateNumber, v.Color,
		pq.Array(v.PhotoPaths), rates, v.CreatedOn, v.UpdatedOn)
	if err != nil {
		logger.DatabaseResult("INSERT", 0, err)
		logger.ExitMethodWithError("vehicleRepository.Create", err, "vehicleID", v.ID)
		return err
	}
	n, _ := res.RowsAffected()
	logger.DatabaseResult("INSERT", n, nil)

	logger.ExitMethod("vehicleRepository.Create", "vehicleID", v.ID)
	return nil
}

func (r *vehicleRepository) GetByID(ctx context.Context, agentID, id string) (*domain.Vehicle, error) {
	logger.EnterMethod("vehicleRepository.GetByID", "agentID", agentID, "vehicleID", id)

	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE id = $1 AND agent_id = $2`
	logger.DatabaseCall("SELECT", query, "vehicleID", id)

	v, err := scanVehicle(r.db.QueryRowContext(ctx, query, id, agentID))
	if err != nil {
		logger.ExitMethodWithError("vehicleRepository.GetByID", err, "vehicleID", id)
		return nil, notFound(err)
	}

	logger.ExitMethod("vehicleRepository.GetByID", "vehicleID", id)
	return v, nil
}

func (r *vehicleRepository) Update(ctx context.Context, v *domain.Vehicle) error {
	logger.EnterMethod("vehicleRepository.Update", "vehicleID", v.ID)

	rates, err := json.Marshal(v.Rates)
	if err != nil {
		logger.ExitMethodWithError("vehicleRepository.Update", err, "vehicleID", v.ID)
		return fmt.Errorf("encode rates: %w", err)
	}
	v.UpdatedOn = time.Now().UTC()

	query := `UPDATE vehicles SET make=$1, model=$2, year=$3, plate_number=$4, color=$5, photo_paths=$6, rates=$7, updated_on=$8
	          WHERE id=$9 AND agent_id=$10`
	logger.DatabaseCall("UPDATE", query, "vehicleID", v.ID)

	res, err := r.db.ExecContext(ctx, query, v.Make, v.Model, v.Year, v.PlateNumber, v.Color,
		pq.Array(v.PhotoPaths), rates, v.UpdatedOn, v.ID, v.AgentID)
	if err == nil {
		err = expectRow(res)
	}
	if err != nil {
		logger.ExitMethodWithError("vehicleRepository.Update", err, "vehicleID", v.ID)
		return err
	}

	logger.ExitMethod("vehicleRepository.Update", "vehicleID", v.ID)
	return nil
}

func (r *vehicleRepository) Search(ctx context.Context, agentID, query string, limit int) ([]domain.Vehicle, error) {
	logger.EnterMethod("vehicleRepository.Search", "agentID", agentID, "query", query)

	sqlQuery := `SELECT ` + vehicleColumns + ` FROM vehicles
	          WHERE agent_id = $1 AND (make ILIKE $2 ESCAPE '\' OR model ILIKE $2 ESCAPE '\' OR plate_number ILIKE $2 ESCAPE '\')
	          ORDER BY make, model LIMIT $3`
	logger.DatabaseCall("SELECT", sqlQuery, "agentID", agentID)

	rows, err := r.db.QueryContext(ctx, sqlQuery, agentID, containsPattern(query), searchLimit(limit))
	if err != nil {
		logger.ExitMethodWithError("vehicleRepository.Search", err, "agentID", agentID)
		return nil, err
	}
	defer rows.Close()

	var vehicles []domain.Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			logger.ExitMethodWithError("vehicleRepository.Search", err, "agentID", agentID)
			return nil, err
		}
		vehicles = append(vehicles, *v)
	}
	if err := rows.Err(); err != nil {
		logger.ExitMethodWithError("vehicleRepository.Search", err, "agentID", agentID)
		return nil, err
	}

	logger.ExitMethod("vehicleRepository.Search", "agentID", agentID, "count", len(vehicles))
	return vehicles, nil
}
