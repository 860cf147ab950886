package postgres

import (
	"database/sql"
	"errors"
	"strings"

	"srm-agent-portal/internal/domain"
	"srm-agent-portal/internal/repository"

	_ "github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	repository.AgentRepository
	repository.CustomerRepository
	repository.VehicleRepository
	repository.BookingRepository
	repository.StoredFileRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                   db,
		AgentRepository:      NewAgentRepository(db),
		CustomerRepository:   NewCustomerRepository(db),
		VehicleRepository:    NewVehicleRepository(db),
		BookingRepository:    NewBookingRepository(db),
		StoredFileRepository: NewStoredFileRepository(db),
	}
}

// DB exposes the pool for health probes.
func (s *Store) DB() *sql.DB {
	return s.db
}

// notFound maps sql.ErrNoRows onto the domain sentinel.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}

// expectRow reports ErrNotFound when an UPDATE touched nothing.
func expectRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching query literally anywhere in a column.
func containsPattern(query string) string {
	return "%" + likeEscaper.Replace(query) + "%"
}

const defaultSearchLimit = 20

func searchLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return defaultSearchLimit
	}
	return limit
}
