package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/encore/internal/models"
	"github.com/desertthunder/encore/internal/shared"
)

// CityRepository handles persistence for [models.City].
type CityRepository struct {
	db *sql.DB
}

// NewCityRepository creates a new CityRepository with the given database connection
func NewCityRepository(db *sql.DB) *CityRepository {
	return &CityRepository{db: db}
}

// Create inserts a new city with a generated ID.
func (r *CityRepository) Create(city *models.City) error {
	if err := city.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	id := shared.GenerateID()
	city.SetID(id)

	_, err := r.db.Exec(
		"INSERT INTO cities (id, name, created_at) VALUES (?, ?, ?)",
		id, city.Name(), city.CreatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert city: %w", err)
	}

	return nil
}

// GetByName retrieves a city by its display name.
func (r *CityRepository) GetByName(name string) (*models.City, error) {
	var (
		id        string
		cityName  string
		createdAt time.Time
	)

	err := r.db.QueryRow(
		"SELECT id, name, created_at FROM cities WHERE name = ?", name,
	).Scan(&id, &cityName, &createdAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", shared.ErrCityNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query city: %w", err)
	}

	city := models.NewCity(cityName)
	city.SetID(id)
	city.SetCreatedAt(createdAt)
	return city, nil
}
