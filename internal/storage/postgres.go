package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/sahoo-ansu/I-MED/internal/catalog"
	"github.com/sahoo-ansu/I-MED/internal/models"
)

//go:embed migrations/*.sql
var migrations embed.FS

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

type PostgresStorage struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPostgresStorage connects, pings and applies pending migrations.
func NewPostgresStorage(ctx context.Context, config DatabaseConfig, logger *zap.Logger) (*PostgresStorage, error) {
	db, err := sql.Open("postgres", config.DSN())
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}

	storage := NewPostgresStorageWithDB(db, logger)
	if err := storage.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error initializing database schema: %w", err)
	}

	return storage, nil
}

// NewPostgresStorageWithDB wraps an existing handle without touching the
// schema.
func NewPostgresStorageWithDB(db *sql.DB, logger *zap.Logger) *PostgresStorage {
	return &PostgresStorage{db: db, logger: logger}
}

// Migrate applies the embedded migrations. Running it on an up-to-date
// schema is a no-op.
func (s *PostgresStorage) Migrate() error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("error reading migrations: %w", err)
	}

	driver, err := postgres.WithInstance(s.db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("error creating migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return fmt.Errorf("error creating migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("error executing migrations: %w", err)
	}

	version, dirty, _ := m.Version()
	s.logger.Info("Database schema ready", zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}

// SeedCatalog upserts the bundled reference data. Existing rows are kept.
func (s *PostgresStorage) SeedCatalog(ctx context.Context, entries []catalog.Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting seed transaction: %w", err)
	}
	defer tx.Rollback()

	for _, e := range entries {
		c := e.Condition
		var conditionID int64
		err := tx.QueryRowContext(ctx, `
			INSERT INTO conditions (name, description, symptom_keywords, severity,
				requires_doctor_visit, is_emergency, advice, doctor_visit_guidance)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
			RETURNING id`,
			c.Name, c.Description, pq.Array(c.SymptomKeywords), string(c.Severity),
			c.RequiresDoctorVisit, c.IsEmergency, c.Advice, c.DoctorVisitGuidance,
		).Scan(&conditionID)
		if err != nil {
			return fmt.Errorf("error seeding condition %s: %w", c.Name, err)
		}

		for i, m := range e.Medicines {
			var medicineID int64
			err := tx.QueryRowContext(ctx, `
				INSERT INTO medicines (name, generic_name, description, requires_prescription,
					category, dosage, allowed_age_groups)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
				ON CONFLICT (name, description) DO UPDATE SET name = EXCLUDED.name
				RETURNING id`,
				m.Name, m.GenericName, m.Description, m.RequiresPrescription,
				m.Category, m.Dosage, pq.Array(ageGroupsToStrings(m.AllowedAgeGroups)),
			).Scan(&medicineID)
			if err != nil {
				return fmt.Errorf("error seeding medicine %s: %w", m.Name, err)
			}

			if _, err := tx.ExecContext(ctx, `
				INSERT INTO medicine_conditions (medicine_id, condition_id, position)
				VALUES ($1, $2, $3)
				ON CONFLICT DO NOTHING`,
				medicineID, conditionID, i,
			); err != nil {
				return fmt.Errorf("error linking medicine %s: %w", m.Name, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing seed: %w", err)
	}
	s.logger.Info("Catalog seeded", zap.Int("conditions", len(entries)))
	return nil
}

const conditionColumns = `id, name, description, symptom_keywords, severity,
	requires_doctor_visit, is_emergency, advice, doctor_visit_guidance`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCondition(row rowScanner) (*models.Condition, error) {
	c := &models.Condition{}
	var severity string
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Description,
		pq.Array(&c.SymptomKeywords),
		&severity,
		&c.RequiresDoctorVisit,
		&c.IsEmergency,
		&c.Advice,
		&c.DoctorVisitGuidance,
	)
	if err != nil {
		return nil, err
	}
	c.Severity = models.ConditionSeverity(severity)
	return c, nil
}

func (s *PostgresStorage) ListConditions(ctx context.Context) ([]*models.Condition, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+conditionColumns+` FROM conditions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("error querying conditions: %w", err)
	}
	defer rows.Close()

	var conditions []*models.Condition
	for rows.Next() {
		c, err := scanCondition(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning condition: %w", err)
		}
		conditions = append(conditions, c)
	}
	return conditions, rows.Err()
}

func (s *PostgresStorage) GetConditionByName(ctx context.Context, name string) (*models.Condition, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+conditionColumns+` FROM conditions WHERE UPPER(name) = UPPER($1)`, name)

	c, err := scanCondition(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error querying condition: %w", err)
	}
	return c, nil
}

const medicineColumns = `m.id, m.name, m.generic_name, m.description, m.requires_prescription,
	m.category, m.dosage, m.allowed_age_groups`

func scanMedicine(row rowScanner) (*models.Medicine, error) {
	m := &models.Medicine{}
	var groups []string
	err := row.Scan(
		&m.ID,
		&m.Name,
		&m.GenericName,
		&m.Description,
		&m.RequiresPrescription,
		&m.Category,
		&m.Dosage,
		pq.Array(&groups),
	)
	if err != nil {
		return nil, err
	}
	for _, g := range groups {
		m.AllowedAgeGroups = append(m.AllowedAgeGroups, models.AgeGroup(g))
	}
	return m, nil
}

func (s *PostgresStorage) queryMedicines(ctx context.Context, query string, args ...any) ([]*models.Medicine, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying medicines: %w", err)
	}
	defer rows.Close()

	var medicines []*models.Medicine
	for rows.Next() {
		m, err := scanMedicine(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning medicine: %w", err)
		}
		medicines = append(medicines, m)
	}
	return medicines, rows.Err()
}

func (s *PostgresStorage) ListMedicines(ctx context.Context) ([]*models.Medicine, error) {
	return s.queryMedicines(ctx, `SELECT `+medicineColumns+` FROM medicines m ORDER BY m.id`)
}

func (s *PostgresStorage) MedicinesForCondition(ctx context.Context, conditionID int64) ([]*models.Medicine, error) {
	return s.queryMedicines(ctx, `
		SELECT `+medicineColumns+`
		FROM medicines m
		JOIN medicine_conditions mc ON mc.medicine_id = m.id
		WHERE mc.condition_id = $1
		ORDER BY mc.position, m.id`, conditionID)
}

func (s *PostgresStorage) GetMedicine(ctx context.Context, id int64) (*models.Medicine, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+medicineColumns+` FROM medicines m WHERE m.id = $1`, id)

	m, err := scanMedicine(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error querying medicine: %w", err)
	}
	return m, nil
}

func (s *PostgresStorage) SaveRecommendation(ctx context.Context, rec *models.Recommendation) error {
	var conditionID sql.NullInt64
	if rec.ConditionID != nil {
		conditionID = sql.NullInt64{Int64: *rec.ConditionID, Valid: true}
	}
	medicineIDs := rec.MedicineIDs
	if medicineIDs == nil {
		medicineIDs = []int64{}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO recommendations (id, user_id, condition_id, condition_name, symptoms,
			age, gender, severity, is_emergency, medicine_ids, additional_advice, strategy, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		rec.ID, rec.UserID, conditionID, rec.ConditionName, rec.SymptomsText,
		rec.Age, rec.Gender, string(rec.Severity), rec.IsEmergency, pq.Array(medicineIDs),
		rec.AdditionalAdvice, rec.Strategy, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("error saving recommendation: %w", err)
	}
	return nil
}

func (s *PostgresStorage) ListRecommendationsByUser(ctx context.Context, userID string, limit int) ([]*models.Recommendation, error) {
	query := `
		SELECT id, user_id, condition_id, condition_name, symptoms, age, gender, severity,
			is_emergency, medicine_ids, additional_advice, strategy, created_at
		FROM recommendations
		WHERE user_id = $1
		ORDER BY created_at DESC`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying recommendations: %w", err)
	}
	defer rows.Close()

	var recs []*models.Recommendation
	for rows.Next() {
		rec := &models.Recommendation{}
		var conditionID sql.NullInt64
		var severity string
		var medicineIDs pq.Int64Array
		err := rows.Scan(
			&rec.ID,
			&rec.UserID,
			&conditionID,
			&rec.ConditionName,
			&rec.SymptomsText,
			&rec.Age,
			&rec.Gender,
			&severity,
			&rec.IsEmergency,
			&medicineIDs,
			&rec.AdditionalAdvice,
			&rec.Strategy,
			&rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning recommendation: %w", err)
		}
		if conditionID.Valid {
			id := conditionID.Int64
			rec.ConditionID = &id
		}
		rec.Severity = models.Severity(severity)
		rec.MedicineIDs = []int64(medicineIDs)
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

func (s *PostgresStorage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStorage) Close() error {
	return s.db.Close()
}

func ageGroupsToStrings(groups []models.AgeGroup) []string {
	out := make([]string, len(groups))
	for i, g := range groups {
		out[i] = string(g)
	}
	return out
}
