package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"grant-intake/internal/models"
)

// Tables mirror the original applications / contact_submissions schema, with
// seq added for stable insertion ordering.
const schemaDDL = `
CREATE TABLE IF NOT EXISTS applications (
	seq                  BIGSERIAL UNIQUE,
	id                   TEXT PRIMARY KEY,
	first_name           TEXT NOT NULL,
	last_name            TEXT NOT NULL,
	street_address       TEXT,
	zip                  TEXT,
	city                 TEXT,
	state                TEXT NOT NULL,
	gender               TEXT NOT NULL,
	date_of_birth        TEXT NOT NULL,
	ethnicity            TEXT NOT NULL,
	citizenship_status   TEXT NOT NULL,
	employment_status    TEXT NOT NULL,
	email                TEXT NOT NULL,
	phone                TEXT NOT NULL,
	monthly_income       NUMERIC(12,2) NOT NULL,
	housing_status       TEXT NOT NULL,
	funding_type         TEXT,
	grant_amount         TEXT NOT NULL,
	purpose_description  TEXT NOT NULL,
	referred_by          TEXT NOT NULL,
	driver_license_front TEXT,
	driver_license_back  TEXT,
	created_at           TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS contact_submissions (
	seq        BIGSERIAL UNIQUE,
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	email      TEXT NOT NULL,
	phone      TEXT,
	subject    TEXT,
	message    TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);`

const applicationColumns = `id, first_name, last_name, street_address, zip, city, state, gender,
	date_of_birth, ethnicity, citizenship_status, employment_status, email, phone,
	monthly_income, housing_status, funding_type, grant_amount, purpose_description,
	referred_by, driver_license_front, driver_license_back, created_at`

const contactColumns = `id, name, email, phone, subject, message, created_at`

const insertApplicationSQL = `INSERT INTO applications (` + applicationColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)`

const (
	getApplicationSQL   = `SELECT ` + applicationColumns + ` FROM applications WHERE id = $1`
	listApplicationsSQL = `SELECT ` + applicationColumns + ` FROM applications ORDER BY seq`

	insertContactSQL = `INSERT INTO contact_submissions (` + contactColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7)`
	getContactSQL    = `SELECT ` + contactColumns + ` FROM contact_submissions WHERE id = $1`
	listContactsSQL  = `SELECT ` + contactColumns + ` FROM contact_submissions ORDER BY seq`
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the tables when they do not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaDDL); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreateApplication(ctx context.Context, in models.ApplicationInput) (*models.Application, error) {
	id, now := stamp()
	_, err := s.db.ExecContext(ctx, insertApplicationSQL,
		id, in.FirstName, in.LastName, nullable(in.StreetAddress), nullable(in.Zip), nullable(in.City),
		in.State, in.Gender, in.DateOfBirth, in.Ethnicity, in.CitizenshipStatus, in.EmploymentStatus,
		in.Email, in.Phone, in.MonthlyIncome, in.HousingStatus, nullable(in.FundingType), in.GrantAmount,
		in.PurposeDescription, in.ReferredBy, nullable(in.DriverLicenseFront), nullable(in.DriverLicenseBack),
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert application: %w", err)
	}
	return &models.Application{ID: id, ApplicationInput: in, CreatedAt: now}, nil
}

func (s *PostgresStore) GetApplication(ctx context.Context, id string) (*models.Application, error) {
	app, err := scanApplication(s.db.QueryRowContext(ctx, getApplicationSQL, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get application %s: %w", id, err)
	}
	return app, nil
}

func (s *PostgresStore) ListApplications(ctx context.Context) ([]models.Application, error) {
	rows, err := s.db.QueryContext(ctx, listApplicationsSQL)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	out := make([]models.Application, 0)
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		out = append(out, *app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) CreateContact(ctx context.Context, in models.ContactInput) (*models.Contact, error) {
	id, now := stamp()
	_, err := s.db.ExecContext(ctx, insertContactSQL,
		id, in.Name, in.Email, nullable(in.Phone), nullable(in.Subject), in.Message, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert contact: %w", err)
	}
	return &models.Contact{ID: id, ContactInput: in, CreatedAt: now}, nil
}

func (s *PostgresStore) GetContact(ctx context.Context, id string) (*models.Contact, error) {
	c, err := scanContact(s.db.QueryRowContext(ctx, getContactSQL, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get contact %s: %w", id, err)
	}
	return c, nil
}

func (s *PostgresStore) ListContacts(ctx context.Context) ([]models.Contact, error) {
	rows, err := s.db.QueryContext(ctx, listContactsSQL)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	defer rows.Close()

	out := make([]models.Contact, 0)
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("postgres ping failed: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanApplication(row rowScanner) (*models.Application, error) {
	var app models.Application
	var street, zip, city, funding, front, back sql.NullString
	var created time.Time
	err := row.Scan(
		&app.ID, &app.FirstName, &app.LastName, &street, &zip, &city, &app.State, &app.Gender,
		&app.DateOfBirth, &app.Ethnicity, &app.CitizenshipStatus, &app.EmploymentStatus, &app.Email, &app.Phone,
		&app.MonthlyIncome, &app.HousingStatus, &funding, &app.GrantAmount, &app.PurposeDescription,
		&app.ReferredBy, &front, &back, &created,
	)
	if err != nil {
		return nil, err
	}
	app.StreetAddress = street.String
	app.Zip = zip.String
	app.City = city.String
	app.FundingType = funding.String
	app.DriverLicenseFront = front.String
	app.DriverLicenseBack = back.String
	app.CreatedAt = created.UTC()
	return &app, nil
}

func scanContact(row rowScanner) (*models.Contact, error) {
	var (
		c              models.Contact
		phone, subject sql.NullString
		created        time.Time
	)
	if err := row.Scan(&c.ID, &c.Name, &c.Email, &phone, &subject, &c.Message, &created); err != nil {
		return nil, err
	}
	c.Phone = phone.String
	c.Subject = subject.String
	c.CreatedAt = created.UTC()
	return &c, nil
}

// nullable stores absent optional fields as NULL.
func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
