package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/floworx/triage-agent/internal/types"
)

// -----------------------------------------------------------------------------
// Team Methods (managers and suppliers)
// -----------------------------------------------------------------------------

const managerColumns = `id, business_id, name, email, specialties, on_call, created_at, updated_at`

func scanManager(row pgx.Row) (*TeamMember, error) {
	var m TeamMember
	err := row.Scan(&m.ID, &m.BusinessID, &m.Name, &m.Email, &m.Specialties,
		&m.OnCall, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan manager: %w", err)
	}
	return &m, nil
}

const supplierColumns = `id, business_id, name, domains, owner, contact, created_at, updated_at`

func scanSupplier(row pgx.Row) (*SupplierRecord, error) {
	var s SupplierRecord
	err := row.Scan(&s.ID, &s.BusinessID, &s.Name, &s.Domains, &s.Owner,
		&s.Contact, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan supplier: %w", err)
	}
	return &s, nil
}

// UpsertManager creates or updates a manager by (business_id, name)
func (db *DB) UpsertManager(ctx context.Context, businessID uuid.UUID, name, email string, specialties []string, onCall bool) (*TeamMember, error) {
	if name == "" {
		return nil, fmt.Errorf("manager name cannot be empty")
	}
	if email == "" {
		return nil, fmt.Errorf("manager email cannot be empty")
	}
	if specialties == nil {
		specialties = []string{}
	}

	return scanManager(db.pool.QueryRow(ctx,
		`INSERT INTO managers (business_id, name, email, specialties, on_call)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (business_id, name)
		 DO UPDATE SET email = $3, specialties = $4, on_call = $5, updated_at = NOW()
		 RETURNING `+managerColumns,
		businessID, name, email, specialties, onCall,
	))
}

// ListManagers retrieves all managers for a business
func (db *DB) ListManagers(ctx context.Context, businessID uuid.UUID) ([]TeamMember, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+managerColumns+` FROM managers WHERE business_id = $1 ORDER BY name ASC`,
		businessID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list managers: %w", err)
	}
	defer rows.Close()

	var managers []TeamMember
	for rows.Next() {
		m, err := scanManager(rows)
		if err != nil {
			return nil, err
		}
		managers = append(managers, *m)
	}
	return managers, nil
}

// DeleteManager removes a manager from a business
func (db *DB) DeleteManager(ctx context.Context, businessID uuid.UUID, name string) error {
	result, err := db.pool.Exec(ctx,
		`DELETE FROM managers WHERE business_id = $1 AND name = $2`, businessID, name)
	if err != nil {
		return fmt.Errorf("failed to delete manager: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("manager not found: %s", name)
	}
	return nil
}

// UpsertSupplier creates or updates a supplier by (business_id, name)
func (db *DB) UpsertSupplier(ctx context.Context, businessID uuid.UUID, name string, domains []string, owner, contact string) (*SupplierRecord, error) {
	if name == "" {
		return nil, fmt.Errorf("supplier name cannot be empty")
	}
	if domains == nil {
		domains = []string{}
	}

	return scanSupplier(db.pool.QueryRow(ctx,
		`INSERT INTO suppliers (business_id, name, domains, owner, contact)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (business_id, name)
		 DO UPDATE SET domains = $3, owner = $4, contact = $5, updated_at = NOW()
		 RETURNING `+supplierColumns,
		businessID, name, domains, owner, contact,
	))
}

// ListSuppliers retrieves all suppliers for a business
func (db *DB) ListSuppliers(ctx context.Context, businessID uuid.UUID) ([]SupplierRecord, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+supplierColumns+` FROM suppliers WHERE business_id = $1 ORDER BY name ASC`,
		businessID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list suppliers: %w", err)
	}
	defer rows.Close()

	var suppliers []SupplierRecord
	for rows.Next() {
		s, err := scanSupplier(rows)
		if err != nil {
			return nil, err
		}
		suppliers = append(suppliers, *s)
	}
	return suppliers, nil
}

// DeleteSupplier removes a supplier from a business
func (db *DB) DeleteSupplier(ctx context.Context, businessID uuid.UUID, name string) error {
	result, err := db.pool.Exec(ctx,
		`DELETE FROM suppliers WHERE business_id = $1 AND name = $2`, businessID, name)
	if err != nil {
		return fmt.Errorf("failed to delete supplier: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("supplier not found: %s", name)
	}
	return nil
}

// LoadTeam assembles the full roster for a business. This is the shape
// the taxonomy generator and routing engine consume.
func (db *DB) LoadTeam(ctx context.Context, businessID uuid.UUID) (*types.Team, error) {
	managers, err := db.ListManagers(ctx, businessID)
	if err != nil {
		return nil, err
	}
	suppliers, err := db.ListSuppliers(ctx, businessID)
	if err != nil {
		return nil, err
	}

	team := &types.Team{}
	for _, m := range managers {
		team.Managers = append(team.Managers, types.Manager{
			Name:        m.Name,
			Email:       m.Email,
			Specialties: m.Specialties,
			OnCall:      m.OnCall,
		})
	}
	for _, s := range suppliers {
		team.Suppliers = append(team.Suppliers, types.Supplier{
			Name:    s.Name,
			Domains: s.Domains,
			Owner:   s.Owner,
			Contact: s.Contact,
		})
	}
	return team, nil
}
