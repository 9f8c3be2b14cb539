package repositories

import (
	"database/sql"
	"fmt"
	"strings"

	intconfig "tripcleaner/internal/config"
	intdb "tripcleaner/internal/db"
	"tripcleaner/internal/domain/models"
)

// AddressRepository wraps DB access for the address_localities cache and
// its zone/km lookup tables.
type AddressRepository struct {
	DB *sql.DB
}

func (r AddressRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

// AllAddresses loads the full cached address set, keyed on trimmed
// upper-cased text so the diff ignores casing drift between uploads. The
// cache is thousands of rows, not millions, so the diff happens in memory.
func (r AddressRepository) AllAddresses() (map[string]bool, error) {
	db := r.db()
	if db == nil {
		return nil, fmt.Errorf("db not available")
	}

	rows, err := db.Query(`SELECT address FROM address_localities`)
	if err != nil {
		return nil, fmt.Errorf("load addresses: %w", err)
	}
	defer rows.Close()

	out := map[string]bool{}
	for rows.Next() {
		var addr string
		if err := rows.Scan(&addr); err != nil {
			return nil, err
		}
		out[strings.ToUpper(strings.TrimSpace(addr))] = true
	}
	return out, rows.Err()
}

// InsertAddresses stores new addresses with locality left NULL for the
// assignment workflow.
func (r AddressRepository) InsertAddresses(addrs []string) error {
	db := r.db()
	if db == nil {
		return fmt.Errorf("db not available")
	}
	if len(addrs) == 0 {
		return nil
	}

	args := make([]any, 0, len(addrs))
	for _, a := range addrs {
		args = append(args, a)
	}
	q := `INSERT INTO address_localities (address, locality) VALUES ` +
		strings.TrimSuffix(strings.Repeat("(?,NULL),", len(addrs)), ",")
	if _, err := db.Exec(q, args...); err != nil {
		return fmt.Errorf("insert addresses: %w", err)
	}
	return nil
}

// ResyncIdentity moves the table's AUTO_INCREMENT past the highest stored
// id. Manual imports leave the counter behind the data, which makes fresh
// inserts collide on the primary key.
func (r AddressRepository) ResyncIdentity() error {
	db := r.db()
	if db == nil {
		return fmt.Errorf("db not available")
	}

	var next int64
	if err := db.QueryRow(`SELECT COALESCE(MAX(id),0)+1 FROM address_localities`).Scan(&next); err != nil {
		return fmt.Errorf("read max address id: %w", err)
	}
	// ALTER TABLE takes no placeholders; next comes from our own SELECT.
	if _, err := db.Exec(fmt.Sprintf(`ALTER TABLE address_localities AUTO_INCREMENT = %d`, next)); err != nil {
		return fmt.Errorf("resync address identity: %w", err)
	}
	return nil
}

// ZoneKmForAddresses resolves the three-tier address -> locality -> zone ->
// km view for addresses whose locality has been assigned.
func (r AddressRepository) ZoneKmForAddresses(addrs []string) ([]models.AddressZoneKm, error) {
	db := r.db()
	if db == nil {
		return nil, fmt.Errorf("db not available")
	}
	if len(addrs) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(addrs)), ",")
	args := make([]any, len(addrs))
	for i, a := range addrs {
		args[i] = a
	}

	rows, err := db.Query(`
		SELECT a.address, a.locality, z.zone, k.km
		FROM address_localities a
		JOIN locality_zones z ON z.locality = a.locality
		JOIN zone_kms k ON k.zone = z.zone
		WHERE a.locality IS NOT NULL
		  AND a.address IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("resolve zone/km: %w", err)
	}
	defer rows.Close()

	var out []models.AddressZoneKm
	for rows.Next() {
		var rec models.AddressZoneKm
		if err := rows.Scan(&rec.Address, &rec.Locality, &rec.Zone, &rec.Km); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// HasTables reports whether the address cache schema is present; the
// pipeline skips enrichment on stores provisioned without it.
func (r AddressRepository) HasTables() bool {
	db := r.db()
	if db == nil {
		return false
	}
	return intdb.HasTable(db, "address_localities") &&
		intdb.HasColumn(db, "address_localities", "locality")
}
