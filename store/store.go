// Package store persists assets, policy versions and snapshots in SQLite.
//
// The engine stays storage-free: this package loads fully populated values
// and hands them to the calculators. Reads of whole collections go through a
// small cache that is flushed after every write.
package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/mfld/folioplan"
	"github.com/mfld/folioplan/date"
	"github.com/mfld/folioplan/logger"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrNotFound is returned when the requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicateTarget is returned by SavePolicyVersion when two targets of the
// same version reference the same asset.
var ErrDuplicateTarget = errors.New("duplicate asset target in policy version")

const (
	cacheKeyAssets    = "assets"
	cacheKeyPolicies  = "policies"
	cacheKeySnapshots = "snapshots"
)

// Store is the SQLite-backed persistence collaborator.
type Store struct {
	db    *sql.DB
	cache *cache.Cache
}

// Open opens (creating if needed) the database at the given path and applies
// pending migrations.
func Open(databasePath string) (*Store, error) {
	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(on)", databasePath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open database at %s: %w", databasePath, err)
	}
	// single connection: avoids SQLITE_BUSY under concurrent writes
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("cannot ping database: %w", err)
	}
	if err := runMigrations(db); err != nil {
		return nil, err
	}
	logger.L.Info("database ready", "path", databasePath)
	return &Store{
		db:    db,
		cache: cache.New(5*time.Minute, 10*time.Minute),
	}, nil
}

func runMigrations(db *sql.DB) error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("cannot load embedded migrations: %w", err)
	}
	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("cannot create migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("cannot create migration instance: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("cannot apply migrations: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// invalidate drops every cached read after a write.
func (s *Store) invalidate() { s.cache.Flush() }

// amounts and quantities persist as exact decimal text. Loaded amounts carry
// no currency; formatting layers attach the reporting currency.

func parseAmount(s string) (folioplan.Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return folioplan.Amount{}, fmt.Errorf("invalid stored amount %q: %w", s, err)
	}
	return folioplan.A(d, ""), nil
}

func parseQuantity(s string) (folioplan.Quantity, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return folioplan.Quantity{}, fmt.Errorf("invalid stored quantity %q: %w", s, err)
	}
	return folioplan.Q(d), nil
}

// ListAssets returns all assets ordered by name.
func (s *Store) ListAssets(ctx context.Context) ([]folioplan.Asset, error) {
	if cached, ok := s.cache.Get(cacheKeyAssets); ok {
		return cached.([]folioplan.Asset), nil
	}
	rows, err := s.db.QueryContext(ctx, "SELECT id, category, name, ticker, note FROM assets ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("cannot list assets: %w", err)
	}
	defer rows.Close()

	assets := []folioplan.Asset{}
	for rows.Next() {
		var a folioplan.Asset
		var category string
		if err := rows.Scan(&a.ID, &category, &a.Name, &a.Ticker, &a.Note); err != nil {
			return nil, err
		}
		if a.Category, err = folioplan.ParseAssetCategory(category); err != nil {
			return nil, err
		}
		assets = append(assets, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	s.cache.SetDefault(cacheKeyAssets, assets)
	return assets, nil
}

// SaveAsset inserts or updates an asset. The id is immutable; everything else
// is overwritten.
func (s *Store) SaveAsset(ctx context.Context, a folioplan.Asset) error {
	if a.ID == "" {
		return errors.New("asset id is required")
	}
	if _, err := folioplan.ParseAssetCategory(string(a.Category)); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO assets (id, category, name, ticker, note) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET category=excluded.category, name=excluded.name,
			ticker=excluded.ticker, note=excluded.note`,
		a.ID, string(a.Category), a.Name, a.Ticker, a.Note)
	if err != nil {
		return fmt.Errorf("cannot save asset %q: %w", a.ID, err)
	}
	s.invalidate()
	return nil
}

// DeleteAsset removes an asset. Snapshots and policies keep their cached
// name and category for it.
func (s *Store) DeleteAsset(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM assets WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("cannot delete asset %q: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	s.invalidate()
	return nil
}

// ListPolicyVersions returns all policy versions with their layers and
// targets, ordered by start date ascending.
func (s *Store) ListPolicyVersions(ctx context.Context) ([]*folioplan.PolicyVersion, error) {
	if cached, ok := s.cache.Get(cacheKeyPolicies); ok {
		return cached.([]*folioplan.PolicyVersion), nil
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, rationale, start_date, status FROM policy_versions ORDER BY start_date, id")
	if err != nil {
		return nil, fmt.Errorf("cannot list policy versions: %w", err)
	}
	defer rows.Close()

	versions := []*folioplan.PolicyVersion{}
	for rows.Next() {
		var v folioplan.PolicyVersion
		var start, status string
		if err := rows.Scan(&v.ID, &v.Name, &v.Rationale, &start, &status); err != nil {
			return nil, err
		}
		if v.StartDate, err = date.Parse(start); err != nil {
			return nil, err
		}
		v.Status = folioplan.PolicyStatus(status)
		versions = append(versions, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, v := range versions {
		if v.Layers, err = s.loadLayers(ctx, v.ID); err != nil {
			return nil, err
		}
	}
	s.cache.SetDefault(cacheKeyPolicies, versions)
	return versions, nil
}

func (s *Store) loadLayers(ctx context.Context, versionID string) ([]folioplan.Layer, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, global_weight, description FROM policy_layers
		WHERE version_id = ? ORDER BY position`, versionID)
	if err != nil {
		return nil, fmt.Errorf("cannot load layers of %q: %w", versionID, err)
	}
	defer rows.Close()

	var layers []folioplan.Layer
	for rows.Next() {
		var l folioplan.Layer
		var weight float64
		if err := rows.Scan(&l.ID, &l.Name, &weight, &l.Description); err != nil {
			return nil, err
		}
		l.GlobalWeight = folioplan.Percent(weight)
		layers = append(layers, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range layers {
		if layers[i].Targets, err = s.loadTargets(ctx, layers[i].ID); err != nil {
			return nil, err
		}
	}
	return layers, nil
}

func (s *Store) loadTargets(ctx context.Context, layerID string) ([]folioplan.Target, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, asset_id, name, intra_weight, color, note FROM policy_targets
		WHERE layer_id = ? ORDER BY position`, layerID)
	if err != nil {
		return nil, fmt.Errorf("cannot load targets of %q: %w", layerID, err)
	}
	defer rows.Close()

	var targets []folioplan.Target
	for rows.Next() {
		var t folioplan.Target
		var weight float64
		if err := rows.Scan(&t.ID, &t.AssetID, &t.Name, &weight, &t.Color, &t.Note); err != nil {
			return nil, err
		}
		t.IntraWeight = folioplan.Percent(weight)
		targets = append(targets, t)
	}
	return targets, rows.Err()
}

// GetPolicyVersion returns one version with its layers and targets.
func (s *Store) GetPolicyVersion(ctx context.Context, id string) (*folioplan.PolicyVersion, error) {
	versions, err := s.ListPolicyVersions(ctx)
	if err != nil {
		return nil, err
	}
	for _, v := range versions {
		if v.ID == id {
			return v, nil
		}
	}
	return nil, ErrNotFound
}

// SavePolicyVersion inserts or fully replaces a policy version. A version in
// which two targets reference the same asset is rejected: the resolver would
// silently keep only the last one.
func (s *Store) SavePolicyVersion(ctx context.Context, v *folioplan.PolicyVersion) error {
	if v.ID == "" {
		return errors.New("policy version id is required")
	}
	seen := make(map[string]bool)
	for _, l := range v.Layers {
		for _, t := range l.Targets {
			if seen[t.AssetID] {
				return fmt.Errorf("%w: asset %q", ErrDuplicateTarget, t.AssetID)
			}
			seen[t.AssetID] = true
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO policy_versions (id, name, rationale, start_date, status) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name=excluded.name, rationale=excluded.rationale,
			start_date=excluded.start_date, status=excluded.status`,
		v.ID, v.Name, v.Rationale, v.StartDate.String(), string(v.Status)); err != nil {
		return fmt.Errorf("cannot save policy version %q: %w", v.ID, err)
	}
	// replace the whole hierarchy
	if _, err := tx.ExecContext(ctx, "DELETE FROM policy_layers WHERE version_id = ?", v.ID); err != nil {
		return err
	}
	for i, l := range v.Layers {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO policy_layers (id, version_id, position, name, global_weight, description)
			VALUES (?, ?, ?, ?, ?, ?)`,
			l.ID, v.ID, i, l.Name, float64(l.GlobalWeight), l.Description); err != nil {
			return fmt.Errorf("cannot save layer %q: %w", l.ID, err)
		}
		for j, t := range l.Targets {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO policy_targets (id, layer_id, position, asset_id, name, intra_weight, color, note)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				t.ID, l.ID, j, t.AssetID, t.Name, float64(t.IntraWeight), t.Color, t.Note); err != nil {
				return fmt.Errorf("cannot save target %q: %w", t.ID, err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

// DeletePolicyVersion removes a version and its layers and targets.
func (s *Store) DeletePolicyVersion(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM policy_versions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("cannot delete policy version %q: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	s.invalidate()
	return nil
}

// SnapshotSummary is the record-free listing row of a snapshot.
type SnapshotSummary struct {
	ID            string           `json:"id"`
	Month         date.Month       `json:"month"`
	Note          string           `json:"note,omitempty"`
	TotalValue    folioplan.Amount `json:"totalValue"`
	TotalInvested folioplan.Amount `json:"totalInvested"`
}

// ListSnapshotSummaries lists all snapshots without their records,
// chronologically ascending.
func (s *Store) ListSnapshotSummaries(ctx context.Context) ([]SnapshotSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, month, note, total_value, total_invested FROM snapshots ORDER BY month")
	if err != nil {
		return nil, fmt.Errorf("cannot list snapshots: %w", err)
	}
	defer rows.Close()

	summaries := []SnapshotSummary{}
	for rows.Next() {
		var sum SnapshotSummary
		var month, value, invested string
		if err := rows.Scan(&sum.ID, &month, &sum.Note, &value, &invested); err != nil {
			return nil, err
		}
		if sum.Month, err = date.ParseMonth(month); err != nil {
			return nil, err
		}
		if sum.TotalValue, err = parseAmount(value); err != nil {
			return nil, err
		}
		if sum.TotalInvested, err = parseAmount(invested); err != nil {
			return nil, err
		}
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}

// ListSnapshots returns the full snapshot history with records,
// chronologically ascending. This is what the calculators consume.
func (s *Store) ListSnapshots(ctx context.Context) ([]*folioplan.Snapshot, error) {
	if cached, ok := s.cache.Get(cacheKeySnapshots); ok {
		return cached.([]*folioplan.Snapshot), nil
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, month, note, total_value, total_invested FROM snapshots ORDER BY month")
	if err != nil {
		return nil, fmt.Errorf("cannot list snapshots: %w", err)
	}
	defer rows.Close()

	snapshots := []*folioplan.Snapshot{}
	for rows.Next() {
		var snap folioplan.Snapshot
		var month, value, invested string
		if err := rows.Scan(&snap.ID, &month, &snap.Note, &value, &invested); err != nil {
			return nil, err
		}
		if snap.Month, err = date.ParseMonth(month); err != nil {
			return nil, err
		}
		if snap.TotalValue, err = parseAmount(value); err != nil {
			return nil, err
		}
		if snap.TotalInvested, err = parseAmount(invested); err != nil {
			return nil, err
		}
		snapshots = append(snapshots, &snap)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, snap := range snapshots {
		if snap.Records, err = s.loadRecords(ctx, snap.ID); err != nil {
			return nil, err
		}
	}
	s.cache.SetDefault(cacheKeySnapshots, snapshots)
	return snapshots, nil
}

func (s *Store) loadRecords(ctx context.Context, snapshotID string) ([]folioplan.HoldingRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT asset_id, name, category, unit_price, quantity, market_value, total_cost,
			added_quantity, added_principal
		FROM holding_records WHERE snapshot_id = ? ORDER BY position`, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("cannot load records of %q: %w", snapshotID, err)
	}
	defer rows.Close()

	var records []folioplan.HoldingRecord
	for rows.Next() {
		var r folioplan.HoldingRecord
		var category, price, qty, value, cost, addedQty, addedPrincipal string
		if err := rows.Scan(&r.AssetID, &r.Name, &category, &price, &qty, &value, &cost,
			&addedQty, &addedPrincipal); err != nil {
			return nil, err
		}
		r.Category = folioplan.AssetCategory(category)
		if r.UnitPrice, err = parseAmount(price); err != nil {
			return nil, err
		}
		if r.Quantity, err = parseQuantity(qty); err != nil {
			return nil, err
		}
		if r.MarketValue, err = parseAmount(value); err != nil {
			return nil, err
		}
		if r.TotalCost, err = parseAmount(cost); err != nil {
			return nil, err
		}
		if r.AddedQuantity, err = parseQuantity(addedQty); err != nil {
			return nil, err
		}
		if r.AddedPrincipal, err = parseAmount(addedPrincipal); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// GetSnapshot returns the snapshot of the given month with its records.
func (s *Store) GetSnapshot(ctx context.Context, m date.Month) (*folioplan.Snapshot, error) {
	snapshots, err := s.ListSnapshots(ctx)
	if err != nil {
		return nil, err
	}
	for _, snap := range snapshots {
		if snap.Month == m {
			return snap, nil
		}
	}
	return nil, ErrNotFound
}

// SaveSnapshot inserts or fully replaces the snapshot of its month. Totals
// are recomputed from the records before writing; the cached aggregates in
// the database are never trusted over the records.
func (s *Store) SaveSnapshot(ctx context.Context, snap *folioplan.Snapshot) error {
	if snap.ID == "" {
		return errors.New("snapshot id is required")
	}
	if snap.Month.IsZero() {
		return errors.New("snapshot month is required")
	}
	snap.RecomputeTotals()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// a month has at most one snapshot: replace any existing one
	var existingID string
	err = tx.QueryRowContext(ctx, "SELECT id FROM snapshots WHERE month = ?", snap.Month.String()).Scan(&existingID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	if existingID != "" && existingID != snap.ID {
		if _, err := tx.ExecContext(ctx, "DELETE FROM snapshots WHERE id = ?", existingID); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO snapshots (id, month, note, total_value, total_invested) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET month=excluded.month, note=excluded.note,
			total_value=excluded.total_value, total_invested=excluded.total_invested`,
		snap.ID, snap.Month.String(), snap.Note,
		snap.TotalValue.Decimal().String(), snap.TotalInvested.Decimal().String()); err != nil {
		return fmt.Errorf("cannot save snapshot %q: %w", snap.ID, err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM holding_records WHERE snapshot_id = ?", snap.ID); err != nil {
		return err
	}
	for i, r := range snap.Records {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO holding_records (snapshot_id, position, asset_id, name, category,
				unit_price, quantity, market_value, total_cost, added_quantity, added_principal)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			snap.ID, i, r.AssetID, r.Name, string(r.Category),
			r.UnitPrice.Decimal().String(), r.Quantity.String(),
			r.MarketValue.Decimal().String(), r.TotalCost.Decimal().String(),
			r.AddedQuantity.String(), r.AddedPrincipal.Decimal().String()); err != nil {
			return fmt.Errorf("cannot save record %q of %q: %w", r.AssetID, snap.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

// DeleteSnapshot removes the snapshot of the given month.
func (s *Store) DeleteSnapshot(ctx context.Context, m date.Month) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM snapshots WHERE month = ?", m.String())
	if err != nil {
		return fmt.Errorf("cannot delete snapshot %q: %w", m, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	s.invalidate()
	return nil
}
