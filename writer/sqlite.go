// Copyright 2019 Radiation Detection and Imaging (RDI), LLC
// Use of this source code is governed by the BSD 3-clause
// license that can be found in the LICENSE file.

package writer

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"

	"github.com/ctapipe-go/airshower/camera"
	"github.com/ctapipe-go/airshower/pipeline"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// sqliteBackend is the relational output_type (§4.7 "other" backends,
// supplemented from the reference implementation's DuckDB sink): two
// joined-shape tables, reconstructed_events and telescope_events,
// migrated into place with golang-migrate at Open time. Layers with no
// natural relational shape at this scope (r0, r1, dl0, monitor, raw
// images) are accepted but not persisted by this backend; jsonl remains
// the backend for those.
type sqliteBackend struct {
	db *sql.DB
}

func newSQLiteBackend() *sqliteBackend { return &sqliteBackend{} }

func (b *sqliteBackend) Open(path string, overwrite bool) error {
	if overwrite {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("writer: %w", err)
		}
	} else if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("writer: sqlite output %s exists; use overwrite to replace it", path)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("writer: %w", err)
	}
	b.db = db

	if err := b.migrate(); err != nil {
		db.Close()
		return err
	}
	return nil
}

func (b *sqliteBackend) migrate() error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("writer: %w", err)
	}
	driver, err := migratesqlite.WithInstance(b.db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("writer: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("writer: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("writer: migration failed: %w", err)
	}
	return nil
}

func (b *sqliteBackend) Close() error {
	if b.db == nil {
		return nil
	}
	return b.db.Close()
}

func (b *sqliteBackend) WriteSubarray(sub *camera.SubarrayDescription) error {
	for _, telID := range sub.TelIDs() {
		pos := sub.TelescopePositions[telID]
		desc := sub.Telescopes[telID]
		_, err := b.db.Exec(`INSERT OR REPLACE INTO telescopes (tel_id, x, y, z, focal_length) VALUES (?, ?, ?, ?, ?)`,
			telID, pos.X, pos.Y, pos.Z, desc.OpticsDescription.EffectiveFocalLength)
		if err != nil {
			return fmt.Errorf("writer: %w", err)
		}
	}
	return nil
}

func (b *sqliteBackend) WriteSimulationConfig(runID string, shower *pipeline.ShowerTruth) error { return nil }
func (b *sqliteBackend) WriteAtmosphereModel(name string) error                                 { return nil }
func (b *sqliteBackend) WriteMetaparam(runID string) error                                      { return nil }

func (b *sqliteBackend) WriteR0(event *pipeline.ArrayEvent) error       { return nil }
func (b *sqliteBackend) WriteR1(event *pipeline.ArrayEvent) error       { return nil }
func (b *sqliteBackend) WriteDL0(event *pipeline.ArrayEvent) error      { return nil }
func (b *sqliteBackend) WriteDL1Image(event *pipeline.ArrayEvent) error { return nil }
func (b *sqliteBackend) WriteMonitor(event *pipeline.ArrayEvent) error  { return nil }
func (b *sqliteBackend) WritePointing(event *pipeline.ArrayEvent) error { return nil }
func (b *sqliteBackend) WriteSimulatedCamera(event *pipeline.ArrayEvent) error { return nil }

func (b *sqliteBackend) WriteDL1(event *pipeline.ArrayEvent) error {
	for telID, cam := range event.DL1.Tels {
		if cam.ImageParameters == nil {
			continue
		}
		h := cam.ImageParameters.Hillas
		l := cam.ImageParameters.Leakage
		_, err := b.db.Exec(`INSERT OR REPLACE INTO telescope_events
			(event_id, tel_id, hillas_intensity, hillas_x, hillas_y, hillas_length, hillas_width, hillas_psi, leakage_intensity_width_2)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			event.EventID, telID, h.Intensity, h.X, h.Y, h.Length, h.Width, h.Psi, l.IntensityWidth2)
		if err != nil {
			return fmt.Errorf("writer: %w", err)
		}
	}
	return nil
}

func (b *sqliteBackend) WriteDL2(event *pipeline.ArrayEvent) error {
	if event.DL2 == nil {
		return nil
	}
	var trueAlt, trueAz, trueCoreX, trueCoreY, trueEnergy sql.NullFloat64
	if event.Simulation != nil && event.Simulation.Shower != nil {
		s := event.Simulation.Shower
		trueAlt = sql.NullFloat64{Float64: s.Alt, Valid: true}
		trueAz = sql.NullFloat64{Float64: s.Az, Valid: true}
		trueCoreX = sql.NullFloat64{Float64: s.CoreX, Valid: true}
		trueCoreY = sql.NullFloat64{Float64: s.CoreY, Valid: true}
		trueEnergy = sql.NullFloat64{Float64: s.Energy, Valid: true}
	}
	for name, geom := range event.DL2.Geometry {
		_, err := b.db.Exec(`INSERT OR REPLACE INTO reconstructed_events
			(event_id, reconstructor, is_valid, alt, az, core_x, core_y, core_pos_error, hmax, xmax, direction_error,
			 true_alt, true_az, true_core_x, true_core_y, true_energy)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			event.EventID, name, geom.IsValid, geom.Alt, geom.Az, geom.CoreX, geom.CoreY, geom.CorePosError,
			geom.Hmax, geom.Xmax, geom.DirectionError, trueAlt, trueAz, trueCoreX, trueCoreY, trueEnergy)
		if err != nil {
			return fmt.Errorf("writer: %w", err)
		}
	}
	for telID, tel := range event.DL2.Tels {
		for _, impact := range tel.ImpactParameters {
			_, err := b.db.Exec(`UPDATE telescope_events SET impact_distance = ? WHERE event_id = ? AND tel_id = ?`,
				impact.Distance, event.EventID, telID)
			if err != nil {
				return fmt.Errorf("writer: %w", err)
			}
		}
	}
	return nil
}

func (b *sqliteBackend) WriteSimulationShower(event *pipeline.ArrayEvent) error {
	// True shower parameters are folded directly into reconstructed_events
	// by WriteDL2 so the two joined-shape tables stay self-contained;
	// nothing to persist here on its own.
	return nil
}
