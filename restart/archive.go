/*
 * archive.go, part of sire-go.
 *
 *
 * Copyright 2026 The sire-go Authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 *
 */

// Package restart keeps checkpoints of running simulations in a database,
// so a simulation can be continued, or examined, from any stored state.
package restart

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/chrys-athome/sire-sub022/stream"
	"github.com/chrys-athome/sire-sub022/system"
)

// ErrNotFound is returned when the requested checkpoint isn't stored.
var ErrNotFound = errors.New("restart: checkpoint not found")

// Archive stores checkpoints, filed under the UID of their system.
type Archive interface {
	Store(label string, c system.CheckPoint) (uint, error)
	Load(id uint) (system.CheckPoint, error)
	Latest(uid uuid.UUID) (system.CheckPoint, error)
	List(uid uuid.UUID) ([]Record, error)
	Prune(uid uuid.UUID, keep int) (int64, error)
	Close() error
}

// Record is one stored checkpoint. Data holds the checkpoint as written by
// system.CheckPoint.Save, and is left empty by List.
type Record struct {
	ID         uint   `gorm:"primaryKey"`
	SystemUID  string `gorm:"column:system_uid;index;not null"`
	SystemID   uint64 `gorm:"column:system_id;not null"`
	SystemName string `gorm:"not null"`
	Major      uint64 `gorm:"not null"`
	Minor      uint64 `gorm:"not null"`
	Label      string
	Format     int    `gorm:"not null"`
	Data       []byte `gorm:"not null"`
	CreatedAt  time.Time
}

// SQLiteArchive is an Archive in an SQLite database file.
type SQLiteArchive struct {
	db     *gorm.DB
	format stream.Format
}

// OpenSQLite opens, creating it if needed, the archive in the file path.
// Checkpoints are stored compressed with f.
func OpenSQLite(path string, f stream.Format) (*SQLiteArchive, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("restart: opening %s: %w", path, err)
	}
	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, fmt.Errorf("restart: migrating %s: %w", path, err)
	}
	return &SQLiteArchive{db: db, format: f}, nil
}

// Store saves c with the given label and returns the ID of its record.
func (a *SQLiteArchive) Store(label string, c system.CheckPoint) (uint, error) {
	var buf bytes.Buffer
	if err := c.Save(&buf, a.format); err != nil {
		return 0, err
	}
	v := c.Version()
	rec := Record{
		SystemUID:  c.UID().String(),
		SystemID:   uint64(c.ID()),
		SystemName: c.System().Name(),
		Major:      v.Major,
		Minor:      v.Minor,
		Label:      label,
		Format:     int(a.format),
		Data:       buf.Bytes(),
	}
	if err := a.db.Create(&rec).Error; err != nil {
		return 0, fmt.Errorf("restart: storing %v: %w", c, err)
	}
	return rec.ID, nil
}

func decode(rec Record) (system.CheckPoint, error) {
	c, err := system.LoadCheckPoint(bytes.NewReader(rec.Data))
	if err != nil {
		return system.CheckPoint{}, fmt.Errorf("restart: record %d: %w", rec.ID, err)
	}
	return c, nil
}

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	}
	return fmt.Errorf("restart: %s: %w", what, err)
}

// Load returns the checkpoint stored with the given ID.
func (a *SQLiteArchive) Load(id uint) (system.CheckPoint, error) {
	var rec Record
	if err := a.db.First(&rec, id).Error; err != nil {
		return system.CheckPoint{}, notFound(err, fmt.Sprintf("record %d", id))
	}
	return decode(rec)
}

// Latest returns the last checkpoint stored for the system uid.
func (a *SQLiteArchive) Latest(uid uuid.UUID) (system.CheckPoint, error) {
	var rec Record
	if err := a.db.Where("system_uid = ?", uid.String()).Order("id DESC").First(&rec).Error; err != nil {
		return system.CheckPoint{}, notFound(err, "system "+uid.String())
	}
	return decode(rec)
}

// List returns, oldest first, the records of the system uid without their data.
func (a *SQLiteArchive) List(uid uuid.UUID) ([]Record, error) {
	var recs []Record
	err := a.db.Omit("data").Where("system_uid = ?", uid.String()).Order("id ASC").Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("restart: listing %s: %w", uid, err)
	}
	return recs, nil
}

// Prune deletes all but the newest keep checkpoints of the system uid and
// returns how many were deleted.
func (a *SQLiteArchive) Prune(uid uuid.UUID, keep int) (int64, error) {
	var deleted int64
	err := a.db.Transaction(func(tx *gorm.DB) error {
		var ids []uint
		if err := tx.Model(&Record{}).Where("system_uid = ?", uid.String()).Order("id DESC").Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) <= keep {
			return nil
		}
		res := tx.Delete(&Record{}, ids[max(keep, 0):])
		deleted = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return 0, fmt.Errorf("restart: pruning %s: %w", uid, err)
	}
	return deleted, nil
}

// Close closes the database.
func (a *SQLiteArchive) Close() error {
	db, err := a.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}

var _ Archive = (*SQLiteArchive)(nil)
