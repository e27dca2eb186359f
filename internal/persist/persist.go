// Package persist stores the client session in a small sqlite file so it
// survives restarts of the CLI.
package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/storefront/internal/store"
	"github.com/Skotchmaster/storefront/pkg/db"
)

const stateKey = "session"

type entry struct {
	Slot      string `gorm:"primaryKey;size:64"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

func (entry) TableName() string { return "client_state" }

type GormStore struct {
	DB *gorm.DB
}

// Open creates or opens the state file at path.
func Open(ctx context.Context, path string) (*GormStore, error) {
	gdb, err := db.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	return New(ctx, gdb)
}

func New(ctx context.Context, gdb *gorm.DB) (*GormStore, error) {
	if err := gdb.WithContext(ctx).AutoMigrate(&entry{}); err != nil {
		return nil, fmt.Errorf("migrate client_state: %w", err)
	}
	return &GormStore{DB: gdb}, nil
}

func (g *GormStore) Load(ctx context.Context) (*store.State, error) {
	var e entry
	err := g.DB.WithContext(ctx).Where("slot = ?", stateKey).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var s store.State
	if err := json.Unmarshal([]byte(e.Value), &s); err != nil {
		return nil, fmt.Errorf("decode client state: %w", err)
	}
	return &s, nil
}

func (g *GormStore) Save(ctx context.Context, s store.State) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	e := entry{Slot: stateKey, Value: string(data)}
	return g.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slot"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&e).Error
}

func (g *GormStore) Purge(ctx context.Context) error {
	return g.DB.WithContext(ctx).Where("1 = 1").Delete(&entry{}).Error
}

func (g *GormStore) Close() error {
	return db.Close(g.DB)
}
