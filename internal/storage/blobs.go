// Package storage keeps string-keyed JSON documents in the local database.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/XBigRoad/banquet-master/internal/models"
)

// BlobStore reads and writes whole documents by key.
type BlobStore struct {
	db *gorm.DB
}

// NewBlobStore returns a store backed by the local_blobs table.
func NewBlobStore(db *gorm.DB) *BlobStore {
	return &BlobStore{db: db}
}

// Get returns the document stored under key. ok is false when the key is absent.
func (s *BlobStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var b models.LocalBlob
	err := s.db.WithContext(ctx).Where("blob_key = ?", key).First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", key, err)
	}
	return []byte(b.Value), true, nil
}

// Put writes value under key, replacing any previous document.
func (s *BlobStore) Put(ctx context.Context, key string, value []byte) error {
	b := models.LocalBlob{Key: key, Value: string(value), UpdatedAt: time.Now()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "blob_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&b).Error
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// Delete removes the document stored under key.
func (s *BlobStore) Delete(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).Where("blob_key = ?", key).Delete(&models.LocalBlob{}).Error; err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}
