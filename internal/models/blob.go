package models

import "time"

// LocalBlob is one string-keyed document in local storage.
type LocalBlob struct {
	Key       string    `gorm:"column:blob_key;primaryKey;size:64" json:"key"`
	Value     string    `gorm:"type:text;not null" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides the default table name.
func (LocalBlob) TableName() string { return "local_blobs" }
