package models

import (
	"time"
)

// Asset is a stored image uploaded through the asset boundary. Its ID is
// usable as an element's image reference.
type Asset struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name        string    `json:"name"`
	ContentType string    `gorm:"type:varchar(64)" json:"content_type"`
	Data        []byte    `gorm:"type:blob" json:"-"`
	OwnerID     *string   `gorm:"index;type:varchar(255)" json:"owner_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
