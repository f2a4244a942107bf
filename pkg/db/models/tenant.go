package models

import (
	"time"

	"github.com/google/uuid"
)

// Tenant is one shop whose data is isolated from all others.
type Tenant struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
