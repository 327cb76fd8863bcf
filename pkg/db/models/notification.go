package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/rmoralesf/vitalstack-backend/pkg/enums"
)

// Notification stores admin-facing alerts. Rows are ephemeral: they are
// deleted once acknowledged or swept by the cleanup job.
type Notification struct {
	ID        uuid.UUID              `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Type      enums.NotificationType `gorm:"type:notification_type;not null"`
	Message   string                 `gorm:"type:text;not null"`
	OrderID   *uuid.UUID             `gorm:"column:order_id;type:uuid"`
	ReadAt    *time.Time             `gorm:"type:timestamptz"`
	CreatedAt time.Time              `gorm:"type:timestamptz;default:now()"`
}
