package audit

import "time"

// AuditLog is one immutable record of a state change. Rows are only ever inserted.
type AuditLog struct {
	ID          uint           `json:"id" gorm:"primarykey"`
	ActorID     *uint          `json:"actor_id" gorm:"index"`
	ActorEmail  string         `json:"actor_email" gorm:"size:255"`
	ActorName   string         `json:"actor_name" gorm:"size:255"`
	Action      string         `json:"action" gorm:"size:64;not null;index"`
	Description string         `json:"description" gorm:"not null"`
	Metadata    map[string]any `json:"metadata" gorm:"serializer:json"`
	CreatedAt   time.Time      `json:"created_at" gorm:"index"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

func Models() []any {
	return []any{&AuditLog{}}
}
