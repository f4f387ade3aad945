package entities

import "time"

type AuditEventType string

const (
	AuditEventLogin AuditEventType = "login"
	AuditEventToken AuditEventType = "token"
)

// AuditStatus mirrors the three authentication outcomes.
type AuditStatus string

const (
	AuditStatusSuccess  AuditStatus = "success"
	AuditStatusRejected AuditStatus = "rejected"
	AuditStatusFailed   AuditStatus = "failed"
)

// AuditEvent records one authentication attempt. Credentials are never stored.
type AuditEvent struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"index" json:"user_id,omitempty"`
	Username  string         `gorm:"index;size:64" json:"username,omitempty"`
	EventType AuditEventType `gorm:"index;size:20" json:"event_type"`
	Strategy  string         `gorm:"size:20" json:"strategy,omitempty"`
	Status    AuditStatus    `gorm:"size:20" json:"status"`
	Reason    string         `gorm:"size:200" json:"reason,omitempty"`
	ErrorMsg  string         `gorm:"size:500" json:"-"`
	RequestID string         `gorm:"size:128" json:"request_id,omitempty"`
	IPAddress string         `gorm:"size:45" json:"ip_address,omitempty"`
	UserAgent string         `gorm:"size:500" json:"user_agent,omitempty"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
}

func (AuditEvent) TableName() string {
	return "audit_events"
}
