package dto

import "time"

type AuditLogQuery struct {
	Action string
	Limit  int
}

// Response DTOs

type AuditLogResponse struct {
	ID        int64     `json:"id"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	Username  *string   `json:"username,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type AuditLogListResponse struct {
	Logs  []AuditLogResponse `json:"logs"`
	Limit int                `json:"limit"`
	Total int                `json:"total"`
}
