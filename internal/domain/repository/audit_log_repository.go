package repository

import (
	"clinic-booking/internal/domain/entity"

	"gorm.io/gorm"
)

type AuditLogRepository interface {
	Create(db *gorm.DB, log *entity.AuditLog) error
	// List returns entries newest first. An empty action matches every action.
	List(db *gorm.DB, action entity.AuditAction, limit int) ([]entity.AuditLog, error)
}
