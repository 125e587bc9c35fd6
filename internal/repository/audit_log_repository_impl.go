package repository

import (
	"clinic-booking/internal/domain/entity"
	domainRepo "clinic-booking/internal/domain/repository"

	"gorm.io/gorm"
)

type auditLogRepository struct{}

func NewAuditLogRepository() domainRepo.AuditLogRepository {
	return &auditLogRepository{}
}

func (r *auditLogRepository) Create(db *gorm.DB, log *entity.AuditLog) error {
	return db.Create(log).Error
}

func (r *auditLogRepository) List(db *gorm.DB, action entity.AuditAction, limit int) ([]entity.AuditLog, error) {
	var logs []entity.AuditLog
	query := db.Model(&entity.AuditLog{})
	if action != "" {
		query = query.Where("action = ?", action)
	}
	err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}
