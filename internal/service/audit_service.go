package service

import (
	"context"

	"clinic-booking/internal/domain/entity"
	"clinic-booking/internal/domain/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AuditService appends audit entries. Recording never fails the caller: write errors are
// logged and dropped.
type AuditService interface {
	Record(ctx context.Context, action entity.AuditAction, details string, actor *string)
}

type auditService struct {
	db        *gorm.DB
	log       *logrus.Logger
	auditRepo repository.AuditLogRepository
}

func NewAuditService(db *gorm.DB, log *logrus.Logger, auditRepo repository.AuditLogRepository) AuditService {
	return &auditService{
		db:        db,
		log:       log,
		auditRepo: auditRepo,
	}
}

func (s *auditService) Record(ctx context.Context, action entity.AuditAction, details string, actor *string) {
	auditLog := &entity.AuditLog{
		Action:   action,
		Details:  details,
		Username: actor,
	}

	if err := s.auditRepo.Create(s.db.WithContext(ctx), auditLog); err != nil {
		s.log.Warnf("Failed to create audit log %s: %+v", action, err)
	}
}

// Actor is a convenience for building the nullable username column.
func Actor(name string) *string {
	if name == "" {
		return nil
	}
	return &name
}
