package usecase

import (
	"context"
	"errors"

	"clinic-booking/internal/converter"
	"clinic-booking/internal/delivery/dto"
	"clinic-booking/internal/domain/entity"
	"clinic-booking/internal/domain/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	DefaultAuditLogLimit = 100
	MaxAuditLogLimit     = 500
)

var (
	ErrInvalidAuditAction = errors.New("unknown audit action")
)

type AuditLogUsecase interface {
	ListAuditLogs(ctx context.Context, query *dto.AuditLogQuery) (*dto.AuditLogListResponse, error)
}

type auditLogUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	auditLogRepo repository.AuditLogRepository
}

func NewAuditLogUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	auditLogRepo repository.AuditLogRepository,
) AuditLogUsecase {
	return &auditLogUsecase{
		db:           db,
		log:          log,
		auditLogRepo: auditLogRepo,
	}
}

// ListAuditLogs returns entries newest first. The limit defaults to 100 and is capped at 500.
func (u *auditLogUsecase) ListAuditLogs(ctx context.Context, query *dto.AuditLogQuery) (*dto.AuditLogListResponse, error) {
	action := entity.AuditAction(query.Action)
	if action != "" && !action.IsValid() {
		return nil, ErrInvalidAuditAction
	}

	limit := query.Limit
	switch {
	case limit <= 0:
		limit = DefaultAuditLogLimit
	case limit > MaxAuditLogLimit:
		limit = MaxAuditLogLimit
	}

	logs, err := u.auditLogRepo.List(u.db.WithContext(ctx), action, limit)
	if err != nil {
		u.log.Warnf("Failed to find audit logs: %+v", err)
		return nil, err
	}

	return &dto.AuditLogListResponse{
		Logs:  converter.AuditLogsToResponses(logs),
		Limit: limit,
		Total: len(logs),
	}, nil
}
