package handler

import (
	"errors"
	"net/http"

	"clinic-booking/internal/delivery/dto"
	"clinic-booking/internal/usecase"
	"clinic-booking/pkg/response"
)

type AuditLogHandler struct {
	auditLogUsecase usecase.AuditLogUsecase
}

func NewAuditLogHandler(auditLogUsecase usecase.AuditLogUsecase) *AuditLogHandler {
	return &AuditLogHandler{
		auditLogUsecase: auditLogUsecase,
	}
}

func (h *AuditLogHandler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	limit, _, err := queryInt(r, "limit")
	if err != nil {
		response.BadRequest(w, "Invalid limit")
		return
	}

	logs, err := h.auditLogUsecase.ListAuditLogs(r.Context(), &dto.AuditLogQuery{
		Action: r.URL.Query().Get("action"),
		Limit:  int(limit),
	})
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidAuditAction) {
			response.BadRequest(w, "Unknown audit action")
			return
		}
		response.InternalServerError(w, "Failed to get audit logs")
		return
	}

	response.SuccessWithMeta(w, http.StatusOK, "Audit logs retrieved successfully", logs.Logs, &response.Meta{
		Limit: logs.Limit,
		Total: int64(logs.Total),
	})
}
