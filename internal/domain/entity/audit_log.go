package entity

import "time"

// AuditAction names an auditable event.
type AuditAction string

const (
	AuditActionAdminLogin              AuditAction = "admin_login"
	AuditActionAdminLoginFail          AuditAction = "admin_login_fail"
	AuditActionDoctorLogin             AuditAction = "doctor_login"
	AuditActionDoctorLoginFail         AuditAction = "doctor_login_fail"
	AuditActionLoginBlocked            AuditAction = "login_blocked"
	AuditActionAddDoctor               AuditAction = "add_doctor"
	AuditActionDeleteDoctor            AuditAction = "delete_doctor"
	AuditActionUpdateDoctor            AuditAction = "update_doctor"
	AuditActionUpdateDoctorCredentials AuditAction = "update_doctor_credentials"
	AuditActionAddAppointment          AuditAction = "add_appointment"
	AuditActionDeleteAppointment       AuditAction = "delete_appointment"
)

var auditActions = map[AuditAction]struct{}{
	AuditActionAdminLogin:              {},
	AuditActionAdminLoginFail:          {},
	AuditActionDoctorLogin:             {},
	AuditActionDoctorLoginFail:         {},
	AuditActionLoginBlocked:            {},
	AuditActionAddDoctor:               {},
	AuditActionDeleteDoctor:            {},
	AuditActionUpdateDoctor:            {},
	AuditActionUpdateDoctorCredentials: {},
	AuditActionAddAppointment:          {},
	AuditActionDeleteAppointment:       {},
}

// IsValid reports whether a is one of the known actions.
func (a AuditAction) IsValid() bool {
	_, ok := auditActions[a]
	return ok
}

// AuditLog is an append-only record of a security or data-changing event.
type AuditLog struct {
	ID        int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	Action    AuditAction `gorm:"type:varchar(50);not null;index" json:"action"`
	Details   string      `gorm:"type:text" json:"details"`
	Username  *string     `gorm:"type:varchar(100)" json:"username,omitempty"`
	CreatedAt time.Time   `gorm:"autoCreateTime;index" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
