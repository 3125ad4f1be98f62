package model

// Audit log levels
const (
	AuditLevelInfo    = "info"
	AuditLevelWarning = "warning"
	AuditLevelError   = "error"
)

// Audit log categories
const (
	AuditCategoryAuth        = "auth"
	AuditCategoryPublication = "publication"
	AuditCategoryEvent       = "event"
	AuditCategoryFeedback    = "feedback"
	AuditCategoryUser        = "user"
	AuditCategorySystem      = "system"
)
