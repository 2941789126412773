package models

// TableName overrides
func (EscrowSession) TableName() string { return "escrow_sessions" }

func (AuditLog) TableName() string { return "audit_logs" }

// All lists every persisted model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&GiftCard{},
		&Trade{},
		&EscrowSession{},
		&Sale{},
		&Dispute{},
		&FraudFlag{},
		&PlatformSetting{},
		&AuditLog{},
	}
}
