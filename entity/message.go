package entity

import (
	"gorm.io/gorm"
)

const (
	RoleBuyer    = "buyer"
	RoleSupplier = "supplier"
)

// Message is immutable once appended. Append order within a thread is the
// sole ordering relation in the system.
type Message struct {
	gorm.Model

	ThreadID uint
	Thread   Thread `gorm:"foreignKey:ThreadID"`

	Role    string
	Content string

	// Back-reference to the turn that produced the message, audit only.
	SourceTurnID string
}
