package entity

import (
	"gorm.io/gorm"
)

type Supplier struct {
	gorm.Model

	Name string `gorm:"index"`

	// Legal Entity Identifier, used as the lookup key for external data.
	LEI string

	// 0 (safe) to 100 (critical), maintained by the supplier
	// intelligence service.
	RiskScore float64
}
