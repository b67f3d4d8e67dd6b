package entity

import (
	"gorm.io/gorm"
)

// Policy is a corporate policy document that clause text is evaluated
// against before a strategy is decided.
type Policy struct {
	gorm.Model

	Name        string
	Version     string
	TextContent string
	IsActive    bool `gorm:"default:true"`
}
