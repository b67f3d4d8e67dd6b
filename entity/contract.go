package entity

import (
	"gorm.io/gorm"
)

type Contract struct {
	gorm.Model

	SupplierID  uint
	Supplier    Supplier `gorm:"foreignKey:SupplierID"`
	Title       string
	Status      string `gorm:"default:draft"`
	ContentText string
}
