package db

import (
	"github.com/nexuscore/negotiator/entity"
	"github.com/nexuscore/negotiator/errors"
	"gorm.io/gorm"
)

func AutoMigrate(db *gorm.DB) error {
	return errors.WithStack(db.AutoMigrate(
		&entity.Supplier{},
		&entity.Contract{},
		&entity.Policy{},
		&entity.Thread{},
		&entity.Message{},
	))
}

func DropAll(db *gorm.DB) error {
	return errors.WithStack(db.Migrator().DropTable(
		&entity.Message{},
		&entity.Thread{},
		&entity.Policy{},
		&entity.Contract{},
		&entity.Supplier{},
	))
}
