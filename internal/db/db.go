package db

import (
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"aeriesbridge/internal/models"
)

var DB *gorm.DB

// Init opens the Aeries mirror database and migrates the tables this
// service owns. Fatal on failure; the API is useless without a store.
func Init(dsn string) {
	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("connection to db failed:", err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		log.Fatal("failed to get db from GORM: ", err)
	}
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	log.Println("connected to database")

	for _, model := range []any{
		&models.APIUser{},
		&models.Student{},
		&models.School{},
		&models.SUIARecord{},
		&models.ADSRecord{},
		&models.DSPRecord{},
		&models.Document{},
	} {
		if err := DB.AutoMigrate(model); err != nil {
			log.Fatalf("automigration failed for %T: %v", model, err)
		}
	}
}
