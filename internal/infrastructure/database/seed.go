package database

import (
	"fmt"

	"clinic-booking/internal/domain/entity"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type seedDoctor struct {
	name      string
	specialty string
	username  string
	password  string
}

var demoDoctors = []seedDoctor{
	{name: "Иванов И.И.", specialty: "Терапевт", username: "ivanov", password: "doc1"},
	{name: "Петрова А.А.", specialty: "Хирург", username: "petrova", password: "doc2"},
	{name: "Сидоров В.В.", specialty: "Педиатр", username: "sidorov", password: "doc3"},
}

// SeedDemoDoctors inserts the demo roster when the doctors table is empty.
func SeedDemoDoctors(db *gorm.DB, log *logrus.Logger) error {
	var count int64
	if err := db.Model(&entity.Doctor{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count doctors: %w", err)
	}
	if count > 0 {
		log.Debugf("Skipping seed, %d doctors already present", count)
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		for _, d := range demoDoctors {
			hash, err := bcrypt.GenerateFromPassword([]byte(d.password), bcrypt.DefaultCost)
			if err != nil {
				return fmt.Errorf("hash password for %s: %w", d.username, err)
			}
			username := d.username
			doctor := &entity.Doctor{
				Name:         d.name,
				Specialty:    d.specialty,
				Username:     &username,
				PasswordHash: string(hash),
			}
			if err := tx.Create(doctor).Error; err != nil {
				return fmt.Errorf("seed doctor %s: %w", d.username, err)
			}
		}
		log.Infof("Seeded %d demo doctors", len(demoDoctors))
		return nil
	})
}
