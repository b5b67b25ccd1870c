package repository

import (
	"hospital-scheduling/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AppointmentRepository interface {
	Create(db *gorm.DB, appointment *entity.Appointment) error
	FindByID(db *gorm.DB, id int) (*entity.Appointment, error)
	FindAll(db *gorm.DB) ([]entity.Appointment, error)
	FindByDoctorUserID(db *gorm.DB, userID uuid.UUID) ([]entity.Appointment, error)
	FindByPatientUserID(db *gorm.DB, userID uuid.UUID) ([]entity.Appointment, error)
	Update(db *gorm.DB, appointment *entity.Appointment) (int64, error)
	Delete(db *gorm.DB, id int) (int64, error)
	CountByDoctorID(db *gorm.DB, doctorID int) (int64, error)
	CountByPatientID(db *gorm.DB, patientID int) (int64, error)
}
