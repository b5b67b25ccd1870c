package repository

import (
	"hospital-scheduling/internal/domain/entity"

	"gorm.io/gorm"
)

type DepartmentRepository interface {
	Create(db *gorm.DB, department *entity.Department) error
	FindByID(db *gorm.DB, id int) (*entity.Department, error)
	FindAll(db *gorm.DB) ([]entity.Department, error)
	Update(db *gorm.DB, department *entity.Department) (int64, error)
	Delete(db *gorm.DB, id int) (int64, error)
	CountDoctors(db *gorm.DB, departmentID int) (int64, error)
}
