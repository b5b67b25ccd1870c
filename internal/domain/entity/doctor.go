package entity

import "github.com/google/uuid"

// Doctor is a profile record belonging to exactly one department. UserID is the
// optional link to an identity account; it stays nil until an account is
// provisioned for the doctor.
type Doctor struct {
	ID           int        `gorm:"primaryKey;autoIncrement" json:"id"`
	FirstName    string     `gorm:"type:varchar(100);not null" json:"first_name"`
	LastName     string     `gorm:"type:varchar(100);not null" json:"last_name"`
	NationalID   string     `gorm:"type:varchar(20);not null;index" json:"national_id"`
	PhoneNumber  string     `gorm:"type:varchar(20)" json:"phone_number,omitempty"`
	DepartmentID int        `gorm:"not null;index" json:"department_id"`
	UserID       *uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"user_id,omitempty"`

	// Relationships
	Department   Department    `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`
	User         *User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Appointments []Appointment `gorm:"foreignKey:DoctorID" json:"appointments,omitempty"`
}

func (Doctor) TableName() string {
	return "doctors"
}

// FullName returns the display name used in listings.
func (d *Doctor) FullName() string {
	return d.FirstName + " " + d.LastName
}
