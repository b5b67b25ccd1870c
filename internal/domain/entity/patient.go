package entity

import (
	"time"

	"github.com/google/uuid"
)

// Patient is a profile record optionally linked to an identity account.
type Patient struct {
	ID          int        `gorm:"primaryKey;autoIncrement" json:"id"`
	NationalID  string     `gorm:"type:varchar(20);not null;uniqueIndex" json:"national_id"`
	FirstName   string     `gorm:"type:varchar(100);not null" json:"first_name"`
	LastName    string     `gorm:"type:varchar(100);not null" json:"last_name"`
	PhoneNumber string     `gorm:"type:varchar(20)" json:"phone_number,omitempty"`
	Address     string     `gorm:"type:text" json:"address,omitempty"`
	DateOfBirth time.Time  `gorm:"type:date;not null" json:"date_of_birth"`
	UserID      *uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"user_id,omitempty"`

	// Relationships
	User         *User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Appointments []Appointment `gorm:"foreignKey:PatientID" json:"appointments,omitempty"`
}

func (Patient) TableName() string {
	return "patients"
}

// FullName returns the display name used in listings.
func (p *Patient) FullName() string {
	return p.FirstName + " " + p.LastName
}
