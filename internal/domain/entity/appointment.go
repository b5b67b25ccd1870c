package entity

import "time"

// Appointment links one doctor and one patient at a date/time. Both foreign
// keys are declared RESTRICT in the schema: deleting a doctor or patient with
// appointments fails instead of cascading.
type Appointment struct {
	ID              int       `gorm:"primaryKey;autoIncrement" json:"id"`
	PatientID       int       `gorm:"not null;index" json:"patient_id"`
	DoctorID        int       `gorm:"not null;index" json:"doctor_id"`
	AppointmentDate time.Time `gorm:"not null;index" json:"appointment_date"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Patient Patient `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	Doctor  Doctor  `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
}

func (Appointment) TableName() string {
	return "appointments"
}
