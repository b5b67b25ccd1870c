package dto

import "time"

// Request DTOs

type CreateAppointmentRequest struct {
	DoctorID        int    `json:"doctor_id" validate:"required,min=1"`
	AppointmentDate string `json:"appointment_date" validate:"required"`
}

type UpdateAppointmentRequest struct {
	DoctorID        int    `json:"doctor_id" validate:"required,min=1"`
	PatientID       int    `json:"patient_id" validate:"required,min=1"`
	AppointmentDate string `json:"appointment_date" validate:"required"`
}

// Response DTOs

// AppointmentResponse carries the denormalized display data for listings:
// doctor, patient and department names resolved alongside each row.
type AppointmentResponse struct {
	ID              int       `json:"id"`
	DoctorID        int       `json:"doctor_id"`
	PatientID       int       `json:"patient_id"`
	AppointmentDate time.Time `json:"appointment_date"`
	DoctorName      string    `json:"doctor_name,omitempty"`
	PatientName     string    `json:"patient_name,omitempty"`
	DepartmentName  string    `json:"department_name,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int                   `json:"total"`
}
