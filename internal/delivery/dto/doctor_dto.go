package dto

import "github.com/google/uuid"

// Request DTOs

type CreateDoctorRequest struct {
	Email        string `json:"email" validate:"required,email"`
	FirstName    string `json:"first_name" validate:"required,min=2"`
	LastName     string `json:"last_name" validate:"required,min=2"`
	NationalID   string `json:"national_id" validate:"required"`
	PhoneNumber  string `json:"phone_number" validate:"omitempty"`
	DepartmentID int    `json:"department_id" validate:"required,min=1"`
}

type UpdateDoctorRequest struct {
	FirstName    string `json:"first_name" validate:"omitempty,min=2"`
	LastName     string `json:"last_name" validate:"omitempty,min=2"`
	NationalID   string `json:"national_id" validate:"omitempty"`
	PhoneNumber  string `json:"phone_number" validate:"omitempty"`
	DepartmentID int    `json:"department_id" validate:"omitempty,min=1"`
}

type RelinkDoctorRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// Response DTOs

type DoctorResponse struct {
	ID             int        `json:"id"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	NationalID     string     `json:"national_id"`
	PhoneNumber    string     `json:"phone_number,omitempty"`
	DepartmentID   int        `json:"department_id"`
	DepartmentName string     `json:"department_name,omitempty"`
	UserID         *uuid.UUID `json:"user_id,omitempty"`
}

type DoctorListResponse struct {
	Doctors []DoctorResponse `json:"doctors"`
	Total   int              `json:"total"`
}
