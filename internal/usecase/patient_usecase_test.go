package usecase

import (
	"testing"

	"hospital-scheduling/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/gorm"
)

func newPatientUsecase(db *gorm.DB) PatientUsecase {
	return NewPatientUsecase(
		db,
		newTestLogger(),
		repository.NewPatientRepository(),
		repository.NewAppointmentRepository(),
		noopAudit{},
	)
}

func TestDeletePatientRefusedWhileAppointmentsExist(t *testing.T) {
	db, mock := newMockDB(t)
	u := newPatientUsecase(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "patients" WHERE id = \$1`).
		WithArgs(5, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "national_id", "first_name", "last_name"}).
			AddRow(5, "3201234567", "Sara", "Ahmadi"))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "appointments" WHERE patient_id = \$1`).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectRollback()

	if err := u.DeletePatient(managerContext(), 5); err != ErrPatientHasAppointments {
		t.Fatalf("expected ErrPatientHasAppointments, got %v", err)
	}
	// No DELETE may reach the store while appointments reference the row
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDeletePatientMissingRowReportsNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	u := newPatientUsecase(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "patients" WHERE id = \$1`).
		WithArgs(99, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "national_id", "first_name", "last_name"}))
	mock.ExpectRollback()

	if err := u.DeletePatient(managerContext(), 99); err != ErrPatientNotFound {
		t.Fatalf("expected ErrPatientNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
