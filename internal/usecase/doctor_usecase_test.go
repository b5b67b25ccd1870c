package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"hospital-scheduling/config"
	"hospital-scheduling/internal/delivery/dto"
	"hospital-scheduling/internal/delivery/http/middleware"
	"hospital-scheduling/internal/domain/entity"
	"hospital-scheduling/internal/repository"
	"hospital-scheduling/internal/service"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func newDoctorUsecase(db *gorm.DB, defaultPassword string) DoctorUsecase {
	log := newTestLogger()
	identityService := service.NewIdentityService(log, config.IdentityConfig{
		DoctorDefaultPassword: defaultPassword,
	}, repository.NewUserRepository())

	return NewDoctorUsecase(
		db,
		log,
		repository.NewDoctorRepository(),
		repository.NewAppointmentRepository(),
		identityService,
		noopAudit{},
	)
}

func managerContext() context.Context {
	return middleware.WithIdentity(context.Background(), uuid.New(), entity.RoleIDManager)
}

func TestCreateDoctorFailsWithoutDefaultPassword(t *testing.T) {
	db, mock := newMockDB(t)
	u := newDoctorUsecase(db, "")

	mock.ExpectBegin()
	mock.ExpectRollback()

	req := &dto.CreateDoctorRequest{
		Email:        "doc@example.com",
		FirstName:    "Reza",
		LastName:     "Karimi",
		NationalID:   "1234567890",
		DepartmentID: 2,
	}

	_, err := u.CreateDoctor(managerContext(), req)
	if err != service.ErrDefaultPasswordNotSet {
		t.Fatalf("expected ErrDefaultPasswordNotSet, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateDoctorPersistsAccountAndProfileTogether(t *testing.T) {
	db, mock := newMockDB(t)
	u := newDoctorUsecase(db, "changeme123")

	accountID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(accountID.String()))
	mock.ExpectQuery(`INSERT INTO "doctors"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectCommit()

	req := &dto.CreateDoctorRequest{
		Email:        "doc@example.com",
		FirstName:    "Reza",
		LastName:     "Karimi",
		NationalID:   "1234567890",
		DepartmentID: 2,
	}

	resp, err := u.CreateDoctor(managerContext(), req)
	if err != nil {
		t.Fatalf("CreateDoctor: %v", err)
	}
	if resp.ID != 7 {
		t.Fatalf("expected doctor id 7, got %d", resp.ID)
	}
	if resp.UserID == nil || *resp.UserID != accountID {
		t.Fatalf("expected doctor linked to account %s, got %v", accountID, resp.UserID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateDoctorRollsBackAccountWhenProfileInsertFails(t *testing.T) {
	db, mock := newMockDB(t)
	u := newDoctorUsecase(db, "changeme123")

	boom := errors.New("insert failed")

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New().String()))
	mock.ExpectQuery(`INSERT INTO "doctors"`).
		WillReturnError(boom)
	mock.ExpectRollback()

	req := &dto.CreateDoctorRequest{
		Email:        "doc@example.com",
		FirstName:    "Reza",
		LastName:     "Karimi",
		NationalID:   "1234567890",
		DepartmentID: 2,
	}

	if _, err := u.CreateDoctor(managerContext(), req); !errors.Is(err, boom) {
		t.Fatalf("expected insert failure to propagate, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRelinkIdentityRejectsZeroID(t *testing.T) {
	db, _ := newMockDB(t)
	u := newDoctorUsecase(db, "changeme123")

	_, err := u.RelinkIdentity(managerContext(), 0, &dto.RelinkDoctorRequest{Email: "doc@example.com"})
	if err != ErrInvalidDoctorID {
		t.Fatalf("expected ErrInvalidDoctorID, got %v", err)
	}
}

func expectRelinkUpToLinkFailure(mock sqlmock.Sqlmock, accountID uuid.UUID, linkErr error) {
	mock.ExpectQuery(`SELECT (.+) FROM "doctors" WHERE id = \$1`).
		WithArgs(4, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "first_name", "last_name", "national_id", "department_id"}).
			AddRow(4, "Reza", "Karimi", "1234567890", 2))
	mock.ExpectQuery(`SELECT (.+) FROM "departments"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))

	// Account creation commits on its own, outside any surrounding transaction
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(accountID.String()))
	mock.ExpectCommit()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "doctors" SET`).
		WillReturnError(linkErr)
	mock.ExpectRollback()
}

func TestRelinkIdentityCompensatesWhenLinkFails(t *testing.T) {
	db, mock := newMockDB(t)
	u := newDoctorUsecase(db, "changeme123")

	accountID := uuid.New()
	boom := errors.New("update failed")

	expectRelinkUpToLinkFailure(mock, accountID, boom)

	// Compensation deletes the freshly created account
	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "users"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	_, err := u.RelinkIdentity(managerContext(), 4, &dto.RelinkDoctorRequest{Email: "new@example.com"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected original failure to surface after cleanup, got %v", err)
	}
	if strings.Contains(err.Error(), "cleanup also failed") {
		t.Fatalf("cleanup succeeded but error reports cleanup failure: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRelinkIdentityReportsBothFaultsWhenCleanupFails(t *testing.T) {
	db, mock := newMockDB(t)
	u := newDoctorUsecase(db, "changeme123")

	accountID := uuid.New()
	boom := errors.New("update failed")

	expectRelinkUpToLinkFailure(mock, accountID, boom)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "users"`).
		WillReturnError(errors.New("delete failed"))
	mock.ExpectRollback()

	_, err := u.RelinkIdentity(managerContext(), 4, &dto.RelinkDoctorRequest{Email: "new@example.com"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected original failure in the error chain, got %v", err)
	}
	if !strings.Contains(err.Error(), "cleanup also failed") {
		t.Fatalf("expected combined error naming both faults, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDeleteDoctorRefusedWhileAppointmentsExist(t *testing.T) {
	db, mock := newMockDB(t)
	u := newDoctorUsecase(db, "changeme123")

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "doctors" WHERE id = \$1`).
		WithArgs(4, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "first_name", "last_name", "department_id"}).
			AddRow(4, "Reza", "Karimi", 2))
	mock.ExpectQuery(`SELECT (.+) FROM "departments"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "appointments" WHERE doctor_id = \$1`).
		WithArgs(4).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectRollback()

	if err := u.DeleteDoctor(managerContext(), 4); err != ErrDoctorHasAppointments {
		t.Fatalf("expected ErrDoctorHasAppointments, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
