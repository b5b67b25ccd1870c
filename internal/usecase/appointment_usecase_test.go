package usecase

import (
	"context"
	"io"
	"testing"
	"time"

	"hospital-scheduling/internal/delivery/dto"
	"hospital-scheduling/internal/delivery/http/middleware"
	"hospital-scheduling/internal/domain/entity"
	"hospital-scheduling/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("gorm.Open: %v", err)
	}
	return db, mock
}

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// noopAudit satisfies service.AuditService without touching the store.
type noopAudit struct{}

func (noopAudit) Record(ctx context.Context, tx *gorm.DB, userID *uuid.UUID, action, entityName, entityID string, oldValue, newValue interface{}) {
}

func newAppointmentUsecase(db *gorm.DB) AppointmentUsecase {
	return NewAppointmentUsecase(
		db,
		newTestLogger(),
		repository.NewAppointmentRepository(),
		repository.NewDoctorRepository(),
		repository.NewPatientRepository(),
		noopAudit{},
	)
}

func TestListAppointmentsManagerSeesAll(t *testing.T) {
	db, mock := newMockDB(t)
	u := newAppointmentUsecase(db)

	ctx := middleware.WithIdentity(context.Background(), uuid.New(), entity.RoleIDManager)

	mock.ExpectQuery(`SELECT (.+) FROM "appointments"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "patient_id", "doctor_id", "appointment_date"}))

	resp, err := u.ListAppointments(ctx)
	if err != nil {
		t.Fatalf("ListAppointments: %v", err)
	}
	if resp.Total != 0 {
		t.Fatalf("expected empty listing, got %d", resp.Total)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListAppointmentsDoctorScopedToOwnRows(t *testing.T) {
	db, mock := newMockDB(t)
	u := newAppointmentUsecase(db)

	userID := uuid.New()
	ctx := middleware.WithIdentity(context.Background(), userID, entity.RoleIDDoctor)

	mock.ExpectQuery(`JOIN doctors ON doctors.id = appointments.doctor_id WHERE doctors.user_id = \$1`).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "patient_id", "doctor_id", "appointment_date"}))

	if _, err := u.ListAppointments(ctx); err != nil {
		t.Fatalf("ListAppointments: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListAppointmentsPatientScopedToOwnRows(t *testing.T) {
	db, mock := newMockDB(t)
	u := newAppointmentUsecase(db)

	userID := uuid.New()
	ctx := middleware.WithIdentity(context.Background(), userID, entity.RoleIDPatient)

	mock.ExpectQuery(`JOIN patients ON patients.id = appointments.patient_id WHERE patients.user_id = \$1`).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "patient_id", "doctor_id", "appointment_date"}))

	if _, err := u.ListAppointments(ctx); err != nil {
		t.Fatalf("ListAppointments: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateAppointmentRejectsPastDate(t *testing.T) {
	db, mock := newMockDB(t)
	u := newAppointmentUsecase(db)

	ctx := middleware.WithIdentity(context.Background(), uuid.New(), entity.RoleIDPatient)

	req := &dto.CreateAppointmentRequest{
		DoctorID:        1,
		AppointmentDate: time.Now().Add(-time.Hour).Format(time.RFC3339),
	}

	_, err := u.CreateAppointment(ctx, req)
	if err != ErrAppointmentInPast {
		t.Fatalf("expected ErrAppointmentInPast, got %v", err)
	}
	// Validation fails before any store access
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unexpected store access: %v", err)
	}
}

func TestCreateAppointmentRejectsBadDateFormat(t *testing.T) {
	db, _ := newMockDB(t)
	u := newAppointmentUsecase(db)

	ctx := middleware.WithIdentity(context.Background(), uuid.New(), entity.RoleIDPatient)

	req := &dto.CreateAppointmentRequest{
		DoctorID:        1,
		AppointmentDate: "tomorrow at noon",
	}

	if _, err := u.CreateAppointment(ctx, req); err != ErrInvalidDateTime {
		t.Fatalf("expected ErrInvalidDateTime, got %v", err)
	}
}

func TestCreateAppointmentFailsWhenCallerHasNoPatientRecord(t *testing.T) {
	db, mock := newMockDB(t)
	u := newAppointmentUsecase(db)

	userID := uuid.New()
	ctx := middleware.WithIdentity(context.Background(), userID, entity.RoleIDPatient)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "patients" WHERE user_id = \$1`).
		WithArgs(userID, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id"}))
	mock.ExpectRollback()

	req := &dto.CreateAppointmentRequest{
		DoctorID:        3,
		AppointmentDate: time.Now().Add(24 * time.Hour).Format(time.RFC3339),
	}

	_, err := u.CreateAppointment(ctx, req)
	if err != ErrPatientNotLinked {
		t.Fatalf("expected ErrPatientNotLinked, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateAppointmentPersistsForLinkedPatient(t *testing.T) {
	db, mock := newMockDB(t)
	u := newAppointmentUsecase(db)

	userID := uuid.New()
	ctx := middleware.WithIdentity(context.Background(), userID, entity.RoleIDPatient)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "patients" WHERE user_id = \$1`).
		WithArgs(userID, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "first_name", "last_name", "user_id"}).
			AddRow(5, "Sara", "Ahmadi", userID.String()))
	mock.ExpectQuery(`SELECT (.+) FROM "doctors" WHERE id = \$1`).
		WithArgs(3, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "first_name", "last_name", "department_id"}).
			AddRow(3, "Reza", "Karimi", 2))
	mock.ExpectQuery(`SELECT (.+) FROM "departments"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))
	mock.ExpectQuery(`INSERT INTO "appointments"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(10))
	mock.ExpectCommit()
	// Reload for the denormalized response; an empty result falls back to
	// the row just written.
	mock.ExpectQuery(`SELECT (.+) FROM "appointments" WHERE id = \$1`).
		WithArgs(10, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "patient_id", "doctor_id", "appointment_date"}))

	req := &dto.CreateAppointmentRequest{
		DoctorID:        3,
		AppointmentDate: time.Now().Add(24 * time.Hour).Format(time.RFC3339),
	}

	resp, err := u.CreateAppointment(ctx, req)
	if err != nil {
		t.Fatalf("CreateAppointment: %v", err)
	}
	if resp.ID != 10 {
		t.Fatalf("expected appointment id 10, got %d", resp.ID)
	}
	if resp.PatientID != 5 || resp.DoctorID != 3 {
		t.Fatalf("unexpected participants: patient=%d doctor=%d", resp.PatientID, resp.DoctorID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdateAppointmentMissingRowReportsNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	u := newAppointmentUsecase(db)

	ctx := middleware.WithIdentity(context.Background(), uuid.New(), entity.RoleIDManager)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "appointments" WHERE id = \$1`).
		WithArgs(99, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "patient_id", "doctor_id", "appointment_date"}))
	mock.ExpectRollback()

	req := &dto.UpdateAppointmentRequest{
		DoctorID:        1,
		PatientID:       1,
		AppointmentDate: time.Now().Add(24 * time.Hour).Format(time.RFC3339),
	}

	_, err := u.UpdateAppointment(ctx, 99, req)
	if err != ErrAppointmentNotFound {
		t.Fatalf("expected ErrAppointmentNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDeleteAppointmentMissingRowIsNoOp(t *testing.T) {
	db, mock := newMockDB(t)
	u := newAppointmentUsecase(db)

	ctx := middleware.WithIdentity(context.Background(), uuid.New(), entity.RoleIDManager)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "appointments" WHERE id = \$1`).
		WithArgs(42, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "patient_id", "doctor_id", "appointment_date"}))
	mock.ExpectRollback()

	if err := u.DeleteAppointment(ctx, 42); err != nil {
		t.Fatalf("expected no-op delete to succeed, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListAppointmentsIncludesOnlyOwningPatientRows(t *testing.T) {
	db, mock := newMockDB(t)
	u := newAppointmentUsecase(db)

	owner := uuid.New()
	other := uuid.New()
	when := time.Now().Add(48 * time.Hour)

	// The owner's listing carries the booked row plus its display preloads
	mock.ExpectQuery(`JOIN patients ON patients.id = appointments.patient_id WHERE patients.user_id = \$1`).
		WithArgs(owner).
		WillReturnRows(sqlmock.NewRows([]string{"id", "patient_id", "doctor_id", "appointment_date"}).
			AddRow(10, 5, 3, when))
	mock.ExpectQuery(`SELECT (.+) FROM "doctors"`).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"id", "first_name", "last_name", "department_id"}).
			AddRow(3, "Reza", "Karimi", 2))
	mock.ExpectQuery(`SELECT (.+) FROM "departments"`).
		WithArgs(2).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(2, "Cardiology"))
	mock.ExpectQuery(`SELECT (.+) FROM "patients"`).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "first_name", "last_name", "user_id"}).
			AddRow(5, "Sara", "Ahmadi", owner.String()))

	ownerResp, err := u.ListAppointments(middleware.WithIdentity(context.Background(), owner, entity.RoleIDPatient))
	if err != nil {
		t.Fatalf("ListAppointments (owner): %v", err)
	}
	if ownerResp.Total != 1 || ownerResp.Appointments[0].ID != 10 {
		t.Fatalf("expected the owner's listing to contain appointment 10, got %+v", ownerResp)
	}
	if ownerResp.Appointments[0].DoctorName != "Reza Karimi" {
		t.Fatalf("expected doctor name on the listing, got %q", ownerResp.Appointments[0].DoctorName)
	}

	// An unrelated patient's listing excludes it
	mock.ExpectQuery(`JOIN patients ON patients.id = appointments.patient_id WHERE patients.user_id = \$1`).
		WithArgs(other).
		WillReturnRows(sqlmock.NewRows([]string{"id", "patient_id", "doctor_id", "appointment_date"}))

	otherResp, err := u.ListAppointments(middleware.WithIdentity(context.Background(), other, entity.RoleIDPatient))
	if err != nil {
		t.Fatalf("ListAppointments (other): %v", err)
	}
	if otherResp.Total != 0 {
		t.Fatalf("expected an unrelated patient to see no rows, got %d", otherResp.Total)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdateAppointmentAcceptsPastDate(t *testing.T) {
	db, mock := newMockDB(t)
	u := newAppointmentUsecase(db)

	past := time.Now().Add(-72 * time.Hour).Truncate(time.Second)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "appointments" WHERE id = \$1`).
		WithArgs(7, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "patient_id", "doctor_id", "appointment_date"}).
			AddRow(7, 5, 3, time.Now().Add(24*time.Hour)))
	mock.ExpectQuery(`SELECT (.+) FROM "doctors"`).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"id", "first_name", "last_name", "department_id"}))
	mock.ExpectQuery(`SELECT (.+) FROM "patients"`).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "first_name", "last_name"}))
	mock.ExpectExec(`UPDATE "appointments" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery(`SELECT (.+) FROM "appointments" WHERE id = \$1`).
		WithArgs(7, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "patient_id", "doctor_id", "appointment_date"}))

	req := &dto.UpdateAppointmentRequest{
		DoctorID:        3,
		PatientID:       5,
		AppointmentDate: past.Format(time.RFC3339),
	}

	// Backdating an edit is a manager correction, not a booking, so it is
	// allowed where Create would refuse it.
	resp, err := u.UpdateAppointment(managerContext(), 7, req)
	if err != nil {
		t.Fatalf("UpdateAppointment: %v", err)
	}
	if !resp.AppointmentDate.Equal(past) {
		t.Fatalf("expected date %v, got %v", past, resp.AppointmentDate)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
