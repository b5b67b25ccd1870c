package service

import (
	"context"
	"io"
	"testing"

	"hospital-scheduling/config"
	"hospital-scheduling/internal/domain/entity"
	"hospital-scheduling/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
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

func newIdentityService(defaultPassword string) IdentityService {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewIdentityService(log, config.IdentityConfig{
		DoctorDefaultPassword: defaultPassword,
	}, repository.NewUserRepository())
}

func TestCreateAccountWithDefaultPasswordRequiresConfig(t *testing.T) {
	svc := newIdentityService("")

	_, err := svc.CreateAccountWithDefaultPassword(context.Background(), nil, "doc@example.com", "Reza Karimi", entity.RoleIDDoctor)
	if err != ErrDefaultPasswordNotSet {
		t.Fatalf("expected ErrDefaultPasswordNotSet, got %v", err)
	}
}

func TestCreateAccountStoresHashedCredential(t *testing.T) {
	db, mock := newMockDB(t)
	svc := newIdentityService("changeme123")

	accountID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(accountID.String()))
	mock.ExpectCommit()

	user, err := svc.CreateAccount(context.Background(), db, "doc@example.com", "s3cret!", "Reza Karimi", entity.RoleIDDoctor)
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	if user.ID != accountID {
		t.Fatalf("expected account id %s, got %s", accountID, user.ID)
	}
	if user.Password == "s3cret!" {
		t.Fatal("credential was stored in plaintext")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("s3cret!")); err != nil {
		t.Fatalf("stored hash does not match credential: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDeleteAccountMissingRowReportsNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	svc := newIdentityService("changeme123")

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "users" WHERE id = \$1`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := svc.DeleteAccount(context.Background(), db, uuid.New())
	if err != ErrAccountNotFound {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
