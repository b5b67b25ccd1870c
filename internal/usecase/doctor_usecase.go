package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"hospital-scheduling/internal/converter"
	"hospital-scheduling/internal/delivery/dto"
	"hospital-scheduling/internal/delivery/http/middleware"
	"hospital-scheduling/internal/domain/entity"
	domainRepo "hospital-scheduling/internal/domain/repository"
	"hospital-scheduling/internal/repository"
	"hospital-scheduling/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrDoctorNotFound  = errors.New("doctor not found")
	ErrDoctorNotLinked = errors.New("no doctor record is linked to the caller identity")
	ErrInvalidDoctorID = errors.New("doctor id cannot be zero")

	ErrDoctorHasAppointments = errors.New("doctor has existing appointments")
	ErrDepartmentNotFound    = errors.New("department not found")
)

type DoctorUsecase interface {
	CreateDoctor(ctx context.Context, req *dto.CreateDoctorRequest) (*dto.DoctorResponse, error)
	GetDoctor(ctx context.Context, id int) (*dto.DoctorResponse, error)
	GetOwnProfile(ctx context.Context) (*dto.DoctorResponse, error)
	ListDoctors(ctx context.Context) (*dto.DoctorListResponse, error)
	ListDoctorsByDepartment(ctx context.Context, departmentID int) (*dto.DoctorListResponse, error)
	UpdateDoctor(ctx context.Context, id int, req *dto.UpdateDoctorRequest) (*dto.DoctorResponse, error)
	DeleteDoctor(ctx context.Context, id int) error
	RelinkIdentity(ctx context.Context, id int, req *dto.RelinkDoctorRequest) (*dto.DoctorResponse, error)
}

type doctorUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	doctorRepo      domainRepo.DoctorRepository
	appointmentRepo domainRepo.AppointmentRepository
	identityService service.IdentityService
	auditService    service.AuditService
}

func NewDoctorUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	doctorRepo domainRepo.DoctorRepository,
	appointmentRepo domainRepo.AppointmentRepository,
	identityService service.IdentityService,
	auditService service.AuditService,
) DoctorUsecase {
	return &doctorUsecase{
		db:              db,
		log:             log,
		doctorRepo:      doctorRepo,
		appointmentRepo: appointmentRepo,
		identityService: identityService,
		auditService:    auditService,
	}
}

// CreateDoctor provisions an identity account for the given email and
// persists the doctor row linked to it, both inside a single transaction so a
// failed profile insert never leaves an orphaned account behind.
func (u *doctorUsecase) CreateDoctor(ctx context.Context, req *dto.CreateDoctorRequest) (*dto.DoctorResponse, error) {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	fullName := req.FirstName + " " + req.LastName
	account, err := u.identityService.CreateAccountWithDefaultPassword(ctx, tx, req.Email, fullName, entity.RoleIDDoctor)
	if err != nil {
		u.log.Warnf("Failed to create identity account for doctor: %+v", err)
		return nil, err
	}

	doctor := &entity.Doctor{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		NationalID:   req.NationalID,
		PhoneNumber:  req.PhoneNumber,
		DepartmentID: req.DepartmentID,
		UserID:       &account.ID,
	}

	if err := u.doctorRepo.Create(tx, doctor); err != nil {
		if repository.IsForeignKeyError(err, "department") {
			return nil, ErrDepartmentNotFound
		}
		u.log.Warnf("Failed to create doctor: %+v", err)
		return nil, err
	}

	callerID, _ := middleware.GetUserIDFromContext(ctx)
	u.auditService.Record(ctx, tx, &callerID, entity.AuditActionDoctorCreate, "doctor",
		strconv.Itoa(doctor.ID), nil, converter.DoctorToResponse(doctor))

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	u.log.Infof("Doctor created: id=%d, account=%s", doctor.ID, account.ID)
	return converter.DoctorToResponse(doctor), nil
}

func (u *doctorUsecase) GetDoctor(ctx context.Context, id int) (*dto.DoctorResponse, error) {
	doctor, err := u.doctorRepo.FindByID(u.db.WithContext(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find doctor %d: %+v", id, err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}

	return converter.DoctorToResponse(doctor), nil
}

// GetOwnProfile resolves the doctor record linked to the caller's account.
func (u *doctorUsecase) GetOwnProfile(ctx context.Context) (*dto.DoctorResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	doctor, err := u.doctorRepo.FindByUserID(u.db.WithContext(ctx), userID)
	if err != nil {
		u.log.Warnf("Failed to find doctor for user %s: %+v", userID, err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotLinked
	}

	return converter.DoctorToResponse(doctor), nil
}

func (u *doctorUsecase) ListDoctors(ctx context.Context) (*dto.DoctorListResponse, error) {
	doctors, err := u.doctorRepo.FindAll(u.db.WithContext(ctx))
	if err != nil {
		u.log.Warnf("Failed to list doctors: %+v", err)
		return nil, err
	}

	responses := converter.DoctorsToResponses(doctors)
	return &dto.DoctorListResponse{
		Doctors: responses,
		Total:   len(responses),
	}, nil
}

func (u *doctorUsecase) ListDoctorsByDepartment(ctx context.Context, departmentID int) (*dto.DoctorListResponse, error) {
	doctors, err := u.doctorRepo.FindByDepartmentID(u.db.WithContext(ctx), departmentID)
	if err != nil {
		u.log.Warnf("Failed to list doctors for department %d: %+v", departmentID, err)
		return nil, err
	}

	responses := converter.DoctorsToResponses(doctors)
	return &dto.DoctorListResponse{
		Doctors: responses,
		Total:   len(responses),
	}, nil
}

func (u *doctorUsecase) UpdateDoctor(ctx context.Context, id int, req *dto.UpdateDoctorRequest) (*dto.DoctorResponse, error) {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	doctor, err := u.doctorRepo.FindByID(tx, id)
	if err != nil {
		u.log.Warnf("Failed to find doctor %d: %+v", id, err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}
	oldValue := converter.DoctorToResponse(doctor)

	if req.FirstName != "" {
		doctor.FirstName = req.FirstName
	}
	if req.LastName != "" {
		doctor.LastName = req.LastName
	}
	if req.NationalID != "" {
		doctor.NationalID = req.NationalID
	}
	if req.PhoneNumber != "" {
		doctor.PhoneNumber = req.PhoneNumber
	}
	if req.DepartmentID != 0 {
		doctor.DepartmentID = req.DepartmentID
	}

	affected, err := u.doctorRepo.Update(tx, doctor)
	if err != nil {
		if repository.IsForeignKeyError(err, "department") {
			return nil, ErrDepartmentNotFound
		}
		u.log.Warnf("Failed to update doctor %d: %+v", id, err)
		return nil, err
	}
	if affected == 0 {
		return nil, ErrDoctorNotFound
	}

	callerID, _ := middleware.GetUserIDFromContext(ctx)
	u.auditService.Record(ctx, tx, &callerID, entity.AuditActionDoctorUpdate, "doctor",
		strconv.Itoa(id), oldValue, converter.DoctorToResponse(doctor))

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return converter.DoctorToResponse(doctor), nil
}

// DeleteDoctor refuses to delete a doctor with appointments: the reference is
// RESTRICT, never cascade.
func (u *doctorUsecase) DeleteDoctor(ctx context.Context, id int) error {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	doctor, err := u.doctorRepo.FindByID(tx, id)
	if err != nil {
		u.log.Warnf("Failed to find doctor %d: %+v", id, err)
		return err
	}
	if doctor == nil {
		return ErrDoctorNotFound
	}

	count, err := u.appointmentRepo.CountByDoctorID(tx, id)
	if err != nil {
		u.log.Warnf("Failed to count appointments for doctor %d: %+v", id, err)
		return err
	}
	if count > 0 {
		return ErrDoctorHasAppointments
	}

	if _, err := u.doctorRepo.Delete(tx, id); err != nil {
		// The schema enforces RESTRICT as a backstop for races with booking
		if repository.IsForeignKeyError(err, "appointments") {
			return ErrDoctorHasAppointments
		}
		u.log.Warnf("Failed to delete doctor %d: %+v", id, err)
		return err
	}

	callerID, _ := middleware.GetUserIDFromContext(ctx)
	u.auditService.Record(ctx, tx, &callerID, entity.AuditActionDoctorDelete, "doctor",
		strconv.Itoa(id), converter.DoctorToResponse(doctor), nil)

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return err
	}

	u.log.Infof("Doctor deleted: id=%d", id)
	return nil
}

// RelinkIdentity provisions a fresh account with the default credential and
// links it to an existing doctor. The account creation is committed on its
// own: if saving the link then fails, the account is deleted again; if that
// cleanup fails too, the combined error names both faults; if cleanup
// succeeds, the original fault is surfaced.
func (u *doctorUsecase) RelinkIdentity(ctx context.Context, id int, req *dto.RelinkDoctorRequest) (*dto.DoctorResponse, error) {
	if id == 0 {
		return nil, ErrInvalidDoctorID
	}

	db := u.db.WithContext(ctx)

	doctor, err := u.doctorRepo.FindByID(db, id)
	if err != nil {
		u.log.Warnf("Failed to find doctor %d: %+v", id, err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}

	account, err := u.identityService.CreateAccountWithDefaultPassword(ctx, db, req.Email, doctor.FullName(), entity.RoleIDDoctor)
	if err != nil {
		u.log.Warnf("Failed to create identity account for doctor %d: %+v", id, err)
		return nil, err
	}

	doctor.UserID = &account.ID
	affected, err := u.doctorRepo.Update(db, doctor)
	if err == nil && affected == 0 {
		err = ErrDoctorNotFound
	}
	if err != nil {
		u.log.Warnf("Failed to persist identity link for doctor %d, compensating: %+v", id, err)
		return nil, u.compensateRelink(ctx, db, account.ID, err)
	}

	callerID, _ := middleware.GetUserIDFromContext(ctx)
	u.auditService.Record(ctx, db, &callerID, entity.AuditActionDoctorRelink, "doctor",
		strconv.Itoa(id), nil, converter.DoctorToResponse(doctor))

	u.log.Infof("Doctor relinked: id=%d, account=%s", id, account.ID)
	return converter.DoctorToResponse(doctor), nil
}

// compensateRelink deletes the account created during a failed relink. The
// original fault is always part of the returned error.
func (u *doctorUsecase) compensateRelink(ctx context.Context, db *gorm.DB, accountID uuid.UUID, cause error) error {
	if cleanupErr := u.identityService.DeleteAccount(ctx, db, accountID); cleanupErr != nil {
		u.log.Errorf("Account cleanup failed after relink failure: %+v", cleanupErr)
		return fmt.Errorf("persisting identity link failed and account cleanup also failed: %v: %w", cleanupErr, cause)
	}
	return cause
}
