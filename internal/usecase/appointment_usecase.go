package usecase

import (
	"context"
	"errors"
	"strconv"
	"time"

	"hospital-scheduling/internal/converter"
	"hospital-scheduling/internal/delivery/dto"
	"hospital-scheduling/internal/delivery/http/middleware"
	"hospital-scheduling/internal/domain/entity"
	domainRepo "hospital-scheduling/internal/domain/repository"
	"hospital-scheduling/internal/repository"
	"hospital-scheduling/internal/service"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrAppointmentInPast   = errors.New("appointment date must be in the future")
	ErrInvalidDateTime     = errors.New("invalid date format, use RFC 3339")

	// ErrPatientNotLinked means the caller's identity account has no patient
	// record behind it. This is a misconfiguration, distinct from bad input.
	ErrPatientNotLinked = errors.New("no patient record is linked to the caller identity")
)

type AppointmentUsecase interface {
	ListAppointments(ctx context.Context) (*dto.AppointmentListResponse, error)
	GetAppointment(ctx context.Context, id int) (*dto.AppointmentResponse, error)
	CreateAppointment(ctx context.Context, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error)
	UpdateAppointment(ctx context.Context, id int, req *dto.UpdateAppointmentRequest) (*dto.AppointmentResponse, error)
	DeleteAppointment(ctx context.Context, id int) error
}

type appointmentUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	appointmentRepo domainRepo.AppointmentRepository
	doctorRepo      domainRepo.DoctorRepository
	patientRepo     domainRepo.PatientRepository
	auditService    service.AuditService
}

func NewAppointmentUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	appointmentRepo domainRepo.AppointmentRepository,
	doctorRepo domainRepo.DoctorRepository,
	patientRepo domainRepo.PatientRepository,
	auditService service.AuditService,
) AppointmentUsecase {
	return &appointmentUsecase{
		db:              db,
		log:             log,
		appointmentRepo: appointmentRepo,
		doctorRepo:      doctorRepo,
		patientRepo:     patientRepo,
		auditService:    auditService,
	}
}

// ListAppointments returns appointments scoped by the caller's role: managers
// see every row, doctors the rows assigned to them, patients their own.
func (u *appointmentUsecase) ListAppointments(ctx context.Context) (*dto.AppointmentListResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}
	roleID, _ := middleware.GetRoleIDFromContext(ctx)

	db := u.db.WithContext(ctx)

	var appointments []entity.Appointment
	var err error
	switch roleID {
	case entity.RoleIDManager:
		appointments, err = u.appointmentRepo.FindAll(db)
	case entity.RoleIDDoctor:
		appointments, err = u.appointmentRepo.FindByDoctorUserID(db, userID)
	default:
		appointments, err = u.appointmentRepo.FindByPatientUserID(db, userID)
	}
	if err != nil {
		u.log.Warnf("Failed to list appointments for user %s: %+v", userID, err)
		return nil, err
	}

	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments),
		Total:        len(appointments),
	}, nil
}

func (u *appointmentUsecase) GetAppointment(ctx context.Context, id int) (*dto.AppointmentResponse, error) {
	appointment, err := u.appointmentRepo.FindByID(u.db.WithContext(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find appointment %d: %+v", id, err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}

	return converter.AppointmentToResponse(appointment), nil
}

// CreateAppointment books the chosen doctor for the acting patient. The date
// must be strictly in the future; the acting patient is resolved from the
// caller's linked identity account.
func (u *appointmentUsecase) CreateAppointment(ctx context.Context, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	appointmentDate, err := time.Parse(time.RFC3339, req.AppointmentDate)
	if err != nil {
		return nil, ErrInvalidDateTime
	}
	if !appointmentDate.After(time.Now()) {
		return nil, ErrAppointmentInPast
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	patient, err := u.patientRepo.FindByUserID(tx, userID)
	if err != nil {
		u.log.Warnf("Failed to resolve patient for user %s: %+v", userID, err)
		return nil, err
	}
	if patient == nil {
		return nil, ErrPatientNotLinked
	}

	doctor, err := u.doctorRepo.FindByID(tx, req.DoctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %d: %+v", req.DoctorID, err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}

	appointment := &entity.Appointment{
		PatientID:       patient.ID,
		DoctorID:        doctor.ID,
		AppointmentDate: appointmentDate,
	}

	if err := u.appointmentRepo.Create(tx, appointment); err != nil {
		u.log.Warnf("Failed to create appointment: %+v", err)
		return nil, err
	}

	u.auditService.Record(ctx, tx, &userID, entity.AuditActionAppointmentCreate, "appointment",
		strconv.Itoa(appointment.ID), nil, converter.AppointmentToResponse(appointment))

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	// Reload with doctor/patient display data for the response
	full, err := u.appointmentRepo.FindByID(u.db.WithContext(ctx), appointment.ID)
	if err != nil || full == nil {
		u.log.Warnf("Failed to reload appointment %d: %+v", appointment.ID, err)
		return converter.AppointmentToResponse(appointment), nil
	}

	u.log.Infof("Appointment created: id=%d, doctor=%d, patient=%d", appointment.ID, doctor.ID, patient.ID)
	return converter.AppointmentToResponse(full), nil
}

// UpdateAppointment rewrites an appointment's doctor, patient and date. A row
// that disappeared between read and write is reported as not found; any other
// store failure propagates.
func (u *appointmentUsecase) UpdateAppointment(ctx context.Context, id int, req *dto.UpdateAppointmentRequest) (*dto.AppointmentResponse, error) {
	appointmentDate, err := time.Parse(time.RFC3339, req.AppointmentDate)
	if err != nil {
		return nil, ErrInvalidDateTime
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	existing, err := u.appointmentRepo.FindByID(tx, id)
	if err != nil {
		u.log.Warnf("Failed to find appointment %d: %+v", id, err)
		return nil, err
	}
	if existing == nil {
		return nil, ErrAppointmentNotFound
	}
	oldValue := converter.AppointmentToResponse(existing)

	appointment := &entity.Appointment{
		ID:              id,
		PatientID:       req.PatientID,
		DoctorID:        req.DoctorID,
		AppointmentDate: appointmentDate,
	}

	affected, err := u.appointmentRepo.Update(tx, appointment)
	if err != nil {
		if repository.IsForeignKeyError(err, "doctor") {
			return nil, ErrDoctorNotFound
		}
		if repository.IsForeignKeyError(err, "patient") {
			return nil, ErrPatientNotFound
		}
		u.log.Warnf("Failed to update appointment %d: %+v", id, err)
		return nil, err
	}
	if affected == 0 {
		// Concurrently deleted after the read above
		return nil, ErrAppointmentNotFound
	}

	userID, _ := middleware.GetUserIDFromContext(ctx)
	u.auditService.Record(ctx, tx, &userID, entity.AuditActionAppointmentUpdate, "appointment",
		strconv.Itoa(id), oldValue, converter.AppointmentToResponse(appointment))

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	full, err := u.appointmentRepo.FindByID(u.db.WithContext(ctx), id)
	if err != nil || full == nil {
		return converter.AppointmentToResponse(appointment), nil
	}
	return converter.AppointmentToResponse(full), nil
}

// DeleteAppointment is idempotent: a missing id is a successful no-op.
func (u *appointmentUsecase) DeleteAppointment(ctx context.Context, id int) error {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	existing, err := u.appointmentRepo.FindByID(tx, id)
	if err != nil {
		u.log.Warnf("Failed to find appointment %d: %+v", id, err)
		return err
	}
	if existing == nil {
		return nil
	}

	if _, err := u.appointmentRepo.Delete(tx, id); err != nil {
		u.log.Warnf("Failed to delete appointment %d: %+v", id, err)
		return err
	}

	userID, _ := middleware.GetUserIDFromContext(ctx)
	u.auditService.Record(ctx, tx, &userID, entity.AuditActionAppointmentDelete, "appointment",
		strconv.Itoa(id), converter.AppointmentToResponse(existing), nil)

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return err
	}

	u.log.Infof("Appointment deleted: id=%d", id)
	return nil
}
