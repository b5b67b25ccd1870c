package usecase

import (
	"context"
	"errors"
	"strconv"

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
	ErrDepartmentAlreadyExists = errors.New("department name already exists")
	ErrDepartmentHasDoctors    = errors.New("department has assigned doctors")
)

type DepartmentUsecase interface {
	CreateDepartment(ctx context.Context, req *dto.CreateDepartmentRequest) (*dto.DepartmentResponse, error)
	GetDepartment(ctx context.Context, id int) (*dto.DepartmentResponse, error)
	ListDepartments(ctx context.Context) (*dto.DepartmentListResponse, error)
	UpdateDepartment(ctx context.Context, id int, req *dto.UpdateDepartmentRequest) (*dto.DepartmentResponse, error)
	DeleteDepartment(ctx context.Context, id int) error
}

type departmentUsecase struct {
	db             *gorm.DB
	log            *logrus.Logger
	departmentRepo domainRepo.DepartmentRepository
	auditService   service.AuditService
}

func NewDepartmentUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	departmentRepo domainRepo.DepartmentRepository,
	auditService service.AuditService,
) DepartmentUsecase {
	return &departmentUsecase{
		db:             db,
		log:            log,
		departmentRepo: departmentRepo,
		auditService:   auditService,
	}
}

func (u *departmentUsecase) CreateDepartment(ctx context.Context, req *dto.CreateDepartmentRequest) (*dto.DepartmentResponse, error) {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	department := &entity.Department{Name: req.Name, Description: req.Description}
	if err := u.departmentRepo.Create(tx, department); err != nil {
		if repository.IsDuplicateKeyError(err, "name") {
			return nil, ErrDepartmentAlreadyExists
		}
		u.log.Warnf("Failed to create department: %+v", err)
		return nil, err
	}

	callerID, _ := middleware.GetUserIDFromContext(ctx)
	u.auditService.Record(ctx, tx, &callerID, entity.AuditActionDepartmentCreate, "department",
		strconv.Itoa(department.ID), nil, converter.DepartmentToResponse(department))

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return converter.DepartmentToResponse(department), nil
}

func (u *departmentUsecase) GetDepartment(ctx context.Context, id int) (*dto.DepartmentResponse, error) {
	department, err := u.departmentRepo.FindByID(u.db.WithContext(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find department %d: %+v", id, err)
		return nil, err
	}
	if department == nil {
		return nil, ErrDepartmentNotFound
	}

	return converter.DepartmentToResponse(department), nil
}

func (u *departmentUsecase) ListDepartments(ctx context.Context) (*dto.DepartmentListResponse, error) {
	departments, err := u.departmentRepo.FindAll(u.db.WithContext(ctx))
	if err != nil {
		u.log.Warnf("Failed to list departments: %+v", err)
		return nil, err
	}

	responses := converter.DepartmentsToResponses(departments)
	return &dto.DepartmentListResponse{
		Departments: responses,
		Total:       len(responses),
	}, nil
}

func (u *departmentUsecase) UpdateDepartment(ctx context.Context, id int, req *dto.UpdateDepartmentRequest) (*dto.DepartmentResponse, error) {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	department, err := u.departmentRepo.FindByID(tx, id)
	if err != nil {
		u.log.Warnf("Failed to find department %d: %+v", id, err)
		return nil, err
	}
	if department == nil {
		return nil, ErrDepartmentNotFound
	}
	oldValue := converter.DepartmentToResponse(department)

	if req.Name != "" {
		department.Name = req.Name
	}
	if req.Description != "" {
		department.Description = req.Description
	}
	affected, err := u.departmentRepo.Update(tx, department)
	if err != nil {
		if repository.IsDuplicateKeyError(err, "name") {
			return nil, ErrDepartmentAlreadyExists
		}
		u.log.Warnf("Failed to update department %d: %+v", id, err)
		return nil, err
	}
	if affected == 0 {
		return nil, ErrDepartmentNotFound
	}

	callerID, _ := middleware.GetUserIDFromContext(ctx)
	u.auditService.Record(ctx, tx, &callerID, entity.AuditActionDepartmentUpdate, "department",
		strconv.Itoa(id), oldValue, converter.DepartmentToResponse(department))

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return converter.DepartmentToResponse(department), nil
}

// DeleteDepartment refuses to delete a department that still has doctors.
func (u *departmentUsecase) DeleteDepartment(ctx context.Context, id int) error {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	department, err := u.departmentRepo.FindByID(tx, id)
	if err != nil {
		u.log.Warnf("Failed to find department %d: %+v", id, err)
		return err
	}
	if department == nil {
		return ErrDepartmentNotFound
	}

	count, err := u.departmentRepo.CountDoctors(tx, id)
	if err != nil {
		u.log.Warnf("Failed to count doctors for department %d: %+v", id, err)
		return err
	}
	if count > 0 {
		return ErrDepartmentHasDoctors
	}

	if _, err := u.departmentRepo.Delete(tx, id); err != nil {
		if repository.IsForeignKeyError(err, "doctors") {
			return ErrDepartmentHasDoctors
		}
		u.log.Warnf("Failed to delete department %d: %+v", id, err)
		return err
	}

	callerID, _ := middleware.GetUserIDFromContext(ctx)
	u.auditService.Record(ctx, tx, &callerID, entity.AuditActionDepartmentDelete, "department",
		strconv.Itoa(id), converter.DepartmentToResponse(department), nil)

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return err
	}

	u.log.Infof("Department deleted: id=%d", id)
	return nil
}
