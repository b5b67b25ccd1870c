package service

import (
	"context"
	"errors"

	"hospital-scheduling/config"
	"hospital-scheduling/internal/domain/entity"
	domainRepo "hospital-scheduling/internal/domain/repository"
	"hospital-scheduling/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrAccountNotFound    = errors.New("identity account not found")

	// ErrDefaultPasswordNotSet signals a deployment misconfiguration: an
	// account was requested without a credential and no default is configured.
	ErrDefaultPasswordNotSet = errors.New("default account password is not configured")
)

// IdentityService is the account-management capability: it creates and deletes
// identity accounts on behalf of the domain. Callers link the returned account
// id to their Doctor or Patient row.
type IdentityService interface {
	CreateAccount(ctx context.Context, db *gorm.DB, email, password, fullName string, roleID int) (*entity.User, error)
	CreateAccountWithDefaultPassword(ctx context.Context, db *gorm.DB, email, fullName string, roleID int) (*entity.User, error)
	DeleteAccount(ctx context.Context, db *gorm.DB, accountID uuid.UUID) error
}

type identityService struct {
	log      *logrus.Logger
	cfg      config.IdentityConfig
	userRepo domainRepo.UserRepository
}

func NewIdentityService(log *logrus.Logger, cfg config.IdentityConfig, userRepo domainRepo.UserRepository) IdentityService {
	return &identityService{
		log:      log,
		cfg:      cfg,
		userRepo: userRepo,
	}
}

func (s *identityService) CreateAccount(ctx context.Context, db *gorm.DB, email, password, fullName string, roleID int) (*entity.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		s.log.Warnf("Failed to hash password: %+v", err)
		return nil, err
	}

	user := &entity.User{
		Email:    email,
		Password: string(hashedPassword),
		FullName: fullName,
		RoleID:   roleID,
	}

	if err := s.userRepo.Create(db, user); err != nil {
		if repository.IsDuplicateKeyError(err, "email") {
			return nil, ErrEmailAlreadyExists
		}
		s.log.Warnf("Failed to create identity account: %+v", err)
		return nil, err
	}

	return user, nil
}

// CreateAccountWithDefaultPassword provisions an account with the configured
// initial credential. The missing-default case is an explicit error rather
// than a panic so callers can surface it as a misconfiguration.
func (s *identityService) CreateAccountWithDefaultPassword(ctx context.Context, db *gorm.DB, email, fullName string, roleID int) (*entity.User, error) {
	if s.cfg.DoctorDefaultPassword == "" {
		return nil, ErrDefaultPasswordNotSet
	}
	return s.CreateAccount(ctx, db, email, s.cfg.DoctorDefaultPassword, fullName, roleID)
}

func (s *identityService) DeleteAccount(ctx context.Context, db *gorm.DB, accountID uuid.UUID) error {
	affected, err := s.userRepo.Delete(db, accountID)
	if err != nil {
		s.log.Warnf("Failed to delete identity account %s: %+v", accountID, err)
		return err
	}
	if affected == 0 {
		return ErrAccountNotFound
	}
	return nil
}
