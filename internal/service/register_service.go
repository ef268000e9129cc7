package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/percivalmacalintal/Distributed-Fault-Tolerance/internal/models"
	"github.com/percivalmacalintal/Distributed-Fault-Tolerance/internal/repository"
	"github.com/percivalmacalintal/Distributed-Fault-Tolerance/internal/token"
	appErrors "github.com/percivalmacalintal/Distributed-Fault-Tolerance/pkg/errors"
)

// LocalPartClass is the outcome of classifying an email local part.
type LocalPartClass int

const (
	// ClassInvalid covers local parts with both separators, neither, or
	// any other ambiguous shape.
	ClassInvalid LocalPartClass = iota
	ClassStudent
	ClassFaculty
)

// ClassifyLocalPart derives the account role from the shape of the email
// local part: an underscore and no dot means student, a dot and no
// underscore means faculty. Crude, but deterministic and fixed by
// institution convention; there is no configuration escape hatch.
func ClassifyLocalPart(localPart string) LocalPartClass {
	hasUnderscore := strings.Contains(localPart, "_")
	hasDot := strings.Contains(localPart, ".")

	switch {
	case hasUnderscore && !hasDot:
		return ClassStudent
	case hasDot && !hasUnderscore:
		return ClassFaculty
	default:
		return ClassInvalid
	}
}

type registerUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
}

// RegisterService performs first-time registration, inferring the role from
// the email and issuing a token identical in shape to the login path.
type RegisterService struct {
	repo      registerUserRepository
	codec     *token.Codec
	domain    string
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRegisterService constructs a RegisterService.
func NewRegisterService(repo registerUserRepository, codec *token.Codec, institutionDomain string, validate *validator.Validate, logger *zap.Logger) *RegisterService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RegisterService{repo: repo, codec: codec, domain: institutionDomain, validator: validate, logger: logger}
}

// Register creates an account and returns a signed token for it.
func (s *RegisterService) Register(ctx context.Context, req models.RegisterRequest) (*models.TokenResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration payload")
	}

	if _, err := s.repo.FindByEmail(ctx, req.Email); err == nil {
		return nil, appErrors.Clone(appErrors.ErrEmailTaken, "")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email")
	}

	localPart, domain, found := strings.Cut(req.Email, "@")
	if !found || domain != s.domain {
		return nil, appErrors.Clone(appErrors.ErrInvalidDomain, "")
	}

	var role models.UserRole
	switch ClassifyLocalPart(localPart) {
	case ClassStudent:
		role = models.RoleStudent
	case ClassFaculty:
		role = models.RoleFaculty
	default:
		return nil, appErrors.Clone(appErrors.ErrInvalidUsername, "")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	user, err := s.repo.Create(ctx, &models.User{Email: req.Email, PasswordHash: string(hash), Role: role})
	if err != nil {
		// The pre-check races with concurrent registrations; the unique
		// index is what actually guarantees one winner.
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrEmailTaken, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create user")
	}
	if user == nil {
		return nil, appErrors.Clone(appErrors.ErrRegistrationFailed, "")
	}

	signed, err := s.codec.Sign(user)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign token")
	}

	return &models.TokenResponse{Token: signed}, nil
}
