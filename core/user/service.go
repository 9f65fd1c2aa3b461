package user

import (
	"context"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/nexclass/nexclass/core"
)

var (
	// errors
	ErrNotFound       = core.NewNotFoundError("user")
	ErrEmailExists    = errors.New("a user with this email already exists")
	ErrUsernameExists = errors.New("a user with this username already exists")
)

type Repository interface {
	// CheckUniqueness returns ErrUsernameExists or ErrEmailExists when another user,
	// not listed in excludedIDs, already uses username or email.
	CheckUniqueness(ctx context.Context, username, email string, excludedIDs ...string) error
	CreateUser(ctx context.Context, usr User) (User, error)
	GetUserByID(ctx context.Context, id string) (User, error)
	GetUserByUsernameOrEmail(ctx context.Context, unameOrEmail string) (User, error)
	// FilterUsers applies AND operation on available QueryFilter fields.
	FilterUsers(ctx context.Context, filter QueryFilter, orderings []core.DBOrdering) ([]User, error)
	UpdateUser(ctx context.Context, usr User) (User, error)
}

type Service struct {
	repo    Repository
	mailSvc core.EmailService
	tokens  tokenGenerator
	nowFunc func() time.Time
}

func NewService(conf *core.Config, repo Repository, mailSvc core.EmailService) *Service {
	return &Service{
		repo:    repo,
		mailSvc: mailSvc,
		tokens: tokenGenerator{
			secretKey: []byte(conf.SecretKey),
			timeout:   conf.Server.PasswordResetTimeoutDelta,
			now:       time.Now,
		},
		nowFunc: time.Now,
	}
}

func (svc *Service) now() time.Time {
	return svc.nowFunc().UTC()
}

// CheckUniqueness turns repository uniqueness errors into field validation errors.
func (svc *Service) CheckUniqueness(ctx context.Context, uname, email string, excludedIDs ...string) error {
	if err := svc.repo.CheckUniqueness(ctx, uname, email, excludedIDs...); err != nil {
		var field string
		switch err {
		case ErrUsernameExists:
			field = "username"
		case ErrEmailExists:
			field = "email"
		default:
			return errors.Wrap(err, "checking uniqueness")
		}
		return core.NewValidationError(err, core.FieldError{Field: field, Error: err.Error()})
	}
	return nil
}

// Create creates a User from validated data.
func (svc *Service) Create(ctx context.Context, nu NewUser) (User, error) {
	if err := svc.CheckUniqueness(ctx, nu.Username, nu.Email); err != nil {
		return User{}, err
	}
	now := svc.now()
	usr := User{
		ID:        uuid.New().String(),
		Name:      nu.Name,
		Username:  nu.Username,
		Email:     nu.Email,
		IsActive:  true,
		Roles:     nu.Roles,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "setting password")
	}
	return svc.repo.CreateUser(ctx, usr)
}

// AddUser creates the user or, when the username or email is taken, updates its password and roles.
func (svc *Service) AddUser(ctx context.Context, name, uname, email, pwd string, roles []string) (User, error) {
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)

	usr, err := svc.repo.GetUserByUsernameOrEmail(ctx, uname)
	if err != nil && errors.Cause(err) == ErrNotFound && email != "" {
		usr, err = svc.repo.GetUserByUsernameOrEmail(ctx, email)
	}
	switch {
	case err == nil:
		usr.IsActive = true
		usr.Roles = roles
		usr.UpdatedAt = svc.now()
		if err = usr.SetPassword(pwd); err != nil {
			return User{}, errors.Wrap(err, "setting password")
		}
		return svc.repo.UpdateUser(ctx, usr)
	case errors.Cause(err) == ErrNotFound:
		if name == "" {
			name = uname
		}
		return svc.Create(ctx, NewUser{Name: name, Username: uname, Email: email, Password: pwd, Roles: roles})
	default:
		return User{}, errors.Wrap(err, "finding user")
	}
}

func (svc *Service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *Service) GetByUsernameOrEmail(ctx context.Context, uname string) (User, error) {
	return svc.repo.GetUserByUsernameOrEmail(ctx, core.CleanString(uname, true /* lower */))
}

// GetStudent returns the active user with the student role, or ErrNotFound.
func (svc *Service) GetStudent(ctx context.Context, id string) (User, error) {
	return svc.getWithRole(ctx, id, (*User).IsStudent)
}

// GetTeacher returns the active user with the teacher role, or ErrNotFound.
func (svc *Service) GetTeacher(ctx context.Context, id string) (User, error) {
	return svc.getWithRole(ctx, id, (*User).IsTeacher)
}

func (svc *Service) getWithRole(ctx context.Context, id string, hasRole func(*User) bool) (User, error) {
	usr, err := svc.repo.GetUserByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	if !usr.IsActive || !hasRole(&usr) {
		return User{}, ErrNotFound
	}
	return usr, nil
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter, orderings []core.DBOrdering) ([]User, error) {
	return svc.repo.FilterUsers(ctx, filter, orderings)
}

func (svc *Service) SetLastLogin(ctx context.Context, usr User) (User, error) {
	usr.LastLogin = svc.now()
	return svc.repo.UpdateUser(ctx, usr)
}

// RequestPasswordReset emails a password reset link to the active user owning email.
func (svc *Service) RequestPasswordReset(ctx context.Context, email string) error {
	usr, err := svc.repo.GetUserByUsernameOrEmail(ctx, core.CleanString(email, true /* lower */))
	if err != nil {
		return err
	}
	if !usr.IsActive {
		return ErrNotFound
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      "Password Reset",
		TemplateName: "password_reset",
		TemplateData: map[string]interface{}{
			"Name":  usr.Name,
			"UID":   EncodeUID(usr),
			"Token": svc.tokens.makeToken(usr),
		},
	})
	return nil
}

// ResetPassword sets a new password when the reset token is valid.
func (svc *Service) ResetPassword(ctx context.Context, data ResetUserPassword) error {
	invalid := func() error {
		return core.NewValidationError(errInvalidToken, core.FieldError{Field: "token", Error: errInvalidToken.Error()})
	}

	id, err := decodeUID(data.UID)
	if err != nil {
		return invalid()
	}
	usr, err := svc.repo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return invalid()
		}
		return err
	}
	if err = svc.tokens.verifyToken(usr, data.Token); err != nil {
		return core.NewValidationError(err, core.FieldError{Field: "token", Error: err.Error()})
	}

	if err = usr.SetPassword(data.Password); err != nil {
		return errors.Wrap(err, "setting password")
	}
	usr.UpdatedAt = svc.now()
	_, err = svc.repo.UpdateUser(ctx, usr)
	return err
}

// ChangePassword sets the password of the user identified by username or email, without any policy check.
func (svc *Service) ChangePassword(ctx context.Context, unameOrEmail, pwd string) (User, error) {
	usr, err := svc.GetByUsernameOrEmail(ctx, unameOrEmail)
	if err != nil {
		return User{}, err
	}
	if err = usr.SetPassword(pwd); err != nil {
		return User{}, errors.Wrap(err, "setting password")
	}
	usr.UpdatedAt = svc.now()
	return svc.repo.UpdateUser(ctx, usr)
}
