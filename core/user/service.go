package user

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/cavok/flightdesk/core"
)

var (
	// errors
	ErrNotFound   = errors.New("user not found")
	ErrUserExists = errors.New("a user with this email already exists")
)

type (
	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string, excludedUsers []User, exec ...core.DBExecutor) error
		CreateUser(ctx context.Context, usr User, exec ...core.DBExecutor) (User, error)
		QueryUsers(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]User, error)
		GetUser(ctx context.Context, filter GetFilter, exec ...core.DBExecutor) (User, error)
		UpdateUser(ctx context.Context, usr User, exec ...core.DBExecutor) (User, error)
		DeleteUsersByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error)
	}

	ServiceInterface interface {
		CheckUniqueness(email string, exclUsers ...User) error
		Create(nu NewUser) (User, error)
		Query(filter *QueryFilter, ordering []core.DBOrdering) ([]User, error)
		GetByID(id string) (User, error)
		GetByEmail(email string) (User, error)
		Update(id string, uu UpdateUser) (User, error)
		Delete(ids ...string) error
		SetLastLogin(usr User) (User, error)
		RequestPasswordReset(email string) error
		ResetPassword(rp ResetUserPassword) error
		StartIdentityVerification(id string) (core.IdentitySession, error)
		CompleteIdentityVerification(decision core.IdentityDecision) (User, error)
	}

	service struct {
		db          core.DB
		repo        Repository
		mailSvc     core.EmailService
		identitySvc core.IdentityService
		conf        *core.Config
	}
)

var _ ServiceInterface = (*service)(nil)

func NewService(db core.DB, repo Repository, mailSvc core.EmailService, identitySvc core.IdentityService, conf *core.Config) *service {
	return &service{
		db:          db,
		repo:        repo,
		mailSvc:     mailSvc,
		identitySvc: identitySvc,
		conf:        conf,
	}
}

func (svc *service) CheckUniqueness(email string, exclUsers ...User) error {
	if err := svc.repo.CheckEmailUniqueness(context.Background(), email, exclUsers); err != nil {
		if errors.Cause(err) == ErrUserExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *service) Create(nu NewUser) (User, error) {
	now := time.Now().UTC()
	usr := User{
		FirstName:      nu.FirstName,
		LastName:       nu.LastName,
		Email:          nu.Email,
		IsActive:       boolPtr(true),
		Roles:          nu.Roles,
		IdentityStatus: IdentityUnverified,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "setting password")
	}

	usr, err := svc.repo.CreateUser(context.Background(), usr)
	if err != nil {
		return User{}, err
	}

	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.FullName(), Address: usr.Email}},
		Subject:      "Welcome aboard",
		TemplateName: "welcome",
		TemplateData: struct{ FirstName string }{usr.FirstName},
	})
	return usr, nil
}

func (svc *service) Query(filter *QueryFilter, ordering []core.DBOrdering) ([]User, error) {
	return svc.repo.QueryUsers(context.Background(), filter, ordering)
}

func (svc *service) GetByID(id string) (User, error) {
	return svc.repo.GetUser(context.Background(), GetFilter{ID: id})
}

func (svc *service) GetByEmail(email string) (User, error) {
	return svc.repo.GetUser(context.Background(), GetFilter{Email: core.CleanString(email, true /* lower */)})
}

func (svc *service) Update(id string, uu UpdateUser) (User, error) {
	usr := User{
		ID:        id,
		FirstName: uu.FirstName,
		LastName:  uu.LastName,
		Email:     uu.Email,
		IsActive:  uu.IsActive,
		Roles:     uu.Roles,
		UpdatedAt: time.Now().UTC(),
	}
	if uu.Password != "" {
		if err := usr.SetPassword(uu.Password); err != nil {
			return User{}, errors.Wrap(err, "setting password")
		}
	}
	return svc.repo.UpdateUser(context.Background(), usr)
}

func (svc *service) Delete(ids ...string) error {
	_, err := svc.repo.DeleteUsersByID(context.Background(), ids)
	return err
}

func (svc *service) SetLastLogin(usr User) (User, error) {
	usr.LastLogin = time.Now().UTC()
	return svc.repo.UpdateUser(context.Background(), User{ID: usr.ID, LastLogin: usr.LastLogin, UpdatedAt: usr.LastLogin})
}

func (svc *service) RequestPasswordReset(email string) error {
	usr, err := svc.GetByEmail(email)
	if err != nil {
		return err
	}

	token, err := MakeToken(usr, svc.conf)
	if err != nil {
		return errors.Wrap(err, "making reset token")
	}

	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.FullName(), Address: usr.Email}},
		Subject:      "Password Reset",
		TemplateName: "password-reset",
		TemplateData: struct {
			FirstName string
			UID       string
			Token     string
		}{usr.FirstName, EncodeUID(usr), token},
	})
	return nil
}

func (svc *service) ResetPassword(rp ResetUserPassword) error {
	uid, err := decodeUID(rp.UID)
	if err != nil {
		return core.NewValidationError(errInvalidToken)
	}
	usr, err := svc.GetByID(uid)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return core.NewValidationError(errInvalidToken)
		}
		return err
	}

	if err = verifyToken(usr, rp.Token, svc.conf); err != nil {
		return core.NewValidationError(err)
	}

	if err = usr.SetPassword(rp.Password); err != nil {
		return errors.Wrap(err, "setting password")
	}
	usr.UpdatedAt = time.Now().UTC()
	_, err = svc.repo.UpdateUser(context.Background(), User{
		ID:           usr.ID,
		PasswordHash: usr.PasswordHash,
		UpdatedAt:    usr.UpdatedAt,
	})
	return err
}

func (svc *service) StartIdentityVerification(id string) (core.IdentitySession, error) {
	usr, err := svc.GetByID(id)
	if err != nil {
		return core.IdentitySession{}, err
	}
	if usr.IdentityStatus == IdentityVerified {
		return core.IdentitySession{}, core.NewValidationError(errors.New("identity already verified"))
	}

	session, err := svc.identitySvc.StartSession(context.Background(), usr.ID, usr.FirstName, usr.LastName)
	if err != nil {
		return core.IdentitySession{}, errors.Wrap(err, "starting verification session")
	}

	now := time.Now().UTC()
	_, err = svc.repo.UpdateUser(context.Background(), User{
		ID:              usr.ID,
		IdentityStatus:  IdentityPending,
		IdentitySession: session.ID,
		UpdatedAt:       now,
	})
	return session, err
}

func (svc *service) CompleteIdentityVerification(decision core.IdentityDecision) (User, error) {
	usr, err := svc.repo.GetUser(context.Background(), GetFilter{IdentitySession: decision.SessionID})
	if err != nil {
		return User{}, errors.Wrap(err, fmt.Sprintf("finding user for session %q", decision.SessionID))
	}

	status := IdentityPending
	switch decision.Code {
	case core.IdentityDecisionApproved:
		status = IdentityVerified
	case core.IdentityDecisionDeclined, core.IdentityDecisionExpired:
		status = IdentityRejected
	case core.IdentityDecisionResubmit:
		status = IdentityPending
	}

	return svc.repo.UpdateUser(context.Background(), User{
		ID:             usr.ID,
		IdentityStatus: status,
		UpdatedAt:      time.Now().UTC(),
	})
}

func boolPtr(b bool) *bool { return &b }
