package impl

import (
	"context"
	"log/slog"
	"regexp"
	"unicode"

	"caseflow/config"
	deliverycontext "caseflow/internal/delivery/context"
	"caseflow/internal/domain/entity"
	domainerrors "caseflow/internal/domain/errors"
	"caseflow/internal/domain/repository"
	"caseflow/internal/domain/service"
	"caseflow/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

var (
	emailPattern    = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9]{3,}$`)
)

// authService implements the AuthUsecase interface. It composes the
// verification-code and session services: passwords alone never open a
// session, a consumed code does.
type authService struct {
	txManager    repository.TransactionManager
	verification usecase.VerificationUsecase
	sessions     usecase.SessionUsecase
	tokenService service.TokenService
	hasher       service.PasswordHasher
	clock        service.Clock
	cfg          *config.Config
	logger       *slog.Logger
}

// AuthServiceParams holds dependencies for authService, injected by Fx.
type AuthServiceParams struct {
	fx.In

	TxManager    repository.TransactionManager
	Verification usecase.VerificationUsecase
	Sessions     usecase.SessionUsecase
	TokenService service.TokenService
	Hasher       service.PasswordHasher
	Clock        service.Clock
	Config       *config.Config
	Logger       *slog.Logger
}

// NewAuthService is the constructor for authService.
func NewAuthService(params AuthServiceParams) usecase.AuthUsecase {
	return &authService{
		txManager:    params.TxManager,
		verification: params.Verification,
		sessions:     params.Sessions,
		tokenService: params.TokenService,
		hasher:       params.Hasher,
		clock:        params.Clock,
		cfg:          params.Config,
		logger:       params.Logger,
	}
}

func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Signup creates an unverified account and issues a signup code. The account
// has no session until the code is consumed.
func (srv *authService) Signup(ctx context.Context, input *usecase.SignupInput) (*usecase.PendingVerification, error) {
	if err := validateSignup(input); err != nil {
		return nil, err
	}

	hash, err := srv.hasher.Hash(input.Password)
	if err != nil {
		return nil, errors.Wrap(err, "failed to hash password")
	}

	user := &entity.User{
		ID:           uuid.New(),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		CreatedAt:    srv.clock.Now(),
	}

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()

		if _, err := userRepo.FindByEmail(ctx, input.Email); err == nil {
			return domainerrors.ErrUserAlreadyExists.WithDetails("email already registered: " + input.Email)
		} else if !errors.Is(err, repository.ErrUserNotFound) {
			return errors.Wrap(err, "failed to check for existing user")
		}

		return errors.Wrap(userRepo.Create(ctx, user), "failed to create user")
	})
	if err != nil {
		return nil, err
	}

	srv.log(ctx).Info("User signed up",
		slog.Any("user_id", user.ID), slog.String("username", user.Username))

	return srv.issueCode(ctx, user.ID, entity.CodePurposeSignup)
}

// Login checks the password and issues a login code. The session only starts
// once VerifyCode consumes that code.
func (srv *authService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.PendingVerification, error) {
	var user *entity.User

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		found, err := repoFactory.UserRepo().FindByEmail(ctx, input.Email)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				// Same error as a wrong password, to avoid leaking which
				// emails are registered.
				return domainerrors.ErrInvalidCredentials
			}

			return errors.Wrap(err, "failed to find user")
		}

		user = found

		return nil
	})
	if err != nil {
		return nil, err
	}

	if !srv.hasher.Check(input.Password, user.PasswordHash) {
		srv.log(ctx).Warn("Login rejected: bad password", slog.Any("user_id", user.ID))

		return nil, domainerrors.ErrInvalidCredentials
	}

	return srv.issueCode(ctx, user.ID, entity.CodePurposeLogin)
}

// VerifyCode consumes a verification code. On success it marks the user
// verified (for signup codes), records the login, starts a session, and
// returns a signed access token.
func (srv *authService) VerifyCode(ctx context.Context, userID uuid.UUID, purpose entity.CodePurpose, code string) (*usecase.AuthOutput, error) {
	if err := srv.verification.Verify(ctx, userID, purpose, code); err != nil {
		return nil, err
	}

	var user *entity.User

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()

		found, err := userRepo.FindByID(ctx, userID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return domainerrors.ErrUserNotFound.WithDetails("user " + userID.String())
			}

			return errors.Wrap(err, "failed to find user")
		}

		if purpose == entity.CodePurposeSignup {
			found.Verified = true
		}
		now := srv.clock.Now()
		found.LastLoginAt = &now

		if err := userRepo.Update(ctx, found); err != nil {
			return errors.Wrap(err, "failed to update user")
		}

		user = found

		return nil
	})
	if err != nil {
		return nil, err
	}

	if _, err := srv.sessions.Start(ctx, user.ID, user.IsAdmin); err != nil {
		return nil, err
	}

	token, err := srv.tokenService.GenerateToken(user.ID, user.IsAdmin)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate access token")
	}

	srv.log(ctx).Info("Verification completed, session opened",
		slog.Any("user_id", user.ID), slog.String("purpose", purpose.String()))

	return &usecase.AuthOutput{User: user, AccessToken: token}, nil
}

// ResendCode reissues the code for (user, purpose). The prior code is
// invalidated even if it had time left.
func (srv *authService) ResendCode(ctx context.Context, userID uuid.UUID, purpose entity.CodePurpose) (*usecase.PendingVerification, error) {
	return srv.issueCode(ctx, userID, purpose)
}

// Logout ends the user's session. Logging out twice is harmless.
func (srv *authService) Logout(ctx context.Context, userID uuid.UUID) error {
	return srv.sessions.End(ctx, userID)
}

// EnsureAdmin creates or refreshes the configured admin identity. It runs at
// startup; when the admin config is absent or disabled it does nothing.
func (srv *authService) EnsureAdmin(ctx context.Context) error {
	admin := srv.cfg.Admin
	if admin == nil || !admin.Enabled {
		return nil
	}

	hash, err := srv.hasher.Hash(admin.Password)
	if err != nil {
		return errors.Wrap(err, "failed to hash admin password")
	}

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()

		existing, err := userRepo.FindByEmail(ctx, admin.Email)
		if err == nil {
			existing.Username = admin.Username
			existing.PasswordHash = hash
			existing.Verified = true
			existing.IsAdmin = true

			return errors.Wrap(userRepo.Update(ctx, existing), "failed to refresh admin user")
		}
		if !errors.Is(err, repository.ErrUserNotFound) {
			return errors.Wrap(err, "failed to look up admin user")
		}

		return errors.Wrap(userRepo.Create(ctx, &entity.User{
			ID:           uuid.New(),
			Username:     admin.Username,
			Email:        admin.Email,
			PasswordHash: hash,
			Verified:     true,
			IsAdmin:      true,
			CreatedAt:    srv.clock.Now(),
		}), "failed to create admin user")
	})
	if err != nil {
		return err
	}

	srv.logger.Info("Admin identity ensured", slog.String("email", admin.Email))

	return nil
}

// issueCode wraps VerificationUsecase.Issue and decides whether the raw code
// may be surfaced to the caller. Only the mock mail transport exposes it.
func (srv *authService) issueCode(ctx context.Context, userID uuid.UUID, purpose entity.CodePurpose) (*usecase.PendingVerification, error) {
	code, err := srv.verification.Issue(ctx, userID, purpose)
	if err != nil {
		return nil, err
	}

	pending := &usecase.PendingVerification{UserID: userID, Purpose: purpose}
	if srv.cfg.SMTP != nil && srv.cfg.SMTP.UseMock {
		pending.MockCode = code
	}

	return pending, nil
}

func validateSignup(input *usecase.SignupInput) error {
	if input == nil {
		return domainerrors.ErrValidation.WithDetails("missing signup input")
	}
	if !usernamePattern.MatchString(input.Username) {
		return domainerrors.ErrValidation.WithDetails("username must be at least 3 alphanumeric characters")
	}
	if !emailPattern.MatchString(input.Email) {
		return domainerrors.ErrValidation.WithDetails("invalid email address")
	}

	return validatePassword(input.Password)
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return domainerrors.ErrValidation.WithDetails("password must be at least 8 characters")
	}

	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return domainerrors.ErrValidation.WithDetails("password must contain both letters and digits")
	}

	return nil
}
