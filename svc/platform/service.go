package platform

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/talentdesk/ats/core"
	"github.com/talentdesk/ats/pkg/logger"
	"github.com/talentdesk/ats/pkg/tenant"
)

const (
	DefaultMaxLoginAttempts = 5
	DefaultLockoutDuration  = 15 * time.Minute
	MinPasswordLength       = 12
	maxCompanyNameLength    = 120
)

var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Provisioner creates and releases tenant databases. *tenantdb.Registry
// satisfies it.
type Provisioner interface {
	CreateTenantDatabase(ctx context.Context, id string) (*mongo.Database, error)
	CloseTenant(ctx context.Context, id string) error
}

// TokenIssuer signs access tokens. *jwt.Service satisfies it.
type TokenIssuer interface {
	Issue(subject, email, role string) (string, time.Time, error)
}

// Service implements platform administration: the tenant directory and
// super-admin authentication.
type Service struct {
	store       Storage
	provisioner Provisioner
	tokens      TokenIssuer
	logger      *slog.Logger
	now         func() time.Time

	bcryptCost       int
	maxLoginAttempts int
	lockoutDuration  time.Duration
	dummyHash        []byte
}

type ServiceOption func(*Service)

func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func WithBcryptCost(cost int) ServiceOption {
	return func(s *Service) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			s.bcryptCost = cost
		}
	}
}

// WithLoginLockout locks an account for d after attempts consecutive failures.
func WithLoginLockout(attempts int, d time.Duration) ServiceOption {
	return func(s *Service) {
		if attempts > 0 && d > 0 {
			s.maxLoginAttempts = attempts
			s.lockoutDuration = d
		}
	}
}

func NewService(store Storage, provisioner Provisioner, tokens TokenIssuer, opts ...ServiceOption) (*Service, error) {
	s := &Service{
		store:            store,
		provisioner:      provisioner,
		tokens:           tokens,
		logger:           logger.Discard(),
		now:              time.Now,
		bcryptCost:       bcrypt.DefaultCost,
		maxLoginAttempts: DefaultMaxLoginAttempts,
		lockoutDuration:  DefaultLockoutDuration,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Unknown emails are checked against this hash so Login timing is uniform.
	hash, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("init password hasher: %w", err)
	}
	s.dummyHash = hash
	return s, nil
}

// ProvisionInput describes a new tenant. Subdomain is derived from
// CompanyName when empty.
type ProvisionInput struct {
	CompanyName  string `json:"company_name"`
	Subdomain    string `json:"subdomain,omitempty"`
	ContactEmail string `json:"contact_email,omitempty"`
	LogoURL      string `json:"logo_url,omitempty"`
	PrimaryColor string `json:"primary_color,omitempty"`
	PlanID       string `json:"plan_id,omitempty"`
}

// ProvisionTenant registers a tenant and creates its database. The record
// is stored inactive and only activated once the database is ready, so the
// subdomain never resolves to a half-built tenant. On failure the record is
// removed again.
func (s *Service) ProvisionTenant(ctx context.Context, in ProvisionInput) (*tenant.Tenant, error) {
	in.CompanyName = strings.TrimSpace(in.CompanyName)
	in.Subdomain = strings.ToLower(strings.TrimSpace(in.Subdomain))
	if in.Subdomain == "" {
		in.Subdomain = tenant.NormalizeIdentifier(in.CompanyName)
	}
	in.ContactEmail = normalizeEmail(in.ContactEmail)

	verr := core.NewValidationError()
	if in.CompanyName == "" {
		verr.Add("company_name", "is required")
	} else if utf8.RuneCountInString(in.CompanyName) > maxCompanyNameLength {
		verr.Add("company_name", fmt.Sprintf("must be at most %d characters", maxCompanyNameLength))
	}
	switch {
	case in.Subdomain == "":
		verr.Add("subdomain", "is required")
	case !tenant.ValidIdentifier(in.Subdomain):
		verr.Add("subdomain", "must be 3-30 lowercase letters, digits or hyphens and start with a letter or digit")
	case tenant.IsReserved(in.Subdomain):
		verr.Add("subdomain", "is reserved")
	}
	validateBrandingFields(verr, in.ContactEmail, in.LogoURL, in.PrimaryColor)
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	t := &tenant.Tenant{
		ID:           uuid.NewString(),
		Subdomain:    in.Subdomain,
		CompanyName:  in.CompanyName,
		LogoURL:      in.LogoURL,
		PrimaryColor: in.PrimaryColor,
		ContactEmail: in.ContactEmail,
		PlanID:       in.PlanID,
		Active:       false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.CreateTenant(ctx, t); err != nil {
		return nil, err
	}

	if _, err := s.provisioner.CreateTenantDatabase(ctx, t.Subdomain); err != nil {
		s.rollbackTenant(ctx, t)
		return nil, errors.Join(ErrProvisioning, err)
	}

	active, err := s.store.SetTenantActive(ctx, t.Subdomain, true, now)
	if err != nil {
		s.rollbackTenant(ctx, t)
		return nil, errors.Join(ErrProvisioning, err)
	}

	s.logger.InfoContext(ctx, "tenant provisioned",
		logger.Component("platform"),
		logger.Event("tenant.provisioned"),
		logger.Subdomain(active.Subdomain),
		slog.String("tenant_id", active.ID),
	)
	return active, nil
}

func (s *Service) rollbackTenant(ctx context.Context, t *tenant.Tenant) {
	ctx = context.WithoutCancel(ctx)
	if err := s.provisioner.CloseTenant(ctx, t.Subdomain); err != nil {
		s.logger.WarnContext(ctx, "close tenant handle during rollback failed",
			logger.Component("platform"),
			logger.Subdomain(t.Subdomain),
			logger.Error(err),
		)
	}
	if err := s.store.DeleteTenant(ctx, t.ID); err != nil {
		s.logger.ErrorContext(ctx, "tenant rollback failed",
			logger.Component("platform"),
			logger.Subdomain(t.Subdomain),
			logger.Error(err),
		)
	}
}

func (s *Service) ListTenants(ctx context.Context, filter TenantFilter) ([]*tenant.Tenant, error) {
	return s.store.ListTenants(ctx, filter)
}

// GetTenant returns a tenant regardless of its active flag.
func (s *Service) GetTenant(ctx context.Context, subdomain string) (*tenant.Tenant, error) {
	return s.store.GetTenant(ctx, strings.ToLower(subdomain))
}

// SetTenantActive activates or deactivates a tenant. Activation first
// re-provisions the tenant database, and the tenant stays inactive when
// that fails. Deactivation releases the cached connection; subsequent
// requests to the subdomain fail lookup and never reopen it.
func (s *Service) SetTenantActive(ctx context.Context, subdomain string, active bool) (*tenant.Tenant, error) {
	subdomain = strings.ToLower(subdomain)
	if active {
		if _, err := s.store.GetTenant(ctx, subdomain); err != nil {
			return nil, err
		}
		if _, err := s.provisioner.CreateTenantDatabase(ctx, subdomain); err != nil {
			return nil, errors.Join(ErrProvisioning, err)
		}
	}

	t, err := s.store.SetTenantActive(ctx, subdomain, active, s.now().UTC())
	if err != nil {
		return nil, err
	}

	if !active {
		if err := s.provisioner.CloseTenant(ctx, t.Subdomain); err != nil {
			s.logger.WarnContext(ctx, "close tenant handle failed",
				logger.Component("platform"),
				logger.Subdomain(t.Subdomain),
				logger.Error(err),
			)
		}
	}

	event := "tenant.activated"
	if !active {
		event = "tenant.deactivated"
	}
	s.logger.InfoContext(ctx, "tenant status changed",
		logger.Component("platform"),
		logger.Event(event),
		logger.Subdomain(t.Subdomain),
	)
	return t, nil
}

func (s *Service) UpdateBranding(ctx context.Context, subdomain string, b Branding) (*tenant.Tenant, error) {
	if b.CompanyName != nil {
		name := strings.TrimSpace(*b.CompanyName)
		b.CompanyName = &name
	}
	if b.ContactEmail != nil {
		email := normalizeEmail(*b.ContactEmail)
		b.ContactEmail = &email
	}

	verr := core.NewValidationError()
	if b.Empty() {
		verr.Add("branding", "at least one field is required")
	}
	if b.CompanyName != nil && *b.CompanyName == "" {
		verr.Add("company_name", "must not be empty")
	}
	validateBrandingFields(verr, deref(b.ContactEmail), deref(b.LogoURL), deref(b.PrimaryColor))
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	return s.store.UpdateBranding(ctx, strings.ToLower(subdomain), b, s.now().UTC())
}

// EnsureSuperAdmin creates the operator account if it does not exist yet.
// An existing account keeps its password.
func (s *Service) EnsureSuperAdmin(ctx context.Context, email, password string) (*SuperAdmin, error) {
	email = normalizeEmail(email)

	verr := core.NewValidationError()
	if !validEmail(email) {
		verr.Add("email", "must be a valid email address")
	}
	if len(password) < MinPasswordLength {
		verr.Add("password", fmt.Sprintf("must be at least %d characters", MinPasswordLength))
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	existing, err := s.store.GetAdminByEmail(ctx, email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrAdminNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	admin := &SuperAdmin{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.CreateAdmin(ctx, admin); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			// Lost a race with another instance bootstrapping the same account.
			return s.store.GetAdminByEmail(ctx, email)
		}
		return nil, err
	}

	s.logger.InfoContext(ctx, "super admin created",
		logger.Component("platform"),
		logger.Event("super_admin.created"),
		logger.UserID(admin.ID),
	)
	return admin, nil
}

// LoginResult is returned by a successful Login.
type LoginResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	Admin     *SuperAdmin `json:"admin"`
}

// Login verifies operator credentials and issues an access token. After
// the configured number of consecutive failures the account is locked and
// Login returns ErrAccountLocked until the lock expires, even for the
// correct password.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = normalizeEmail(email)
	now := s.now().UTC()

	admin, err := s.store.GetAdminByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrAdminNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if admin.Locked(now) {
		return nil, ErrAccountLocked
	}
	if admin.LockedUntil != nil {
		// An expired lock starts a fresh window.
		if err := s.store.ClearExpiredLock(ctx, admin.ID, now); err != nil {
			return nil, err
		}
	}

	if err := bcrypt.CompareHashAndPassword(admin.PasswordHash, []byte(password)); err != nil {
		return nil, s.recordFailure(ctx, admin, now)
	}

	if err := s.store.RecordSuccessfulLogin(ctx, admin.ID, now); err != nil {
		return nil, err
	}

	token, expires, err := s.tokens.Issue(admin.ID, admin.Email, RoleSuperAdmin)
	if err != nil {
		return nil, err
	}

	admin.FailedAttempts = 0
	admin.LockedUntil = nil
	admin.LastLoginAt = &now

	s.logger.InfoContext(ctx, "super admin logged in",
		logger.Component("platform"),
		logger.Event("super_admin.login"),
		logger.UserID(admin.ID),
	)
	return &LoginResult{Token: token, ExpiresAt: expires, Admin: admin}, nil
}

func (s *Service) recordFailure(ctx context.Context, admin *SuperAdmin, now time.Time) error {
	attempts, err := s.store.RecordFailedLogin(ctx, admin.ID, now)
	if err != nil {
		return err
	}
	if attempts < s.maxLoginAttempts {
		return ErrInvalidCredentials
	}

	until := now.Add(s.lockoutDuration)
	if err := s.store.LockAdmin(ctx, admin.ID, until, now); err != nil {
		return err
	}
	if attempts == s.maxLoginAttempts {
		s.logger.WarnContext(ctx, "super admin locked out",
			logger.Component("platform"),
			logger.Event("super_admin.locked"),
			logger.UserID(admin.ID),
			slog.Time("locked_until", until),
		)
	}
	return ErrAccountLocked
}

func validateBrandingFields(verr core.ValidationError, email, logoURL, color string) {
	if email != "" && !validEmail(email) {
		verr.Add("contact_email", "must be a valid email address")
	}
	if logoURL != "" && !validHTTPURL(logoURL) {
		verr.Add("logo_url", "must be an absolute http(s) URL")
	}
	if color != "" && !colorPattern.MatchString(color) {
		verr.Add("primary_color", "must be a hex color like #1a2b3c")
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

func validHTTPURL(raw string) bool {
	u, err := url.ParseRequestURI(raw)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
