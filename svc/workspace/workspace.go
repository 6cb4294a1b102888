package workspace

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/talentdesk/ats/core"
	"github.com/talentdesk/ats/pkg/logger"
	"github.com/talentdesk/ats/pkg/tenant"
	"github.com/talentdesk/ats/pkg/tenantdb"
)

// Profile is the public branding of the bound tenant.
type Profile struct {
	Subdomain    string `json:"subdomain"`
	CompanyName  string `json:"company_name"`
	LogoURL      string `json:"logo_url,omitempty"`
	PrimaryColor string `json:"primary_color,omitempty"`
	ContactEmail string `json:"contact_email,omitempty"`
}

// Stats holds document counts per tenant collection.
type Stats struct {
	Collections map[string]int64 `json:"collections"`
	Total       int64            `json:"total"`
}

// Counter counts documents in each tenant collection of db.
type Counter func(ctx context.Context, db *mongo.Database) (map[string]int64, error)

// CountCollections is the default Counter.
func CountCollections(ctx context.Context, db *mongo.Database) (map[string]int64, error) {
	colls := tenantdb.Bind(db).ByName()
	counts := make(map[string]int64, len(colls))
	for _, name := range slices.Sorted(maps.Keys(colls)) {
		n, err := colls[name].CountDocuments(ctx, bson.D{})
		if err != nil {
			return nil, fmt.Errorf("count %s: %w", name, err)
		}
		counts[name] = n
	}
	return counts, nil
}

type Handler struct {
	count  Counter
	logger *slog.Logger
}

type Option func(*Handler)

func WithCounter(c Counter) Option {
	return func(h *Handler) {
		if c != nil {
			h.count = c
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

func NewHandler(opts ...Option) *Handler {
	h := &Handler{count: CountCollections, logger: logger.Discard()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes returns the workspace router. It expects the tenant binder to
// have run and refuses master-bound requests.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(tenant.RequireTenant())
	r.Get("/", core.Wrap(h.profile))
	r.Get("/stats", core.Wrap(h.stats))
	return r
}

func (h *Handler) profile(r *http.Request, _ struct{}) core.Response {
	t := tenant.MustFromContext(r.Context())
	return core.JSON(Profile{
		Subdomain:    t.Subdomain,
		CompanyName:  t.CompanyName,
		LogoURL:      t.LogoURL,
		PrimaryColor: t.PrimaryColor,
		ContactEmail: t.ContactEmail,
	})
}

func (h *Handler) stats(r *http.Request, _ struct{}) core.Response {
	ctx := r.Context()
	counts, err := h.count(ctx, tenant.MustDatabase(ctx))
	if err != nil {
		h.logger.ErrorContext(ctx, "collection stats failed",
			logger.Component("workspace"),
			logger.Error(err),
		)
		return core.JSONError(core.ErrServiceUnavailable)
	}

	var total int64
	for _, n := range counts {
		total += n
	}
	return core.JSON(Stats{Collections: counts, Total: total})
}
