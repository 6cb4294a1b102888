package tenantdb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	mongox "github.com/talentdesk/ats/pkg/mongo"
)

// Collections every tenant database contains.
const (
	CollectionUsers        = "users"
	CollectionRequirements = "requirements"
	CollectionJobs         = "jobs"
	CollectionCandidates   = "candidates"
	CollectionApplications = "applications"
)

// CollectionSpec describes one collection and the indexes it must carry.
// Index names are fixed so that re-provisioning is a no-op.
type CollectionSpec struct {
	Name    string
	Indexes []mongo.IndexModel
}

// Schema returns the collection set provisioned for every tenant.
func Schema() []CollectionSpec {
	return []CollectionSpec{
		{
			Name: CollectionUsers,
			Indexes: []mongo.IndexModel{
				index("email_unique", bson.D{{Key: "email", Value: 1}}, true),
				index("role", bson.D{{Key: "role", Value: 1}}, false),
			},
		},
		{
			Name: CollectionRequirements,
			Indexes: []mongo.IndexModel{
				index("status_created_at", bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}, false),
				index("created_by", bson.D{{Key: "created_by", Value: 1}}, false),
			},
		},
		{
			Name: CollectionJobs,
			Indexes: []mongo.IndexModel{
				index("slug_unique", bson.D{{Key: "slug", Value: 1}}, true),
				index("requirement_id", bson.D{{Key: "requirement_id", Value: 1}}, false),
				index("status_published_at", bson.D{{Key: "status", Value: 1}, {Key: "published_at", Value: -1}}, false),
			},
		},
		{
			Name: CollectionCandidates,
			Indexes: []mongo.IndexModel{
				index("email_unique", bson.D{{Key: "email", Value: 1}}, true),
			},
		},
		{
			Name: CollectionApplications,
			Indexes: []mongo.IndexModel{
				index("job_candidate_unique", bson.D{{Key: "job_id", Value: 1}, {Key: "candidate_id", Value: 1}}, true),
				index("status", bson.D{{Key: "status", Value: 1}}, false),
			},
		},
	}
}

func index(name string, keys bson.D, unique bool) mongo.IndexModel {
	opts := options.Index().SetName(name)
	if unique {
		opts.SetUnique(true)
	}
	return mongo.IndexModel{Keys: keys, Options: opts}
}

// CreateTenantDatabase opens (or reuses) the tenant handle and provisions
// the tenant schema on it.
func (r *Registry) CreateTenantDatabase(ctx context.Context, id string) (*mongo.Database, error) {
	db, err := r.Tenant(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := Provision(ctx, db); err != nil {
		return nil, err
	}
	return db, nil
}

// Provision creates every schema collection and its indexes on db.
// Existing collections and identical named indexes are left as they are.
func Provision(ctx context.Context, db *mongo.Database) error {
	for _, spec := range Schema() {
		if err := db.CreateCollection(ctx, spec.Name); err != nil && !mongox.IsNamespaceExists(err) {
			return fmt.Errorf("%w: create collection %q: %w", ErrProvision, spec.Name, err)
		}
		if len(spec.Indexes) == 0 {
			continue
		}
		if _, err := db.Collection(spec.Name).Indexes().CreateMany(ctx, spec.Indexes); err != nil {
			return fmt.Errorf("%w: indexes on %q: %w", ErrProvision, spec.Name, err)
		}
	}
	return nil
}

// Collections binds the tenant schema to one database handle.
type Collections struct {
	Users        *mongo.Collection
	Requirements *mongo.Collection
	Jobs         *mongo.Collection
	Candidates   *mongo.Collection
	Applications *mongo.Collection
}

// Bind returns accessors for the tenant collections on db.
func Bind(db *mongo.Database) *Collections {
	return &Collections{
		Users:        db.Collection(CollectionUsers),
		Requirements: db.Collection(CollectionRequirements),
		Jobs:         db.Collection(CollectionJobs),
		Candidates:   db.Collection(CollectionCandidates),
		Applications: db.Collection(CollectionApplications),
	}
}

// ByName returns the bound collections keyed by collection name.
func (c *Collections) ByName() map[string]*mongo.Collection {
	return map[string]*mongo.Collection{
		CollectionUsers:        c.Users,
		CollectionRequirements: c.Requirements,
		CollectionJobs:         c.Jobs,
		CollectionCandidates:   c.Candidates,
		CollectionApplications: c.Applications,
	}
}
