package platform

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	mongox "github.com/talentdesk/ats/pkg/mongo"
	"github.com/talentdesk/ats/pkg/tenant"
)

// MongoStore implements Storage on the master database.
type MongoStore struct {
	master tenant.MasterSource
}

var _ Storage = (*MongoStore)(nil)

func NewMongoStore(master tenant.MasterSource) *MongoStore {
	return &MongoStore{master: master}
}

func (s *MongoStore) collection(name string) (*mongo.Collection, error) {
	db, err := s.master.Master()
	if err != nil {
		return nil, err
	}
	return db.Collection(name), nil
}

// EnsureIndexes creates the master-database indexes. It is idempotent.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	tenants, err := s.collection(tenant.CollectionTenants)
	if err != nil {
		return err
	}
	admins, err := s.collection(CollectionSuperAdmins)
	if err != nil {
		return err
	}

	if _, err := tenants.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "subdomain", Value: 1}},
			Options: options.Index().SetName("subdomain_unique").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "subdomain", Value: 1}, {Key: "is_active", Value: 1}},
			Options: options.Index().SetName("subdomain_active"),
		},
	}); err != nil {
		return fmt.Errorf("tenants indexes: %w", err)
	}

	if _, err := admins.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetName("email_unique").SetUnique(true),
	}); err != nil {
		return fmt.Errorf("super_admins indexes: %w", err)
	}
	return nil
}

func (s *MongoStore) CreateTenant(ctx context.Context, t *tenant.Tenant) error {
	coll, err := s.collection(tenant.CollectionTenants)
	if err != nil {
		return err
	}
	if _, err := coll.InsertOne(ctx, t); err != nil {
		if mongox.IsDuplicateKey(err) {
			return ErrSubdomainTaken
		}
		return fmt.Errorf("insert tenant: %w", err)
	}
	return nil
}

func (s *MongoStore) DeleteTenant(ctx context.Context, id string) error {
	coll, err := s.collection(tenant.CollectionTenants)
	if err != nil {
		return err
	}
	if _, err := coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}}); err != nil {
		return fmt.Errorf("delete tenant: %w", err)
	}
	return nil
}

func (s *MongoStore) GetTenant(ctx context.Context, subdomain string) (*tenant.Tenant, error) {
	coll, err := s.collection(tenant.CollectionTenants)
	if err != nil {
		return nil, err
	}
	var t tenant.Tenant
	if err := coll.FindOne(ctx, bson.D{{Key: "subdomain", Value: subdomain}}).Decode(&t); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrTenantNotFound
		}
		return nil, fmt.Errorf("find tenant: %w", err)
	}
	return &t, nil
}

func (s *MongoStore) ListTenants(ctx context.Context, filter TenantFilter) ([]*tenant.Tenant, error) {
	coll, err := s.collection(tenant.CollectionTenants)
	if err != nil {
		return nil, err
	}

	query := bson.D{}
	if filter.Active != nil {
		query = append(query, bson.E{Key: "is_active", Value: *filter.Active})
	}

	cur, err := coll.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	tenants := make([]*tenant.Tenant, 0)
	if err := cur.All(ctx, &tenants); err != nil {
		return nil, fmt.Errorf("decode tenants: %w", err)
	}
	return tenants, nil
}

func (s *MongoStore) SetTenantActive(ctx context.Context, subdomain string, active bool, at time.Time) (*tenant.Tenant, error) {
	return s.updateTenant(ctx, subdomain, bson.D{
		{Key: "is_active", Value: active},
		{Key: "updated_at", Value: at},
	})
}

func (s *MongoStore) UpdateBranding(ctx context.Context, subdomain string, b Branding, at time.Time) (*tenant.Tenant, error) {
	set := bson.D{{Key: "updated_at", Value: at}}
	if b.CompanyName != nil {
		set = append(set, bson.E{Key: "company_name", Value: *b.CompanyName})
	}
	if b.LogoURL != nil {
		set = append(set, bson.E{Key: "logo_url", Value: *b.LogoURL})
	}
	if b.PrimaryColor != nil {
		set = append(set, bson.E{Key: "primary_color", Value: *b.PrimaryColor})
	}
	if b.ContactEmail != nil {
		set = append(set, bson.E{Key: "contact_email", Value: *b.ContactEmail})
	}
	return s.updateTenant(ctx, subdomain, set)
}

func (s *MongoStore) updateTenant(ctx context.Context, subdomain string, set bson.D) (*tenant.Tenant, error) {
	coll, err := s.collection(tenant.CollectionTenants)
	if err != nil {
		return nil, err
	}

	var t tenant.Tenant
	err = coll.FindOneAndUpdate(ctx,
		bson.D{{Key: "subdomain", Value: subdomain}},
		bson.D{{Key: "$set", Value: set}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&t)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrTenantNotFound
		}
		return nil, fmt.Errorf("update tenant: %w", err)
	}
	return &t, nil
}

func (s *MongoStore) CreateAdmin(ctx context.Context, a *SuperAdmin) error {
	coll, err := s.collection(CollectionSuperAdmins)
	if err != nil {
		return err
	}
	if _, err := coll.InsertOne(ctx, a); err != nil {
		if mongox.IsDuplicateKey(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("insert super admin: %w", err)
	}
	return nil
}

func (s *MongoStore) GetAdminByEmail(ctx context.Context, email string) (*SuperAdmin, error) {
	coll, err := s.collection(CollectionSuperAdmins)
	if err != nil {
		return nil, err
	}
	var a SuperAdmin
	if err := coll.FindOne(ctx, bson.D{{Key: "email", Value: email}}).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrAdminNotFound
		}
		return nil, fmt.Errorf("find super admin: %w", err)
	}
	return &a, nil
}

func (s *MongoStore) RecordFailedLogin(ctx context.Context, id string, at time.Time) (int, error) {
	coll, err := s.collection(CollectionSuperAdmins)
	if err != nil {
		return 0, err
	}

	var a SuperAdmin
	err = coll.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{
			{Key: "$inc", Value: bson.D{{Key: "failed_attempts", Value: 1}}},
			{Key: "$set", Value: bson.D{{Key: "updated_at", Value: at}}},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&a)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, ErrAdminNotFound
		}
		return 0, fmt.Errorf("record failed login: %w", err)
	}
	return a.FailedAttempts, nil
}

func (s *MongoStore) LockAdmin(ctx context.Context, id string, until, at time.Time) error {
	coll, err := s.collection(CollectionSuperAdmins)
	if err != nil {
		return err
	}
	// Matches only when no lock is active, so concurrent lockers keep the first.
	_, err = coll.UpdateOne(ctx,
		bson.D{
			{Key: "_id", Value: id},
			{Key: "$or", Value: bson.A{
				bson.D{{Key: "locked_until", Value: bson.D{{Key: "$exists", Value: false}}}},
				bson.D{{Key: "locked_until", Value: bson.D{{Key: "$lte", Value: at}}}},
			}},
		},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "locked_until", Value: until},
			{Key: "updated_at", Value: at},
		}}},
	)
	if err != nil {
		return fmt.Errorf("lock super admin: %w", err)
	}
	return nil
}

func (s *MongoStore) ClearExpiredLock(ctx context.Context, id string, at time.Time) error {
	coll, err := s.collection(CollectionSuperAdmins)
	if err != nil {
		return err
	}
	_, err = coll.UpdateOne(ctx,
		bson.D{
			{Key: "_id", Value: id},
			{Key: "locked_until", Value: bson.D{{Key: "$lte", Value: at}}},
		},
		bson.D{
			{Key: "$set", Value: bson.D{
				{Key: "failed_attempts", Value: 0},
				{Key: "updated_at", Value: at},
			}},
			{Key: "$unset", Value: bson.D{{Key: "locked_until", Value: ""}}},
		},
	)
	if err != nil {
		return fmt.Errorf("clear super admin lock: %w", err)
	}
	return nil
}

func (s *MongoStore) RecordSuccessfulLogin(ctx context.Context, id string, at time.Time) error {
	return s.updateAdmin(ctx, id, bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "failed_attempts", Value: 0},
			{Key: "last_login_at", Value: at},
			{Key: "updated_at", Value: at},
		}},
		{Key: "$unset", Value: bson.D{{Key: "locked_until", Value: ""}}},
	})
}

func (s *MongoStore) updateAdmin(ctx context.Context, id string, update bson.D) error {
	coll, err := s.collection(CollectionSuperAdmins)
	if err != nil {
		return err
	}
	res, err := coll.UpdateOne(ctx, bson.D{{Key: "_id", Value: id}}, update)
	if err != nil {
		return fmt.Errorf("update super admin: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrAdminNotFound
	}
	return nil
}
