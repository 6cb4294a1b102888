package tenant

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// MasterSource hands out the master database handle.
type MasterSource interface {
	Master() (*mongo.Database, error)
}

// MongoProvider looks tenants up in the master database.
type MongoProvider struct {
	master MasterSource
}

// NewMongoProvider creates a Provider backed by the tenants collection of
// the master database.
func NewMongoProvider(master MasterSource) *MongoProvider {
	return &MongoProvider{master: master}
}

// GetByIdentifier finds the active tenant with the given subdomain.
// Inactive tenants are filtered out by the query itself, so callers cannot
// tell them apart from unknown ones.
func (p *MongoProvider) GetByIdentifier(ctx context.Context, identifier string) (*Tenant, error) {
	db, err := p.master.Master()
	if err != nil {
		return nil, err
	}

	filter := bson.D{
		{Key: "subdomain", Value: identifier},
		{Key: "is_active", Value: true},
	}

	var t Tenant
	if err := db.Collection(CollectionTenants).FindOne(ctx, filter).Decode(&t); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrTenantNotFound
		}
		return nil, fmt.Errorf("find tenant %q: %w", identifier, err)
	}
	return &t, nil
}
