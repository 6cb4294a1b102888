// Package mongo provides MongoDB client construction for the platform.
//
// Every database handle in the system, the master database and each tenant
// database, is opened through the same Config so pool sizes, timeouts and
// retry behaviour are identical across tenants.
//
// # Usage
//
//	cfg := mongo.Config{ConnectionURL: "mongodb://localhost:27017"}
//
//	client, err := mongo.New(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer client.Disconnect(context.Background())
//
// The tenant connection registry takes a dialer instead of a client so it can
// open one client per tenant on demand:
//
//	registry := tenantdb.New(mongo.Dialer(cfg))
//
// # Error Handling
//
// Connection failures are joined with ErrFailedToConnectToMongo, health check
// failures with ErrHealthcheckFailed. IsDuplicateKey and IsNamespaceExists
// classify driver errors that callers treat as expected outcomes.
package mongo
