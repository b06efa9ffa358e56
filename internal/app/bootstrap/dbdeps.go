// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/wanderhub/travelhub/internal/app/console/session"
	"github.com/wanderhub/travelhub/internal/app/system/workers"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// Console is filled in by Startup. It is a pointer so every hook sees
	// the same services even though DBDeps is passed by value.
	Console *ConsoleDeps
}

// ConsoleDeps are the long-lived console services built at startup.
type ConsoleDeps struct {
	Registry *session.Registry
	Sweeper  *workers.SessionCleanup
	Metrics  *prometheus.Registry
}
