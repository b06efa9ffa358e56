// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/wanderhub/travelhub/internal/app/console/gateway"
	"github.com/wanderhub/travelhub/internal/app/console/session"
	"github.com/wanderhub/travelhub/internal/app/store/audit"
	"github.com/wanderhub/travelhub/internal/app/system/auditlog"
	"github.com/wanderhub/travelhub/internal/app/system/metrics"
	"github.com/wanderhub/travelhub/internal/app/system/timeouts"
	"github.com/wanderhub/travelhub/internal/app/system/workers"
	"github.com/wanderhub/travelhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built. It builds
// the console services: metrics registry, audit logger, gateway, session
// registry and the idle-session sweeper.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.Configure(timeouts.Config{
		Fetch:  appCfg.TimeoutFetch,
		Mutate: appCfg.TimeoutMutate,
		Bulk:   appCfg.TimeoutBulk,
	})

	if appCfg.AdminEmail != "" {
		if err := ensureAdmin(ctx, deps.MongoDatabase, appCfg.AdminEmail, logger); err != nil {
			logger.Error("ensure admin failed", zap.Error(err))
			return err
		}
	}

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(promReg)

	audits := auditlog.New(audit.New(deps.MongoDatabase), logger, auditlog.Config{Admin: appCfg.AuditLogAdmin})

	registry := session.NewRegistry(gateway.NewMongo(deps.MongoDatabase), session.Config{
		RefreshInterval: appCfg.RefreshInterval,
		AutoRefresh:     appCfg.RefreshAutoStart,
		BulkConcurrency: appCfg.BulkConcurrency,
		BulkRatePerSec:  appCfg.BulkRatePerSec,
		MailtoMaxLength: appCfg.MailtoMaxLength,
	}, logger, session.WithMetrics(m), session.WithAudit(audits))

	sweeper := workers.NewSessionCleanup(registry, logger, appCfg.ConsoleSweepInterval, appCfg.ConsoleIdleTimeout)
	sweeper.Start()

	deps.Console.Registry = registry
	deps.Console.Sweeper = sweeper
	deps.Console.Metrics = promReg
	return nil
}

// ensureAdmin promotes the user with email to an active admin, creating the
// user when none exists.
func ensureAdmin(ctx context.Context, db *mongo.Database, email string, logger *zap.Logger) error {
	email = strings.ToLower(strings.TrimSpace(email))
	users := db.Collection("users")
	now := time.Now().UTC()

	var existing models.User
	err := users.FindOne(ctx, bson.M{"email": email}).Decode(&existing)
	switch {
	case err == nil:
		if existing.Role == "admin" && existing.Status == "active" {
			logger.Debug("admin already present", zap.String("email", email))
			return nil
		}
		_, err = users.UpdateByID(ctx, existing.ID, bson.M{"$set": bson.M{
			"role":       "admin",
			"status":     "active",
			"updated_at": now,
		}})
		if err != nil {
			return err
		}
		logger.Info("promoted user to admin", zap.String("email", email), zap.String("previous_role", existing.Role))
		return nil

	case errors.Is(err, mongo.ErrNoDocuments):
		name, _, _ := strings.Cut(email, "@")
		u := models.User{
			ID:         primitive.NewObjectID(),
			FullName:   name,
			FullNameCI: text.Fold(name),
			Email:      email,
			Role:       "admin",
			Status:     "active",
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if _, err := users.InsertOne(ctx, u); err != nil {
			return err
		}
		logger.Info("created admin user", zap.String("email", email))
		return nil
	}
	return err
}
