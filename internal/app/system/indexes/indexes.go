// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wanderhub/travelhub/internal/app/console/resource"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Every console resource gets a newest-first
index on its sort field and, when it has a status lifecycle, a status+sort
index for the filtered views. A few collections add unique keys.
Errors are aggregated so every problem is visible and startup fails fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	var problems []string
	for _, spec := range resource.All() {
		if spec.Name == resource.AuditLogs {
			// owned by store/audit
			continue
		}
		coll := db.Collection(spec.Collection)
		if err := ensureIndexSet(ctx, coll, modelsFor(spec), logger); err != nil {
			problems = append(problems, spec.Collection+": "+err.Error())
		}
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// unique keys per collection, on top of the generated sort/status indexes
var uniques = map[resource.Name][]mongo.IndexModel{
	resource.Users: {{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetName("uniq_users_email").SetUnique(true),
	}},
	resource.Blogs: {{
		Keys:    bson.D{{Key: "slug", Value: 1}},
		Options: options.Index().SetName("uniq_blogs_slug").SetUnique(true),
	}},
	resource.NewsletterSubscribers: {{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetName("uniq_newsletter_subscribers_email").SetUnique(true),
	}},
}

func modelsFor(spec resource.Spec) []mongo.IndexModel {
	var out []mongo.IndexModel
	if spec.SortField != "" {
		out = append(out, mongo.IndexModel{
			Keys:    bson.D{{Key: spec.SortField, Value: -1}, {Key: "_id", Value: -1}},
			Options: options.Index().SetName(fmt.Sprintf("idx_%s_%s_desc", spec.Collection, spec.SortField)),
		})
	}
	if spec.StatusField != "" && spec.SortField != "" {
		out = append(out, mongo.IndexModel{
			Keys:    bson.D{{Key: spec.StatusField, Value: 1}, {Key: spec.SortField, Value: -1}},
			Options: options.Index().SetName(fmt.Sprintf("idx_%s_%s_%s", spec.Collection, spec.StatusField, spec.SortField)),
		})
	}
	return append(out, uniques[spec.Name]...)
}

/* -------------------------------------------------------------------------- */
/* Core helper: reconcile a set of desired indexes for one collection         */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func isUnique(b *bool) bool { return b != nil && *b }

func listIndexes(ctx context.Context, coll *mongo.Collection, logger *zap.Logger) map[string]existingIndex {
	existing := map[string]existingIndex{}
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return existing
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			logger.Warn("failed to decode existing index",
				zap.String("collection", coll.Name()), zap.Error(err))
			continue
		}
		existing[keySig(idx.Key)] = idx
	}
	return existing
}

// ensureIndexSet creates each desired index, reusing one with the same keys
// and options, and dropping and recreating one whose name or uniqueness
// differs.
func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel, logger *zap.Logger) error {
	var errs []string
	existing := listIndexes(ctx, coll, logger)

	for _, m := range models {
		name := *m.Options.Name
		unique := isUnique(m.Options.Unique)
		sig := keySig(m.Keys.(bson.D))
		start := time.Now()
		log := logger.With(
			zap.String("collection", coll.Name()),
			zap.String("name", name),
			zap.String("keys", sig),
			zap.Bool("unique", unique))

		if ex, ok := existing[sig]; ok {
			if ex.Name == name && isUnique(ex.Unique) == unique {
				log.Debug("reusing existing index")
				continue
			}
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				log.Warn("drop mismatched index failed", zap.String("existing", ex.Name), zap.Error(err))
				errs = append(errs, fmt.Sprintf("%s(%s): drop failed: %v", coll.Name(), name, err))
				continue
			}
		}

		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			if unique && mongo.IsDuplicateKeyError(err) {
				errs = append(errs, fmt.Sprintf("%s(%s): cannot create unique index (duplicates present on %s)", coll.Name(), name, sig))
				continue
			}
			log.Warn("index ensure failed", zap.Error(err))
			errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), name, err))
			continue
		}
		log.Info("index ensured", zap.Duration("took", time.Since(start)))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}
