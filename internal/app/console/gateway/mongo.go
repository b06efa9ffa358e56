// internal/app/console/gateway/mongo.go
package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wanderhub/travelhub/internal/app/console/resource"
	recordstore "github.com/wanderhub/travelhub/internal/app/store/records"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Mongo implements Gateway over one MongoDB database, one collection per
// resource.
type Mongo struct {
	stores map[resource.Name]*recordstore.Store
}

// NewMongo builds a store for every registered resource.
func NewMongo(db *mongo.Database) *Mongo {
	m := &Mongo{stores: make(map[resource.Name]*recordstore.Store)}
	for _, spec := range resource.All() {
		m.stores[spec.Name] = recordstore.New(db, spec.Collection)
	}
	return m
}

func (m *Mongo) Fetch(ctx context.Context, name resource.Name) ([]Record, error) {
	spec, err := CheckFetch(name)
	if err != nil {
		return nil, err
	}
	docs, err := m.stores[name].FindAllSorted(ctx, spec.SortField)
	if err != nil {
		return nil, classify(name, OpFetch, "", err)
	}
	out := make([]Record, 0, len(docs))
	for _, d := range docs {
		out = append(out, toRecord(d))
	}
	return out, nil
}

func (m *Mongo) Create(ctx context.Context, name resource.Name, data Record) (Record, error) {
	if _, err := Check(name, resource.OpCreate, ""); err != nil {
		return nil, err
	}
	doc := bson.M{}
	for k, v := range data {
		if k == IDField || k == "_id" {
			continue
		}
		doc[k] = v
	}
	created, err := m.stores[name].Create(ctx, doc)
	if err != nil {
		return nil, classify(name, resource.OpCreate, "", err)
	}
	return toRecord(created), nil
}

func (m *Mongo) Update(ctx context.Context, name resource.Name, id string, patch Patch) (Record, error) {
	spec, err := Check(name, resource.OpUpdate, id)
	if err != nil {
		return nil, err
	}
	if err := CheckPatch(spec, id, patch); err != nil {
		return nil, err
	}
	oid, err := parseID(name, resource.OpUpdate, id)
	if err != nil {
		return nil, err
	}
	updated, err := m.stores[name].Update(ctx, oid, bson.M(patch))
	if err != nil {
		return nil, classify(name, resource.OpUpdate, id, err)
	}
	return toRecord(updated), nil
}

func (m *Mongo) Delete(ctx context.Context, name resource.Name, id string) error {
	if _, err := Check(name, resource.OpDelete, id); err != nil {
		return err
	}
	oid, err := parseID(name, resource.OpDelete, id)
	if err != nil {
		return err
	}
	if err := m.stores[name].Delete(ctx, oid); err != nil {
		return classify(name, resource.OpDelete, id, err)
	}
	return nil
}

func (m *Mongo) Transition(ctx context.Context, name resource.Name, id, status string) (Record, error) {
	spec, err := Check(name, resource.OpTransition, id)
	if err != nil {
		return nil, err
	}
	if err := CheckStatus(spec, id, status); err != nil {
		return nil, err
	}
	oid, err := parseID(name, resource.OpTransition, id)
	if err != nil {
		return nil, err
	}
	updated, err := m.stores[name].Update(ctx, oid, bson.M{spec.StatusField: status})
	if err != nil {
		return nil, classify(name, resource.OpTransition, id, err)
	}
	return toRecord(updated), nil
}

func parseID(name resource.Name, op resource.Op, id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return primitive.NilObjectID, newError(KindValidation, name, op, id, fmt.Errorf("bad id"))
	}
	return oid, nil
}

// classify maps driver and store errors onto gateway kinds.
func classify(name resource.Name, op resource.Op, id string, err error) error {
	var ce mongo.CommandError
	switch {
	case errors.Is(err, recordstore.ErrNotFound), errors.Is(err, mongo.ErrNoDocuments):
		return newError(KindNotFound, name, op, id, err)
	case errors.Is(err, recordstore.ErrDuplicate):
		return newError(KindValidation, name, op, id, err)
	case errors.As(err, &ce) && (ce.Code == 13 || ce.Code == 18):
		// 13 Unauthorized, 18 AuthenticationFailed
		return newError(KindPermission, name, op, id, err)
	case mongo.IsNetworkError(err), mongo.IsTimeout(err),
		errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return newError(KindNetwork, name, op, id, err)
	case errors.As(err, new(mongo.WriteException)):
		return newError(KindValidation, name, op, id, err)
	}
	return newError(KindNetwork, name, op, id, err)
}

// toRecord flattens a driver document into a console Record: "_id"
// becomes the hex "id" and BSON wrapper types become plain Go values.
func toRecord(doc bson.M) Record {
	r := make(Record, len(doc))
	for k, v := range doc {
		if k == "_id" {
			r[IDField] = plain(v)
			continue
		}
		r[k] = plain(v)
	}
	if id, ok := r[IDField].(string); !ok || id == "" {
		r[IDField] = fmt.Sprint(doc["_id"])
	}
	return r
}

func plain(v any) any {
	switch t := v.(type) {
	case primitive.ObjectID:
		return t.Hex()
	case primitive.DateTime:
		return t.Time().UTC()
	case time.Time:
		return t.UTC()
	case bson.M:
		m := make(map[string]any, len(t))
		for k, vv := range t {
			m[k] = plain(vv)
		}
		return m
	case bson.D:
		m := make(map[string]any, len(t))
		for _, e := range t {
			m[e.Key] = plain(e.Value)
		}
		return m
	case bson.A:
		a := make([]any, len(t))
		for i, vv := range t {
			a[i] = plain(vv)
		}
		return a
	default:
		return v
	}
}
