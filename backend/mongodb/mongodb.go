// Package mongodb stores tables as MongoDB collections, one document per row.
package mongodb

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/shoothzj/table-facade/core"
	"github.com/shoothzj/table-facade/dialect"
)

// Cursor is the subset of *mongo.Cursor the backend reads from.
type Cursor interface {
	Next(ctx context.Context) bool
	Decode(v any) error
	Err() error
	Close(ctx context.Context) error
}

// Collection is the subset of collection operations the backend uses.
type Collection interface {
	InsertOne(ctx context.Context, doc bson.D) error
	Find(ctx context.Context, projection bson.D) (Cursor, error)
	DeleteMany(ctx context.Context) (int64, error)
}

// Backend executes statements against the collections of one database.
type Backend struct {
	collection func(name string) Collection
	disconnect func(ctx context.Context) error
	dialect    dialect.Dialect
}

// NewBackend creates a backend over db.
func NewBackend(db *mongo.Database) *Backend {
	return NewBackendFunc(func(name string) Collection {
		return &collection{coll: db.Collection(name)}
	}, db.Client().Disconnect)
}

// NewBackendFunc creates a backend that resolves collections through fn.
// disconnect may be nil.
func NewBackendFunc(fn func(name string) Collection, disconnect func(ctx context.Context) error) *Backend {
	d, _ := dialect.Get("mongodb")
	return &Backend{collection: fn, disconnect: disconnect, dialect: d}
}

// Open connects to uri, pings the primary and returns a DB over database.
func Open(ctx context.Context, uri, database string, opts *core.Options) (*core.DB, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		client.Disconnect(ctx)
		return nil, err
	}
	return core.New(NewBackend(client.Database(database)), opts), nil
}

func (b *Backend) Dialect() dialect.Dialect {
	return b.dialect
}

func (b *Backend) Exec(ctx context.Context, stmt *core.Statement) (int64, error) {
	switch stmt.Op {
	case core.OpInsert:
		doc := make(bson.D, 0, len(stmt.Params))
		for _, p := range stmt.Params {
			doc = append(doc, bson.E{Key: p.Name, Value: p.Value})
		}
		if err := b.collection(stmt.Table).InsertOne(ctx, doc); err != nil {
			return 0, fmt.Errorf("mongodb: insert %s: %w", stmt.Table, err)
		}
		return 1, nil

	case core.OpDelete:
		n, err := b.collection(stmt.Table).DeleteMany(ctx)
		if err != nil {
			return 0, fmt.Errorf("mongodb: delete %s: %w", stmt.Table, err)
		}
		return n, nil
	}
	return 0, fmt.Errorf("mongodb: %w: %s", core.ErrUnsupportedStatement, stmt.Op)
}

func (b *Backend) Query(ctx context.Context, stmt *core.Statement) (core.Rows, error) {
	if stmt.Op != core.OpSelect {
		return nil, fmt.Errorf("mongodb: %w: %s", core.ErrUnsupportedStatement, stmt.Op)
	}
	projection := bson.D{{Key: "_id", Value: 0}}
	for _, c := range stmt.Columns {
		// a column named _id keeps the document key
		if c == "_id" {
			projection = projection[1:]
			continue
		}
		projection = append(projection, bson.E{Key: c, Value: 1})
	}
	cur, err := b.collection(stmt.Table).Find(ctx, projection)
	if err != nil {
		return nil, fmt.Errorf("mongodb: select %s: %w", stmt.Table, err)
	}
	return &rows{ctx: ctx, table: stmt.Table, cur: cur}, nil
}

func (b *Backend) Close() error {
	if b.disconnect == nil {
		return nil
	}
	return b.disconnect(context.Background())
}

type collection struct {
	coll *mongo.Collection
}

func (c *collection) InsertOne(ctx context.Context, doc bson.D) error {
	_, err := c.coll.InsertOne(ctx, doc)
	return err
}

func (c *collection) Find(ctx context.Context, projection bson.D) (Cursor, error) {
	return c.coll.Find(ctx, bson.D{}, options.Find().SetProjection(projection))
}

func (c *collection) DeleteMany(ctx context.Context) (int64, error) {
	res, err := c.coll.DeleteMany(ctx, bson.D{})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

type rows struct {
	ctx     context.Context
	table   string
	cur     Cursor
	current bson.M
	err     error
}

func (r *rows) Next() bool {
	if r.err != nil || !r.cur.Next(r.ctx) {
		return false
	}
	r.current = nil
	if err := r.cur.Decode(&r.current); err != nil {
		r.err = fmt.Errorf("mongodb: decode %s document: %w", r.table, err)
		return false
	}
	return true
}

// Get converts the field into typ. Absent fields yield the zero value.
func (r *rows) Get(column string, typ reflect.Type) (any, error) {
	return core.Coerce(normalize(r.current[column]), typ)
}

func (r *rows) Err() error {
	if r.err != nil {
		return r.err
	}
	return r.cur.Err()
}

func (r *rows) Close() error {
	return r.cur.Close(context.WithoutCancel(r.ctx))
}

// normalize unwraps BSON-specific values into plain Go values.
func normalize(v any) any {
	switch x := v.(type) {
	case primitive.Binary:
		return x.Data
	case primitive.DateTime:
		return x.Time().UTC()
	case primitive.Timestamp:
		return time.Unix(int64(x.T), 0).UTC()
	case primitive.ObjectID:
		return x.Hex()
	case primitive.Decimal128:
		return x.String()
	case primitive.Null, primitive.Undefined:
		return nil
	}
	return v
}
