package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type testDoc struct {
	ID      primitive.ObjectID   `bson:"_id,omitempty"`
	Name    string               `bson:"name"`
	Tags    []primitive.ObjectID `bson:"tags"`
	Items   []testItem           `bson:"items"`
	Created time.Time            `bson:"created_at"`
}

type testItem struct {
	ID   primitive.ObjectID `bson:"_id"`
	Body string             `bson:"body"`
}

func insertDoc(t *testing.T, s *MemoryStore, doc testDoc) testDoc {
	t.Helper()
	if doc.ID.IsZero() {
		doc.ID = primitive.NewObjectID()
	}
	require.NoError(t, s.Insert(context.Background(), "docs", doc))
	return doc
}

func TestMemoryStoreGetAndDelete(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	doc := insertDoc(t, s, testDoc{Name: "first"})

	var got testDoc
	require.NoError(t, s.Get(ctx, "docs", doc.ID.Hex(), &got))
	assert.Equal(t, "first", got.Name)
	assert.Equal(t, doc.ID, got.ID)

	assert.Equal(t, ErrNoDocument, s.Get(ctx, "docs", primitive.NewObjectID().Hex(), &got))

	require.NoError(t, s.DeleteByID(ctx, "docs", doc.ID.Hex()))
	assert.Equal(t, ErrNoDocument, s.DeleteByID(ctx, "docs", doc.ID.Hex()))
	assert.Equal(t, ErrNoDocument, s.Get(ctx, "docs", doc.ID.Hex(), &got))
}

func TestMemoryStoreArrayOps(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	doc := insertDoc(t, s, testDoc{Name: "arrays", Tags: []primitive.ObjectID{}})
	tag := primitive.NewObjectID()

	// AddToSet twice stores the value exactly once.
	for i := 0; i < 2; i++ {
		require.NoError(t, s.UpdateByID(ctx, "docs", doc.ID.Hex(), Update{
			AddToSet: map[string]interface{}{"tags": tag},
		}))
	}
	var got testDoc
	require.NoError(t, s.Get(ctx, "docs", doc.ID.Hex(), &got))
	assert.Equal(t, []primitive.ObjectID{tag}, got.Tags)

	// Push appends unconditionally.
	require.NoError(t, s.UpdateByID(ctx, "docs", doc.ID.Hex(), Update{
		Push: map[string]interface{}{"tags": tag},
	}))
	require.NoError(t, s.Get(ctx, "docs", doc.ID.Hex(), &got))
	assert.Len(t, got.Tags, 2)

	// Pull removes every matching element; pulling again is a no-op.
	for i := 0; i < 2; i++ {
		require.NoError(t, s.UpdateByID(ctx, "docs", doc.ID.Hex(), Update{
			Pull: map[string]interface{}{"tags": tag},
		}))
	}
	require.NoError(t, s.Get(ctx, "docs", doc.ID.Hex(), &got))
	assert.Empty(t, got.Tags)

	assert.Equal(t, ErrNoDocument, s.UpdateByID(ctx, "docs", primitive.NewObjectID().Hex(), Update{
		Push: map[string]interface{}{"tags": tag},
	}))
}

func TestMemoryStorePullEmbeddedByField(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	keep := testItem{ID: primitive.NewObjectID(), Body: "keep"}
	drop := testItem{ID: primitive.NewObjectID(), Body: "drop"}
	doc := insertDoc(t, s, testDoc{Name: "embedded", Items: []testItem{keep, drop}})

	require.NoError(t, s.UpdateByID(ctx, "docs", doc.ID.Hex(), Update{
		Pull: map[string]interface{}{
			"items": map[string]interface{}{"_id": drop.ID},
		},
	}))

	var got testDoc
	require.NoError(t, s.Get(ctx, "docs", doc.ID.Hex(), &got))
	require.Len(t, got.Items, 1)
	assert.Equal(t, keep.ID, got.Items[0].ID)
}

func TestMemoryStoreConcurrentReadsOnEmptyCollection(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	// Reads against a collection nothing has written to yet must not mutate
	// shared state; run them concurrently so the race detector can tell.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var got testDoc
			assert.Equal(t, ErrNoDocument, s.Get(ctx, "untouched", primitive.NewObjectID().Hex(), &got))

			var all []testDoc
			assert.NoError(t, s.Find(ctx, "untouched", Query{}, nil, &all))
			assert.Empty(t, all)
		}()
	}
	wg.Wait()

	// Writers still create the collection on first insert.
	doc := insertDoc(t, s, testDoc{Name: "first"})
	var got testDoc
	require.NoError(t, s.Get(ctx, "docs", doc.ID.Hex(), &got))
}

func TestMemoryStoreFind(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	shared := primitive.NewObjectID()
	a := insertDoc(t, s, testDoc{Name: "bravo", Tags: []primitive.ObjectID{shared}, Created: time.Now().Add(-time.Hour)})
	b := insertDoc(t, s, testDoc{Name: "alpha", Tags: []primitive.ObjectID{shared}, Created: time.Now()})
	insertDoc(t, s, testDoc{Name: "charlie", Tags: []primitive.ObjectID{}, Created: time.Now().Add(-2 * time.Hour)})

	// Contains matches documents whose array holds the value.
	var withTag []testDoc
	require.NoError(t, s.Find(ctx, "docs", Query{
		Contains: map[string]interface{}{"tags": shared},
	}, nil, &withTag))
	assert.Len(t, withTag, 2)

	// Eq filters on field equality.
	var named []testDoc
	require.NoError(t, s.Find(ctx, "docs", Query{
		Eq: map[string]interface{}{"name": "alpha"},
	}, nil, &named))
	require.Len(t, named, 1)
	assert.Equal(t, b.ID, named[0].ID)

	// Ascending string sort.
	var sorted []testDoc
	require.NoError(t, s.Find(ctx, "docs", Query{}, &Sort{Field: "name"}, &sorted))
	require.Len(t, sorted, 3)
	assert.Equal(t, "alpha", sorted[0].Name)
	assert.Equal(t, "charlie", sorted[2].Name)

	// Descending timestamp sort.
	var newest []testDoc
	require.NoError(t, s.Find(ctx, "docs", Query{
		Contains: map[string]interface{}{"tags": shared},
	}, &Sort{Field: "created_at", Desc: true}, &newest))
	require.Len(t, newest, 2)
	assert.Equal(t, b.ID, newest[0].ID)
	assert.Equal(t, a.ID, newest[1].ID)
}
