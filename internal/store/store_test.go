package store

import (
	"context"
	"errors"
	"testing"
)

func TestPutGetRoundTrip(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	doc := Document{ID: "alice", Data: map[string]any{"wallet": "0xaa", "points": 42}}
	if err := s.Put(ctx, CollectionSubmissions, doc); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := s.Get(ctx, CollectionSubmissions, "alice")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Data["wallet"] != "0xaa" || got.Data["points"] != 42 {
		t.Errorf("data = %v", got.Data)
	}
	if got.UpdatedAt.IsZero() {
		t.Error("updated timestamp not set")
	}
}

func TestGetMissing(t *testing.T) {
	s := NewMemory()
	if _, err := s.Get(context.Background(), CollectionTasks, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestPutRequiresID(t *testing.T) {
	s := NewMemory()
	if err := s.Put(context.Background(), CollectionConfig, Document{}); err == nil {
		t.Error("empty id accepted")
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	if err := s.Put(ctx, CollectionTasks, Document{ID: "t1", Data: map[string]any{"done": false}}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.Delete(ctx, CollectionTasks, "t1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.Delete(ctx, CollectionTasks, "t1"); err != nil {
		t.Errorf("second delete: %v", err)
	}
	if _, err := s.Get(ctx, CollectionTasks, "t1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("deleted document still readable: %v", err)
	}
}

func TestListOrdersByID(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	for _, id := range []string{"c", "a", "b"} {
		if err := s.Put(ctx, CollectionSubmissions, Document{ID: id, Data: map[string]any{}}); err != nil {
			t.Fatalf("put %s: %v", id, err)
		}
	}

	docs, err := s.List(ctx, CollectionSubmissions)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(docs) != 3 || docs[0].ID != "a" || docs[1].ID != "b" || docs[2].ID != "c" {
		t.Errorf("order = %v", docs)
	}
}

func TestCallerCannotMutateStoredData(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	data := map[string]any{"k": "v"}
	if err := s.Put(ctx, CollectionConfig, Document{ID: "cfg", Data: data}); err != nil {
		t.Fatalf("put: %v", err)
	}
	data["k"] = "mutated"

	got, err := s.Get(ctx, CollectionConfig, "cfg")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Data["k"] != "v" {
		t.Errorf("stored copy mutated through caller map: %v", got.Data)
	}
	got.Data["k"] = "also mutated"

	again, _ := s.Get(ctx, CollectionConfig, "cfg")
	if again.Data["k"] != "v" {
		t.Errorf("stored copy mutated through returned map: %v", again.Data)
	}
}
