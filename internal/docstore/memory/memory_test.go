package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/matt-dz/recetario/internal/docstore"
)

type doc struct {
	ID       string `json:"id"`
	RecipeID string `json:"recipe_id"`
	Score    int    `json:"score"`
}

func TestStoreCRUD(t *testing.T) {
	ctx := context.Background()
	ratings := docstore.NewCollection[doc](New(), docstore.Ratings)

	for _, d := range []doc{
		{ID: "a", RecipeID: "r1", Score: 4},
		{ID: "b", RecipeID: "r2", Score: 5},
		{ID: "c", RecipeID: "r1", Score: 3},
	} {
		if err := ratings.Create(ctx, d.ID, d); err != nil {
			t.Fatalf("create %s: %v", d.ID, err)
		}
	}

	if err := ratings.Create(ctx, "a", doc{ID: "a"}); !errors.Is(err, docstore.ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}

	got, err := ratings.Get(ctx, "b")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Score != 5 {
		t.Errorf("expected score 5, got %d", got.Score)
	}

	if _, err := ratings.Get(ctx, "zzz"); !errors.Is(err, docstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	all, err := ratings.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 || all[0].ID != "a" || all[1].ID != "b" || all[2].ID != "c" {
		t.Errorf("expected insertion order a,b,c, got %+v", all)
	}

	matches, err := ratings.Query(ctx, "recipe_id", "r1")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(matches) != 2 || matches[0].ID != "a" || matches[1].ID != "c" {
		t.Errorf("unexpected query result %+v", matches)
	}

	byScore, err := ratings.Query(ctx, "score", 5)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(byScore) != 1 || byScore[0].ID != "b" {
		t.Errorf("unexpected numeric query result %+v", byScore)
	}

	if err := ratings.Update(ctx, "c", doc{ID: "c", RecipeID: "r1", Score: 1}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := ratings.Update(ctx, "zzz", doc{}); !errors.Is(err, docstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound on update, got %v", err)
	}

	if err := ratings.Delete(ctx, "a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := ratings.Delete(ctx, "a"); err != nil {
		t.Errorf("deleting a missing document should succeed, got %v", err)
	}

	all, _ = ratings.List(ctx)
	if len(all) != 2 || all[0].ID != "b" || all[1].Score != 1 {
		t.Errorf("unexpected state after update/delete %+v", all)
	}
}

func TestStoreEmptyCollection(t *testing.T) {
	s := New()
	docs, err := s.List(context.Background(), docstore.Recipes)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if docs == nil || len(docs) != 0 {
		t.Errorf("expected empty non-nil list, got %v", docs)
	}
}

func TestStoreConcurrentCreates(t *testing.T) {
	s := New()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := string(rune('A' + i))
			_ = s.Create(ctx, docstore.Recipes, id, []byte(`{}`))
		}(i)
	}
	wg.Wait()

	docs, _ := s.List(ctx, docstore.Recipes)
	if len(docs) != 50 {
		t.Errorf("expected 50 documents, got %d", len(docs))
	}
}
