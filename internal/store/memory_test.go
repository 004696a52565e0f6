package store

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestMemory_FindOrCreate_CreatesOnce(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	u1, created, err := s.FindOrCreate(ctx, User{Key: "a@b.com", Email: "a@b.com", FirstName: "A"})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if !created {
		t.Fatal("primera llamada debería crear")
	}
	if u1.ID == "" || u1.CreatedAt.IsZero() {
		t.Fatalf("registro incompleto: %+v", u1)
	}

	u2, created, err := s.FindOrCreate(ctx, User{Key: "a@b.com", Email: "a@b.com", FirstName: "Otro"})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if created {
		t.Fatal("segunda llamada no debería crear")
	}
	if u2.ID != u1.ID || u2.FirstName != "A" {
		t.Fatalf("debería devolver el registro existente intacto: %+v", u2)
	}
}

func TestMemory_FindOrCreate_ConcurrentSingleWinner(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	const n = 32
	var wg sync.WaitGroup
	createdCount := make(chan bool, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, created, err := s.FindOrCreate(ctx, User{Key: "race@b.com", Email: "race@b.com"})
			if err != nil {
				t.Errorf("err: %v", err)
				return
			}
			createdCount <- created
		}()
	}
	wg.Wait()
	close(createdCount)

	wins := 0
	for c := range createdCount {
		if c {
			wins++
		}
	}
	if wins != 1 {
		t.Fatalf("esperaba exactamente 1 creación, hubo %d", wins)
	}
}

func TestMemory_Update_PatchesOnlyGivenFields(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	if _, _, err := s.FindOrCreate(ctx, User{Key: "k", Email: "k", FirstName: "A", LastName: "B"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Update(ctx, "k", map[string]string{FieldLastName: "C"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	u, _, _ := s.FindOrCreate(ctx, User{Key: "k"})
	if u.FirstName != "A" || u.LastName != "C" {
		t.Fatalf("patch incorrecto: %+v", u)
	}
}

func TestMemory_Update_Errors(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	if err := s.Update(ctx, "nadie", map[string]string{FieldFirstName: "X"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("esperaba ErrNotFound, got %v", err)
	}
	if _, _, err := s.FindOrCreate(ctx, User{Key: "k"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Update(ctx, "k", map[string]string{"email": "x"}); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("esperaba ErrUnknownField, got %v", err)
	}
	// mapa vacío es no-op
	if err := s.Update(ctx, "k", nil); err != nil {
		t.Fatalf("no-op falló: %v", err)
	}
}
