package catalog

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// setupTestDB creates an in-memory SQLite database with the lines table.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	schema := `
		CREATE TABLE lines (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			pin TEXT NOT NULL UNIQUE,
			default_on INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		) STRICT;
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		t.Fatalf("failed to create test schema: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})
	return db
}

func testDefinition(name, pin string) *LineDefinition {
	return &LineDefinition{
		ID:   NewID(),
		Name: name,
		Pin:  pin,
	}
}

func TestRepository_CreateAndGet(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	ctx := context.Background()

	def := testDefinition("Garage Relay", "GPIO17")
	def.DefaultOn = true

	if err := repo.Create(ctx, def); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := repo.GetByID(ctx, def.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Name != "Garage Relay" || got.Pin != "GPIO17" || !got.DefaultOn {
		t.Errorf("GetByID() = %+v, want the created definition", got)
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Error("timestamps not set on create")
	}
}

func TestRepository_GetMissing(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))

	_, err := repo.GetByID(context.Background(), "no-such-id")
	if !errors.Is(err, ErrLineNotFound) {
		t.Fatalf("GetByID() error = %v, want ErrLineNotFound", err)
	}
}

func TestRepository_DuplicateID(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	ctx := context.Background()

	def := testDefinition("First", "GPIO17")
	if err := repo.Create(ctx, def); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	dup := testDefinition("Second", "GPIO18")
	dup.ID = def.ID
	if err := repo.Create(ctx, dup); !errors.Is(err, ErrLineExists) {
		t.Fatalf("Create() duplicate id error = %v, want ErrLineExists", err)
	}
}

func TestRepository_DuplicatePin(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	ctx := context.Background()

	if err := repo.Create(ctx, testDefinition("First", "GPIO17")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	err := repo.Create(ctx, testDefinition("Second", "GPIO17"))
	if !errors.Is(err, ErrPinInUse) {
		t.Fatalf("Create() duplicate pin error = %v, want ErrPinInUse", err)
	}
}

func TestRepository_ListOrdered(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	ctx := context.Background()

	for _, spec := range []struct{ name, pin string }{
		{"Charlie", "GPIO3"},
		{"Alpha", "GPIO1"},
		{"Bravo", "GPIO2"},
	} {
		if err := repo.Create(ctx, testDefinition(spec.name, spec.pin)); err != nil {
			t.Fatalf("Create(%s) error = %v", spec.name, err)
		}
	}

	defs, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	want := []string{"Alpha", "Bravo", "Charlie"}
	if len(defs) != len(want) {
		t.Fatalf("List() returned %d definitions, want %d", len(defs), len(want))
	}
	for i, def := range defs {
		if def.Name != want[i] {
			t.Errorf("List()[%d].Name = %q, want %q", i, def.Name, want[i])
		}
	}
}

func TestRepository_Delete(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	ctx := context.Background()

	def := testDefinition("Garage Relay", "GPIO17")
	if err := repo.Create(ctx, def); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := repo.Delete(ctx, def.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := repo.Delete(ctx, def.ID); !errors.Is(err, ErrLineNotFound) {
		t.Fatalf("second Delete() error = %v, want ErrLineNotFound", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		def     *LineDefinition
		wantErr bool
	}{
		{name: "valid", def: &LineDefinition{Name: "Relay", Pin: "GPIO17"}},
		{name: "numeric pin", def: &LineDefinition{Name: "Relay", Pin: "17"}},
		{name: "nil", def: nil, wantErr: true},
		{name: "missing name", def: &LineDefinition{Pin: "GPIO17"}, wantErr: true},
		{name: "missing pin", def: &LineDefinition{Name: "Relay"}, wantErr: true},
		{name: "pin with slash", def: &LineDefinition{Name: "Relay", Pin: "gpio/17"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.def)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidLine) {
					t.Errorf("Validate() error = %v, want ErrInvalidLine", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Validate() error = %v, want nil", err)
			}
		})
	}
}
