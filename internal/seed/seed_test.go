package seed

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/yigit/unistud/internal/app/repositories"
	"github.com/yigit/unistud/internal/app/repositories/sqlite"
	"github.com/yigit/unistud/internal/db"
)

func TestCreateDefaultDataIsIdempotent(t *testing.T) {
	ctx := context.Background()
	handle, err := db.OpenSQLite(ctx, filepath.Join(t.TempDir(), "seed.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = handle.Close() })
	if err := sqlite.EnsureSchema(ctx, handle); err != nil {
		t.Fatalf("schema: %v", err)
	}
	repos := sqlite.NewRepositories(handle)

	for i := 0; i < 2; i++ {
		if err := CreateDefaultData(ctx, repos.Courses, zerolog.Nop()); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}

	courses, total, err := repos.Courses.List(ctx, repositories.ListParams{Limit: 10, SortBy: "title"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != int64(len(DefaultCourses)) {
		t.Fatalf("expected %d courses, got %d", len(DefaultCourses), total)
	}

	capacities := map[string]int{}
	for _, c := range courses {
		capacities[c.Title] = c.MaxCapacity
	}
	if capacities["Algorithms"] != 2 || capacities["Databases"] != 30 || capacities["Open Seminar"] != 0 {
		t.Fatalf("unexpected capacities: %v", capacities)
	}
}
