package database

import (
	"fmt"
	"log/slog"

	"gorm.io/gorm"
)

// AddIndexes adds the composite indexes the struct tags do not declare.
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// membership checks and member listings
		{"project_members", "idx_project_members_project_user", "project_id, user_id"},
		{"project_members", "idx_project_members_user", "user_id"},

		// per-user task boards and task counts
		{"tasks", "idx_tasks_project_assignee", "project_id, assigned_to_id"},
	}

	for _, idx := range indexes {
		if db.Migrator().HasIndex(idx.table, idx.name) {
			slog.Debug("Index already exists, skipping", slog.String("index", idx.name))
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		slog.Info("Created index", slog.String("index", idx.name), slog.String("table", idx.table), slog.String("columns", idx.columns))
	}

	return nil
}
