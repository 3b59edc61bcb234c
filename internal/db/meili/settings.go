package meili

import (
	"context"
	"fmt"

	"github.com/meilisearch/meilisearch-go"

	"github.com/kailas-cloud/papersearch/internal/db"
	"github.com/kailas-cloud/papersearch/internal/domain"
)

// ApplySettings updates the index attribute settings and waits for the task to finish.
// Meilisearch creates the index on first settings update.
func (s *Store) ApplySettings(ctx context.Context, index string, settings domain.IndexSettings) error {
	if index == "" {
		return fmt.Errorf("index name is required")
	}

	info, err := s.client.Index(index).UpdateSettingsWithContext(ctx, &meilisearch.Settings{
		FilterableAttributes: nonNil(settings.Filterable),
		SortableAttributes:   nonNil(settings.Sortable),
		SearchableAttributes: nonNil(settings.Searchable),
	})
	if err != nil {
		return &db.Error{Op: db.OpMeiliSettings, Err: err}
	}

	task, err := s.client.WaitForTaskWithContext(ctx, info.TaskUID, s.pollInterval)
	if err != nil {
		return &db.Error{Op: db.OpMeiliTask, Err: err}
	}

	switch task.Status {
	case meilisearch.TaskStatusSucceeded:
		return nil
	case meilisearch.TaskStatusFailed:
		return &db.Error{Op: db.OpMeiliTask, Err: &TaskError{
			UID:     info.TaskUID,
			Code:    task.Error.Code,
			Message: task.Error.Message,
		}}
	default:
		return &db.Error{Op: db.OpMeiliTask, Err: fmt.Errorf("task %d ended %s", info.TaskUID, task.Status)}
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
