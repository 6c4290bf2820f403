package seed

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Joseda-hg/mindtask/internal/db"
	"github.com/Joseda-hg/mindtask/internal/query"
	"github.com/Joseda-hg/mindtask/internal/records"
)

func TestLoadSeedsEmptyStoreOnce(t *testing.T) {
	conn, err := db.Open(":memory:")
	require.NoError(t, err)
	defer conn.Close()
	store := db.NewStore(conn)

	now := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	ctx := context.Background()

	seeded, err := Load(ctx, store, now, zap.NewNop())
	require.NoError(t, err)
	assert.True(t, seeded)

	notes, err := store.ListNotes(ctx)
	require.NoError(t, err)
	assert.Len(t, notes, len(Notes()))

	tasks, err := store.ListTasks(ctx)
	require.NoError(t, err)
	assert.Len(t, tasks, len(Tasks()))

	seeded, err = Load(ctx, store, now, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, seeded)

	tasks, err = store.ListTasks(ctx)
	require.NoError(t, err)
	assert.Len(t, tasks, len(Tasks()))
}

func TestSeedDatesLandInBuckets(t *testing.T) {
	conn, err := db.Open(":memory:")
	require.NoError(t, err)
	defer conn.Close()
	store := db.NewStore(conn)

	now := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	ctx := context.Background()
	_, err = Load(ctx, store, now, zap.NewNop())
	require.NoError(t, err)

	tasks, err := store.ListTasks(ctx)
	require.NoError(t, err)
	taskResult := records.Tasks().Run(tasks, query.Spec{Now: now})
	assert.Equal(t, 1, taskResult.Count(records.TaskDue, query.BucketOverdue))
	assert.Equal(t, 1, taskResult.Count(records.TaskDue, query.BucketToday))
	assert.Equal(t, 1, taskResult.Count(records.TaskDue, query.BucketTomorrow))
	assert.Equal(t, 1, taskResult.Count(records.TaskDue, query.BucketNoDate))

	notes, err := store.ListNotes(ctx)
	require.NoError(t, err)
	noteResult := records.Notes().Run(notes, query.Spec{Now: now})
	assert.Equal(t, 1, noteResult.Count(records.NoteCreated, query.BucketToday))
	assert.Equal(t, 4, noteResult.Count(records.NoteBookmarked, "true"))
	assert.Equal(t, "Morning Reflection", noteResult.Records[0].Title)
}
