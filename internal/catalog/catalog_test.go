package catalog

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTest(t *testing.T) *Catalog {
	t.Helper()
	c, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func sampleRun(id string, started time.Time) Run {
	return Run{
		ID:           id,
		Source:       "/in/" + id + ".ply",
		Name:         id,
		OutputDir:    "/out",
		Layout:       "color=sh-dc opacity=logit scale=log3",
		Status:       StatusOK,
		Decoded:      100,
		Selected:     50,
		Lines:        45,
		Skipped:      5,
		MaxParticles: 50,
		TargetSize:   10,
		MinOpacity:   0.1,
		StartedAt:    started,
		Duration:     1500 * time.Millisecond,
	}
}

func TestOpen_AppliesMigrations(t *testing.T) {
	c := openTest(t)
	v, dirty, err := c.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(1), v)
	assert.False(t, dirty)
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	ctx := context.Background()
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	c, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, c.RecordRun(ctx, sampleRun("a", base)))
	require.NoError(t, c.Close())

	c, err = Open(path)
	require.NoError(t, err)
	defer c.Close()
	runs, err := c.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "a", runs[0].ID)
}

func TestRecordRun_RoundTrip(t *testing.T) {
	c := openTest(t)
	ctx := context.Background()
	want := sampleRun("garden", time.Date(2026, 5, 1, 9, 0, 0, 123456789, time.UTC))

	require.NoError(t, c.RecordRun(ctx, want))
	runs, err := c.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, want, runs[0])
}

func TestRecordRun_ReplacesSameID(t *testing.T) {
	c := openTest(t)
	ctx := context.Background()
	r := sampleRun("x", time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC))
	require.NoError(t, c.RecordRun(ctx, r))
	r.Status, r.Error = StatusFailed, "boom"
	require.NoError(t, c.RecordRun(ctx, r))

	runs, err := c.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, StatusFailed, runs[0].Status)
	assert.Equal(t, "boom", runs[0].Error)
}

func TestRecordRun_RequiresID(t *testing.T) {
	c := openTest(t)
	assert.Error(t, c.RecordRun(context.Background(), Run{}))
}

func TestListRuns_NewestFirstAndLimit(t *testing.T) {
	c := openTest(t)
	ctx := context.Background()
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, c.RecordRun(ctx, sampleRun("first", base)))
	require.NoError(t, c.RecordRun(ctx, sampleRun("third", base.Add(time.Second))))
	require.NoError(t, c.RecordRun(ctx, sampleRun("second", base.Add(500*time.Millisecond))))

	runs, err := c.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "third", runs[0].ID)
	assert.Equal(t, "second", runs[1].ID)
}

func TestRecordRun_Concurrent(t *testing.T) {
	c := openTest(t)
	ctx := context.Background()
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- c.RecordRun(ctx, sampleRun(fmt.Sprintf("run-%d", i), base.Add(time.Duration(i)*time.Second)))
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
	runs, err := c.ListRuns(ctx, 100)
	require.NoError(t, err)
	assert.Len(t, runs, 8)
}

func TestSetLogWriter(t *testing.T) {
	var buf bytes.Buffer
	SetLogWriter(&buf)
	t.Cleanup(func() { SetLogWriter(nil) })

	(&migrateLogger{}).Printf("applied %d", 1)
	assert.Contains(t, buf.String(), "[migrate] applied 1")
}
