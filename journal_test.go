package domtimeline_test

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	zapobserver "go.uber.org/zap/zaptest/observer"

	"github.com/kode4food/domtimeline"
	"github.com/kode4food/domtimeline/htmltree"
)

type (
	recordingExecer struct {
		sql  []string
		args [][]any
		err  error
	}

	failingJournal struct {
		err error
	}
)

func (r *recordingExecer) Exec(
	_ context.Context, sql string, args ...any,
) (pgconn.CommandTag, error) {
	r.sql = append(r.sql, sql)
	r.args = append(r.args, args)
	return pgconn.NewCommandTag("INSERT 0 1"), r.err
}

func (j *failingJournal) Append(context.Context, *domtimeline.JournalRecord) error {
	return j.err
}

func (j *failingJournal) Close() error {
	return nil
}

// journalScenario commits a claimed change, undoes it, and makes an edit
// that gets canceled
func journalScenario(t *testing.T, j domtimeline.Journal) {
	t.Helper()
	obs := domtimeline.NewJournalObserver[Node](
		j, htmltree.NodeName, time.Second, nil,
	)
	h, doc := newHistory(t, domtimeline.WithObserver[Node](obs))
	box := find(t, doc, "box")

	require.NoError(t, h.Claim("rename", func() error {
		return doc.SetAttribute(box, "class", str("b"))
	}))
	require.NoError(t, h.Undo())
	require.NoError(t, doc.AppendChild(box, htmltree.NewElement("hr")))
	require.NoError(t, h.Flush())
}

func assertJournalRecords(t *testing.T, recs []*domtimeline.JournalRecord) {
	t.Helper()
	require.Len(t, recs, 3)

	assert.Equal(t, domtimeline.Committed, recs[0].Decision)
	assert.Equal(t, "rename", recs[0].Label)
	assert.NotEmpty(t, recs[0].Stack)
	require.Len(t, recs[0].Events, 1)
	ev := recs[0].Events[0]
	assert.Equal(t, "attributes", ev.Kind)
	assert.Equal(t, "div#box", ev.Target)
	assert.Equal(t, "class", ev.Attribute)
	require.NotNil(t, ev.OldValue)
	require.NotNil(t, ev.NewValue)
	assert.Equal(t, "a", *ev.OldValue)
	assert.Equal(t, "b", *ev.NewValue)

	assert.Equal(t, domtimeline.Undone, recs[1].Decision)

	assert.Equal(t, domtimeline.Lost, recs[2].Decision)
	assert.Equal(t, domtimeline.Unclaimed, recs[2].Label)
	require.Len(t, recs[2].Events, 1)
	lost := recs[2].Events[0]
	assert.Equal(t, "childList", lost.Kind)
	assert.Equal(t, []string{"hr"}, lost.Added)
	assert.Nil(t, lost.OldValue)

	for _, rec := range recs {
		assert.NotEmpty(t, rec.ID)
		assert.False(t, rec.Timestamp.IsZero())
	}
}

func TestRedisJournal(t *testing.T) {
	server, err := miniredis.Run()
	assert.NoError(t, err)
	defer server.Close()

	cfg := domtimeline.DefaultJournalConfig()
	cfg.Addr = server.Addr()
	cfg.Stream = "test:journal"

	ctx := context.Background()
	j, err := domtimeline.NewRedisJournal(ctx, cfg)
	require.NoError(t, err)
	defer func() { _ = j.Close() }()

	journalScenario(t, j)

	recs, err := j.Records(ctx)
	assert.NoError(t, err)
	assertJournalRecords(t, recs)
	assert.True(t, server.Exists("test:journal"))
}

func TestRedisJournalMalformed(t *testing.T) {
	server, err := miniredis.Run()
	assert.NoError(t, err)
	defer server.Close()

	cfg := domtimeline.DefaultJournalConfig()
	cfg.Addr = server.Addr()

	ctx := context.Background()
	j, err := domtimeline.NewRedisJournal(ctx, cfg)
	require.NoError(t, err)
	defer func() { _ = j.Close() }()

	_, err = server.XAdd(cfg.Stream, "*", []string{"other", "value"})
	require.NoError(t, err)

	_, err = j.Records(ctx)
	assert.ErrorIs(t, err, domtimeline.ErrJournalRecordMalformed)
}

func TestRedisJournalUnreachable(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	addr := server.Addr()
	server.Close()

	cfg := domtimeline.DefaultJournalConfig()
	cfg.Addr = addr
	_, err = domtimeline.NewRedisJournal(context.Background(), cfg)
	assert.Error(t, err)
}

func TestBoltJournal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := domtimeline.OpenBoltJournal(path, "")
	require.NoError(t, err)

	journalScenario(t, j)

	recs, err := j.Records()
	assert.NoError(t, err)
	assertJournalRecords(t, recs)
	assert.Equal(t, "1", recs[0].ID)
	assert.Equal(t, "3", recs[2].ID)
	assert.NoError(t, j.Close())

	reopened, err := domtimeline.OpenBoltJournal(path, "")
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()
	recs, err = reopened.Records()
	assert.NoError(t, err)
	assert.Len(t, recs, 3)
}

func TestBoltJournalCanceledContext(t *testing.T) {
	j, err := domtimeline.OpenBoltJournal(
		filepath.Join(t.TempDir(), "journal.db"), "custom",
	)
	require.NoError(t, err)
	defer func() { _ = j.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = j.Append(ctx, &domtimeline.JournalRecord{})
	assert.ErrorIs(t, err, context.Canceled)

	recs, err := j.Records()
	assert.NoError(t, err)
	assert.Empty(t, recs)
}

func TestPostgresJournal(t *testing.T) {
	db := &recordingExecer{}
	j, err := domtimeline.NewPostgresJournal(db, "audit")
	require.NoError(t, err)
	defer func() { _ = j.Close() }()

	ctx := context.Background()
	assert.NoError(t, j.CreateTable(ctx))
	require.Len(t, db.sql, 1)
	assert.Contains(t, db.sql[0], `CREATE TABLE IF NOT EXISTS "audit"`)

	journalScenario(t, j)
	require.Len(t, db.sql, 4)
	assert.Contains(t, db.sql[1], `INSERT INTO "audit"`)

	args := db.args[1]
	require.Len(t, args, 5)
	assert.Equal(t, "committed", args[0])
	assert.Equal(t, "rename", args[1])
	assert.IsType(t, time.Time{}, args[3])

	var rec domtimeline.JournalRecord
	assert.NoError(t, json.Unmarshal([]byte(args[4].(string)), &rec))
	assert.Equal(t, domtimeline.Committed, rec.Decision)
	assert.Len(t, rec.Events, 1)

	assert.Equal(t, "lost", db.args[3][0])
}

func TestPostgresJournalTableName(t *testing.T) {
	_, err := domtimeline.NewPostgresJournal(&recordingExecer{}, "")
	assert.ErrorIs(t, err, domtimeline.ErrInvalidTableName)

	db := &recordingExecer{}
	j, err := domtimeline.NewPostgresJournal(db, `odd"name`)
	require.NoError(t, err)
	assert.NoError(t, j.CreateTable(context.Background()))
	assert.Contains(t, db.sql[0], `"odd""name"`)
}

func TestJournalObserverLogsFailures(t *testing.T) {
	core, logs := zapobserver.New(zap.ErrorLevel)
	obs := domtimeline.NewJournalObserver[Node](
		&failingJournal{err: errBoom}, htmltree.NodeName, 0, zap.New(core),
	)
	h, doc := newHistory(t, domtimeline.WithObserver[Node](obs))

	require.NoError(t, doc.SetAttribute(find(t, doc, "box"), "class", str("b")))
	assert.NoError(t, h.Flush())
	assert.Len(t, h.Past(), 1)

	entries := logs.FilterMessage("Failed to append journal record").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "committed", entries[0].ContextMap()["decision"])
}
