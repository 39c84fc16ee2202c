package worker

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ppiankov/brainmap/internal/rma"
)

// mockValidator accepts the ids and acronyms it knows and fails on "boom".
type mockValidator struct {
	known map[string]bool
	calls atomic.Int32
}

func (m *mockValidator) CheckValidity(ctx context.Context, id rma.Identifier) (bool, *rma.Envelope, error) {
	m.calls.Add(1)
	time.Sleep(5 * time.Millisecond)
	if id.String() == "acronym=boom" {
		return false, nil, errors.Mark(errors.New("connection refused"), rma.ErrTransport)
	}
	rows := 0
	if m.known[id.String()] {
		rows = 1
	}
	return rows > 0, &rma.Envelope{Success: true, TotalRows: rows}, nil
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ids.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestBatchProcessor_Process(t *testing.T) {
	v := &mockValidator{known: map[string]bool{"id=1018": true, "acronym=SSp": true}}
	core, logs := observer.New(zap.InfoLevel)
	processor := NewBatchProcessor(v, 2, zap.New(core).Sugar())

	ids := []rma.Identifier{
		rma.ByID(1018),
		rma.ByAcronym("random_string"),
		rma.ByAcronym("SSp"),
		rma.ByAcronym("boom"),
	}
	results := processor.Process(context.Background(), ids)
	require.Len(t, results, 4)

	for i, r := range results {
		assert.Equal(t, ids[i], r.Identifier)
	}
	assert.True(t, results[0].Valid)
	assert.Equal(t, 1, results[0].Rows)
	assert.False(t, results[1].Valid)
	assert.NoError(t, results[1].GetError())
	assert.True(t, results[2].Valid)
	assert.True(t, errors.Is(results[3].GetError(), rma.ErrTransport))

	summary := logs.FilterMessage("batch complete").All()
	require.Len(t, summary, 1)
	fields := summary[0].ContextMap()
	assert.EqualValues(t, 4, fields["total"])
	assert.EqualValues(t, 2, fields["valid"])
	assert.EqualValues(t, 1, fields["invalid"])
	assert.EqualValues(t, 1, fields["failed"])
}

func TestBatchProcessor_Process_Empty(t *testing.T) {
	v := &mockValidator{}
	results := NewBatchProcessor(v, 2, nil).Process(context.Background(), nil)
	assert.Empty(t, results)
	assert.Zero(t, v.calls.Load())
}

func TestBatchProcessor_Process_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ids := []rma.Identifier{rma.ByID(1), rma.ByID(2), rma.ByID(3)}
	results := NewBatchProcessor(&mockValidator{}, 1, nil).Process(ctx, ids)
	require.Len(t, results, 3)
	for _, r := range results {
		assert.True(t, errors.Is(r.GetError(), context.Canceled))
	}
}

func TestBatchProcessor_ProcessFile(t *testing.T) {
	path := writeFile(t, "1018\nSSp\n# comment\n\nrandom_string\n")
	v := &mockValidator{known: map[string]bool{"id=1018": true}}

	results, err := NewBatchProcessor(v, 2, nil).ProcessFile(context.Background(), path)
	require.NoError(t, err)
	assert.Len(t, results, 3)

	_, err = NewBatchProcessor(v, 2, nil).ProcessFile(context.Background(), "no_such_file.txt")
	assert.Error(t, err)
}

func TestReadIdentifiersFromFile(t *testing.T) {
	path := writeFile(t, `1018
# comment
SSp
   
  MOp   
-10000000
1018
SSp`)

	ids, err := ReadIdentifiersFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, []rma.Identifier{
		rma.ByID(1018),
		rma.ByAcronym("SSp"),
		rma.ByAcronym("MOp"),
		rma.ByID(-10000000),
	}, ids)
}

func TestReadIdentifiersFromFile_Empty(t *testing.T) {
	ids, err := ReadIdentifiersFromFile(writeFile(t, ""))
	require.NoError(t, err)
	assert.Empty(t, ids)

	_, err = ReadIdentifiersFromFile("non_existent_file.txt")
	assert.Error(t, err)
}
