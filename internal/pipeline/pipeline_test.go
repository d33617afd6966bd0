package pipeline

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docship/docship/internal/domain"
	"github.com/docship/docship/internal/ports"
)

// fakeSender records delivery attempts and can be scripted to fail.
type fakeSender struct {
	mu       sync.Mutex
	sent     []domain.Batch
	attempts map[uint64]int

	// fail, when set, decides the outcome of each attempt.
	fail func(attempt int, b domain.Batch) error
}

func newFakeSender() *fakeSender {
	return &fakeSender{attempts: make(map[uint64]int)}
}

func (s *fakeSender) Send(ctx context.Context, b domain.Batch, target ports.Target) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts[b.Index]++
	if s.fail != nil {
		if err := s.fail(s.attempts[b.Index], b); err != nil {
			return err
		}
	}
	s.sent = append(s.sent, b)
	return nil
}

func (s *fakeSender) sentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

func (s *fakeSender) attemptCount(index uint64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts[index]
}

// fakeChunker replays scripted payloads, optionally ending with an error.
type fakeChunker struct {
	payloads [][]byte
	err      error
}

func (c *fakeChunker) Next() ([]byte, int, error) {
	if len(c.payloads) == 0 {
		if c.err != nil {
			return nil, 0, c.err
		}
		return nil, 0, io.EOF
	}
	payload := c.payloads[0]
	c.payloads = c.payloads[1:]
	return payload, 1, nil
}

// countSink counts progress increments.
type countSink struct {
	mu    sync.Mutex
	added int
	lines []string
}

func (s *countSink) Start(total int) {}

func (s *countSink) Add(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.added += n
}

func (s *countSink) Println(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append(s.lines, msg)
}

func (s *countSink) Finish() {}

func (s *countSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.added
}

func scriptedPayloads(n int) [][]byte {
	payloads := make([][]byte, n)
	for i := range payloads {
		payloads[i] = []byte(fmt.Sprintf("{\"id\":%d}\n", i))
	}
	return payloads
}

func newTestImporter(t *testing.T, cfg Config, opts ...Option) *Importer {
	t.Helper()
	if cfg.ServiceURL == "" {
		cfg.ServiceURL = "http://localhost:7700"
	}
	if cfg.Index == "" {
		cfg.Index = "test"
	}
	cfg.RetryMinWait = time.Millisecond
	cfg.RetryMaxWait = 4 * time.Millisecond
	imp, err := New(cfg, opts...)
	require.NoError(t, err)
	return imp
}

func TestRunDeliversAllBatches(t *testing.T) {
	sender := newFakeSender()
	sink := &countSink{}
	imp := newTestImporter(t, Config{Jobs: 4}, WithSender(sender), WithProgress(sink))

	chunker := &fakeChunker{payloads: scriptedPayloads(25)}
	err := imp.run(context.Background(), chunker, imp.target(domain.FormatNDJSON))
	require.NoError(t, err)

	assert.Equal(t, 25, sender.sentCount())
	assert.Equal(t, 25, sink.count())

	// Every index delivered exactly once, regardless of arrival order.
	var indices []int
	sender.mu.Lock()
	for _, b := range sender.sent {
		indices = append(indices, int(b.Index))
	}
	sender.mu.Unlock()
	sort.Ints(indices)
	for i, idx := range indices {
		assert.Equal(t, i, idx)
	}
}

func TestRunSkipsBatchesBelowOffset(t *testing.T) {
	sender := newFakeSender()
	sink := &countSink{}
	imp := newTestImporter(t, Config{SkipBatches: 3}, WithSender(sender), WithProgress(sink))

	chunker := &fakeChunker{payloads: scriptedPayloads(5)}
	err := imp.run(context.Background(), chunker, imp.target(domain.FormatNDJSON))
	require.NoError(t, err)

	assert.Equal(t, 2, sender.sentCount(), "batches 0..2 must not be transmitted")
	assert.Equal(t, 5, sink.count(), "skipped batches still count toward progress")
	assert.Zero(t, sender.attemptCount(0))
	assert.Zero(t, sender.attemptCount(2))
	assert.Equal(t, 1, sender.attemptCount(3))
}

func TestRunPropagatesProducerError(t *testing.T) {
	sender := newFakeSender()
	imp := newTestImporter(t, Config{}, WithSender(sender))

	parseErr := &domain.ParseError{Format: domain.FormatNDJSON, Record: 3, Err: fmt.Errorf("bad record")}
	chunker := &fakeChunker{payloads: scriptedPayloads(2), err: parseErr}

	err := imp.run(context.Background(), chunker, imp.target(domain.FormatNDJSON))
	var got *domain.ParseError
	require.ErrorAs(t, err, &got)
	assert.LessOrEqual(t, sender.sentCount(), 2)
}

func TestRetryExhaustionAbortsRun(t *testing.T) {
	sender := newFakeSender()
	sender.fail = func(attempt int, b domain.Batch) error {
		return &domain.ServerError{StatusCode: http.StatusInternalServerError, Body: "boom"}
	}
	sink := &countSink{}
	imp := newTestImporter(t, Config{MaxAttempts: 5}, WithSender(sender), WithProgress(sink))

	chunker := &fakeChunker{payloads: scriptedPayloads(1)}
	err := imp.run(context.Background(), chunker, imp.target(domain.FormatNDJSON))

	require.ErrorIs(t, err, domain.ErrAttemptsExhausted)
	assert.Equal(t, 5, sender.attemptCount(0), "exactly the configured attempt count, no more")
	assert.Zero(t, sink.count())
	assert.Len(t, sink.lines, 5, "every failed attempt is echoed to the progress sink")
}

func TestRetryRecoversFromTransientFailures(t *testing.T) {
	sender := newFakeSender()
	sender.fail = func(attempt int, b domain.Batch) error {
		if attempt < 3 {
			return &domain.ServerError{StatusCode: http.StatusServiceUnavailable}
		}
		return nil
	}
	imp := newTestImporter(t, Config{MaxAttempts: 5}, WithSender(sender))

	chunker := &fakeChunker{payloads: scriptedPayloads(1)}
	err := imp.run(context.Background(), chunker, imp.target(domain.FormatNDJSON))

	require.NoError(t, err)
	assert.Equal(t, 3, sender.attemptCount(0))
	assert.Equal(t, 1, sender.sentCount())
}

func TestRunStopsAfterWorkerFailure(t *testing.T) {
	sender := newFakeSender()
	sender.fail = func(attempt int, b domain.Batch) error {
		if b.Index == 1 {
			return &domain.ServerError{StatusCode: http.StatusInternalServerError}
		}
		return nil
	}
	imp := newTestImporter(t, Config{MaxAttempts: 2}, WithSender(sender))

	chunker := &fakeChunker{payloads: scriptedPayloads(50)}
	err := imp.run(context.Background(), chunker, imp.target(domain.FormatNDJSON))

	require.ErrorIs(t, err, domain.ErrAttemptsExhausted)
	assert.Less(t, sender.sentCount(), 50, "production must stop past the failing point")
}

func TestImportFileWholeJSON(t *testing.T) {
	doc := `[{"id":1},{"id":2}]`
	dir := t.TempDir()
	path := filepath.Join(dir, "docs.json")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	sender := newFakeSender()
	sink := &countSink{}
	imp := newTestImporter(t, Config{}, WithSender(sender), WithProgress(sink))

	require.NoError(t, imp.ImportFile(context.Background(), path))

	require.Equal(t, 1, sender.sentCount())
	assert.Equal(t, uint64(0), sender.sent[0].Index)
	assert.Equal(t, doc, string(sender.sent[0].Data))
	assert.Equal(t, 1, sink.count())
}

func TestImportFileUnknownExtension(t *testing.T) {
	imp := newTestImporter(t, Config{}, WithSender(newFakeSender()))

	err := imp.ImportFile(context.Background(), "data.parquet")
	require.ErrorIs(t, err, domain.ErrUnknownFormat)
}

func TestImportFileMissingFile(t *testing.T) {
	imp := newTestImporter(t, Config{}, WithSender(newFakeSender()))

	err := imp.ImportFile(context.Background(), filepath.Join(t.TempDir(), "nope.csv"))
	var inputErr *domain.InputError
	require.ErrorAs(t, err, &inputErr)
}

func TestImportFileEndToEnd(t *testing.T) {
	var (
		mu     sync.Mutex
		bodies []string
	)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gz, err := gzip.NewReader(r.Body)
		if err != nil {
			t.Errorf("gzip reader: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		body, _ := io.ReadAll(gz)
		mu.Lock()
		bodies = append(bodies, string(body))
		mu.Unlock()
		w.WriteHeader(http.StatusAccepted)
	}))
	defer ts.Close()

	var input strings.Builder
	for i := 0; i < 30; i++ {
		fmt.Fprintf(&input, "{\"id\":%d,\"name\":\"doc-%d\"}\n", i, i)
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "docs.ndjson")
	require.NoError(t, os.WriteFile(path, []byte(input.String()), 0o644))

	imp := newTestImporter(t, Config{
		ServiceURL: ts.URL,
		Index:      "docs",
		Jobs:       3,
		BatchBytes: 100,
	})

	require.NoError(t, imp.ImportFile(context.Background(), path))

	// Union of all delivered objects equals the input set.
	ids := make(map[float64]bool)
	mu.Lock()
	for _, body := range bodies {
		for _, line := range strings.Split(strings.TrimRight(body, "\n"), "\n") {
			var obj map[string]any
			require.NoError(t, json.Unmarshal([]byte(line), &obj))
			ids[obj["id"].(float64)] = true
		}
	}
	mu.Unlock()
	assert.Len(t, ids, 30)
}
