package chunk

import (
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docship/docship/internal/domain"
)

func drainNdJson(t *testing.T, c *NdJsonChunker) [][]byte {
	t.Helper()
	var payloads [][]byte
	for {
		payload, docs, err := c.Next()
		if errors.Is(err, io.EOF) {
			return payloads
		}
		require.NoError(t, err)
		require.Positive(t, docs)
		payloads = append(payloads, payload)
	}
}

func parseObjects(t *testing.T, payload []byte) []map[string]any {
	t.Helper()
	var objs []map[string]any
	for _, line := range strings.Split(strings.TrimRight(string(payload), "\n"), "\n") {
		var obj map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &obj))
		objs = append(objs, obj)
	}
	return objs
}

func TestNdJsonChunkerSplitsAtThreshold(t *testing.T) {
	input := "{\"a\":1}\n{\"a\":2}\n{\"a\":3}\n"

	// Each serialized object is 8 bytes including the newline. A threshold
	// of 17 fits two objects per batch but not three.
	c := NewNdJsonChunker(strings.NewReader(input), 17, nil)
	payloads := drainNdJson(t, c)
	require.Len(t, payloads, 2)

	var values []float64
	for _, payload := range payloads {
		objs := parseObjects(t, payload)
		assert.LessOrEqual(t, len(objs), 2)
		for _, obj := range objs {
			values = append(values, obj["a"].(float64))
		}
	}
	assert.Equal(t, []float64{1, 2, 3}, values)
}

func TestNdJsonChunkerSingleBatchUnderThreshold(t *testing.T) {
	input := "{\"a\":1}\n{\"a\":2}\n"
	c := NewNdJsonChunker(strings.NewReader(input), 1<<20, nil)

	payload, docs, err := c.Next()
	require.NoError(t, err)
	assert.Equal(t, 2, docs)
	assert.Len(t, parseObjects(t, payload), 2)

	_, _, err = c.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestNdJsonChunkerOversizedObjectShipsWhole(t *testing.T) {
	big := strings.Repeat("x", 200)
	input := "{\"a\":1}\n{\"blob\":\"" + big + "\"}\n{\"a\":2}\n"

	c := NewNdJsonChunker(strings.NewReader(input), 32, nil)
	payloads := drainNdJson(t, c)
	require.Len(t, payloads, 3)
	assert.Contains(t, string(payloads[1]), big)
	assert.Greater(t, len(payloads[1]), 32)
}

func TestNdJsonChunkerTransformStripsFields(t *testing.T) {
	input := "{\"id\":1,\"embedding\":[0.1,0.2,0.3]}\n{\"id\":2,\"embedding\":[0.4]}\n"
	c := NewNdJsonChunker(strings.NewReader(input), 1<<20, DropFields("embedding"))

	payload, docs, err := c.Next()
	require.NoError(t, err)
	require.Equal(t, 2, docs)
	for _, obj := range parseObjects(t, payload) {
		assert.NotContains(t, obj, "embedding")
		assert.Contains(t, obj, "id")
	}
}

func TestNdJsonChunkerMalformedRecordFails(t *testing.T) {
	input := "{\"a\":1}\n{not json}\n{\"a\":2}\n"
	c := NewNdJsonChunker(strings.NewReader(input), 1<<20, nil)

	_, _, err := c.Next()
	var parseErr *domain.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, domain.FormatNDJSON, parseErr.Format)

	_, _, err = c.Next()
	assert.ErrorAs(t, err, &parseErr, "the parse error is terminal")
}

func TestNdJsonChunkerEmptyInput(t *testing.T) {
	c := NewNdJsonChunker(strings.NewReader(""), 64, nil)
	_, _, err := c.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestCountingWriter(t *testing.T) {
	var w CountingWriter
	n, err := w.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	_, _ = w.Write([]byte(" world"))
	assert.Equal(t, 11, w.Count())
}
