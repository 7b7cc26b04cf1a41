package ruleset

import (
	"context"
	"errors"
	"testing"

	"github.com/leapstack-labs/leapdq/internal/testutil"
	"github.com/leapstack-labs/leapdq/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeReader serves objects from memory.
type fakeReader struct {
	objects map[storage.Location]string
	err     error
}

func (f *fakeReader) ReadText(_ context.Context, loc storage.Location) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	text, ok := f.objects[loc]
	if !ok {
		return "", storage.ErrObjectNotFound
	}
	return text, nil
}

var rulesLoc = storage.Location{Bucket: "dq-dev-rules", Key: "orders.yaml"}

func TestLoader_Load(t *testing.T) {
	reader := &fakeReader{objects: map[storage.Location]string{rulesLoc: fullDocument}}

	doc := NewLoader(reader, testutil.NewTestLogger(t)).Load(context.Background(), rulesLoc)
	require.NotNil(t, doc)
	assert.Len(t, doc.QuerySources, 1)
	assert.Len(t, doc.Rules, 2)
}

func TestLoader_NotFoundReturnsNil(t *testing.T) {
	logger, rec := testutil.NewLogRecorder()
	reader := &fakeReader{objects: map[storage.Location]string{}}

	doc := NewLoader(reader, logger).Load(context.Background(), rulesLoc)
	assert.Nil(t, doc)

	entry, ok := rec.Find("rule-set not found")
	require.True(t, ok)
	assert.Equal(t, "s3://dq-dev-rules/orders.yaml", entry.Attrs["location"])
}

func TestLoader_MalformedReturnsNil(t *testing.T) {
	logger, rec := testutil.NewLogRecorder()
	reader := &fakeReader{objects: map[storage.Location]string{rulesLoc: "query_dq: [oops"}}

	doc := NewLoader(reader, logger).Load(context.Background(), rulesLoc)
	assert.Nil(t, doc)
	_, ok := rec.Find("rule-set parse error")
	assert.True(t, ok)
}

func TestLoader_ReadFailureReturnsNil(t *testing.T) {
	logger, rec := testutil.NewLogRecorder()
	reader := &fakeReader{err: errors.New("network down")}

	doc := NewLoader(reader, logger).Load(context.Background(), rulesLoc)
	assert.Nil(t, doc)
	entry, ok := rec.Find("rule-set read failed")
	require.True(t, ok)
	assert.Equal(t, "network down", entry.Attrs["error"])
}

func TestLoader_LogsIgnoredKeys(t *testing.T) {
	logger, rec := testutil.NewLogRecorder()
	text := "description: orders\nrules:\n  - parameters: {table_name: orders, owner: crm}\n"
	reader := &fakeReader{objects: map[storage.Location]string{rulesLoc: text}}

	doc := NewLoader(reader, logger).Load(context.Background(), rulesLoc)
	require.NotNil(t, doc)
	assert.Len(t, doc.Rules, 1)

	entry, ok := rec.Find("rule-set keys ignored")
	require.True(t, ok)
	assert.Equal(t, "description,rules[0].parameters.owner", entry.Attrs["keys"])
}
