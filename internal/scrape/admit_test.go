package scrape

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobscrape-engine/internal/domain"
)

// memSink collects upserted records in memory, keyed like the real store.
type memSink struct {
	records map[string]domain.Record
	order   []string
	failKey string // upserts for this identity key fail
	down    bool   // every upsert fails as sink-unavailable
}

func newMemSink() *memSink {
	return &memSink{records: map[string]domain.Record{}}
}

func (m *memSink) Upsert(_ context.Context, rec domain.Record) (bool, error) {
	if m.down {
		return false, fmt.Errorf("%w: connection refused", ErrSinkUnavailable)
	}
	key := rec.IdentityKey()
	if key == m.failKey && m.failKey != "" {
		return false, errors.New("constraint violation")
	}
	_, existed := m.records[key]
	if !existed {
		m.order = append(m.order, key)
	}
	m.records[key] = rec
	return !existed, nil
}

func TestAdmit_ForwardsNewRecords(t *testing.T) {
	sink := newMemSink()
	adm := NewAdmitter(sink)

	rec := domain.Record{Title: "SRE", ApplyURL: "https://example.com/jobs/1"}
	status, err := adm.Admit(context.Background(), rec)

	require.NoError(t, err)
	assert.Equal(t, Accepted, status)
	assert.Len(t, sink.records, 1)
}

// Admitting the same identity twice within a run forwards exactly once.
func TestAdmit_DuplicateWithinRun(t *testing.T) {
	sink := newMemSink()
	adm := NewAdmitter(sink)
	ctx := context.Background()

	first := domain.Record{Title: "SRE", ApplyURL: "https://example.com/jobs/1"}
	second := domain.Record{Title: "Site Reliability Engineer", ApplyURL: "https://example.com/jobs/1"}

	status, err := adm.Admit(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, Accepted, status)

	status, err = adm.Admit(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, Duplicate, status)

	assert.Len(t, sink.records, 1)
}

func TestAdmit_HashFallbackDedup(t *testing.T) {
	sink := newMemSink()
	adm := NewAdmitter(sink)
	ctx := context.Background()

	a := domain.Record{Title: "SRE", Company: "Acme", Location: "Remote", SourceSite: "Example"}
	b := domain.Record{Title: "SRE", Company: "Acme", Location: "Remote", SourceSite: "Example"}

	s1, _ := adm.Admit(ctx, a)
	s2, _ := adm.Admit(ctx, b)

	assert.Equal(t, Accepted, s1)
	assert.Equal(t, Duplicate, s2)
}

/// Separate admitters never share seen state: the same record admitted by two
// runs is forwarded by both, and cross-run dedup is the sink's upsert.
func TestAdmit_RunScopedSeenState(t *testing.T) {
	sink := newMemSink()
	ctx := context.Background()
	rec := domain.Record{Title: "SRE", ApplyURL: "https://example.com/jobs/1"}

	s1, err := NewAdmitter(sink).Admit(ctx, rec)
	require.NoError(t, err)
	s2, err := NewAdmitter(sink).Admit(ctx, rec)
	require.NoError(t, err)

	assert.Equal(t, Accepted, s1)
	assert.Equal(t, Accepted, s2)
	assert.Len(t, sink.records, 1, "sink upsert collapsed both into one row")
}

func TestAdmit_SinkErrorPropagates(t *testing.T) {
	sink := newMemSink()
	sink.down = true

	_, err := NewAdmitter(sink).Admit(context.Background(), domain.Record{Title: "SRE"})
	assert.True(t, errors.Is(err, ErrSinkUnavailable))
}
