package scrape

import (
	"context"
	"errors"

	mapset "github.com/deckarep/golang-set/v2"

	"jobscrape-engine/internal/domain"
)

// Sink is the persistence collaborator. Upsert must be atomic per identity
// key; inserted is false when an existing row was updated instead.
type Sink interface {
	Upsert(ctx context.Context, rec domain.Record) (inserted bool, err error)
}

// ErrSinkUnavailable means the sink itself is down, not that one record
// failed. A site run aborts on it instead of logging and moving on.
var ErrSinkUnavailable = errors.New("sink unavailable")

type AdmitStatus int

const (
	Accepted AdmitStatus = iota
	Duplicate
)

// Admitter tracks which identity keys this run has already emitted and
// forwards new records to the sink. The seen set is run-scoped: built when
// a site run starts, discarded when it ends, never shared between
// concurrent site runs. Cross-run dedup is the sink's job via upsert.
type Admitter struct {
	seen mapset.Set[string]
	sink Sink
}

func NewAdmitter(sink Sink) *Admitter {
	return &Admitter{
		seen: mapset.NewThreadUnsafeSet[string](),
		sink: sink,
	}
}

// Admit forwards rec unless its identity key was already seen this run.
// A duplicate is not an error and is not sent to the sink.
func (a *Admitter) Admit(ctx context.Context, rec domain.Record) (AdmitStatus, error) {
	key := rec.IdentityKey()
	if !a.seen.Add(key) {
		return Duplicate, nil
	}

	if _, err := a.sink.Upsert(ctx, rec); err != nil {
		return Accepted, err
	}
	return Accepted, nil
}
