package core

import (
	"context"
	"time"
)

// DefaultEntryListLimit caps RecentEntries when no limit is configured.
const DefaultEntryListLimit = 2

// ServiceConfig holds the tunables of a Service.
// Zero values fall back to the package defaults.
type ServiceConfig struct {
	EntryListLimit          int           // max entries returned by RecentEntries
	MaxConcurrentTranscodes int           // parallel workbook conversions
	TranscodeWait           time.Duration // wait for a conversion slot
}

// Service provides the business logic for sheets, form entries and
// spreadsheet import/export.
type Service struct {
	store      Store
	codec      Codec
	limiter    *TranscodeLimiter
	entryLimit int
}

// NewService creates a Service over the given store and codec.
func NewService(store Store, codec Codec, cfg ServiceConfig) *Service {
	limit := cfg.EntryListLimit
	if limit <= 0 {
		limit = DefaultEntryListLimit
	}
	return &Service{
		store:      store,
		codec:      codec,
		limiter:    NewTranscodeLimiter(cfg.MaxConcurrentTranscodes, cfg.TranscodeWait),
		entryLimit: limit,
	}
}

// EntryListLimit returns the cap applied by RecentEntries.
func (s *Service) EntryListLimit() int {
	return s.entryLimit
}

// TranscodeStatus returns the state of the conversion limiter.
func (s *Service) TranscodeStatus() TranscodeLimiterStatus {
	return s.limiter.Status()
}

// WaitForTranscodes blocks until in-flight conversions finish or ctx is done.
func (s *Service) WaitForTranscodes(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// Ping checks that the store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	if err := s.store.Ping(ctx); err != nil {
		return internal("ping", "store unavailable", err)
	}
	return nil
}
