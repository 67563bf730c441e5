package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"

	"review_dashboard/internal/adapters/observability"
	"review_dashboard/internal/domain"
)

// ApprovalService owns the in-process view of which reviews are shown on the
// website. Writes go to memory first and to the durable store second; a failed
// durable write is logged and remembered in Unsynced until Flush succeeds.
// Reads never wait on the durable store.
type ApprovalService struct {
	store domain.ApprovalStore

	writeMu sync.Mutex // one writer at a time across load-mutate-save

	stateMu  sync.RWMutex
	approved map[string]struct{}
	unsynced map[string]bool
}

func NewApprovalService(store domain.ApprovalStore) *ApprovalService {
	return &ApprovalService{
		store:    store,
		approved: map[string]struct{}{},
		unsynced: map[string]bool{},
	}
}

// Init replaces the in-memory set with the durable one.
func (s *ApprovalService) Init(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	set, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load approvals: %w", err)
	}
	s.stateMu.Lock()
	s.approved = set
	s.stateMu.Unlock()
	log.Info().Int("approved", len(set)).Msg("approval state loaded")
	return nil
}

func (s *ApprovalService) IsApproved(id string) bool {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	_, ok := s.approved[id]
	return ok
}

// AllApproved returns a snapshot copy of the approved set.
func (s *ApprovalService) AllApproved() map[string]struct{} {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	out := make(map[string]struct{}, len(s.approved))
	for id := range s.approved {
		out[id] = struct{}{}
	}
	return out
}

// SetApproved records a curation decision. Only an empty id is rejected;
// persistence failures do not surface to the caller.
func (s *ApprovalService) SetApproved(ctx context.Context, id string, approved bool) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return &domain.ValidationError{Field: "id", Value: id, Reason: "must not be empty"}
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.apply(id, approved)
	s.persist(ctx, id, approved)
	return nil
}

// SetMany applies the same decision to several ids as one writer.
func (s *ApprovalService) SetMany(ctx context.Context, ids []string, approved bool) error {
	for _, id := range ids {
		if strings.TrimSpace(id) == "" {
			return &domain.ValidationError{Field: "ids", Value: id, Reason: "must not contain empty ids"}
		}
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	for _, id := range ids {
		id = strings.TrimSpace(id)
		s.apply(id, approved)
		s.persist(ctx, id, approved)
	}
	return nil
}

func (s *ApprovalService) apply(id string, approved bool) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	if approved {
		s.approved[id] = struct{}{}
	} else {
		delete(s.approved, id)
	}
}

// persist runs with writeMu held and stateMu released.
func (s *ApprovalService) persist(ctx context.Context, id string, approved bool) {
	ctx, span := otel.Tracer(tracerID).Start(ctx, "ApprovalService/persist")
	defer span.End()

	err := s.store.Set(ctx, id, approved)

	s.stateMu.Lock()
	if err != nil {
		s.unsynced[id] = approved
	} else {
		delete(s.unsynced, id)
	}
	s.stateMu.Unlock()

	if err != nil {
		span.RecordError(err)
		observability.ObservePersistFailure()
		log.Error().Err(err).Str("review", id).Bool("approved", approved).
			Msg("approval not persisted; in-memory state kept")
	}
}

// Unsynced returns decisions that are not yet durable, keyed by review id.
func (s *ApprovalService) Unsynced() map[string]bool {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	out := make(map[string]bool, len(s.unsynced))
	for k, v := range s.unsynced {
		out[k] = v
	}
	return out
}

// Flush retries every unsynced decision.
func (s *ApprovalService) Flush(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	pending := s.Unsynced()

	var errs []error
	for id, approved := range pending {
		if err := s.store.Set(ctx, id, approved); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", id, err))
			continue
		}
		s.stateMu.Lock()
		delete(s.unsynced, id)
		s.stateMu.Unlock()
	}
	return errors.Join(errs...)
}
