package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/boddenberg/contratos-aditivos-bfa-go/internal/blocks"
	"github.com/boddenberg/contratos-aditivos-bfa-go/internal/domain"
	"github.com/boddenberg/contratos-aditivos-bfa-go/internal/form"
	"github.com/boddenberg/contratos-aditivos-bfa-go/internal/infra/cache"
	"github.com/boddenberg/contratos-aditivos-bfa-go/internal/infra/observability"
	"github.com/boddenberg/contratos-aditivos-bfa-go/internal/infra/resilience"
	"github.com/boddenberg/contratos-aditivos-bfa-go/internal/port"
	"github.com/boddenberg/contratos-aditivos-bfa-go/internal/wizard"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("service/drafts")

// Contract context slices, in display order.
const (
	sliceFinancials = "financials"
	sliceTerms      = "terms"
	sliceSuppliers  = "suppliers"
	sliceUnits      = "units"
)

var allSlices = []string{sliceFinancials, sliceTerms, sliceSuppliers, sliceUnits}

// session is one user's draft. mu serializes every operation on it.
type session struct {
	mu      sync.Mutex
	id      string
	owner   string
	wiz     *wizard.Wizard
	deleted bool
}

// DraftView is what the API returns for a draft session.
type DraftView struct {
	form.State

	ID         string                     `json:"id"`
	Step       wizard.Step                `json:"step"`
	CanAdvance bool                       `json:"canAdvance"`
	Blocks     []blocks.Summary           `json:"blocks"`
	Submitted  *domain.SubmittedAmendment `json:"submitted,omitempty"`
}

// SubmitOutcome pairs the Amendments API answer with the updated draft.
type SubmitOutcome struct {
	Result *domain.SubmissionResult `json:"result"`
	Draft  *DraftView               `json:"draft"`
}

// DraftService manages amendment draft sessions: it loads the contract
// context, applies edits through the form, and drives the wizard workflow.
type DraftService struct {
	contracts port.ContractContextFetcher
	submitter port.AmendmentSubmitter
	sessions  port.SessionStore[*session]
	contexts  port.Cache[*domain.ContractContext]
	closer    func()
	bulkhead  *resilience.Bulkhead
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// NewDraftService creates the draft service with all dependencies injected.
// Sessions idle for longer than sessionTTL are dropped.
func NewDraftService(
	contracts port.ContractContextFetcher,
	submitter port.AmendmentSubmitter,
	sessionTTL time.Duration,
	contexts port.Cache[*domain.ContractContext],
	bulkhead *resilience.Bulkhead,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *DraftService {
	sessions := cache.New[*session](sessionTTL)
	return &DraftService{
		contracts: contracts,
		submitter: submitter,
		sessions:  sessions,
		contexts:  contexts,
		closer:    sessions.Close,
		bulkhead:  bulkhead,
		metrics:   metrics,
		logger:    logger,
	}
}

// Close stops the session expiry loop.
func (s *DraftService) Close() {
	s.closer()
}

// Create opens a draft session for contractID, optionally seeded with an
// initial draft, and loads the contract context.
func (s *DraftService) Create(ctx context.Context, owner, contractID string, initial *domain.AmendmentDraft) (*DraftView, error) {
	ctx, span := tracer.Start(ctx, "DraftService.Create")
	defer span.End()
	span.SetAttributes(attribute.String("contract.id", contractID))
	defer s.observe("draft_create", time.Now())

	if strings.TrimSpace(contractID) == "" {
		return nil, &domain.ErrValidation{Field: "contractId", Message: "contrato é obrigatório"}
	}

	cc, err := s.contractContext(ctx, contractID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("contract context: %w", err)
	}

	f := form.New(contractID, initial)
	f.SetContext(cc)
	sess := &session{
		id:    uuid.NewString(),
		owner: owner,
		wiz:   wizard.New(f, s.submitter),
	}
	if initial != nil {
		f.ValidateNow()
	}
	s.recordAlert(nil, f)

	s.sessions.Set(sess.id, sess)
	s.metrics.SetActiveDrafts(s.sessions.Len())
	s.logger.Info("draft created",
		zap.String("draft_id", sess.id),
		zap.String("contract_id", contractID),
		zap.Strings("context_missing", cc.Missing),
	)
	return s.view(sess), nil
}

// Get returns the current state of a draft.
func (s *DraftService) Get(ctx context.Context, owner, draftID string) (*DraftView, error) {
	var out *DraftView
	err := s.withSession(ctx, "DraftService.Get", owner, draftID, func(_ context.Context, sess *session) error {
		out = s.view(sess)
		return nil
	})
	return out, err
}

// Patch applies a partial update to the draft. The draft is revalidated and
// the parts of the contract context the edit invalidated are reloaded.
func (s *DraftService) Patch(ctx context.Context, owner, draftID string, p form.Patch) (*DraftView, error) {
	defer s.observe("draft_patch", time.Now())

	var out *DraftView
	err := s.withSession(ctx, "DraftService.Patch", owner, draftID, func(ctx context.Context, sess *session) error {
		if err := s.apply(ctx, sess, p); err != nil {
			return err
		}
		out = s.view(sess)
		return nil
	})
	return out, err
}

// UpdateBlock replaces the data of one block.
func (s *DraftService) UpdateBlock(ctx context.Context, owner, draftID string, kind domain.BlockKind, data any) (*DraftView, error) {
	defer s.observe("draft_patch", time.Now())

	var out *DraftView
	err := s.withSession(ctx, "DraftService.UpdateBlock", owner, draftID, func(ctx context.Context, sess *session) error {
		p, err := sess.wiz.Orchestrator().Route(kind, data)
		if err != nil {
			return err
		}
		if err := s.apply(ctx, sess, p); err != nil {
			return err
		}
		out = s.view(sess)
		return nil
	})
	return out, err
}

// ToggleBlock expands or collapses a block.
func (s *DraftService) ToggleBlock(ctx context.Context, owner, draftID string, kind domain.BlockKind) (*DraftView, error) {
	var out *DraftView
	err := s.withSession(ctx, "DraftService.ToggleBlock", owner, draftID, func(_ context.Context, sess *session) error {
		sess.wiz.Orchestrator().Toggle(kind)
		out = s.view(sess)
		return nil
	})
	return out, err
}

// Next advances the wizard. On a blocked step the returned error is an
// ErrNotSubmittable carrying the step's errors.
func (s *DraftService) Next(ctx context.Context, owner, draftID string) (*DraftView, error) {
	var out *DraftView
	err := s.withSession(ctx, "DraftService.Next", owner, draftID, func(_ context.Context, sess *session) error {
		_, err := sess.wiz.Next()
		s.metrics.RecordValidation(err == nil)
		if err != nil {
			return err
		}
		out = s.view(sess)
		return nil
	})
	return out, err
}

// Back moves the wizard one step backwards.
func (s *DraftService) Back(ctx context.Context, owner, draftID string) (*DraftView, error) {
	var out *DraftView
	err := s.withSession(ctx, "DraftService.Back", owner, draftID, func(_ context.Context, sess *session) error {
		sess.wiz.Back()
		out = s.view(sess)
		return nil
	})
	return out, err
}

// GoTo jumps to a wizard step.
func (s *DraftService) GoTo(ctx context.Context, owner, draftID string, step wizard.Step) (*DraftView, error) {
	var out *DraftView
	err := s.withSession(ctx, "DraftService.GoTo", owner, draftID, func(_ context.Context, sess *session) error {
		if err := sess.wiz.GoTo(step); err != nil {
			return err
		}
		out = s.view(sess)
		return nil
	})
	return out, err
}

// Review returns the final review payload.
func (s *DraftService) Review(ctx context.Context, owner, draftID string) (*wizard.Review, error) {
	var out wizard.Review
	err := s.withSession(ctx, "DraftService.Review", owner, draftID, func(_ context.Context, sess *session) error {
		out = sess.wiz.Review()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// RefreshContext reloads the whole contract context of a draft.
func (s *DraftService) RefreshContext(ctx context.Context, owner, draftID string) (*DraftView, error) {
	var out *DraftView
	err := s.withSession(ctx, "DraftService.RefreshContext", owner, draftID, func(ctx context.Context, sess *session) error {
		f := sess.wiz.Form()
		contractID := f.ContractID()
		s.contexts.Delete(contextKey(contractID))
		cc, err := s.fetchContext(ctx, contractID, f.Context(), allSlices)
		if err != nil {
			return fmt.Errorf("contract context: %w", err)
		}
		s.remember(cc)
		before := f.Alert()
		f.SetContext(cc)
		s.recordAlert(before, f)
		out = s.view(sess)
		return nil
	})
	return out, err
}

// Submit sends the draft to the Amendments API.
func (s *DraftService) Submit(ctx context.Context, owner, draftID string) (*SubmitOutcome, error) {
	defer s.observe("draft_submit", time.Now())

	var out *SubmitOutcome
	err := s.withSession(ctx, "DraftService.Submit", owner, draftID, func(ctx context.Context, sess *session) error {
		res, err := sess.wiz.Submit(ctx)
		if err != nil {
			s.recordSubmitError(sess, err)
			return err
		}
		if res.Alert != nil {
			s.metrics.IncrSubmission(observability.SubmissionPending)
			s.metrics.RecordLegalAlert(res.Alert, string(form.AlertFromServer))
			s.logger.Info("amendment parked on legal limit",
				zap.String("draft_id", sess.id),
				zap.String("pending_id", res.Alert.PendingID),
			)
		} else {
			s.metrics.IncrSubmission(observability.SubmissionAccepted)
			s.logger.Info("amendment submitted",
				zap.String("draft_id", sess.id),
				zap.String("amendment_id", amendmentID(res.Amendment)),
			)
		}
		out = &SubmitOutcome{Result: res, Draft: s.view(sess)}
		return nil
	})
	return out, err
}

// Confirm accepts the pending legal-limit alert with a justification.
func (s *DraftService) Confirm(ctx context.Context, owner, draftID, justification string) (*DraftView, error) {
	defer s.observe("draft_confirm", time.Now())

	var out *DraftView
	err := s.withSession(ctx, "DraftService.Confirm", owner, draftID, func(ctx context.Context, sess *session) error {
		fromServer := sess.wiz.Form().AlertSource() == form.AlertFromServer
		amendment, err := sess.wiz.Confirm(ctx, justification)
		if err != nil {
			s.recordSubmitError(sess, err)
			return err
		}
		if fromServer {
			s.metrics.IncrSubmission(observability.SubmissionAccepted)
			s.logger.Info("parked amendment confirmed",
				zap.String("draft_id", sess.id),
				zap.String("amendment_id", amendmentID(amendment)),
			)
		}
		out = s.view(sess)
		return nil
	})
	return out, err
}

// Cancel dismisses the pending alert. With resetDraft the draft also goes
// back to its initial state.
func (s *DraftService) Cancel(ctx context.Context, owner, draftID string, resetDraft bool) (*DraftView, error) {
	var out *DraftView
	err := s.withSession(ctx, "DraftService.Cancel", owner, draftID, func(ctx context.Context, sess *session) error {
		if err := sess.wiz.Cancel(ctx, resetDraft); err != nil {
			s.metrics.IncrExternalError("amendments")
			return fmt.Errorf("cancel pending amendment: %w", err)
		}
		out = s.view(sess)
		return nil
	})
	return out, err
}

// Reset clears the draft back to its initial state.
func (s *DraftService) Reset(ctx context.Context, owner, draftID string) (*DraftView, error) {
	var out *DraftView
	err := s.withSession(ctx, "DraftService.Reset", owner, draftID, func(_ context.Context, sess *session) error {
		sess.wiz.Reset()
		out = s.view(sess)
		return nil
	})
	return out, err
}

// Delete discards a draft session.
func (s *DraftService) Delete(ctx context.Context, owner, draftID string) error {
	err := s.withSession(ctx, "DraftService.Delete", owner, draftID, func(_ context.Context, sess *session) error {
		sess.deleted = true
		s.sessions.Delete(sess.id)
		return nil
	})
	if err != nil {
		return err
	}
	s.metrics.SetActiveDrafts(s.sessions.Len())
	s.logger.Info("draft deleted", zap.String("draft_id", draftID))
	return nil
}

// ActiveDrafts counts live sessions.
func (s *DraftService) ActiveDrafts() int {
	n := s.sessions.Len()
	s.metrics.SetActiveDrafts(n)
	return n
}

// withSession looks the session up, checks ownership, and runs fn under the
// session lock. Every access extends the session lifetime.
func (s *DraftService) withSession(ctx context.Context, op, owner, draftID string, fn func(context.Context, *session) error) error {
	ctx, span := tracer.Start(ctx, op)
	defer span.End()
	span.SetAttributes(attribute.String("draft.id", draftID))

	sess, ok := s.sessions.Get(draftID)
	if !ok {
		return &domain.ErrNotFound{Resource: "draft", ID: draftID}
	}
	if sess.owner != "" && sess.owner != owner {
		s.logger.Warn("draft access denied",
			zap.String("draft_id", draftID),
			zap.String("owner", sess.owner),
			zap.String("caller", owner),
		)
		return &domain.ErrForbidden{Action: "acessar rascunho de outro usuário"}
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.deleted {
		return &domain.ErrNotFound{Resource: "draft", ID: draftID}
	}
	s.sessions.Touch(draftID)

	if err := fn(ctx, sess); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

// apply runs a patch through the form and reloads the context slices the
// edit asked for.
func (s *DraftService) apply(ctx context.Context, sess *session, p form.Patch) error {
	f := sess.wiz.Form()
	before := f.Alert()
	if err := f.Apply(p); err != nil {
		return err
	}
	s.metrics.RecordValidation(len(f.Errors()) == 0)
	s.recordAlert(before, f)

	signals := f.DrainSignals()
	if len(signals) == 0 {
		return nil
	}

	slices := make([]string, 0, len(allSlices))
	for _, sig := range signals {
		switch sig.Kind {
		case form.RefreshUnits:
			slices = append(slices, sliceUnits)
		case form.RefreshSuppliers:
			slices = append(slices, sliceSuppliers)
		}
	}
	// slices that failed earlier get another chance with every refresh
	if cur := f.Context(); cur != nil {
		slices = append(slices, cur.Missing...)
	}
	contractID := f.ContractID()
	s.contexts.Delete(contextKey(contractID))

	cc, err := s.fetchContext(ctx, contractID, f.Context(), slices)
	if err != nil {
		// The edit is already applied; a stale context only degrades summaries.
		s.logger.Warn("context refresh failed",
			zap.String("draft_id", sess.id),
			zap.String("contract_id", contractID),
			zap.Error(err),
		)
		return nil
	}
	s.remember(cc)
	before = f.Alert()
	f.SetContext(cc)
	s.recordAlert(before, f)
	return nil
}

// contractContext returns the cached context of a contract or loads it.
func (s *DraftService) contractContext(ctx context.Context, contractID string) (*domain.ContractContext, error) {
	if cc, ok := s.contexts.Get(contextKey(contractID)); ok {
		s.metrics.IncrCacheHit(observability.CacheContracts)
		return cc, nil
	}
	s.metrics.IncrCacheMiss(observability.CacheContracts)

	cc, err := s.fetchContext(ctx, contractID, nil, allSlices)
	if err != nil {
		return nil, err
	}
	s.remember(cc)
	return cc, nil
}

// remember caches a context only when every slice loaded.
func (s *DraftService) remember(cc *domain.ContractContext) {
	if complete(cc) {
		s.contexts.Set(contextKey(cc.ContractID), cc)
	}
}

func complete(cc *domain.ContractContext) bool {
	return cc != nil && len(cc.Missing) == 0 &&
		cc.Financials != nil && cc.Terms != nil && cc.Suppliers != nil && cc.Units != nil
}

// fetchContext loads the named slices concurrently on top of base. A slice
// that fails keeps its previous value and is listed in Missing, as does a
// slice missing from base that was not requested. Without a base, the call
// fails only when every slice failed.
func (s *DraftService) fetchContext(ctx context.Context, contractID string, base *domain.ContractContext, slices []string) (*domain.ContractContext, error) {
	ctx, span := tracer.Start(ctx, "DraftService.fetchContext")
	defer span.End()
	span.SetAttributes(
		attribute.String("contract.id", contractID),
		attribute.StringSlice("context.slices", slices),
	)

	out := &domain.ContractContext{ContractID: contractID}
	if base != nil {
		cp := *base
		cp.ContractID = contractID
		cp.Missing = nil
		cp.IsLoading = false
		out = &cp
	}

	var (
		mu     sync.Mutex
		failed = map[string]error{}
	)
	g, gCtx := errgroup.WithContext(ctx)
	fetch := func(name string, fn func(context.Context) error) {
		g.Go(func() error {
			if err := s.bulkhead.Acquire(gCtx); err != nil {
				return err
			}
			defer s.bulkhead.Release()

			if err := fn(gCtx); err != nil {
				s.logger.Warn("contract context slice unavailable",
					zap.String("contract_id", contractID),
					zap.String("slice", name),
					zap.Error(err),
				)
				s.metrics.IncrExternalError("contracts")
				mu.Lock()
				failed[name] = err
				mu.Unlock()
			}
			return nil
		})
	}

	requested := map[string]bool{}
	for _, name := range slices {
		requested[name] = true
	}
	if requested[sliceFinancials] {
		fetch(sliceFinancials, func(c context.Context) error {
			v, err := s.contracts.GetFinancials(c, contractID)
			if err == nil {
				out.Financials = v
			}
			return err
		})
	}
	if requested[sliceTerms] {
		fetch(sliceTerms, func(c context.Context) error {
			v, err := s.contracts.GetTerms(c, contractID)
			if err == nil {
				out.Terms = v
			}
			return err
		})
	}
	if requested[sliceSuppliers] {
		fetch(sliceSuppliers, func(c context.Context) error {
			v, err := s.contracts.GetSuppliers(c, contractID)
			if err == nil {
				out.Suppliers = v
			}
			return err
		})
	}
	if requested[sliceUnits] {
		fetch(sliceUnits, func(c context.Context) error {
			v, err := s.contracts.GetUnits(c, contractID)
			if err == nil {
				out.Units = v
			}
			return err
		})
	}

	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, err
	}

	stillMissing := map[string]bool{}
	if base != nil {
		for _, name := range base.Missing {
			stillMissing[name] = !requested[name]
		}
	}

	var firstErr error
	for _, name := range allSlices {
		if err, ok := failed[name]; ok {
			out.Missing = append(out.Missing, name)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if stillMissing[name] {
			out.Missing = append(out.Missing, name)
		}
	}
	if base == nil && len(failed) == len(requested) && firstErr != nil {
		span.RecordError(firstErr)
		return nil, firstErr
	}
	return out, nil
}

func (s *DraftService) recordAlert(before *domain.LegalLimitAlert, f *form.Form) {
	after := f.Alert()
	if after == nil || after.Equal(before) {
		return
	}
	s.metrics.RecordLegalAlert(after, string(f.AlertSource()))
}

func (s *DraftService) recordSubmitError(sess *session, err error) {
	var (
		blocked *domain.ErrNotSubmittable
		failed  *domain.ErrSubmissionFailed
	)
	switch {
	case errors.As(err, &blocked):
		s.metrics.IncrSubmission(observability.SubmissionRefused)
	case errors.As(err, &failed):
		s.metrics.IncrSubmission(observability.SubmissionFailed)
		s.metrics.IncrExternalError("amendments")
		s.logger.Error("amendment submission failed",
			zap.String("draft_id", sess.id),
			zap.String("contract_id", sess.wiz.Form().ContractID()),
			zap.Error(err),
		)
	}
}

func (s *DraftService) observe(operation string, start time.Time) {
	s.metrics.RecordRequestDuration(operation, time.Since(start))
}

func (s *DraftService) view(sess *session) *DraftView {
	st := sess.wiz.Form().State()
	return &DraftView{
		State:      st,
		ID:         sess.id,
		Step:       sess.wiz.Step(),
		CanAdvance: sess.wiz.CanAdvance(),
		Blocks:     sess.wiz.Orchestrator().View(st.Draft.SelectedTypes, st.Draft.Blocks, st.Context),
		Submitted:  sess.wiz.Submitted(),
	}
}

func contextKey(contractID string) string {
	return "contract:" + contractID
}

func amendmentID(a *domain.SubmittedAmendment) string {
	if a == nil {
		return ""
	}
	return a.ID
}
