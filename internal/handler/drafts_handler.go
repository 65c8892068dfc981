package handler

import (
	"encoding/json"
	"net/http"

	"github.com/boddenberg/contratos-aditivos-bfa-go/internal/domain"
	"github.com/boddenberg/contratos-aditivos-bfa-go/internal/form"
	"github.com/boddenberg/contratos-aditivos-bfa-go/internal/money"
	"github.com/boddenberg/contratos-aditivos-bfa-go/internal/service"
	"github.com/boddenberg/contratos-aditivos-bfa-go/internal/wizard"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Request DTOs
// ============================================================

// valueBlockRequest is the value block as sent by the UI; amounts may be
// numbers or Brazilian currency text ("R$ 1.234,56").
type valueBlockRequest struct {
	Operation         domain.ValueOperation `json:"operation"`
	AdjustmentAmount  json.RawMessage       `json:"adjustmentAmount"`
	AdjustmentPercent json.RawMessage       `json:"adjustmentPercent"`
	NewTotalValue     json.RawMessage       `json:"newTotalValue"`
	AutoCalculated    bool                  `json:"autoCalculated"`
	Notes             string                `json:"notes"`
}

func (v *valueBlockRequest) toDomain() *domain.ValueBlockData {
	if v == nil {
		return nil
	}
	return &domain.ValueBlockData{
		Operation:         v.Operation,
		AdjustmentAmount:  money.ParseField(v.AdjustmentAmount),
		AdjustmentPercent: money.ParseField(v.AdjustmentPercent),
		NewTotalValue:     money.ParseField(v.NewTotalValue),
		AutoCalculated:    v.AutoCalculated,
		Notes:             v.Notes,
	}
}

type blocksPatchRequest struct {
	Clauses   *domain.ClausesBlockData   `json:"clauses"`
	Term      *domain.TermBlockData      `json:"term"`
	Value     *valueBlockRequest         `json:"value"`
	Suppliers *domain.SuppliersBlockData `json:"suppliers"`
	Units     *domain.UnitsBlockData     `json:"units"`
	Remove    []domain.BlockKind         `json:"remove"`
}

type patchRequest struct {
	SelectedTypes *[]domain.AmendmentType `json:"selectedTypes"`
	BasicInfo     *form.BasicInfoPatch    `json:"basicInfo"`
	EffectiveDate *string                 `json:"effectiveDate"`
	Blocks        *blocksPatchRequest     `json:"blocks"`
}

func (p patchRequest) toPatch() form.Patch {
	out := form.Patch{
		SelectedTypes: p.SelectedTypes,
		BasicInfo:     p.BasicInfo,
		EffectiveDate: p.EffectiveDate,
	}
	if b := p.Blocks; b != nil {
		out.Blocks = &form.BlocksPatch{
			Clauses:   b.Clauses,
			Term:      b.Term,
			Value:     b.Value.toDomain(),
			Suppliers: b.Suppliers,
			Units:     b.Units,
			Remove:    b.Remove,
		}
	}
	return out
}

type createDraftRequest struct {
	Initial *patchRequest `json:"initialDraft"`
}

type confirmRequest struct {
	Justification string `json:"justification"`
}

type cancelRequest struct {
	ResetDraft bool `json:"resetDraft"`
}

// ============================================================
// Draft session handlers
// ============================================================

func createDraftHandler(svc *service.DraftService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/contracts/{contractId}/amendments/drafts")
		defer span.End()

		contractID := chi.URLParam(r, "contractId")
		span.SetAttributes(attribute.String("contract.id", contractID))

		var req createDraftRequest
		if err := decodeJSON(r, &req, true); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		var initial *domain.AmendmentDraft
		if req.Initial != nil {
			seed := form.New(contractID, nil)
			if err := seed.Apply(req.Initial.toPatch()); err != nil {
				handleServiceError(w, err, logger)
				return
			}
			d := seed.Draft()
			initial = &d
		}

		view, err := svc.Create(ctx, UserIDFromContext(ctx), contractID, initial)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.Header().Set("Location", "/v1/drafts/"+view.ID)
		writeJSON(w, http.StatusCreated, view)
	}
}

func getDraftHandler(svc *service.DraftService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/drafts/{draftId}")
		defer span.End()

		view, err := svc.Get(ctx, UserIDFromContext(ctx), chi.URLParam(r, "draftId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

func patchDraftHandler(svc *service.DraftService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PATCH /v1/drafts/{draftId}")
		defer span.End()

		var req patchRequest
		if err := decodeJSON(r, &req, false); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		view, err := svc.Patch(ctx, UserIDFromContext(ctx), chi.URLParam(r, "draftId"), req.toPatch())
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

// putBlockHandler replaces one block. The body is the block payload itself.
func putBlockHandler(svc *service.DraftService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/drafts/{draftId}/blocks/{block}")
		defer span.End()

		kind, err := domain.ParseBlockKind(chi.URLParam(r, "block"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		span.SetAttributes(attribute.String("block.kind", string(kind)))

		var data any
		switch kind {
		case domain.BlockClauses:
			data, err = decodeBlock[domain.ClausesBlockData](r)
		case domain.BlockTerm:
			data, err = decodeBlock[domain.TermBlockData](r)
		case domain.BlockSuppliers:
			data, err = decodeBlock[domain.SuppliersBlockData](r)
		case domain.BlockUnits:
			data, err = decodeBlock[domain.UnitsBlockData](r)
		case domain.BlockValue:
			var v *valueBlockRequest
			v, err = decodeBlock[valueBlockRequest](r)
			data = v.toDomain()
		}
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		view, err := svc.UpdateBlock(ctx, UserIDFromContext(ctx), chi.URLParam(r, "draftId"), kind, data)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

func decodeBlock[T any](r *http.Request) (*T, error) {
	var v T
	if err := decodeJSON(r, &v, false); err != nil {
		return nil, err
	}
	return &v, nil
}

func toggleBlockHandler(svc *service.DraftService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/drafts/{draftId}/blocks/{block}/toggle")
		defer span.End()

		kind, err := domain.ParseBlockKind(chi.URLParam(r, "block"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		view, err := svc.ToggleBlock(ctx, UserIDFromContext(ctx), chi.URLParam(r, "draftId"), kind)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

func stepHandler(svc *service.DraftService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/drafts/{draftId}/steps/{step}")
		defer span.End()

		owner := UserIDFromContext(ctx)
		draftID := chi.URLParam(r, "draftId")
		step := chi.URLParam(r, "step")
		span.SetAttributes(attribute.String("wizard.step", step))

		var (
			view *service.DraftView
			err  error
		)
		switch step {
		case "next":
			view, err = svc.Next(ctx, owner, draftID)
		case "back":
			view, err = svc.Back(ctx, owner, draftID)
		default:
			var target wizard.Step
			if target, err = wizard.ParseStep(step); err == nil {
				view, err = svc.GoTo(ctx, owner, draftID, target)
			}
		}
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

func reviewHandler(svc *service.DraftService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/drafts/{draftId}/review")
		defer span.End()

		review, err := svc.Review(ctx, UserIDFromContext(ctx), chi.URLParam(r, "draftId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, review)
	}
}

func refreshContextHandler(svc *service.DraftService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/drafts/{draftId}/context/refresh")
		defer span.End()

		view, err := svc.RefreshContext(ctx, UserIDFromContext(ctx), chi.URLParam(r, "draftId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

// submitHandler answers 201 when the amendment was created and 202 when the
// API parked it behind a legal-limit alert that needs confirmation.
func submitHandler(svc *service.DraftService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/drafts/{draftId}/submit")
		defer span.End()

		out, err := svc.Submit(ctx, UserIDFromContext(ctx), chi.URLParam(r, "draftId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		status := http.StatusCreated
		if out.Result.Alert != nil {
			status = http.StatusAccepted
		}
		writeJSON(w, status, out)
	}
}

func confirmHandler(svc *service.DraftService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/drafts/{draftId}/confirm")
		defer span.End()

		var req confirmRequest
		if err := decodeJSON(r, &req, false); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		view, err := svc.Confirm(ctx, UserIDFromContext(ctx), chi.URLParam(r, "draftId"), req.Justification)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

func cancelHandler(svc *service.DraftService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/drafts/{draftId}/cancel")
		defer span.End()

		var req cancelRequest
		if err := decodeJSON(r, &req, true); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		view, err := svc.Cancel(ctx, UserIDFromContext(ctx), chi.URLParam(r, "draftId"), req.ResetDraft)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

func resetHandler(svc *service.DraftService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/drafts/{draftId}/reset")
		defer span.End()

		view, err := svc.Reset(ctx, UserIDFromContext(ctx), chi.URLParam(r, "draftId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

func deleteDraftHandler(svc *service.DraftService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/drafts/{draftId}")
		defer span.End()

		draftID := chi.URLParam(r, "draftId")
		if err := svc.Delete(ctx, UserIDFromContext(ctx), draftID); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, domain.SuccessResponse{Message: "rascunho descartado", ID: draftID})
	}
}
