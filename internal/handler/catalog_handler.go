package handler

import (
	"encoding/json"
	"net/http"

	"github.com/boddenberg/contratos-aditivos-bfa-go/internal/blocks"
	"github.com/boddenberg/contratos-aditivos-bfa-go/internal/calc"
	"github.com/boddenberg/contratos-aditivos-bfa-go/internal/catalog"
	"github.com/boddenberg/contratos-aditivos-bfa-go/internal/domain"
	"github.com/boddenberg/contratos-aditivos-bfa-go/internal/money"

	"go.uber.org/zap"
)

// ============================================================
// Amendment type catalog
// ============================================================

type blocksRequest struct {
	Types []domain.AmendmentType `json:"types"`
}

type blocksResponse struct {
	Mandatory         []domain.BlockKind   `json:"mandatory"`
	Optional          []domain.BlockKind   `json:"optional"`
	Slots             []blocks.Slot        `json:"slots"`
	LegalLimitPercent float64              `json:"legalLimitPercent"`
	LegalLimitType    domain.AmendmentType `json:"legalLimitType,omitempty"`
}

func listTypesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"types": catalog.All()})
	}
}

// resolveBlocksHandler answers which blocks and legal limit apply to a type
// selection. Unknown types are ignored, like everywhere in the catalog.
func resolveBlocksHandler(logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req blocksRequest
		if err := decodeJSON(r, &req, false); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		limit, basis := catalog.LegalLimitFor(req.Types)
		writeJSON(w, http.StatusOK, blocksResponse{
			Mandatory:         catalog.Ordered(catalog.MandatoryBlocks(req.Types)),
			Optional:          catalog.Ordered(catalog.OptionalBlocks(req.Types)),
			Slots:             blocks.Resolve(req.Types),
			LegalLimitPercent: limit,
			LegalLimitType:    basis,
		})
	}
}

// ============================================================
// Calculators (stateless previews)
// ============================================================

// valueCalcRequest accepts amounts as numbers or as Brazilian currency text.
type valueCalcRequest struct {
	Operation         domain.ValueOperation  `json:"operation"`
	BaseValue         json.RawMessage        `json:"baseValue"`
	AdjustmentAmount  json.RawMessage        `json:"adjustmentAmount"`
	AdjustmentPercent json.RawMessage        `json:"adjustmentPercent"`
	NewTotalValue     json.RawMessage        `json:"newTotalValue"`
	Types             []domain.AmendmentType `json:"types"`
	LegalLimitPercent *float64               `json:"legalLimitPercent"`
}

type valueCalcResponse struct {
	calc.ValueResult
	Formatted map[string]string `json:"formatted"`
}

func valueCalcHandler(logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req valueCalcRequest
		if err := decodeJSON(r, &req, false); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		in := calc.ValueInput{
			Operation:         req.Operation,
			Amount:            money.ParseField(req.AdjustmentAmount),
			Percent:           money.ParseField(req.AdjustmentPercent),
			NewTotal:          money.ParseField(req.NewTotalValue),
			LegalLimitPercent: catalog.LegalLimit(req.Types),
		}
		if base := money.ParseField(req.BaseValue); base != nil {
			in.BaseValue = *base
		}
		if req.LegalLimitPercent != nil {
			in.LegalLimitPercent = *req.LegalLimitPercent
		}

		res := calc.Value(in)
		resp := valueCalcResponse{ValueResult: res, Formatted: map[string]string{}}
		if res.Computed {
			resp.Formatted["adjustmentAmount"] = money.Format(res.AdjustmentAmount)
			resp.Formatted["adjustmentPercent"] = money.FormatPercent(res.AdjustmentPercent)
			resp.Formatted["newTotalValue"] = money.Format(res.NewTotalValue)
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func termCalcHandler(logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in calc.TermInput
		if err := decodeJSON(r, &in, false); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		if in.MaxYears == 0 && in.StartDate != "" {
			in.MaxYears = catalog.MaxTermYears
		}
		writeJSON(w, http.StatusOK, calc.Term(in))
	}
}

func unitsCalcHandler(logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in calc.UnitsInput
		if err := decodeJSON(r, &in, false); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, calc.Units(in))
	}
}

type currencyRequest struct {
	Text string `json:"text"`
}

type currencyResponse struct {
	Value     float64 `json:"value"`
	Valid     bool    `json:"valid"`
	Formatted string  `json:"formatted,omitempty"`
}

func parseCurrencyHandler(logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req currencyRequest
		if err := decodeJSON(r, &req, false); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		v, ok := money.Parse(req.Text)
		resp := currencyResponse{Value: v, Valid: ok}
		if ok {
			resp.Formatted = money.Format(v)
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
