// Package catalog is the static rule table of amendment types: which blocks
// each type requires or allows and which legal percentage limit applies.
package catalog

import (
	"github.com/boddenberg/contratos-aditivos-bfa-go/internal/domain"

	mapset "github.com/deckarep/golang-set/v2"
)

// MaxTermYears is the longest total validity a continuous-service contract may
// reach through term amendments (Lei 14.133/2021, art. 107).
const MaxTermYears = 10

// AmendmentTypeConfig describes one amendment type.
type AmendmentTypeConfig struct {
	Type              domain.AmendmentType `json:"type"`
	Label             string               `json:"label"`
	Description       string               `json:"description"`
	Icon              string               `json:"icon"`
	Color             string               `json:"color"`
	LegalLimitPercent float64              `json:"legalLimitPercent,omitempty"`
	LegalBasis        string               `json:"legalBasis,omitempty"`
	Examples          []string             `json:"examples"`
	Mandatory         []domain.BlockKind   `json:"mandatoryBlocks"`
	Optional          []domain.BlockKind   `json:"optionalBlocks"`
}

const (
	basisQuantitative = "Lei 14.133/2021, art. 125: acréscimos ou supressões de até 25% do valor inicial atualizado do contrato."
	basisRenovation   = "Lei 14.133/2021, art. 125: no caso de reforma de edifício ou equipamento, acréscimos de até 50%."
)

var configs = []AmendmentTypeConfig{
	{
		Type:        domain.AmendmentTermExtension,
		Label:       "Aditivo de Prazo",
		Description: "Prorrogação ou redução da vigência do contrato.",
		Icon:        "calendar-clock",
		Color:       "blue",
		Examples:    []string{"Prorrogação por mais 12 meses", "Antecipação do término em 30 dias"},
		Mandatory:   []domain.BlockKind{domain.BlockTerm},
		Optional:    []domain.BlockKind{domain.BlockClauses, domain.BlockValue},
	},
	{
		Type:              domain.AmendmentQuantityIncrease,
		Label:             "Aditivo de Quantidade",
		Description:       "Acréscimo quantitativo do objeto contratado.",
		Icon:              "trending-up",
		Color:             "green",
		LegalLimitPercent: 25,
		LegalBasis:        basisQuantitative,
		Examples:          []string{"Ampliação de 10% dos atendimentos", "Inclusão de novos leitos"},
		Mandatory:         []domain.BlockKind{domain.BlockValue},
		Optional:          []domain.BlockKind{domain.BlockUnits, domain.BlockClauses},
	},
	{
		Type:              domain.AmendmentQualitativeChange,
		Label:             "Aditivo Qualitativo",
		Description:       "Modificação do projeto ou das especificações para melhor adequação técnica.",
		Icon:              "sliders",
		Color:             "purple",
		LegalLimitPercent: 25,
		LegalBasis:        basisQuantitative,
		Examples:          []string{"Alteração de especificação de exames", "Troca de tecnologia de equipamento"},
		Mandatory:         []domain.BlockKind{domain.BlockClauses},
		Optional:          []domain.BlockKind{domain.BlockValue},
	},
	{
		Type:              domain.AmendmentQuantityReduction,
		Label:             "Supressão",
		Description:       "Redução quantitativa do objeto contratado.",
		Icon:              "trending-down",
		Color:             "orange",
		LegalLimitPercent: 25,
		LegalBasis:        basisQuantitative,
		Examples:          []string{"Redução de 15% dos plantões"},
		Mandatory:         []domain.BlockKind{domain.BlockValue},
		Optional:          []domain.BlockKind{domain.BlockUnits, domain.BlockClauses},
	},
	{
		Type:        domain.AmendmentReadjustment,
		Label:       "Reajuste",
		Description: "Atualização de preços por índice previsto em contrato.",
		Icon:        "percent",
		Color:       "teal",
		Examples:    []string{"Reajuste anual pelo IPCA"},
		Mandatory:   []domain.BlockKind{domain.BlockValue},
	},
	{
		Type:        domain.AmendmentRepactuation,
		Label:       "Repactuação",
		Description: "Revisão de custos de mão de obra por convenção coletiva.",
		Icon:        "users",
		Color:       "cyan",
		Examples:    []string{"Nova convenção coletiva da categoria"},
		Mandatory:   []domain.BlockKind{domain.BlockValue},
		Optional:    []domain.BlockKind{domain.BlockClauses},
	},
	{
		Type:        domain.AmendmentRebalancing,
		Label:       "Reequilíbrio Econômico-Financeiro",
		Description: "Recomposição do equilíbrio por fato imprevisível.",
		Icon:        "scale",
		Color:       "indigo",
		Examples:    []string{"Alta extraordinária de insumos"},
		Mandatory:   []domain.BlockKind{domain.BlockValue},
		Optional:    []domain.BlockKind{domain.BlockClauses},
	},
	{
		Type:        domain.AmendmentApostille,
		Label:       "Apostilamento",
		Description: "Registro de alterações que dispensam termo aditivo.",
		Icon:        "file-signature",
		Color:       "gray",
		Examples:    []string{"Atualização de dotação orçamentária", "Correção de dados cadastrais"},
		Optional:    []domain.BlockKind{domain.BlockValue, domain.BlockClauses},
	},
	{
		Type:        domain.AmendmentSupplierChange,
		Label:       "Alteração de Fornecedor",
		Description: "Inclusão, exclusão ou substituição de empresas contratadas.",
		Icon:        "building",
		Color:       "amber",
		Examples:    []string{"Cisão da contratada", "Substituição do fornecedor principal"},
		Mandatory:   []domain.BlockKind{domain.BlockSuppliers},
		Optional:    []domain.BlockKind{domain.BlockClauses},
	},
	{
		Type:        domain.AmendmentUnitsChange,
		Label:       "Alteração de Unidades",
		Description: "Vinculação ou desvinculação de unidades de saúde atendidas.",
		Icon:        "hospital",
		Color:       "rose",
		Examples:    []string{"Inclusão de nova UBS", "Desvinculação de unidade desativada"},
		Mandatory:   []domain.BlockKind{domain.BlockUnits},
	},
	{
		Type:        domain.AmendmentClausesChange,
		Label:       "Alteração de Cláusulas",
		Description: "Inclusão, exclusão ou nova redação de cláusulas contratuais.",
		Icon:        "file-text",
		Color:       "slate",
		Examples:    []string{"Nova redação da cláusula de fiscalização"},
		Mandatory:   []domain.BlockKind{domain.BlockClauses},
	},
	{
		Type:        domain.AmendmentSuspension,
		Label:       "Suspensão",
		Description: "Suspensão da execução por prazo determinado ou indeterminado.",
		Icon:        "pause",
		Color:       "red",
		Examples:    []string{"Suspensão por obras na unidade"},
		Mandatory:   []domain.BlockKind{domain.BlockTerm},
		Optional:    []domain.BlockKind{domain.BlockClauses},
	},
	{
		Type:              domain.AmendmentRenovationIncrease,
		Label:             "Aditivo de Reforma",
		Description:       "Acréscimo em contrato de reforma de edifício ou equipamento.",
		Icon:              "hammer",
		Color:             "lime",
		LegalLimitPercent: 50,
		LegalBasis:        basisRenovation,
		Examples:          []string{"Ampliação da reforma do pronto-socorro"},
		Mandatory:         []domain.BlockKind{domain.BlockValue},
		Optional:          []domain.BlockKind{domain.BlockClauses},
	},
}

var byType = func() map[domain.AmendmentType]int {
	m := make(map[domain.AmendmentType]int, len(configs))
	for i, c := range configs {
		m[c.Type] = i
	}
	return m
}()

// Config returns the configuration of an amendment type.
func Config(t domain.AmendmentType) (AmendmentTypeConfig, bool) {
	i, ok := byType[t]
	if !ok {
		return AmendmentTypeConfig{}, false
	}
	return copyConfig(configs[i]), true
}

// All returns every amendment type configuration in display order.
func All() []AmendmentTypeConfig {
	out := make([]AmendmentTypeConfig, 0, len(configs))
	for _, c := range configs {
		out = append(out, copyConfig(c))
	}
	return out
}

// Known reports whether t is a catalog key.
func Known(t domain.AmendmentType) bool {
	_, ok := byType[t]
	return ok
}

// MandatoryBlocks returns the union of blocks required by the selected types.
func MandatoryBlocks(types []domain.AmendmentType) mapset.Set[domain.BlockKind] {
	set := mapset.NewThreadUnsafeSet[domain.BlockKind]()
	for _, t := range types {
		if i, ok := byType[t]; ok {
			set.Append(configs[i].Mandatory...)
		}
	}
	return set
}

// OptionalBlocks returns the blocks allowed by the selected types that no
// selected type makes mandatory.
func OptionalBlocks(types []domain.AmendmentType) mapset.Set[domain.BlockKind] {
	set := mapset.NewThreadUnsafeSet[domain.BlockKind]()
	for _, t := range types {
		if i, ok := byType[t]; ok {
			set.Append(configs[i].Optional...)
		}
	}
	return set.Difference(MandatoryBlocks(types))
}

// LegalLimit returns the most restrictive non-zero legal limit among the
// selected types, or 0 when none applies.
func LegalLimit(types []domain.AmendmentType) float64 {
	limit, _ := LegalLimitFor(types)
	return limit
}

// LegalLimitFor is LegalLimit also returning the type that defines the limit.
func LegalLimitFor(types []domain.AmendmentType) (float64, domain.AmendmentType) {
	var (
		limit float64
		basis domain.AmendmentType
	)
	for _, t := range types {
		i, ok := byType[t]
		if !ok {
			continue
		}
		l := configs[i].LegalLimitPercent
		if l > 0 && (limit == 0 || l < limit) {
			limit, basis = l, t
		}
	}
	return limit, basis
}

// Ordered lists the kinds of a set in display order.
func Ordered(set mapset.Set[domain.BlockKind]) []domain.BlockKind {
	out := make([]domain.BlockKind, 0, set.Cardinality())
	for _, k := range domain.BlockOrder {
		if set.Contains(k) {
			out = append(out, k)
		}
	}
	return out
}

func copyConfig(c AmendmentTypeConfig) AmendmentTypeConfig {
	c.Examples = append([]string(nil), c.Examples...)
	c.Mandatory = append([]domain.BlockKind(nil), c.Mandatory...)
	c.Optional = append([]domain.BlockKind(nil), c.Optional...)
	return c
}
