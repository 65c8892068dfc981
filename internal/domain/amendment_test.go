package domain_test

import (
	"testing"

	"github.com/boddenberg/contratos-aditivos-bfa-go/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestBlocks_UnknownKind(t *testing.T) {
	b := domain.Blocks{Term: &domain.TermBlockData{Operation: domain.TermAdd}}

	assert.NotPanics(t, func() {
		assert.False(t, b.Has("prazo"))
		b.Clear("prazo")
	})
	assert.True(t, b.Has(domain.BlockTerm), "an unknown kind leaves the blocks untouched")

	b.Clear(domain.BlockTerm)
	assert.False(t, b.Has(domain.BlockTerm))
}

func TestParseBlockKind(t *testing.T) {
	for _, k := range domain.BlockOrder {
		got, err := domain.ParseBlockKind(string(k))
		assert.NoError(t, err)
		assert.Equal(t, k, got)
	}

	_, err := domain.ParseBlockKind("prazo")
	var ve *domain.ErrValidation
	assert.ErrorAs(t, err, &ve)
}
