package ident_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/ojsouza/almoxarifado-api/internal/domain/ident"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Ácido Sulfúrico", "acido sulfurico"},
		{"  ETANOL   Absoluto ", "etanol absoluto"},
		{"Química\tBrasil", "quimica brasil"},
		{"", ""},
		{"já normalizado", "ja normalizado"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ident.Normalize(c.in), "Normalize(%q)", c.in)
	}
}

// TestDerivacaoDeterministica: a mesma entidade lógica sempre produz o mesmo
// id, independente de caixa, acentos e espaçamento — é o que torna a
// importação em massa idempotente.
func TestDerivacaoDeterministica(t *testing.T) {
	a := ident.ItemID("SAP-100", "Ácido Clorídrico", "L-01")
	b := ident.ItemID("sap-100", "acido  cloridrico", " l-01 ")
	assert.Equal(t, a, b, "variações de grafia da mesma chave devem colidir")

	assert.Equal(t, ident.CatalogID("S1", "Etanol"), ident.CatalogID("S1", "ETANOL"))
	assert.Equal(t, ident.PartnerID("Química Brasil"), ident.PartnerID("quimica  brasil"))
}

func TestDerivacaoSensivelAoInput(t *testing.T) {
	assert.NotEqual(t, ident.ItemID("S1", "Etanol", "L1"), ident.ItemID("S1", "Etanol", "L2"),
		"lotes diferentes produzem ids diferentes")
	assert.NotEqual(t, ident.CatalogID("S1", "Etanol"), ident.CatalogID("S2", "Etanol"))
}

// Tipos de entidade distintos nunca colidem, mesmo com as mesmas chaves.
func TestPrefixoDeTipoSeparaEntidades(t *testing.T) {
	assert.NotEqual(t, ident.CatalogID("a", "b"), ident.ItemID("a", "b", ""))
	assert.NotEqual(t, ident.PartnerID("a"), ident.SyntheticBatchKey("a", ""))
}

func TestFormatoDoID(t *testing.T) {
	id := ident.LocationID("Almox", "A1", "P2", "3")
	assert.Len(t, id, 24)
	assert.Regexp(t, "^[0-9a-f]{24}$", id, "id é hex minúsculo")
}
