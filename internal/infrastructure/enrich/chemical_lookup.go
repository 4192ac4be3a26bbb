package enrich

import (
	"context"

	"github.com/ojsouza/almoxarifado-api/internal/domain"
)

// dados químicos embutidos dos reagentes comuns, chaveados por número CAS.
var chemicalByCas = map[string]struct {
	formula string
	mass    string
	hazards []string
}{
	"7664-93-9": {"H2SO4", "98.08", []string{"Corrosivo", "Oxidante"}},
	"7647-01-0": {"HCl", "36.46", []string{"Corrosivo"}},
	"7697-37-2": {"HNO3", "63.01", []string{"Corrosivo", "Oxidante"}},
	"64-19-7":   {"C2H4O2", "60.05", []string{"Corrosivo", "Inflamável"}},
	"1310-73-2": {"NaOH", "40.00", []string{"Corrosivo"}},
	"64-17-5":   {"C2H6O", "46.07", []string{"Inflamável"}},
	"67-56-1":   {"CH4O", "32.04", []string{"Inflamável", "Tóxico"}},
	"67-64-1":   {"C3H6O", "58.08", []string{"Inflamável"}},
	"108-88-3":  {"C7H8", "92.14", []string{"Inflamável", "Tóxico"}},
	"67-66-3":   {"CHCl3", "119.38", []string{"Tóxico"}},
	"110-54-3":  {"C6H14", "86.18", []string{"Inflamável", "Tóxico"}},
	"7647-14-5": {"NaCl", "58.44", nil},
}

// ChemicalLookup implementa inventory.ChemicalLookup com a tabela embutida.
// TODO: consultar o PubChem PUG REST quando o CAS não estiver na tabela.
type ChemicalLookup struct{}

// NewChemicalLookup cria o consultor.
func NewChemicalLookup() *ChemicalLookup {
	return &ChemicalLookup{}
}

// Lookup devolve fórmula, massa molecular e palavras-chave de risco do CAS.
func (l *ChemicalLookup) Lookup(ctx context.Context, casNumber string) (string, string, []string, error) {
	data, ok := chemicalByCas[casNumber]
	if !ok {
		return "", "", nil, domain.ErrNotFound
	}
	return data.formula, data.mass, data.hazards, nil
}
