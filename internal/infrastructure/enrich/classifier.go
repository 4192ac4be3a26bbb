// Package enrich contém os colaboradores de enriquecimento de dados: a
// autoclassificação heurística de itens importados e a consulta de dados
// químicos por número CAS.
package enrich

import (
	"strings"

	"github.com/ojsouza/almoxarifado-api/internal/domain/ident"
)

// categorias por palavra-chave (nome normalizado, sem acentos). Primeira
// correspondência vence; a ordem importa: termos mais específicos primeiro.
var categoryRules = []struct {
	keywords []string
	category string
}{
	{[]string{"acido", "hidroxido", "sulfato", "cloreto", "nitrato", "fosfato", "carbonato", "permanganato", "etanol", "metanol", "acetona", "tolueno", "hexano", "cloroformio", "reagente"}, "Reagente"},
	{[]string{"padrao", "certificado", "mrc"}, "Padrão analítico"},
	{[]string{"pipeta", "bureta", "proveta", "becker", "bequer", "erlenmeyer", "balao", "tubo", "placa", "lamina", "laminula", "cubeta", "vidraria"}, "Vidraria"},
	{[]string{"luva", "mascara", "oculos", "avental", "jaleco", "protetor"}, "EPI"},
	{[]string{"papel", "filtro", "membrana", "seringa", "ponteira", "coluna"}, "Consumível"},
	{[]string{"meio", "agar", "caldo", "cultura"}, "Meio de cultura"},
}

// CAS dos reagentes mais comuns do almoxarifado, por nome normalizado.
var casByName = map[string]string{
	"acido sulfurico":    "7664-93-9",
	"acido cloridrico":   "7647-01-0",
	"acido nitrico":      "7697-37-2",
	"acido acetico":      "64-19-7",
	"hidroxido de sodio": "1310-73-2",
	"etanol":             "64-17-5",
	"metanol":            "67-56-1",
	"acetona":            "67-64-1",
	"tolueno":            "108-88-3",
	"cloroformio":        "67-66-3",
	"hexano":             "110-54-3",
	"cloreto de sodio":   "7647-14-5",
}

// Classifier implementa inventory.Classifier com heurísticas locais. Não faz
// rede: sugestões vêm de tabelas embutidas e sempre podem ser sobrescritas
// pelo usuário depois.
type Classifier struct{}

// NewClassifier cria o classificador.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// SuggestCategory sugere uma categoria a partir do nome do item.
// Devolve "Geral" quando nenhuma regra casa.
func (c *Classifier) SuggestCategory(name string) string {
	norm := ident.Normalize(name)
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(norm, kw) {
				return rule.category
			}
		}
	}
	return "Geral"
}

// SuggestCas sugere o número CAS para reagentes conhecidos pelo nome exato
// normalizado. Vazio quando desconhecido (nunca chuta).
func (c *Classifier) SuggestCas(name string) string {
	return casByName[ident.Normalize(name)]
}
