package entity

import "time"

// BusinessPartner é um fornecedor ou contraparte, deduplicado por nome
// normalizado durante a importação.
type BusinessPartner struct {
	ID             string
	Name           string
	NormalizedName string // chave de deduplicação (minúsculas, sem acentos, espaços colapsados)
	Kind           string // SUPPLIER por padrão
	CreatedAt      time.Time
}
