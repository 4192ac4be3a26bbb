package entity

import (
	"strings"
	"time"
)

// StorageLocation é um local físico de armazenamento, endereçável como caminho
// estruturado (almoxarifado/sala/armário/prateleira) e como string plana para
// exibição legada.
type StorageLocation struct {
	ID        string
	Warehouse string // almoxarifado ou sala
	Cabinet   string
	Shelf     string
	Position  string
	CreatedAt time.Time
}

// FullPath devolve o caminho plano do local ("Almox A > Armário 2 > Prateleira 3").
func (l StorageLocation) FullPath() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{l.Warehouse, l.Cabinet, l.Shelf, l.Position} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return "Não informado"
	}
	return strings.Join(parts, " > ")
}
