// Package ident deriva identificadores determinísticos a partir de chaves de
// negócio normalizadas. Reimportar a mesma entidade lógica produz o mesmo id,
// o que torna a importação em massa idempotente.
// Algoritmo: SHA-256 sobre a concatenação das chaves normalizadas, separadas
// por "|", com um prefixo de tipo para evitar colisões entre entidades.
package ident

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// tamanho do id em caracteres hex (96 bits; colisão impraticável nesse volume).
const idLen = 24

var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize devolve a chave de negócio normalizada: minúsculas, sem acentos,
// espaços colapsados. É a forma canônica usada em toda derivação de id e na
// deduplicação de fornecedores.
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if out, _, err := transform.String(stripAccents, s); err == nil {
		s = out
	}
	return strings.Join(strings.Fields(s), " ")
}

func derive(kind string, keys ...string) string {
	parts := make([]string, 0, len(keys)+1)
	parts = append(parts, kind)
	for _, k := range keys {
		parts = append(parts, Normalize(k))
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])[:idLen]
}

// CatalogID deriva o id de um CatalogProduct a partir de código SAP e nome.
func CatalogID(sapCode, name string) string {
	return derive("catalog", sapCode, name)
}

// BatchID deriva o id de um InventoryBatch a partir do catálogo e do lote.
func BatchID(catalogID, lot string) string {
	return derive("batch", catalogID, lot)
}

// ItemID deriva o id de um InventoryItem (snapshot) a partir de código SAP,
// nome e lote — a mesma linha lógica colide no reimporte, habilitando o merge.
func ItemID(sapCode, name, lot string) string {
	return derive("item", sapCode, name, lot)
}

// LocationID deriva o id de um StorageLocation a partir do caminho estruturado.
func LocationID(warehouse, cabinet, shelf, position string) string {
	return derive("location", warehouse, cabinet, shelf, position)
}

// PartnerID deriva o id de um BusinessPartner a partir do nome normalizado.
func PartnerID(name string) string {
	return derive("partner", name)
}

// SyntheticBatchKey devolve a chave de agrupamento usada pelo auditor quando a
// linha de snapshot não tem BatchID (dados legados): derivada de sapCode+nome,
// determinística para que linhas irmãs caiam no mesmo grupo.
func SyntheticBatchKey(sapCode, name string) string {
	return derive("legacy-batch", sapCode, name)
}
