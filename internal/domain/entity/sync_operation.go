package entity

import (
	"encoding/json"
	"time"
)

// Ações remotas enfileiráveis (protocolo do backend remoto).
const (
	SyncActionUpsertItem  = "upsert_item"
	SyncActionDeleteItem  = "delete_item"
	SyncActionLogMovement = "log_movement"
)

// SyncOperation é uma operação pendente de replicação remota, persistida em
// fila FIFO durável (outbox). RetryCount cresce a cada falha; ao atingir o
// máximo a operação é descartada.
type SyncOperation struct {
	ID         int64
	Action     string
	Payload    json.RawMessage
	RetryCount int
	LastError  string
	CreatedAt  time.Time
}
