package entity

import "time"

// Papéis válidos de User.
const (
	RoleAdmin      = "admin"
	RoleAlmoxarife = "almoxarife"
	RoleConsulta   = "consulta"
)

// User representa um usuário do sistema.
type User struct {
	ID           string
	Email        string
	PasswordHash string // hash bcrypt, nunca plano no domínio após persistir
	Name         string
	Role         string // admin, almoxarife, consulta
	Status       string // active, inactive
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
