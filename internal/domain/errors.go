package domain

import "errors"

// Erros de domínio (sem dependências externas).
var (
	ErrNotFound            = errors.New("recurso não encontrado")
	ErrUserNotFound        = errors.New("usuário não encontrado")
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrDuplicate           = errors.New("recurso duplicado")
	ErrUnauthorized        = errors.New("não autorizado")
	ErrForbidden           = errors.New("acesso negado")
	ErrInsufficientStock   = errors.New("estoque insuficiente")
	ErrIntegrity           = errors.New("violação de integridade referencial")
	ErrPendingLocalChanges = errors.New("há operações locais pendentes de sincronização")
	ErrRemoteUnavailable   = errors.New("backend remoto indisponível")
	ErrRemoteNotConfigured = errors.New("backend remoto não configurado")
)
