package repository

import (
	"context"

	"github.com/ojsouza/almoxarifado-api/internal/domain/entity"
)

// UserRepository acesso a usuários.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByID(ctx context.Context, id string) (*entity.User, error)
}
