package repository

import "github.com/jdmestudio/contable-api/internal/domain/entity"

// ClientRepository acceso a clientes.
type ClientRepository interface {
	Create(client *entity.Client) error
	GetByID(id string) (*entity.Client, error)
	GetByTaxID(taxID string) (*entity.Client, error)
	List(limit, offset int) ([]*entity.Client, error)
}
