package entity

import "time"

// Client representa a un cliente del estudio contable.
type Client struct {
	ID        string
	Name      string
	Email     string
	TaxID     string // CUIT o número de identificación fiscal (puede venir con guiones)
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
