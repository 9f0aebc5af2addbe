package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jdmestudio/contable-api/internal/application/dto"
	"github.com/jdmestudio/contable-api/internal/application/usecase"
	"github.com/jdmestudio/contable-api/internal/domain"
)

// AccountHandler maneja la cuenta corriente de los clientes.
type AccountHandler struct {
	uc *usecase.AccountUseCase
}

// NewAccountHandler construye el handler inyectando el caso de uso.
func NewAccountHandler(uc *usecase.AccountUseCase) *AccountHandler {
	return &AccountHandler{uc: uc}
}

// AddEntry registra un movimiento. POST /api/clients/:id/entries
func (h *AccountHandler) AddEntry(c *fiber.Ctx) error {
	clientID := c.Params("id")
	var in dto.CreateAccountEntryRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.AddEntry(clientID, in)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "cliente no encontrado"})
		case errors.Is(err, domain.ErrInvalidInput):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
		}
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Statement devuelve movimientos y saldo. GET /api/clients/:id/entries
func (h *AccountHandler) Statement(c *fiber.Ctx) error {
	clientID := c.Params("id")
	out, err := h.uc.Statement(clientID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "cliente no encontrado"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}
