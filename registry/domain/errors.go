package domain

import "errors"

// Erros de registro. Implementações devolvem estes valores (normalmente
// embrulhados com o id do slot); use errors.Is para comparar.
var (
	ErrAlreadyExists    = errors.New("slot already exists")
	ErrCapacityExceeded = errors.New("slot capacity exceeded")
	ErrInvalidTier      = errors.New("invalid tier")
	ErrInvalidSlotID    = errors.New("invalid slot id")
)

// IsInvalidArgument agrupa os erros de entrada inválida.
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidTier) || errors.Is(err, ErrInvalidSlotID)
}
