package pokeapi

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when the API reports 404 for a record.
var ErrNotFound = errors.New("pokeapi: not found")

// ValidationError rejects a request before any tier or network call.
type ValidationError struct {
	Field string
	Value int
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("pokeapi: invalid %s %d: %s", e.Field, e.Value, e.Msg)
}

// ValidatePokemonID checks an ID against the known Pokédex range.
func ValidatePokemonID(id int) error {
	if id < 1 || id > MaxPokemonID {
		return &ValidationError{
			Field: "pokemon id",
			Value: id,
			Msg:   fmt.Sprintf("must be between 1 and %d", MaxPokemonID),
		}
	}
	return nil
}

// ValidateGeneration checks a generation number.
func ValidateGeneration(gen int) error {
	if gen < 1 || gen > MaxGeneration {
		return &ValidationError{
			Field: "generation",
			Value: gen,
			Msg:   fmt.Sprintf("must be between 1 and %d", MaxGeneration),
		}
	}
	return nil
}
