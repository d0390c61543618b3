package holders

import (
	"EventBus/internal/core/ports"

	"github.com/rs/zerolog"
)

// HolderConstructor builds a holder. This allows us to pass dependencies
// from main.go.
type HolderConstructor func(baseLogger *zerolog.Logger) ports.Holder

// Registrar is the part of a bus RegisterAll needs.
type Registrar interface {
	RegisterOrUpdate(h ports.Holder) error
}

// --- The global constructor registry ---
var constructors []HolderConstructor

// Register is called by holders in their init() function.
func Register(constructor HolderConstructor) {
	constructors = append(constructors, constructor)
}

// RegisterAll builds every registered holder and adds it to bus, in
// init() order. It returns the holders it built.
func RegisterAll(bus Registrar, baseLogger *zerolog.Logger) []ports.Holder {
	log := baseLogger.With().Str("component", "holder_registry").Logger()

	built := make([]ports.Holder, 0, len(constructors))
	for _, constructor := range constructors {
		h := constructor(baseLogger)
		if err := bus.RegisterOrUpdate(h); err != nil {
			log.Error().Err(err).Str("holder", h.Type()).Msg("Failed to register holder")
			continue
		}
		built = append(built, h)
	}

	log.Info().Int("holders", len(built)).Msg("Registered all holders")
	return built
}
