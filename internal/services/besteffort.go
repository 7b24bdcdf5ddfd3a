package services

import "github.com/questforge/questforge-backend/pkg/logger"

// BestEffort runs a secondary side effect (reviewer bonus, rank recalc,
// boss damage, cache invalidation) and swallows its failure. The primary
// operation has already committed by the time these run; a failed side
// effect is logged and the caller still sees success.
func BestEffort(name string, fn func() error) {
	if err := fn(); err != nil {
		logger.Warn().Err(err).Str("effect", name).Msg("best-effort side effect failed")
	}
}
