package soloist

import (
	"log/slog"

	"github.com/Lomet/soloist/internal/logging"
)

// NewSlogLogger wraps an slog.Logger as a soloist Logger.
//
// Parameters:
//   - logger: Underlying slog.Logger; nil uses slog.Default()
//
// Returns:
//   - Logger: Logger to pass via WithLogger
//
// Example:
//
//	handler := slog.NewTextHandler(os.Stdout, nil)
//	p, err := soloist.NewParticipant(&cfg, store,
//	    soloist.WithLogger(soloist.NewSlogLogger(slog.New(handler))),
//	)
func NewSlogLogger(logger *slog.Logger) Logger {
	if logger == nil {
		return logging.NewSlogDefault()
	}

	return logging.NewSlog(logger)
}
