package baiduauth

import "log/slog"

// Option configures the service.
type Option func(*Service)

// WithLogger sets the logger. Default: discard.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}
