package config

import (
	"log/slog"

	"github.com/urfave/cli/v3"
)

// Server holds HTTP server configuration
type Server struct {
	Addr          string
	SpamThreshold float64
}

// Flags returns CLI flags for Server configuration
func (s *Server) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "Server address",
			Category:    "Server",
			Value:       "localhost:8080",
			Sources:     cli.EnvVars("PULSE_ADDR"),
			Destination: &s.Addr,
		},
		&cli.FloatFlag{
			Name:        "spam-threshold",
			Usage:       "Spam confidence at or above which a report is discarded",
			Category:    "Server",
			Value:       0.8,
			Sources:     cli.EnvVars("PULSE_SPAM_THRESHOLD"),
			Destination: &s.SpamThreshold,
		},
	}
}

// LogValue returns structured log value
func (s Server) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("addr", s.Addr),
		slog.Float64("spamThreshold", s.SpamThreshold),
	)
}
