package internal

import "github.com/starford/ansuz/internal/chat"

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config *Config
	agent  chat.Agent
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithAgent substitutes the agent client, bypassing the one built from the
// agent config section. Used by tests.
func WithAgent(ag chat.Agent) Option {
	return func(a *application) {
		a.agent = ag
	}
}
