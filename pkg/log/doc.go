/*
Package log provides structured logging for Agent Docs using zerolog.

The package wraps a single global zerolog logger configured once at startup.
Components derive child loggers carrying stable identifying fields so that
every line from the API, the event bus, or storage can be filtered by
component, workspace, or document.

# Configuration

Init is called once from the serve command:

	log.Init(log.Config{
		Level:      log.InfoLevel,
		JSONOutput: true,
	})

JSON output is the production format; console output (human-readable,
colorized) is the default for local development.

# Usage

	logger := log.WithComponent("api")
	logger.Info().
		Str("method", "POST").
		Str("path", "/api/v1/workspaces").
		Int("status", 201).
		Dur("duration", elapsed).
		Msg("request completed")

Child helpers:

  - WithComponent: subsystem name ("api", "events", "storage")
  - WithWorkspaceID: per-workspace log context
  - WithDocumentID: per-document log context

# Levels

debug, info, warn, error, mapped from the LOG_LEVEL environment variable.
Unknown values fall back to info.
*/
package log
