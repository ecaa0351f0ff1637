package commands

import (
	"strings"

	"github.com/folioforge/go-folio/internal/logging"
	"github.com/folioforge/go-folio/pkg/interfaces"
)

const commandModuleRoot = "folio.commands"

// CommandLogger returns a module-scoped logger for command handlers, enriching it with
// the component and module fields every command entry carries. An empty module
// yields the shared commands logger.
func CommandLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	name := strings.TrimSpace(module)
	logger := logging.CommandsLogger(provider)
	if name != "" {
		logger = logging.ModuleLogger(provider, commandModuleRoot+"."+name)
	} else {
		name = "core"
	}
	return logging.WithFields(logger, map[string]any{
		"component":      "command",
		"command_module": name,
	})
}
