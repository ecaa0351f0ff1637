package logging

import (
	"context"

	"github.com/folioforge/go-folio/pkg/interfaces"
)

const (
	rootModule        = "folio"
	formModule        = "folio.form"
	renderModule      = "folio.render"
	lifecycleModule   = "folio.lifecycle"
	persistenceModule = "folio.persistence"
	jobsModule        = "folio.jobs"
	polishModule      = "folio.polish"
	editorModule      = "folio.editor"
	templatesModule   = "folio.templates"
	commandsModule    = "folio.commands"
)

// ModuleLogger returns a module-scoped logger. A nil provider yields a no-op
// logger. The module name is attached as the "module" field.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

func FormLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, formModule)
}

// RenderLogger is used by template compilation and preview sessions.
func RenderLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, renderModule)
}

// LifecycleLogger is used by the portfolio/version/deployment store.
func LifecycleLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, lifecycleModule)
}

func PersistenceLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, persistenceModule)
}

func JobsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, jobsModule)
}

func PolishLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, polishModule)
}

func EditorLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, editorModule)
}

func TemplatesLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, templatesModule)
}

func CommandsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, commandsModule)
}

// NoOp returns a logger that drops every entry.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
