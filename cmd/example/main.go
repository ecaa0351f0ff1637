package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/folioforge/go-folio"
	"github.com/folioforge/go-folio/internal/form"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cfg := folio.DefaultConfig()
	cfg.Features.Logger = true
	cfg.Logging.Level = "info"
	cfg.Preview.Debounce = 0

	if key := strings.TrimSpace(os.Getenv("GEMINI_API_KEY")); key != "" {
		cfg.Features.AI = true
		cfg.AI.Provider = "gemini"
		cfg.AI.APIKey = key
	}
	if dsn := strings.TrimSpace(os.Getenv("FOLIO_DSN")); dsn != "" {
		cfg.Features.Persistence = true
		cfg.Storage.Provider = "bun"
		cfg.Storage.DSN = dsn
		if driver := strings.TrimSpace(os.Getenv("FOLIO_DRIVER")); driver != "" {
			cfg.Storage.Driver = driver
		}
	}
	if dir := strings.TrimSpace(os.Getenv("FOLIO_TEMPLATES_DIR")); dir != "" {
		cfg.Templates.Dir = dir
	}

	module, err := folio.New(cfg)
	if err != nil {
		log.Fatalf("initialise folio: %v", err)
	}
	defer func() {
		if err := module.Close(); err != nil {
			log.Printf("close: %v", err)
		}
	}()

	templateID := "t1"
	if len(os.Args) > 1 {
		templateID = os.Args[1]
	}

	if err := run(ctx, module, templateID); err != nil {
		log.Fatalf("example: %v", err)
	}
}

func run(ctx context.Context, module *folio.Module, templateID string) error {
	ed := module.NewEditor()
	version, err := ed.SelectTemplate(ctx, templateID)
	if err != nil {
		return fmt.Errorf("select template: %w", err)
	}
	fmt.Printf("created draft %s for portfolio %s\n", version.ID, version.PortfolioID)

	suggestion, err := ed.Polish(ctx, form.Top("bio"), "")
	if err != nil {
		return fmt.Errorf("polish bio: %w", err)
	}
	fmt.Printf("bio suggestion: %s\n", suggestion.Polished)
	if err := ed.Accept(suggestion.Path); err != nil {
		return err
	}

	result, err := ed.Save(ctx, "Example Portfolio")
	if err != nil {
		return fmt.Errorf("save: %w", err)
	}
	for _, issue := range result.Issues {
		fmt.Printf("content hint: %s %s\n", issue.Location, issue.Message)
	}

	deployment, err := ed.Publish(ctx, "example")
	if err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	fmt.Printf("deployment %s is %s at %s\n", deployment.ID, deployment.Status, deployment.URL)

	if err := module.Container().Flush(ctx); err != nil {
		return err
	}

	items, stats, err := module.Dashboard(ctx)
	if err != nil {
		return fmt.Errorf("dashboard: %w", err)
	}
	payload, err := json.MarshalIndent(map[string]any{
		"items": items,
		"stats": stats,
	}, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(payload))

	preview := ed.Preview()
	if len(preview) > 240 {
		preview = preview[:240] + "..."
	}
	fmt.Printf("preview:\n%s\n", preview)
	return nil
}
