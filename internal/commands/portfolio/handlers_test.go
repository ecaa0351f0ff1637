package portfoliocmd

import (
	"context"
	"errors"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/folioforge/go-folio/internal/commands"
	"github.com/folioforge/go-folio/internal/contentdata"
	"github.com/folioforge/go-folio/internal/lifecycle"
	"github.com/folioforge/go-folio/internal/logging"
)

func newStore(t *testing.T) *lifecycle.Store {
	t.Helper()
	return lifecycle.NewStore()
}

func createVersion(t *testing.T, store *lifecycle.Store, name string) *lifecycle.Version {
	t.Helper()
	var created *lifecycle.Version
	handler := NewCreateVersionHandler(store, commands.CommandLogger(nil, "portfolio"))
	err := handler.Execute(context.Background(), CreateVersionCommand{
		TemplateID: "t1",
		Data:       contentdata.Data{"fullName": "Ada"},
		Name:       name,
		Created:    func(v *lifecycle.Version) { created = v },
	})
	if err != nil {
		t.Fatalf("create version: %v", err)
	}
	if created == nil {
		t.Fatal("expected created callback")
	}
	return created
}

func TestCreateVersionHandler(t *testing.T) {
	store := newStore(t)
	version := createVersion(t, store, "Ada's Site")

	portfolio, err := store.Portfolio(version.PortfolioID)
	if err != nil {
		t.Fatalf("portfolio: %v", err)
	}
	if portfolio.Name != "Ada's Site" {
		t.Fatalf("expected renamed portfolio, got %q", portfolio.Name)
	}
	if version.Status != lifecycle.VersionDraft || version.TemplateID != "t1" {
		t.Fatalf("unexpected version %+v", version)
	}
}

func TestCreateVersionRequiresTemplate(t *testing.T) {
	handler := NewCreateVersionHandler(newStore(t), logging.NoOp())
	err := handler.Execute(context.Background(), CreateVersionCommand{})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSaveVersionHandlerRenames(t *testing.T) {
	store := newStore(t)
	version := createVersion(t, store, "")

	var saved *lifecycle.Version
	handler := NewSaveVersionHandler(store, logging.NoOp())
	err := handler.Execute(context.Background(), SaveVersionCommand{
		VersionID: version.ID,
		Data:      contentdata.Data{"fullName": "Ada Lovelace"},
		Name:      "Analytical",
		Saved:     func(v *lifecycle.Version) { saved = v },
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if saved == nil || saved.Data["fullName"] != "Ada Lovelace" {
		t.Fatalf("unexpected saved version %+v", saved)
	}
	portfolio, _ := store.Portfolio(version.PortfolioID)
	if portfolio.Name != "Analytical" {
		t.Fatalf("expected rename, got %q", portfolio.Name)
	}

	missing := handler.Execute(context.Background(), SaveVersionCommand{VersionID: uuid.New()})
	if !lifecycle.IsNotFound(missing) {
		t.Fatalf("expected not found, got %v", missing)
	}
}

func TestPublishVersionHandler(t *testing.T) {
	store := newStore(t)
	version := createVersion(t, store, "")

	var deployment *lifecycle.Deployment
	handler := NewPublishVersionHandler(store, FeatureGates{}, logging.NoOp())
	if err := handler.Execute(context.Background(), PublishVersionCommand{
		VersionID:   version.ID,
		TriggeredBy: "ada",
		Published:   func(d *lifecycle.Deployment) { deployment = d },
	}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if deployment == nil || deployment.Status != lifecycle.DeploymentReady || deployment.TriggeredBy != "ada" {
		t.Fatalf("unexpected deployment %+v", deployment)
	}

	disabled := NewPublishVersionHandler(store, FeatureGates{PublishingEnabled: func() bool { return false }}, logging.NoOp())
	err := disabled.Execute(context.Background(), PublishVersionCommand{VersionID: version.ID})
	if !errors.Is(err, ErrPublishingDisabled) {
		t.Fatalf("expected ErrPublishingDisabled, got %v", err)
	}
	if got := len(store.Deployments(version.ID)); got != 1 {
		t.Fatalf("expected a single deployment, got %d", got)
	}
}

func TestDeletePortfolioRequiresForceWhenPublished(t *testing.T) {
	store := newStore(t)
	version := createVersion(t, store, "")
	if _, err := store.Publish(context.Background(), version.ID, ""); err != nil {
		t.Fatalf("publish: %v", err)
	}

	handler := NewDeletePortfolioHandler(store, logging.NoOp())
	err := handler.Execute(context.Background(), DeletePortfolioCommand{PortfolioID: version.PortfolioID})
	if !errors.Is(err, ErrPortfolioPublished) {
		t.Fatalf("expected ErrPortfolioPublished, got %v", err)
	}
	if _, err := store.Portfolio(version.PortfolioID); err != nil {
		t.Fatalf("portfolio should survive: %v", err)
	}

	if err := handler.Execute(context.Background(), DeletePortfolioCommand{PortfolioID: version.PortfolioID, Force: true}); err != nil {
		t.Fatalf("forced delete: %v", err)
	}
	if _, err := store.Portfolio(version.PortfolioID); !lifecycle.IsNotFound(err) {
		t.Fatalf("expected portfolio gone, got %v", err)
	}
	if len(store.Deployments(version.ID)) != 0 {
		t.Fatal("expected deployments removed")
	}
}

func TestDeleteDraftPortfolioWithoutForce(t *testing.T) {
	store := newStore(t)
	version := createVersion(t, store, "")

	handler := NewDeletePortfolioHandler(store, logging.NoOp())
	if err := handler.Execute(context.Background(), DeletePortfolioCommand{PortfolioID: version.PortfolioID}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(store.ListPortfolios()) != 0 {
		t.Fatal("expected no portfolios")
	}
}

func TestRenamePortfolioValidation(t *testing.T) {
	handler := NewRenamePortfolioHandler(newStore(t), logging.NoOp())
	err := handler.Execute(context.Background(), RenamePortfolioCommand{PortfolioID: uuid.New()})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateDeploymentHandler(t *testing.T) {
	store := newStore(t)
	version := createVersion(t, store, "")
	deployment, err := store.Publish(context.Background(), version.ID, "")
	if err != nil {
		t.Fatalf("publish: %v", err)
	}

	handler := NewUpdateDeploymentHandler(store, logging.NoOp())
	if err := handler.Execute(context.Background(), UpdateDeploymentCommand{
		DeploymentID:         deployment.ID,
		Status:               lifecycle.DeploymentError,
		ProviderDeploymentID: "dpl_123",
	}); err != nil {
		t.Fatalf("update: %v", err)
	}
	updated, _ := store.Deployment(deployment.ID)
	if updated.Status != lifecycle.DeploymentError || updated.ProviderDeploymentID != "dpl_123" {
		t.Fatalf("unexpected deployment %+v", updated)
	}

	invalid := handler.Execute(context.Background(), UpdateDeploymentCommand{DeploymentID: deployment.ID, Status: "exploded"})
	if !goerrors.IsCategory(invalid, goerrors.CategoryValidation) {
		t.Fatalf("expected validation error, got %v", invalid)
	}
}
