package services_test

import (
	"context"
	"testing"

	"vouch/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithAuditID(ctx, "VCH-1")
	ctx = services.WithStage(ctx, "upload")
	ctx = services.WithRequestID(ctx, "req-123")

	if id, ok := services.AuditIDFromContext(ctx); !ok || id != "VCH-1" {
		t.Fatalf("unexpected audit id: %v %v", id, ok)
	}
	if stage, ok := services.StageFromContext(ctx); !ok || stage != "upload" {
		t.Fatalf("unexpected stage: %v %v", stage, ok)
	}
	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
}

func TestStageBlankPreservesContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithStage(ctx, "")
	if _, ok := services.StageFromContext(ctx); ok {
		t.Fatal("expected no stage value")
	}
}
