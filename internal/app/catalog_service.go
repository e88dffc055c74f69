package app

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"chatrelay/internal/ai"
)

const (
	visionMarker      = "📷"
	maxDescriptionLen = 150
)

var visionKeywords = []string{"vision", "visual", "image", "multimodal", "multi-modal", "vlm"}

type ModelLister interface {
	ListModels(ctx context.Context) ([]ai.Model, error)
}

// ModelDescriptor is the curated client view of an upstream model. Computed
// fresh on every catalog request; never persisted.
type ModelDescriptor struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Description    string     `json:"description"`
	ContextLength  int        `json:"context_length"`
	SupportsVision bool       `json:"supports_vision"`
	Pricing        ai.Pricing `json:"pricing"`
}

type CatalogService struct {
	gateway ModelLister
	tracer  trace.Tracer
}

func NewCatalogService(gateway ModelLister) *CatalogService {
	return &CatalogService{
		gateway: gateway,
		tracer:  otel.Tracer("chatrelay/app"),
	}
}

// ListFreeModels returns the upstream models whose prompt and completion
// prices are both the literal zero-cost marker, in upstream order. Vision
// capable entries get the flag and a camera glyph prefixed to the name.
func (s *CatalogService) ListFreeModels(ctx context.Context) ([]ModelDescriptor, error) {
	ctx, span := s.tracer.Start(ctx, "catalog.list_free_models")
	defer span.End()

	upstream, err := s.gateway.ListModels(ctx)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}

	descriptors := make([]ModelDescriptor, 0, len(upstream))
	for _, m := range upstream {
		// A missing price decodes to "" and fails the check, so a model
		// without declared pricing is never exposed as free.
		if m.Pricing.Prompt != "0" || m.Pricing.Completion != "0" {
			continue
		}

		vision := supportsVision(m)
		name := m.Name
		if vision && !strings.HasPrefix(name, visionMarker) {
			name = visionMarker + " " + name
		}

		descriptors = append(descriptors, ModelDescriptor{
			ID:             m.ID,
			Name:           name,
			Description:    truncateDescription(m.Description),
			ContextLength:  m.ContextLength,
			SupportsVision: vision,
			Pricing:        m.Pricing,
		})
	}

	span.SetAttributes(attribute.Int("free_model_count", len(descriptors)))
	return descriptors, nil
}

func supportsVision(m ai.Model) bool {
	for _, modality := range m.Architecture.InputModalities {
		if modality == "image" {
			return true
		}
	}

	id := strings.ToLower(m.ID)
	name := strings.ToLower(m.Name)
	for _, keyword := range visionKeywords {
		if strings.Contains(id, keyword) || strings.Contains(name, keyword) {
			return true
		}
	}
	return false
}

func truncateDescription(description string) string {
	runes := []rune(description)
	if len(runes) <= maxDescriptionLen {
		return description
	}
	return string(runes[:maxDescriptionLen]) + "..."
}
