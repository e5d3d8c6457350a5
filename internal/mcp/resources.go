// ABOUTME: MCP resource implementations for BMI history and reference bands.
// ABOUTME: Provides bmi://history/adults, bmi://history/minors and bmi://bands.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/harperreed/bmi/internal/classify"
	"github.com/harperreed/bmi/internal/render"
	"github.com/harperreed/bmi/internal/scale"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	uriAdultHistory = "bmi://history/adults"
	uriMinorHistory = "bmi://history/minors"
	uriBands        = "bmi://bands"

	resourceHistoryLimit = 50
)

func (s *Server) registerResources() {
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         uriAdultHistory,
		Name:        "Adult BMI History",
		Description: "Saved adult BMI measurements, most recent first, with a trend sparkline",
		MIMEType:    "application/json",
	}, s.handleAdultHistoryResource)

	s.mcpServer.AddResource(&mcp.Resource{
		URI:         uriMinorHistory,
		Name:        "Minor BMI-for-age History",
		Description: "Saved BMI-for-age percentile measurements, most recent first",
		MIMEType:    "application/json",
	}, s.handleMinorHistoryResource)

	s.mcpServer.AddResource(&mcp.Resource{
		URI:         uriBands,
		Name:        "Interpretation Bands",
		Description: "Adult BMI and minor percentile bands with their display ranges",
		MIMEType:    "application/json",
	}, s.handleBandsResource)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

func (s *Server) handleAdultHistoryResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	adults, err := s.repo.ListAdultHistory(resourceHistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list adults: %w", err)
	}

	// Sparkline reads oldest first.
	values := make([]float64, len(adults))
	for i, m := range adults {
		values[len(adults)-1-i] = m.BMI
	}

	return jsonResource(uriAdultHistory, map[string]interface{}{
		"generated_at": time.Now().Format(time.RFC3339),
		"count":        len(adults),
		"trend":        render.Sparkline(values),
		"measurements": adults,
	})
}

func (s *Server) handleMinorHistoryResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	minors, err := s.repo.ListMinorHistory(resourceHistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list minors: %w", err)
	}

	values := make([]float64, len(minors))
	for i, m := range minors {
		values[len(minors)-1-i] = m.Percentile
	}

	return jsonResource(uriMinorHistory, map[string]interface{}{
		"generated_at": time.Now().Format(time.RFC3339),
		"count":        len(minors),
		"trend":        render.Sparkline(values),
		"measurements": minors,
	})
}

// bandView is a JSON-safe band; an unbounded upper edge is omitted.
type bandView struct {
	Key   string   `json:"key"`
	Lower float64  `json:"lower"`
	Upper *float64 `json:"upper,omitempty"`
}

func bandViews(bands []classify.Band) []bandView {
	out := make([]bandView, 0, len(bands))
	for _, b := range bands {
		v := bandView{Key: string(b.Key), Lower: b.Lower}
		if !math.IsInf(b.Upper, 1) {
			upper := b.Upper
			v.Upper = &upper
		}
		out = append(out, v)
	}
	return out
}

func (s *Server) handleBandsResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	return jsonResource(uriBands, map[string]interface{}{
		"adult": map[string]interface{}{
			"bands": bandViews(classify.AdultBands()),
			"scale": scale.AdultRange(),
		},
		"minor": map[string]interface{}{
			"bands": bandViews(classify.MinorBands()),
			"scale": scale.MinorRange(),
		},
	})
}
