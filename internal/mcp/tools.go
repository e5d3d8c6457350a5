// ABOUTME: MCP tool implementations for BMI calculation and history management.
// ABOUTME: Exposes adult BMI, minor percentile, unit conversion and history tools.
package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/harperreed/bmi/internal/age"
	"github.com/harperreed/bmi/internal/bmi"
	"github.com/harperreed/bmi/internal/engine"
	"github.com/harperreed/bmi/internal/models"
	"github.com/harperreed/bmi/internal/percentile"
	"github.com/harperreed/bmi/internal/units"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const defaultListLimit = 20

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "calculate_adult_bmi",
		Description: "Calculate adult BMI and its WHO category from weight and height, optionally saving it to history",
	}, s.handleCalculateAdult)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "calculate_minor_percentile",
		Description: "Calculate BMI-for-age percentile (ages 5-19) from weight, height, sex and a birth date or an age in months or years",
	}, s.handleCalculateMinor)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "convert_units",
		Description: "Convert a body measurement between kg/lb, cm/in and cm/feet-inches",
	}, s.handleConvertUnits)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_history",
		Description: "List saved measurements, most recent first",
	}, s.handleListHistory)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "clear_history",
		Description: "Delete all saved adult, minor, or all measurements",
	}, s.handleClearHistory)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "delete_measurement",
		Description: "Delete a saved measurement by ID or ID prefix",
	}, s.handleDeleteMeasurement)
}

// Tool input/output types

type adultInput struct {
	Weight float64 `json:"weight" jsonschema:"Body weight in kg (metric) or lb (imperial)"`
	Height float64 `json:"height" jsonschema:"Height in cm (metric) or total inches (imperial)"`
	Units  string  `json:"units,omitempty" jsonschema:"Unit system: metric (default) or imperial"`
	Save   bool    `json:"save,omitempty" jsonschema:"Save the result to history"`
}

type adultOutput struct {
	ID             string  `json:"id,omitempty"`
	WeightKg       float64 `json:"weight_kg"`
	HeightCm       float64 `json:"height_cm"`
	BMI            float64 `json:"bmi"`
	Interpretation string  `json:"interpretation"`
	Position       float64 `json:"position"`
	Message        string  `json:"message"`
}

type minorInput struct {
	Weight        float64 `json:"weight" jsonschema:"Body weight in kg (metric) or lb (imperial)"`
	Height        float64 `json:"height" jsonschema:"Height in cm (metric) or total inches (imperial)"`
	Units         string  `json:"units,omitempty" jsonschema:"Unit system: metric (default) or imperial"`
	Sex           string  `json:"sex" jsonschema:"male or female"`
	BirthDate     string  `json:"birth_date,omitempty" jsonschema:"Birth date (YYYY-MM-DD, DD/MM/YYYY or DD-MM-YYYY)"`
	AgeMonths     int     `json:"age_months,omitempty" jsonschema:"Age in whole months, used when birth_date is empty"`
	AgeYears      float64 `json:"age_years,omitempty" jsonschema:"Age in years (e.g. 9.5), used when birth_date and age_months are empty"`
	ReferenceDate string  `json:"reference_date,omitempty" jsonschema:"Date of the measurement, defaults to today"`
	Save          bool    `json:"save,omitempty" jsonschema:"Save the result to history"`
}

type minorOutput struct {
	ID             string  `json:"id,omitempty"`
	Sex            string  `json:"sex"`
	AgeMonths      int     `json:"age_months"`
	BMI            float64 `json:"bmi"`
	ZScore         float64 `json:"z_score"`
	Percentile     float64 `json:"percentile"`
	Interpretation string  `json:"interpretation"`
	Position       float64 `json:"position"`
	Message        string  `json:"message"`
}

type convertInput struct {
	Value float64 `json:"value" jsonschema:"Value to convert"`
	From  string  `json:"from" jsonschema:"Source unit: kg, lb, cm or in"`
	To    string  `json:"to" jsonschema:"Target unit: kg, lb, cm, in or ft_in"`
}

type convertOutput struct {
	Value   float64 `json:"value"`
	Unit    string  `json:"unit"`
	Feet    int     `json:"feet,omitempty"`
	Inches  float64 `json:"inches,omitempty"`
	Message string  `json:"message"`
}

type historyInput struct {
	Kind  string `json:"kind,omitempty" jsonschema:"adult, minor or all (default all)"`
	Limit int    `json:"limit,omitempty" jsonschema:"Max results per kind (default 20)"`
}

type historyOutput struct {
	Adults []*models.AdultMeasurement `json:"adults,omitempty"`
	Minors []*models.MinorMeasurement `json:"minors,omitempty"`
	Count  int                        `json:"count"`
}

type clearInput struct {
	Kind    string `json:"kind" jsonschema:"adult, minor or all"`
	Confirm bool   `json:"confirm" jsonschema:"Must be true to delete"`
}

type deleteInput struct {
	ID string `json:"id" jsonschema:"Measurement ID or prefix"`
}

type simpleOutput struct {
	Message string `json:"message"`
}

// Tool handlers

func parseUnits(s string) (units.System, error) {
	if s == "" {
		return units.Metric, nil
	}
	return units.ParseSystem(s)
}

func parseKind(s string) (string, error) {
	switch k := strings.ToLower(strings.TrimSpace(s)); k {
	case "", "all":
		return "all", nil
	case "adult", "adults":
		return "adult", nil
	case "minor", "minors":
		return "minor", nil
	default:
		return "", &models.InvalidInputError{Op: "history", Field: "kind", Value: s, Reason: "must be adult, minor or all"}
	}
}

func (s *Server) handleCalculateAdult(ctx context.Context, req *mcp.CallToolRequest, input adultInput) (*mcp.CallToolResult, adultOutput, error) {
	sys, err := parseUnits(input.Units)
	if err != nil {
		return nil, adultOutput{}, err
	}

	r, err := engine.EvaluateAdult(engine.AdultInput{Weight: input.Weight, Height: input.Height, Units: sys})
	if err != nil {
		return nil, adultOutput{}, err
	}

	out := adultOutput{
		WeightKg:       bmi.Round(r.WeightKg, 2),
		HeightCm:       bmi.Round(r.HeightCm, 2),
		BMI:            bmi.Round(r.BMI, 2),
		Interpretation: string(r.Key),
		Position:       r.Position,
		Message:        fmt.Sprintf("BMI %.1f (%s)", r.BMI, r.Key),
	}

	if input.Save {
		m := engine.ToAdultMeasurement(r)
		if err := s.repo.SaveAdult(m); err != nil {
			return nil, adultOutput{}, fmt.Errorf("failed to save measurement: %w", err)
		}
		out.ID = m.ID.String()[:8]
		out.Message += fmt.Sprintf(", saved (ID: %s)", out.ID)
	}

	s.logger.Debug("calculate_adult_bmi", "bmi", out.BMI, "band", out.Interpretation, "saved", input.Save)
	return nil, out, nil
}

func (s *Server) handleCalculateMinor(ctx context.Context, req *mcp.CallToolRequest, input minorInput) (*mcp.CallToolResult, minorOutput, error) {
	sys, err := parseUnits(input.Units)
	if err != nil {
		return nil, minorOutput{}, err
	}
	sex, err := models.ParseSex(input.Sex)
	if err != nil {
		return nil, minorOutput{}, err
	}

	in := engine.MinorInput{
		Weight:    input.Weight,
		Height:    input.Height,
		Units:     sys,
		Sex:       sex,
		AgeMonths: input.AgeMonths,
		AgeYears:  input.AgeYears,
	}
	if input.BirthDate != "" {
		birth, err := age.ParseDate(input.BirthDate)
		if err != nil {
			return nil, minorOutput{}, err
		}
		in.BirthDate = &birth
	}
	if input.ReferenceDate != "" {
		if in.ReferenceDate, err = age.ParseDate(input.ReferenceDate); err != nil {
			return nil, minorOutput{}, err
		}
	}
	if in.BirthDate != nil && (input.AgeMonths != 0 || input.AgeYears != 0) {
		return nil, minorOutput{}, &models.InvalidInputError{Op: "calculate minor", Field: "age", Reason: "give birth_date, age_months or age_years, not several"}
	}
	if in.BirthDate == nil && input.AgeMonths == 0 && input.AgeYears == 0 {
		return nil, minorOutput{}, &models.InvalidInputError{Op: "calculate minor", Field: "age", Reason: "birth_date, age_months or age_years is required"}
	}

	r, err := engine.EvaluateMinor(in)
	if err != nil {
		return nil, minorOutput{}, err
	}

	out := minorOutput{
		Sex:            string(r.Sex),
		AgeMonths:      r.AgeMonths,
		BMI:            bmi.Round(r.BMI, 2),
		ZScore:         bmi.Round(r.ZScore, 2),
		Percentile:     percentile.Truncate(r.Percentile, 3),
		Interpretation: string(r.Key),
		Position:       r.Position,
		Message:        fmt.Sprintf("BMI %.1f, percentile %s (%s) at %d months", r.BMI, percentile.Format(r.Percentile), r.Key, r.AgeMonths),
	}

	if input.Save {
		m := engine.ToMinorMeasurement(r)
		if !in.ReferenceDate.IsZero() {
			m.WithRecordedAt(in.ReferenceDate)
		}
		if err := s.repo.SaveMinor(m); err != nil {
			return nil, minorOutput{}, fmt.Errorf("failed to save measurement: %w", err)
		}
		out.ID = m.ID.String()[:8]
		out.Message += fmt.Sprintf(", saved (ID: %s)", out.ID)
	}

	s.logger.Debug("calculate_minor_percentile", "months", out.AgeMonths, "percentile", out.Percentile, "saved", input.Save)
	return nil, out, nil
}

func (s *Server) handleConvertUnits(ctx context.Context, req *mcp.CallToolRequest, input convertInput) (*mcp.CallToolResult, convertOutput, error) {
	from := strings.ToLower(strings.TrimSpace(input.From))
	to := strings.ToLower(strings.TrimSpace(input.To))

	if from == "cm" && to == "ft_in" {
		feet, inches := units.CmToFeetInches(input.Value)
		out := convertOutput{Value: units.CmToIn(input.Value), Unit: "in", Feet: feet, Inches: bmi.Round(inches, 2)}
		out.Message = fmt.Sprintf("%.1f cm = %d ft %.1f in", input.Value, feet, inches)
		return nil, out, nil
	}

	v, err := units.Convert(input.Value, from, to)
	if err != nil {
		return nil, convertOutput{}, err
	}
	out := convertOutput{Value: v, Unit: to}
	out.Message = fmt.Sprintf("%.2f %s = %.2f %s", input.Value, from, out.Value, out.Unit)
	return nil, out, nil
}

func (s *Server) handleListHistory(ctx context.Context, req *mcp.CallToolRequest, input historyInput) (*mcp.CallToolResult, historyOutput, error) {
	kind, err := parseKind(input.Kind)
	if err != nil {
		return nil, historyOutput{}, err
	}
	if input.Limit <= 0 {
		input.Limit = defaultListLimit
	}

	var out historyOutput
	if kind != "minor" {
		if out.Adults, err = s.repo.ListAdultHistory(input.Limit); err != nil {
			return nil, historyOutput{}, fmt.Errorf("failed to list adults: %w", err)
		}
	}
	if kind != "adult" {
		if out.Minors, err = s.repo.ListMinorHistory(input.Limit); err != nil {
			return nil, historyOutput{}, fmt.Errorf("failed to list minors: %w", err)
		}
	}
	out.Count = len(out.Adults) + len(out.Minors)

	return nil, out, nil
}

func (s *Server) handleClearHistory(ctx context.Context, req *mcp.CallToolRequest, input clearInput) (*mcp.CallToolResult, simpleOutput, error) {
	if !input.Confirm {
		return nil, simpleOutput{}, fmt.Errorf("refusing to clear history without confirm=true")
	}
	kind, err := parseKind(input.Kind)
	if err != nil {
		return nil, simpleOutput{}, err
	}

	switch kind {
	case "adult":
		err = s.repo.ClearAdultHistory()
	case "minor":
		err = s.repo.ClearMinorHistory()
	default:
		err = s.repo.ClearAll()
	}
	if err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to clear history: %w", err)
	}

	s.logger.Info("history cleared", "kind", kind)
	return nil, simpleOutput{Message: fmt.Sprintf("Cleared %s history", kind)}, nil
}

func (s *Server) handleDeleteMeasurement(ctx context.Context, req *mcp.CallToolRequest, input deleteInput) (*mcp.CallToolResult, simpleOutput, error) {
	if err := s.repo.DeleteMeasurement(input.ID); err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to delete measurement: %w", err)
	}

	return nil, simpleOutput{
		Message: fmt.Sprintf("Deleted measurement: %s", input.ID),
	}, nil
}

