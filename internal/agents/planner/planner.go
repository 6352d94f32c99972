// Package planner implements the daily site improvement planner agent.
// It scores a backlog of candidate tasks against today's metrics and
// constraints and selects the single task worth shipping.
package planner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/agentry-ai/agentry/internal/agent"
)

const (
	AgentID = "daily-site-improvement-planner"
	Version = "v1"
)

const (
	defaultImpact = 6
	defaultEffort = 3
)

// categoryHints maps a focus category to the metric keywords that
// signal it. Order matters: the first matching category wins.
var categoryHints = []struct {
	category string
	keywords []string
}{
	{"conversion", []string{"conversion", "checkout", "form", "cart", "funnel"}},
	{"performance", []string{"performance", "speed", "lcp", "core web vitals", "cls"}},
	{"seo", []string{"search", "seo", "ranking", "crawl", "index"}},
	{"reliability", []string{"error", "bug", "downtime", "crash", "500", "404"}},
}

// BacklogItem is one candidate task. It decodes from either a plain
// string title or a structured object.
type BacklogItem struct {
	Title    string `json:"title"`
	Impact   *int   `json:"impact,omitempty"`
	Effort   *int   `json:"effort,omitempty"`
	Category string `json:"category,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

func (b *BacklogItem) UnmarshalJSON(data []byte) error {
	if bytes.HasPrefix(data, []byte(`"`)) {
		return json.Unmarshal(data, &b.Title)
	}

	type backlogItem BacklogItem
	var item backlogItem
	if err := json.Unmarshal(data, &item); err != nil {
		return err
	}
	*b = BacklogItem(item)
	return nil
}

// Constraints filter candidate tasks for today's execution window.
type Constraints struct {
	TimeHours     *int   `json:"time_hours,omitempty"`
	RiskTolerance string `json:"risk_tolerance,omitempty"`
	AllowDesign   *bool  `json:"allow_design,omitempty"`
	AllowCode     *bool  `json:"allow_code,omitempty"`
}

func (c Constraints) allowDesign() bool { return c.AllowDesign == nil || *c.AllowDesign }
func (c Constraints) allowCode() bool   { return c.AllowCode == nil || *c.AllowCode }

// Input is the payload the planner operates on.
type Input struct {
	Metrics     string        `json:"metrics"`
	Backlog     []BacklogItem `json:"backlog"`
	Constraints Constraints   `json:"constraints"`
}

// Option is a shortlisted task with its deterministic score.
type Option struct {
	Title          string `json:"title"`
	Score          int    `json:"score"`
	Category       string `json:"category"`
	Reason         string `json:"reason"`
	ExpectedImpact string `json:"expected_impact"`
}

// Plan is the selected task plus its acceptance and rollback framing.
type Plan struct {
	SelectedTask       string   `json:"selected_task"`
	Reason             string   `json:"reason"`
	ExpectedImpact     string   `json:"expected_impact"`
	AcceptanceCriteria []string `json:"acceptance_criteria"`
	RollbackPlan       []string `json:"rollback_plan"`
}

// Planner plans one daily site improvement task.
type Planner struct{}

// New creates the planner agent.
func New() *Planner { return &Planner{} }

func (p *Planner) Name() string { return AgentID }

func (p *Planner) InputSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"metrics": {
				"type": "string",
				"description": "GA4/Search Console summary for the site"
			},
			"backlog": {
				"type": "array",
				"description": "Candidate ideas, either titles or structured items",
				"items": {
					"oneOf": [
						{"type": "string"},
						{
							"type": "object",
							"properties": {
								"title": {"type": "string"},
								"impact": {"type": "integer", "minimum": 1, "maximum": 10},
								"effort": {"type": "integer", "minimum": 1, "maximum": 10},
								"category": {"type": "string"},
								"notes": {"type": "string"}
							},
							"required": ["title"]
						}
					]
				}
			},
			"constraints": {
				"type": "object",
				"properties": {
					"time_hours": {"type": "integer"},
					"risk_tolerance": {"type": "string"},
					"allow_design": {"type": "boolean"},
					"allow_code": {"type": "boolean"}
				}
			}
		},
		"required": ["metrics"]
	}`)
}

func (p *Planner) Execute(ctx context.Context, input json.RawMessage, meta *agent.Meta) (*agent.Output, error) {
	var payload Input
	if err := json.Unmarshal(input, &payload); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	meta.Progress("analyze", map[string]any{"backlog": len(payload.Backlog)})
	shortlisted, analysis := analyze(payload)

	meta.Progress("decide", map[string]any{"shortlisted": len(shortlisted)})
	decision := decide(shortlisted, payload.Metrics)

	meta.Progress("summarize", nil)
	return summarize(decision, analysis, len(payload.Backlog)), nil
}

// categorize picks the focus category signalled by the metrics text.
func categorize(metrics string) string {
	lowered := strings.ToLower(metrics)
	for _, hint := range categoryHints {
		for _, keyword := range hint.keywords {
			if strings.Contains(lowered, keyword) {
				return hint.category
			}
		}
	}
	return "conversion"
}

func scoreItem(item BacklogItem, focus string, constraints Constraints) int {
	impact := defaultImpact
	if item.Impact != nil {
		impact = *item.Impact
	}
	effort := defaultEffort
	if item.Effort != nil {
		effort = *item.Effort
	}
	score := impact - effort

	titleLower := strings.ToLower(item.Title)
	if strings.Contains(strings.ToLower(item.Category), focus) {
		score += 2
	}
	if strings.Contains(titleLower, focus) {
		score++
	}

	if !constraints.allowDesign() && strings.Contains(titleLower, "design") {
		score -= 4
	}
	if !constraints.allowCode() && containsAny(titleLower, "deploy", "release", "refactor") {
		score -= 4
	}

	if constraints.TimeHours != nil && *constraints.TimeHours < 4 && effort > 5 {
		score -= 3
	}
	if strings.EqualFold(constraints.RiskTolerance, "low") &&
		containsAny(titleLower, "experiment", "ab test", "a/b", "major") {
		score -= 2
	}

	return score
}

func containsAny(s string, terms ...string) bool {
	for _, term := range terms {
		if strings.Contains(s, term) {
			return true
		}
	}
	return false
}

// analyze scores every backlog item against the focus category and
// constraints, returning the top three plus an analysis trail.
func analyze(payload Input) ([]Option, string) {
	focus := categorize(payload.Metrics)

	var shortlisted []Option
	var reasons []string
	for _, item := range payload.Backlog {
		score := scoreItem(item, focus, payload.Constraints)

		expectedImpact := item.Notes
		if expectedImpact == "" {
			expectedImpact = fmt.Sprintf("Improve %s performance with a low-risk iteration", focus)
		}
		category := item.Category
		if category == "" {
			category = focus
		}

		shortlisted = append(shortlisted, Option{
			Title:          item.Title,
			Score:          score,
			Category:       category,
			Reason:         fmt.Sprintf("Aligned to %s signal and fits constraints", focus),
			ExpectedImpact: expectedImpact,
		})
		reasons = append(reasons, fmt.Sprintf("%s scored %d for %s focus", item.Title, score, focus))
	}

	sort.SliceStable(shortlisted, func(i, j int) bool {
		return shortlisted[i].Score > shortlisted[j].Score
	})

	if len(reasons) == 0 {
		reasons = []string{"No backlog items supplied; will generate a safety net task."}
	}
	analysis := fmt.Sprintf("Focus category: %s. Evaluated %d backlog items. %s",
		focus, len(shortlisted), strings.Join(reasons, " | "))

	if len(shortlisted) > 3 {
		shortlisted = shortlisted[:3]
	}
	return shortlisted, analysis
}

// decide picks the top option, or fabricates a safe default when the
// backlog was empty.
func decide(shortlisted []Option, metrics string) Option {
	if len(shortlisted) > 0 {
		return shortlisted[0]
	}

	focus := categorize(metrics)
	return Option{
		Title:          fmt.Sprintf("Create a fast, low-risk %s improvement", focus),
		Score:          1,
		Category:       focus,
		Reason:         "No backlog supplied; created default action",
		ExpectedImpact: fmt.Sprintf("Stabilize %s KPI with quick win", focus),
	}
}

func summarize(decision Option, analysis string, backlogCount int) *agent.Output {
	plan := Plan{
		SelectedTask:   decision.Title,
		Reason:         decision.Reason,
		ExpectedImpact: decision.ExpectedImpact,
		AcceptanceCriteria: []string{
			fmt.Sprintf("%s is scoped and documented with owners assigned", decision.Title),
			"Change is reviewed for risk and aligns with today's constraints",
			"Monitoring or analytics check is in place to validate impact",
		},
		RollbackPlan: []string{
			"If negative signals appear, disable or revert the change immediately",
			"Restore prior configuration or content from version control",
			"Communicate rollback and next steps in the release channel",
		},
	}

	return &agent.Output{
		Summary: fmt.Sprintf("Selected %q as today's %s improvement", plan.SelectedTask, decision.Category),
		Artifacts: []map[string]any{
			{
				"selected_task":       plan.SelectedTask,
				"reason":              plan.Reason,
				"expected_impact":     plan.ExpectedImpact,
				"acceptance_criteria": plan.AcceptanceCriteria,
				"rollback_plan":       plan.RollbackPlan,
				"analysis":            analysis,
			},
		},
		Metrics: map[string]any{
			"backlog_items": backlogCount,
			"top_score":     decision.Score,
		},
		NextActions: plan.AcceptanceCriteria,
	}
}
