// Package seominer implements the SEO opportunity miner agent. It
// scans Search Console rows for low-CTR pages, mid-ranking keywords,
// and keyword cannibalization, and recommends the single
// highest-impact fix.
package seominer

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/agentry-ai/agentry/internal/agent"
)

const (
	AgentID = "seo-opportunity-miner"
	Version = "v1"
)

// Issue types attached to mined opportunities.
const (
	IssueCTR             = "ctr"
	IssueRank            = "rank"
	IssueCannibalization = "cannibalization"
)

const (
	minImpressions       = 50
	lowCTRThreshold      = 2.5
	midPositionLow       = 6
	midPositionHigh      = 20
	cannibalizationBonus = 15
)

// SearchConsoleRow is one normalized Search Console row.
type SearchConsoleRow struct {
	Query       string  `json:"query"`
	Page        string  `json:"page"`
	Impressions int     `json:"impressions"`
	Clicks      int     `json:"clicks"`
	Position    float64 `json:"position"`
}

// Input is the payload the miner operates on.
type Input struct {
	SearchConsoleRows []SearchConsoleRow `json:"search_console_rows"`
	SitePages         []string           `json:"site_pages"`
}

// Recommendation is the single prioritized fix the miner emits.
type Recommendation struct {
	PageURL         string `json:"page_url"`
	Keyword         string `json:"keyword"`
	IssueType       string `json:"issue_type"`
	RecommendedFix  string `json:"recommended_fix"`
	EstimatedImpact string `json:"estimated_impact"`
}

// opportunity is a scored candidate fix.
type opportunity struct {
	Recommendation
	impressions   int
	ctrGap        float64
	positionScore float64
}

func (o opportunity) score() float64 {
	score := float64(o.impressions) + o.ctrGap + o.positionScore
	if o.IssueType == IssueCannibalization {
		score += cannibalizationBonus
	}
	return score
}

// Miner mines Search Console data for SEO quick wins.
type Miner struct{}

// New creates the miner agent.
func New() *Miner { return &Miner{} }

func (m *Miner) Name() string { return AgentID }

func (m *Miner) InputSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"search_console_rows": {
				"type": "array",
				"description": "Search Console rows including query, page, and metrics",
				"items": {
					"type": "object",
					"properties": {
						"query": {"type": "string"},
						"page": {"type": "string"},
						"impressions": {"type": "integer", "minimum": 0},
						"clicks": {"type": "integer", "minimum": 0},
						"position": {"type": "number", "minimum": 0}
					},
					"required": ["query", "page", "impressions", "clicks", "position"]
				}
			},
			"site_pages": {
				"type": "array",
				"description": "Known site pages used to validate recommendations",
				"items": {"type": "string"}
			}
		},
		"required": ["search_console_rows"]
	}`)
}

func (m *Miner) Execute(ctx context.Context, input json.RawMessage, meta *agent.Meta) (*agent.Output, error) {
	var payload Input
	if err := json.Unmarshal(input, &payload); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	meta.Progress("analyze", map[string]any{"rows": len(payload.SearchConsoleRows)})
	opportunities := analyze(payload)

	meta.Progress("decide", map[string]any{"opportunities": len(opportunities)})
	best := decide(opportunities, payload.SitePages)

	meta.Progress("summarize", nil)
	return summarize(best, len(payload.SearchConsoleRows), len(opportunities)), nil
}

func clickThroughRate(clicks, impressions int) float64 {
	if impressions == 0 {
		return 0
	}
	return math.Round(float64(clicks)/float64(impressions)*10000) / 100
}

// analyze mines every row for CTR and ranking issues, then checks each
// query group for cannibalization. Returns candidates sorted by score,
// best first.
func analyze(payload Input) []opportunity {
	sitePages := make(map[string]bool, len(payload.SitePages))
	for _, page := range payload.SitePages {
		sitePages[page] = true
	}

	groups := make(map[string][]SearchConsoleRow)
	var groupOrder []string
	for _, row := range payload.SearchConsoleRows {
		key := strings.ToLower(row.Query)
		if _, seen := groups[key]; !seen {
			groupOrder = append(groupOrder, key)
		}
		groups[key] = append(groups[key], row)
	}

	var opportunities []opportunity

	for _, row := range payload.SearchConsoleRows {
		ctr := clickThroughRate(row.Clicks, row.Impressions)

		if row.Impressions >= minImpressions && ctr < lowCTRThreshold {
			opportunities = append(opportunities, opportunity{
				Recommendation: Recommendation{
					PageURL:   row.Page,
					Keyword:   row.Query,
					IssueType: IssueCTR,
					RecommendedFix: "Tighten the title tag and H1 around the keyword, add a benefit-driven meta " +
						"description, and place 2 internal links with the exact query in anchor text " +
						"from relevant pages.",
					EstimatedImpact: "Higher click-through rate from existing impressions.",
				},
				impressions:   row.Impressions,
				ctrGap:        math.Max(5.0-ctr, 0),
				positionScore: math.Max(0, 25-row.Position),
			})
		}

		if row.Position >= midPositionLow && row.Position <= midPositionHigh && row.Impressions >= minImpressions {
			opportunities = append(opportunities, opportunity{
				Recommendation: Recommendation{
					PageURL:   row.Page,
					Keyword:   row.Query,
					IssueType: IssueRank,
					RecommendedFix: "Add 3-5 internal links pointing to this URL with the keyword in anchor text, " +
						"align the H1/H2 with the query, and include a concise FAQ section to earn " +
						"rich snippet eligibility.",
					EstimatedImpact: "Move the page into the top 5 positions for incremental clicks.",
				},
				impressions:   row.Impressions,
				ctrGap:        math.Max(3.0-ctr, 0),
				positionScore: math.Max(0, 30-row.Position*1.5),
			})
		}
	}

	for _, key := range groupOrder {
		rows := groups[key]
		if len(rows) < 2 {
			continue
		}

		canonical := rows[0]
		for _, row := range rows[1:] {
			if row.Clicks > canonical.Clicks ||
				(row.Clicks == canonical.Clicks && row.Position < canonical.Position) {
				canonical = row
			}
		}

		var competing []string
		seen := make(map[string]bool)
		for _, row := range rows {
			if row.Page == canonical.Page || seen[row.Page] {
				continue
			}
			seen[row.Page] = true
			competing = append(competing, row.Page)
		}

		opportunities = append(opportunities, opportunity{
			Recommendation: Recommendation{
				PageURL:   canonical.Page,
				Keyword:   canonical.Query,
				IssueType: IssueCannibalization,
				RecommendedFix: fmt.Sprintf("Choose this URL as the primary page, add internal links to it from the competing "+
					"pages (%s), and adjust their headings to target secondary terms "+
					"instead of the main keyword.", strings.Join(competing, ", ")),
				EstimatedImpact: "Consolidated relevance should lift rankings and CTR for the primary page.",
			},
			impressions:   canonical.Impressions,
			ctrGap:        math.Max(5.0-clickThroughRate(canonical.Clicks, canonical.Impressions), 0),
			positionScore: math.Max(0, 25-canonical.Position),
		})
	}

	if len(sitePages) > 0 {
		for i := range opportunities {
			if !sitePages[opportunities[i].PageURL] {
				opportunities[i].RecommendedFix += " Validate this URL exists or update to the closest matching live page."
			}
		}
	}

	sort.SliceStable(opportunities, func(i, j int) bool {
		return opportunities[i].score() > opportunities[j].score()
	})

	return opportunities
}

// decide picks the top opportunity, or a safe homepage task when
// nothing was mined.
func decide(opportunities []opportunity, sitePages []string) Recommendation {
	if len(opportunities) > 0 {
		return opportunities[0].Recommendation
	}

	var pageURL string
	if len(sitePages) > 0 {
		pageURL = sitePages[0]
	}
	return Recommendation{
		PageURL:         pageURL,
		IssueType:       IssueRank,
		RecommendedFix:  "Add an internal link cluster around the homepage with the top commercial keyword.",
		EstimatedImpact: "Small uplift from clarifying site relevance.",
	}
}

func summarize(best Recommendation, rowCount, opportunityCount int) *agent.Output {
	target := best.PageURL
	if target == "" {
		target = "the site"
	}
	summary := fmt.Sprintf("Prioritized %s fix for %s", best.IssueType, target)
	if best.Keyword != "" {
		summary = fmt.Sprintf("Prioritized %s fix for %s targeting %q", best.IssueType, target, best.Keyword)
	}

	return &agent.Output{
		Summary: summary,
		Artifacts: []map[string]any{
			{
				"page_url":         best.PageURL,
				"keyword":          best.Keyword,
				"issue_type":       best.IssueType,
				"recommended_fix":  best.RecommendedFix,
				"estimated_impact": best.EstimatedImpact,
			},
		},
		Metrics: map[string]any{
			"rows_analyzed":       rowCount,
			"opportunities_found": opportunityCount,
		},
		NextActions: []string{best.RecommendedFix},
	}
}
