package seominer

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentry-ai/agentry/internal/agent"
)

func TestClickThroughRate(t *testing.T) {
	assert.Equal(t, 0.0, clickThroughRate(10, 0))
	assert.Equal(t, 1.0, clickThroughRate(10, 1000))
	assert.Equal(t, 33.33, clickThroughRate(1, 3))
	assert.Equal(t, 100.0, clickThroughRate(5, 5))
}

func TestAnalyzeLowCTR(t *testing.T) {
	payload := Input{
		SearchConsoleRows: []SearchConsoleRow{
			{Query: "best widgets", Page: "/widgets", Impressions: 1000, Clicks: 10, Position: 8.5},
		},
	}

	opportunities := analyze(payload)
	require.NotEmpty(t, opportunities)

	// The row triggers both a ctr and a rank opportunity; the ctr one
	// scores higher and ranks first.
	best := opportunities[0]
	assert.Equal(t, IssueCTR, best.IssueType)
	assert.Equal(t, "/widgets", best.PageURL)
	assert.Equal(t, "best widgets", best.Keyword)
	assert.Len(t, opportunities, 2)
	assert.Equal(t, IssueRank, opportunities[1].IssueType)
}

func TestAnalyzeSkipsLowTrafficRows(t *testing.T) {
	payload := Input{
		SearchConsoleRows: []SearchConsoleRow{
			{Query: "rare term", Page: "/niche", Impressions: 49, Clicks: 0, Position: 12},
		},
	}

	assert.Empty(t, analyze(payload))
}

func TestAnalyzeCannibalization(t *testing.T) {
	payload := Input{
		SearchConsoleRows: []SearchConsoleRow{
			{Query: "Blue Shoes", Page: "/a", Impressions: 100, Clicks: 5, Position: 4},
			{Query: "blue shoes", Page: "/b", Impressions: 80, Clicks: 2, Position: 9},
		},
	}

	opportunities := analyze(payload)
	require.NotEmpty(t, opportunities)

	best := opportunities[0]
	assert.Equal(t, IssueCannibalization, best.IssueType)
	assert.Equal(t, "/a", best.PageURL, "page with the most clicks is canonical")
	assert.Equal(t, "Blue Shoes", best.Keyword)
	assert.Contains(t, best.RecommendedFix, "/b")
}

func TestAnalyzeCanonicalTieBreaksOnPosition(t *testing.T) {
	payload := Input{
		SearchConsoleRows: []SearchConsoleRow{
			{Query: "widget", Page: "/low", Impressions: 60, Clicks: 3, Position: 15},
			{Query: "widget", Page: "/high", Impressions: 60, Clicks: 3, Position: 3},
		},
	}

	opportunities := analyze(payload)
	require.NotEmpty(t, opportunities)

	var cannibalization *opportunity
	for i := range opportunities {
		if opportunities[i].IssueType == IssueCannibalization {
			cannibalization = &opportunities[i]
			break
		}
	}
	require.NotNil(t, cannibalization)
	assert.Equal(t, "/high", cannibalization.PageURL, "equal clicks resolve to the better position")
}

func TestAnalyzeFlagsUnknownPages(t *testing.T) {
	payload := Input{
		SearchConsoleRows: []SearchConsoleRow{
			{Query: "best widgets", Page: "/retired", Impressions: 500, Clicks: 2, Position: 9},
		},
		SitePages: []string{"/widgets"},
	}

	opportunities := analyze(payload)
	require.NotEmpty(t, opportunities)
	assert.Contains(t, opportunities[0].RecommendedFix, "Validate this URL exists")
}

func TestDecideFallback(t *testing.T) {
	best := decide(nil, []string{"/home", "/about"})
	assert.Equal(t, "/home", best.PageURL)
	assert.Equal(t, IssueRank, best.IssueType)
	assert.Empty(t, best.Keyword)

	best = decide(nil, nil)
	assert.Empty(t, best.PageURL)
	assert.Contains(t, best.RecommendedFix, "internal link cluster")
}

func TestExecute(t *testing.T) {
	miner := New()
	assert.Equal(t, AgentID, miner.Name())
	assert.NotEmpty(t, miner.InputSchema())

	input, err := json.Marshal(Input{
		SearchConsoleRows: []SearchConsoleRow{
			{Query: "best widgets", Page: "/widgets", Impressions: 1000, Clicks: 10, Position: 8.5},
		},
	})
	require.NoError(t, err)

	var stages []string
	meta := &agent.Meta{
		OnProgress: func(stage string, fields map[string]any) {
			stages = append(stages, stage)
		},
	}

	out, err := miner.Execute(context.Background(), input, meta)
	require.NoError(t, err)
	assert.Equal(t, []string{"analyze", "decide", "summarize"}, stages)

	assert.Contains(t, out.Summary, "ctr fix")
	require.Len(t, out.Artifacts, 1)
	assert.Equal(t, "/widgets", out.Artifacts[0]["page_url"])
	assert.Equal(t, IssueCTR, out.Artifacts[0]["issue_type"])
	assert.Equal(t, 1, out.Metrics["rows_analyzed"])
	assert.Equal(t, 2, out.Metrics["opportunities_found"])
	require.Len(t, out.NextActions, 1)
}

func TestExecuteEmptyRows(t *testing.T) {
	miner := New()

	out, err := miner.Execute(context.Background(), json.RawMessage(`{"search_console_rows": []}`), nil)
	require.NoError(t, err)
	require.Len(t, out.Artifacts, 1)
	assert.Equal(t, IssueRank, out.Artifacts[0]["issue_type"])
	assert.Equal(t, "", out.Artifacts[0]["page_url"])
}

func TestExecuteInvalidInput(t *testing.T) {
	miner := New()

	_, err := miner.Execute(context.Background(), json.RawMessage(`{"search_console_rows": "nope"}`), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid input")
}
