package cloud

import (
	"testing"
)

func TestCleanJSON(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n[1,2]\n```", `[1,2]`},
		{"  \n{\"score\": 80}\n  ", `{"score": 80}`},
		{"```json\n{\"score\": 80}```", `{"score": 80}`},
	}
	for _, c := range cases {
		if got := cleanJSON(c.in); got != c.want {
			t.Errorf("cleanJSON(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestClampScore(t *testing.T) {
	cases := []struct {
		in   int
		want int
	}{
		{-10, 0},
		{0, 0},
		{70, 70},
		{100, 100},
		{130, 100},
	}
	for _, c := range cases {
		if got := clampScore(c.in); got != c.want {
			t.Errorf("clampScore(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestNeutralEvaluation(t *testing.T) {
	evaluation := NeutralEvaluation()
	if evaluation.Score != FallbackScore {
		t.Errorf("neutral score = %d, want %d", evaluation.Score, FallbackScore)
	}
	if evaluation.Parsed {
		t.Error("neutral evaluation should not be marked parsed")
	}
	if evaluation.Feedback == "" {
		t.Error("neutral evaluation should carry feedback text")
	}
}

func TestNeutralAnalysis(t *testing.T) {
	analysis := NeutralAnalysis()
	if analysis.Overall != FallbackScore {
		t.Errorf("neutral overall = %d, want %d", analysis.Overall, FallbackScore)
	}
	if analysis.Parsed {
		t.Error("neutral analysis should not be marked parsed")
	}
	if len(analysis.Strengths) == 0 || len(analysis.Improvements) == 0 {
		t.Error("neutral analysis should carry non-empty lists")
	}
}
