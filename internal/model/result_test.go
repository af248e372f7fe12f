package model

import (
	"encoding/json"
	"testing"
)

func TestJudgmentAndLevelFor_Thresholds(t *testing.T) {
	tests := []struct {
		confidence int
		judgment   Judgment
		level      Level
	}{
		{0, LikelyFalse, LevelLow},
		{49, LikelyFalse, LevelLow},
		{50, LikelyCredible, LevelLow},
		{59, LikelyCredible, LevelLow},
		{60, LikelyCredible, LevelMedium},
		{80, LikelyCredible, LevelMedium},
		{81, LikelyCredible, LevelHigh},
		{100, LikelyCredible, LevelHigh},
	}

	for _, tt := range tests {
		if got := JudgmentFor(tt.confidence); got != tt.judgment {
			t.Errorf("JudgmentFor(%d) = %v, want %v", tt.confidence, got, tt.judgment)
		}
		if got := LevelFor(tt.confidence); got != tt.level {
			t.Errorf("LevelFor(%d) = %v, want %v", tt.confidence, got, tt.level)
		}
	}
}

func TestOutcome_JSON(t *testing.T) {
	tests := []struct {
		outcome Outcome
		encoded string
	}{
		{OutcomePassed, "true"},
		{OutcomeFailed, "false"},
		{OutcomeUnknown, "null"},
	}

	for _, tt := range tests {
		t.Run(tt.outcome.String(), func(t *testing.T) {
			data, err := json.Marshal(tt.outcome)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if string(data) != tt.encoded {
				t.Errorf("Expected %s, got %s", tt.encoded, data)
			}

			var item AnalysisItem
			if err := json.Unmarshal([]byte(`{"passed":`+tt.encoded+`}`), &item); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if item.Passed != tt.outcome {
				t.Errorf("Expected %v after decoding, got %v", tt.outcome, item.Passed)
			}
		})
	}
}

func TestOutcome_UnmarshalRejectsNonBool(t *testing.T) {
	var o Outcome
	if err := json.Unmarshal([]byte(`"yes"`), &o); err == nil {
		t.Error("Expected error for string outcome")
	}
}

func TestJudgmentAndLevel_Text(t *testing.T) {
	data, err := json.Marshal(AnalysisResult{Judgment: LikelyCredible, Level: LevelMedium})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded AnalysisResult
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Judgment != LikelyCredible || decoded.Level != LevelMedium {
		t.Errorf("Expected Likely Credible / Medium Confidence, got %v / %v", decoded.Judgment, decoded.Level)
	}

	var l Level
	if err := l.UnmarshalText([]byte("Extreme")); err == nil {
		t.Error("Expected error for unknown level")
	}
}
