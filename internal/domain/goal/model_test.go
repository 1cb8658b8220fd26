package goal

import (
	"errors"
	"testing"

	"github.com/bytedance/sonic"
)

func TestParseRinkSide(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    RinkSide
		wantErr bool
	}{
		{in: "left", want: SideLeft},
		{in: "right", want: SideRight},
		{in: "Left", wantErr: true},
		{in: "RIGHT", wantErr: true},
		{in: "center", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			t.Parallel()

			got, err := ParseRinkSide(tc.in)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidDefendingSide) {
					t.Fatalf("ParseRinkSide(%q) error = %v, want ErrInvalidDefendingSide", tc.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRinkSide(%q) error = %v", tc.in, err)
			}
			if got != tc.want {
				t.Fatalf("ParseRinkSide(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestGameExportJSONShape(t *testing.T) {
	t.Parallel()

	url := "https://example.test/replay/123"
	export := GameExport{
		Goals: []Goal{
			{EventID: 102, PPTReplayURL: &url, ScoringTeamID: 10, HomeDefendingSide: SideLeft},
			{EventID: 211, PPTReplayURL: nil, ScoringTeamID: 22, HomeDefendingSide: SideRight},
		},
		HomeTeamID: 22,
	}

	raw, err := sonic.Marshal(export)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	want := `{"goals":[{"event_id":102,"ppt_replay_url":"https://example.test/replay/123","scoring_team_id":10,"home_team_defending_side":"Left"},{"event_id":211,"ppt_replay_url":null,"scoring_team_id":22,"home_team_defending_side":"Right"}],"home_team_id":22}`
	if string(raw) != want {
		t.Fatalf("Marshal() = %s, want %s", raw, want)
	}
}

func TestGameExportEmptyGoals(t *testing.T) {
	t.Parallel()

	raw, err := sonic.Marshal(GameExport{Goals: []Goal{}, HomeTeamID: 5})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(raw) != `{"goals":[],"home_team_id":5}` {
		t.Fatalf("Marshal() = %s", raw)
	}
}
