package applier_test

import (
	"context"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/giamma80/gymbro-platform-sub001/provision/applier"
)

func TestNoopScriptFunc(t *testing.T) {
	c := qt.New(t)
	c.Assert(applier.NoopScriptFunc(context.Background(), nil), qt.IsNil)
}

func TestScriptFileName(t *testing.T) {
	tests := []struct {
		name     string
		number   int
		schema   string
		expected string
	}{
		{name: "single digit", number: 1, schema: "calorie_balance", expected: "001_grant_calorie_balance.sql"},
		{name: "double digit", number: 42, schema: "meal_tracking", expected: "042_grant_meal_tracking.sql"},
		{name: "beyond padding", number: 1234, schema: "x", expected: "1234_grant_x.sql"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)
			c.Assert(applier.ScriptFileName(tt.number, tt.schema), qt.Equals, tt.expected)
		})
	}
}

func TestParseScriptFileName(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantErr    bool
		wantNumber int
		wantSchema string
	}{
		{
			name:       "canonical name",
			input:      "001_grant_calorie_balance.sql",
			wantNumber: 1,
			wantSchema: "calorie_balance",
		},
		{
			name:       "larger number",
			input:      "017_grant_ai_coach.sql",
			wantNumber: 17,
			wantSchema: "ai_coach",
		},
		{
			name:    "migration file",
			input:   "0000000001_create_users.up.sql",
			wantErr: true,
		},
		{
			name:    "missing grant marker",
			input:   "001_calorie_balance.sql",
			wantErr: true,
		},
		{
			name:    "uppercase schema",
			input:   "001_grant_Calorie.sql",
			wantErr: true,
		},
		{
			name:    "not sql",
			input:   "001_grant_calorie_balance.txt",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)

			parsed, err := applier.ParseScriptFileName(tt.input)
			if tt.wantErr {
				c.Assert(err, qt.IsNotNil)
				return
			}
			c.Assert(err, qt.IsNil)
			c.Assert(parsed.Number, qt.Equals, tt.wantNumber)
			c.Assert(parsed.Schema, qt.Equals, tt.wantSchema)
		})
	}
}

func TestParseScriptFileName_RoundTrip(t *testing.T) {
	c := qt.New(t)

	name := applier.ScriptFileName(3, "health_monitor")
	parsed, err := applier.ParseScriptFileName(name)
	c.Assert(err, qt.IsNil)
	c.Assert(parsed.Number, qt.Equals, 3)
	c.Assert(parsed.Schema, qt.Equals, "health_monitor")
}

func TestSplitSQLStatements(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "single statement",
			input:    "GRANT USAGE ON SCHEMA x TO anon;",
			expected: []string{"GRANT USAGE ON SCHEMA x TO anon"},
		},
		{
			name:  "multiple statements",
			input: "GRANT USAGE ON SCHEMA x TO anon;\nGRANT ALL ON ALL TABLES IN SCHEMA x TO anon;",
			expected: []string{
				"GRANT USAGE ON SCHEMA x TO anon",
				"GRANT ALL ON ALL TABLES IN SCHEMA x TO anon",
			},
		},
		{
			name:     "comments are stripped",
			input:    "-- header comment; with a semicolon\nGRANT USAGE ON SCHEMA x TO anon; -- trailing\n",
			expected: []string{"GRANT USAGE ON SCHEMA x TO anon"},
		},
		{
			name:     "comment-only input",
			input:    "-- nothing here\n-- at all\n",
			expected: nil,
		},
		{
			name:     "semicolon inside string literal",
			input:    "COMMENT ON SCHEMA x IS 'a; b';",
			expected: []string{"COMMENT ON SCHEMA x IS 'a; b'"},
		},
		{
			name:     "escaped quote inside string literal",
			input:    "COMMENT ON SCHEMA x IS 'it''s; fine';",
			expected: []string{"COMMENT ON SCHEMA x IS 'it''s; fine'"},
		},
		{
			name:     "comment marker inside string literal",
			input:    "COMMENT ON SCHEMA x IS 'a -- b';",
			expected: []string{"COMMENT ON SCHEMA x IS 'a -- b'"},
		},
		{
			name:  "comment marker inside literal with trailing comment",
			input: "COMMENT ON SCHEMA x IS 'a -- b'; -- note\nGRANT USAGE ON SCHEMA x TO anon;",
			expected: []string{
				"COMMENT ON SCHEMA x IS 'a -- b'",
				"GRANT USAGE ON SCHEMA x TO anon",
			},
		},
		{
			name:     "empty fragments dropped",
			input:    ";;\nGRANT USAGE ON SCHEMA x TO anon;;",
			expected: []string{"GRANT USAGE ON SCHEMA x TO anon"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)
			c.Assert(applier.SplitSQLStatements(tt.input), qt.DeepEquals, tt.expected)
		})
	}
}
