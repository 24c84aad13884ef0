package platform_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/giamma80/gymbro-platform-sub001/core/platform"
)

func TestAPIRoles(t *testing.T) {
	c := qt.New(t)

	c.Assert(platform.APIRoles(), qt.DeepEquals, []string{"anon", "authenticated", "service_role"})
}

func TestNormalizeSchemaName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "kebab-case service name",
			input:    "calorie-balance",
			expected: "calorie_balance",
		},
		{
			name:     "already snake_case",
			input:    "meal_tracking",
			expected: "meal_tracking",
		},
		{
			name:     "mixed case with whitespace",
			input:    "  AI-Coach ",
			expected: "ai_coach",
		},
		{
			name:     "single word",
			input:    "notifications",
			expected: "notifications",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)
			c.Assert(platform.NormalizeSchemaName(tt.input), qt.Equals, tt.expected)
		})
	}
}

func TestValidateSchemaName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "valid snake_case", input: "calorie_balance", wantErr: false},
		{name: "leading underscore", input: "_internal", wantErr: false},
		{name: "empty", input: "", wantErr: true},
		{name: "kebab-case", input: "calorie-balance", wantErr: true},
		{name: "uppercase", input: "CalorieBalance", wantErr: true},
		{name: "leading digit", input: "1schema", wantErr: true},
		{name: "quoted identifier", input: `"weird name"`, wantErr: true},
		{name: "too long", input: "a_very_long_schema_name_that_goes_on_and_on_and_exceeds_the_limit", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)
			err := platform.ValidateSchemaName(tt.input)
			if tt.wantErr {
				c.Assert(err, qt.IsNotNil)
			} else {
				c.Assert(err, qt.IsNil)
			}
		})
	}
}

func TestValidateServiceName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "kebab-case", input: "calorie-balance", wantErr: false},
		{name: "single word", input: "notifications", wantErr: false},
		{name: "empty", input: "", wantErr: true},
		{name: "trailing dash", input: "ai-coach-", wantErr: true},
		{name: "double dash", input: "ai--coach", wantErr: true},
		{name: "uppercase", input: "AI-Coach", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)
			err := platform.ValidateServiceName(tt.input)
			if tt.wantErr {
				c.Assert(err, qt.IsNotNil)
			} else {
				c.Assert(err, qt.IsNil)
			}
		})
	}
}
