package types

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSymptomInput_Validate_Boundary(t *testing.T) {
	// Exactly 10 characters is accepted, 9 is rejected.
	ok := SymptomInput{Symptoms: strings.Repeat("a", 10)}
	assert.NoError(t, ok.Validate())

	short := SymptomInput{Symptoms: strings.Repeat("a", 9)}
	err := short.Validate()
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "symptoms", verr.Field)
}

func TestSymptomInput_Validate_CountsRunes(t *testing.T) {
	// Multi-byte characters count once each.
	in := SymptomInput{Symptoms: strings.Repeat("é", 10)}
	assert.NoError(t, in.Validate())

	in = SymptomInput{Symptoms: strings.Repeat("é", 9)}
	assert.Error(t, in.Validate())
}

func TestSymptomInput_Validate_EmptyHistoryAllowed(t *testing.T) {
	in := SymptomInput{Symptoms: "persistent dry cough"}
	assert.NoError(t, in.Validate())
}

func TestParseRole(t *testing.T) {
	cases := []struct {
		in      string
		want    Role
		wantErr bool
	}{
		{"patient", RolePatient, false},
		{"Doctor", RoleDoctor, false},
		{" ADMIN ", RoleAdmin, false},
		{"nurse", "", true},
		{"", "", true},
	}
	for _, tc := range cases {
		got, err := ParseRole(tc.in)
		if tc.wantErr {
			assert.Error(t, err, "input %q", tc.in)
			continue
		}
		require.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.want, got)
	}
}

func TestParseConfidence(t *testing.T) {
	for _, in := range []string{"low", "Medium", "HIGH", " high "} {
		got, err := ParseConfidence(in)
		require.NoError(t, err, "input %q", in)
		assert.Contains(t, []ConfidenceLevel{ConfidenceLow, ConfidenceMedium, ConfidenceHigh}, got)
	}

	// Out-of-set values are rejected, never defaulted.
	for _, in := range []string{"", "very high", "moderate", "0.8"} {
		_, err := ParseConfidence(in)
		assert.Error(t, err, "input %q", in)
	}
}
