package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddressNormalizeUppercasesCountry(t *testing.T) {
	addr := Address{
		Name:    " Maria Silva ",
		Line1:   "Rua das Flores 1",
		City:    "Porto",
		Country: "pt",
	}.Normalize()

	assert.Equal(t, "Maria Silva", addr.Name)
	assert.Equal(t, "PT", addr.Country)
}

func TestAddressValidate(t *testing.T) {
	valid := Address{
		Line1:      "Rua das Flores 1",
		City:       "Porto",
		PostalCode: "4000-123",
		Country:    "PT",
	}
	require.NoError(t, valid.Validate())

	fullName := valid
	fullName.Country = "PORTUGAL"
	require.NoError(t, fullName.Validate())

	tests := []struct {
		name   string
		mutate func(*Address)
	}{
		{"missing line1", func(a *Address) { a.Line1 = "" }},
		{"missing city", func(a *Address) { a.City = "" }},
		{"missing postal code", func(a *Address) { a.PostalCode = "" }},
		{"one letter country", func(a *Address) { a.Country = "P" }},
		{"numeric country", func(a *Address) { a.Country = "351" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			addr := valid
			tc.mutate(&addr)
			assert.Error(t, addr.Validate())
		})
	}
}

func TestStatusTimelineMergeIgnoresUnknownStages(t *testing.T) {
	timeline := NewStatusTimeline()
	patch := StatusTimeline{
		"accepted":  {Status: true, Date: "2024-03-01", Time: "10:00:00"},
		"teleported": {Status: true},
	}

	merged := timeline.Merge(patch)
	require.Len(t, merged, len(timeline))
	assert.True(t, merged["accepted"].Status)
	_, exists := merged["teleported"]
	assert.False(t, exists)
}
