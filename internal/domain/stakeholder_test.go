package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStakeholder_PrioritySignal(t *testing.T) {
	tests := []struct {
		name     string
		p1       string
		p2       string
		p3       string
		expected string
	}{
		{"all three", "Cost", "Speed", "Quality", "Cost Speed Quality"},
		{"blank third dropped", "Cost", "Speed", "", "Cost Speed"},
		{"blank middle dropped", "Cost", "  ", "Quality", "Cost Quality"},
		{"surrounding whitespace trimmed", " Cost ", "Speed\t", "", "Cost Speed"},
		{"all blank", "", " ", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Stakeholder{Priority1: tt.p1, Priority2: tt.p2, Priority3: tt.p3}
			assert.Equal(t, tt.expected, s.PrioritySignal())
		})
	}
}

func TestStakeholder_Priorities_KeepsRankOrder(t *testing.T) {
	s := &Stakeholder{Priority1: "", Priority2: "Risk", Priority3: "Growth"}
	assert.Equal(t, []string{"Risk", "Growth"}, s.Priorities())
}

func TestDefaultPersona(t *testing.T) {
	p := DefaultPersona()

	assert.Equal(t, "General Stakeholder", p.Name)
	assert.Equal(t, "Decision Maker", p.Role)
	assert.Equal(t, ToneProfessional, p.Tone)
	assert.Equal(t, "Efficiency Cost Optimization Quality", p.PrioritySignal())
}

func TestValidateStakeholder(t *testing.T) {
	valid := func() *Stakeholder {
		return &Stakeholder{ClientID: 1, Name: "Dana", Role: "CFO", Tone: ToneAnalytical}
	}

	require.NoError(t, ValidateStakeholder(valid()))

	t.Run("nil", func(t *testing.T) {
		assert.Error(t, ValidateStakeholder(nil))
	})

	t.Run("missing client", func(t *testing.T) {
		s := valid()
		s.ClientID = 0
		assert.Error(t, ValidateStakeholder(s))
	})

	t.Run("missing role", func(t *testing.T) {
		s := valid()
		s.Role = " "
		assert.Error(t, ValidateStakeholder(s))
	})

	t.Run("professional tone is not storable", func(t *testing.T) {
		s := valid()
		s.Tone = ToneProfessional
		assert.ErrorIs(t, ValidateStakeholder(s), ErrInvalidTone)
	})
}
