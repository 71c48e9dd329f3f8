package placement

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCandidates_ShipsRule(t *testing.T) {
	tests := []struct {
		name string
		want []string
	}{
		{"Ships part 1", []string{"Ships part 1", "Ships part 2"}},
		{"Ships Part 2", []string{"Ships Part 2", "Ships Part 1"}},
		{"SHIPS PART 1 and part 1", []string{"SHIPS PART 1 and part 1", "SHIPS Part 2 and part 1"}},
		{"Weapons part 1", []string{"Weapons part 1"}},
		{"Ships", []string{"Ships"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Candidates(tt.name, DefaultRules()))
		})
	}
}

func TestCandidates_CustomRule(t *testing.T) {
	rules := append(DefaultRules(), SwapRule("armor", "mk1", "mk2"))

	assert.Equal(t, []string{"Armor mk2", "Armor mk1"}, Candidates("Armor mk2", rules))
	assert.Equal(t, []string{"Ships part 1"}, Candidates("Ships part 1", nil))
}

func TestCandidates_NoDuplicates(t *testing.T) {
	rules := []Rule{ShipsRule, ShipsRule}
	assert.Equal(t, []string{"ships part 1", "ships part 2"}, Candidates("ships part 1", rules))
}

func TestRule_Applies(t *testing.T) {
	assert.True(t, ShipsRule.Applies("Big SHIPS"))
	assert.False(t, ShipsRule.Applies("shop"))
	assert.False(t, Rule{}.Applies("anything"))
}
