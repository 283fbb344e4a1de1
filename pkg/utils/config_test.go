package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePolicyRulesSortsDescending(t *testing.T) {
	rules, err := ParsePolicyRules("1:50, 5:100")
	require.NoError(t, err)

	assert.Equal(t, []PolicyRule{{MinDays: 5, Percent: 100}, {MinDays: 1, Percent: 50}}, rules)
}

func TestParsePolicyRulesRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"", "abc", "5:", "5:101", "-1:10", "3:50,3:20"} {
		_, err := ParsePolicyRules(raw)
		assert.Error(t, err, raw)
	}
}

func TestDefaultRefundPolicies(t *testing.T) {
	policies := DefaultRefundPolicies()

	assert.Equal(t, []PolicyRule{{MinDays: 1, Percent: 100}}, policies["flexible"])
	assert.Equal(t, []PolicyRule{{MinDays: 5, Percent: 100}, {MinDays: 1, Percent: 50}}, policies["moderate"])
	assert.Equal(t, []PolicyRule{{MinDays: 14, Percent: 100}, {MinDays: 7, Percent: 50}}, policies["strict"])
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitList(" a, ,b "))
	assert.Nil(t, splitList(""))
}
