package finance

import (
	"testing"

	"prospect/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankCategories(t *testing.T) {
	expenses := []core.Expense{
		{Amount: money(120), Recurrence: core.Yearly, Category: "software"}, // 10/month
		{Amount: money(60), Recurrence: core.Monthly, Category: "rent"},
		{Amount: money(30), Recurrence: core.Quarterly, Category: "insurance"}, // 10/month
		{Amount: money(500), Recurrence: core.OneTime, Category: "hardware"},
		{Amount: money(20), Recurrence: core.Monthly, Category: "rent"},
	}

	shares := RankCategories(expenses)
	require.Len(t, shares, 3)

	assert.Equal(t, "rent", shares[0].Category)
	assertDecimal(t, "80", shares[0].Monthly)
	assertDecimal(t, "80", shares[0].Percent)

	// tie between software and insurance: first seen wins
	assert.Equal(t, "software", shares[1].Category)
	assert.Equal(t, "insurance", shares[2].Category)
	assertDecimal(t, "10", shares[1].Percent)
	assertDecimal(t, "10", shares[2].Percent)
}

func TestRankCategories_MatchesSummary(t *testing.T) {
	expenses := []core.Expense{
		{Amount: money(100), Recurrence: core.Quarterly, Category: "a"},
		{Amount: money(7), Recurrence: core.Yearly, Category: "b"},
		{Amount: money(3), Recurrence: core.Monthly, Category: "c"},
	}
	s := Summarize(nil, expenses)
	for _, share := range RankCategories(expenses) {
		assert.True(t, share.Monthly.Equal(s.ExpensesByCategory[share.Category]), share.Category)
	}
}

func TestTopCategories(t *testing.T) {
	var expenses []core.Expense
	for i, name := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		expenses = append(expenses, core.Expense{Amount: money(int64(10 * (i + 1))), Recurrence: core.Monthly, Category: name})
	}

	top := TopCategories(expenses, 5)
	require.Len(t, top, 5)
	assert.Equal(t, "g", top[0].Category)
	assert.Equal(t, "c", top[4].Category)

	assert.Len(t, TopCategories(expenses, 0), 7)
	assert.Len(t, TopCategories(expenses, 50), 7)
}

func TestRankCategories_NoRecurringSpend(t *testing.T) {
	shares := RankCategories([]core.Expense{
		{Amount: money(10), Recurrence: core.OneTime, Category: "a"},
	})
	assert.Empty(t, shares)

	shares = RankCategories([]core.Expense{
		{Amount: core.Money{}, Recurrence: core.Monthly, Category: "free tier"},
	})
	require.Len(t, shares, 1)
	assert.True(t, shares[0].Percent.IsZero())
}
