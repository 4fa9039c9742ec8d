package taxonomy

import (
	"testing"

	"github.com/floworx/triage-agent/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTeam() *types.Team {
	return &types.Team{
		Managers: []types.Manager{
			{Name: "Mike", Email: "mike@thehottubman.com"},
			{Name: "Jen", Email: "jen@thehottubman.com"},
		},
		Suppliers: []types.Supplier{
			{Name: "Balboa", Domains: []string{"balboa.com"}},
			{Name: "Aqua-Flo", Domains: []string{"aquaflo.com"}},
		},
	}
}

func TestGenerate_BaseTree(t *testing.T) {
	tax, err := Generate(IndustryHotTubSpa, nil, nil)
	require.NoError(t, err)

	paths := tax.Paths()
	assert.Contains(t, paths, "FloWorx/Urgent")
	assert.Contains(t, paths, "FloWorx/Sales/New Inquiry")
	assert.Contains(t, paths, "FloWorx/Support/Water Care")
	assert.Contains(t, paths, "FloWorx/Billing/Invoices")
	assert.Contains(t, paths, DefaultCategory)

	// Trade extras belong to their industry only.
	generic, err := Generate(IndustryGeneric, nil, nil)
	require.NoError(t, err)
	assert.NotContains(t, generic.Paths(), "FloWorx/Support/Water Care")
}

func TestGenerate_TeamBranchesSorted(t *testing.T) {
	tax, err := Generate(IndustryHotTubSpa, testTeam(), nil)
	require.NoError(t, err)

	// Dynamic branches are sorted by name for deterministic provisioning.
	paths := tax.Paths()
	jen, mike := indexOf(paths, "FloWorx/Managers/Jen"), indexOf(paths, "FloWorx/Managers/Mike")
	require.GreaterOrEqual(t, jen, 0)
	require.GreaterOrEqual(t, mike, 0)
	assert.Less(t, jen, mike)

	aqua, balboa := indexOf(paths, "FloWorx/Suppliers/Aqua-Flo"), indexOf(paths, "FloWorx/Suppliers/Balboa")
	assert.Less(t, aqua, balboa)

	node := tax.Find("FloWorx/Managers/Jen")
	require.NotNil(t, node)
	assert.True(t, node.Dynamic)
	assert.Equal(t, ColorPurple, node.Color)
}

func TestGenerate_Deterministic(t *testing.T) {
	a, err := Generate(IndustryHVAC, testTeam(), []string{"Referrals"})
	require.NoError(t, err)
	b, err := Generate(IndustryHVAC, testTeam(), []string{"Referrals"})
	require.NoError(t, err)

	assert.Equal(t, a.Paths(), b.Paths())
}

func TestGenerate_UnknownIndustry(t *testing.T) {
	_, err := Generate("crypto_mining", nil, nil)
	assert.ErrorIs(t, err, ErrUnknownIndustry)
}

func TestMergeCustom(t *testing.T) {
	tax, err := Generate(IndustryGeneric, nil, []string{"Referrals", "sales"})
	require.NoError(t, err)

	// New custom category appears; "sales" dedupes against base "Sales".
	assert.Contains(t, tax.Paths(), "FloWorx/Referrals")
	count := 0
	for _, c := range tax.Root.Children {
		if c.Name == "Sales" || c.Name == "sales" {
			count++
		}
	}
	assert.Equal(t, 1, count)

	_, err = Generate(IndustryGeneric, nil, []string{"  "})
	assert.ErrorIs(t, err, ErrEmptyCategoryName)
}

func TestSafeColor(t *testing.T) {
	assert.Equal(t, ColorRed, SafeColor(ColorRed))
	assert.Equal(t, ColorGray, SafeColor("#123456"))
	assert.Equal(t, ColorGray, SafeColor(""))
}

func indexOf(list []string, want string) int {
	for i, v := range list {
		if v == want {
			return i
		}
	}
	return -1
}
