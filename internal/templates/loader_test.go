package templates

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terra-clan/ideaforge/internal/models"
)

func teamContext(session models.SessionType) models.Context {
	return models.Context{
		Kind:        models.KindTeam,
		CompanyName: "Acme",
		ProductName: "Rocket",
		Timeline:    "Q3",
		TeamGoals:   "doubling activation",
		SessionType: session,
	}
}

func personalContext(goal models.Goal) models.Context {
	return models.Context{
		Kind:        models.KindPersonal,
		Interests:   "music tech",
		Skills:      "Go, React",
		TimeBudget:  "Weekend",
		Goal:        goal,
		Constraints: "free tools only",
	}
}

func TestBuiltInBuckets(t *testing.T) {
	l, err := NewLoader()
	require.NoError(t, err)

	assert.Equal(t, len(models.Goals)+len(models.SessionTypes), l.Len())
	for _, g := range models.Goals {
		b := l.Get(models.KindPersonal, string(g))
		require.NotNil(t, b, g)
		assert.Equal(t, 6, b.Ideas, g)
	}
	for _, s := range models.SessionTypes {
		b := l.Get(models.KindTeam, string(s))
		require.NotNil(t, b, s)
		assert.Equal(t, 6, b.Ideas, s)
	}

	list := l.List()
	assert.Equal(t, models.KindPersonal, list[0].Kind)
	assert.Equal(t, models.KindTeam, list[len(list)-1].Kind)
}

func TestRenderTeamProduct(t *testing.T) {
	l, err := NewLoader()
	require.NoError(t, err)

	res, err := l.Render(teamContext(models.SessionProduct))
	require.NoError(t, err)

	assert.Equal(t, models.SourceTemplate, res.Source)
	assert.Equal(t, "product", res.Bucket)
	assert.NotEmpty(t, res.ID)
	assert.Equal(t,
		"Based on your context, I understand that Acme is focused on Rocket. "+
			"Your team goals involve doubling activation within a Q3 timeframe. "+
			"For this product session, we need to bridge the gap between your current product capabilities and these specific objectives.",
		res.Understanding)

	require.Len(t, res.Ideas, 6)
	assert.Equal(t, "Core Loop Enhancement", res.Ideas[0].Title)
	assert.Equal(t, "Optimize the primary Rocket user flow to directly support doubling activation.", res.Ideas[0].Description)
	assert.Equal(t, "Develop a unique feature for Acme that distinguishes it in the product space.", res.Ideas[4].Description)
}

func TestRenderRatingsByIndex(t *testing.T) {
	l, err := NewLoader()
	require.NoError(t, err)

	res, err := l.Render(personalContext(models.GoalIncome))
	require.NoError(t, err)

	wantPriority := []models.Level{"High", "Medium", "Low", "High", "Medium", "Low"}
	wantEffort := []models.Level{"Low", "Medium", "Low", "Medium", "Low", "Medium"}
	wantImpact := []models.Level{"High", "Medium", "Medium", "High", "Medium", "Medium"}

	require.Len(t, res.Ideas, 6)
	for i, idea := range res.Ideas {
		assert.Equal(t, wantPriority[i], idea.Priority, "priority %d", i)
		assert.Equal(t, wantEffort[i], idea.Effort, "effort %d", i)
		assert.Equal(t, wantImpact[i], idea.Impact, "impact %d", i)
		assert.Equal(t, string(rune('0'+i)), idea.ID)
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	l, err := NewLoader()
	require.NoError(t, err)

	for _, g := range models.Goals {
		a, err := l.Render(personalContext(g))
		require.NoError(t, err)
		b, err := l.Render(personalContext(g))
		require.NoError(t, err)

		assert.Equal(t, a.Understanding, b.Understanding)
		assert.Equal(t, a.Ideas, b.Ideas)
	}
}

func TestRenderUnknownBucketFallsBack(t *testing.T) {
	l, err := NewLoader()
	require.NoError(t, err)

	res, err := l.Render(teamContext("sales"))
	require.NoError(t, err)
	assert.Equal(t, "product", res.Bucket)
	assert.Contains(t, res.Understanding, "For this product session")

	res, err = l.Render(personalContext(""))
	require.NoError(t, err)
	assert.Equal(t, "learn", res.Bucket)
	assert.Contains(t, res.Understanding, "these learn ideas")
}

func TestLoadFromDirOverridesBucket(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "learn.yaml"), []byte(`
kind: personal
bucket: learn
understanding: "Custom take on {{.Interests}}"
ideas:
  - title: Only Idea
    description: Learn {{.Skills}} slowly.
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yml"), []byte("kind: personal\nbucket: nope\nideas: []\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad-template.yaml"), []byte(`
kind: team
bucket: strategy
ideas:
  - title: "{{.Unclosed"
`), 0o644))

	l, err := NewLoader()
	require.NoError(t, err)
	require.NoError(t, l.LoadFromDir(dir))

	res, err := l.Render(personalContext(models.GoalLearn))
	require.NoError(t, err)
	assert.Equal(t, "Custom take on music tech", res.Understanding)
	require.Len(t, res.Ideas, 1)
	assert.Equal(t, "Learn Go, React slowly.", res.Ideas[0].Description)

	strategy := l.Get(models.KindTeam, "strategy")
	require.NotNil(t, strategy)
	assert.Equal(t, 6, strategy.Ideas)
}

func TestLoadFromDirMissing(t *testing.T) {
	l, err := NewLoader()
	require.NoError(t, err)
	assert.Error(t, l.LoadFromDir(filepath.Join(t.TempDir(), "missing")))
}

func TestLoadFromBytesValidation(t *testing.T) {
	l, err := NewLoader()
	require.NoError(t, err)

	tests := []struct {
		name string
		yaml string
	}{
		{"unknown kind", "kind: enterprise\nbucket: product\nideas: [{title: A}]\n"},
		{"unknown bucket", "kind: team\nbucket: sales\nideas: [{title: A}]\n"},
		{"no ideas", "kind: team\nbucket: product\n"},
		{"missing title", "kind: team\nbucket: product\nideas: [{description: A}]\n"},
		{"invalid yaml", "kind: [team\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, l.LoadFromBytes(tt.name, []byte(tt.yaml)))
		})
	}
}
