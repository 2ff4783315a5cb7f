package golf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func upper(n int) Bound { return Bound{Kind: KindUpper, NumRounds: n} }
func lower(n int) Bound { return Bound{Kind: KindLower, NumRounds: n} }

func solution(n int, text string) Bound {
	return Bound{Kind: KindLower, NumRounds: n, Solution: &Solution{Text: text, Validated: true}}
}

func TestBestUpper(t *testing.T) {
	assert.Nil(t, BestUpper(nil))
	assert.Nil(t, BestUpper([]Bound{lower(3)}))

	best := BestUpper([]Bound{upper(5)})
	require.NotNil(t, best)
	assert.Equal(t, 5, best.NumRounds)

	best = BestUpper([]Bound{upper(6), upper(5), upper(7), lower(9)})
	require.NotNil(t, best)
	assert.Equal(t, 5, best.NumRounds)
}

func TestBestLower(t *testing.T) {
	assert.Nil(t, BestLower(nil))
	assert.Nil(t, BestLower([]Bound{upper(3)}))

	best := BestLower([]Bound{lower(5)})
	require.NotNil(t, best)
	assert.Equal(t, 5, best.NumRounds)

	best = BestLower([]Bound{lower(4), lower(5), lower(3), upper(1)})
	require.NotNil(t, best)
	assert.Equal(t, 5, best.NumRounds)
}

func TestBestLower_PrefersSolutionOnTie(t *testing.T) {
	orders := [][]Bound{
		{lower(5), solution(5, "solution 5"), lower(5)},
		{solution(5, "solution 5"), lower(5)},
		{lower(5), lower(5), solution(5, "solution 5")},
	}
	for _, bounds := range orders {
		best := BestLower(bounds)
		require.NotNil(t, best)
		assert.True(t, best.IsSolution())
		assert.Equal(t, "solution 5", best.Solution.Text)
	}
}

func TestBestLower_BetterPlainBoundBeatsSolution(t *testing.T) {
	r := Resolve([]Bound{solution(4, "solution 4"), lower(5)})
	require.NotNil(t, r.Lower)
	assert.Equal(t, 5, r.Lower.NumRounds)
	assert.False(t, r.Lower.IsSolution())
	assert.Nil(t, r.Solution())
}

func TestResolution_Solution(t *testing.T) {
	assert.Nil(t, Resolve(nil).Solution())
	assert.Nil(t, Resolve([]Bound{lower(4), lower(5)}).Solution())

	sol := Resolve([]Bound{solution(3, "s3"), solution(5, "s5"), solution(4, "s4")}).Solution()
	require.NotNil(t, sol)
	assert.Equal(t, "s5", sol.Text)
}

func TestResolution_SolutionAmongTiedSolutions(t *testing.T) {
	r := Resolve([]Bound{solution(5, "a"), lower(5), solution(5, "b")})
	require.NotNil(t, r.Solution())
	assert.Equal(t, 5, r.Lower.NumRounds)
	assert.Contains(t, []string{"a", "b"}, r.Solution().Text)
}

func TestResolution_IsClosed(t *testing.T) {
	tests := []struct {
		name   string
		bounds []Bound
		closed bool
		rng    string
	}{
		{"no bounds", nil, false, "unknown"},
		{"only upper", []Bound{upper(5)}, false, "? - 5"},
		{"only lower", []Bound{lower(5)}, false, "5 - ?"},
		{"only solution", []Bound{solution(5, "s")}, false, "5 - ?"},
		{"bounds match", []Bound{upper(5), lower(5)}, true, "5"},
		{"bounds match with solution", []Bound{upper(5), solution(5, "s")}, true, "5"},
		{"bounds differ", []Bound{upper(5), lower(4)}, false, "4 - 5"},
		{"bounds differ with solution", []Bound{upper(5), solution(4, "s")}, false, "4 - 5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Resolve(tt.bounds)
			assert.Equal(t, tt.closed, r.IsClosed())
			assert.Equal(t, tt.rng, r.Range())
		})
	}
}

func TestParseBoundKind(t *testing.T) {
	k, err := ParseBoundKind("upper")
	require.NoError(t, err)
	assert.Equal(t, KindUpper, k)

	k, err = ParseBoundKind("lower")
	require.NoError(t, err)
	assert.Equal(t, KindLower, k)

	_, err = ParseBoundKind("sideways")
	assert.Error(t, err)
}

func TestCheckNumRounds(t *testing.T) {
	assert.NoError(t, CheckNumRounds(1))
	assert.Error(t, CheckNumRounds(0))
	assert.Error(t, CheckNumRounds(-2))
}
