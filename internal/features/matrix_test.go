package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMatrix(t *testing.T) {
	rows := scenarioRows(t)
	universe := []string{"A", "B", "C"}
	topProducts := []string{"soybean"}

	matrix, names, dates := BuildMatrix(rows, universe, topProducts)
	require.Len(t, matrix, 10)
	require.Len(t, dates, 10)

	// Every row has one value per name, in a stable order
	for _, vec := range matrix {
		assert.Len(t, vec, len(names))
	}

	// Global columns lead, per-company blocks follow universe order
	assert.Equal(t, "total_volume", names[0])
	assert.Contains(t, names, "pct_product_soybean")
	assert.Contains(t, names, "a_sales_30d")
	assert.Contains(t, names, "b_dominant")
	assert.Contains(t, names, "c_days_since_last_sale")
	idxA := indexOf(names, "a_sales_30d")
	idxB := indexOf(names, "b_sales_30d")
	idxC := indexOf(names, "c_sales_30d")
	assert.Less(t, idxA, idxB)
	assert.Less(t, idxB, idxC)

	// Values line up with the named columns
	assert.Equal(t, 1000.0, matrix[0][indexOf(names, "total_volume")])
	assert.Equal(t, 1.0, matrix[0][indexOf(names, "pct_product_soybean")])
	assert.Equal(t, 600.0, matrix[0][indexOf(names, "a_sales_30d")])
	assert.Equal(t, -1.0, matrix[0][indexOf(names, "c_days_since_last_sale")])
	assert.Equal(t, 1.0, matrix[1][indexOf(names, "b_dominant")])
	assert.True(t, dates[0].Equal(day(1)))
}

func TestBuildMatrix_NameStability(t *testing.T) {
	universe := []string{"A", "B"}
	topProducts := []string{"soybean", "corn"}

	n1 := featureNames(universe, topProducts)
	n2 := featureNames(universe, topProducts)
	assert.Equal(t, n1, n2)
}

func TestSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Alfa Agro S.A.", "alfa_agro_s_a_"},
		{"BETA", "beta"},
		{" grano 21 ", "grano_21"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, slug(tt.in))
	}
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}
