// Package ridge estimates how much each lifestyle feature moves a user's
// cognitive scores, using a small per-domain ridge regression.
package ridge

import "math"

// PivotEpsilon is the smallest pivot magnitude the solver eliminates with.
const PivotEpsilon = 1e-8

// Solve solves A·x = b by Gauss-Jordan elimination with partial pivoting.
// A column whose best pivot is below PivotEpsilon is skipped and its
// unknown keeps its previous value of zero. A and b are not modified.
func Solve(a [][]float64, b []float64) []float64 {
	n := len(b)
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n+1)
		copy(m[i], a[i][:n])
		m[i][n] = b[i]
	}

	x := make([]float64, n)
	pivotRow := make([]int, n)
	for i := range pivotRow {
		pivotRow[i] = -1
	}

	row := 0
	for col := 0; col < n && row < n; col++ {
		best := row
		for r := row + 1; r < n; r++ {
			if math.Abs(m[r][col]) > math.Abs(m[best][col]) {
				best = r
			}
		}
		if math.Abs(m[best][col]) < PivotEpsilon {
			continue
		}
		m[row], m[best] = m[best], m[row]

		p := m[row][col]
		for c := col; c <= n; c++ {
			m[row][c] /= p
		}
		for r := 0; r < n; r++ {
			if r == row || m[r][col] == 0 {
				continue
			}
			f := m[r][col]
			for c := col; c <= n; c++ {
				m[r][c] -= f * m[row][c]
			}
		}
		pivotRow[col] = row
		row++
	}

	for col, r := range pivotRow {
		if r >= 0 {
			x[col] = m[r][n]
		}
	}
	return x
}
