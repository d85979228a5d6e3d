package gantt

import (
	"math"
	"strings"

	"github.com/flexgantt/flexgantt/pkg/task"
)

// Combination holds one value per depth and identifies a chart row.
type Combination []task.Value

// Equal reports whether c and o hold strictly equal values at every depth.
func (c Combination) Equal(o Combination) bool {
	if len(c) != len(o) {
		return false
	}
	for i := range c {
		if !c[i].Equal(o[i]) {
			return false
		}
	}
	return true
}

// String joins the values with " / " for logs and terminal output.
func (c Combination) String() string {
	parts := make([]string, len(c))
	for i, v := range c {
		parts[i] = v.String()
	}
	return strings.Join(parts, " / ")
}

// CountCombinations returns the size of the Cartesian product of sets,
// saturating at math.MaxInt. It returns 0 when sets is empty or any set is.
func CountCombinations(sets [][]task.Value) int {
	if len(sets) == 0 {
		return 0
	}
	n := 1
	for _, s := range sets {
		if len(s) == 0 {
			return 0
		}
		if n > math.MaxInt/len(s) {
			return math.MaxInt
		}
		n *= len(s)
	}
	return n
}

// Combinations returns the Cartesian product of sets in row order: the first
// depth varies slowest and the last fastest. Any empty set yields no
// combinations.
func Combinations(sets [][]task.Value) []Combination {
	total := CountCombinations(sets)
	if total == 0 {
		return nil
	}
	out := make([]Combination, 0, total)
	idx := make([]int, len(sets))
	for {
		c := make(Combination, len(sets))
		for d, i := range idx {
			c[d] = sets[d][i]
		}
		out = append(out, c)

		// Odometer increment from the last depth.
		d := len(sets) - 1
		for d >= 0 {
			idx[d]++
			if idx[d] < len(sets[d]) {
				break
			}
			idx[d] = 0
			d--
		}
		if d < 0 {
			return out
		}
	}
}

// RowSpans computes the merge plan for the leading columns of rows. For row
// r and depth d the entry is 0 when row r-1 holds the same values at depths
// 0..d (the cell is covered by a cell above), otherwise the number of
// consecutive rows starting at r that share those values.
//
// The plan is built in one backward pass. combos need not be sorted;
// non-adjacent repeats start new spans.
func RowSpans(combos []Combination) [][]int {
	n := len(combos)
	if n == 0 {
		return nil
	}

	width := 0
	for _, c := range combos {
		width = max(width, len(c))
	}

	// common[r] is the length of the value prefix row r shares with row r-1.
	common := make([]int, n+1)
	for r := 1; r < n; r++ {
		common[r] = commonPrefix(combos[r-1], combos[r])
	}

	// run[d] is the length of the run at depth d starting at the row below.
	run := make([]int, width)
	spans := make([][]int, n)
	for r := n - 1; r >= 0; r-- {
		spans[r] = make([]int, len(combos[r]))
		for d := range combos[r] {
			if common[r+1] > d {
				run[d]++
			} else {
				run[d] = 1
			}
			if common[r] <= d {
				spans[r][d] = run[d]
			}
		}
	}
	return spans
}

func commonPrefix(a, b Combination) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if !a[i].Equal(b[i]) {
			return i
		}
	}
	return n
}

// Group indexes the values of tasks per depth and returns the row
// combinations together with their merge plan.
func Group(tasks []task.Task, depths []Depth) ([]Combination, [][]int) {
	combos := Combinations(ValueSets(tasks, depths))
	return combos, RowSpans(combos)
}
