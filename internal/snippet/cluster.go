// Package snippet selects the source lines that explain a warning.
package snippet

// maxGap is the largest step between neighbouring line numbers that still
// counts as one continuous cluster.
const maxGap = 2

// ClosestCluster returns the run of lines closest to target in which
// consecutive numbers differ by at most maxGap. lines must be ascending and
// distinct. The closest element wins ties by lower index, and the run is
// grown outward from it in both directions.
func ClosestCluster(lines []int, target int) []int {
	if len(lines) == 0 {
		return nil
	}

	closest := 0
	best := distance(lines[0], target)
	for i := 1; i < len(lines); i++ {
		if d := distance(lines[i], target); d < best {
			closest, best = i, d
		}
	}

	start := closest
	for start > 0 && lines[start-1] >= lines[start]-maxGap {
		start--
	}
	end := closest
	for end < len(lines)-1 && lines[end+1] <= lines[end]+maxGap {
		end++
	}

	out := make([]int, end-start+1)
	copy(out, lines[start:end+1])
	return out
}

func distance(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}
