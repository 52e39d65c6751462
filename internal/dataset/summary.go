package dataset

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

// Summary describes a built dataset.
type Summary struct {
	Records      int
	Repositories int
	// MeanContextLength is the mean warningContext length in characters.
	MeanContextLength float64
	ByChangeType      map[string]int
}

// Summarize computes dataset statistics.
func Summarize(recs []*Record) Summary {
	s := Summary{ByChangeType: make(map[string]int)}
	repos := make(map[string]bool)
	total := 0
	for _, r := range recs {
		if r == nil {
			continue
		}
		s.Records++
		total += utf8.RuneCountInString(r.WarningContext)
		repos[r.RepositoryName] = true
		if r.Difftext != nil {
			s.ByChangeType[r.Difftext.ChangeType.String()]++
		}
	}
	s.Repositories = len(repos)
	if s.Records > 0 {
		s.MeanContextLength = float64(total) / float64(s.Records)
	}
	return s
}

func (s Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "records: %d\n", s.Records)
	fmt.Fprintf(&b, "repositories: %d\n", s.Repositories)
	fmt.Fprintf(&b, "mean context length: %.2f\n", s.MeanContextLength)

	kinds := make([]string, 0, len(s.ByChangeType))
	for k := range s.ByChangeType {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		fmt.Fprintf(&b, "  %-8s %d\n", k, s.ByChangeType[k])
	}
	return b.String()
}
