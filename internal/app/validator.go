package app

import "sort"

// ValidateAnswer reports whether selected and correct hold the same option indices.
// Order is irrelevant; duplicates are not collapsed and therefore never match.
func ValidateAnswer(selected, correct []int) bool {
	if len(selected) != len(correct) {
		return false
	}
	a := append([]int(nil), selected...)
	b := append([]int(nil), correct...)
	sort.Ints(a)
	sort.Ints(b)
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
