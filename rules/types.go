package rules

import "strings"

// typed is anything the host reports with a display type name.
type typed interface {
	TypeName() string
}

func containsType[T typed](items []T, t string) bool {
	return countType(items, t) > 0
}

// countType counts items whose TypeName matches t, ignoring case.
func countType[T typed](items []T, t string) int {
	n := 0
	for _, item := range items {
		if strings.EqualFold(item.TypeName(), t) {
			n++
		}
	}
	return n
}

// countAnyType counts items matching any of types. Each item counts once.
func countAnyType[T typed](items []T, types []string) int {
	n := 0
	for _, item := range items {
		for _, t := range types {
			if strings.EqualFold(item.TypeName(), t) {
				n++
				break
			}
		}
	}
	return n
}
