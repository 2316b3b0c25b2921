package view

import "strings"

// CellClass appends class to a space separated class list unless present.
func CellClass(classes, class string) string {
	if hasClass(classes, class) {
		return classes
	}
	if classes == "" {
		return class
	}
	return classes + " " + class
}

func hasClass(classes, class string) bool {
	for _, c := range strings.Fields(classes) {
		if c == class {
			return true
		}
	}
	return false
}

// ReplayClass is the class list of the replay control.
func ReplayClass(visible bool) string {
	if visible {
		return ClassShow
	}
	return ""
}
