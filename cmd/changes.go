package cmd

import (
	"fmt"
	"io"
	"sort"

	"github.com/charmbracelet/lipgloss"
)

// printChanges writes one line per operation, sorted by name
func printChanges(w io.Writer, changes map[string]int) {
	if len(changes) == 0 {
		fmt.Fprintln(w, grayText.Render("No changes"))
		return
	}

	ops := []string{}
	for op := range changes {
		ops = append(ops, op)
	}
	sort.Strings(ops)

	for _, op := range ops {
		fmt.Fprintln(w, opIcon(op).Render("●")+whiteText.Render(fmt.Sprintf("%s: %d", op, changes[op])))
	}
}

func opIcon(op string) lipgloss.Style {
	switch op {
	case "create":
		return greenIcon
	case "delete", "replace":
		return redIcon
	case "same":
		return grayText.PaddingRight(1)
	}

	return yellowIcon
}
