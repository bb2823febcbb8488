package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"tasklist/internal/models"
)

// textView renders the task list as numbered lines.
// Format: "{N:>4}  [x] {TITLE}  ({ID})"
type textView struct {
	out    io.Writer
	errOut io.Writer
}

func (v *textView) Render(tasks []models.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(v.out, "No tasks found. Add one with `tasklist add <title>`.")
		return
	}
	for i, task := range tasks {
		mark := " "
		if task.Completed {
			mark = "x"
		}
		fmt.Fprintf(v.out, "%4d  [%s] %s  (%s)\n", i+1, mark, normalizeTitle(task.Title), task.ID)
	}
}

func (v *textView) Error(err error) {
	fmt.Fprintf(v.errOut, "error: %v\n", err)
}

// normalizeTitle keeps each task on one line.
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	return strings.ReplaceAll(title, "\n", " ")
}

// promptConfirm reads a y/N answer from in.
type promptConfirm struct {
	in  *bufio.Reader
	out io.Writer
	yes bool
}

func (p *promptConfirm) Confirm(prompt string) bool {
	if p.yes {
		return true
	}
	fmt.Fprintf(p.out, "%s [y/N] ", prompt)
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
