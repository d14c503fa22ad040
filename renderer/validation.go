package renderer

import (
	"fmt"
	"strings"

	"github.com/etnz/retirement/lotcsv"
)

// ValidationMarkdown renders the structural validation of a lot export.
func ValidationMarkdown(name string, r lotcsv.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Validation of %s\n\n", name)
	if r.Valid {
		fmt.Fprintln(&b, "Valid: yes")
		return b.String()
	}
	fmt.Fprint(&b, "Valid: no\n\n")
	for _, e := range r.Errors {
		fmt.Fprintf(&b, "- %s\n", e)
	}
	return b.String()
}
