// Package renderer formats the results of the retirement engine as markdown
// or plain text.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"

	"github.com/etnz/retirement"
)

//go:embed templates/*.md
var templates embed.FS

// HIFOReason explains why the lots of a HIFO plan were chosen.
const HIFOReason = "High cost basis detected. Minimizes capital gains."

// SellInstruction renders a sale plan as the plain text alert sent to the
// retiree.
func SellInstruction(plan retirement.Plan) string {
	data := struct {
		Sales  retirement.Plan
		Reason string
	}{plan, HIFOReason}
	return strings.TrimSpace(renderTemplate("sell_instruction", data))
}

// renderTemplate executes the embedded template templates/<name>.md.
func renderTemplate(name string, data any) string {
	file := "templates/" + name + ".md"
	content, err := fs.ReadFile(templates, file)
	if err != nil {
		return fmt.Sprintf("error reading template %q: %v", file, err)
	}
	tmpl, err := template.New(name).Parse(string(content))
	if err != nil {
		return fmt.Sprintf("error parsing template %q: %v", file, err)
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", name, err)
	}
	return b.String()
}
