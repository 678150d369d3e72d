package panel

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	nameWidth    = 28
	idWidth      = 10
	channelWidth = 7
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Underline(true)
	meshStyle     = lipgloss.NewStyle().Bold(true)
	selectedStyle = lipgloss.NewStyle().Reverse(true)
	hintStyle     = lipgloss.NewStyle().Faint(true)
	statusStyle   = lipgloss.NewStyle().Italic(true)
	nameCol       = lipgloss.NewStyle().Width(nameWidth)
	idCol         = lipgloss.NewStyle().Width(idWidth)
	channelCol    = lipgloss.NewStyle().Width(channelWidth)
)

// View renders the material tree, the multimatte table and the status line.
func (p *Panel) View() string {
	sections := []string{p.materialView(), "", p.matteView()}
	if p.status != "" {
		sections = append(sections, "", statusStyle.Render(p.status))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// Render writes View to w.
func (p *Panel) Render(w io.Writer) error {
	_, err := fmt.Fprintln(w, p.View())
	return err
}

func (p *Panel) materialView() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(nameCol.Render("Material Name") + idCol.Render("Material ID")))
	if len(p.meshes) == 0 {
		b.WriteString("\n" + hintStyle.Render("no meshes; select meshes and add them"))
		return b.String()
	}
	for _, m := range p.meshes {
		marker := "▸ "
		if m.Expanded {
			marker = "▾ "
		}
		b.WriteString("\n" + p.styled(m, meshStyle.Render(marker+m.Label())))
		if !m.Expanded {
			continue
		}
		for _, r := range m.Materials() {
			line := nameCol.Render("    "+r.Label()) + idCol.Render(r.text)
			if id, ok := r.material.ID().Get(); ok {
				var used []string
				for _, rec := range p.model.MattesUsing(id) {
					used = append(used, rec.Name())
				}
				if len(used) > 0 {
					line += hintStyle.Render(strings.Join(used, ", "))
				}
			}
			b.WriteString("\n" + p.styled(r, line))
		}
	}
	return b.String()
}

func (p *Panel) matteView() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(nameCol.Render("MultiMatte Name") +
		channelCol.Render("Red") + channelCol.Render("Green") + channelCol.Render("Blue")))
	if len(p.mattes) == 0 {
		b.WriteString("\n" + hintStyle.Render("no material id mattes"))
		return b.String()
	}
	for _, r := range p.mattes {
		line := p.styled(r, nameCol.Render(r.Label()))
		for _, c := range r.Cells {
			line += p.styled(c, channelCol.Render(c.text))
		}
		b.WriteString("\n" + line)
	}
	return b.String()
}

func (p *Panel) styled(r Row, s string) string {
	if p.IsSelected(r) {
		return selectedStyle.Render(s)
	}
	return s
}
