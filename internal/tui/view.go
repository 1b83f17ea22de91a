package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	contentHeight := max(4, m.height-headerHeight-footerHeight)
	contentWidth := max(10, m.width)

	// Header
	title := " treecanopy ─ terminal tree canopy viewer "
	if m.dataset != nil {
		title += "─ " + m.dataset.Name + " "
	}
	if m.cfg.Style != "" {
		title += "─ style " + m.cfg.Style + " "
	}
	header := lipgloss.NewStyle().Width(contentWidth).MaxHeight(headerHeight).Padding(0).Render(titleStyle.Render(title))

	// Sidebar
	var sidebar string
	if m.showSidebar {
		sidebar = lipgloss.NewStyle().Width(sidebarWidth).Render(m.l.View())
	}

	mapWidth, mapHeight := m.mapW, m.mapH
	var mapView string
	switch {
	case m.showAttrs:
		// Render the records table centered in the map area
		colW := 0
		for _, c := range m.tbl.Columns() {
			colW += c.Width + 3
		}
		maxW := min(mapWidth, max(32, colW))
		m.tbl.SetWidth(maxW - 4)
		m.tbl.SetHeight(min(mapHeight-2, 20))
		attrsBox := boxStyle.Width(maxW).Render(m.tbl.View())
		mapView = lipgloss.Place(mapWidth, mapHeight, lipgloss.Center, lipgloss.Center, attrsBox)
	case m.gotoMode:
		m.ta.SetWidth(min(mapWidth-4, 50))
		prompt := boxStyle.Render("goto\n" + m.ta.View())
		mapView = lipgloss.Place(mapWidth, mapHeight, lipgloss.Center, lipgloss.Center, prompt)
	default:
		mapView = lipgloss.NewStyle().Width(mapWidth).Height(mapHeight).Render(m.renderMap(mapWidth, mapHeight))
	}

	// Inspect popup takes the content area while open
	popup := ""
	if m.inspectPopup != "" && !m.showAttrs {
		maxPopupW := max(20, min(48, contentWidth/2))
		box := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1).MaxWidth(maxPopupW).Render(m.inspectPopup)
		popup = lipgloss.Place(contentWidth, contentHeight, lipgloss.Left, lipgloss.Center, box)
	}

	var body string
	if m.showSidebar {
		body = lipgloss.JoinHorizontal(lipgloss.Top, sidebar, " ", mapView)
	} else {
		body = mapView
	}

	// Footer / help
	help := m.renderHelp()
	status := dimStyle.Render(" " + m.status + " ")
	coords := ""
	if m.hoverHasGeo {
		coords = dimStyle.Render(fmt.Sprintf("  lon=%.5f lat=%.5f  ", m.hoverLon, m.hoverLat))
	}
	left := lipgloss.JoinVertical(lipgloss.Left, status, help)
	spacerW := max(0, contentWidth-lipgloss.Width(left)-lipgloss.Width(coords))
	right := lipgloss.Place(spacerW+lipgloss.Width(coords), 1, lipgloss.Right, lipgloss.Center, coords)
	footer := lipgloss.NewStyle().Width(contentWidth).Render(lipgloss.JoinHorizontal(lipgloss.Bottom, left, right))

	if popup != "" {
		body = popup
	}
	ui := lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
	return appStyle.Width(contentWidth).Height(m.height).Render(ui)
}

func (m Model) renderHelp() string {
	if !m.helpVisible {
		return ""
	}
	keys := []string{
		"↑↓←→ pan",
		"+/- zoom",
		"[/] pitch",
		"g goto",
		"r reset",
		"Tab datasets",
		"a records",
		"i inspect",
		"h help",
		"q quit",
	}
	return dimStyle.Render("  " + strings.Join(keys, "  "))
}
