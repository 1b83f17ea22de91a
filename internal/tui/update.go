package tui

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"

	list "github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/paulmach/orb"

	"treecanopy/internal/camera"
	"treecanopy/internal/visibility"
)

const (
	frameInterval = time.Second / 60
	zoomStep      = 0.5
	pitchStep     = 5.0
	hoverRadius   = 6 // micro pixels
)

// refreshMsg is a camera-change event: idle, resize or moveend.
type refreshMsg struct{ reason string }

type frameMsg time.Time

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case refreshMsg:
		return m, m.refresh(msg.reason)
	case frameMsg:
		return m, m.frame(time.Time(msg))
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, m.refresh("resize")
	case tea.KeyMsg:
		// If list is visible and filtering, send keys to list and ignore global commands
		if m.showSidebar && m.l.FilterState() == list.Filtering {
			var cmd tea.Cmd
			m.l, cmd = m.l.Update(msg)
			return m, cmd
		}
		if m.gotoMode {
			return m.updateGoto(msg)
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "+", "=":
			return m, m.flyTo(m.cam.Center, m.cam.Zoom()+zoomStep, m.cam.Pitch(), 0.3)
		case "-", "_":
			return m, m.flyTo(m.cam.Center, m.cam.Zoom()-zoomStep, m.cam.Pitch(), 0.3)
		case "]":
			m.cam.SetPitch(m.cam.Pitch() + pitchStep)
			return m, m.refresh("moveend")
		case "[":
			m.cam.SetPitch(m.cam.Pitch() - pitchStep)
			return m, m.refresh("moveend")
		case "r":
			return m, m.flyTo(m.home.Center, m.home.Zoom(), m.home.Pitch(), 1)
		case "tab":
			m.showSidebar = !m.showSidebar
			if m.showSidebar {
				m.refreshDir()
			}
			m.layout()
			return m, m.refresh("resize")
		case "g":
			m.gotoMode = true
			m.ta.SetValue("")
			m.ta.Focus()
			m.status = "goto: lon,lat[,zoom]"
			return m, nil
		case "h":
			m.helpVisible = !m.helpVisible
		case "a":
			m.showAttrs = !m.showAttrs
			if m.showAttrs {
				m.refreshAttrsFromCurrent()
			}
		case "i":
			m.inspect()
		case "esc":
			m.inspectPopup = ""
			m.showAttrs = false
		case "enter":
			if m.showSidebar {
				if it, ok := m.l.SelectedItem().(fileItem); ok {
					m.loadPath(it.path)
					return m, m.refresh("moveend")
				}
			}
		case "up":
			m.cam.Pan(0, -float64(m.mapH*4)/8)
			return m, m.refresh("moveend")
		case "down":
			m.cam.Pan(0, float64(m.mapH*4)/8)
			return m, m.refresh("moveend")
		case "left":
			m.cam.Pan(-float64(m.mapW*2)/8, 0)
			return m, m.refresh("moveend")
		case "right":
			m.cam.Pan(float64(m.mapW*2)/8, 0)
			return m, m.refresh("moveend")
		}
	case tea.MouseMsg:
		m.hover(msg.X, msg.Y)
	}
	// Pass messages to list when visible
	if m.showSidebar {
		var cmd tea.Cmd
		m.l, cmd = m.l.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updateGoto(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.gotoMode = false
		m.ta.Blur()
		m.status = "view mode"
		return m, nil
	case "enter":
		lon, lat, zoom, hasZoom, err := parseGoto(m.ta.Value())
		if err != nil {
			m.status = "goto: " + err.Error()
			return m, nil
		}
		if !hasZoom {
			zoom = m.cam.Zoom()
		}
		m.gotoMode = false
		m.ta.Blur()
		m.status = fmt.Sprintf("flying to %.5f, %.5f", lon, lat)
		return m, m.flyTo(orb.Point{lon, lat}, zoom, m.cam.Pitch(), 1)
	}
	var cmd tea.Cmd
	m.ta, cmd = m.ta.Update(msg)
	return m, cmd
}

// refresh runs the visibility controller for one camera-change event and
// keeps the frame loop alive while its push is pending.
func (m *Model) refresh(reason string) tea.Cmd {
	if m.mapW == 0 || m.mapH == 0 {
		return nil
	}
	if !m.ctrl.Refresh() {
		m.status = fmt.Sprintf("zoom in to %.0f to load trees (zoom %.2f)", visibility.MinZoom, m.cam.Zoom())
		return nil
	}
	m.status = reason + ": querying trees"
	return m.tick()
}

func (m *Model) flyTo(center orb.Point, zoom, pitch float64, seconds float32) tea.Cmd {
	m.flight = camera.NewFlight(m.cam, center, zoom, pitch, seconds)
	return m.tick()
}

func (m *Model) tick() tea.Cmd {
	if m.ticking {
		return nil
	}
	m.ticking = true
	if m.lastTick.IsZero() {
		m.lastTick = time.Now()
	}
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return frameMsg(t) })
}

// frame flushes the job queued by the previous camera event, then advances
// the active flight. A finished flight counts as a moveend.
func (m *Model) frame(now time.Time) tea.Cmd {
	m.ticking = false
	dt := float32(now.Sub(m.lastTick).Seconds())
	if dt <= 0 {
		dt = float32(frameInterval.Seconds())
	}
	m.lastTick = now
	if m.frames.Flush() {
		st := m.ctrl.Stats()
		m.status = fmt.Sprintf("trees %d  zoom %.2f  pitch %.0f  min height %.1fm",
			st.Visible, st.LastZoom, m.cam.Pitch(), visibility.Threshold(st.LastZoom))
		if m.showAttrs {
			m.refreshAttrsFromCurrent()
		}
	}
	var cmd tea.Cmd
	if m.flight != nil && m.flight.Update(m.cam, dt) {
		m.flight = nil
		cmd = m.refresh("moveend")
	}
	if cmd == nil && (m.flight != nil || m.frames.Pending()) {
		cmd = m.tick()
	}
	if !m.ticking {
		m.lastTick = time.Time{}
	}
	return cmd
}

// hover tracks the mouse over the map area: ground position for the footer
// and the nearest trunk for the highlight.
func (m *Model) hover(x, y int) {
	ox, oy := m.mapOrigin()
	if x < ox || x >= ox+m.mapW || y < oy || y >= oy+m.mapH {
		m.hovering = false
		return
	}
	m.hovering = true
	m.hoverCellX, m.hoverCellY = x-ox, y-oy
	hx, hy := float64(m.hoverCellX*2+1), float64(m.hoverCellY*4+2)
	if p, ok := m.cam.Unproject(hx, hy); ok {
		m.hoverHasGeo = true
		m.hoverLon, m.hoverLat = p[0], p[1]
	} else {
		m.hoverHasGeo = false
	}
	m.hoverMark = false
	if !m.trunk.Visible(m.cam.Zoom()) {
		return
	}
	best := math.Inf(1)
	for _, r := range m.trunk.data {
		sx, sy, ok := m.cam.Project(r.Position, 0)
		if !ok {
			continue
		}
		d := math.Hypot(sx-hx, sy-hy)
		if d < best && d <= hoverRadius {
			best = d
			m.hoverMark = true
			m.hoverMicX, m.hoverMicY = int(sx), int(sy)
		}
	}
}

// inspect opens a popup for the visible tree nearest the viewport centre.
func (m *Model) inspect() {
	w, h := m.cam.Viewport()
	best := math.Inf(1)
	pick := -1
	for i, r := range m.trunk.data {
		sx, sy, ok := m.cam.Project(r.Position, 0)
		if !ok {
			continue
		}
		if d := math.Hypot(sx-w/2, sy-h/2); d < best {
			best, pick = d, i
		}
	}
	if pick < 0 {
		m.inspectPopup = "no tree nearby"
		m.status = m.inspectPopup
		return
	}
	r := m.trunk.data[pick]
	name := filepath.Base(m.selPath)
	if m.dataset != nil && m.dataset.Name != "" {
		name = m.dataset.Name
	}
	meta := []string{
		fmt.Sprintf("id: %s", r.ID),
		fmt.Sprintf("dataset: %s", name),
		fmt.Sprintf("position: %.6f, %.6f", r.Position[0], r.Position[1]),
		fmt.Sprintf("girth: %.2fm  trunk steps: %d", r.Girth, len(r.Polygon)-1),
		fmt.Sprintf("elevation: %.2fm  crown z: %.2fm", r.Elevation, r.Translation[2]),
		fmt.Sprintf("scale: [%.2f %.2f %.2f]", r.Scale[0], r.Scale[1], r.Scale[2]),
		fmt.Sprintf("yaw: %.1f°", r.Orientation[1]),
	}
	if fl := degradedFlags(r); fl != "" {
		meta = append(meta, warnStyle.Render("degraded: "+fl))
	}
	m.inspectPopup = strings.Join(meta, "\n")
	m.status = "inspect " + r.ID
}
