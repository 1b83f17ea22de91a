package tui

import (
	"os"
	"time"

	list "github.com/charmbracelet/bubbles/list"
	table "github.com/charmbracelet/bubbles/table"
	textarea "github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/paulmach/orb"

	"treecanopy/internal/camera"
	"treecanopy/internal/config"
	"treecanopy/internal/frame"
	"treecanopy/internal/mesh"
	"treecanopy/internal/source"
	"treecanopy/internal/trees"
	"treecanopy/internal/visibility"
)

const sidebarWidth = 28

type Model struct {
	width  int
	height int

	showSidebar bool
	helpVisible bool

	status string

	cfg   *config.Config
	cam   *camera.Camera
	home  camera.Camera
	query *source.QueryLayer
	ctrl  *visibility.Controller

	frames   *frame.Queue
	flight   *camera.Flight
	ticking  bool
	lastTick time.Time

	trunk *renderLayer
	crown *renderLayer
	light lighting
	mesh  *mesh.Mesh

	// File explorer
	cwd     string
	l       list.Model
	items   []list.Item
	selPath string
	dataset *source.Dataset

	// map area size in cells
	mapW int
	mapH int

	// goto prompt
	gotoMode bool
	ta       textarea.Model

	// inspect popup
	inspectPopup string

	// hover state
	hovering    bool
	hoverCellX  int
	hoverCellY  int
	hoverMark   bool
	hoverMicX   int
	hoverMicY   int
	hoverHasGeo bool
	hoverLon    float64
	hoverLat    float64

	// visible records table
	showAttrs bool
	tbl       table.Model
}

// New builds the viewer around a shared deriver. crown is the mesh every
// crown instance is drawn from.
func New(cfg *config.Config, d *trees.Deriver, crown *mesh.Mesh) Model {
	m := Model{
		helpVisible: true,
		status:      "treecanopy ready",
		cfg:         cfg,
		frames:      frame.NewQueue(),
		mesh:        crown,
		light:       newLighting(cfg.Lighting),
	}
	center := orb.Point{cfg.Camera.Center[0], cfg.Camera.Center[1]}
	m.cam = camera.New(center, cfg.Camera.Zoom, cfg.Camera.Pitch)
	m.home = *m.cam
	m.query = source.NewQueryLayer(visibility.TreeLayer, m.cam, nil).
		WithMinZoom(visibility.MinZoom, m.cam.Zoom)
	m.trunk = newRenderLayer(trunkLayerID, cfg.Layers.MinZoom, cfg.Layers.MaxZoom, parseHexColor(cfg.Layers.TrunkColor))
	m.crown = newRenderLayer(crownLayerID, cfg.Layers.MinZoom, cfg.Layers.MaxZoom, parseHexColor(cfg.Layers.CrownColor))
	m.ctrl = visibility.NewController(m.cam, m.query, d, m.frames, m.trunk, m.crown)

	m.cwd, _ = os.Getwd()
	// list setup
	dl := list.NewDefaultDelegate()
	dl.ShowDescription = false
	m.l = list.New(nil, dl, 0, 0)
	m.l.Title = "Datasets"
	m.l.SetShowHelp(false)
	m.l.SetShowStatusBar(false)
	m.l.SetFilteringEnabled(true)
	// textarea setup
	m.ta = textarea.New()
	m.ta.Placeholder = "lon,lat[,zoom]  Enter to fly there; Esc to cancel."
	m.ta.CharLimit = 64
	m.ta.ShowLineNumbers = false
	m.ta.SetWidth(50)
	m.ta.SetHeight(1)
	m.tbl = table.New(table.WithFocused(true))
	m.tbl.SetHeight(12)
	m.refreshDir()
	return m
}

// NewWithPath preloads a dataset file at launch.
func NewWithPath(cfg *config.Config, d *trees.Deriver, crown *mesh.Mesh, path string) Model {
	m := New(cfg, d, crown)
	m.loadPath(path)
	return m
}

// SetDataset replaces the tree source. When the camera is outside the new
// dataset it jumps to the dataset centre; the next refresh picks it up.
func (m *Model) SetDataset(d *source.Dataset) {
	m.dataset = d
	m.query.SetDataset(d)
	if d == nil || len(d.Features) == 0 {
		return
	}
	if !d.Bound.Contains(m.cam.Center) {
		m.cam.Center = d.Bound.Center()
		m.home.Center = m.cam.Center
	}
}

// Init issues the idle refresh that loads trees for the opening view.
func (m Model) Init() tea.Cmd {
	return func() tea.Msg { return refreshMsg{reason: "idle"} }
}

// layout recomputes the map area from the window size. It must match View.
func (m *Model) layout() {
	sw := 0
	if m.showSidebar {
		sw = sidebarWidth
	}
	contentHeight := max(4, m.height-headerHeight-footerHeight)
	m.mapW = max(10, max(10, m.width)-sw-1)
	m.mapH = contentHeight
	if m.showSidebar {
		m.l.SetSize(sidebarWidth-2, contentHeight-2)
	}
	m.cam.SetViewport(float64(m.mapW*2), float64(m.mapH*4))
}

func (m *Model) mapOrigin() (x, y int) {
	if m.showSidebar {
		return sidebarWidth + 1, headerHeight
	}
	return 0, headerHeight
}

const (
	headerHeight = 1
	footerHeight = 2
)
