// Package api serves visible tree geometry over HTTP for clients that do
// their own rendering.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/golang/glog"
	"github.com/gorilla/mux"
	"github.com/paulmach/orb"

	"treecanopy/internal/camera"
	"treecanopy/internal/frame"
	"treecanopy/internal/source"
	"treecanopy/internal/trees"
	"treecanopy/internal/visibility"
)

var ErrNotFound = errors.New("tree not found")

const (
	defaultWidth  = 1024
	defaultHeight = 768
	maxViewport   = 8192
)

type Handler struct {
	deriver *trees.Deriver
	layer   *source.QueryLayer
	byID    map[string]trees.Feature
	name    string
}

// HealthReport reports service health and the loaded dataset size.
type HealthReport struct {
	Status  string `json:"status"`
	Trees   int    `json:"trees"`
	Cached  int    `json:"cached"`
	Dataset string `json:"dataset,omitempty"`
}

// ErrorResponse reports an error.
type ErrorResponse struct {
	Message string `json:"message"`
}

func NewHandler(d *source.Dataset, deriver *trees.Deriver) *Handler {
	h := &Handler{
		deriver: deriver,
		layer:   source.NewQueryLayer(visibility.TreeLayer, nil, d),
		byID:    make(map[string]trees.Feature),
	}
	if d != nil {
		h.name = d.Name
		for _, f := range d.Features {
			h.byID[f.ID] = f
		}
	}
	glog.Infof("api: %d trees, %d queryable", len(h.byID), h.layer.Len())
	return h
}

// Router wires the handler's routes.
func (h *Handler) Router() *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/", h.ReportHealth).Methods("GET")
	router.HandleFunc("/trees", h.GetVisibleTrees).Methods("GET")
	router.HandleFunc("/trees/{treeID}", h.GetTreeByID).Methods("GET")
	return router
}

func (h *Handler) ReportHealth(w http.ResponseWriter, req *http.Request) {
	sendJSON(w, HealthReport{
		Status:  "ok",
		Trees:   len(h.byID),
		Cached:  h.deriver.Len(),
		Dataset: h.name,
	})
}

// GetVisibleTrees runs one visibility refresh for the camera described by
// the query string and returns the records it would push to the layers.
func (h *Handler) GetVisibleTrees(w http.ResponseWriter, req *http.Request) {
	cam, err := cameraFromQuery(req)
	if err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	col := &collector{}
	ctrl := visibility.NewController(cam, h.layer.View(cam), h.deriver, frame.Immediate{}, col)
	ran := ctrl.Refresh()
	glog.V(1).Infof("api: visible zoom=%.2f pitch=%.1f trees=%d", cam.Zoom(), cam.Pitch(), len(col.records))

	resp := VisibleResponse{
		Zoom:  cam.Zoom(),
		Pitch: cam.Pitch(),
		Trees: make([]TreeResponse, 0, len(col.records)),
	}
	if ran {
		th := visibility.Threshold(cam.Zoom())
		resp.MinHeight = &th
	}
	for _, r := range col.records {
		resp.Trees = append(resp.Trees, newTreeResponse(r))
	}
	resp.Count = len(resp.Trees)
	sendJSON(w, resp)
}

// GetTreeByID returns the record for one tree, deriving it on first use.
func (h *Handler) GetTreeByID(w http.ResponseWriter, req *http.Request) {
	id := mux.Vars(req)["treeID"]
	r, err := h.record(id)
	if err != nil {
		sendError(w, fmt.Sprintf("%v: %s", err, id), http.StatusNotFound)
		return
	}
	sendJSON(w, newTreeResponse(r))
}

func (h *Handler) record(id string) (*trees.Record, error) {
	if r, ok := h.deriver.Lookup(id); ok {
		return r, nil
	}
	f, ok := h.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return h.deriver.Derive(f), nil
}

func cameraFromQuery(req *http.Request) (*camera.Camera, error) {
	q := req.URL.Query()
	num := func(key string, def float64, required bool) (float64, error) {
		s := q.Get(key)
		if s == "" {
			if required {
				return 0, fmt.Errorf("query must include %s", key)
			}
			return def, nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("%s must be a number", key)
		}
		return v, nil
	}
	var (
		vals [6]float64
		err  error
	)
	params := []struct {
		key      string
		def      float64
		required bool
	}{
		{"lon", 0, true},
		{"lat", 0, true},
		{"zoom", 0, true},
		{"pitch", 0, false},
		{"width", defaultWidth, false},
		{"height", defaultHeight, false},
	}
	for i, p := range params {
		if vals[i], err = num(p.key, p.def, p.required); err != nil {
			return nil, err
		}
	}
	lon, lat, zoom, pitch, width, height := vals[0], vals[1], vals[2], vals[3], vals[4], vals[5]
	if lon < -180 || lon > 180 || lat < -85.05 || lat > 85.05 {
		return nil, errors.New("lon/lat out of range")
	}
	if zoom < camera.MinZoom || zoom > camera.MaxZoom {
		return nil, fmt.Errorf("zoom must be within [%v, %v]", camera.MinZoom, camera.MaxZoom)
	}
	if pitch < 0 || pitch > camera.MaxPitch {
		return nil, fmt.Errorf("pitch must be within [0, %v]", camera.MaxPitch)
	}
	if width <= 0 || height <= 0 || width > maxViewport || height > maxViewport {
		return nil, fmt.Errorf("width and height must be within (0, %d]", maxViewport)
	}
	cam := camera.New(orb.Point{lon, lat}, zoom, pitch)
	cam.SetViewport(width, height)
	return cam, nil
}

// collector is a render layer that keeps the last push for the response.
type collector struct {
	records []*trees.Record
}

func (c *collector) ID() string { return "response" }

func (c *collector) SetData(records []*trees.Record) { c.records = records }

func sendError(w http.ResponseWriter, msg string, status int) {
	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Message: msg})
}

func sendJSON(w http.ResponseWriter, object interface{}) {
	w.Header().Add("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(object); err != nil {
		glog.Errorf("api: encode response: %v", err)
	}
}
