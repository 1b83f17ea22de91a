package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	list "github.com/charmbracelet/bubbles/list"
	"github.com/golang/glog"

	"treecanopy/internal/source"
)

type fileItem struct {
	title, desc string
	path        string
}

func (f fileItem) Title() string       { return f.title }
func (f fileItem) Description() string { return f.desc }
func (f fileItem) FilterValue() string { return f.title }

func (m *Model) refreshDir() {
	entries, err := os.ReadDir(m.cwd)
	if err != nil {
		m.status = "read dir error: " + err.Error()
		return
	}
	var items []list.Item
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !source.Supported(name) {
			continue
		}
		items = append(items, fileItem{
			title: name,
			desc:  strings.ToLower(filepath.Ext(name)),
			path:  filepath.Join(m.cwd, name),
		})
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].(fileItem).Title() < items[j].(fileItem).Title() })
	m.items = items
	m.l.SetItems(items)
	if len(items) == 0 {
		m.status = "no tree datasets in current directory"
	}
}

// loadPath loads a dataset file and swaps it in as the tree source.
func (m *Model) loadPath(p string) {
	d, err := source.Load(p)
	if err != nil {
		m.status = "load error: " + err.Error()
		glog.Warningf("load %s: %v", p, err)
		return
	}
	m.selPath = p
	m.SetDataset(d)
	m.status = fmt.Sprintf("loaded: %s  trees=%d queryable=%d", d.Name, len(d.Features), m.query.Len())
	glog.Infof("loaded %s: %d trees, %d with girth and height", p, len(d.Features), m.query.Len())
}
