package main

import (
	"context"
	"flag"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/golang/glog"

	"treecanopy/internal/api"
	"treecanopy/internal/tui"
)

const VERSION = "0.4.0"

func main() {
	flagsGlobal := parseFlagsGlobal()
	defer glog.Flush()

	if *flagsGlobal.Version {
		fmt.Println("treecanopy", VERSION)
		return
	}

	cmd, args := CommandView, flag.Args()
	if len(args) > 0 && (args[0] == CommandView || args[0] == CommandServe) {
		cmd, args = args[0], args[1:]
	}

	var err error
	switch cmd {
	case CommandView:
		err = mainCommandView(args)
	case CommandServe:
		err = mainCommandServe(args)
	}
	if err != nil {
		glog.Exitf("%s: %v", cmd, err)
	}
}

func mainCommandView(args []string) error {
	flags := parseFlagsForCommand(CommandView, args)
	env, err := loadEnv(flags)
	if err != nil {
		return err
	}

	var m tui.Model
	switch path := datasetPath(flags, env.cfg); {
	case path != "":
		m = tui.NewWithPath(env.cfg, env.deriver, env.crown, path)
	default:
		d, err := loadMySQL(context.Background(), flags, env.cfg)
		if err != nil {
			return err
		}
		m = tui.New(env.cfg, env.deriver, env.crown)
		m.SetDataset(d)
	}

	glog.Infof("view: starting at %v zoom %.2f", env.cfg.Camera.Center, env.cfg.Camera.Zoom)
	if _, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion()).Run(); err != nil {
		return fmt.Errorf("run program: %w", err)
	}
	return nil
}

func mainCommandServe(args []string) error {
	flags := parseFlagsForCommand(CommandServe, args)
	env, err := loadEnv(flags)
	if err != nil {
		return err
	}
	d, err := loadDataset(context.Background(), flags, env.cfg)
	if err != nil {
		return err
	}
	if d == nil {
		return fmt.Errorf("%w: serve needs a dataset file or a MySQL source", errNoSource)
	}
	addr := env.cfg.HTTP.Listen
	if *flags.Listen != "" {
		addr = *flags.Listen
	}
	return api.Serve(context.Background(), addr, api.NewHandler(d, env.deriver))
}
