package main

import (
	"flag"
	"fmt"
	"os"
)

const (
	CommandView  = "view"
	CommandServe = "serve"
)

type FlagsGlobal struct {
	Version *bool
}

type FlagsForCommand struct {
	Config   *string
	MySQLDSN *string
	Table    *string
	MeshPath *string
	Listen   *string
	Dataset  string
}

// parseFlagsGlobal parses the top-level flags, glog's included.
func parseFlagsGlobal() FlagsGlobal {
	version := flag.Bool("version", false, "Displays the version of treecanopy.")
	flag.Usage = usage
	flag.Parse()
	return FlagsGlobal{Version: version}
}

func parseFlagsForCommand(name string, args []string) FlagsForCommand {
	fs := flag.NewFlagSet("command-"+name, flag.ExitOnError)
	f := FlagsForCommand{
		Config:   fs.String("config", "", "YAML config file. Built-in defaults are used when empty."),
		MySQLDSN: fs.String("mysql-dsn", "", "MySQL DSN to load trees from, overriding source.mysql_dsn."),
		Table:    fs.String("table", "", "MySQL table holding the trees, overriding source.table."),
		MeshPath: fs.String("mesh", "", "YAML crown mesh, overriding mesh_path."),
		Listen:   fs.String("listen", "", "HTTP listen address, overriding http.listen."),
	}
	fs.Parse(args)
	if fs.NArg() > 0 {
		f.Dataset = fs.Arg(0)
	}
	return f
}

func usage() {
	fmt.Fprintf(os.Stderr, `treecanopy renders street trees as 3D trunks and crowns.

Usage:
  treecanopy [flags] [view] [-config file] [dataset]
  treecanopy [flags] serve [-config file] [-listen addr] [dataset]

Datasets are .geojson, .json, .csv or .kml files. Without one, trees are read
from MySQL (source.mysql_dsn, -mysql-dsn, or DB_USER/DB_PASSWORD/DB_HOST/DB_NAME).

Flags:
`)
	flag.PrintDefaults()
}
