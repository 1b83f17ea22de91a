package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/golang/glog"

	"treecanopy/internal/config"
	"treecanopy/internal/mesh"
	"treecanopy/internal/source"
	"treecanopy/internal/trees"
)

const (
	dbUserKey     = "DB_USER"
	dbPasswordKey = "DB_PASSWORD"
	dbHostKey     = "DB_HOST"
	dbNameKey     = "DB_NAME"

	pingTimeout = 10 * time.Second
)

var errNoSource = errors.New("no tree source configured")

type env struct {
	cfg     *config.Config
	deriver *trees.Deriver
	crown   *mesh.Mesh
}

func loadEnv(flags FlagsForCommand) (*env, error) {
	cfg := config.Default()
	if *flags.Config != "" {
		var err error
		if cfg, err = config.Load(*flags.Config); err != nil {
			return nil, err
		}
		glog.Infof("loaded config %s", *flags.Config)
	}
	meshPath := cfg.MeshPath
	if *flags.MeshPath != "" {
		meshPath = *flags.MeshPath
	}
	var (
		crown *mesh.Mesh
		err   error
	)
	if meshPath != "" {
		crown, err = mesh.Load(meshPath)
	} else {
		crown, err = mesh.Default()
	}
	if err != nil {
		return nil, err
	}
	return &env{
		cfg:     cfg,
		deriver: trees.NewDeriver(cfg.Cache.MaxEntries),
		crown:   crown,
	}, nil
}

func datasetPath(flags FlagsForCommand, cfg *config.Config) string {
	if flags.Dataset != "" {
		return flags.Dataset
	}
	return cfg.Source.Path
}

// loadDataset reads the dataset file if one is given, else MySQL. It
// returns nil and no error when neither is configured.
func loadDataset(ctx context.Context, flags FlagsForCommand, cfg *config.Config) (*source.Dataset, error) {
	if path := datasetPath(flags, cfg); path != "" {
		d, err := source.Load(path)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
		glog.Infof("loaded %s: %d trees", path, len(d.Features))
		return d, nil
	}
	return loadMySQL(ctx, flags, cfg)
}

func mysqlDSN(flags FlagsForCommand, cfg *config.Config) string {
	if *flags.MySQLDSN != "" {
		return *flags.MySQLDSN
	}
	if cfg.Source.MySQLDSN != "" {
		return cfg.Source.MySQLDSN
	}
	for _, key := range []string{dbUserKey, dbPasswordKey, dbHostKey} {
		if _, ok := os.LookupEnv(key); !ok {
			return ""
		}
	}
	return source.MySQLDSN(os.Getenv(dbUserKey), os.Getenv(dbPasswordKey), os.Getenv(dbHostKey), os.Getenv(dbNameKey))
}

func loadMySQL(ctx context.Context, flags FlagsForCommand, cfg *config.Config) (*source.Dataset, error) {
	dsn := mysqlDSN(flags, cfg)
	if dsn == "" {
		return nil, nil
	}
	table := cfg.Source.Table
	if *flags.Table != "" {
		table = *flags.Table
	}
	if table == "" {
		table = "trees"
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening DB connection: %w", err)
	}
	defer func() {
		glog.Info("closing database")
		db.Close()
	}()

	pctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	for {
		if err := db.PingContext(pctx); err == nil {
			break
		}
		select {
		case <-pctx.Done():
			return nil, fmt.Errorf("ping database: %w", pctx.Err())
		case <-time.After(200 * time.Millisecond):
		}
	}

	d, err := source.LoadMySQL(ctx, db, table)
	if err != nil {
		return nil, err
	}
	glog.Infof("loaded %d trees from MySQL table %s", len(d.Features), table)
	return d, nil
}
