package source

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	"github.com/go-sql-driver/mysql"
	"github.com/paulmach/orb"

	"treecanopy/internal/trees"
)

const queryTreesFmt = `
	SELECT
		t.id,
		t.lon,
		t.lat,
		t.girth,
		t.height_est
	FROM %s t
	ORDER BY t.id ASC;
`

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// MySQLDSN builds a DSN for the tree database.
func MySQLDSN(user, password, host, dbName string) string {
	cfg := mysql.NewConfig()
	cfg.User = user
	cfg.Passwd = password
	cfg.Net = "tcp"
	cfg.Addr = host
	cfg.DBName = dbName
	cfg.ParseTime = true
	return cfg.FormatDSN()
}

// LoadMySQL reads every tree from table. girth and height_est may be NULL;
// such rows are kept and later dropped by the layer prefilter.
func LoadMySQL(ctx context.Context, db *sql.DB, table string) (*Dataset, error) {
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	rows, err := db.QueryContext(ctx, fmt.Sprintf(queryTreesFmt, table))
	if err != nil {
		return nil, fmt.Errorf("query trees: %w", err)
	}
	defer rows.Close()

	d := &Dataset{Name: table}
	for rows.Next() {
		var (
			id       string
			lon, lat float64
			girth    sql.NullString
			height   sql.NullFloat64
		)
		if err := rows.Scan(&id, &lon, &lat, &girth, &height); err != nil {
			return nil, fmt.Errorf("scan tree: %w", err)
		}
		d.add(trees.Feature{
			ID:        id,
			Position:  orb.Point{lon, lat},
			Girth:     girth.String,
			HasGirth:  girth.Valid,
			HeightEst: height.Float64,
			HasHeight: height.Valid,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read trees: %w", err)
	}
	if len(d.Features) == 0 {
		return nil, ErrNoFeatures
	}
	return d, nil
}
