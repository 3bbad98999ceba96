package tabular

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"strings"

	"github.com/marcboeker/go-duckdb"

	"github.com/chartflow/backend/internal/errors"
	"github.com/chartflow/backend/internal/models"
)

// Profiler summarizes a CSV file.
type Profiler interface {
	Profile(ctx context.Context, path string) (*models.TableProfile, error)
}

// DuckProfiler sniffs CSV files with DuckDB's read_csv_auto in an
// in-memory database.
type DuckProfiler struct {
	db *sql.DB
}

// NewDuckProfiler opens an in-memory DuckDB limited to threads workers and
// memoryLimit (e.g. "256MB").
func NewDuckProfiler(threads int, memoryLimit string) (*DuckProfiler, error) {
	connector, err := duckdb.NewConnector("", func(execer driver.ExecerContext) error {
		pragmas := []string{"PRAGMA enable_progress_bar=false"}
		if threads > 0 {
			pragmas = append(pragmas, fmt.Sprintf("PRAGMA threads=%d", threads))
		}
		if memoryLimit != "" {
			pragmas = append(pragmas, fmt.Sprintf("PRAGMA memory_limit=%s", quote(memoryLimit)))
		}
		for _, pragma := range pragmas {
			if _, err := execer.ExecContext(context.Background(), pragma, nil); err != nil {
				return errors.Wrapf(err, "executing %s", pragma)
			}
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "creating DuckDB connector")
	}

	return &DuckProfiler{db: sql.OpenDB(connector)}, nil
}

// Profile counts rows and describes the columns of the CSV at path.
func (p *DuckProfiler) Profile(ctx context.Context, path string) (*models.TableProfile, error) {
	source := fmt.Sprintf("read_csv_auto(%s)", quote(path))

	profile := &models.TableProfile{}
	if err := p.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+source).Scan(&profile.Rows); err != nil {
		return nil, errors.Wrapf(err, "counting rows of %s", path)
	}

	rows, err := p.db.QueryContext(ctx, "DESCRIBE SELECT * FROM "+source)
	if err != nil {
		return nil, errors.Wrapf(err, "describing %s", path)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	for rows.Next() {
		// column_name, column_type, null, key, default, extra
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, errors.Wrap(err, "scanning column description")
		}
		profile.Columns = append(profile.Columns, models.ColumnShape{
			Name: fmt.Sprint(vals[0]),
			Type: fmt.Sprint(vals[1]),
		})
	}

	return profile, rows.Err()
}

// Close releases the database.
func (p *DuckProfiler) Close() error {
	return p.db.Close()
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
