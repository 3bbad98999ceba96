package analysis

import (
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/chartflow/backend/internal/errors"
	"github.com/chartflow/backend/internal/models"
)

// ChartSuffix selects which files in the output directory are charts.
const ChartSuffix = ".png"

// Collector lists the charts an engine run produced.
type Collector struct {
	baseURL string // e.g. http://localhost:5000/static/charts
	now     func() time.Time
}

// NewCollector builds references as "<baseURL>/<assetID>/<file>?t=<unix>".
func NewCollector(baseURL string) *Collector {
	return &Collector{baseURL: strings.TrimRight(baseURL, "/"), now: time.Now}
}

// Collect returns every *.png in dir sorted by filename. assetID is the
// URL segment under which dir is served.
func (c *Collector) Collect(dir, assetID string) ([]models.ChartArtifact, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []models.ChartArtifact{}, nil
		}
		return nil, errors.Wrap(err, "listing chart directory")
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() && strings.HasSuffix(e.Name(), ChartSuffix) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	stamp := strconv.FormatInt(c.now().Unix(), 10)
	charts := make([]models.ChartArtifact, 0, len(names))
	for _, name := range names {
		charts = append(charts, models.ChartArtifact{
			Filename: name,
			URL:      c.baseURL + "/" + url.PathEscape(assetID) + "/" + url.PathEscape(name) + "?t=" + stamp,
		})
	}

	return charts, nil
}
