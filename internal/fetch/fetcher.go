// Package fetch acquires the raw CSV dataset: a hub download on first
// run, the local cache directory afterwards.
package fetch

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"commerce-etl/internal/dataset"
	"commerce-etl/internal/table"
	"commerce-etl/internal/util"
)

// Fetcher ensures the cache directory holds the dataset's CSV extracts
// and loads them into named tables. Table name = file stem.
type Fetcher struct {
	rawPath    string
	datasetURL string
	client     *http.Client
	logger     *zap.Logger
}

// New creates a fetcher caching under rawPath. datasetURL points at the
// hub's zip archive of CSV files.
func New(rawPath, datasetURL string) *Fetcher {
	return &Fetcher{
		rawPath:    rawPath,
		datasetURL: datasetURL,
		client:     &http.Client{Timeout: 5 * time.Minute},
		logger:     util.Named("fetch"),
	}
}

// Fetch returns the raw table bundle, downloading the dataset first
// when the cache is empty.
func (f *Fetcher) Fetch(ctx context.Context) (*dataset.Bundle, error) {
	ctx, span := util.StartSpan(ctx, "fetch.Fetch")
	defer span.End()

	start := time.Now()

	if err := os.MkdirAll(f.rawPath, 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	files, err := filepath.Glob(filepath.Join(f.rawPath, "*.csv"))
	if err != nil {
		return nil, fmt.Errorf("scan cache directory: %w", err)
	}

	if len(files) == 0 {
		f.logger.Info("cache empty, downloading dataset", zap.String("url", f.datasetURL))
		if err := f.download(ctx); err != nil {
			return nil, fmt.Errorf("download dataset: %w", err)
		}
		util.DatasetDownloadsTotal.Inc()

		files, err = filepath.Glob(filepath.Join(f.rawPath, "*.csv"))
		if err != nil {
			return nil, fmt.Errorf("scan cache directory: %w", err)
		}
		if len(files) == 0 {
			return nil, fmt.Errorf("dataset archive contained no CSV files")
		}
	} else {
		f.logger.Info("dataset already cached",
			zap.String("path", f.rawPath),
			zap.Int("files", len(files)))
		util.DatasetCacheHitsTotal.Inc()
	}

	bundle, err := f.load(ctx, files)
	if err != nil {
		return nil, err
	}

	util.StageDuration.WithLabelValues("fetch").Observe(time.Since(start).Seconds())
	return bundle, nil
}

// download fetches the zip archive and extracts every CSV entry into
// the cache directory. Non-CSV entries are ignored.
func (f *Fetcher) download(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.datasetURL, nil)
	if err != nil {
		return err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("hub returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read archive body: %w", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}

	for _, entry := range zr.File {
		if entry.FileInfo().IsDir() || !strings.HasSuffix(entry.Name, ".csv") {
			continue
		}
		if err := f.extract(entry); err != nil {
			return fmt.Errorf("extract %s: %w", entry.Name, err)
		}
	}
	return nil
}

func (f *Fetcher) extract(entry *zip.File) error {
	rc, err := entry.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	// Flatten archive paths; the cache is a single directory of CSVs.
	target := filepath.Join(f.rawPath, filepath.Base(entry.Name))
	out, err := os.Create(target)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, rc); err != nil {
		return err
	}
	f.logger.Info("saved", zap.String("file", target))
	return nil
}

// load parses every cached CSV concurrently into one bundle.
func (f *Fetcher) load(ctx context.Context, files []string) (*dataset.Bundle, error) {
	bundle := dataset.NewBundle()
	var mu sync.Mutex

	g, _ := errgroup.WithContext(ctx)
	for _, path := range files {
		path := path
		g.Go(func() error {
			name := strings.TrimSuffix(filepath.Base(path), ".csv")
			t, err := ReadCSV(path)
			if err != nil {
				return fmt.Errorf("load %s: %w", path, err)
			}

			mu.Lock()
			bundle.Put(name, t)
			mu.Unlock()

			util.RowsIngestedTotal.WithLabelValues(name).Add(float64(t.Len()))
			f.logger.Info("loaded",
				zap.String("table", name),
				zap.Int("rows", t.Len()))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return bundle, nil
}

// ReadCSV parses one CSV file into a table. The first record is the
// header; empty cells are nulls.
func ReadCSV(path string) (*table.Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	t := table.New(header...)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}

		row := make(table.Row, len(header))
		for i, col := range header {
			if i >= len(record) || record[i] == "" {
				row[col] = nil
				continue
			}
			row[col] = record[i]
		}
		t.Append(row)
	}
	return t, nil
}
