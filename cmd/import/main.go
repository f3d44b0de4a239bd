// Command import applies a moderation sheet to the idea database.
//
// Moderators curate ideas in a shared spreadsheet exported as CSV, one row
// per idea: id, published, title, body. This tool backs up the database,
// then applies each row — setting the published flag and overwriting title
// and body with the moderated text. Publishing is deliberately not part of
// the HTTP API; this offline pass is the only way an idea goes public.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/idealab/internal/repository/sqlite"
)

func main() {
	dbPath := flag.String("db", "data/idealab.db", "path to the SQLite database")
	src := flag.String("src", "", "moderation CSV: a file path or an http(s) URL")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	if *src == "" {
		logger.Error("missing -src: provide a CSV file path or URL")
		os.Exit(1)
	}

	if err := run(*dbPath, *src, logger); err != nil {
		logger.Error("import failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(dbPath, src string, logger *slog.Logger) error {
	backup, err := backupDB(dbPath)
	if err != nil {
		return fmt.Errorf("backing up database: %w", err)
	}
	logger.Info("database backed up", slog.String("backup", backup))

	reader, err := openSource(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer reader.Close()

	db, err := sqlite.New(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	applied, err := apply(context.Background(), sqlite.NewIdeas(db), reader, logger)
	if err != nil {
		return err
	}

	logger.Info("import complete", slog.Int("applied", applied))
	return nil
}

// backupDB copies the database file into a backups/ directory next to it,
// named with a timestamp plus a unique suffix so two runs in the same
// second cannot clobber each other.
func backupDB(dbPath string) (string, error) {
	dir := filepath.Join(filepath.Dir(dbPath), "backups")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	name := fmt.Sprintf("%s.%s.%s",
		filepath.Base(dbPath),
		time.Now().Format("2006-01-02@15:04"),
		xid.New().String(),
	)
	dst := filepath.Join(dir, name)

	in, err := os.Open(dbPath)
	if err != nil {
		return "", err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return "", err
	}
	return dst, out.Close()
}

// openSource opens the CSV from a URL or a local file.
func openSource(src string) (io.ReadCloser, error) {
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		resp, err := http.Get(src)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("fetching CSV: status %d", resp.StatusCode)
		}
		return resp.Body, nil
	}
	return os.Open(src)
}

// apply walks the CSV and moderates each idea. A bad row is logged and
// skipped rather than aborting the run — a typo in the sheet should not
// hold every other idea's moderation hostage.
func apply(ctx context.Context, ideas *sqlite.Ideas, r io.Reader, logger *slog.Logger) (int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 4

	applied := 0
	for line := 1; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			logger.Warn("skipping malformed row",
				slog.Int("line", line),
				slog.String("error", err.Error()),
			)
			continue
		}

		id, err := strconv.ParseInt(strings.TrimSpace(row[0]), 10, 64)
		if err != nil {
			logger.Warn("skipping row with bad id",
				slog.Int("line", line),
				slog.String("id", row[0]),
			)
			continue
		}

		// Anything but an exact "1" means unpublished.
		published := strings.TrimSpace(row[1]) == "1"

		if err := ideas.Moderate(ctx, id, published, row[2], row[3]); err != nil {
			logger.Warn("skipping row",
				slog.Int("line", line),
				slog.Int64("id", id),
				slog.String("error", err.Error()),
			)
			continue
		}
		applied++
	}

	return applied, nil
}
