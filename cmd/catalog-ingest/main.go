// Command catalog-ingest bulk-loads supplier product feeds into the catalog.
// Feeds are gzip-compressed JSON lines, one product per line. Files are
// parsed concurrently; the first occurrence of a product id wins, with
// duplicate detection done probabilistically so feeds of any size fit in
// memory.
package main

import (
	"bufio"
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/craftline/storefront/internal/domain/product"
	"github.com/craftline/storefront/internal/storage/postgres"
)

const (
	bloomCapacity = 10_000_000
	bloomFPR      = 0.0001
	progressEvery = 100_000
)

func main() {
	var (
		dataDir     string
		pattern     string
		databaseURL string
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing product feed files")
	flag.StringVar(&pattern, "pattern", "*.jsonl.gz", "glob pattern for feed files inside data-dir")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, dataDir, pattern, databaseURL); err != nil {
		slog.Error("catalog ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("catalog ingest completed successfully")
}

func run(ctx context.Context, dataDir, pattern, databaseURL string) error {
	files, err := filepath.Glob(filepath.Join(dataDir, pattern))
	if err != nil {
		return errors.Wrap(err, "glob feed files")
	}
	if len(files) == 0 {
		return errors.Errorf("no feed files matching %s in %s", pattern, dataDir)
	}

	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	repo := postgres.NewProductRepository(pool)

	slog.Info("ingesting feeds", slog.Int("files", len(files)))

	return ingestFeeds(ctx, files, repo)
}

// productUpserter is the slice of the catalog repository the writer needs.
type productUpserter interface {
	Upsert(ctx context.Context, p product.Product) error
}

func ingestFeeds(ctx context.Context, files []string, repo productUpserter) error {
	products := make(chan product.Product, 1024)

	// A failed writer must cancel the parsers, otherwise they block forever
	// sending into a full channel nobody drains.
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	g, gctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(parseFeed(gctx, i, f, products))
	}

	done := make(chan error, 1)
	go func() {
		err := writeProducts(ctx, repo, products)
		if err != nil {
			cancel(err)
		}
		done <- err
	}()

	parseErr := g.Wait()
	close(products)
	writeErr := <-done

	// The writer error comes first: when it cancelled the parsers their
	// context errors are a consequence, not the cause.
	if writeErr != nil {
		return errors.Wrap(writeErr, "write products")
	}
	if parseErr != nil {
		return errors.Wrap(parseErr, "parse feeds")
	}
	return nil
}

// parseFeed streams one gzip feed line by line and sends parsed products.
func parseFeed(ctx context.Context, idx int, path string, out chan<- product.Product) func() error {
	return func() error {
		var count uint64

		err := streamGzFile(ctx, path, func(line []byte) error {
			p, err := parseProductLine(line)
			if err != nil {
				return errors.Wrapf(err, "line %d", count+1)
			}

			count++
			if count%progressEvery == 0 {
				slog.Info("parse progress",
					slog.Int("file", idx+1),
					slog.Uint64("products", count),
				)
			}

			select {
			case out <- p:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		if err != nil {
			return errors.Wrapf(err, "parse feed %s", path)
		}

		slog.Info("feed parsed",
			slog.String("path", path),
			slog.Uint64("products", count),
		)
		return nil
	}
}

// parseProductLine decodes one JSON-lines record. Price fields accept either
// JSON numbers or decimal strings, the two formats suppliers actually send.
func parseProductLine(line []byte) (product.Product, error) {
	var p product.Product

	d := jx.DecodeBytes(line)
	if err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		switch string(key) {
		case "id":
			v, err := d.Str()
			p.ID = v
			return err
		case "name":
			v, err := d.Str()
			p.Name = v
			return err
		case "price":
			v, err := decodeDecimal(d)
			p.Price = v
			return err
		case "discount_price":
			if d.Next() == jx.Null {
				return d.Null()
			}
			v, err := decodeDecimal(d)
			p.DiscountPrice = &v
			return err
		case "currency":
			v, err := d.Str()
			p.Currency = v
			return err
		case "stock":
			v, err := d.Int()
			p.Stock = v
			return err
		case "category":
			v, err := d.Str()
			p.Category = v
			return err
		case "rating":
			v, err := d.Float64()
			p.Rating = v
			return err
		case "review_count":
			v, err := d.Int()
			p.ReviewCount = v
			return err
		default:
			return d.Skip()
		}
	}); err != nil {
		return product.Product{}, errors.Wrap(err, "decode product")
	}

	if p.ID == "" {
		return product.Product{}, errors.New("product id is empty")
	}
	return p, nil
}

func decodeDecimal(d *jx.Decoder) (decimal.Decimal, error) {
	raw, err := d.Raw()
	if err != nil {
		return decimal.Decimal{}, err
	}
	return decimal.NewFromString(strings.Trim(string(raw), `"`))
}

// writeProducts drains the channel and upserts each product once. A bloom
// filter drops duplicate ids across feeds; the first feed to emit an id wins.
func writeProducts(ctx context.Context, repo productUpserter, in <-chan product.Product) error {
	seen := bloom.NewWithEstimates(bloomCapacity, bloomFPR)

	var written, skipped uint64
	for p := range in {
		if seen.TestOrAddString(p.ID) {
			skipped++
			continue
		}

		if err := repo.Upsert(ctx, p); err != nil {
			return errors.Wrapf(err, "upsert product %s", p.ID)
		}

		written++
		if written%progressEvery == 0 {
			slog.Info("write progress", slog.Uint64("written", written))
		}
	}

	slog.Info("write complete",
		slog.Uint64("written", written),
		slog.Uint64("duplicates_skipped", skipped),
	)
	return nil
}

// streamGzFile opens a gzip-compressed file and calls fn for each line.
func streamGzFile(ctx context.Context, path string, fn func(line []byte) error) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "create gzip reader for %s", path)
	}
	defer func() { _ = gz.Close() }()

	scanner := bufio.NewScanner(gz)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if err := fn(line); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "scan %s", path)
	}

	return nil
}
