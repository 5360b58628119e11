// Command featurectl scores every game in one or more PGN files and writes
// the feature tables.
//
//	featurectl [-remote http://host:8080] [file.pgn ... | -]
//
// Without arguments the files listed in PGN_FILES are read.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/park285/cheese-features/internal/chessbuilder"
	appcfg "github.com/park285/cheese-features/internal/config"
	"github.com/park285/cheese-features/internal/httpapi"
	"github.com/park285/cheese-features/internal/obslog"
	"github.com/park285/cheese-features/internal/pgn"
	"github.com/park285/cheese-features/internal/store"
)

func main() {
	remote := flag.String("remote", "", "score on a featured instance at this base URL instead of locally")
	flag.Parse()

	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer obslog.Sync()
	logger := obslog.L()

	paths := flag.Args()
	if len(paths) == 0 {
		paths = cfg.PGNFiles
	}
	if len(paths) == 0 {
		log.Fatalf("no input: pass PGN files as arguments or set PGN_FILES")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	input, closeInput, err := openInputs(paths)
	if err != nil {
		logger.Fatal("open_input_failed", zap.Error(err))
	}
	defer closeInput()

	if strings.TrimSpace(*remote) != "" {
		if err := runRemote(ctx, cfg, *remote, input, logger); err != nil {
			logger.Fatal("remote_run_failed", zap.Error(err))
		}
		return
	}

	deps, err := chessbuilder.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("init_failed", zap.Error(err))
	}
	defer deps.Close()

	summary, err := deps.Service.Run(ctx, pgn.NewScanner(input))
	if err != nil {
		logger.Fatal("run_failed", zap.Error(err))
	}
	fmt.Printf("run %s: read=%d emitted=%d failed=%d duplicates=%d -> %s\n",
		summary.RunID, summary.Read, summary.Emitted, summary.Failed, summary.Duplicates, deps.CSV.Dir())
}

func runRemote(ctx context.Context, cfg *appcfg.AppConfig, baseURL string, input io.Reader, logger *zap.Logger) error {
	body, err := io.ReadAll(input)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	resp, err := httpapi.NewClient(baseURL).Extract(ctx, body)
	if err != nil {
		return err
	}
	repo, err := store.NewCSVRepository(cfg.OutputDir)
	if err != nil {
		return err
	}
	if err := repo.SaveTables(ctx, resp.Tables); err != nil {
		return err
	}
	logger.Info("remote_run_saved", zap.String("run_id", resp.Summary.RunID), zap.Int("games", resp.Summary.Emitted))
	fmt.Printf("run %s (remote): read=%d emitted=%d failed=%d -> %s\n",
		resp.Summary.RunID, resp.Summary.Read, resp.Summary.Emitted, resp.Summary.Failed, repo.Dir())
	return nil
}

// openInputs joins the inputs into one stream so game ids continue across
// files. "-" reads stdin.
func openInputs(paths []string) (io.Reader, func(), error) {
	var (
		readers []io.Reader
		files   []*os.File
	)
	closeAll := func() {
		for _, f := range files {
			f.Close()
		}
	}
	for i, p := range paths {
		if i > 0 {
			readers = append(readers, strings.NewReader("\n"))
		}
		if p == "-" {
			readers = append(readers, os.Stdin)
			continue
		}
		f, err := os.Open(p)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("open %s: %w", p, err)
		}
		files = append(files, f)
		readers = append(readers, f)
	}
	return io.MultiReader(readers...), closeAll, nil
}
