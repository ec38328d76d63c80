package appbootstrap

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"sentinela-mg/cli"
	"sentinela-mg/config"
	"sentinela-mg/core/ingest"
	"sentinela-mg/core/loader"
	"sentinela-mg/core/store"
)

// Run executes one full pass: open the store, apply the schema, ingest
// and normalize the source file, reconcile it into the store, then
// serve the interactive menu until exit.
func Run(ctx context.Context, cfg *config.AppConfig, logger zerolog.Logger) error {
	input, err := cli.NewReadlineInput(cfg.HistoryPath)
	if err != nil {
		return fmt.Errorf("init terminal input: %w", err)
	}
	defer input.Close()
	return RunWithIO(ctx, cfg, input, os.Stdout, logger)
}

// RunWithIO is Run with the interactive surface injected.
func RunWithIO(ctx context.Context, cfg *config.AppConfig, input cli.LineReader, out io.Writer, logger zerolog.Logger) error {
	db, err := store.NewDB(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := store.ApplySchema(ctx, db, logger); err != nil {
		return err
	}

	rows, err := ingest.ReadFile(cfg.CSVPath, logger)
	if err != nil {
		return err
	}
	ds := ingest.Normalize(rows, logger)

	rep, err := loader.New(store.NewCrimeStore(db), logger).Load(ctx, ds)
	if err != nil {
		return err
	}
	logger.Info().
		Stringer("load_id", rep.LoadID).
		Bool("skipped", rep.Skipped).
		Int("rows_seen", rep.RowsSeen).
		Int("regions", rep.RegionsInserted).
		Int("municipalities", rep.MunicipalitiesInserted).
		Int("crime_types", rep.CrimeTypesInserted).
		Int("incidents", rep.IncidentsInserted).
		Msg("reconciliation finished")

	return cli.NewMenu(ds, cfg.TopN, input, out, logger).Run()
}
