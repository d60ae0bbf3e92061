package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"monitor-reliability/pkg/chart"
	"monitor-reliability/pkg/config"
	"monitor-reliability/pkg/database"
	"monitor-reliability/pkg/models"
	"monitor-reliability/pkg/report"
)

const dsnEnv = "RELIABILITY_DSN"

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	// .env optionnel
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("load .env: %v", err)
	}

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		output     string
		dsn        string
		table      string
		metricsOut string
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:          "monitor-reliability",
		Short:        "Render a daily alert reliability chart",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if output != "" {
				cfg.Output = output
			}
			if metricsOut != "" {
				cfg.MetricsOut = metricsOut
			}
			if table != "" {
				cfg.Source.Table = table
			}
			if dsn == "" {
				dsn = os.Getenv(dsnEnv)
			}
			cfg.Source.DSN = dsn
			cfg.Verbose = verbose

			var src report.HitSource = report.StaticSource(cfg.HitDates)
			if cfg.Source.DSN != "" {
				db, dsnUsed, err := database.Open(cfg.Source.DSN)
				if err != nil {
					return fmt.Errorf("open db: %w", err)
				}
				defer db.Close()
				if verbose {
					log.Printf("[INFO] connected dsn=%s", redact(dsnUsed))
				}
				src = &database.Source{DB: db, Table: cfg.Source.Table, Monitor: cfg.Source.Monitor, Verbose: verbose}
			}

			sum, err := report.Run(cmd.Context(), cfg, src, chart.GoChart{})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), sum.String())
			if sum.MetricsOut != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Metrics written to: %s\n", sum.MetricsOut)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "YAML config file (default: embedded sample)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Image path; extension selects the format (png, jpg, gif, tif, bmp, svg)")
	cmd.Flags().StringVar(&dsn, "dsn", "", "DSN MariaDB/MySQL to read hit dates from (default $"+dsnEnv+")")
	cmd.Flags().StringVar(&table, "table", "", "Alert log table (default "+config.DefaultTable+")")
	cmd.Flags().StringVar(&metricsOut, "metrics-out", "", "Write Prometheus textfile metrics to this path")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Mode verbeux")
	return cmd
}

func loadConfig(path string) (*models.Config, error) {
	if path == "" {
		return config.Default()
	}
	return config.Load(path)
}

// redact hides the password of a native DSN (user:pass@tcp(...)/db).
func redact(dsn string) string {
	at := strings.LastIndex(dsn, "@")
	colon := strings.Index(dsn, ":")
	if at < 0 || colon < 0 || colon > at {
		return dsn
	}
	return dsn[:colon+1] + "***" + dsn[at:]
}
