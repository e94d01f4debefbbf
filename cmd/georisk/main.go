package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/georisk/georisk/internal/brief"
	"github.com/georisk/georisk/internal/config"
	"github.com/georisk/georisk/internal/database"
	"github.com/georisk/georisk/internal/ingest"
	"github.com/georisk/georisk/internal/pipeline"
	"github.com/georisk/georisk/internal/server"
	"github.com/spf13/cobra"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "georisk",
	Short:   "Daily geopolitical event risk analytics",
	Long:    "georisk aggregates geotagged event records into daily metrics, computes rolling statistical baselines, scores explainable risk, and detects count spikes.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		} else {
			log.SetFlags(log.LstdFlags)
		}

		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(spikesCmd)
	rootCmd.AddCommand(topCmd)
	rootCmd.AddCommand(briefCmd)
	rootCmd.AddCommand(serveCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("georisk", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/georisk/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to tune the baseline method, window, and spike threshold.")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show database and pipeline status",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := db.GetStats()
		if err != nil {
			return fmt.Errorf("getting stats: %w", err)
		}
		lastRun, err := db.GetLastRunDate()
		if err != nil {
			return fmt.Errorf("getting last run: %w", err)
		}

		fmt.Printf("Today: %s\n", database.GetToday())
		if lastRun != "" {
			fmt.Printf("Last run: %s\n", lastRun)
		} else {
			fmt.Println("Last run: never")
		}
		fmt.Println("\nEvents:")
		fmt.Printf("  Total: %d\n", stats.TotalEvents)
		fmt.Println("\nDaily metrics:")
		fmt.Printf("  Rows: %d\n", stats.MetricRows)
		fmt.Printf("  Dates covered: %d\n", stats.DatesCovered)
		fmt.Printf("  Baseline ok: %d\n", stats.BaselineOkRows)
		fmt.Printf("  Scored: %d\n", stats.ScoredRows)
		fmt.Println("\nOutput:")
		fmt.Printf("  Spikes: %d\n", stats.Spikes)
		fmt.Printf("  Snapshots: %d\n", stats.Snapshots)
		return nil
	},
}

// --- import command ---

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import normalized events from a TSV export",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		result, err := ingest.New(db).ImportFile(args[0])
		if err != nil {
			return err
		}

		fmt.Println("Import complete:")
		fmt.Printf("  Imported: %d\n", result.Imported)
		fmt.Printf("  Skipped: %d\n", result.Skipped)
		return nil
	},
}

// --- run command ---

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline: aggregate -> baseline -> score -> detect -> snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		pipe := pipeline.New(db, pipeline.SettingsFromConfig(cfg))
		result := pipe.Run(time.Now().UTC())

		failed := false
		for i, step := range result.Steps {
			fmt.Printf("\nStep %d/%d: %s\n", i+1, len(result.Steps), step.Name)
			if step.Err != nil {
				fmt.Printf("  Error: %v\n", step.Err)
				failed = true
			} else {
				fmt.Printf("  %s\n", step.Summary)
			}
		}

		if failed {
			return fmt.Errorf("pipeline failed; no changes were committed")
		}
		fmt.Println("\nPipeline complete! Run 'georisk brief' or 'georisk serve' to view results.")
		return nil
	},
}

// --- spikes command ---

var spikesLimit int

var spikesCmd = &cobra.Command{
	Use:   "spikes",
	Short: "List recent spikes by recency and magnitude",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		spikes, err := db.GetRecentSpikes(spikesLimit)
		if err != nil {
			return err
		}
		if len(spikes) == 0 {
			fmt.Println("No spikes recorded.")
			return nil
		}

		for _, s := range spikes {
			delta := ""
			if s.Delta != nil {
				delta = fmt.Sprintf(" (+%.1f over baseline)", *s.Delta)
			}
			fmt.Printf("%s  %-3s %-24s z=%.2f%s, %d evidence events\n",
				s.Date, s.Country, s.Category, s.ZUsed, delta, len(s.EvidenceEventIDs))
		}
		return nil
	},
}

func init() {
	spikesCmd.Flags().IntVarP(&spikesLimit, "limit", "n", 20, "Maximum spikes to list")
}

// --- top command ---

var (
	topDate  string
	topLimit int
)

var topCmd = &cobra.Command{
	Use:   "top",
	Short: "Show the highest risk scores for a date (default: latest)",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		date := topDate
		if date == "" {
			date, err = db.GetLatestMetricDate()
			if err != nil {
				return err
			}
			if date == "" {
				fmt.Println("No metrics yet. Import events and run the pipeline first.")
				return nil
			}
		}

		metrics, err := db.GetTopRisks(date, topLimit)
		if err != nil {
			return err
		}
		if len(metrics) == 0 {
			fmt.Printf("No scored metrics for %s.\n", date)
			return nil
		}

		fmt.Printf("Top risks for %s:\n", database.FormatDateDisplay(date))
		for _, m := range metrics {
			fmt.Printf("  %-3s %-24s risk=%.1f events=%d\n",
				m.Country, m.Category, *m.RiskScore, m.EventCount)
		}
		return nil
	},
}

func init() {
	topCmd.Flags().StringVar(&topDate, "date", "", "Date to show (YYYY-MM-DD)")
	topCmd.Flags().IntVarP(&topLimit, "limit", "n", 15, "Maximum rows to show")
}

// --- brief command ---

var briefDate string

var briefCmd = &cobra.Command{
	Use:   "brief",
	Short: "Print the markdown risk brief for a date (default: latest)",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		_, text, err := brief.NewComposer(db).Compose(briefDate)
		if err != nil {
			return err
		}
		fmt.Println(text)
		return nil
	},
}

func init() {
	briefCmd.Flags().StringVar(&briefDate, "date", "", "Date to brief (YYYY-MM-DD)")
}

// --- serve command ---

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local dashboard server",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}
		fmt.Printf("Starting server at http://localhost:%d\n", port)
		fmt.Println("Press Ctrl+C to stop")
		return server.Serve(db, port)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to run server on (default from config)")
}

func openDB() (*database.DB, error) {
	dataDir := cfg.GetDataDir()
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	dbPath := filepath.Join(dataDir, "georisk.db")
	return database.Open(dbPath)
}
