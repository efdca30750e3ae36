package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"dossier/internal/config"
	"dossier/internal/delivery"
	"dossier/internal/logging"
	"dossier/internal/service"
	"dossier/internal/types"
)

var (
	// Global flags
	verbose    bool
	configPath string

	// Run flags
	primaryName   string
	primaryDomain string
	linkedinSlug  string
	youtubeID     string
	adsPageID     string
	comparisons   []string
	priorPath     string
	callbackURL   string
	outputPath    string
	pollInterval  time.Duration

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "dossier",
	Short: "dossier - competitive intelligence report generator",
	Long: `dossier gathers public signals about a company and its competitors
(social presence, organic search, paid media, site crawl) and synthesizes
them into a competitive-intelligence report through a staged generation
pipeline.

Reports run asynchronously: a submission is accepted immediately and the
CLI polls the job until it reaches a terminal state.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional; real deployments use the environment directly.
		_ = godotenv.Load()

		zapCfg := zap.NewProductionConfig()
		if verbose {
			zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zapCfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Generate a report and wait for it",
	Long: `Submits a report request for the primary company against zero or more
comparison companies, then polls until the job completes.

Examples:
  dossier run --name Acme --domain acme.com --compare globex.com
  dossier run --domain acme.com --compare globex.com --compare initech.com -o report.md`,
	RunE: runReport,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the dossier version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(config.Default().Version)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "dossier.yaml", "Config file path")

	runCmd.Flags().StringVar(&primaryName, "name", "", "Primary company name")
	runCmd.Flags().StringVar(&primaryDomain, "domain", "", "Primary company domain")
	runCmd.Flags().StringVar(&linkedinSlug, "linkedin", "", "Primary company LinkedIn slug")
	runCmd.Flags().StringVar(&youtubeID, "youtube", "", "Primary company YouTube channel id")
	runCmd.Flags().StringVar(&adsPageID, "ads-page", "", "Primary company ads page id")
	runCmd.Flags().StringSliceVar(&comparisons, "compare", nil, "Comparison company domain (repeatable)")
	runCmd.Flags().StringVar(&priorPath, "prior", "", "Path to a previous report to update")
	runCmd.Flags().StringVar(&callbackURL, "callback", "", "Webhook URL notified on completion")
	runCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the report to this file instead of stdout")
	runCmd.Flags().DurationVar(&pollInterval, "poll-interval", 2*time.Second, "Job polling interval")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(versionCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Logging.DebugMode || verbose {
		if err := logging.Initialize(cfg.Logging.Dir, logging.Options{
			DebugMode:  true,
			Level:      cfg.Logging.Level,
			JSONFormat: cfg.Logging.JSONFormat,
			Categories: cfg.Logging.Categories,
		}); err != nil {
			logger.Warn("file logging disabled", zap.Error(err))
		}
		defer logging.CloseAll()
	}

	svc, err := service.New(cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	req, err := buildRequest()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	acc, err := svc.Submit(ctx, req)
	if err != nil {
		return err
	}
	logger.Info("job accepted", zap.String("job_id", acc.JobID))

	job, err := poll(ctx, svc, acc.JobID)
	if err != nil {
		return err
	}
	if job.Status == types.JobFailed {
		return fmt.Errorf("report generation failed: %s", job.Error)
	}

	return writeReport(job)
}

func buildRequest() (service.Request, error) {
	if primaryName == "" && primaryDomain == "" {
		return service.Request{}, fmt.Errorf("at least one of --name or --domain is required")
	}

	req := service.Request{
		Primary: types.Subject{
			Name:             primaryName,
			Domain:           primaryDomain,
			LinkedInSlug:     linkedinSlug,
			YouTubeChannelID: youtubeID,
			AdsPageID:        adsPageID,
		},
	}
	for _, c := range comparisons {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		req.Comparisons = append(req.Comparisons, types.Subject{Domain: c})
	}

	if priorPath != "" {
		prior, err := os.ReadFile(priorPath)
		if err != nil {
			return service.Request{}, fmt.Errorf("failed to read prior report %s: %w", priorPath, err)
		}
		req.PriorDocument = string(prior)
	}

	if callbackURL != "" {
		req.Callback = &delivery.Target{URL: callbackURL}
	}
	return req, nil
}

// poll watches the job until it reaches a terminal state or the context ends.
func poll(ctx context.Context, svc *service.Service, id string) (types.Job, error) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	lastProgress := ""
	for {
		job, found := svc.Poll(id)
		if !found {
			return types.Job{}, fmt.Errorf("job %s expired before completion", id)
		}
		if job.Progress != lastProgress {
			lastProgress = job.Progress
			logger.Info("job progress", zap.String("job_id", id), zap.String("progress", job.Progress))
		}
		if job.Status.Terminal() {
			return job, nil
		}

		select {
		case <-ctx.Done():
			return types.Job{}, fmt.Errorf("interrupted while waiting for job %s", id)
		case <-ticker.C:
		}
	}
}

// writeReport prints the markdown (stdout or -o file) plus a metadata summary
// on stderr so piping the report stays clean.
func writeReport(job types.Job) error {
	doc := job.Output
	if outputPath != "" {
		if err := os.WriteFile(outputPath, []byte(doc.FullText), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", outputPath, err)
		}
		fmt.Fprintf(os.Stderr, "report written to %s\n", outputPath)
	} else {
		fmt.Println(doc.FullText)
	}

	if len(doc.Metadata.Errors) > 0 {
		summary, _ := json.MarshalIndent(doc.Metadata.Errors, "", "  ")
		fmt.Fprintf(os.Stderr, "gathering completed with %d provider errors:\n%s\n", len(doc.Metadata.Errors), summary)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
