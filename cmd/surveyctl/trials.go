package main

import (
	"context"
	"fmt"
	"time"

	"github.com/SAP-F-2025/story-survey-service/internal/cache"
	"github.com/SAP-F-2025/story-survey-service/internal/flow"
	"github.com/SAP-F-2025/story-survey-service/internal/models"
	"github.com/SAP-F-2025/story-survey-service/internal/trials"
	"github.com/SAP-F-2025/story-survey-service/internal/utils"
	"github.com/SAP-F-2025/story-survey-service/pkg"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	checkSource  string
	checkVariant string
	checkTimeout time.Duration
	flushSource  string
)

var trialsCmd = &cobra.Command{
	Use:   "trials",
	Short: "Inspect trial files",
}

var trialsCheckCmd = &cobra.Command{
	Use:   "check <condition>...",
	Short: "Load the trial file of each condition and report problems",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTrialsCheck,
}

var trialsFlushCmd = &cobra.Command{
	Use:   "flush [condition]...",
	Short: "Drop cached trial files from Redis so the next session refetches them",
	RunE:  runTrialsFlush,
}

func init() {
	trialsFlushCmd.Flags().StringVar(&flushSource, "source", "", "Trial source URL the server uses (default: TRIAL_SOURCE_URL)")
	trialsCmd.AddCommand(trialsFlushCmd)

	trialsCheckCmd.Flags().StringVar(&checkSource, "source", "", "Trial source URL or path, {condition} is substituted (default: TRIAL_SOURCE_URL)")
	trialsCheckCmd.Flags().StringVar(&checkVariant, "variant", "", "Survey variant, likert or mcq (default: SURVEY_VARIANT)")
	trialsCheckCmd.Flags().DurationVar(&checkTimeout, "timeout", 30*time.Second, "Fetch timeout per file")
	trialsCmd.AddCommand(trialsCheckCmd)
}

func runTrialsCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if checkSource == "" {
		checkSource = cfg.Survey.TrialSourceURL
	}
	if checkVariant == "" {
		checkVariant = string(cfg.Survey.Variant)
	}
	v, err := flow.LookupVariant(models.Variant(checkVariant))
	if err != nil {
		return err
	}

	loader := trials.NewLoader(trials.LoaderConfig{
		SourceURL: checkSource,
		Timeout:   checkTimeout,
		Logger:    utils.NewNopLogger(),
	})

	out := cmd.OutOrStdout()
	failed := 0
	for _, condition := range args {
		ctx, cancel := context.WithTimeout(cmd.Context(), checkTimeout)
		loaded, err := loader.Load(ctx, condition)
		cancel()
		if err != nil {
			fmt.Fprintf(out, "FAIL %s: %v\n", condition, err)
			failed++
			continue
		}

		issues := trials.Inspect(loaded, v.TrialCount)
		if len(issues) == 0 {
			fmt.Fprintf(out, "OK   %s: %d trials from %s\n", condition, len(loaded), loader.ResolveSource(condition))
			continue
		}
		failed++
		fmt.Fprintf(out, "FAIL %s: %d problems\n", condition, len(issues))
		for _, issue := range issues {
			fmt.Fprintf(out, "     %s\n", issue)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d conditions failed", failed, len(args))
	}
	return nil
}

func runTrialsFlush(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if flushSource == "" {
		flushSource = cfg.Survey.TrialSourceURL
	}

	client, err := pkg.NewRedisClient(cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	loader := trials.NewLoader(trials.LoaderConfig{
		SourceURL: flushSource,
		Cache:     cache.NewRedisCache(client, zap.NewNop()),
		Logger:    utils.NewNopLogger(),
	})

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()
	if err := loader.Invalidate(ctx, args...); err != nil {
		return err
	}

	if len(args) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "flushed all cached trial files")
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "flushed %d conditions\n", len(args))
	}
	return nil
}
