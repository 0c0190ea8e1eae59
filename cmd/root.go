package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/codectx/codectx/config"
	"github.com/codectx/codectx/constants/lipgloss"
	"github.com/codectx/codectx/pipeline"
	"github.com/codectx/codectx/processor"
	"github.com/codectx/codectx/providers"
	contracts_provider "github.com/codectx/codectx/providers/contracts"
	"github.com/codectx/codectx/scheduler"
	"github.com/codectx/codectx/token_management"
	contracts_token "github.com/codectx/codectx/token_management/contracts"
)

// RootDependencies holds the wired services for a command run.
type RootDependencies struct {
	Cwd             string
	Config          *config.Config
	TokenManagement contracts_token.ITokenManagement
	Provider        contracts_provider.ISummaryProvider
}

var rootCmd = &cobra.Command{
	Use:   "codectx [directory]",
	Short: "Generate and maintain an AI-friendly context document for a code tree.",
	Long: `codectx scans a directory tree, summarizes each source file and keeps the
result in a single markdown document. Subsequent runs only reprocess files
whose content changed, so the document stays current at minimal cost.`,
	Version: "1.0.0",
	Args:    cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		rootDependencies := handleRootCommand(cmd, args)
		handleRunCommand(cmd, rootDependencies)
	},
}

func init() {
	config.InitFlags(rootCmd)

	rootCmd.Flags().Bool("scan-all", false, "Reprocess every file, ignoring recorded fingerprints.")
	rootCmd.Flags().Bool("status", false, "Report pending work without processing anything.")
	rootCmd.Flags().Bool("mock", false, "Use canned summaries instead of calling the AI provider.")
	rootCmd.Flags().Bool("copy", false, "Embed full file contents instead of summaries.")
	rootCmd.Flags().Bool("static", false, "Extract declaration outlines instead of AI summaries.")
}

// selectedMode resolves the processing strategy from the mode flags.
// The strategies are mutually exclusive; the most specific one wins.
func selectedMode(cmd *cobra.Command) processor.Mode {
	if ok, _ := cmd.Flags().GetBool("copy"); ok {
		return processor.ModeCopy
	}
	if ok, _ := cmd.Flags().GetBool("mock"); ok {
		return processor.ModeMock
	}
	if ok, _ := cmd.Flags().GetBool("static"); ok {
		return processor.ModeStatic
	}
	return processor.ModeAI
}

func handleRootCommand(cmd *cobra.Command, args []string) *RootDependencies {
	rootDependencies := &RootDependencies{}

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
		os.Exit(1)
	}
	if len(args) > 0 {
		cwd = args[0]
	}
	rootDependencies.Cwd = cwd

	cfg, err := config.LoadConfigs(cmd.Root(), cwd)
	if err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
		os.Exit(1)
	}

	mode := selectedMode(cmd)
	statusOnly, _ := cmd.Flags().GetBool("status")
	needsAPIKey := mode == processor.ModeAI && !statusOnly
	if err := cfg.Validate(needsAPIKey); err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
		os.Exit(1)
	}
	rootDependencies.Config = cfg

	rootDependencies.TokenManagement = token_management.NewTokenManager()

	provider, err := providers.SummaryProviderFactory(cfg.AIProviderConfig, rootDependencies.TokenManagement)
	if err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
		os.Exit(1)
	}
	rootDependencies.Provider = provider

	return rootDependencies
}

func handleRunCommand(cmd *cobra.Command, rootDependencies *RootDependencies) {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := rootDependencies.Config
	mode := selectedMode(cmd)
	scanAll, _ := cmd.Flags().GetBool("scan-all")
	statusOnly, _ := cmd.Flags().GetBool("status")

	opts := pipeline.Options{
		Root:           rootDependencies.Cwd,
		OutputFile:     cfg.OutputFile,
		Mode:           mode,
		ScanAll:        scanAll,
		TokenThreshold: cfg.TokenThreshold,
		MaxFileSize:    cfg.MaxFileSizeBytes(),
		Concurrency:    cfg.Concurrency,
		Retry: scheduler.RetryPolicy{
			MaxAttempts: cfg.RetryAttempts,
			BaseDelay:   scheduler.DefaultRetryPolicy.BaseDelay,
			MaxDelay:    scheduler.DefaultRetryPolicy.MaxDelay,
		},
		Timeout:        cfg.Timeout(),
		IgnorePatterns: cfg.IgnorePatterns,
		Provider:       rootDependencies.Provider,
		Warnf: func(format string, args ...interface{}) {
			fmt.Println(lipgloss.Yellow.Render(fmt.Sprintf(format, args...)))
		},
	}

	if statusOnly {
		status, err := pipeline.Inspect(opts)
		if err != nil {
			fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
			os.Exit(1)
		}
		renderStatus(status)
		return
	}

	spinner := pterm.DefaultSpinner.WithStyle(pterm.NewStyle(pterm.FgLightBlue)).WithSequence("⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏").WithDelay(100).WithRemoveWhenDone(true)
	runSpinner, _ := spinner.Start("Updating context...")

	report, err := pipeline.Run(ctx, opts)
	runSpinner.Stop()
	fmt.Print("\r")

	if err != nil {
		if ctx.Err() != nil {
			fmt.Println(lipgloss.Yellow.Render("Cancelled; context document left untouched."))
			os.Exit(1)
		}
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
		os.Exit(1)
	}

	renderReport(report)

	if mode == processor.ModeAI {
		rootDependencies.TokenManagement.DisplayTokens(cfg.AIProviderConfig.Model)
	}
}

func renderReport(report *pipeline.Report) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Files: %d  Updated: %d  Unchanged: %d  Deleted: %d", report.Total, report.Updated, report.Unchanged, report.Deleted))
	if report.Skipped > 0 {
		sb.WriteString(fmt.Sprintf("  Skipped: %d", report.Skipped))
	}
	if report.Failed > 0 {
		sb.WriteString(fmt.Sprintf("  Failed: %d", report.Failed))
	}
	sb.WriteString(fmt.Sprintf("\nOutput: %s", report.OutputFile))
	fmt.Println(lipgloss.BoxStyle.Render(sb.String()))

	if report.Failed > 0 {
		fmt.Println(lipgloss.Red.Render("Failed files:"))
		for _, path := range report.FailedFiles {
			fmt.Println(lipgloss.Red.Render("  " + path))
		}
	}
}

func renderStatus(status *pipeline.Status) {
	rows := pterm.TableData{{"State", "Count"}}
	rows = append(rows, []string{"New", fmt.Sprint(len(status.New))})
	rows = append(rows, []string{"Modified", fmt.Sprint(len(status.Modified))})
	rows = append(rows, []string{"Unchanged", fmt.Sprint(len(status.Unchanged))})
	rows = append(rows, []string{"Deleted", fmt.Sprint(len(status.Deleted))})
	rows = append(rows, []string{"Skipped", fmt.Sprint(len(status.Skipped))})
	_ = pterm.DefaultTable.WithHasHeader().WithData(rows).Render()

	printPaths := func(label string, paths []string) {
		if len(paths) == 0 {
			return
		}
		fmt.Println(lipgloss.Info.Render(label + ":"))
		for _, p := range paths {
			fmt.Println("  " + p)
		}
	}
	printPaths("New", status.New)
	printPaths("Modified", status.Modified)
	printPaths("Deleted", status.Deleted)
	for _, s := range status.Skipped {
		fmt.Println(lipgloss.Yellow.Render(fmt.Sprintf("skipped %s: %s", s.Path, s.Reason)))
	}
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
		os.Exit(1)
	}
}
