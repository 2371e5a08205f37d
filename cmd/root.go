package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"divmap/internal/config"
	"divmap/internal/finder"
	"divmap/internal/logging"
	"divmap/internal/report"
	"divmap/internal/walkers"
	"divmap/internal/watcher"
)

var (
	configFlag         string
	rootdirFlag        string
	formatFlag         string
	outputDirFlag      string
	reportsFlag        []string
	watchFlag          bool
	noColorFlag        bool
	generateConfigFlag bool
	verboseFlag        int
	quietFlag          int
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "divmap",
	Short: "Quantify shared vs platform-specific code across build configurations",
	Long: `divmap analyzes a codebase compiled under multiple target configurations
("platforms") via preprocessor conditionals, and reports how many source
lines are shared by which exact set of platforms.

Examples:
  divmap                                   # Analyze using .divmap.yml in the current directory
  divmap -c study.yml -r ~/src/app         # Explicit config and root directory
  divmap -R summary -R clustering          # Only selected reports
  divmap --format=json                     # Machine-readable output
  divmap --generate-config                 # Generate sample config file`,
	Run: runAnalysis,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().StringVarP(&configFlag, "config", "c", "", "Path to configuration file")
	rootCmd.Flags().StringVarP(&rootdirFlag, "rootdir", "r", ".", "Root directory of the analyzed codebase")
	rootCmd.Flags().StringVarP(&formatFlag, "format", "f", "", "Output format (console, json)")
	rootCmd.Flags().StringVarP(&outputDirFlag, "output-dir", "o", "", "Directory for generated report files")
	rootCmd.Flags().StringArrayVarP(&reportsFlag, "report", "R", nil, "Reports to produce (summary, filemap, clustering, all)")
	rootCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Re-run the analysis when source files change")
	rootCmd.Flags().BoolVar(&noColorFlag, "no-color", false, "Disable colorized output")
	rootCmd.Flags().BoolVar(&generateConfigFlag, "generate-config", false, "Generate sample configuration file")
	rootCmd.Flags().CountVarP(&verboseFlag, "verbose", "v", "Increase verbosity level")
	rootCmd.Flags().CountVarP(&quietFlag, "quiet", "q", "Decrease verbosity level")
}

func runAnalysis(cmd *cobra.Command, args []string) {
	if generateConfigFlag {
		generateConfig()
		return
	}

	log := logging.ForVerbosity(verboseFlag, quietFlag)

	cfg, err := config.LoadConfig(configFlag)
	if err != nil {
		color.Red("Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	applyFlagOverrides(cfg)

	rootdir, err := filepath.Abs(rootdirFlag)
	if err != nil {
		color.Red("Error resolving root directory: %v\n", err)
		os.Exit(1)
	}

	runOnce := func() error {
		state, err := finder.Find(rootdir, cfg, cfg.PlatformList(), log)
		if err != nil {
			return err
		}
		if len(state.Filenames()) == 0 {
			color.Yellow("No source files found under %s\n", rootdir)
			return nil
		}
		return renderReports(cfg, state, log)
	}

	if err := runOnce(); err != nil {
		color.Red("Analysis failed: %v\n", err)
		os.Exit(1)
	}

	if watchFlag {
		watchAndRerun(rootdir, log, runOnce)
	}
}

// applyFlagOverrides layers command-line flags over the loaded config.
func applyFlagOverrides(cfg *config.Config) {
	if formatFlag != "" {
		cfg.Output.Format = formatFlag
	}
	if outputDirFlag != "" {
		cfg.Output.OutputDir = outputDirFlag
	}
	if len(reportsFlag) > 0 {
		cfg.Output.Reports = reportsFlag
	}
	if noColorFlag {
		cfg.Output.Colors = false
	}
}

func renderReports(cfg *config.Config, state *finder.State, log *slog.Logger) error {
	mapper := walkers.NewPlatformMapper(state)
	lineMap, fileMap := mapper.Walk(state)

	if cfg.Output.Format == "json" {
		doc, err := report.JSON(lineMap, fileMap)
		if err != nil {
			return err
		}
		fmt.Println(doc)
		return nil
	}

	useColors := cfg.Output.Colors
	if cfg.ReportEnabled("summary") {
		fmt.Print(report.Summary(lineMap, useColors))
	}
	if cfg.ReportEnabled("filemap") {
		fmt.Print(report.FileMap(fileMap, useColors))
	}
	if cfg.ReportEnabled("clustering") {
		if err := writeClustering(cfg, lineMap, log); err != nil {
			return err
		}
	}
	return nil
}

func writeClustering(cfg *config.Config, lineMap walkers.LineMap, log *slog.Logger) error {
	platforms := make([]string, 0, len(cfg.Platforms))
	for _, p := range cfg.Platforms {
		platforms = append(platforms, p.Name)
	}
	if len(platforms) < 2 {
		log.Warn("skipping clustering report", "reason", "fewer than two platforms")
		return nil
	}

	fmt.Print(report.DistanceMatrix(platforms, report.Distances(platforms, lineMap)))

	name := report.ClusteringFilename(projectName(cfg, log))
	path := filepath.Join(cfg.Output.OutputDir, name)
	if cfg.Output.OutputDir != "" {
		if err := os.MkdirAll(cfg.Output.OutputDir, 0o755); err != nil {
			return err
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := report.Clustering(f, "divmap clustering", platforms, lineMap); err != nil {
		return err
	}

	if cfg.Output.Colors {
		color.Green("Clustering report saved to: %s\n", path)
	} else {
		fmt.Printf("Clustering report saved to: %s\n", path)
	}
	return nil
}

// projectName picks a name for generated report files: the configured
// project name, or a guess from the config file path.
func projectName(cfg *config.Config, log *slog.Logger) string {
	if cfg.ProjectName != "" {
		return cfg.ProjectName
	}

	path := configFlag
	if path == "" {
		if cwd, err := os.Getwd(); err == nil {
			return filepath.Base(cwd)
		}
	}
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	base = strings.TrimSpace(strings.TrimPrefix(base, "."))
	if base == "" || base == "divmap" || base == "config" {
		if dir := filepath.Base(filepath.Dir(absOrSelf(path))); dir != "" && dir != "." && dir != string(filepath.Separator) {
			return dir
		}
		log.Warn("can't guess a meaningful output name from the config path")
		return "unknown"
	}
	return base
}

func absOrSelf(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

func watchAndRerun(rootdir string, log *slog.Logger, runOnce func() error) {
	fw, err := watcher.New(log)
	if err != nil {
		color.Red("Error starting watch mode: %v\n", err)
		os.Exit(1)
	}
	defer fw.Close()

	handler := func(paths []string) error {
		log.Info("source change detected", "files", len(paths))
		return runOnce()
	}
	if err := fw.Watch(rootdir, handler); err != nil {
		color.Red("Error starting watch mode: %v\n", err)
		os.Exit(1)
	}

	color.Cyan("Watching %s for changes (Ctrl-C to stop)\n", rootdir)
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func generateConfig() {
	configPath := ".divmap.yml"
	if err := config.GenerateConfig(configPath); err != nil {
		color.Red("Failed to generate config file: %v\n", err)
		os.Exit(1)
	}
	color.Green("Generated sample configuration file: %s\n", configPath)
	color.Cyan("Edit the platform list to match your build configurations\n")
	color.Cyan("Run 'divmap -c %s' to use it\n", configPath)
}
