// Package main provides the CLI entrypoint for omrsheet.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/verte-zerg/omrsheet/internal/config"
	"github.com/verte-zerg/omrsheet/internal/draft"
	"github.com/verte-zerg/omrsheet/internal/engine"
	"github.com/verte-zerg/omrsheet/internal/logging"
	"github.com/verte-zerg/omrsheet/internal/model"
	"github.com/verte-zerg/omrsheet/internal/preview"
	"github.com/verte-zerg/omrsheet/internal/sched"
	"github.com/verte-zerg/omrsheet/internal/submit"
	"github.com/verte-zerg/omrsheet/internal/tui"
	"github.com/verte-zerg/omrsheet/internal/validate"
)

const (
	defaultQuestions   = 25
	defaultOptions     = 4
	defaultCellWidth   = 8
	defaultNarrowWidth = 768
	defaultDebounceMs  = 300
	defaultAlertMs     = 5000
	defaultTimeoutMs   = 60000
)

// settings collects flag values; config file values fill unset flags.
type settings struct {
	institution string
	exam        string
	subjects    string
	questions   int
	options     int
	logo        string

	endpoint  string
	timeoutMs int
	outputDir string

	cellWidth   int
	touch       bool
	narrowWidth int
	debounceMs  int
	alertMs     int

	logLevel string
	logPath  string

	presets []config.PresetConfig
}

var (
	opts        settings
	previewHTML bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "omrsheet",
		Short:         "Compose OMR answer sheet requests in the terminal",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runFormCmd,
	}
	addFormFlags(rootCmd)
	rootCmd.Flags().StringVar(&opts.endpoint, "endpoint", "", "generator endpoint URL")
	rootCmd.Flags().IntVar(&opts.timeoutMs, "timeout-ms", defaultTimeoutMs, "generator request timeout in milliseconds")
	rootCmd.Flags().StringVar(&opts.outputDir, "output-dir", ".", "directory for generated sheets")
	rootCmd.Flags().IntVar(&opts.cellWidth, "cell-width", defaultCellWidth, "logical pixels per terminal column")
	rootCmd.Flags().BoolVar(&opts.touch, "touch", false, "treat mouse drags as touch gestures")
	rootCmd.Flags().IntVar(&opts.narrowWidth, "narrow-width", defaultNarrowWidth, "viewport width (px) at or below which input is debounced")
	rootCmd.Flags().IntVar(&opts.debounceMs, "debounce-ms", defaultDebounceMs, "preview debounce on narrow viewports")
	rootCmd.Flags().IntVar(&opts.alertMs, "alert-ms", defaultAlertMs, "alert display time in milliseconds")
	rootCmd.Flags().StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.Flags().StringVar(&opts.logPath, "log-file", "", "log file path")

	rootCmd.AddCommand(newPreviewCmd())
	rootCmd.AddCommand(newPresetsCmd())
	rootCmd.AddCommand(newConfigCmd())
	return rootCmd
}

func addFormFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&opts.institution, "institution", "", "school/institution name")
	cmd.Flags().StringVar(&opts.exam, "exam", "", "exam name")
	cmd.Flags().StringVar(&opts.subjects, "subjects", "", "comma separated subjects (max 5)")
	cmd.Flags().IntVar(&opts.questions, "questions", defaultQuestions, "questions per subject")
	cmd.Flags().IntVar(&opts.options, "options", defaultOptions, "answer options per question")
}

func loadSettings(cmd *cobra.Command) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyConfig(cmd, "institution", &opts.institution, fileCfg.Form.Institution)
	applyConfig(cmd, "exam", &opts.exam, fileCfg.Form.Exam)
	applyConfig(cmd, "subjects", &opts.subjects, fileCfg.Form.Subjects)
	applyConfig(cmd, "questions", &opts.questions, fileCfg.Form.Questions)
	applyConfig(cmd, "options", &opts.options, fileCfg.Form.Options)
	applyConfig(cmd, "endpoint", &opts.endpoint, fileCfg.Submit.Endpoint)
	applyConfig(cmd, "timeout-ms", &opts.timeoutMs, fileCfg.Submit.TimeoutMs)
	applyConfig(cmd, "output-dir", &opts.outputDir, fileCfg.Submit.OutputDir)
	applyConfig(cmd, "cell-width", &opts.cellWidth, fileCfg.UI.CellWidthPx)
	applyConfig(cmd, "touch", &opts.touch, fileCfg.UI.Touch)
	applyConfig(cmd, "narrow-width", &opts.narrowWidth, fileCfg.UI.NarrowWidth)
	applyConfig(cmd, "debounce-ms", &opts.debounceMs, fileCfg.UI.DebounceMs)
	applyConfig(cmd, "alert-ms", &opts.alertMs, fileCfg.UI.AlertMs)
	applyConfig(cmd, "log-level", &opts.logLevel, fileCfg.Log.Level)
	applyConfig(cmd, "log-file", &opts.logPath, fileCfg.Log.Path)
	opts.presets = fileCfg.Presets
	return validateSettings(opts)
}

// applyConfig copies a config value into target unless the flag was set.
func applyConfig[T any](cmd *cobra.Command, name string, target, value *T) {
	if value == nil {
		return
	}
	if flag := cmd.Flags().Lookup(name); flag != nil && flag.Changed {
		return
	}
	*target = *value
}

func validateSettings(s settings) error {
	if s.cellWidth <= 0 {
		return fmt.Errorf("--cell-width must be > 0")
	}
	if s.narrowWidth <= 0 {
		return fmt.Errorf("--narrow-width must be > 0")
	}
	if s.debounceMs < 0 {
		return fmt.Errorf("--debounce-ms must be >= 0")
	}
	if s.alertMs <= 0 {
		return fmt.Errorf("--alert-ms must be > 0")
	}
	if s.timeoutMs <= 0 {
		return fmt.Errorf("--timeout-ms must be > 0")
	}
	return nil
}

func buildPresets(extra []config.PresetConfig) (*draft.Presets, error) {
	presets := draft.NewPresets()
	for _, p := range extra {
		err := presets.Register(model.Preset{
			ID:                  p.ID,
			Subjects:            p.Subjects,
			QuestionsPerSubject: p.Questions,
			NumOptions:          p.Options,
		})
		if err != nil {
			return nil, fmt.Errorf("invalid preset in config: %w", err)
		}
	}
	return presets, nil
}

func newEngine(s settings, viewport model.Viewport, logger *zap.Logger) (*engine.Engine, error) {
	presets, err := buildPresets(s.presets)
	if err != nil {
		return nil, err
	}
	return engine.New(sched.New(time.Now()), engine.Options{
		Defaults: draft.Defaults{
			Institution: s.institution,
			ExamName:    s.exam,
			Subjects:    s.subjects,
			Questions:   strconv.Itoa(s.questions),
			Options:     strconv.Itoa(s.options),
		},
		Presets:       presets,
		Viewport:      viewport,
		AlertDuration: time.Duration(s.alertMs) * time.Millisecond,
		DebounceDelay: time.Duration(s.debounceMs) * time.Millisecond,
		NarrowWidth:   s.narrowWidth,
		Logger:        logger,
	}), nil
}

func runFormCmd(cmd *cobra.Command, _ []string) error {
	if err := loadSettings(cmd); err != nil {
		return err
	}
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("omrsheet needs a terminal; use `omrsheet preview` for scripted use")
	}

	logPath := opts.logPath
	if logPath == "" {
		logPath = config.DefaultLogPath()
	}
	logger, err := logging.New(logPath, opts.logLevel)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	e, err := newEngine(opts, model.Viewport{Touch: opts.touch}, logger)
	if err != nil {
		return err
	}
	var client tui.Submitter
	if strings.TrimSpace(opts.endpoint) != "" {
		client = submit.NewClient(opts.endpoint, nil, time.Duration(opts.timeoutMs)*time.Millisecond, logger.Named("submit"))
	} else {
		logger.Warn("no generator endpoint configured; submissions will fail")
	}

	formModel := tui.NewModel(e, tui.Options{
		Client:    client,
		OutputDir: opts.outputDir,
		CellWidth: opts.cellWidth,
		Touch:     opts.touch,
		Logger:    logger.Named("tui"),
	})
	programOpts := []tea.ProgramOption{tea.WithAltScreen()}
	if opts.touch {
		programOpts = append(programOpts, tea.WithMouseCellMotion())
	}
	program := tea.NewProgram(formModel, programOpts...)
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newPreviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Print the preview and validation result for a draft",
		Args:  cobra.NoArgs,
		RunE:  runPreviewCmd,
	}
	addFormFlags(cmd)
	cmd.Flags().StringVar(&opts.logo, "logo", "", "logo file path")
	cmd.Flags().BoolVar(&previewHTML, "html", false, "print the preview as an escaped HTML fragment")
	return cmd
}

func runPreviewCmd(cmd *cobra.Command, _ []string) error {
	if err := loadSettings(cmd); err != nil {
		return err
	}
	// A zero width keeps recomputes synchronous.
	e, err := newEngine(opts, model.Viewport{}, zap.NewNop())
	if err != nil {
		return err
	}
	if opts.logo != "" {
		if _, err := e.SelectLogo(opts.logo); err != nil {
			return err
		}
	}
	out := cmd.OutOrStdout()
	if err := writePreview(out, e.Preview(), previewHTML); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if _, err := e.Submit(); err != nil {
		var verr *validate.Error
		if errors.As(err, &verr) {
			return fmt.Errorf("draft is not ready: %s", verr.Message)
		}
		return err
	}
	if _, err := fmt.Fprintln(out, "Draft is ready to submit."); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func writePreview(w io.Writer, p *model.Preview, html bool) error {
	if p == nil {
		_, err := fmt.Fprintln(w, "(preview hidden: nothing entered yet)")
		return err
	}
	if html {
		_, err := fmt.Fprintln(w, preview.HTML(p))
		return err
	}
	for _, line := range preview.Lines(p) {
		if _, err := fmt.Fprintf(w, "%s: %s\n", line.Label, line.Value); err != nil {
			return err
		}
		if line.Warning != "" {
			if _, err := fmt.Fprintf(w, "  warning: %s\n", line.Warning); err != nil {
				return err
			}
		}
	}
	_, err := fmt.Fprintf(w, "Progress: %d/%d (%d%%)\n", p.Progress.Completed, p.Progress.Total, p.Progress.Percent)
	return err
}

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List available templates",
		Args:  cobra.NoArgs,
		RunE:  runPresetsCmd,
	}
}

func runPresetsCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	presets, err := buildPresets(fileCfg.Presets)
	if err != nil {
		return err
	}
	for _, p := range presets.List() {
		line := fmt.Sprintf("%-6s %s (%d questions, %d options)", p.ID, strings.Join(p.Subjects, ", "), p.QuestionsPerSubject, p.NumOptions)
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# omrsheet configuration
# Uncomment a value to enable it. CLI flags override config values.

[form]
# institution = ""          # Prefilled school/institution name
# exam = ""                 # Prefilled exam name
# subjects = ""             # Comma separated subjects
# questions = %d            # Questions per subject
# options = %d               # Answer options per question

[submit]
# endpoint = "http://localhost:5000/generate"
# timeout-ms = %d
# output-dir = "."

[ui]
# cell-width-px = %d         # Logical pixels per terminal column
# touch = false             # Treat mouse drags as touch gestures
# narrow-width = %d        # Debounce input at or below this width (px)
# debounce-ms = %d
# alert-ms = %d

[log]
# level = "info"
# path = ""

# [[preset]]
# id = "CUET"
# subjects = ["English", "General Test"]
# questions = 50
# options = 4
`,
		defaultQuestions,
		defaultOptions,
		defaultTimeoutMs,
		defaultCellWidth,
		defaultNarrowWidth,
		defaultDebounceMs,
		defaultAlertMs,
	)
}
