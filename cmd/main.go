// 指示: miu200521358
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/miu200521358/mu_restbake/pkg/adapter/io_model/rig"
	"github.com/miu200521358/mu_restbake/pkg/adapter/mpresenter/messages"
	"github.com/miu200521358/mu_restbake/pkg/shared/base/logging"
	"github.com/miu200521358/mu_restbake/pkg/usecase/minteractor"
	"github.com/miu200521358/mu_restbake/pkg/usecase/port/moutput"
	"github.com/spf13/cobra"
)

// options はCLI引数を保持する。
type options struct {
	inputPath    string
	outputPath   string
	configPath   string
	mode         string
	selectNames  string
	expression   string
	armatureName string
	verbose      bool
}

// bakeOptions は設定ファイルとフラグを解決した焼き込み条件を表す。
type bakeOptions struct {
	inputPath    string
	outputPath   string
	armatureName string
	mode         minteractor.BakeMode
	selection    moutput.ISelectionProvider
	verbose      bool
}

// main はリグファイルのレスト焼き込みを実行する。
func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run はCLI処理全体を実行する。
func run(args []string, out io.Writer, errOut io.Writer) error {
	cmd := newRootCommand(out, errOut)
	cmd.SetArgs(args)
	return cmd.Execute()
}

// newRootCommand はルートコマンドを生成する。
func newRootCommand(out io.Writer, errOut io.Writer) *cobra.Command {
	opts := options{}
	cmd := &cobra.Command{
		Use:           "mu_restbake [in.toml] [out.toml]",
		Short:         messages.CommandShort,
		Long:          messages.CommandLong,
		Args:          cobra.MaximumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			resolved, err := resolveOptions(cmd, opts, args)
			if err != nil {
				return err
			}
			return bake(resolved, out, errOut)
		},
	}
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	flags := cmd.Flags()
	flags.StringVar(&opts.inputPath, "in", "", messages.FlagInput)
	flags.StringVar(&opts.outputPath, "out", "", messages.FlagOutput)
	flags.StringVar(&opts.mode, "mode", "", messages.FlagMode)
	flags.StringVar(&opts.selectNames, "select", "", messages.FlagSelect)
	flags.StringVar(&opts.expression, "expr", "", messages.FlagExpr)
	flags.StringVar(&opts.configPath, "config", "", messages.FlagConfig)
	flags.StringVar(&opts.armatureName, "armature", "", messages.FlagArmature)
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, messages.FlagVerbose)
	return cmd
}

// resolveOptions は設定ファイル・フラグ・位置引数から焼き込み条件を解決する。
// 明示したフラグは設定ファイルより優先する。
func resolveOptions(cmd *cobra.Command, opts options, args []string) (bakeOptions, error) {
	config, err := rig.LoadBakeConfig(opts.configPath)
	if err != nil {
		return bakeOptions{}, err
	}
	flags := cmd.Flags()
	if !flags.Changed("mode") && config.Mode != "" {
		opts.mode = config.Mode
	}
	// 選択系フラグを1つでも指定した場合は設定ファイルの選択を使わない
	if !flags.Changed("select") && !flags.Changed("expr") {
		opts.selectNames = config.Select
		opts.expression = config.Expression
	}
	if !flags.Changed("verbose") && config.Verbose {
		opts.verbose = true
	}
	if !flags.Changed("out") && config.Output != "" {
		opts.outputPath = config.Output
	}
	if opts.inputPath == "" && len(args) > 0 {
		opts.inputPath = args[0]
	}
	if opts.outputPath == "" && len(args) > 1 {
		opts.outputPath = args[1]
	}

	if strings.TrimSpace(opts.inputPath) == "" {
		return bakeOptions{}, errors.New(messages.MessageInputRequired)
	}
	if !strings.EqualFold(filepath.Ext(opts.inputPath), ".toml") {
		return bakeOptions{}, fmt.Errorf(messages.MessageInputExtInvalid, opts.inputPath)
	}
	if opts.outputPath != "" && !strings.EqualFold(filepath.Ext(opts.outputPath), ".toml") {
		return bakeOptions{}, fmt.Errorf(messages.MessageOutputExtInvalid, opts.outputPath)
	}
	if strings.TrimSpace(opts.selectNames) != "" && strings.TrimSpace(opts.expression) != "" {
		return bakeOptions{}, errors.New(messages.MessageSelectionConflict)
	}

	selection, err := minteractor.BuildSelection(opts.selectNames, opts.expression)
	if err != nil {
		return bakeOptions{}, err
	}
	modeName := opts.mode
	if modeName == "" && selection != nil {
		modeName = minteractor.BAKE_MODE_SELECTED.String()
	}
	mode, err := minteractor.ParseBakeMode(modeName)
	if err != nil {
		return bakeOptions{}, err
	}
	return bakeOptions{
		inputPath:    opts.inputPath,
		outputPath:   opts.outputPath,
		armatureName: opts.armatureName,
		mode:         mode,
		selection:    selection,
		verbose:      opts.verbose,
	}, nil
}

// bake はリグファイルを焼き込み、結果を出力する。
func bake(opts bakeOptions, out io.Writer, errOut io.Writer) error {
	logger := logging.NewLogger(errOut)
	if opts.verbose {
		logger.SetLevel(logging.LOG_LEVEL_DEBUG)
	}
	previous := logging.DefaultLogger()
	logging.SetDefaultLogger(logger)
	defer logging.SetDefaultLogger(previous)

	repository := rig.NewRigRepository()
	usecase := minteractor.NewRestBakeUsecase(minteractor.RestBakeUsecaseDeps{
		ChangeNotifier: &writerNotifier{out: out},
		RigReader:      repository,
		RigWriter:      repository,
	})

	fmt.Fprintf(out, messages.LogLoadStart+"\n", opts.inputPath)
	result, err := usecase.BakeFile(minteractor.BakeFileRequest{
		InputPath:        opts.inputPath,
		OutputPath:       opts.outputPath,
		ArmatureName:     opts.armatureName,
		Mode:             opts.mode,
		Selection:        opts.selection,
		ProgressReporter: &loggerProgressReporter{logger: logger},
	})
	if err != nil {
		return fmt.Errorf("レスト焼き込みに失敗しました: %w", err)
	}
	printBakeResults(out, result.Results)
	fmt.Fprintf(out, messages.LogSaveSuccess+"\n", result.OutputPath)
	return nil
}

// printBakeResults はアーマチュアごとの焼き込み結果を出力する。
func printBakeResults(out io.Writer, results []*minteractor.BakeResult) {
	for _, result := range results {
		fmt.Fprintf(out, messages.LogBakeSummary+"\n",
			result.ArmatureName,
			result.Mode,
			len(result.BakedBoneNames),
			len(result.AdjustedBoneNames),
			result.ResetConstraintCount,
			len(result.FixedObjectNames),
		)
		for _, warning := range result.Warnings {
			fmt.Fprintf(out, messages.LogBakeWarning+"\n", result.ArmatureName, warning)
		}
	}
}

// writerNotifier はレスト変更を出力先へ表示する。
type writerNotifier struct {
	out io.Writer
}

// NotifyRestChanged はレスト変更を表示する。
func (n *writerNotifier) NotifyRestChanged(armatureName string) {
	fmt.Fprintf(n.out, messages.LogRestChanged+"\n", armatureName)
}

// loggerProgressReporter は焼き込み進捗をデバッグログへ出力する。
type loggerProgressReporter struct {
	logger logging.ILogger
}

// ReportBakeProgress は進捗イベントをログへ出力する。
func (r *loggerProgressReporter) ReportBakeProgress(event minteractor.BakeProgressEvent) {
	r.logger.Debug(messages.LogBakeProgress, event.Type, event.BoneCount, event.ObjectCount, event.ConstraintCount)
}
