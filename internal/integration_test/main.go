// 指示: miu200521358
package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/miu200521358/mu_restbake/pkg/adapter/io_model/rig"
	"github.com/miu200521358/mu_restbake/pkg/adapter/mpresenter/messages"
	"github.com/miu200521358/mu_restbake/pkg/domain/model"
	"github.com/miu200521358/mu_restbake/pkg/shared/base/logging"
	"github.com/miu200521358/mu_restbake/pkg/usecase/minteractor"
	"github.com/miu200521358/mu_restbake/pkg/usecase/port/moutput"
	"github.com/spf13/cobra"
)

const (
	batchOutputDirMode = 0o755
	bakedSuffix        = "_baked"

	statusSucceeded = "succeeded"
	statusDryRun    = "dry_run"
	statusFailed    = "failed"
)

// batchConfig はバッチ焼き込みの実行設定を表す。
type batchConfig struct {
	Root        string
	OutputRoot  string
	Mode        string
	SelectNames string
	Expression  string
	DryRun      bool
	FailFast    bool
	Verbose     bool
}

// bakeEntry は1ファイル分の焼き込み入力情報を表す。
type bakeEntry struct {
	Index      int
	SourcePath string
	RigName    string
	OutputPath string
}

// bakeEntryResult は1ファイル分の焼き込み結果を表す。
type bakeEntryResult struct {
	Entry        bakeEntry
	Status       string
	Duration     time.Duration
	Err          error
	ProgressInfo string
	Warnings     []string
}

// bakeProgressCollector は焼き込みの進捗イベントを収集する。
type bakeProgressCollector struct {
	eventCounts     map[minteractor.BakeProgressEventType]int
	boneTotal       int
	objectTotal     int
	constraintTotal int
}

// discardWriter は保存を行わないリグ書き込み先を表す。
type discardWriter struct{}

// Save は何もしない。
func (discardWriter) Save(string, *model.Scene) error { return nil }

// main はフォルダ内のリグを一括で焼き込む。
func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run は実行設定を解決して一括焼き込みを実行し、終了コードを返す。
func run(args []string, out io.Writer, errOut io.Writer) int {
	code := 0
	config := batchConfig{}
	cmd := &cobra.Command{
		Use:           "restbake_batch",
		Short:         messages.BatchCommandShort,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(config.Root) == "" {
				return errors.New(messages.MessageRootRequired)
			}
			entries, err := buildBakeEntries(config)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				return fmt.Errorf("焼き込み対象のリグがありません: %s", config.Root)
			}
			results, err := executeBatchBake(config, entries, out, errOut)
			if err != nil {
				return err
			}
			printBatchSummary(out, results)
			if failed := countStatus(results, statusFailed); failed > 0 {
				code = 1
			}
			return nil
		},
	}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)

	flags := cmd.Flags()
	flags.StringVar(&config.Root, "root", "", messages.FlagRoot)
	flags.StringVar(&config.OutputRoot, "out-dir", "", messages.FlagOutDir)
	flags.StringVar(&config.Mode, "mode", "", messages.FlagMode)
	flags.StringVar(&config.SelectNames, "select", "", messages.FlagSelect)
	flags.StringVar(&config.Expression, "expr", "", messages.FlagExpr)
	flags.BoolVar(&config.DryRun, "dry-run", false, messages.FlagDryRun)
	flags.BoolVar(&config.FailFast, "fail-fast", false, messages.FlagFailFast)
	flags.BoolVarP(&config.Verbose, "verbose", "v", false, messages.FlagVerbose)

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(errOut, "設定解析に失敗しました: %v\n", err)
		return 2
	}
	return code
}

// buildBakeEntries はフォルダ内のリグファイルから焼き込み対象エントリを生成する。
// 焼き込み済みの出力ファイルは対象外にする。
func buildBakeEntries(config batchConfig) ([]bakeEntry, error) {
	root := filepath.Clean(config.Root)
	repository := rig.NewRigRepository()
	paths := make([]string, 0)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !repository.CanLoad(path) {
			return nil
		}
		if strings.HasSuffix(repository.InferName(path), bakedSuffix) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("リグファイルの探索に失敗しました: %w", err)
	}
	sort.Strings(paths)

	entries := make([]bakeEntry, 0, len(paths))
	for i, path := range paths {
		outputPath := minteractor.BuildDefaultOutputPath(path)
		if config.OutputRoot != "" {
			rel, err := filepath.Rel(root, outputPath)
			if err != nil {
				return nil, fmt.Errorf("出力先を解決できません: %w", err)
			}
			outputPath = filepath.Join(filepath.Clean(config.OutputRoot), rel)
		}
		entries = append(entries, bakeEntry{
			Index:      i + 1,
			SourcePath: path,
			RigName:    repository.InferName(path),
			OutputPath: outputPath,
		})
	}
	return entries, nil
}

// executeBatchBake は全リグの焼き込みを順次実行する。
func executeBatchBake(config batchConfig, entries []bakeEntry, out io.Writer, errOut io.Writer) ([]bakeEntryResult, error) {
	selection, err := minteractor.BuildSelection(config.SelectNames, config.Expression)
	if err != nil {
		return nil, err
	}
	modeName := config.Mode
	if modeName == "" && selection != nil {
		modeName = minteractor.BAKE_MODE_SELECTED.String()
	}
	mode, err := minteractor.ParseBakeMode(modeName)
	if err != nil {
		return nil, err
	}

	logger := logging.NewLogger(errOut)
	if config.Verbose {
		logger.SetLevel(logging.LOG_LEVEL_DEBUG)
	} else {
		logger.SetLevel(logging.LOG_LEVEL_WARN)
	}
	previous := logging.DefaultLogger()
	logging.SetDefaultLogger(logger)
	defer logging.SetDefaultLogger(previous)

	repository := rig.NewRigRepository()
	usecase := minteractor.NewRestBakeUsecase(minteractor.RestBakeUsecaseDeps{
		RigReader: repository,
		RigWriter: repository,
	})

	fmt.Fprintf(out, messages.LogBatchStart+"\n", config.Root, len(entries))
	results := make([]bakeEntryResult, 0, len(entries))
	total := len(entries)
	for _, entry := range entries {
		result := bakeRigEntry(usecase, config, mode, selection, entry)
		results = append(results, result)
		switch result.Status {
		case statusSucceeded:
			fmt.Fprintf(out, "[%d/%d] 焼き込み成功: rig=%s output=%s elapsed=%s %s\n",
				entry.Index, total, entry.RigName, entry.OutputPath, result.Duration.Round(time.Millisecond), result.ProgressInfo)
		case statusDryRun:
			fmt.Fprintf(out, "[%d/%d] DRY-RUN: rig=%s output=%s %s\n",
				entry.Index, total, entry.RigName, entry.OutputPath, result.ProgressInfo)
		default:
			fmt.Fprintf(out, "[%d/%d] "+messages.LogBatchFailed+"\n", entry.Index, total, entry.SourcePath, result.Err)
			if config.FailFast {
				return results, nil
			}
		}
		for _, warning := range result.Warnings {
			fmt.Fprintf(out, "[%d/%d] 警告: rig=%s id=%s\n", entry.Index, total, entry.RigName, warning)
		}
	}
	return results, nil
}

// bakeRigEntry は1リグ分の焼き込みを実行する。
func bakeRigEntry(
	usecase *minteractor.RestBakeUsecase,
	config batchConfig,
	mode minteractor.BakeMode,
	selection moutput.ISelectionProvider,
	entry bakeEntry,
) bakeEntryResult {
	result := bakeEntryResult{Entry: entry, Status: statusFailed}
	request := minteractor.BakeFileRequest{
		InputPath:  entry.SourcePath,
		OutputPath: entry.OutputPath,
		Mode:       mode,
		Selection:  selection,
	}
	if config.DryRun {
		request.Writer = discardWriter{}
	} else if err := os.MkdirAll(filepath.Dir(entry.OutputPath), batchOutputDirMode); err != nil {
		result.Err = fmt.Errorf("出力ディレクトリ作成に失敗しました: %w", err)
		return result
	}

	startedAt := time.Now()
	collector := newBakeProgressCollector()
	request.ProgressReporter = collector
	baked, err := usecase.BakeFile(request)
	if err != nil {
		result.Err = err
		return result
	}
	for _, bakeResult := range baked.Results {
		for _, warning := range bakeResult.Warnings {
			result.Warnings = append(result.Warnings, bakeResult.ArmatureName+":"+warning)
		}
	}
	result.Status = statusSucceeded
	if config.DryRun {
		result.Status = statusDryRun
	}
	result.Duration = time.Since(startedAt)
	result.ProgressInfo = collector.Summary()
	return result
}

// printBatchSummary は焼き込み結果の集計を表示する。
func printBatchSummary(out io.Writer, results []bakeEntryResult) {
	fmt.Fprintf(out, messages.LogBatchSummary+"\n",
		countStatus(results, statusSucceeded)+countStatus(results, statusDryRun),
		countStatus(results, statusFailed),
	)
}

// countStatus は指定状態の件数を返す。
func countStatus(results []bakeEntryResult, status string) int {
	count := 0
	for _, result := range results {
		if result.Status == status {
			count++
		}
	}
	return count
}

// newBakeProgressCollector は焼き込み進捗収集器を生成する。
func newBakeProgressCollector() *bakeProgressCollector {
	return &bakeProgressCollector{
		eventCounts: map[minteractor.BakeProgressEventType]int{},
	}
}

// ReportBakeProgress は焼き込みの進捗イベントを収集する。
func (collector *bakeProgressCollector) ReportBakeProgress(event minteractor.BakeProgressEvent) {
	if collector == nil {
		return
	}
	collector.eventCounts[event.Type]++
	switch event.Type {
	case minteractor.BakeProgressEventTypeBonesBaked:
		collector.boneTotal += event.BoneCount
	case minteractor.BakeProgressEventTypeObjectsFixed:
		collector.objectTotal += event.ObjectCount
	case minteractor.BakeProgressEventTypeConstraintsReset:
		collector.constraintTotal += event.ConstraintCount
	}
}

// Summary は収集した進捗の要約文字列を返す。
func (collector *bakeProgressCollector) Summary() string {
	if collector == nil || len(collector.eventCounts) == 0 {
		return ""
	}
	return fmt.Sprintf(
		"armatures=%d bones=%d constraints=%d objects=%d",
		collector.eventCounts[minteractor.BakeProgressEventTypeObjectsFixed],
		collector.boneTotal,
		collector.constraintTotal,
		collector.objectTotal,
	)
}
