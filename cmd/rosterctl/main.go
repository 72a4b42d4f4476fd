// rosterctl 命令行工具：离线解析花名册与打卡表，输出层级或导出 Excel
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/shubh389/College-ti/config"
	"github.com/shubh389/College-ti/internal/dto"
	"github.com/shubh389/College-ti/internal/ingest"
	"github.com/shubh389/College-ti/internal/model"
	"github.com/shubh389/College-ti/internal/seed"
	"github.com/shubh389/College-ti/internal/service"
	"github.com/shubh389/College-ti/internal/source"
	applogger "github.com/shubh389/College-ti/pkg/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// globalOptions 所有子命令共享的参数
type globalOptions struct {
	configPath string
	verbose    bool

	roster   string
	summary  string
	workbook string
}

func newRootCmd() *cobra.Command {
	o := &globalOptions{}
	root := &cobra.Command{
		Use:          "rosterctl",
		Short:        "花名册与打卡表离线处理工具",
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&o.configPath, "config", "c", "", "配置文件路径（默认查找 ./config/config.yaml）")
	pf.BoolVarP(&o.verbose, "verbose", "v", false, "输出处理日志到 stderr")
	pf.StringVar(&o.roster, "roster", "", "花名册文本文件或 URL（默认使用内置花名册）")
	pf.StringVar(&o.summary, "summary", "", "CSV 汇总表文件或 URL")
	pf.StringVar(&o.workbook, "workbook", "", "打卡表文件或 URL（xlsx / xls / csv）")

	root.AddCommand(newParseCmd(o), newExportCmd(o))
	return root
}

// ── parse ──

type parseOutput struct {
	Status      *dto.SnapshotResponse `json:"status" yaml:"status"`
	Departments []*model.Department   `json:"departments" yaml:"departments"`
}

func newParseCmd(o *globalOptions) *cobra.Command {
	var (
		format string
		tokens bool
	)
	cmd := &cobra.Command{
		Use:   "parse",
		Short: "解析输入并输出部门层级（json / yaml）",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if format != "json" && format != "yaml" {
				return fmt.Errorf("不支持的输出格式 %q", format)
			}
			rt, err := o.setup()
			if err != nil {
				return err
			}

			if tokens {
				text, err := rt.rosterText(cmd.Context())
				if err != nil {
					return err
				}
				pipeline := ingest.NewPipeline(service.PipelineOptions(rt.cfg))
				return encode(cmd.OutOrStdout(), format, pipeline.Tokenize(text))
			}

			if _, err := rt.svc.Attendance.Sync(cmd.Context()); err != nil {
				return err
			}
			out := parseOutput{Status: rt.svc.Attendance.Snapshot(cmd.Context())}
			for _, d := range rt.svc.Attendance.ListDepartments(cmd.Context(), &dto.DepartmentListRequest{}) {
				dept, err := rt.svc.Attendance.GetDepartment(cmd.Context(), d.ID)
				if err != nil {
					return err
				}
				out.Departments = append(out.Departments, dept)
			}
			return encode(cmd.OutOrStdout(), format, out)
		},
	}
	cmd.Flags().StringVarP(&format, "output", "o", "json", "输出格式：json 或 yaml")
	cmd.Flags().BoolVar(&tokens, "tokens", false, "仅输出花名册分词结果")
	return cmd
}

// ── export ──

var exportKinds = []string{"punches", "cumulative", "duration", "department-people"}

func newExportCmd(o *globalOptions) *cobra.Command {
	var (
		kind   string
		outDir string
		query  dto.PunchQuery
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "导出 Excel 报表",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := o.setup()
			if err != nil {
				return err
			}
			fn, err := exportFor(rt.svc.Export, kind)
			if err != nil {
				return err
			}
			if query.From != "" && query.To != "" && query.From > query.To {
				return fmt.Errorf("开始日期 %s 晚于结束日期 %s", query.From, query.To)
			}

			if _, err := rt.svc.Attendance.Sync(cmd.Context()); err != nil {
				return err
			}
			buf, filename, err := fn(cmd.Context(), &query)
			if err != nil {
				return err
			}

			path := filepath.Join(outDir, filename)
			if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("写入 %s 失败: %w", path, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&kind, "kind", "k", "punches", "报表类型："+strings.Join(exportKinds, " / "))
	f.StringVar(&outDir, "out", ".", "输出目录")
	f.StringVar(&query.Department, "department", "", "部门筛选（All 表示全部）")
	f.StringVar(&query.Search, "search", "", "姓名或工号关键字")
	f.StringVar(&query.From, "from", "", "开始日期 YYYY-MM-DD")
	f.StringVar(&query.To, "to", "", "结束日期 YYYY-MM-DD")
	return cmd
}

type exportFunc func(ctx context.Context, q *dto.PunchQuery) (*bytes.Buffer, string, error)

func exportFor(svc service.ExportService, kind string) (exportFunc, error) {
	switch kind {
	case "punches":
		return svc.ExportPunches, nil
	case "cumulative":
		return svc.ExportCumulative, nil
	case "duration":
		return svc.ExportDuration, nil
	case "department-people":
		return svc.ExportDepartmentPeople, nil
	default:
		return nil, fmt.Errorf("未知报表类型 %q，可选: %s", kind, strings.Join(exportKinds, ", "))
	}
}

// ── 运行环境 ──

type env struct {
	cfg     *config.Config
	fetcher *source.Fetcher
	svc     *service.Service
}

// setup 按命令行参数覆盖配置后组装 Service；CLI 不使用 Redis
func (o *globalOptions) setup() (*env, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.roster != "" {
		cfg.Roster.Path = o.roster
	}
	if o.summary != "" {
		cfg.Ingest.SummaryPath = o.summary
	}
	if o.workbook != "" {
		cfg.Ingest.Source = o.workbook
	}

	logger := zap.NewNop()
	if o.verbose {
		cfg.Log.Format = "console"
		if logger, err = applogger.NewLogger(&cfg.Log); err != nil {
			return nil, err
		}
	}

	fetcher := source.NewFetcher(source.FetcherConfig{
		Timeout:  cfg.Ingest.FetchTimeout,
		MaxBytes: cfg.Ingest.MaxBytes,
	}, nil, logger)
	return &env{
		cfg:     cfg,
		fetcher: fetcher,
		svc:     service.NewService(cfg, fetcher, source.DefaultChain(logger), seed.Roster, logger),
	}, nil
}

// rosterText 读取花名册原文；未指定时使用内置花名册
func (rt *env) rosterText(ctx context.Context) (string, error) {
	if rt.cfg.Roster.Path == "" {
		return seed.Roster, nil
	}
	data, err := rt.fetcher.Fetch(ctx, rt.cfg.Roster.Path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func encode(w io.Writer, format string, v any) error {
	if format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(v)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
