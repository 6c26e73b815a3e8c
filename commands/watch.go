package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/ByLCY/storeshot/export"
)

func watchCmd(a *app) *cobra.Command {
	var debounce time.Duration
	cmd := &cobra.Command{
		Use:   "watch <project.json>",
		Short: "Re-export every slide whenever the project file changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			if _, err := readProject(path); err != nil {
				return err
			}
			e, closeStore, err := a.exporter()
			if err != nil {
				return err
			}
			defer closeStore()

			w, err := fsnotify.NewWatcher()
			if err != nil {
				return fmt.Errorf("创建文件监听失败: %w", err)
			}
			defer w.Close()
			// 监听所在目录，编辑器保存时常以新文件替换原文件
			if err := w.Add(filepath.Dir(path)); err != nil {
				return fmt.Errorf("监听 %s 失败: %w", filepath.Dir(path), err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			rebuild := func() error {
				p, err := readProject(path)
				if err != nil {
					return err
				}
				target, err := export.ProjectTarget(p)
				if err != nil {
					return err
				}
				data, err := e.ExportAll(ctx, p, target)
				if err != nil {
					return err
				}
				out, err := a.writeOutput(export.ArchiveName, data)
				if err != nil {
					return err
				}
				a.printf("已导出：%s\n", out)
				return nil
			}
			if err := rebuild(); err != nil {
				a.logger.Error("导出失败", "err", err)
			}
			a.logger.Info("开始监听", "project", path)
			return watchLoop(ctx, w.Events, w.Errors, path, debounce, rebuild, a.logger)
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", 300*time.Millisecond, "wait this long after the last change before exporting")
	return cmd
}

// watchLoop 在 path 被写入或重新创建后等待 debounce，再调用 rebuild。
// rebuild 出错只记录日志，循环继续；ctx 结束或通道关闭时返回。
func watchLoop(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error, path string,
	debounce time.Duration, rebuild func() error, logger *slog.Logger) error {
	path = filepath.Clean(path)
	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != path || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
				continue
			}
			logger.Debug("项目文件变化", "op", ev.Op.String())
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C
		case err, ok := <-errs:
			if !ok {
				return nil
			}
			logger.Warn("文件监听出错", "err", err)
		case <-fire:
			fire = nil
			if err := rebuild(); err != nil {
				logger.Error("重新导出失败", "err", err)
			}
		}
	}
}
