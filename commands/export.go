package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ByLCY/storeshot/deck"
	"github.com/ByLCY/storeshot/export"
)

func exportCmd(a *app) *cobra.Command {
	var slide, locales string
	var allLocales bool
	cmd := &cobra.Command{
		Use:   "export <project.json>",
		Short: "Render slides to store-sized PNGs",
		Long: "Without flags every slide is exported into " + export.ArchiveName + ".\n" +
			"--slide exports a single PNG; --locales or --all-locales export " + export.LocalizedArchiveName + ".",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := readProject(args[0])
			if err != nil {
				return err
			}
			target, err := export.ProjectTarget(p)
			if err != nil {
				return err
			}
			e, closeStore, err := a.exporter()
			if err != nil {
				return err
			}
			defer closeStore()
			ctx := cmd.Context()

			var name string
			var data []byte
			switch {
			case slide != "":
				idx, err := slideIndex(p, slide)
				if err != nil {
					return err
				}
				f, err := e.ExportSlide(ctx, p, target, idx)
				if err != nil {
					return err
				}
				name, data = f.Name, f.Data
			case allLocales || locales != "":
				codes := deck.LocaleCodes(locales)
				if allLocales {
					codes = p.Locales
				}
				if data, err = e.ExportAllLocales(ctx, p, target, codes); err != nil {
					return err
				}
				name = export.LocalizedArchiveName
			default:
				if data, err = e.ExportAll(ctx, p, target); err != nil {
					return err
				}
				name = export.ArchiveName
			}

			path, err := a.writeOutput(name, data)
			if err != nil {
				return err
			}
			a.printf("已导出：%s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&slide, "slide", "", "export only this slide (1-based)")
	cmd.Flags().StringVar(&locales, "locales", "", "comma separated locale codes")
	cmd.Flags().BoolVar(&allLocales, "all-locales", false, "export every project locale")
	cmd.MarkFlagsMutuallyExclusive("slide", "locales", "all-locales")
	cmd.MarkFlagsMutuallyExclusive("locales", "all-locales")
	return cmd
}

func (a *app) exporter() (*export.Exporter, func() error, error) {
	store, closeStore, err := a.openAssets()
	if err != nil {
		return nil, nil, err
	}
	r := a.renderer()
	return &export.Exporter{Renderer: r, Typesetter: r, Assets: store, Logger: a.logger}, closeStore, nil
}

// writeOutput 将导出结果写入输出目录，返回文件路径。
func (a *app) writeOutput(name string, data []byte) (string, error) {
	if err := os.MkdirAll(a.cfg.OutDir, 0o755); err != nil {
		return "", fmt.Errorf("创建输出目录失败: %w", err)
	}
	path := filepath.Join(a.cfg.OutDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("写入 %s 失败: %w", path, err)
	}
	return path, nil
}
