package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ByLCY/storeshot/layout"
	"github.com/ByLCY/storeshot/locale"
	"github.com/ByLCY/storeshot/registry"
)

func layoutCmd(a *app) *cobra.Command {
	var slide, loc, output string
	var scale float64
	cmd := &cobra.Command{
		Use:   "layout <project.json>",
		Short: "Write the computed layout of a slide as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := readProject(args[0])
			if err != nil {
				return err
			}
			idx, err := slideIndex(p, slide)
			if err != nil {
				return err
			}
			s := p.Slides[idx]
			target, err := registry.GetTargetSpec(p.ScreenshotTarget)
			if err != nil {
				return err
			}
			device, err := registry.GetActiveDeviceSpec(target.ID, s.Device.Model)
			if err != nil {
				return err
			}
			opts := layout.BuildOptions{Scale: scale, Typesetter: a.renderer()}
			if s.HasScreenshot() {
				// 布局预览不读取截图，按已通过校验处理
				opts.Screenshot = layout.ScreenshotOK
			}
			if loc != "" {
				text := locale.Resolve(s, loc, p.DefaultLocale)
				opts.Text = &text
			}
			res, err := layout.Build(s, target, device, opts)
			if err != nil {
				return fmt.Errorf("布局计算失败: %w", err)
			}
			if output == "" {
				output = filepath.Join(a.cfg.OutDir, fmt.Sprintf("layout-%d.json", idx+1))
			}
			if err := layout.WriteDebugJSON(res, output); err != nil {
				return fmt.Errorf("输出调试 JSON 失败: %w", err)
			}
			a.printf("已输出布局：%s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVar(&slide, "slide", "1", "slide number (1-based)")
	cmd.Flags().StringVar(&loc, "locale", "", "render text for this locale")
	cmd.Flags().Float64Var(&scale, "scale", 1, "render scale")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output path (default: <out>/layout-N.json)")
	return cmd
}
