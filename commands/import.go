package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ByLCY/storeshot/deck"
)

func importCmd(a *app) *cobra.Command {
	var output, dataPath string
	cmd := &cobra.Command{
		Use:   "import <deck-file>",
		Short: "Convert a deck manifest into a project and store its images",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := deck.LoadFile(args[0])
			if err != nil {
				return err
			}
			if dataPath != "" {
				raw, err := os.ReadFile(dataPath)
				if err != nil {
					return fmt.Errorf("读取数据文件失败: %w", err)
				}
				var data any
				if err := json.Unmarshal(raw, &data); err != nil {
					return fmt.Errorf("解析数据文件失败: %w", err)
				}
				if err := m.Bind(data); err != nil {
					return err
				}
			}

			store, closeStore, err := a.openAssets()
			if err != nil {
				return err
			}
			defer closeStore()
			mismatches, err := m.Import(cmd.Context(), filepath.Dir(args[0]), store)
			if err != nil {
				return err
			}
			for _, mm := range mismatches {
				a.logger.Warn("截图尺寸不符", "slide", mm.Slide, "path", mm.Path, "size", mm.Result.Dimensions.String())
				a.printf("slide %d (%s): %s\n", mm.Slide, mm.Path, mm.Result.Message)
			}

			if output == "" {
				output = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + ".json"
			}
			if err := writeProject(output, m.Project); err != nil {
				return err
			}
			a.logger.Info("导入完成", "slides", len(m.Project.Slides),
				"screenshots", len(m.Screenshots), "backgrounds", len(m.Backgrounds))
			a.printf("已生成项目：%s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "project JSON path (default: <deck>.json)")
	cmd.Flags().StringVar(&dataPath, "data", "", "JSON file whose values fill ${...} placeholders")
	return cmd
}
