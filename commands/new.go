package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ByLCY/storeshot/model"
	"github.com/ByLCY/storeshot/registry"
)

func newCmd(a *app) *cobra.Command {
	var name, target string
	cmd := &cobra.Command{
		Use:   "new <project.json>",
		Short: "Create a project with one default slide",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !registry.IsSupportedTarget(target) {
				return fmt.Errorf("%w: %q", registry.ErrUnknownTarget, target)
			}
			p := model.NewProject(name)
			p.ScreenshotTarget = registry.TargetID(target)
			if err := writeProject(args[0], p); err != nil {
				return err
			}
			a.printf("已创建项目：%s\n", args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", model.DefaultProjectName, "project name")
	cmd.Flags().StringVar(&target, "target", string(registry.DefaultTarget), "screenshot target (iphone-6_9, ipad-13)")
	return cmd
}
