package commands

import (
	"github.com/spf13/cobra"
)

func slideCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "slide",
		Short: "Edit slides of a project",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "duplicate <project.json> <n>",
			Short: "Insert a copy of slide n after it",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				p, err := readProject(args[0])
				if err != nil {
					return err
				}
				idx, err := slideIndex(p, args[1])
				if err != nil {
					return err
				}
				at, err := p.DuplicateSlide(idx)
				if err != nil {
					return err
				}
				if err := writeProject(args[0], p); err != nil {
					return err
				}
				a.printf("已复制为第 %d 张\n", at+1)
				return nil
			},
		},
		&cobra.Command{
			Use:   "delete <project.json> <n>",
			Short: "Delete slide n and its unreferenced images",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				p, err := readProject(args[0])
				if err != nil {
					return err
				}
				idx, err := slideIndex(p, args[1])
				if err != nil {
					return err
				}
				orphans, err := p.DeleteSlide(idx)
				if err != nil {
					return err
				}
				if err := writeProject(args[0], p); err != nil {
					return err
				}
				store, closeStore, err := a.openAssets()
				if err != nil {
					return err
				}
				defer closeStore()
				if err := store.DeleteOrphans(cmd.Context(), orphans); err != nil {
					// 项目已保存，残留资源不影响使用
					a.logger.Warn("清理资源失败", "err", err)
				}
				a.printf("已删除第 %d 张\n", idx+1)
				return nil
			},
		},
		&cobra.Command{
			Use:   "apply-background <project.json> <n>",
			Short: "Copy the background of slide n to every slide",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				p, err := readProject(args[0])
				if err != nil {
					return err
				}
				idx, err := slideIndex(p, args[1])
				if err != nil {
					return err
				}
				if err := p.ApplyBackgroundToAll(idx); err != nil {
					return err
				}
				return writeProject(args[0], p)
			},
		},
	)
	return cmd
}
