package commands

import (
	"github.com/spf13/cobra"

	"github.com/ByLCY/storeshot/locale"
	"github.com/ByLCY/storeshot/model"
)

func localeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "locale",
		Short: "Manage project locales",
	}

	edit := func(use, short string, fn func(p *model.Project, code string) error) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <project.json> <code>",
			Short: short,
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				p, err := readProject(args[0])
				if err != nil {
					return err
				}
				if err := fn(p, args[1]); err != nil {
					return err
				}
				return writeProject(args[0], p)
			},
		}
	}

	cmd.AddCommand(
		edit("add", "Add a locale", (*model.Project).AddLocale),
		edit("remove", "Remove a locale (translations are kept)", func(p *model.Project, code string) error {
			p.RemoveLocale(code)
			return nil
		}),
		edit("default", "Set the default locale", (*model.Project).SetDefaultLocale),
		&cobra.Command{
			Use:   "list",
			Short: "List common App Store locales",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				for _, l := range locale.CommonLocales {
					a.printf("%-8s %s\n", l.Code, l.Name)
				}
				return nil
			},
		},
	)
	return cmd
}
