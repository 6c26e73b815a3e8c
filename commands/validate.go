package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ByLCY/storeshot/model"
	"github.com/ByLCY/storeshot/registry"
	"github.com/ByLCY/storeshot/validate"
)

func validateCmd(a *app) *cobra.Command {
	var target, device string
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "validate <image>...",
		Short: "Check screenshot dimensions against a target",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dm := registry.DeviceModel(device)
			if model.IsLegacyDeviceModel(dm) {
				dm, _ = model.CanonicalDeviceModel(dm)
				a.logger.Debug("外框 id 已下线，按现役外框校验", "from", device, "to", dm)
			}
			spec, err := registry.GetActiveDeviceSpec(registry.TargetID(target), dm)
			if err != nil {
				return err
			}
			tspec := registry.MustTargetSpec(registry.TargetID(target))

			failed := 0
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				res, err := validate.ValidateImage(data, tspec, spec)
				if err != nil {
					a.logger.Warn("无法读取图片", "path", path, "err", err)
					a.printf("%s: unreadable image, please upload another screenshot\n", path)
					failed++
					continue
				}
				if !res.IsCompatible {
					failed++
				}
				if asJSON {
					enc := json.NewEncoder(a.out)
					if err := enc.Encode(struct {
						Path string `json:"path"`
						validate.Result
					}{path, res}); err != nil {
						return err
					}
					continue
				}
				if res.IsCompatible {
					a.printf("%s: ok (%s)\n", path, res.Dimensions)
				} else {
					a.printf("%s: %s\n", path, res.Message)
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d 张截图未通过校验", failed)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&target, "target", string(registry.DefaultTarget), "screenshot target")
	cmd.Flags().StringVar(&device, "device", string(registry.DefaultPhoneModel), "phone frame model")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print results as JSON lines")
	return cmd
}
