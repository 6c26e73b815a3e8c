// Package commands 实现 storeshot 命令行。
package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ByLCY/storeshot/assets"
	"github.com/ByLCY/storeshot/config"
	canvasrenderer "github.com/ByLCY/storeshot/renderer/canvas"
)

// app 是一次命令执行共享的状态。
type app struct {
	envFile string
	cfg     config.Config
	logger  *slog.Logger
	out     io.Writer
}

// Execute 运行根命令。
func Execute() error {
	return newRootCmd(os.Stdout, os.Stderr).Execute()
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{out: stdout}
	var flags config.Config

	root := &cobra.Command{
		Use:          "storeshot",
		Short:        "Compose App Store screenshots from slide decks",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.envFile)
			if err != nil {
				return err
			}
			// 命令行参数覆盖环境变量
			pf := cmd.Flags()
			override := map[string]*string{
				"asset-dir":  &cfg.AssetDir,
				"asset-db":   &cfg.AssetDB,
				"frame-dir":  &cfg.FrameDir,
				"font-dir":   &cfg.FontDir,
				"out":        &cfg.OutDir,
				"log-level":  &cfg.LogLevel,
				"log-format": &cfg.LogFormat,
			}
			for name, field := range override {
				if f := pf.Lookup(name); f != nil && f.Changed {
					*field = f.Value.String()
				}
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			logger, err := cfg.Logger(stderr)
			if err != nil {
				return err
			}
			a.cfg, a.logger = cfg, logger
			return nil
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&a.envFile, "env", ".env", "dotenv file with STORESHOT_* settings")
	pf.StringVar(&flags.AssetDir, "asset-dir", "", "asset directory (STORESHOT_ASSET_DIR)")
	pf.StringVar(&flags.AssetDB, "asset-db", "", "SQLite asset database, overrides --asset-dir (STORESHOT_ASSET_DB)")
	pf.StringVar(&flags.FrameDir, "frame-dir", "", "directory containing frames/*.png (STORESHOT_FRAME_DIR)")
	pf.StringVar(&flags.FontDir, "font-dir", "", "directory containing <font>-<Weight>.ttf (STORESHOT_FONT_DIR)")
	pf.StringVar(&flags.OutDir, "out", "", "output directory (STORESHOT_OUT_DIR)")
	pf.StringVar(&flags.LogLevel, "log-level", "", "debug, info, warn or error (STORESHOT_LOG_LEVEL)")
	pf.StringVar(&flags.LogFormat, "log-format", "", "text or json (STORESHOT_LOG_FORMAT)")

	root.AddCommand(
		newCmd(a),
		importCmd(a),
		validateCmd(a),
		layoutCmd(a),
		exportCmd(a),
		slideCmd(a),
		localeCmd(a),
		watchCmd(a),
	)
	return root
}

// openAssets 按配置打开资源存储，调用方负责 close。
func (a *app) openAssets() (*assets.Store, func() error, error) {
	if a.cfg.AssetDB != "" {
		db, err := assets.OpenSQLite(a.cfg.AssetDB)
		if err != nil {
			return nil, nil, err
		}
		a.logger.Debug("使用 SQLite 资源库", "path", a.cfg.AssetDB)
		return assets.NewStore(db, a.logger), db.Close, nil
	}
	dir, err := assets.NewDir(a.cfg.AssetDir)
	if err != nil {
		return nil, nil, err
	}
	a.logger.Debug("使用资源目录", "path", a.cfg.AssetDir)
	return assets.NewStore(dir, a.logger), func() error { return nil }, nil
}

func (a *app) renderer() *canvasrenderer.Renderer {
	return canvasrenderer.NewRendererWithOptions(canvasrenderer.Options{
		FrameDir: a.cfg.FrameDir,
		FontDir:  a.cfg.FontDir,
		Logger:   a.logger,
	})
}

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}
