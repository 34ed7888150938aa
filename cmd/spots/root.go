package main

import (
	"fmt"
	"log"
	"os"

	"github.com/ironsheep/white-spot-mcp/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// app carries state shared by the subcommands of one invocation.
type app struct {
	v          *viper.Viper
	configPath string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.New()}

	root := &cobra.Command{
		Use:   "spots",
		Short: "White spot detection in CIELAB space",
		Long: `spots classifies every pixel of an image as white spot or not, working in
CIELAB space, and reports the percentage of the image covered by spots.

Without a subcommand it runs the MCP server on stdin/stdout. Configure it in
your MCP client (e.g., Claude Desktop).

Environment variables:
  SPOTS_LOG_LEVEL=debug    Enable debug logging
  SPOTS_<KEY>              Override any config key, e.g. SPOTS_BOX_LIGHTNESS_MIN`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (YAML, JSON or TOML)")
	flags.String("log-level", "info", "log level (info or debug)")
	flags.String("strategy", "", "default strategy (box or delta)")
	flags.String("marker-color", "", "hex color painted over spots")
	flags.String("output-dir", "", "directory for exported images")

	a.bind(flags.Lookup("log-level"), config.KeyLogLevel)
	a.bind(flags.Lookup("strategy"), config.KeyStrategy)
	a.bind(flags.Lookup("marker-color"), config.KeyMarkerColor)
	a.bind(flags.Lookup("output-dir"), config.KeyExportDir)

	root.AddCommand(newServeCmd(a), newDetectCmd(a), newVersionCmd())
	return root
}

// init configures logging and resolves the configuration. It runs before
// every subcommand.
func (a *app) init() error {
	// stdout is for the MCP protocol and for detect output
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	cfg, err := config.Load(a.v, a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

func (a *app) bind(flag *pflag.Flag, key string) {
	if err := a.v.BindPFlag(key, flag); err != nil {
		// Only fails for a nil flag, which is a programming error.
		panic(fmt.Sprintf("bind %s: %v", key, err))
	}
}
