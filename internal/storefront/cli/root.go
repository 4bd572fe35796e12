package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultAPIURL = "http://localhost:5000/api"

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose  bool
	Format   string // "json" | "text"
	APIURL   string
	StateDir string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the storefront client.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}
	v := newClientConfig()

	cmd := &cobra.Command{
		Use:   "storefront",
		Short: "Strawbeary storefront client",
		Long: `Browse the Strawbeary menu, build a cart and place orders from the terminal.

The cart lives in the state directory and is mirrored to the API in the
background, so it can be restored on another machine with the same session.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			opts.APIURL = v.GetString("api-url")
			opts.StateDir = v.GetString("state-dir")
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			if opts.StateDir == "" {
				return NewExitError(ExitCommandError, "state directory is required")
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().String("api-url", defaultAPIURL, "storefront API base URL (env STRAWBEARY_API_URL)")
	cmd.PersistentFlags().String("state-dir", defaultStateDir(), "directory holding the local cart and session id (env STRAWBEARY_STATE_DIR)")
	_ = v.BindPFlag("api-url", cmd.PersistentFlags().Lookup("api-url"))
	_ = v.BindPFlag("state-dir", cmd.PersistentFlags().Lookup("state-dir"))

	cmd.AddCommand(NewMenuCommand(opts))
	cmd.AddCommand(NewCartCommand(opts))
	cmd.AddCommand(NewCheckoutCommand(opts))
	cmd.AddCommand(NewOrdersCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// newClientConfig resolves client settings from flags, then STRAWBEARY_* environment variables.
func newClientConfig() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("STRAWBEARY")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

func defaultStateDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "strawbeary")
	}
	return ".strawbeary"
}
