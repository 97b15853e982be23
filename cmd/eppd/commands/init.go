package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/qenex-ai/epp-registry-platform/pkg/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a sample configuration file",
	Long: `Write a sample eppd configuration file with defaults filled in.

By default the file is created at $XDG_CONFIG_HOME/eppd/config.yaml. Use
--config to choose a different path.

The generated file still needs epp.tls_cert_file and epp.tls_key_file
pointed at a real certificate/key pair before "eppd start" will run: TLS is
not optional for an EPP listener.`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing config file")
}

func runInit(cmd *cobra.Command, args []string) error {
	path := GetConfigFile()
	if path == "" {
		path = config.GetDefaultConfigPath()
	}

	if _, err := os.Stat(path); err == nil && !initForce {
		return fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
	}

	cfg := &config.Config{}
	config.ApplyDefaults(cfg)

	if err := config.SaveConfig(cfg, path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	fmt.Printf("Configuration file created at: %s\n", path)
	fmt.Println()
	fmt.Println("Before starting the server:")
	fmt.Println("  1. Set epp.tls_cert_file and epp.tls_key_file to a certificate/key pair")
	fmt.Println("  2. Add at least one entry under store.seed_registrars (memory driver) or")
	fmt.Println("     provision registrars in the postgres registrars table")
	fmt.Printf("  3. Start the server: eppd start --config %s\n", path)
	return nil
}
