package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/plugforge/deepseek/plugin/config"
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Set the plugin API key and URL",
	Long: `Interactively set the API key and endpoint URL in the plugin's user.toml.
Press Enter at a prompt to keep the current value.`,
	RunE: runConfigure,
}

func init() {
	rootCmd.AddCommand(configureCmd)
}

func runConfigure(cmd *cobra.Command, args []string) error {
	manager := config.NewManager(ConfigDir())
	current := manager.LoadUser()

	apiKey, err := readSecret("Enter API key (leave empty to keep current): ")
	if err != nil {
		return err
	}
	if apiKey == "" {
		apiKey = current.APIKey
	}

	fmt.Printf("Enter API URL [%s]: ", current.APIURL)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return fmt.Errorf("failed to read input: %w", err)
	}
	apiURL := strings.TrimSpace(line)
	if apiURL == "" {
		apiURL = current.APIURL
	}

	if err := manager.SaveUser(config.UserConfig{
		APIKey: apiKey,
		APIURL: apiURL,
	}); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Printf("Configuration saved to %s\n", manager.Path())
	return nil
}
