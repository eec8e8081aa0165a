package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/plugforge/deepseek/cli/keystore"
	"github.com/plugforge/deepseek/core"
	"github.com/plugforge/deepseek/plugin/config"
	"github.com/plugforge/deepseek/providers/deepseek"
)

// Exit codes
const (
	ExitSuccess    = 0
	ExitValidation = 1
	ExitProvider   = 2
	ExitNetwork    = 3
)

var (
	prompt      string
	system      string
	chatModel   string
	temperature float32
	maxTokens   int
	stream      bool
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Send a chat completion request",
	Long: `Send a chat completion request to DeepSeek.

Examples:
  deepseek chat --prompt "Hello"
  deepseek chat --prompt "Hello" --stream
  deepseek chat --model deepseek-reasoner --prompt "Hello" --json`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().StringVar(&prompt, "prompt", "", "User message (required)")
	chatCmd.Flags().StringVar(&system, "system", "", "System message")
	chatCmd.Flags().StringVar(&chatModel, "model", string(deepseek.DefaultModel), "Model ID")
	chatCmd.Flags().Float32Var(&temperature, "temperature", 0, "Temperature (0 = use default)")
	chatCmd.Flags().IntVar(&maxTokens, "max-tokens", 0, "Max tokens (0 = use default)")
	chatCmd.Flags().BoolVar(&stream, "stream", false, "Enable streaming output")

	_ = chatCmd.MarkFlagRequired("prompt")
}

// resolveAPIKey finds the API key, trying the DEEPSEEK_API_KEY environment
// variable, then the keystore, then the user config file.
func resolveAPIKey() (string, error) {
	if key := os.Getenv("DEEPSEEK_API_KEY"); key != "" {
		return key, nil
	}

	ks, err := keystore.NewKeystore()
	if err == nil {
		if key, err := ks.Get("deepseek"); err == nil {
			return key, nil
		}
	}

	user := config.NewManager(ConfigDir()).LoadUser()
	if user.APIKey != "" {
		return user.APIKey, nil
	}

	return "", fmt.Errorf("no API key found: set DEEPSEEK_API_KEY, run 'deepseek keys set', or run 'deepseek configure'")
}

func runChat(cmd *cobra.Command, args []string) error {
	apiKey, err := resolveAPIKey()
	if err != nil {
		return exitWithCode(ExitValidation, err)
	}

	// An api_url in the config is the full endpoint, used verbatim.
	var opts []deepseek.Option
	user := config.NewManager(ConfigDir()).LoadUser()
	if user.APIURL != "" && user.APIURL != config.DefaultAPIURL {
		opts = append(opts, deepseek.WithEndpoint(user.APIURL))
	}

	provider := deepseek.New(apiKey, opts...)
	client := core.NewClient(provider)

	builder := client.Chat(core.ModelID(chatModel))
	if system != "" {
		builder = builder.System(system)
	}
	builder = builder.User(prompt)

	if temperature > 0 {
		builder = builder.Temperature(temperature)
	}
	if maxTokens > 0 {
		builder = builder.MaxTokens(maxTokens)
	}

	ctx := context.Background()

	if stream {
		return runStreamingChat(ctx, builder)
	}
	return runNonStreamingChat(ctx, builder)
}

func runNonStreamingChat(ctx context.Context, builder *core.ChatBuilder) error {
	resp, err := builder.GetResponse(ctx)
	if err != nil {
		return handleChatError(err)
	}

	if IsJSONOutput() {
		return outputJSON(resp)
	}

	fmt.Printf("> %s\n", prompt)
	if resp.HasReasoning() && IsVerbose() {
		fmt.Fprintf(os.Stderr, "[reasoning]\n%s\n\n", resp.Reasoning)
	}
	fmt.Println(resp.Output)
	return nil
}

func runStreamingChat(ctx context.Context, builder *core.ChatBuilder) error {
	chatStream, err := builder.Stream(ctx)
	if err != nil {
		return handleChatError(err)
	}

	if IsJSONOutput() {
		// Accumulate for JSON output
		resp, err := core.DrainStream(ctx, chatStream)
		if err != nil {
			return handleChatError(err)
		}
		return outputJSON(resp)
	}

	fmt.Printf("> %s\n", prompt)

	var finalResp *core.ChatResponse
	var streamErr error

	// Read chunks as they arrive
	for chunk := range chatStream.Ch {
		fmt.Print(chunk.Delta)
	}

	select {
	case err := <-chatStream.Err:
		if err != nil {
			streamErr = err
		}
	default:
	}

	select {
	case resp := <-chatStream.Final:
		finalResp = resp
	default:
	}

	// Print final newline
	fmt.Println()

	if streamErr != nil {
		return handleChatError(streamErr)
	}

	if IsVerbose() && finalResp != nil {
		fmt.Fprintf(os.Stderr, "Usage: %d prompt + %d completion = %d total tokens\n",
			finalResp.Usage.PromptTokens,
			finalResp.Usage.CompletionTokens,
			finalResp.Usage.TotalTokens)
	}

	return nil
}

func handleChatError(err error) error {
	var provErr *core.ProviderError
	if errors.As(err, &provErr) {
		if IsJSONOutput() {
			outputErrorJSON(provErr)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %s\n", provErr.Message)
			if provErr.RequestID != "" {
				fmt.Fprintf(os.Stderr, "  Request ID: %s\n", provErr.RequestID)
			}
		}

		if errors.Is(err, core.ErrNetwork) {
			return exitWithCode(ExitNetwork, err)
		}
		return exitWithCode(ExitProvider, err)
	}

	if errors.Is(err, core.ErrNetwork) {
		if IsJSONOutput() {
			outputSimpleErrorJSON("network_error", err.Error())
		} else {
			fmt.Fprintf(os.Stderr, "Error: network error: %v\n", err)
		}
		return exitWithCode(ExitNetwork, err)
	}

	if errors.Is(err, core.ErrModelRequired) || errors.Is(err, core.ErrNoMessages) {
		if IsJSONOutput() {
			outputSimpleErrorJSON("validation_error", err.Error())
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return exitWithCode(ExitValidation, err)
	}

	if IsJSONOutput() {
		outputSimpleErrorJSON("error", err.Error())
	} else {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return exitWithCode(ExitProvider, err)
}

func outputJSON(resp *core.ChatResponse) error {
	output := map[string]interface{}{
		"id":     resp.ID,
		"model":  resp.Model,
		"output": resp.Output,
		"usage": map[string]int{
			"prompt_tokens":     resp.Usage.PromptTokens,
			"completion_tokens": resp.Usage.CompletionTokens,
			"total_tokens":      resp.Usage.TotalTokens,
		},
	}
	if resp.HasReasoning() {
		output["reasoning"] = resp.Reasoning
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}

func outputErrorJSON(provErr *core.ProviderError) {
	output := map[string]interface{}{
		"error": map[string]interface{}{
			"type":       provErr.Code,
			"message":    provErr.Message,
			"provider":   provErr.Provider,
			"request_id": provErr.RequestID,
		},
	}

	enc := json.NewEncoder(os.Stderr)
	enc.SetIndent("", "  ")
	enc.Encode(output)
}

func outputSimpleErrorJSON(errType, message string) {
	output := map[string]interface{}{
		"error": map[string]interface{}{
			"type":    errType,
			"message": message,
		},
	}

	enc := json.NewEncoder(os.Stderr)
	enc.SetIndent("", "  ")
	enc.Encode(output)
}

// exitError wraps an error with an exit code.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	return e.err.Error()
}

func (e *exitError) ExitCode() int {
	return e.code
}

func exitWithCode(code int, err error) error {
	return &exitError{code: code, err: err}
}
