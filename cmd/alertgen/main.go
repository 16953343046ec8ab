// alertgen posts synthetic Suricata-style alerts at a running
// alertboard instance, for development and demo setups.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/opsglass/alertboard/internal/generator"
)

var (
	targetURL string
	apiKey    string
	count     int
	interval  time.Duration
	seed      int64
)

var rootCmd = &cobra.Command{
	Use:   "alertgen",
	Short: "Synthetic alert generator for alertboard",
	Long: `alertgen generates randomized Suricata-style alert events and posts
them to an alertboard instance, so the live stream and search views
have something to show without a sensor attached.`,
	Version: "0.1.0",
}

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send a batch of alerts at a fixed interval",
	Example: `  # One alert against a local instance
  alertgen send --key changeme

  # A slow trickle for watching the live stream
  alertgen send --key changeme --count 100 --interval 2s`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(count, interval)
	},
}

var floodCmd = &cobra.Command{
	Use:   "flood",
	Short: "Send alerts as fast as the server accepts them",
	Long: `Send alerts back to back with no delay. Useful for watching the
write rate limiter kick in: expect 429 responses once the per-client
quota for the current window is spent.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(count, 0)
	},
}

func run(n int, pause time.Duration) error {
	if apiKey == "" {
		return fmt.Errorf("--key is required")
	}

	gen := generator.New(seed)
	client := &http.Client{Timeout: 10 * time.Second}

	sent, failed, limited := 0, 0, 0
	for i := 0; i < n; i++ {
		status, err := post(client, gen.Alert())
		switch {
		case err != nil:
			failed++
			fmt.Fprintf(os.Stderr, "send failed: %v\n", err)
		case status == http.StatusTooManyRequests:
			limited++
		case status != http.StatusOK:
			failed++
			fmt.Fprintf(os.Stderr, "unexpected status %d\n", status)
		default:
			sent++
		}

		if pause > 0 && i < n-1 {
			time.Sleep(pause)
		}
	}

	fmt.Printf("done: %d sent, %d rate limited, %d failed\n", sent, limited, failed)
	if failed > 0 {
		return fmt.Errorf("%d alerts failed", failed)
	}
	return nil
}

func post(client *http.Client, doc map[string]interface{}) (int, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequest("POST", targetURL+"/alert", bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", apiKey)

	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&targetURL, "url", "http://localhost:3001", "alertboard base URL")
	rootCmd.PersistentFlags().StringVar(&apiKey, "key", "", "API key for authenticated endpoints")
	rootCmd.PersistentFlags().IntVar(&count, "count", 1, "number of alerts to send")
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", 0, "random seed (0 = time-based)")
	sendCmd.Flags().DurationVar(&interval, "interval", time.Second, "delay between alerts")

	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(floodCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
