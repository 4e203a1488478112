package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ahnlich/ahnlich-go/internal/daemon"
	"github.com/ahnlich/ahnlich-go/internal/executor"
	"github.com/ahnlich/ahnlich-go/internal/output"
)

func newStatusCmd() *cobra.Command {
	var address string
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check whether an ahnlichd server is reachable and report its info",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd, address, timeout)
		},
	}

	cmd.Flags().StringVar(&address, "address", "127.0.0.1:1369", "Server TCP address")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "Connection timeout")
	return cmd
}

func runStatus(cmd *cobra.Command, address string, timeout time.Duration) error {
	out := output.New(cmd.OutOrStdout())
	client := daemon.NewTCPClient(address, timeout)

	if !client.IsRunning() {
		out.Status("", fmt.Sprintf("ahnlichd is not reachable at %s", address))
		return fmt.Errorf("ahnlichd not reachable at %s", address)
	}

	results, err := client.RunPipeline([]executor.Query{executor.InfoServerQuery{}})
	if err != nil {
		return fmt.Errorf("status: %w", err)
	}
	if len(results) != 1 || !results[0].Ok {
		return fmt.Errorf("status: server returned an error")
	}

	info := results[0].ServerInfo
	out.Success(fmt.Sprintf("ahnlichd is running at %s", info.Address))
	out.Status("", fmt.Sprintf("  version:   %s", info.Version))
	out.Status("", fmt.Sprintf("  type:      %s", info.Type))
	out.Status("", fmt.Sprintf("  limit:     %d", info.Limit))
	out.Status("", fmt.Sprintf("  remaining: %d", info.Remaining))
	return nil
}
