package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ahnlich/ahnlich-go/internal/daemon"
	"github.com/ahnlich/ahnlich-go/internal/executor"
	"github.com/ahnlich/ahnlich-go/internal/output"
)

func newStoresCmd() *cobra.Command {
	var address string
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "stores",
		Short: "List the stores on a running ahnlichd server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStores(cmd, address, timeout)
		},
	}

	cmd.Flags().StringVar(&address, "address", "127.0.0.1:1369", "Server TCP address")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "Connection timeout")
	return cmd
}

func runStores(cmd *cobra.Command, address string, timeout time.Duration) error {
	out := output.New(cmd.OutOrStdout())
	client := daemon.NewTCPClient(address, timeout)

	results, err := client.RunPipeline([]executor.Query{executor.ListStoresQuery{}})
	if err != nil {
		return fmt.Errorf("stores: %w", err)
	}
	if len(results) != 1 || !results[0].Ok {
		return fmt.Errorf("stores: server returned an error")
	}

	stores := results[0].Stores
	if len(stores) == 0 {
		out.Status("", "no stores")
		return nil
	}

	rows := make([][]string, len(stores))
	for i, s := range stores {
		rows[i] = []string{s.Name, fmt.Sprintf("%d", s.Len), fmt.Sprintf("%d bytes", s.SizeInBytes)}
	}
	out.Table([]string{"NAME", "ENTRIES", "SIZE"}, rows)
	return nil
}
