package daemon

import (
	"fmt"
	"net"
	"time"

	"github.com/ahnlich/ahnlich-go/internal/executor"
)

// Client connects to an ahnlichd daemon and runs pipeline requests.
type Client struct {
	address string // "unix:<path>" or "tcp:<addr>"
	timeout time.Duration
}

// NewClient creates a Client dialing the Unix socket at socketPath.
func NewClient(socketPath string, timeout time.Duration) *Client {
	return &Client{address: "unix:" + socketPath, timeout: timeout}
}

// NewTCPClient creates a Client dialing the TCP address addr.
func NewTCPClient(addr string, timeout time.Duration) *Client {
	return &Client{address: "tcp:" + addr, timeout: timeout}
}

func (c *Client) dial() (net.Conn, error) {
	network, address := "unix", c.address[len("unix:"):]
	if len(c.address) > 4 && c.address[:4] == "tcp:" {
		network, address = "tcp", c.address[len("tcp:"):]
	}
	conn, err := net.DialTimeout(network, address, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("daemon: connect: %w", err)
	}
	return conn, nil
}

// IsRunning reports whether the daemon is accepting connections.
func (c *Client) IsRunning() bool {
	conn, err := c.dial()
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

// RunPipeline sends queries to the daemon as one pipeline request and
// returns the decoded results, in the same order.
func (c *Client) RunPipeline(queries []executor.Query) ([]executor.Result, error) {
	conn, err := c.dial()
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(c.timeout)); err != nil {
		return nil, fmt.Errorf("daemon: set deadline: %w", err)
	}

	wireQueries := make([]WireQuery, len(queries))
	for i, q := range queries {
		wq, err := FromQuery(q)
		if err != nil {
			return nil, err
		}
		wireQueries[i] = wq
	}

	if err := writeFrame(conn, PipelineRequest{Queries: wireQueries}); err != nil {
		return nil, err
	}

	var resp PipelineResponse
	if err := readFrame(conn, &resp); err != nil {
		return nil, fmt.Errorf("daemon: read response: %w", err)
	}

	results := make([]executor.Result, len(resp.Results))
	for i, wr := range resp.Results {
		results[i] = wr.ToResult()
	}
	return results, nil
}

// Ping sends a single PingQuery and reports whether it succeeded.
func (c *Client) Ping() error {
	results, err := c.RunPipeline([]executor.Query{executor.PingQuery{}})
	if err != nil {
		return err
	}
	if len(results) != 1 || !results[0].Ok {
		return fmt.Errorf("daemon: ping failed")
	}
	return nil
}
