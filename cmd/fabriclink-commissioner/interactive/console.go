// Package interactive provides the interactive command-line interface
// for the FabricLink commissioner.
package interactive

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/fabriclink-protocol/fabriclink-go/pkg/backend"
	"github.com/fabriclink-protocol/fabriclink-go/pkg/commission"
	"github.com/fabriclink-protocol/fabriclink-go/pkg/fabric"
	"github.com/fabriclink-protocol/fabriclink-go/pkg/noc"
)

// CommissionerConfig provides configuration information to the interactive
// console. This interface allows the interactive layer to access settings
// without depending on the main package's config structure.
type CommissionerConfig interface {
	// Platform returns the host platform name.
	Platform() string

	// BackendURL returns the backend API root.
	BackendURL() string
}

// Console handles interactive mode for fabriclink-commissioner.
type Console struct {
	coordinator *commission.Coordinator
	client      backend.Client
	store       noc.SecureStore
	config      CommissionerConfig
	rl          *readline.Instance
}

// New creates a new interactive console handler.
func New(coordinator *commission.Coordinator, client backend.Client, store noc.SecureStore, cfg CommissionerConfig) (*Console, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "fabriclink> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	return &Console{
		coordinator: coordinator,
		client:      client,
		store:       store,
		config:      cfg,
		rl:          rl,
	}, nil
}

// Stdout returns a writer that properly coordinates with the readline input.
// Use this for log output to avoid interfering with the command prompt.
func (c *Console) Stdout() io.Writer {
	return c.rl.Stdout()
}

// Stderr returns a writer that properly coordinates with the readline input.
func (c *Console) Stderr() io.Writer {
	return c.rl.Stderr()
}

// Run starts the interactive command loop.
func (c *Console) Run(ctx context.Context, cancel context.CancelFunc) {
	defer c.rl.Close()

	c.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := c.rl.Readline()
		if err != nil {
			// EOF or interrupt
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(c.rl.Stdout(), "Exiting...")
			cancel()
			return
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "help", "?":
			c.printHelp()

		case "commission", "comm":
			c.cmdCommission(ctx, args)

		case "cancel":
			c.cmdCancel()

		case "status":
			c.cmdStatus()

		case "fabrics", "f":
			c.cmdFabrics(ctx)

		case "nodes", "devices", "ls":
			c.cmdNodes(ctx)

		case "credentials", "creds":
			c.cmdCredentials()

		case "forget":
			c.cmdForget(args)

		case "quit", "exit", "q":
			fmt.Fprintln(c.rl.Stdout(), "Exiting...")
			cancel()
			return

		default:
			fmt.Fprintf(c.rl.Stdout(), "Unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}
}

func (c *Console) printHelp() {
	fmt.Fprintln(c.rl.Stdout(), `
FabricLink Commissioner Commands:
  Commissioning:
    commission <payload> <fabric-id>  - Commission a device onto a fabric
    commission <payload> group:<id>   - Commission onto a plain group
                                        (fabric-enabled automatically)
    cancel                            - Cancel the active session
    status                            - Show coordinator status

  Backend:
    fabrics                           - List fabrics and groups
    nodes                             - List owned devices

  Credentials:
    credentials                       - List stored credential bundles
    forget <fabric-id>                - Remove a stored credential bundle

  General:
    help                              - Show this help
    quit                              - Exit the commissioner`)
}

// cmdCommission handles the commission command.
func (c *Console) cmdCommission(ctx context.Context, args []string) {
	if len(args) < 2 {
		fmt.Fprintln(c.rl.Stdout(), "Usage: commission <payload> <fabric-id|group:<id>>")
		return
	}

	payload := args[0]
	selection := fabric.Selection{}
	if id, ok := strings.CutPrefix(args[1], "group:"); ok {
		selection.GroupID = id
	} else {
		selection.FabricID = args[1]
	}

	fmt.Fprintln(c.rl.Stdout(), "Starting commissioning...")
	if err := c.coordinator.Start(ctx, payload, selection); err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Commissioning failed to start: %v\n", err)
		return
	}
	fmt.Fprintf(c.rl.Stdout(), "Session started: %s\n", c.coordinator.SessionID())
}

// cmdCancel handles the cancel command.
func (c *Console) cmdCancel() {
	if !c.coordinator.Status().Active() {
		fmt.Fprintln(c.rl.Stdout(), "No active session")
		return
	}
	c.coordinator.Cancel()
	fmt.Fprintln(c.rl.Stdout(), "Session canceled")
}

// cmdStatus handles the status command.
func (c *Console) cmdStatus() {
	out := c.rl.Stdout()
	fmt.Fprintln(out, "\nCommissioner Status")
	fmt.Fprintln(out, "-------------------------------------------")
	fmt.Fprintf(out, "  Platform:           %s\n", c.config.Platform())
	fmt.Fprintf(out, "  Backend:            %s\n", c.config.BackendURL())
	fmt.Fprintf(out, "  Session State:      %s\n", c.coordinator.Status())
	if id := c.coordinator.SessionID(); id != "" {
		fmt.Fprintf(out, "  Session ID:         %s\n", id)
	}
	fmt.Fprintf(out, "  Stored Credentials: %d\n", c.store.Count())
	fmt.Fprintln(out)
}

// cmdFabrics handles the fabrics command.
func (c *Console) cmdFabrics(ctx context.Context) {
	listCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	fabrics, err := c.client.ListFabrics(listCtx)
	cancel()
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Failed to list fabrics: %v\n", err)
		return
	}
	if len(fabrics) == 0 {
		fmt.Fprintln(c.rl.Stdout(), "No fabrics found")
		return
	}

	fmt.Fprintf(c.rl.Stdout(), "\nFabrics (%d):\n", len(fabrics))
	fmt.Fprintln(c.rl.Stdout(), "-------------------------------------------")
	for _, f := range fabrics {
		name := f.Name
		if name == "" {
			name = "(unnamed)"
		}
		if f.FabricID != "" {
			fmt.Fprintf(c.rl.Stdout(), "  %s  fabric:%s  group:%s\n", name, f.FabricID, f.GroupID)
		} else {
			fmt.Fprintf(c.rl.Stdout(), "  %s  group:%s (not fabric-enabled)\n", name, f.GroupID)
		}
	}
}

// cmdNodes handles the nodes command.
func (c *Console) cmdNodes(ctx context.Context) {
	listCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	page, err := c.client.ListNodes(listCtx)
	cancel()
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Failed to list nodes: %v\n", err)
		return
	}
	if len(page.Nodes) == 0 {
		fmt.Fprintln(c.rl.Stdout(), "No devices found")
		return
	}

	fmt.Fprintf(c.rl.Stdout(), "\nOwned Devices (%d):\n", len(page.Nodes))
	fmt.Fprintln(c.rl.Stdout(), "-------------------------------------------")
	for _, node := range page.Nodes {
		status := "offline"
		if node.Connected {
			status = "online"
		}
		fmt.Fprintf(c.rl.Stdout(), "  %s  %s  fabric:%s  %s\n", node.ID, node.Name, node.FabricID, status)
	}
	if page.NextMarker != "" {
		fmt.Fprintln(c.rl.Stdout(), "  (more devices on the next page)")
	}
}

// cmdCredentials handles the credentials command.
func (c *Console) cmdCredentials() {
	fabrics := c.store.ListFabrics()
	if len(fabrics) == 0 {
		fmt.Fprintln(c.rl.Stdout(), "No stored credential bundles")
		return
	}

	fmt.Fprintf(c.rl.Stdout(), "\nStored Credential Bundles (%d):\n", len(fabrics))
	fmt.Fprintln(c.rl.Stdout(), "-------------------------------------------")
	for _, fabricID := range fabrics {
		bundle, err := c.store.GetBundle(fabricID)
		if err != nil {
			fmt.Fprintf(c.rl.Stdout(), "  %s  (unreadable: %v)\n", fabricID, err)
			continue
		}
		fmt.Fprintf(c.rl.Stdout(), "  fabric:%s  group:%s  matter-user:%s\n",
			bundle.FabricID, bundle.GroupID, bundle.MatterUserID)
	}
}

// cmdForget handles the forget command.
func (c *Console) cmdForget(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(c.rl.Stdout(), "Usage: forget <fabric-id>")
		fmt.Fprintln(c.rl.Stdout(), "  Use 'credentials' to list stored bundles")
		return
	}

	if err := c.store.RemoveBundle(args[0]); err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Failed to remove bundle: %v\n", err)
		return
	}
	fmt.Fprintf(c.rl.Stdout(), "Removed credential bundle for fabric %s\n", args[0])
}
