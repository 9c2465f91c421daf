// ABOUTME: Subcommands for the calibration bridge
// ABOUTME: Serving a session, discovering bridges and driving one remotely
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/alon/egloorator/internal/discovery"
	"github.com/alon/egloorator/internal/server"
	"github.com/alon/egloorator/pkg/protocol"
)

// ServeCmd exposes one session over WebSocket
type ServeCmd struct {
	File      string `arg:"" help:"Recording to calibrate." type:"existingfile"`
	Port      int    `short:"p" help:"Listen port. Overrides LISTEN_PORT." default:"0"`
	Name      string `help:"Bridge name for mDNS (default: <hostname>-egloorator)."`
	MDNS      bool   `name:"mdns" help:"Advertise the bridge via mDNS."`
	NoTUI     bool   `name:"no-tui" help:"Disable the status TUI and log to stderr."`
	OutputDir string `help:"Directory for extractions requested by clients. Overrides OUTPUT_DIR." type:"path"`
}

// Run serves until interrupted
func (c *ServeCmd) Run(g *Globals) error {
	closeLog, err := g.setupLogging(!c.NoTUI)
	if err != nil {
		return err
	}
	defer closeLog()

	session, err := g.loadSession(c.File)
	if err != nil {
		return err
	}

	port := c.Port
	if port <= 0 {
		port = g.Config.ListenPort
	}

	name := c.Name
	if name == "" {
		hostname, err := os.Hostname()
		if err != nil {
			hostname = "unknown"
		}
		name = fmt.Sprintf("%s-egloorator", hostname)
	}

	srv := server.New(server.Config{
		Port:       port,
		Name:       name,
		Source:     c.File,
		OutputDir:  g.outputDir(c.OutputDir),
		EnableMDNS: c.MDNS,
		UseTUI:     !c.NoTUI,
	}, session)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		srv.Stop()
	}()

	if c.NoTUI {
		fmt.Fprintf(g.out(), "Serving %s on port %d (path %s)\n", c.File, port, protocol.Path)
	}

	err = srv.Start()
	srv.Stop()
	return err
}

// DiscoverCmd lists bridges found via mDNS
type DiscoverCmd struct {
	Timeout time.Duration `help:"How long to listen for answers." default:"3s"`
}

// Run browses and prints the bridges found
func (c *DiscoverCmd) Run(g *Globals) error {
	closeLog, err := g.setupLogging(false)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	servers, err := discovery.Browse(ctx, c.Timeout)
	if err != nil {
		return err
	}

	if len(servers) == 0 {
		fmt.Fprintln(g.out(), "No calibration bridges found")
		return nil
	}

	rows := make([][]string, 0, len(servers))
	for _, s := range servers {
		rows = append(rows, []string{s.Name, s.Addr(), s.Path, s.Source})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("NAME", "ADDRESS", "PATH", "SOURCE").
		Rows(rows...)
	fmt.Fprintln(g.out(), t.Render())

	return nil
}

// RemoteCmd sends one request to a running bridge
type RemoteCmd struct {
	Addr    string        `arg:"" help:"Bridge address as host:port."`
	Set     *float64      `help:"Set the threshold in dB."`
	Reset   bool          `help:"Reset the threshold to the midpoint."`
	Auto    bool          `help:"Request an automatic threshold."`
	Extract bool          `help:"Save the audio above the threshold on the bridge."`
	Name    string        `help:"File name for --extract, inside the bridge's output directory."`
	Timeout time.Duration `help:"How long to wait for the bridge to answer." default:"5s"`
}

// ErrRemoteTimeout is returned when the bridge does not answer in time
var ErrRemoteTimeout = errors.New("bridge did not answer in time")

// Run connects, performs the request and prints the answer
func (c *RemoteCmd) Run(g *Globals) error {
	closeLog, err := g.setupLogging(false)
	if err != nil {
		return err
	}
	defer closeLog()

	actions := 0
	for _, set := range []bool{c.Set != nil, c.Reset, c.Auto, c.Extract} {
		if set {
			actions++
		}
	}
	if actions > 1 {
		return fmt.Errorf("choose one of --set, --reset, --auto or --extract")
	}

	client := protocol.NewClient(protocol.Config{ServerAddr: c.Addr})
	if err := client.Connect(); err != nil {
		return err
	}
	defer client.Close()

	slog.Debug("Connected to bridge", "addr", c.Addr, "session_id", client.Hello.SessionID)

	// The bridge greets with the current state
	state, err := c.awaitState(client)
	if err != nil {
		return err
	}

	switch {
	case c.Set != nil:
		err = client.SetThreshold(*c.Set)
	case c.Reset:
		err = client.ResetThreshold()
	case c.Auto:
		err = client.AutoThreshold()
	case c.Extract:
		err = client.RequestExtract(c.Name)
	default:
		printState(g, client.Hello, state)
		return nil
	}
	if err != nil {
		return err
	}

	timer := time.NewTimer(c.Timeout)
	defer timer.Stop()

	select {
	case state := <-client.States:
		printState(g, client.Hello, state)
	case result := <-client.Results:
		fmt.Fprintf(g.out(), "Bridge wrote %s: %d segments, %d samples\n", result.Path, result.Segments, result.Samples)
	case serr := <-client.Errors:
		return fmt.Errorf("bridge rejected request: %s: %s", serr.Error, serr.Message)
	case <-timer.C:
		return ErrRemoteTimeout
	}

	return nil
}

func (c *RemoteCmd) awaitState(client *protocol.Client) (protocol.SessionState, error) {
	select {
	case state := <-client.States:
		return state, nil
	case <-time.After(c.Timeout):
		return protocol.SessionState{}, ErrRemoteTimeout
	}
}

func printState(g *Globals, hello protocol.SessionHello, state protocol.SessionState) {
	fmt.Fprintf(g.out(), "%s: threshold %.2f dB (range %.2f .. %.2f), %d of %d windows, %.3fs selected\n",
		hello.Source, state.Threshold, state.Min, state.Max,
		len(state.Segments), len(hello.Curve), state.SelectedSeconds)
}
