package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/muurk/heatlink/internal/client"
	"github.com/muurk/heatlink/internal/config"
	"github.com/muurk/heatlink/internal/discovery"
	"github.com/muurk/heatlink/internal/logging"
	"github.com/muurk/heatlink/internal/publish"
	"github.com/muurk/heatlink/internal/session"
)

// Command flags
var (
	configPath  string
	logLevel    string
	dryRun      bool
	scanTimeout int
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (default: platform config dir)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); HEATLINK_LOG_LEVEL when unset")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(scanCmd)
}

// runCmd connects to the gateway and bridges readings to MQTT
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the gateway-to-MQTT bridge",
	Long: `Connect to the heating gateway, authenticate, pull initial values for
every configured device, subscribe to periodic push updates, and forward
all readings to the configured MQTT broker.

The bridge runs a single straight-through session: when the connection
ends (error, gateway close, or signal), the process exits. Supervision
and reconnection are left to the service manager.`,
	Example: `  # Run with the default config location
  heatlink run

  # Run with an explicit config and verbose protocol logging
  heatlink run --config ./heatlink.yaml --log-level debug

  # Exercise the protocol without publishing anything
  heatlink run --dry-run`,
	RunE: runBridge,
}

func init() {
	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Log readings instead of publishing to MQTT")
}

func runBridge(cmd *cobra.Command, args []string) error {
	if err := logging.Initialize(logLevel); err != nil {
		return err
	}
	defer logging.Sync()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	password := cfg.Gateway.Password
	if password == "" {
		password, err = promptPassword()
		if err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	forward := session.ForwardFunc(publish.LogForwarder())
	if !dryRun {
		pub, err := publish.NewPublisher(cfg.MQTT)
		if err != nil {
			return err
		}
		defer pub.Close()
		forward = pub.Forward
	}

	tlsConf, err := client.NewTLSConfig(
		cfg.Gateway.CertFile,
		cfg.Gateway.KeyFile,
		cfg.Gateway.CAFile,
		cfg.Gateway.ServerName,
	)
	if err != nil {
		return err
	}

	conn, err := client.Dial(ctx, client.Config{
		Host: cfg.Gateway.Host,
		Port: cfg.Gateway.Port,
		TLS:  tlsConf,
	})
	if err != nil {
		return err
	}
	defer conn.Close()

	bus := session.NewBus()
	sess := session.New(session.Options{
		Bus:       bus,
		Send:      conn.Send,
		Forward:   forward,
		Directory: cfg.DatapointTable(),
		Password:  password,
	})
	if err := sess.Start(ctx); err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}

	return conn.Run(ctx, bus.Dispatch)
}

// promptPassword reads the gateway password from the terminal without echo
func promptPassword() (string, error) {
	fmt.Fprint(os.Stderr, "Gateway password: ")
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(pw), nil
}

// Styles for scan output
var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	serialStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#43BF6D"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#808080"))
)

// scanCmd discovers gateways on the network
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for heating gateways on the network",
	Long: `Scan for heating gateways using mDNS/DNS-SD discovery.

This command listens for mDNS broadcasts from gateways and displays all
discovered gateways with their IP addresses, serial numbers, and
metadata.`,
	Example: `  # Scan for 10 seconds (default)
  heatlink scan

  # Quick 3-second scan
  heatlink scan --timeout 3`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().IntVar(&scanTimeout, "timeout", 10, "Scan timeout in seconds")
}

func runScan(cmd *cobra.Command, args []string) error {
	if err := logging.Initialize(logLevel); err != nil {
		return err
	}
	defer logging.Sync()

	fmt.Printf("Scanning for gateways (timeout: %ds)...\n\n", scanTimeout)

	gateways, err := discovery.ScanForGateways(time.Duration(scanTimeout) * time.Second)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if len(gateways) == 0 {
		fmt.Println("No gateways found.")
		fmt.Println("\nTroubleshooting:")
		fmt.Println("  - Ensure the gateway is powered on and connected to the network")
		fmt.Println("  - Verify your computer is on the same network segment")
		fmt.Println("  - Try increasing --timeout for slower networks")
		fmt.Println("  - Set gateway.host in the config manually if discovery fails")
		return nil
	}

	fmt.Println(headerStyle.Render(fmt.Sprintf("Found %d gateway(s):", len(gateways))))
	fmt.Println()

	for i, gw := range gateways {
		fmt.Printf("%d. %s\n", i+1, serialStyle.Render(gw.Serial))
		fmt.Printf("   Host: %s\n", gw.Hostname)
		fmt.Printf("   Addr: %s:%d\n", gw.IP, gw.Port)
		if fw := gw.GetMetadata("fw"); fw != "" {
			fmt.Printf("   %s\n", dimStyle.Render("Firmware: "+fw))
		}
		fmt.Println()
	}

	fmt.Println("Set 'gateway.host' in the config to the gateway's address, then 'heatlink run'")
	return nil
}
