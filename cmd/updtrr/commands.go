package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/updtrr/updtrr/internal/axeos"
	"github.com/updtrr/updtrr/internal/bundle"
	"github.com/updtrr/updtrr/internal/config"
	"github.com/updtrr/updtrr/internal/devicelist"
	"github.com/updtrr/updtrr/internal/discovery"
	"github.com/updtrr/updtrr/internal/fleet"
	"github.com/updtrr/updtrr/internal/history"
	"github.com/updtrr/updtrr/internal/logging"
	"github.com/updtrr/updtrr/internal/tui"
)

// Command flags
var (
	configPath  string
	devicesFile string
	deviceAddrs []string
	useMDNS     bool
	subnet      string

	timeoutSec     int
	deviceDelaySec int
	stageDelaySec  int
	scanTimeoutSec int

	forceUpdate bool
	useTUI      bool
	noHistory   bool

	scanOutput    string
	historyLimit  int
	historyDevice string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: platform config dir)")

	for _, cmd := range []*cobra.Command{updateCmd, checkCmd} {
		cmd.Flags().StringVar(&devicesFile, "devices", "", "Device list file (one address per line)")
		cmd.Flags().StringArrayVar(&deviceAddrs, "device", nil, "Device address (repeatable, skips the list file)")
		cmd.Flags().BoolVar(&useMDNS, "discover", false, "Discover devices via mDNS instead of a list")
		cmd.Flags().StringVar(&subnet, "subnet", "", "Discover devices by sweeping a CIDR block")
		cmd.Flags().IntVar(&timeoutSec, "timeout", 0, "Per-request timeout in seconds")
		cmd.Flags().IntVar(&scanTimeoutSec, "scan-timeout", 0, "Discovery timeout in seconds")
	}

	updateCmd.Flags().IntVar(&deviceDelaySec, "device-delay", 0, "Seconds to wait between devices")
	updateCmd.Flags().IntVar(&stageDelaySec, "stage-delay", 0, "Seconds to wait between www and firmware upload")
	updateCmd.Flags().BoolVar(&forceUpdate, "force", false, "Upload even when the device is already up to date")
	updateCmd.Flags().BoolVar(&useTUI, "tui", false, "Show a live update display (requires a terminal)")
	updateCmd.Flags().BoolVar(&noHistory, "no-history", false, "Do not record this run in the history database")

	scanCmd.Flags().StringVar(&subnet, "subnet", "", "Sweep a CIDR block instead of mDNS discovery")
	scanCmd.Flags().IntVar(&scanTimeoutSec, "scan-timeout", 0, "Discovery timeout in seconds")
	scanCmd.Flags().StringVarP(&scanOutput, "output", "o", "", "Write results as CSV to a file (usable as a device list)")

	historyCmd.Flags().IntVar(&historyLimit, "limit", 10, "Number of runs to show")
	historyCmd.Flags().StringVar(&historyDevice, "device", "", "Show history for one device address")

	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(logsCmd)
	rootCmd.AddCommand(historyCmd)
}

// loadSettings resolves config sources, then lays explicitly set flags on
// top.
func loadSettings(cmd *cobra.Command) (config.Settings, error) {
	settings, err := config.Load(configPath)
	if err != nil {
		return settings, err
	}

	flags := cmd.Flags()
	if flags.Changed("timeout") {
		settings.TimeoutSeconds = timeoutSec
	}
	if flags.Changed("device-delay") {
		settings.DeviceDelaySeconds = deviceDelaySec
	}
	if flags.Changed("stage-delay") {
		settings.StageDelaySeconds = stageDelaySec
	}
	if flags.Changed("scan-timeout") {
		settings.ScanTimeoutSeconds = scanTimeoutSec
	}
	if flags.Changed("subnet") {
		settings.Subnet = subnet
	}
	if flags.Changed("devices") {
		settings.DeviceList = devicesFile
	}

	return settings, nil
}

// signalContext returns a context cancelled by SIGINT/SIGTERM.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// resolveTargets builds the device list for a run from flags, discovery, or
// the configured list file.
func resolveTargets(ctx context.Context, settings config.Settings, client *axeos.Client) ([]fleet.Target, error) {
	switch {
	case len(deviceAddrs) > 0:
		targets := make([]fleet.Target, len(deviceAddrs))
		for i, addr := range deviceAddrs {
			targets[i] = fleet.Target{Address: addr}
		}
		return targets, nil

	case useMDNS:
		src := &discovery.MDNSSource{Client: client, Timeout: settings.ScanTimeout()}
		return targetsFromSource(ctx, src)

	case settings.Subnet != "":
		src := &discovery.SubnetSource{Client: client, CIDR: settings.Subnet}
		return targetsFromSource(ctx, src)

	case settings.DeviceList != "":
		return devicelist.ParseFile(settings.DeviceList)

	default:
		return nil, errors.New("no devices: use --devices, --device, --discover or --subnet")
	}
}

func targetsFromSource(ctx context.Context, src discovery.Source) ([]fleet.Target, error) {
	devices, err := src.Find(ctx)
	if err != nil {
		return nil, fmt.Errorf("discovery: %w", err)
	}

	targets := make([]fleet.Target, len(devices))
	for i, d := range devices {
		targets[i] = d.Target()
	}
	return targets, nil
}

var updateCmd = &cobra.Command{
	Use:   "update <firmware.bin> <www.bin>",
	Short: "Flash a firmware bundle to every device in the fleet",
	Long: `Update every device with the given firmware and web interface images.

Each device is handled in turn: its running version is checked against the
bundle, the web interface is uploaded, and after a settling delay the
firmware is uploaded. Devices already on the bundle version are skipped
unless --force is given.

The process exit code classifies the run: 0 when every device succeeded or
was skipped, 1 when some failed, 2 when all failed, 130 when interrupted.`,
	Example: `  # Update a fleet from a device list file
  updtrr update esp-miner.bin www.bin --devices fleet.txt

  # Update two specific devices with a live display
  updtrr update esp-miner.bin www.bin --device 192.168.1.37 --device 192.168.1.38 --tui

  # Discover and update everything on the subnet
  updtrr update esp-miner.bin www.bin --subnet 192.168.1.0/24`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFleet(cmd, args, false)
	},
}

var checkCmd = &cobra.Command{
	Use:   "check <firmware.bin> <www.bin>",
	Short: "Report which devices need the bundle, without flashing",
	Long: `Check every device's running version against the bundle and report
which would be updated. Nothing is uploaded.`,
	Example: `  updtrr check esp-miner.bin www.bin --devices fleet.txt`,
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFleet(cmd, args, true)
	},
}

func runFleet(cmd *cobra.Command, args []string, checkOnly bool) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	b, err := bundle.Load(args[0], args[1])
	if err != nil {
		return err
	}
	if b.Version == "" {
		fmt.Fprintln(os.Stderr, "Warning: no version found in firmware image; every device will be updated")
	} else {
		fmt.Printf("Bundle version: %s\n", b.Version)
	}

	client := axeos.NewClient(axeos.WithTimeout(settings.Timeout()))

	ctx, stop := signalContext(cmd)
	defer stop()

	targets, err := resolveTargets(ctx, settings, client)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		fmt.Println("No devices found; nothing to do.")
		return nil
	}

	plan := &fleet.Plan{
		Client:     client,
		Bundle:     b,
		Force:      forceUpdate,
		CheckOnly:  checkOnly,
		StageDelay: settings.StageDelay(),
	}
	orch := &fleet.Orchestrator{
		Plan:        plan,
		DeviceDelay: settings.DeviceDelay(),
	}

	logReporter := fleet.NewLogReporter(logging.GetLogger())
	startedAt := time.Now()

	var report *fleet.Report
	if useTUI {
		if !tui.IsTerminal() {
			return errors.New("--tui requires a terminal; drop the flag when piping output")
		}

		runCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		report, err = tui.Run(cancel, func(r fleet.Reporter) *fleet.Report {
			reporter := fleet.MultiReporter{r, logReporter}
			plan.Reporter = reporter
			orch.Reporter = reporter
			return orch.Run(runCtx, targets)
		})
		if err != nil {
			return err
		}
	} else {
		reporter := fleet.MultiReporter{fleet.NewTextReporter(os.Stdout), logReporter}
		plan.Reporter = reporter
		orch.Reporter = reporter
		report = orch.Run(ctx, targets)
	}

	if !checkOnly && !noHistory && settings.HistoryDB != "" {
		if err := recordHistory(settings.HistoryDB, startedAt, b.Version, report); err != nil {
			// History is bookkeeping; a failed write must not change the
			// run's exit code.
			fmt.Fprintf(os.Stderr, "Warning: could not record history: %v\n", err)
		}
	}

	exitCode = report.ExitCode()
	return nil
}

func recordHistory(path string, startedAt time.Time, bundleVersion string, report *fleet.Report) error {
	store, err := history.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	// A short timeout of its own: the run is already over.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err = store.RecordRun(ctx, startedAt, bundleVersion, report)
	return err
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Find AxeOS devices on the network",
	Long: `Discover devices via mDNS, or by sweeping a subnet with --subnet.
Every candidate is asked for its system info; only hosts that answer like
an AxeOS device are listed.`,
	Example: `  # mDNS discovery
  updtrr scan

  # Sweep a subnet and save the result as a device list
  updtrr scan --subnet 192.168.1.0/24 --output fleet.csv`,
	RunE: runScan,
}

func runScan(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	client := axeos.NewClient(axeos.WithTimeout(settings.Timeout()))

	ctx, stop := signalContext(cmd)
	defer stop()

	var src discovery.Source
	if settings.Subnet != "" {
		fmt.Printf("Sweeping %s...\n", settings.Subnet)
		src = &discovery.SubnetSource{Client: client, CIDR: settings.Subnet}
	} else {
		fmt.Printf("Browsing mDNS for %s...\n", settings.ScanTimeout())
		src = &discovery.MDNSSource{Client: client, Timeout: settings.ScanTimeout()}
	}

	devices, err := src.Find(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	if len(devices) == 0 {
		fmt.Println("No devices found.")
		fmt.Println("\nTroubleshooting:")
		fmt.Println("  - Check the devices are powered and on this network")
		fmt.Println("  - mDNS needs multicast; try --subnet on networks that filter it")
		fmt.Println("  - Renamed devices are not matched by mDNS name; use --subnet")
		return nil
	}

	fmt.Printf("Found %d device(s):\n\n", len(devices))
	for _, d := range devices {
		fmt.Printf("  %s\n", d)
	}

	if scanOutput != "" {
		f, err := os.Create(scanOutput)
		if err != nil {
			return err
		}
		defer f.Close()

		if err := devicelist.WriteCSV(f, devices); err != nil {
			return err
		}
		fmt.Printf("\nWrote %s; pass it to 'updtrr update --devices %s'\n", scanOutput, scanOutput)
	}

	return nil
}

var logsCmd = &cobra.Command{
	Use:   "logs <address>",
	Short: "Stream a device's live console output",
	Long: `Follow the device's console log over its websocket endpoint. This is
the same output as the serial console, useful for watching a device come
back up after a flash. Stop with ctrl-c.`,
	Example: `  updtrr logs 192.168.1.37`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext(cmd)
		defer stop()

		err := axeos.StreamLogs(ctx, args[0], func(line string) {
			fmt.Println(line)
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past update runs",
	Long:  `Show recent update runs from the history database, newest first.`,
	Example: `  # The last 10 runs
  updtrr history

  # Everything recorded for one device
  updtrr history --device 192.168.1.37 --limit 50`,
	RunE: runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	if settings.HistoryDB == "" {
		return errors.New("no history database configured")
	}

	store, err := history.Open(settings.HistoryDB)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, stop := signalContext(cmd)
	defer stop()

	var runs []history.Run
	if historyDevice != "" {
		runs, err = store.DeviceHistory(ctx, historyDevice, historyLimit)
	} else {
		runs, err = store.RecentRuns(ctx, historyLimit)
	}
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("No recorded runs.")
		return nil
	}

	for _, run := range runs {
		status := run.Status
		if run.Interrupted {
			status += " (interrupted)"
		}
		fmt.Printf("%s  bundle %s  %s\n",
			run.StartedAt.Format("2006-01-02 15:04:05"), run.BundleVersion, status)
		for _, d := range run.Devices {
			name := d.Address
			if d.Label != "" {
				name = fmt.Sprintf("%s (%s)", d.Address, d.Label)
			}
			fmt.Printf("    %-28s %s\n", name, d.Detail)
		}
		fmt.Println()
	}

	return nil
}
