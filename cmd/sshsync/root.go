package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/gofrs/flock"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sshsync/sshsync/internal/config"
	"github.com/sshsync/sshsync/internal/hosts"
	"github.com/sshsync/sshsync/internal/syncer"
	"github.com/sshsync/sshsync/internal/utils"
	"github.com/sshsync/sshsync/internal/version"
)

var delimiter = strings.Repeat("-", 50)

var rootCmd = &cobra.Command{
	Use:   "sshsync <target>...",
	Short: "Easy synchronization between hosts over rsync/ssh",
	Long: `sshsync synchronizes configured files and directories between this
machine and one or more target hosts, as declared in the host mapping
(default ` + "~/.sshsync/config.yaml" + `). Pass 'all' to sync with every
configured host.`,
	Version: version.Detailed(),
	Args:    cobra.MinimumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return bindFlags(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSync(cmd, args)
	},
}

func init() {
	rootCmd.Flags().SortFlags = false
	rootCmd.Flags().StringP("config", "f", config.DefaultConfigPath(), "Synchronization configuration file")
	rootCmd.Flags().StringP("logfile", "l", config.DefaultLogPath(), "Synchronization log file")
	rootCmd.Flags().StringArrayP("exclude", "e", nil, "Exclude certain files (repeatable)")
	rootCmd.Flags().BoolP("down", "d", false, "Only download files")
	rootCmd.Flags().BoolP("up", "u", false, "Only upload files")
	rootCmd.Flags().BoolP("dry-run", "n", false, "Simulate the run")
	rootCmd.Flags().BoolP("quiet", "q", false, "Suppress output to stdout")
	rootCmd.Flags().BoolP("no-logfile", "Q", false, "Suppress output to logfile")
	rootCmd.Flags().BoolP("verbose", "v", false, "Show debug output")
	rootCmd.Flags().Bool("delete", false, "Delete non-existing files on the other host - use with care!")
	rootCmd.Flags().IntP("jobs", "j", syncer.DefaultJobs, "Concurrent transfers per host and direction")
}

func bindFlags(cmd *cobra.Command) error {
	for _, name := range []string{"config", "logfile", "jobs"} {
		if err := viper.BindPFlag(name, cmd.Flags().Lookup(name)); err != nil {
			return err
		}
	}
	viper.SetEnvPrefix("SSHSYNC")
	viper.AutomaticEnv()
	return nil
}

func runSync(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	up, _ := flags.GetBool("up")
	down, _ := flags.GetBool("down")
	dryRun, _ := flags.GetBool("dry-run")
	deleteRemote, _ := flags.GetBool("delete")
	quiet, _ := flags.GetBool("quiet")
	noLogfile, _ := flags.GetBool("no-logfile")
	verbose, _ := flags.GetBool("verbose")
	excludes, _ := flags.GetStringArray("exclude")

	logPath, err := utils.ResolvePath(viper.GetString("logfile"))
	if err != nil {
		return err
	}
	closeLogs, err := setupLogging(logPath, verbose, quiet, noLogfile)
	if err != nil {
		return err
	}
	defer closeLogs()

	// From here on every failure is reported through the logger.
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	showHeader(quiet)
	slog.Info(delimiter)
	slog.Debug("started synchronization", "version", version.Short())

	if deleteRemote {
		slog.Warn("--delete option may lead to loss of data")
		time.Sleep(2 * time.Second)
	}

	// One run at a time; concurrent runs would race on the log file and
	// on the transfer targets.
	unlock, err := acquireRunLock(config.DefaultLockPath())
	if err != nil {
		slog.Error(err.Error())
		return err
	}
	defer unlock()

	configPath, err := utils.ResolvePath(viper.GetString("config"))
	if err != nil {
		slog.Error(err.Error())
		return err
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error(err.Error())
		return err
	}
	slog.Debug("read configuration file", "path", configPath)

	localName, err := localHostname()
	if err != nil {
		slog.Error(err.Error())
		return err
	}

	hostSet, err := hosts.Resolve(localName, args, cfg)
	if err != nil {
		slog.Error(err.Error())
		return err
	}

	engine, err := syncer.New(cfg, hostSet, syncer.Options{
		Up:       up,
		Down:     down,
		DryRun:   dryRun,
		Delete:   deleteRemote,
		Excludes: excludes,
		Jobs:     viper.GetInt("jobs"),
	}, slog.Default())
	if err != nil {
		slog.Error(err.Error())
		return err
	}

	ok := engine.Run(cmd.Context())
	slog.Info(delimiter)
	if !ok {
		return errors.New("synchronization finished with error(s)")
	}
	return nil
}

func localHostname() (string, error) {
	name, err := os.Hostname()
	if err != nil {
		return "", fmt.Errorf("determine local hostname: %w", err)
	}
	return name, nil
}

func acquireRunLock(path string) (func(), error) {
	if err := utils.EnsureParent(path); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	lock := flock.New(path)
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire run lock '%s': %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("another sshsync run is in progress (lock '%s')", path)
	}
	return func() { lock.Unlock() }, nil
}

func showHeader(quiet bool) {
	if quiet {
		return
	}
	color.New(color.FgHiCyan, color.Bold).Printf("%s %s\n", version.AppName, version.Short())
	color.New(color.FgHiCyan).Println(version.Copyright)
}
