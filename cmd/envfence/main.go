package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"envfence/internal/config"
	"envfence/internal/git"
	"envfence/internal/pipeline"
)

var (
	rootCmd = &cobra.Command{
		Use:   "envfence",
		Short: "Client/server boundary enforcement for JavaScript module graphs",
	}
	configPath string
	envFlag    string
	modeFlag   string
	ssrFlag    bool
	changed    bool

	logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "envfence"})
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "envfence.yaml", "Path to the configuration file")
	rootCmd.PersistentFlags().StringVar(&envFlag, "env", "", "Pin the execution environment (client|server) for the whole run")
	rootCmd.PersistentFlags().StringVar(&modeFlag, "mode", "", "Denial mode (abort|advise)")

	checkCmd.Flags().BoolVar(&ssrFlag, "ssr", false, "Replay events as a server build when no environment is pinned")
	checkCmd.Flags().BoolVar(&changed, "changed", false, "Only evaluate files changed per git diff HEAD")
	watchCmd.Flags().BoolVar(&ssrFlag, "ssr", false, "Replay events as a server build when no environment is pinned")

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(watchCmd)
}

// loadConfig reads the config file, falling back to defaults when it does
// not exist, and applies CLI flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if os.IsNotExist(err) {
		cfg = config.Default()
	} else if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if envFlag != "" {
		cfg.Env = envFlag
	}
	if modeFlag != "" {
		cfg.Mode = modeFlag
	}
	return cfg, nil
}

func newScan(args []string) (*pipeline.Scan, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	root := cfg.Project.Root
	if len(args) > 0 {
		root = args[0]
	}

	opts, err := cfg.Options()
	if err != nil {
		return nil, err
	}

	scan := pipeline.New(root, opts, logger)
	scan.SSR = ssrFlag
	return scan, nil
}

var checkCmd = &cobra.Command{
	Use:   "check [path]",
	Short: "Scan the project and report boundary violations",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		scan, err := newScan(args)
		if err != nil {
			logger.Fatal(err)
		}

		if changed {
			files, err := git.ChangedFiles("HEAD")
			if err != nil {
				logger.Fatal(err)
			}
			if len(files) == 0 {
				fmt.Println("✅ No changes detected.")
				return
			}
			scan.Only = make(map[string]bool, len(files))
			for _, f := range files {
				abs, err := filepath.Abs(f)
				if err != nil {
					continue
				}
				scan.Only[abs] = true
			}
		}

		fmt.Printf("🚀 Checking %s...\n", scan.Root)
		start := time.Now()
		result, err := scan.Run(context.Background())
		if de, ok := pipeline.IsDenial(err); ok {
			fmt.Println(de.Error())
			os.Exit(1)
		}
		if err != nil {
			logger.Fatal(err)
		}

		fmt.Printf("📊 Scanned %d files, %d graph targets in %v.\n",
			result.FilesScanned, result.EdgesRecorded, time.Since(start).Round(time.Millisecond))
		if len(result.Denials) > 0 {
			fmt.Printf("⚠️  %d boundary violation(s) reported.\n", len(result.Denials))
			os.Exit(1)
		}
		fmt.Println("✅ No boundary violations.")
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Watch the project and re-check changed modules incrementally",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		scan, err := newScan(args)
		if err != nil {
			logger.Fatal(err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := scan.Watch(ctx); err != nil && ctx.Err() == nil {
			logger.Fatal(err)
		}
	},
}
