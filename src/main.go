package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"dataprep/src/config"
	"dataprep/src/normalizer"
	"dataprep/src/watcher"
)

func main() {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(log, os.Stderr).ExecuteContext(ctx); err != nil {
		log.WithError(err).Error("Normalization failed")
		stop()
		os.Exit(1)
	}
}

// newRootCmd builds the dataprep command. Progress bars go to progress.
func newRootCmd(log *logrus.Logger, progress io.Writer) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "dataprep",
		Short:         "Square and resize images.",
		Long:          "Normalize every JPEG/PNG image in a folder into data/<name>/images/image_NNN.png, squared by center crop or edge padding and resized to a fixed resolution.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if err := applyFlags(cmd, cfg); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			level, _ := logrus.ParseLevel(cfg.LogLevel)
			log.SetLevel(level)

			return run(cmd.Context(), cfg, log, progress)
		},
	}

	flags := cmd.Flags()
	flags.String("folder_path", "", "Path to folder containing the image set.")
	flags.String("name", "", "Name of image set.")
	flags.String("method", string(config.MethodCrop), "crop | pad. crop will apply center crop to all images ; pad will pad all images to square.")
	flags.Int("resolution", config.DefaultResolution, "Final resolution of images.")
	flags.StringVar(&configPath, "config", "", "Optional YAML file with default settings.")
	flags.String("output_root", config.DefaultOutputRoot, "Root folder datasets are written under.")
	flags.Bool("manifest", false, "Write data/<name>/manifest.yaml mapping outputs to sources.")
	flags.Bool("watch", false, "Keep normalizing images added to folder_path until interrupted.")
	flags.String("log_level", config.DefaultLogLevel, "Log level (debug, info, warn, error).")
	_ = cmd.MarkFlagRequired("folder_path")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

// applyFlags copies command-line values into cfg. Optional flags only
// override the config file when given explicitly.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()

	var err error
	if cfg.FolderPath, err = flags.GetString("folder_path"); err != nil {
		return err
	}
	if cfg.Name, err = flags.GetString("name"); err != nil {
		return err
	}

	if flags.Changed("method") {
		method, _ := flags.GetString("method")
		cfg.Method = config.Method(method)
	}
	if flags.Changed("resolution") {
		if cfg.Resolution, err = flags.GetInt("resolution"); err != nil {
			return err
		}
	}
	if flags.Changed("output_root") {
		cfg.OutputRoot, _ = flags.GetString("output_root")
	}
	if flags.Changed("manifest") {
		cfg.Manifest, _ = flags.GetBool("manifest")
	}
	if flags.Changed("watch") {
		cfg.Watch, _ = flags.GetBool("watch")
	}
	if flags.Changed("log_level") {
		cfg.LogLevel, _ = flags.GetString("log_level")
	}
	return nil
}

func run(ctx context.Context, cfg *config.Config, log *logrus.Logger, progress io.Writer) error {
	n := normalizer.New(cfg, log, progress)

	result, err := n.Run(ctx)
	if err != nil {
		return err
	}

	if !cfg.Watch {
		return nil
	}

	var manifest watcher.ManifestWriter
	if cfg.Manifest {
		manifest = n
	}

	w, err := watcher.NewWatcher(cfg.FolderPath, n, manifest, result, log)
	if err != nil {
		return err
	}

	log.Println("Press Ctrl+C to stop")
	return w.Run(ctx)
}
