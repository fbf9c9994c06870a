// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pion/logging"
	"github.com/pion/wavesaver/pkg/media/wav"
	"github.com/pion/wavesaver/pkg/media/wavwriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const envPrefix = "WAVESAVER"

// app holds what every subcommand shares.
type app struct {
	v             *viper.Viper
	loggerFactory *logging.DefaultLoggerFactory
}

func newConfig() *viper.Viper {
	v := viper.New()

	v.SetDefault("channels", 1)
	v.SetDefault("rate", 8000)
	v.SetDefault("bits", 16)
	v.SetDefault("seconds", 10)
	v.SetDefault("verbose", false)
	v.SetDefault("rtp.listen", "127.0.0.1:5004")
	v.SetDefault("rtp.codec", "pcmu")
	v.SetDefault("http.listen", "127.0.0.1:8080")
	v.SetDefault("http.max_seconds", 600)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("wavesaver")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/wavesaver")

	return v
}

func newRootCommand() *cobra.Command {
	a := &app{v: newConfig(), loggerFactory: logging.NewDefaultLoggerFactory()}

	var configFile string
	root := &cobra.Command{
		Use:           "wavesaver",
		Short:         "Write fixed length WAV files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if configFile != "" {
				a.v.SetConfigFile(configFile)
			}
			if err := a.v.ReadInConfig(); err != nil {
				var notFound viper.ConfigFileNotFoundError
				if configFile != "" || !errors.As(err, &notFound) {
					return fmt.Errorf("failed to read config: %w", err)
				}
			}

			a.loggerFactory.Writer = cmd.ErrOrStderr()
			if a.v.GetBool("verbose") {
				a.loggerFactory.DefaultLogLevel = logging.LogLevelDebug
			}

			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file (default ./wavesaver.yaml)")
	flags.Uint16("channels", 1, "channel count")
	flags.Uint32("rate", 8000, "sample rate in Hz")
	flags.Uint16("bits", 16, "bits per sample, 8 or 16")
	flags.Int("seconds", 10, "declared duration of the output")
	flags.BoolP("verbose", "v", false, "enable debug logging")
	for _, name := range []string{"channels", "rate", "bits", "seconds", "verbose"} {
		_ = a.v.BindPFlag(name, flags.Lookup(name))
	}

	root.AddCommand(
		newRawCommand(a),
		newToneCommand(a),
		newRTPCommand(a),
		newServeCommand(a),
		newInspectCommand(a),
	)

	return root
}

func (a *app) format() wav.Format {
	return wav.NewPCMFormat(a.v.GetUint16("channels"), a.v.GetUint32("rate"), a.v.GetUint16("bits"))
}

func (a *app) newWriter(fileName string, opts ...wavwriter.Option) (*wavwriter.WavWriter, error) {
	opts = append([]wavwriter.Option{wavwriter.WithLoggerFactory(a.loggerFactory)}, opts...)

	return wavwriter.New(fileName, a.format(), a.v.GetInt("seconds"), opts...)
}

func printStats(out io.Writer, fileName string, stats wavwriter.Stats) {
	fmt.Fprintf(out, "wrote %s: %d bytes of audio (%d supplied, %d padded, %d truncated)\n",
		fileName, stats.Capacity, stats.Supplied, stats.Padded, stats.Truncated)
}

func openInput(cmd *cobra.Command, args []string) (io.ReadCloser, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}

	return os.Open(args[0])
}
