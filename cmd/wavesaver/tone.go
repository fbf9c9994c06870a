// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package main

import (
	"errors"

	"github.com/pion/wavesaver/pkg/media"
	"github.com/pion/wavesaver/pkg/media/tone"
	"github.com/pion/wavesaver/pkg/media/wavwriter"
	"github.com/spf13/cobra"
)

func newToneCommand(a *app) *cobra.Command {
	var (
		output    string
		frequency float64
		amplitude int
	)

	cmd := &cobra.Command{
		Use:   "tone",
		Short: "Write a sine test tone",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format := a.format()
			if format.BitsPerSample != 16 {
				return errToneBitDepth
			}

			generator, err := tone.New(int(format.SampleRate), int(format.Channels),
				tone.WithFrequency(frequency), tone.WithAmplitude(amplitude))
			if err != nil {
				return err
			}

			writer, err := a.newWriter(output)
			if err != nil {
				return err
			}

			// The generator is endless; the writer stops it once it is full.
			if _, err = media.Drain(generator, writer); err != nil && !errors.Is(err, wavwriter.ErrRejectedWrite) {
				return errors.Join(err, writer.Close())
			}
			if err = writer.Close(); err != nil {
				return err
			}

			printStats(cmd.OutOrStdout(), output, writer.Stats())

			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "tone.wav", "output file")
	cmd.Flags().Float64Var(&frequency, "frequency", tone.DefaultFrequency, "tone frequency in Hz")
	cmd.Flags().IntVar(&amplitude, "amplitude", tone.DefaultAmplitude, "peak sample value")

	return cmd
}

var errToneBitDepth = errors.New("tone requires 16 bits per sample")
