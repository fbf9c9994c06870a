// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/pion/wavesaver/pkg/media/wavwriter"
	"github.com/spf13/cobra"
)

func newRawCommand(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "raw [input]",
		Short: "Wrap little-endian PCM from a file or stdin into a WAV file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := openInput(cmd, args)
			if err != nil {
				return err
			}
			defer func() {
				_ = in.Close()
			}()

			writer, err := a.newWriter(output)
			if err != nil {
				return err
			}

			if _, err = io.Copy(writer, in); err != nil && !errors.Is(err, wavwriter.ErrRejectedWrite) {
				return errors.Join(fmt.Errorf("failed to copy input: %w", err), writer.Close())
			}
			if err = writer.Close(); err != nil {
				return err
			}

			printStats(cmd.OutOrStdout(), output, writer.Stats())

			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "output.wav", "output file")

	return cmd
}
