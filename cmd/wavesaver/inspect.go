// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/pion/wavesaver/pkg/media/wavreader"
	"github.com/spf13/cobra"
)

func newInspectCommand(*app) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file>",
		Short: "Print the header of a WAV file written by wavesaver",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer func() {
				_ = f.Close()
			}()

			reader, header, err := wavreader.NewWith(f)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			// Reading the payload checks the file is not truncated.
			_, err = io.Copy(io.Discard, reader)
			complete := err == nil
			if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
				return err
			}

			label := color.New(color.FgCyan).SprintFunc()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %d\n", label("channels:"), header.Format.Channels)
			fmt.Fprintf(out, "%s %d Hz\n", label("sample rate:"), header.Format.SampleRate)
			fmt.Fprintf(out, "%s %d\n", label("bits per sample:"), header.Format.BitsPerSample)
			fmt.Fprintf(out, "%s %d\n", label("block align:"), header.Format.BlockAlign)
			fmt.Fprintf(out, "%s %d bytes (%s)\n", label("data:"), header.DataSize, wavreader.Duration(header))
			if complete {
				fmt.Fprintf(out, "%s %s\n", label("payload:"), color.GreenString("complete"))
			} else {
				fmt.Fprintf(out, "%s %s\n", label("payload:"),
					color.RedString("truncated, %d bytes missing", reader.Remaining()))
			}

			return nil
		},
	}
}
