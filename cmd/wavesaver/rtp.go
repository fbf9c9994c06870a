// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"

	"github.com/pion/wavesaver/pkg/media/wavwriter"
	"github.com/pion/wavesaver/pkg/rtprecorder"
	"github.com/spf13/cobra"
)

// Static payload types from RFC 3551.
var payloadCodecs = map[string]struct {
	codec       wavwriter.PayloadCodec
	payloadType uint8
}{
	"pcmu": {wavwriter.PayloadCodecPCMU, 0},
	"pcma": {wavwriter.PayloadCodecPCMA, 8},
	"l16":  {wavwriter.PayloadCodecL16, 11},
}

// RTP payload types are 7 bits wide.
const maxPayloadType = 127

var (
	errUnknownCodec       = errors.New("unknown codec, expected pcmu, pcma or l16")
	errInvalidPayloadType = errors.New("payload type must be within 0 and 127")
)

func newRTPCommand(a *app) *cobra.Command {
	var (
		output      string
		payloadType int
	)

	cmd := &cobra.Command{
		Use:   "rtp",
		Short: "Record an RTP audio stream received over UDP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			codec, ok := payloadCodecs[strings.ToLower(a.v.GetString("rtp.codec"))]
			if !ok {
				return errUnknownCodec
			}
			switch {
			case payloadType > maxPayloadType || payloadType < -1:
				return errInvalidPayloadType
			case payloadType >= 0:
				codec.payloadType = uint8(payloadType)
			}

			conn, err := net.ListenPacket("udp", a.v.GetString("rtp.listen"))
			if err != nil {
				return err
			}
			defer func() {
				_ = conn.Close()
			}()

			writer, err := a.newWriter(output, wavwriter.WithPayloadCodec(codec.codec))
			if err != nil {
				return err
			}

			recorder, err := rtprecorder.New(conn, writer,
				rtprecorder.WithPayloadTypes(codec.payloadType),
				rtprecorder.WithLoggerFactory(a.loggerFactory))
			if err != nil {
				return errors.Join(err, writer.Close())
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			fmt.Fprintf(cmd.OutOrStdout(), "recording %s payload type %d on %s\n",
				codec.codec, codec.payloadType, conn.LocalAddr())

			// An interrupted recording is still finalized with silence.
			if err = recorder.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return errors.Join(err, writer.Close())
			}
			if err = writer.Close(); err != nil {
				return err
			}

			printStats(cmd.OutOrStdout(), output, writer.Stats())

			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "output.wav", "output file")
	cmd.Flags().String("listen", "127.0.0.1:5004", "UDP address to receive RTP on")
	cmd.Flags().String("codec", "pcmu", "payload codec: pcmu, pcma or l16")
	cmd.Flags().IntVar(&payloadType, "payload-type", -1, "payload type to record (default: the codec's static type)")
	_ = a.v.BindPFlag("rtp.listen", cmd.Flags().Lookup("listen"))
	_ = a.v.BindPFlag("rtp.codec", cmd.Flags().Lookup("codec"))

	return cmd
}
