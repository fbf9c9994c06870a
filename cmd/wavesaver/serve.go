// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pion/wavesaver/pkg/wavhttp"
	"github.com/spf13/cobra"
)

func newServeCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve POST /wav, wrapping PCM request bodies into WAV responses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !a.v.GetBool("verbose") {
				gin.SetMode(gin.ReleaseMode)
			}

			format := a.format()
			handler := wavhttp.NewHandler(
				wavhttp.WithLoggerFactory(a.loggerFactory),
				wavhttp.WithMaxSeconds(a.v.GetInt("http.max_seconds")),
				wavhttp.WithDefaultFormat(format.Channels, format.SampleRate, format.BitsPerSample),
			)

			server := &http.Server{
				Addr:              a.v.GetString("http.listen"),
				Handler:           wavhttp.NewRouter(handler),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				errCh <- server.ListenAndServe()
			}()
			fmt.Fprintf(cmd.OutOrStdout(), "listening on %s\n", server.Addr)

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				return err
			}
			if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
				return err
			}

			return nil
		},
	}
	cmd.Flags().String("listen", "127.0.0.1:8080", "HTTP listen address")
	cmd.Flags().Int("max-seconds", 600, "longest duration a request may declare")
	_ = a.v.BindPFlag("http.listen", cmd.Flags().Lookup("listen"))
	_ = a.v.BindPFlag("http.max_seconds", cmd.Flags().Lookup("max-seconds"))

	return cmd
}
