// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package wavhttp serves an HTTP endpoint that wraps a raw PCM request body
// into a WAV response of a declared duration.
//
// Because the payload length is fixed before the first byte is written, the
// response carries an exact Content-Length and is streamed without buffering:
// short bodies are padded with silence, long ones are cut off.
package wavhttp

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pion/logging"
	"github.com/pion/wavesaver/pkg/media/wav"
	"github.com/pion/wavesaver/pkg/media/wavwriter"
)

const (
	defaultChannels   = 1
	defaultSampleRate = 8000
	defaultBits       = 16
	defaultMaxSeconds = 600
)

var errTooLong = errors.New("duration exceeds the server limit")

// Option configures a Handler.
type Option func(*Handler)

// WithLoggerFactory sets the factory loggers are created from.
func WithLoggerFactory(factory logging.LoggerFactory) Option {
	return func(h *Handler) {
		h.loggerFactory = factory
	}
}

// WithMaxSeconds limits the duration a single request may declare.
func WithMaxSeconds(seconds int) Option {
	return func(h *Handler) {
		h.maxSeconds = seconds
	}
}

// WithDefaultFormat sets the format used for query parameters that are omitted.
func WithDefaultFormat(channels uint16, sampleRate uint32, bitsPerSample uint16) Option {
	return func(h *Handler) {
		h.channels = channels
		h.sampleRate = sampleRate
		h.bits = bitsPerSample
	}
}

// Handler converts PCM request bodies into WAV responses.
type Handler struct {
	channels      uint16
	sampleRate    uint32
	bits          uint16
	maxSeconds    int
	loggerFactory logging.LoggerFactory
	log           logging.LeveledLogger
}

// NewHandler builds a Handler.
func NewHandler(opts ...Option) *Handler {
	h := &Handler{
		channels:      defaultChannels,
		sampleRate:    defaultSampleRate,
		bits:          defaultBits,
		maxSeconds:    defaultMaxSeconds,
		loggerFactory: logging.NewDefaultLoggerFactory(),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.log = h.loggerFactory.NewLogger("wavhttp")

	return h
}

// Register mounts the handler on POST /wav.
func (h *Handler) Register(routes gin.IRoutes) {
	routes.POST("/wav", h.ServeWav)
}

// NewRouter returns a gin engine serving the handler.
func NewRouter(h *Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	h.Register(router)

	return router
}

type request struct {
	Channels   uint16 `form:"channels"`
	SampleRate uint32 `form:"rate"`
	Bits       uint16 `form:"bits"`
	Seconds    int    `form:"seconds" binding:"required"`
}

// ServeWav streams the request body into a WAV response.
func (h *Handler) ServeWav(c *gin.Context) {
	req := request{Channels: h.channels, SampleRate: h.sampleRate, Bits: h.bits}
	if err := c.ShouldBindQuery(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}
	if req.Seconds > h.maxSeconds {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": errTooLong.Error()})

		return
	}

	format := wav.NewPCMFormat(req.Channels, req.SampleRate, req.Bits)
	capacity, err := wav.Capacity(format, req.Seconds)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	c.Header("Content-Type", "audio/wav")
	c.Header("Content-Length", strconv.FormatUint(uint64(capacity)+wav.HeaderSize, 10))
	c.Status(http.StatusOK)

	writer, err := wavwriter.NewWith(c.Writer, format, req.Seconds,
		wavwriter.WithLoggerFactory(h.loggerFactory))
	if err != nil {
		h.log.Errorf("failed to start response: %v", err)
		_ = c.Error(err)

		return
	}

	if _, err = io.Copy(writer, c.Request.Body); err != nil && !errors.Is(err, wavwriter.ErrRejectedWrite) {
		// The header is already on the wire, so pad what we have.
		h.log.Warnf("request body failed after %d bytes: %v", writer.Written(), err)
	}
	if err = writer.Close(); err != nil {
		h.log.Errorf("failed to finish response: %v", err)
		_ = c.Error(err)

		return
	}

	stats := writer.Stats()
	h.log.Debugf("served %d bytes of audio, %d padded, %d truncated", stats.Capacity, stats.Padded, stats.Truncated)
}
