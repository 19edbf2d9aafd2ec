package xbridge

import (
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOptions(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		opts := defaultXbridgeOptions()
		assert.Nil(t, opts.HTTPClient)
		assert.NotNil(t, opts.Logger)
		assert.Nil(t, opts.ClientInfo)
	})

	t.Run("WithHTTPClient", func(t *testing.T) {
		client := &http.Client{}
		opts := defaultXbridgeOptions()
		WithHTTPClient(client)(opts)
		assert.Same(t, client, opts.HTTPClient)

		// nil 客户端被静默忽略
		WithHTTPClient(nil)(opts)
		assert.Same(t, client, opts.HTTPClient)
	})

	t.Run("WithLogger", func(t *testing.T) {
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		opts := defaultXbridgeOptions()
		WithLogger(logger)(opts)
		assert.Same(t, logger, opts.Logger)

		WithLogger(nil)(opts)
		assert.Same(t, logger, opts.Logger)
	})

	t.Run("WithClientInfo", func(t *testing.T) {
		opts := defaultXbridgeOptions()
		WithClientInfo(ClientInfo{AppName: "Tracker"})(opts)
		assert.Equal(t, "Tracker", opts.ClientInfo.AppName)
	})
}
