//go:build unix

package web

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func (cr *CertReloader) watch(ctx context.Context) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGHUP)
	go func() {
		defer signal.Stop(sigs)
		for {
			select {
			case <-ctx.Done():
				return
			case <-sigs:
				cr.logger.Info("reloading TLS certificate", "cert", cr.certPath, "key", cr.keyPath)
				if err := cr.Reload(); err != nil {
					cr.logger.Error("failed to reload TLS certificate, keeping old certificate", "err", err)
				}
			}
		}
	}()
}
