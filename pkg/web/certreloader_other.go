//go:build !unix

package web

import "context"

// watch is a no-op where SIGHUP doesn't exist. Use Reload instead.
func (*CertReloader) watch(context.Context) {}
