// Package version reports build information for the seqq binary.
//
//	go build -ldflags "-X github.com/kbukum/seqkit/version.Version=1.2.0" ./cmd/seqq
package version
