// Package version reports build information for the transduce binary.
//
//	go build -ldflags "-X github.com/kbukum/transducekit/version.Version=1.0.0" ./cmd/transduce
package version
