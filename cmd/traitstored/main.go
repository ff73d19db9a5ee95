// traitstored serves a trait store backend over gRPC.
package main

import (
	"flag"
	"fmt"
	"net"
	"os"

	"google.golang.org/grpc"

	"github.com/fragnova/protos/storage"
	"github.com/fragnova/protos/storage/casconfig"
	"github.com/fragnova/protos/storage/casregistry"
	"github.com/fragnova/protos/storage/grpcstore"

	_ "github.com/fragnova/protos/storage/ipfs"
	_ "github.com/fragnova/protos/storage/localfs"
)

func main() {
	fs := flag.NewFlagSet("traitstored", flag.ExitOnError)
	listen := fs.String("listen", "127.0.0.1:7777", "listen address")
	backend := fs.String("backend", "localfs", "storage backend name")
	config := fs.String("config", "", "composite storage config file (JSON)")
	listBackends := fs.Bool("list-backends", false, "List supported backends and exit")

	casregistry.RegisterFlags(fs, casregistry.UsageDaemon)

	_ = fs.Parse(os.Args[1:])
	if *listBackends {
		for _, b := range casregistry.List(casregistry.UsageDaemon) {
			if b.Description == "" {
				_, _ = fmt.Fprintf(os.Stdout, "%s\n", b.Name)
				continue
			}
			_, _ = fmt.Fprintf(os.Stdout, "%s\t%s\n", b.Name, b.Description)
		}
		return
	}

	var cas storage.CAS
	var closeFn func() error
	var err error
	if *config != "" {
		var cfg casconfig.Config
		cfg, err = casconfig.LoadFile(*config)
		if err == nil {
			cas, closeFn, err = cfg.Open(casregistry.UsageDaemon, *backend)
		}
	} else {
		cas, closeFn, err = casregistry.Open(*backend, casregistry.UsageDaemon)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if closeFn != nil {
		defer closeFn()
	}

	store, ok := cas.(storage.Store)
	if !ok {
		fmt.Fprintf(os.Stderr, "backend %q carries no ref index and cannot serve the trait store API\n", *backend)
		os.Exit(2)
	}

	lis, err := net.Listen("tcp", *listen)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer lis.Close()

	s := grpc.NewServer()
	grpcstore.RegisterTraitStoreServer(s, &grpcstore.Server{Store: store})

	fmt.Fprintf(os.Stderr, "traitstored listening on %s (backend=%s)\n", lis.Addr().String(), *backend)
	if err := s.Serve(lis); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
