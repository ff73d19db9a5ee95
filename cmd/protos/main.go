// protos is the command-line surface over trait encoding, identity,
// storage, and attestation.
package main

import (
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/ipfs/go-cid"

	"github.com/fragnova/protos/attest"
	"github.com/fragnova/protos/identity"
	"github.com/fragnova/protos/registry"
	"github.com/fragnova/protos/storage"
	"github.com/fragnova/protos/storage/bundle"
	"github.com/fragnova/protos/storage/casconfig"
	"github.com/fragnova/protos/storage/casregistry"
	"github.com/fragnova/protos/traits"

	_ "github.com/fragnova/protos/storage/grpcstore"
	_ "github.com/fragnova/protos/storage/ipfs"
	_ "github.com/fragnova/protos/storage/localfs"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		printUsage(errOut)
		return 2
	}

	switch args[0] {
	case "encode":
		return cmdEncode(args[1:], out, errOut)
	case "id":
		return cmdID(args[1:], out, errOut)
	case "cid":
		return cmdCID(args[1:], out, errOut)
	case "put":
		return cmdPut(args[1:], out, errOut)
	case "get":
		return cmdGet(args[1:], out, errOut)
	case "resolve":
		return cmdResolve(args[1:], out, errOut)
	case "hydrate":
		return cmdHydrate(args[1:], out, errOut)
	case "bundle":
		return cmdBundle(args[1:], out, errOut)
	case "attest":
		return cmdAttest(args[1:], out, errOut)
	case "verify":
		return cmdVerify(args[1:], out, errOut)
	case "list-backends":
		for _, b := range casregistry.List(casregistry.UsageCLI) {
			if b.Description == "" {
				fmt.Fprintf(out, "%s\n", b.Name)
				continue
			}
			fmt.Fprintf(out, "%s\t%s\n", b.Name, b.Description)
		}
		return 0
	case "help", "-h", "--help":
		printUsage(out)
		return 0
	default:
		fmt.Fprintf(errOut, "unknown command: %s\n\n", args[0])
		printUsage(errOut)
		return 2
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "protos: trait encoding, identity, storage and attestation CLI")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  protos encode <trait.json>")
	fmt.Fprintln(w, "  protos id <trait.json>")
	fmt.Fprintln(w, "  protos cid <trait.json>")
	fmt.Fprintln(w, "  protos put [--backend <name>] [--strict] <trait.json>")
	fmt.Fprintln(w, "  protos get [--backend <name>] <CID>")
	fmt.Fprintln(w, "  protos resolve [--backend <name>] <CID|ref>")
	fmt.Fprintln(w, "  protos hydrate [--backend <name>] <ref>")
	fmt.Fprintln(w, "  protos bundle export [--backend <name>] --out <file> <CID> [<CID> ...]")
	fmt.Fprintln(w, "  protos bundle import [--backend <name>] <file>")
	fmt.Fprintln(w, "  protos attest --seed-hex <64hex> [--role <role>] [--hash <alg>] <trait.json>")
	fmt.Fprintln(w, "  protos verify --sig <envelope> <trait.json>")
	fmt.Fprintln(w, "  protos list-backends")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Notes:")
	fmt.Fprintln(w, "  - encode prints the canonical encoding as 0x<hex>")
	fmt.Fprintln(w, "  - id prints the 8-byte trait ref, cid the content identifier")
	fmt.Fprintln(w, "  - resolve accepts either identifier form and prints the trait as JSON")
	fmt.Fprintln(w, "  - --seed-hex must be 32 bytes (64 hex chars) ed25519 seed")
	fmt.Fprintln(w, "  - --config <file> selects composite storage instead of --backend")
}

func loadTrait(path string, errOut io.Writer) (traits.Trait, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(errOut, "read %s: %v\n", path, err)
		return traits.Trait{}, false
	}
	var t traits.Trait
	if err := json.Unmarshal(data, &t); err != nil {
		fmt.Fprintf(errOut, "parse trait: %v\n", err)
		return traits.Trait{}, false
	}
	return t, true
}

func cmdEncode(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("encode", flag.ContinueOnError)
	fs.SetOutput(errOut)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: protos encode <trait.json>")
		return 2
	}
	t, ok := loadTrait(fs.Arg(0), errOut)
	if !ok {
		return 1
	}
	encoded, err := t.EncodeCanonical()
	if err != nil {
		fmt.Fprintf(errOut, "encode trait: %v\n", err)
		return 1
	}
	fmt.Fprintf(out, "0x%s\n", hex.EncodeToString(encoded))
	return 0
}

func cmdID(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("id", flag.ContinueOnError)
	fs.SetOutput(errOut)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: protos id <trait.json>")
		return 2
	}
	t, ok := loadTrait(fs.Arg(0), errOut)
	if !ok {
		return 1
	}
	encoded, err := t.EncodeCanonical()
	if err != nil {
		fmt.Fprintf(errOut, "encode trait: %v\n", err)
		return 1
	}
	fmt.Fprintln(out, identity.RefOf(encoded))
	return 0
}

func cmdCID(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("cid", flag.ContinueOnError)
	fs.SetOutput(errOut)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: protos cid <trait.json>")
		return 2
	}
	t, ok := loadTrait(fs.Arg(0), errOut)
	if !ok {
		return 1
	}
	encoded, err := t.EncodeCanonical()
	if err != nil {
		fmt.Fprintf(errOut, "encode trait: %v\n", err)
		return 1
	}
	fmt.Fprintln(out, identity.CIDStringOf(encoded))
	return 0
}

// storageFlags wires the shared backend-selection flags into fs.
func storageFlags(fs *flag.FlagSet) (backend *string, config *string) {
	backend = fs.String("backend", "localfs", "storage backend name")
	config = fs.String("config", "", "composite storage config file (JSON)")
	casregistry.RegisterFlags(fs, casregistry.UsageCLI)
	return backend, config
}

func openCAS(backend, config string, errOut io.Writer) (storage.CAS, func() error, bool) {
	if config != "" {
		cfg, err := casconfig.LoadFile(config)
		if err != nil {
			fmt.Fprintf(errOut, "load config: %v\n", err)
			return nil, nil, false
		}
		cas, closeFn, err := cfg.Open(casregistry.UsageCLI, backend)
		if err != nil {
			fmt.Fprintf(errOut, "open storage: %v\n", err)
			return nil, nil, false
		}
		return cas, closeFn, true
	}
	cas, closeFn, err := casregistry.Open(backend, casregistry.UsageCLI)
	if err != nil {
		fmt.Fprintf(errOut, "open storage: %v\n", err)
		return nil, nil, false
	}
	return cas, closeFn, true
}

func openRegistry(backend, config string, mode registry.Mode, errOut io.Writer) (*registry.Registry, func() error, bool) {
	cas, closeFn, ok := openCAS(backend, config, errOut)
	if !ok {
		return nil, nil, false
	}
	store, ok := cas.(storage.Store)
	if !ok {
		if closeFn != nil {
			_ = closeFn()
		}
		fmt.Fprintf(errOut, "backend %q carries no ref index; pick one that does\n", backend)
		return nil, nil, false
	}
	r, err := registry.NewFromStore(store, registry.Options{Mode: mode})
	if err != nil {
		if closeFn != nil {
			_ = closeFn()
		}
		fmt.Fprintln(errOut, err)
		return nil, nil, false
	}
	return r, closeFn, true
}

func cmdPut(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("put", flag.ContinueOnError)
	fs.SetOutput(errOut)
	backend, config := storageFlags(fs)
	strict := fs.Bool("strict", false, "reject declarations that are not already canonical")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: protos put [--backend <name>] [--strict] <trait.json>")
		return 2
	}
	t, ok := loadTrait(fs.Arg(0), errOut)
	if !ok {
		return 1
	}

	mode := registry.Permissive
	if *strict {
		mode = registry.Strict
	}
	r, closeFn, ok := openRegistry(*backend, *config, mode, errOut)
	if !ok {
		return 1
	}
	if closeFn != nil {
		defer closeFn()
	}

	ref, id, err := r.Publish(t)
	if err != nil {
		fmt.Fprintf(errOut, "publish: %v\n", err)
		return 1
	}
	fmt.Fprintf(out, "%s\t%s\n", ref, id)
	return 0
}

func cmdGet(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("get", flag.ContinueOnError)
	fs.SetOutput(errOut)
	backend, config := storageFlags(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: protos get [--backend <name>] <CID>")
		return 2
	}
	id, err := cid.Decode(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(errOut, "parse CID: %v\n", err)
		return 2
	}

	cas, closeFn, ok := openCAS(*backend, *config, errOut)
	if !ok {
		return 1
	}
	if closeFn != nil {
		defer closeFn()
	}

	b, err := cas.Get(id)
	if err != nil {
		fmt.Fprintf(errOut, "get: %v\n", err)
		return 1
	}
	if _, err := out.Write(b); err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	return 0
}

func cmdResolve(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("resolve", flag.ContinueOnError)
	fs.SetOutput(errOut)
	backend, config := storageFlags(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: protos resolve [--backend <name>] <CID|ref>")
		return 2
	}

	r, closeFn, ok := openRegistry(*backend, *config, registry.Permissive, errOut)
	if !ok {
		return 1
	}
	if closeFn != nil {
		defer closeFn()
	}

	var t traits.Trait
	var err error
	if ref, refErr := identity.ParseRef(fs.Arg(0)); refErr == nil {
		t, err = r.ResolveRef(ref)
	} else {
		var id cid.Cid
		id, err = cid.Decode(fs.Arg(0))
		if err != nil {
			fmt.Fprintf(errOut, "parse identifier %q: %v\n", fs.Arg(0), err)
			return 2
		}
		t, err = r.Resolve(id)
	}
	if err != nil {
		fmt.Fprintf(errOut, "resolve: %v\n", err)
		return 1
	}
	return printJSON(out, errOut, t)
}

func cmdHydrate(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("hydrate", flag.ContinueOnError)
	fs.SetOutput(errOut)
	backend, config := storageFlags(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: protos hydrate [--backend <name>] <ref>")
		return 2
	}
	ref, err := identity.ParseRef(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(errOut, "parse ref: %v\n", err)
		return 2
	}

	r, closeFn, ok := openRegistry(*backend, *config, registry.Permissive, errOut)
	if !ok {
		return 1
	}
	if closeFn != nil {
		defer closeFn()
	}

	closure, err := r.Hydrate(ref)
	if err != nil {
		fmt.Fprintf(errOut, "hydrate: %v\n", err)
		return 1
	}
	byRef := make(map[string]traits.Trait, len(closure))
	for k, v := range closure {
		byRef[k.String()] = v
	}
	return printJSON(out, errOut, byRef)
}

func cmdBundle(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "usage: protos bundle <subcommand> ...")
		fmt.Fprintln(errOut, "subcommands: export, import")
		return 2
	}
	switch args[0] {
	case "export":
		return cmdBundleExport(args[1:], out, errOut)
	case "import":
		return cmdBundleImport(args[1:], out, errOut)
	default:
		fmt.Fprintf(errOut, "unknown bundle subcommand: %s\n", args[0])
		return 2
	}
}

func cmdBundleExport(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("bundle export", flag.ContinueOnError)
	fs.SetOutput(errOut)
	backend, config := storageFlags(fs)
	outPath := fs.String("out", "", "output bundle file")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *outPath == "" || fs.NArg() == 0 {
		fmt.Fprintln(errOut, "usage: protos bundle export [--backend <name>] --out <file> <CID> [<CID> ...]")
		return 2
	}
	ids := make([]cid.Cid, 0, fs.NArg())
	for _, arg := range fs.Args() {
		id, err := cid.Decode(arg)
		if err != nil {
			fmt.Fprintf(errOut, "parse CID %q: %v\n", arg, err)
			return 2
		}
		ids = append(ids, id)
	}

	cas, closeFn, ok := openCAS(*backend, *config, errOut)
	if !ok {
		return 1
	}
	if closeFn != nil {
		defer closeFn()
	}

	// Carry ref bindings for every exported block so import can replay them.
	refs := make(map[identity.TraitRef]cid.Cid, len(ids))
	for _, id := range ids {
		b, err := cas.Get(id)
		if err != nil {
			fmt.Fprintf(errOut, "get %s: %v\n", id, err)
			return 1
		}
		refs[identity.RefOf(b)] = id
	}

	f, err := os.Create(*outPath)
	if err != nil {
		fmt.Fprintf(errOut, "create %s: %v\n", *outPath, err)
		return 1
	}
	if err := bundle.Export(f, cas, ids, bundle.ExportOptions{Refs: refs, IncludeIndex: true}); err != nil {
		_ = f.Close()
		fmt.Fprintf(errOut, "export: %v\n", err)
		return 1
	}
	if err := f.Close(); err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	fmt.Fprintf(out, "exported %d blocks to %s\n", len(ids), *outPath)
	return 0
}

func cmdBundleImport(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("bundle import", flag.ContinueOnError)
	fs.SetOutput(errOut)
	backend, config := storageFlags(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: protos bundle import [--backend <name>] <file>")
		return 2
	}

	cas, closeFn, ok := openCAS(*backend, *config, errOut)
	if !ok {
		return 1
	}
	if closeFn != nil {
		defer closeFn()
	}

	f, err := os.Open(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(errOut, "open %s: %v\n", fs.Arg(0), err)
		return 1
	}
	defer f.Close()

	if err := bundle.Import(f, cas); err != nil {
		fmt.Fprintf(errOut, "import: %v\n", err)
		return 1
	}
	fmt.Fprintf(out, "imported %s\n", fs.Arg(0))
	return 0
}

func cmdAttest(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("attest", flag.ContinueOnError)
	fs.SetOutput(errOut)
	seedHex := fs.String("seed-hex", "", "ed25519 seed (64 hex chars)")
	role := fs.String("role", "", "derive a role subkey from the seed")
	hashAlg := fs.String("hash", attest.HashSHA256, "digest algorithm: sha256, sha512, sha3-256")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *seedHex == "" || fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: protos attest --seed-hex <64hex> [--role <role>] [--hash <alg>] <trait.json>")
		return 2
	}
	t, ok := loadTrait(fs.Arg(0), errOut)
	if !ok {
		return 1
	}

	seed, err := attest.ParseSeedHex(*seedHex)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	if *role != "" {
		seed, err = attest.DeriveRoleSeed(seed, *role)
		if err != nil {
			fmt.Fprintln(errOut, err)
			return 1
		}
	}
	priv, err := attest.KeyFromSeed(seed)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}

	sig, err := attest.SignTraitEd25519(t, *hashAlg, priv)
	if err != nil {
		fmt.Fprintf(errOut, "sign: %v\n", err)
		return 1
	}
	fmt.Fprintln(out, sig)
	return 0
}

func cmdVerify(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	fs.SetOutput(errOut)
	sigStr := fs.String("sig", "", "signature envelope (alg:hash:pub:sig)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *sigStr == "" || fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: protos verify --sig <envelope> <trait.json>")
		return 2
	}
	t, ok := loadTrait(fs.Arg(0), errOut)
	if !ok {
		return 1
	}

	sig, err := attest.ParseSignature(*sigStr)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	if err := sig.VerifyTrait(t); err != nil {
		fmt.Fprintf(errOut, "verify: %v\n", err)
		return 1
	}
	fmt.Fprintln(out, "OK")
	return 0
}

func printJSON(out io.Writer, errOut io.Writer, v any) int {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(errOut, "marshal: %v\n", err)
		return 1
	}
	fmt.Fprintln(out, string(b))
	return 0
}
