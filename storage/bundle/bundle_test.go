package bundle_test

import (
	"archive/tar"
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/ipfs/go-cid"

	"github.com/fragnova/protos/identity"
	"github.com/fragnova/protos/storage"
	"github.com/fragnova/protos/storage/bundle"
	"github.com/fragnova/protos/storage/localfs"
)

func TestBundle_ExportIsDeterministic(t *testing.T) {
	src, err := localfs.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	id1, err := src.Put([]byte("hello"))
	if err != nil {
		t.Fatal(err)
	}
	id2, err := src.Put([]byte("world"))
	if err != nil {
		t.Fatal(err)
	}

	var outA bytes.Buffer
	if err := bundle.Export(&outA, src, []cid.Cid{id2, id1}, bundle.ExportOptions{IncludeIndex: true}); err != nil {
		t.Fatal(err)
	}
	var outB bytes.Buffer
	if err := bundle.Export(&outB, src, []cid.Cid{id1, id2}, bundle.ExportOptions{IncludeIndex: true}); err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(outA.Bytes(), outB.Bytes()) {
		t.Fatalf("expected deterministic bundle bytes")
	}
}

func TestBundle_ImportRoundTrip(t *testing.T) {
	src, err := localfs.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	payload := []byte("payload")
	id, err := src.Put(payload)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := bundle.Export(&buf, src, []cid.Cid{id}, bundle.ExportOptions{IncludeIndex: true}); err != nil {
		t.Fatal(err)
	}

	dst, err := localfs.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if err := bundle.Import(bytes.NewReader(buf.Bytes()), dst); err != nil {
		t.Fatal(err)
	}

	got, err := dst.Get(id)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("payload mismatch")
	}
}

func TestBundle_CarriesRefBindings(t *testing.T) {
	src := storage.NewMemory()

	payload := []byte("bound trait")
	id, err := src.Put(payload)
	if err != nil {
		t.Fatal(err)
	}
	ref := identity.RefOf(payload)

	var buf bytes.Buffer
	err = bundle.Export(&buf, src, []cid.Cid{id}, bundle.ExportOptions{
		IncludeIndex: true,
		Refs:         map[identity.TraitRef]cid.Cid{ref: id},
	})
	if err != nil {
		t.Fatal(err)
	}

	dst := storage.NewMemory()
	if err := bundle.Import(bytes.NewReader(buf.Bytes()), dst); err != nil {
		t.Fatal(err)
	}

	got, err := dst.Lookup(ref)
	if err != nil {
		t.Fatalf("Lookup after import: %v", err)
	}
	if got != id {
		t.Fatalf("Lookup after import: got %s want %s", got, id)
	}
}

func TestBundle_RefsRequireIndex(t *testing.T) {
	src := storage.NewMemory()
	id, err := src.Put([]byte("x"))
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	err = bundle.Export(&buf, src, []cid.Cid{id}, bundle.ExportOptions{
		Refs: map[identity.TraitRef]cid.Cid{identity.RefOf([]byte("x")): id},
	})
	if err == nil {
		t.Fatalf("expected error for refs without index")
	}
}

func TestBundle_ImportRejectsCIDMismatch(t *testing.T) {
	good := []byte("good")
	goodCID, err := identity.CIDOf(good)
	if err != nil {
		t.Fatal(err)
	}
	otherCID, err := identity.CIDOf([]byte("other"))
	if err != nil {
		t.Fatal(err)
	}
	if goodCID.String() == otherCID.String() {
		t.Fatal("expected different CIDs")
	}

	// Name says "otherCID" but bytes are "good" => computed CID mismatch.
	bundleBytes := makeDeterministicTar(t, "blocks/"+otherCID.String(), good)

	dst, err := localfs.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if err := bundle.Import(bytes.NewReader(bundleBytes), dst); !errors.Is(err, storage.ErrCIDMismatch) {
		t.Fatalf("expected ErrCIDMismatch, got %v", err)
	}
}

func makeDeterministicTar(t *testing.T, name string, content []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)

	h := &tar.Header{
		Name:     name,
		Mode:     0o644,
		Size:     int64(len(content)),
		ModTime:  time.Unix(0, 0).UTC(),
		Typeflag: tar.TypeReg,
	}
	if err := tw.WriteHeader(h); err != nil {
		t.Fatal(err)
	}
	if _, err := tw.Write(content); err != nil {
		t.Fatal(err)
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}
