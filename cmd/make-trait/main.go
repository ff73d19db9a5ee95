// make-trait reads a trait declaration from a JSON file and prints the
// hex of its canonical encoding.
package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fragnova/protos/traits"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) < 1 {
		fmt.Fprintln(out, "Usage: make-trait <json_file>")
		return 0
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(errOut, "read %s: %v\n", args[0], err)
		return 1
	}

	var t traits.Trait
	if err := json.Unmarshal(data, &t); err != nil {
		fmt.Fprintf(errOut, "parse trait: %v\n", err)
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
