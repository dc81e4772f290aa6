// derive_key.go prints the address for a node's PEM-encoded wallet key.
// Usage: go run scripts/derive_key.go <keyfile>
package main

import (
	"fmt"
	"os"

	"github.com/nodecoin/nodecoin/pkg/crypto"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: derive_key <keyfile>")
		os.Exit(1)
	}
	key, err := crypto.LoadKey(os.Args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("address=%s\n", crypto.PublicKeyHex(key))
}
