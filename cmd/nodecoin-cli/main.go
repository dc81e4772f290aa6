// nodecoin-cli is a thin command-line client for nodecoind's REST
// surface (spec.md §6). Adapted from the teacher's cmd/klingnet-cli
// global-flag-scan-then-dispatch shape, but hitting plain REST routes
// instead of JSON-RPC since this project carries no JSON-RPC layer
// (SPEC_FULL.md §11 Non-goals).
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	rpcURL := "http://127.0.0.1:8000"
	args := os.Args[1:]
	for len(args) > 0 {
		switch {
		case args[0] == "--rpc" && len(args) > 1:
			rpcURL = args[1]
			args = args[2:]
		case strings.HasPrefix(args[0], "--rpc="):
			rpcURL = args[0][len("--rpc="):]
			args = args[1:]
		default:
			goto dispatch
		}
	}

dispatch:
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}
	cmd, rest := args[0], args[1:]

	var err error
	switch cmd {
	case "blocks":
		err = getText(rpcURL, "/blocks")
	case "peers":
		err = getText(rpcURL, "/peers")
	case "addr":
		err = getText(rpcURL, "/addr")
	case "balance":
		err = getText(rpcURL, "/balance")
	case "pool":
		err = getText(rpcURL, "/pool")
	case "mine-block":
		err = postJSON(rpcURL, "/mineBlock", nil)
	case "mine-raw-block":
		err = cmdMineRawBlock(rpcURL, rest)
	case "mine-transaction":
		err = cmdTransfer(rpcURL, cmd, "/mineTransaction", rest)
	case "send-transaction":
		err = cmdTransfer(rpcURL, cmd, "/sendTransaction", rest)
	case "add-peer":
		err = cmdAddPeer(rpcURL, rest)
	case "help", "--help", "-h":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", cmd)
		usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprint(os.Stderr, `Usage: nodecoin-cli [--rpc <url>] <command> [args]

Commands:
  blocks                              GET /blocks
  peers                                GET /peers
  addr                                 GET /addr
  balance                              GET /balance
  pool                                 GET /pool
  mine-block                          POST /mineBlock
  mine-raw-block <transactions.json>  POST /mineRawBlock
  mine-transaction <address> <amount> POST /mineTransaction
  send-transaction <address> <amount> POST /sendTransaction
  add-peer <host:port>                POST /addPeer
`)
}

func getText(base, path string) error {
	resp, err := http.Get(base + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: %s", resp.Status, string(body))
	}
	fmt.Println(string(body))
	return nil
}

func postJSON(base, path string, body []byte) error {
	resp, err := http.Post(base+path, "application/json", strings.NewReader(string(body)))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: %s", resp.Status, string(out))
	}
	fmt.Println(string(out))
	return nil
}

func cmdMineRawBlock(base string, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: mine-raw-block <transactions.json>")
	}
	body, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}
	return postJSON(base, "/mineRawBlock", body)
}

func cmdTransfer(base, name, path string, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: %s <address> <amount>", name)
	}
	amount, err := strconv.ParseUint(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", args[1], err)
	}
	body, err := json.Marshal(map[string]any{"address": args[0], "amount": amount})
	if err != nil {
		return err
	}
	return postJSON(base, path, body)
}

func cmdAddPeer(base string, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: add-peer <host:port>")
	}
	return postJSON(base, "/addPeer", []byte(args[0]))
}
