// Command ignitekv is the store's command-line front end: get/set/rm against
// the store directory rooted at the current working directory. Grounded on
// the pack's os.Args-based, no-framework CLI dispatch style, with the exact
// stdout/exit-code contract of the original kvs binary this store's protocol
// was distilled from.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/ignitekv/ignite/pkg/ignitekv"
	"github.com/ignitekv/ignite/pkg/kverrors"
	"github.com/ignitekv/ignite/pkg/options"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	dir, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ignitekv: %v\n", err)
		os.Exit(1)
	}

	command, rest := os.Args[1], os.Args[2:]
	switch command {
	case "get":
		os.Exit(runGet(dir, rest))
	case "set":
		os.Exit(runSet(dir, rest))
	case "rm":
		os.Exit(runRemove(dir, rest))
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: ignitekv get <KEY> | set <KEY> <VALUE> | rm <KEY>")
}

func openStore(dir string) (*ignitekv.Store, error) {
	return ignitekv.Open(options.WithDefaultOptions(), options.WithDataDir(dir))
}

func runGet(dir string, args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: ignitekv get <KEY>")
		return 1
	}

	store, err := openStore(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ignitekv: %v\n", err)
		return 1
	}
	defer store.Close()

	value, found, err := store.Get(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "ignitekv: %v\n", err)
		return 1
	}
	if !found {
		fmt.Println("Key not found")
		return 0
	}
	fmt.Println(value)
	return 0
}

func runSet(dir string, args []string) int {
	if len(args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: ignitekv set <KEY> <VALUE>")
		return 1
	}

	store, err := openStore(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ignitekv: %v\n", err)
		return 1
	}
	defer store.Close()

	if err := store.Set(args[0], args[1]); err != nil {
		fmt.Fprintf(os.Stderr, "ignitekv: %v\n", err)
		return 1
	}
	return 0
}

func runRemove(dir string, args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: ignitekv rm <KEY>")
		return 1
	}

	store, err := openStore(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ignitekv: %v\n", err)
		return 1
	}
	defer store.Close()

	if err := store.Remove(args[0]); err != nil {
		if errors.Is(err, kverrors.ErrKeyNotFound) {
			fmt.Println("Key not found")
			return 1
		}
		fmt.Fprintf(os.Stderr, "ignitekv: %v\n", err)
		return 1
	}
	return 0
}
