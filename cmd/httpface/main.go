// Command httpface serves the optional HTTP terminal front-end (spec.md
// §6) over its own keyspace and pub/sub registry, reachable at the given
// address.
package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/go-resp/kvserver/internal/executor"
	"github.com/go-resp/kvserver/internal/httpface"
)

func main() {
	addr := ":8080"
	if len(os.Args) > 1 {
		addr = os.Args[1]
	}

	srv := executor.New(6379)
	front := httpface.New(srv)

	fmt.Println("httpface listening on", addr)
	if err := http.ListenAndServe(addr, front); err != nil {
		fmt.Fprintln(os.Stderr, "httpface:", err)
		os.Exit(1)
	}
}
