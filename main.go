// Command vecbuild offloads ANN vector index construction to a remote
// build service, with a guaranteed local fallback.
package main

import "github.com/lattice-search/vecbuild/cmd"

func main() {
	cmd.Execute()
}
