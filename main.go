// Command tessera builds the block catalog and texture artifacts behind a
// map-art planning site from an unpacked game asset tree.
package main

import "github.com/mapsmith/tessera/cmd"

func main() {
	cmd.Execute()
}
