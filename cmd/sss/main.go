// sss is the spaceship search CLI for 2D cellular automata.
package main

import (
	"os"

	"github.com/shipsearch/sss/internal/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
