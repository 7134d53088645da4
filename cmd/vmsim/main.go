// Command vmsim runs a TLB simulation and reports its statistics.
package main

import "github.com/sarchlab/vmsim/cmd/vmsim/cmd"

func main() {
	cmd.Execute()
}
