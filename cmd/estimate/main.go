package main

import "github.com/glmoss-collab/PROINSULATIONESTIMATION/internal/cli"

func main() {
	cli.Execute()
}
