package main

import (
	"os"

	"github.com/LegatusConsultingLtd/robotalk/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
