// The main package for the newspipe executable.
package main

import (
	"github.com/citydesk/newspipe/cmd"
)

func main() {
	cmd.Execute()
}
