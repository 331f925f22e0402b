package models

import "fmt"

// ExitStatus hands the kernel's last exit status to the CLI.
type ExitStatus int

func (e ExitStatus) Error() string {
	return fmt.Sprintf("exit %d", int(e))
}
