package buildinfo

import "fmt"

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

func String() string {
	return fmt.Sprintf("pizzapack %s (commit=%s, date=%s)", Version, Commit, Date)
}
