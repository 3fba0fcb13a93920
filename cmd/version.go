package cmd

import (
	"fmt"

	"grimm.is/portcullis/internal/brand"
)

// RunVersion prints build information.
func RunVersion() {
	fmt.Printf("%s %s\n", brand.Name, brand.Version)
	if brand.GitCommit != "" {
		fmt.Printf("  commit: %s\n", brand.GitCommit)
	}
	if brand.BuildTime != "" {
		fmt.Printf("  built:  %s\n", brand.BuildTime)
	}
}
