package main

import "github.com/deploymenttheory/go-ntfs/cmd"

func main() {
	cmd.Execute()
}
