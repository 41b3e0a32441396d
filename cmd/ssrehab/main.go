// Package main provides the ssrehab command-line tool.
package main

import "os"

func main() {
	os.Exit(Execute())
}
