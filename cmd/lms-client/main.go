// main.go — точка входа CLI LMS Client.
package main

import "github.com/bigkaa/lms-client/internal/cli"

func main() {
	cli.Execute()
}
