package main

import "github.com/yorozuya-cybersecurity/yorosec-sca/pkg/cli"

func main() {
	cli.Execute()
}
