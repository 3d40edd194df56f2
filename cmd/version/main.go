package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"go-guildsync/pkg/version"
)

func main() {
	command := "info"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	switch command {
	case "info", "i":
		fmt.Println(version.GetBuildInfo())
	case "current", "c":
		fmt.Println(version.GetVersionString())
	case "json", "j":
		data, err := json.MarshalIndent(version.Get(), "", "  ")
		if err != nil {
			log.Fatalf("Error encoding JSON: %v", err)
		}
		fmt.Println(string(data))
	case "help", "h", "--help", "-h":
		showHelp()
	default:
		fmt.Printf("Error: unknown command '%s'\n", command)
		showHelp()
		os.Exit(1)
	}
}

func showHelp() {
	fmt.Println(`Usage: version [command]

Commands:
  info, i     Show build information (default)
  current, c  Show the version string
  json, j     Show build information as JSON
  help, h     Show this help`)
}
