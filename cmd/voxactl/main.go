// voxactl sends a command to a running voxa server and prints the planned
// actions, or queries status and history.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

func main() {
	server := flag.String("server", "http://localhost:8080", "voxa server base URL")
	command := flag.String("command", "", "voice command to run")
	status := flag.Bool("status", false, "print server status")
	history := flag.Bool("history", false, "print command history")
	stop := flag.Bool("stop", false, "stop the current session")
	flag.Parse()

	base := strings.TrimRight(*server, "/")
	var (
		resp *http.Response
		err  error
	)
	switch {
	case *status:
		resp, err = http.Get(base + "/status")
	case *history:
		resp, err = http.Get(base + "/history")
	case *stop:
		resp, err = http.Post(base+"/stop", "application/json", nil)
	case *command != "":
		body, _ := json.Marshal(map[string]string{"command": *command})
		resp, err = http.Post(base+"/command", "application/json", bytes.NewReader(body))
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "HTTP error: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode/100 != 2 {
		fmt.Fprintf(os.Stderr, "HTTP %d: %s\n", resp.StatusCode, string(data))
		os.Exit(1)
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, data, "", "  "); err != nil {
		fmt.Println(string(data))
		return
	}
	fmt.Println(pretty.String())
}
