// Package main implements an interactive client for the golf catalogue API.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"

	"golf/internal/client/commands"
	"golf/internal/client/display"
	"golf/internal/client/session"
)

func main() {
	apiURL := flag.String("url", "http://localhost:8080", "API base URL")
	flag.Parse()

	s := session.New(*apiURL)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          display.Prompt("golf"),
		HistoryFile:     ".golf_history",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Printf("%s%s%s\n", display.Red, err.Error(), display.Reset)
		os.Exit(1)
	}
	defer rl.Close()

	fmt.Printf("%sGolf Catalogue Client%s\n", display.Cyan, display.Reset)
	fmt.Printf("%sAPI: %s%s\n", display.Cyan, s.APIBaseURL, display.Reset)
	fmt.Printf("Type 'help' for commands\n\n")

	registry := commands.NewRegistry(s)

	for {
		rl.SetPrompt(buildPrompt(s))

		line, err := rl.Readline()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasSuffix(line, " -v") {
			s.Verbose = true
			line = strings.TrimSuffix(line, " -v")
		} else {
			s.Verbose = false
		}

		if !registry.Execute(line) {
			break
		}
	}
}

func buildPrompt(s *session.Session) string {
	parts := []string{}

	if s.SubmitterName != "" {
		parts = append(parts, fmt.Sprintf("%s%s%s", display.Magenta, s.SubmitterName, display.Reset))
	}
	if s.SubmitterName != "" && s.CurrentInstance != "" {
		parts = append(parts, fmt.Sprintf("%s - %s", display.Yellow, display.Reset))
	}
	if s.CurrentInstance != "" {
		parts = append(parts, fmt.Sprintf("%s%s%s", display.White, s.CurrentInstance, display.Reset))
	}

	promptStr := "golf"
	if len(parts) > 0 {
		promptStr += display.Yellow + " [" + display.Reset + strings.Join(parts, "") + display.Yellow + "]"
	}
	return display.Prompt(promptStr)
}
