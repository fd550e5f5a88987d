package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ben05-coder/rizq/internal/api"
	"github.com/ben05-coder/rizq/internal/app"

	tea "github.com/charmbracelet/bubbletea"
)

var version = "dev"

func main() {
	var baseURL string

	rootCmd := &cobra.Command{
		Use:   "rizq",
		Short: "Terminal client for the Rizq memory engine",
		Long: `Rizq uploads audio recordings to the memory engine backend, waits
for transcription and analysis, and lets you browse the resulting
transcript, digest, and flashcards — or query previously ingested
material and review ranked answers with sources.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.New(baseURL)
			p := tea.NewProgram(app.New(client), tea.WithAltScreen())
			_, err := p.Run()
			return err
		},
	}

	rootCmd.Flags().StringVar(&baseURL, "base-url", defaultBaseURL(), "backend base URL")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version info",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("rizq %s\n", version)
		},
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// defaultBaseURL resolves the backend address once at startup.
func defaultBaseURL() string {
	if v := os.Getenv("RIZQ_BASE_URL"); v != "" {
		return v
	}
	return api.DefaultBaseURL
}
