package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"emotion-video-server/modules/wizard"
)

func main() {
	_ = godotenv.Load()

	serverURL := flag.String("url", "http://localhost:8080", "Emotion video server URL")
	imagePath := flag.String("image", "", "Portrait photo to upload (JPEG, PNG or WebP)")
	script := flag.String("script", "", "Initial script text")
	flag.Parse()

	program := tea.NewProgram(wizard.NewModel(*serverURL, *imagePath, *script))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		program.Quit()
	}()

	if _, err := program.Run(); err != nil {
		fmt.Printf("Error running program: %v\n", err)
		os.Exit(1)
	}
}
