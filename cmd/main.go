// cmd/main.go
package main

import "flashcard_quiz/internal/cli"

func main() {
	cli.Execute()
}
