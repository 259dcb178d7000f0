package main

import (
	"microlearn/cmd/cmd"
	"microlearn/internal/logger"
)

func main() {
	logger.Init()
	cmd.Execute()
}
