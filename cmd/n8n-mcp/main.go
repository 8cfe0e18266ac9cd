// Package main starts the n8n MCP server.
package main

import (
	"github.com/n8n-contrib/n8n-mcp-go/config"
	"github.com/n8n-contrib/n8n-mcp-go/log"
	"github.com/n8n-contrib/n8n-mcp-go/n8n"
	"github.com/n8n-contrib/n8n-mcp-go/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	log.SetLevel(cfg.LogLevel)

	client, err := n8n.NewClient(n8n.ClientConfig{
		BaseURL: cfg.N8NBaseURL,
		APIKey:  cfg.N8NAPIKey,
		Timeout: cfg.N8NTimeout,
		Debug:   cfg.LogLevel == log.LevelDebug,
	})
	if err != nil {
		log.Fatalf("n8n client: %v", err)
	}

	if err := server.New(cfg, client).Run(); err != nil {
		log.Fatalf("server: %v", err)
	}
}
