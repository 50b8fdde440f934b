// FILE: example/main.go
package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/lixenwraith/settings"
)

// Server is persisted through its accessors
type Server struct {
	id      string
	host    string
	port    int
	timeout time.Duration
	tags    []string
	cert    *Cert
}

func (s *Server) GetId() string { return s.id }

func (s *Server) GetHost() string { return s.host }

func (s *Server) GetPort() int { return s.port }

func (s *Server) GetTimeout() time.Duration { return s.timeout }

func (s *Server) GetTags() []string { return s.tags }

func (s *Server) GetCert() *Cert { return s.cert }

// Cert is nested inside the server section
type Cert struct {
	certFile string
	keyFile  string
}

func (c *Cert) GetCertFile() string { return c.certFile }

func (c *Cert) GetKeyFile() string { return c.keyFile }

// SMTP has no identity accessor, so it gets a counter name
type SMTP struct {
	host     string
	fromAddr string
	password string // no accessor, never written
}

func (s *SMTP) GetHost() string { return s.host }

func (s *SMTP) GetFromAddr() string { return s.fromAddr }

func main() {
	dir, err := os.MkdirTemp("", "settings-example")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	api := &Server{
		id:      "api",
		host:    "0.0.0.0",
		port:    8080,
		timeout: 30 * time.Second,
		tags:    []string{"public", "v2"},
		cert:    &Cert{certFile: "/etc/ssl/api.crt", keyFile: "/etc/ssl/api.key"},
	}
	mail := &SMTP{host: "smtp.example.com", fromAddr: "noreply@example.com", password: "secret"}

	s, err := settings.NewBuilder().
		WithFile("app.ini").
		WithSavePath(dir).
		WithLogger(logger).
		WithObjects(api, mail).
		WithFilenames("servers.ini", "mail.xml").
		Build()
	if err != nil && !errors.Is(err, settings.ErrFileNotFound) {
		log.Fatal(err)
	}

	if err := s.Save(); err != nil {
		log.Fatal(err)
	}

	for _, name := range []string{"servers.ini", "mail.xml"} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("--- %s\n%s\n", name, data)
	}

	if err := s.LoadFile(filepath.Join(dir, "servers.ini")); err != nil {
		log.Fatal(err)
	}

	var loaded struct {
		Host    string        `settings:"host"`
		Port    int           `settings:"port"`
		Timeout time.Duration `settings:"timeout"`
		Tags    []string      `settings:"tags"`
	}
	if err := s.Scan("Server_api", &loaded); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("loaded: %+v\n", loaded)
}
