// File: lixenwraith/settings/doc.go

// Package settings persists live Go objects into configuration files and reads
// configuration files back into an ordered, format-agnostic Tree.
//
// Objects expose their settings through accessor methods. A field named host
// or Host is persisted when the pointer type has a zero-argument method GetHost
// returning a value (optionally with an error). The attribute key is the
// accessor name without "Get", with its leading capital run lowered:
// GetHost -> host, GetURL -> url, GetHTTPPort -> httpPort.
//
// Every registered object becomes one section. Objects with a GetId or GetID
// accessor are named TypeName_<id>, others TypeName_<n> with a counter per
// type name. Nested objects, slices and maps are written inside the section.
//
// Quick Start:
//
//	type Server struct {
//	    host string
//	    port int
//	}
//
//	func (s *Server) GetHost() string { return s.host }
//	func (s *Server) GetPort() int    { return s.port }
//
//	err := settings.Quick("server.ini", &Server{host: "localhost", port: 8080})
//
// produces
//
//	[Server_1]
//	host = localhost
//	port = 8080
//
// Builder:
//
//	s, err := settings.NewBuilder().
//	    WithFile("app.xml").
//	    WithSavePath("/etc/myapp").
//	    WithObjects(server, database).
//	    WithLogger(logger).
//	    Build()
//	if err != nil && !errors.Is(err, settings.ErrFileNotFound) {
//	    log.Fatal(err)
//	}
//	err = s.Save()
//
// Loading:
//
//	err := s.LoadFile("app.ini")
//	tree, _ := s.GetConfigAsObject()
//	port, _ := tree.Int64("Server_1.port")
//
//	var srv struct {
//	    Host string `settings:"host"`
//	    Port int    `settings:"port"`
//	}
//	err = s.Scan("Server_1", &srv)
//
// INI and XML are available by default; ExtendedBackends adds TOML and YAML.
//
// Thread Safety:
// Calls on one Settings instance are serialized by a mutex. An Introspector
// may be shared between instances.
package settings
