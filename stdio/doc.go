// Package stdio implements a minimal single-connection MCP transport over
// stdin/stdout. It is intended for embedding servers as subprocesses spawned
// by a host application.
//
// Characteristics
//
//	Connection model : 1 process <-> 1 client
//	Auth             : none (the parent process is trusted)
//	Sessions         : Ephemeral; one per Serve call
//	Transport        : Newline-delimited JSON-RPC
//	Ordering         : One request in flight; responses in arrival order
//
// Options allow supplying alternate io.Reader / io.Writer, a custom logger, a
// Prometheus registerer for request metrics or a tracer provider.
//
// Example:
//
//	srv, err := mcpservice.NewServer(
//	    mcpservice.WithServerInfo(mcp.ImplementationInfo{Name: "my-stdio-server", Version: "0.1.0"}),
//	    mcpservice.WithTools(myTool),
//	)
//	if err != nil { log.Fatal(err) }
//	h := stdio.NewHandler(srv)
//	if err := h.Serve(ctx); err != nil { log.Fatal(err) }
//
// Only protocol frames are written to the output stream. Diagnostics go to the
// configured slog logger, which should write to stderr.
package stdio
