// Package mcpservice provides the building blocks a transport serves: a
// frozen Registry of tools and prompts, each paired with a parameter schema,
// plus the server metadata returned during initialize.
//
// Quick start:
//
//	city := schema.MustNew(schema.Text("city", "City name"))
//	echo := mcpservice.NewTool("echo", city,
//	    func(ctx context.Context, w mcpservice.ToolResponseWriter, args schema.Args) error {
//	        return w.AppendText("you said: " + args.String("city"))
//	    },
//	    mcpservice.WithToolDescription("Echo a city back to the caller"),
//	)
//
//	srv, err := mcpservice.NewServer(
//	    mcpservice.WithServerInfo(mcp.ImplementationInfo{Name: "example", Version: "1.0.0"}),
//	    mcpservice.WithTools(echo),
//	)
//
// Handlers only ever see arguments that passed validation. Registration
// happens inside NewServer; the resulting Server and its Registry never change
// afterwards and are safe to share.
package mcpservice
