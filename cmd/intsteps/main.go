// Command intsteps explains indefinite integrals step by step, from the
// command line, over HTTP or as an MCP tool server.
package main

func main() {
	Execute()
}
