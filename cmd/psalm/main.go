// Command psalm is a terminal client for the Psalm legal assistant.
// Sessions persist locally; the chat backend is any OpenAI-compatible
// endpoint configured via `psalm settings`. Without configuration an
// offline demo transport is used.
package main

func main() {
	Execute()
}
