// Package gemini implements generation.Generator on top of the Google Gen AI
// SDK.
//
// Prompts are text/template files embedded in the binary; the card generation
// prompt can be replaced with a file named by llm.prompt_template_path.
// Requests ask for a JSON response and are retried with exponential backoff
// and jitter. Safety blocks and unparseable responses are not retried.
package gemini
