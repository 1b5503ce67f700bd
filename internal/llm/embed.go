package llm

import _ "embed"

// Embeds for the fixed prompts used by the llm package.

//go:embed prompts/synthesize-system.txt
var SynthesizeSystem string

//go:embed prompts/synthesize-schema.json
var synthesizeSchema string
