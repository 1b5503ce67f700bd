package member

import _ "embed"

//go:embed schemas/member-input-v1.json
var inputSchema string
