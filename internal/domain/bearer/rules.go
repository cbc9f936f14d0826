package bearer

import (
	"fmt"
	"strings"
)

const rulesOverview = `Bearer Security Rules Information:

Bearer has 473+ security rules across multiple programming languages:
- Ruby
- JavaScript/TypeScript
- Java
- PHP
- Go
- Python

Rules are categorized by:
- OWASP Top 10 categories (A01-A10)
- CWE (Common Weakness Enumeration) numbers
- Language-specific vulnerabilities

To use specific rules in scans:
- Use --only-rule flag: bearer scan --only-rule "rule_id_1,rule_id_2" path/
- Use --skip-rule flag: bearer scan --skip-rule "rule_id_1,rule_id_2" path/

For the complete list of rules and their descriptions, visit:
https://docs.bearer.com/reference/rules/`

const rulesLanguage = `

Language-specific information for %[1]s:

To scan only %[1]s files, Bearer automatically detects file types.
Common %[1]s rule categories include:
- Code injection vulnerabilities
- Authentication/authorization issues
- Data exposure risks
- Insecure configurations
- Third-party library vulnerabilities

Example scan command for %[1]s projects:
bearer scan --format json your_project_path/`

// RulesInfo returns static rule documentation. It is not derived from the CLI.
func RulesInfo(language string) InterpretedResult {
	text := rulesOverview
	if language != "" {
		text += fmt.Sprintf(rulesLanguage, strings.ToLower(language))
	}
	return InterpretedResult{Kind: ResultOutput, Text: text}
}
