package operations

import domain "github.com/bryanwahyu/bearer-mcp/internal/domain/bearer"

// Tool names advertised over MCP.
const (
	OpScanRepo   = "bearer_scan_repo"
	OpScan       = "bearer_scan"
	OpVersion    = "bearer_version"
	OpListRules  = "bearer_list_rules"
	OpInitConfig = "bearer_init_config"
)

var (
	Formats    = []string{"json", "yaml", "sarif", "html"}
	Severities = []string{"critical", "high", "medium", "low"}
)

func scanOptions() []domain.ParamSpec {
	return []domain.ParamSpec{
		{Name: "format", Type: domain.TypeString, Default: domain.FormatJSON, Enum: Formats,
			Description: "Output format for the scan results"},
		{Name: "severity", Type: domain.TypeString, Enum: Severities,
			Description: "Minimum severity level to report"},
		{Name: "rules", Type: domain.TypeString,
			Description: "Comma-separated list of rule IDs to run (e.g., 'javascript_lang_eval,ruby_rails_logger')"},
		{Name: "skip_rules", Type: domain.TypeString,
			Description: "Comma-separated list of rule IDs to skip"},
		{Name: "output_file", Type: domain.TypeString,
			Description: "Path to save scan results to file"},
		{Name: "quiet", Type: domain.TypeBoolean, Default: false,
			Description: "Suppress progress output"},
	}
}

// Catalog returns the fixed operation list in advertisement order.
func Catalog() []domain.Operation {
	scanPath := domain.ParamSpec{
		Name: "path", Type: domain.TypeString, Required: true,
		Description: "Path to scan (directory or file). Relative paths are resolved from /workspace.",
	}
	return []domain.Operation{
		{
			Name:        OpScanRepo,
			Description: "Run Bearer security scan on the entire repository/workspace (no path parameter needed)",
			Kind:        domain.KindScan,
			Path:        domain.PathOptional,
			Params:      scanOptions(),
		},
		{
			Name:        OpScan,
			Description: "Run Bearer security scan on a specific directory or file path (path parameter required)",
			Kind:        domain.KindScan,
			Path:        domain.PathRequired,
			Params:      append([]domain.ParamSpec{scanPath}, scanOptions()...),
		},
		{
			Name:        OpVersion,
			Description: "Get Bearer CLI version information",
			Kind:        domain.KindVersion,
		},
		{
			Name:        OpListRules,
			Description: "Get information about Bearer security rules (rules are documented online at docs.bearer.com/reference/rules/)",
			Kind:        domain.KindRules,
			Params: []domain.ParamSpec{
				{Name: "language", Type: domain.TypeString,
					Description: "Optional: Language to get information about (e.g., javascript, python, java, ruby, php, go)"},
			},
		},
		{
			Name:        OpInitConfig,
			Description: "Initialize Bearer configuration file in the project",
			Kind:        domain.KindInit,
			Path:        domain.PathOptional,
			Params: []domain.ParamSpec{
				{Name: "path", Type: domain.TypeString, Default: ".",
					Description: "Directory to create configuration in (defaults to working directory)"},
			},
		},
	}
}
