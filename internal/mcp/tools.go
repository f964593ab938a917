package mcp

import "github.com/mark3labs/mcp-go/mcp"

// maxSeed is the largest seed a JSON number carries exactly. Tool arguments
// arrive as float64, so larger seeds would be rounded.
const maxSeed = 1<<53 - 1

var generateToolDef = mcp.NewTool("dataset_generate",
	mcp.WithDescription("Generate a synthetic student productivity CSV "+
		"(productive_seconds, task_score, focus_index, self_report_productivity) "+
		"and record the run. The same seed, rows and users always produce the same bytes. "+
		"Overwrites an existing file at path."),
	mcp.WithString("path",
		mcp.Description("Output .csv path. Must sit directly in the working directory, "+
			"~/.prodsynth/datasets or a configured allowed path. Default: productivity_P_T_F_y_1000.csv")),
	mcp.WithNumber("rows",
		mcp.Description("Number of data rows (0 writes a header-only file). Default: 1000"),
		mcp.Min(0),
		mcp.Max(1_000_000)),
	mcp.WithNumber("users",
		mcp.Description("Size of the sampled user pool. Default: 120"),
		mcp.Min(1)),
	mcp.WithNumber("seed",
		mcp.Description("Generator seed, 0 to 2^53-1. Default: 42"),
		mcp.Min(0),
		mcp.Max(maxSeed)),
	mcp.WithDestructiveHintAnnotation(true),
)

var listToolDef = mcp.NewTool("dataset_list",
	mcp.WithDescription("List recorded generation runs, newest first."),
	mcp.WithNumber("limit", mcp.Description("Page size (default 20, max 100)")),
	mcp.WithNumber("offset", mcp.Description("Items to skip")),
	mcp.WithBoolean("include_deleted", mcp.Description("Include soft-deleted runs")),
	mcp.WithReadOnlyHintAnnotation(true),
)

var showToolDef = mcp.NewTool("dataset_show",
	mcp.WithDescription("Show one run with its dataset summary."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Run ID (ULID)")),
	mcp.WithBoolean("include_deleted", mcp.Description("Allow soft-deleted runs")),
	mcp.WithReadOnlyHintAnnotation(true),
)

var latestToolDef = mcp.NewTool("dataset_latest",
	mcp.WithDescription("Show the most recent run, or null when none exist."),
	mcp.WithBoolean("include_deleted", mcp.Description("Consider soft-deleted runs")),
	mcp.WithReadOnlyHintAnnotation(true),
)

var verifyToolDef = mcp.NewTool("dataset_verify",
	mcp.WithDescription("Regenerate a run in memory from its recorded seed and compare "+
		"the digest with the ledger and with the file on disk."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Run ID (ULID)")),
	mcp.WithReadOnlyHintAnnotation(true),
)

var deleteToolDef = mcp.NewTool("dataset_delete",
	mcp.WithDescription("Soft-delete a run from the ledger. The CSV file is kept."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Run ID (ULID)")),
	mcp.WithDestructiveHintAnnotation(true),
)

var purgeToolDef = mcp.NewTool("dataset_purge",
	mcp.WithDescription("Permanently remove soft-deleted runs from the ledger."),
	mcp.WithNumber("older_than_days", mcp.Description("Only purge runs deleted more than N days ago")),
	mcp.WithDestructiveHintAnnotation(true),
)
