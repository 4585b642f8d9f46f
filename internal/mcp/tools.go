package mcp

import "github.com/mark3labs/mcp-go/mcp"

var logToolDef = mcp.NewTool("food_log",
	mcp.WithDescription("Log one or more food items eaten today from free text, e.g. \"200g poulet, 3 oeufs\". "+
		"Quantities are grams (g, kg, cl, household measures) or item counts. "+
		"Items that cannot be parsed or matched are reported as skipped."),
	mcp.WithString("text",
		mcp.Required(),
		mcp.Description("Food items separated by commas, newlines or \"et\""),
	),
)

var quickAddToolDef = mcp.NewTool("food_quick_add",
	mcp.WithDescription("Log an entry with macros typed in directly, bypassing the food catalog."),
	mcp.WithString("text",
		mcp.Required(),
		mcp.Description("Format: [30g] 150kcal 10p 5l 8g (p protein, l fat, g carbs)"),
	),
)

var undoToolDef = mcp.NewTool("food_undo",
	mcp.WithDescription("Remove the most recent entry logged today."),
)

var statusToolDef = mcp.NewTool("food_status",
	mcp.WithDescription("Show today's totals, goals and remaining macros."),
)

var historyToolDef = mcp.NewTool("food_history",
	mcp.WithDescription("Show today and the last closed days with their protein verdict."),
)

var searchToolDef = mcp.NewTool("food_search",
	mcp.WithDescription("Search the food catalog by name. Accents and plurals are ignored."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Food name or part of it"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum results (default 8, max 50)"),
	),
)

var addToolDef = mcp.NewTool("food_add",
	mcp.WithDescription("Add a food to the catalog or overwrite the one with the same name. "+
		"Values are per 100 g unless basis is per_unit."),
	mcp.WithString("name", mcp.Required(), mcp.Description("Food name")),
	mcp.WithNumber("kcal", mcp.Required(), mcp.Description("Energy in kcal")),
	mcp.WithNumber("protein_g", mcp.Required(), mcp.Description("Protein in grams")),
	mcp.WithNumber("fat_g", mcp.Required(), mcp.Description("Fat in grams")),
	mcp.WithNumber("carb_g", mcp.Required(), mcp.Description("Carbohydrates in grams")),
	mcp.WithString("basis",
		mcp.Description("per_100g (default) or per_unit"),
		mcp.Enum("per_100g", "per_unit"),
	),
	mcp.WithNumber("unit_grams",
		mcp.Description("Weight of one item in grams, used to log counts of a per_100g food"),
	),
)

var listToolDef = mcp.NewTool("food_list",
	mcp.WithDescription("List every food in the catalog."),
)

var exportToolDef = mcp.NewTool("food_export",
	mcp.WithDescription("Export the food catalog to a JSONL file in the exports directory."),
	mcp.WithString("path",
		mcp.Description("File name (.jsonl). Default: foods-<timestamp>.jsonl"),
	),
)

var importToolDef = mcp.NewTool("food_import",
	mcp.WithDescription("Import foods from a catalog export in the exports directory."),
	mcp.WithString("path", mcp.Required(), mcp.Description("File name (.jsonl)")),
	mcp.WithString("mode",
		mcp.Description("On existing foods: error (default, imports nothing), replace or skip"),
		mcp.Enum("error", "replace", "skip"),
	),
)
