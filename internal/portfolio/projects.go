package portfolio

// Paths of the project pages, shared with the router.
const (
	DataCleaningPath  = "/projects/data-cleaning"
	DataCleaningDemo  = "/projects/data-cleaning/demo"
	SalesAnalysisPath = "/projects/sales-analysis"
	ResearchPath      = "/projects/research"
)

func init() {
	RegisterDefaults()
}

// RegisterDefaults registers the built-in projects.
func RegisterDefaults() {
	Register(Project{
		Key:         "data-cleaning",
		Title:       "Automated Data Cleaning with Go",
		Description: "A tool that automates data preprocessing by handling missing values, duplicates, and column normalization.",
		Image:       "data-cleaning.svg",
		DetailPath:  DataCleaningPath,
		DemoPath:    DataCleaningDemo,
	})
	Register(Project{
		Key:         "sales-analysis",
		Title:       "Sales Data Analysis in Excel",
		Description: "Comprehensive analysis of retail sales data using Pivot Tables and Power Query to drive business decisions.",
		Image:       "sales-analysis.svg",
		DetailPath:  SalesAnalysisPath,
	})
	Register(Project{
		Key:         "research",
		Title:       "Remote Work Trends Research",
		Description: "A research project investigating the socio-economic impacts of the shift to remote work in 2024-2025.",
		Image:       "research-project.svg",
		DetailPath:  ResearchPath,
	})
}
