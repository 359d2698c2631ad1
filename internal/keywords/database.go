// Package keywords implements the keyword matching pipeline used to tailor a
// resume to a job description: extraction, diffing, prioritization, injection
// and scoring.
package keywords

// Category is a named group of terms scanned for in job descriptions.
type Category struct {
	Name  string
	Terms []string
}

// Database is the fixed, ordered keyword table. Scan order matters: extracted
// keywords are emitted in category order, then term order within a category.
var Database = []Category{
	{Name: "programming", Terms: []string{
		"javascript", "typescript", "python", "java", "c++", "c#", "go", "rust",
		"php", "ruby", "swift", "kotlin", "scala", "r",
	}},
	{Name: "frontend", Terms: []string{
		"react", "vue", "angular", "svelte", "html", "css", "sass", "scss",
		"tailwind", "bootstrap", "jquery", "webpack", "vite",
	}},
	{Name: "backend", Terms: []string{
		"node.js", "express", "django", "flask", "spring", "laravel", "rails",
		"asp.net", "fastapi", "nestjs",
	}},
	{Name: "databases", Terms: []string{
		"mongodb", "postgresql", "mysql", "redis", "sqlite", "oracle", "cassandra",
		"elasticsearch", "dynamodb", "sql", "nosql",
	}},
	{Name: "cloud", Terms: []string{
		"aws", "azure", "gcp", "docker", "kubernetes", "jenkins", "terraform",
		"ansible", "ci/cd", "devops", "microservices",
	}},
	{Name: "data", Terms: []string{
		"machine learning", "ai", "artificial intelligence", "data science",
		"analytics", "big data", "pandas", "numpy", "tensorflow", "pytorch",
		"scikit-learn", "tableau", "power bi", "excel", "spark", "hadoop",
	}},
	{Name: "business", Terms: []string{
		"product management", "product strategy", "roadmap", "stakeholder management",
		"user research", "user experience", "ux", "ui", "agile", "scrum", "kanban",
		"project management", "leadership", "communication", "collaboration",
	}},
	{Name: "tools", Terms: []string{
		"git", "github", "gitlab", "jira", "confluence", "figma", "sketch",
		"postman", "slack", "notion", "asana", "trello",
	}},
	{Name: "concepts", Terms: []string{
		"api", "rest", "graphql", "microservices", "scalability", "performance",
		"optimization", "automation", "integration", "deployment", "monitoring",
		"security", "compliance", "testing", "debugging",
	}},
}

// titleArchetype maps a job-title fragment to keywords implied by the role.
type titleArchetype struct {
	fragment string
	keywords []string
}

// titleArchetypes is matched in order against the lower-cased job title; the
// first fragment contained in the title wins.
var titleArchetypes = []titleArchetype{
	{"product manager", []string{
		"product strategy", "roadmap planning", "stakeholder management", "user research",
		"market analysis", "competitive analysis", "product analytics", "a/b testing",
		"user stories", "product metrics",
	}},
	{"software engineer", []string{
		"software development", "code review", "debugging", "testing", "algorithms",
		"data structures", "system design", "performance optimization",
		"technical documentation", "version control",
	}},
	{"data scientist", []string{
		"statistical analysis", "predictive modeling", "data visualization",
		"feature engineering", "model validation", "hypothesis testing", "data mining",
		"statistical modeling",
	}},
	{"frontend developer", []string{
		"responsive design", "cross-browser compatibility", "user interface",
		"component development", "state management", "performance optimization",
		"accessibility", "mobile-first design",
	}},
	{"backend developer", []string{
		"server architecture", "database design", "api development", "system integration",
		"performance tuning", "security implementation", "scalable systems", "data modeling",
	}},
	{"full stack", []string{
		"full stack development", "end-to-end development", "system architecture",
		"database management", "api integration", "deployment automation",
		"technical leadership",
	}},
	{"engineer", []string{
		"engineering principles", "technical analysis", "problem solving",
		"system optimization", "technical implementation", "engineering best practices",
	}},
	{"developer", []string{
		"software development", "application development", "code optimization",
		"technical implementation", "development lifecycle", "coding standards",
	}},
	{"analyst", []string{
		"data analysis", "business analysis", "reporting", "insights generation",
		"trend analysis", "performance metrics", "analytical thinking",
	}},
}

var actionVerbs = []string{
	"develop", "implement", "design", "create", "build", "manage", "lead", "coordinate",
	"analyze", "optimize", "enhance", "improve", "streamline", "execute", "deliver",
	"collaborate", "communicate", "present", "research", "investigate", "solve",
	"architect", "engineer", "deploy", "maintain", "support", "troubleshoot",
	"spearhead", "orchestrate", "pioneer", "transform", "revolutionize",
}

var keyPhrases = []string{
	"cross-functional collaboration", "stakeholder management", "data-driven decision making",
	"user-centric design", "agile methodologies", "continuous improvement", "best practices",
	"strategic planning", "performance optimization", "scalable solutions",
	"technical leadership", "problem solving", "critical thinking", "attention to detail",
	"team collaboration", "strategic initiatives", "business impact",
	"customer satisfaction", "quality assurance",
}

// Selector priority tiers.
const (
	PriorityTitle  = 10
	PriorityHigh   = 8
	PriorityMedium = 5
	PriorityLow    = 3
)

var highPriority = toSet(
	"javascript", "typescript", "python", "react", "node.js", "aws", "sql", "api",
	"machine learning", "data science", "product management", "agile", "scrum",
)

var mediumPriority = toSet(
	"html", "css", "git", "docker", "mongodb", "postgresql", "analytics", "testing",
	"collaboration", "communication", "leadership", "project management",
)

// titlePriorities is checked in order; the first fragment found in the title
// selects the list that earns PriorityTitle.
var titlePriorities = []titleArchetype{
	{"product", []string{"product strategy", "roadmap", "stakeholder management", "user research", "analytics"}},
	{"data", []string{"python", "sql", "machine learning", "analytics", "pandas", "numpy"}},
	{"frontend", []string{"react", "javascript", "css", "html", "responsive design"}},
	{"backend", []string{"node.js", "python", "api", "database", "microservices"}},
	{"engineer", []string{"javascript", "python", "api", "testing", "git", "aws"}},
}

// technicalTerms classify a keyword for the skills-section insertion.
var technicalTerms = []string{
	"javascript", "typescript", "python", "java", "react", "vue", "angular", "node.js",
	"aws", "azure", "docker", "kubernetes", "sql", "mongodb", "postgresql", "redis",
	"api", "rest", "graphql", "microservices", "git", "html", "css", "sass",
}

// businessTerms classify a keyword for the experience bullet insertion.
var businessTerms = []string{
	"product strategy", "stakeholder management", "user research", "analytics",
	"agile", "scrum", "project management", "leadership", "communication",
	"collaboration", "strategic planning", "market research",
}

func toSet(terms ...string) map[string]bool {
	set := make(map[string]bool, len(terms))
	for _, t := range terms {
		set[t] = true
	}
	return set
}
