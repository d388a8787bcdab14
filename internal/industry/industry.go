// Package industry picks the industry a job description belongs to, which
// selects the summary templates, action verbs and certifications to use.
package industry

import "strings"

// Default is returned when no industry keyword occurs
const Default = "IT_Software"

type industry struct {
	label    string
	keywords []string
}

// industries are scanned in order; on a tie the earlier label wins
var industries = []industry{
	{"IT_Software", []string{"software", "developer", "programming", "java", "python", "javascript", "react", "angular", "spring boot", "node.js", "full stack", "backend", "frontend", "devops", "cloud", "aws", "api", "microservices", "web development", "mobile app", "database", "sql", "agile", "scrum"}},
	{"Data_Science_AI", []string{"data scientist", "machine learning", "deep learning", "artificial intelligence", "nlp", "natural language", "tensorflow", "pytorch", "data analyst", "data engineer", "big data", "spark", "hadoop", "tableau", "power bi", "statistics", "predictive model"}},
	{"Mechanical_Engineering", []string{"mechanical engineer", "solidworks", "catia", "autocad", "cad design", "fea", "cfd", "thermodynamics", "manufacturing", "cnc", "gd&t", "hvac", "machine design", "product design", "ansys"}},
	{"Civil_Engineering", []string{"civil engineer", "structural", "construction", "site engineer", "staad pro", "etabs", "revit", "bim", "surveying", "rcc design", "quantity surveying", "primavera", "transportation", "geotechnical"}},
	{"Electrical_Engineering", []string{"electrical engineer", "plc", "scada", "power systems", "control systems", "electrical design", "automation", "panel design", "substation", "renewable energy", "solar", "etap", "switchgear"}},
	{"Electronics_Communication", []string{"electronics engineer", "embedded", "pcb", "vlsi", "fpga", "microcontroller", "iot", "firmware", "signal processing", "rf engineer", "antenna", "communication systems", "verilog", "vhdl", "arm"}},
	{"Pharmacy", []string{"pharmacist", "pharmacy", "pharmaceutical", "drug", "clinical", "formulation", "hplc", "gmp", "pharmacovigilance", "regulatory affairs", "drug safety", "quality control", "prescription", "patient counseling", "pharmacology"}},
	{"UI_UX_Design", []string{"ui/ux", "ux designer", "ui designer", "user experience", "user interface", "figma", "wireframe", "prototype", "usability", "user research", "information architecture", "interaction design", "design system"}},
	{"Graphic_Design_VFX", []string{"graphic designer", "photoshop", "illustrator", "indesign", "logo design", "branding", "vfx", "animation", "3d modeling", "maya", "blender", "after effects", "motion graphics", "video editing", "premiere pro", "nuke"}},
	{"Digital_Marketing", []string{"digital marketing", "seo", "sem", "google ads", "social media", "content marketing", "email marketing", "ppc", "facebook ads", "analytics", "marketing automation", "hubspot", "copywriting"}},
}

// Score is the number of an industry's keywords found in a text
type Score struct {
	Label string `json:"label"`
	Score int    `json:"score"`
}

// Labels returns every industry label in scan order
func Labels() []string {
	labels := make([]string, len(industries))
	for i, ind := range industries {
		labels[i] = ind.label
	}
	return labels
}

// Scores counts, per industry, the keywords contained in jobDescription
func Scores(jobDescription string) []Score {
	lower := strings.ToLower(jobDescription)
	scores := make([]Score, len(industries))
	for i, ind := range industries {
		scores[i].Label = ind.label
		for _, kw := range ind.keywords {
			if strings.Contains(lower, kw) {
				scores[i].Score++
			}
		}
	}
	return scores
}

// Detect returns the strictly highest scoring industry, or Default when
// nothing matches.
func Detect(jobDescription string) string {
	best, highest := Default, 0
	for _, s := range Scores(jobDescription) {
		if s.Score > highest {
			best, highest = s.Label, s.Score
		}
	}
	return best
}
